package plan

import "fmt"

// PlanStatus represents the current state of a trip plan in its lifecycle.
type PlanStatus string

const (
	StatusReady    PlanStatus = "ready"
	StatusTaken    PlanStatus = "taken"
	StatusArchived PlanStatus = "archived"
)

// validTransitions defines the state machine for plan status transitions.
var validTransitions = map[PlanStatus][]PlanStatus{
	StatusReady:    {StatusTaken, StatusArchived},
	StatusTaken:    {StatusArchived},
	StatusArchived: {},
}

// IsValid returns true if the status is a recognized plan status.
func (s PlanStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s PlanStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanBeArchived returns true if the plan can still be archived from this status.
func (s PlanStatus) CanBeArchived() bool {
	return s.CanTransitionTo(StatusArchived)
}

// String returns the string representation of the status.
func (s PlanStatus) String() string {
	return string(s)
}

// ParsePlanStatus converts a string to a PlanStatus, returning an error if invalid.
func ParsePlanStatus(s string) (PlanStatus, error) {
	status := PlanStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid plan status: %s", s)
	}
	return status, nil
}
