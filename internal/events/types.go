package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service produces to and consumes from.
const (
	TopicPlanEvents = "plan.events"
	TopicTripEvents = "trip.events"
)

// CloudEvent type identifiers.
const (
	PlanCreated   = "plan.created"
	PlanTaken     = "plan.taken"
	PlanArchived  = "plan.archived"
	TripCompleted = "trip.completed"
)

// PlanCreatedEvent is emitted when a trip plan has been generated.
type PlanCreatedEvent struct {
	PlanID             uuid.UUID `json:"plan_id"`
	PlanNumber         string    `json:"plan_number"`
	CommuterID         uuid.UUID `json:"commuter_id"`
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	City               string    `json:"city"`
	RouteCount         int       `json:"route_count"`
	MinDurationMinutes float64   `json:"min_duration_minutes"`
	MinCostCurrency    float64   `json:"min_cost_currency"`
	MaxCO2SavedKg      float64   `json:"max_co2_saved_kg"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// PlanTakenEvent is emitted when a commuter starts a trip on one of the
// plan's route options.
type PlanTakenEvent struct {
	PlanID     uuid.UUID `json:"plan_id"`
	PlanNumber string    `json:"plan_number"`
	CommuterID uuid.UUID `json:"commuter_id"`
	RouteID    string    `json:"route_id"`
	RouteTitle string    `json:"route_title"`
	CO2SavedKg float64   `json:"co2_saved_kg"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PlanArchivedEvent is emitted when a plan is archived.
type PlanArchivedEvent struct {
	PlanID     uuid.UUID `json:"plan_id"`
	PlanNumber string    `json:"plan_number"`
	CommuterID uuid.UUID `json:"commuter_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TripCompletedEvent is consumed from the tracking service when a commuter
// finishes a trip that was started from a plan.
type TripCompletedEvent struct {
	TripID      uuid.UUID `json:"trip_id"`
	PlanID      uuid.UUID `json:"plan_id"`
	CommuterID  uuid.UUID `json:"commuter_id"`
	RouteID     string    `json:"route_id"`
	CompletedAt time.Time `json:"completed_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}
