package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TripFeedback is the aggregate root for feedback a commuter leaves on a
// route they took. Feedback is immutable once submitted.
type TripFeedback struct {
	id         uuid.UUID
	planID     uuid.UUID
	commuterID uuid.UUID
	routeID    string
	rating     int
	comment    string
	createdAt  time.Time
}

// NewTripFeedback creates a new trip feedback entry.
func NewTripFeedback(planID, commuterID uuid.UUID, routeID string, rating int, comment string) (*TripFeedback, error) {
	if routeID == "" {
		return nil, fmt.Errorf("route ID is required")
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	return &TripFeedback{
		id:         uuid.New(),
		planID:     planID,
		commuterID: commuterID,
		routeID:    routeID,
		rating:     rating,
		comment:    comment,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a TripFeedback from persistence.
func Reconstruct(id, planID, commuterID uuid.UUID, routeID string, rating int, comment string, createdAt time.Time) *TripFeedback {
	return &TripFeedback{
		id:         id,
		planID:     planID,
		commuterID: commuterID,
		routeID:    routeID,
		rating:     rating,
		comment:    comment,
		createdAt:  createdAt,
	}
}

// Getters.
func (f *TripFeedback) ID() uuid.UUID         { return f.id }
func (f *TripFeedback) PlanID() uuid.UUID     { return f.planID }
func (f *TripFeedback) CommuterID() uuid.UUID { return f.commuterID }
func (f *TripFeedback) RouteID() string       { return f.routeID }
func (f *TripFeedback) Rating() int           { return f.rating }
func (f *TripFeedback) Comment() string       { return f.comment }
func (f *TripFeedback) CreatedAt() time.Time  { return f.createdAt }
