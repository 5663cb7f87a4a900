package feedback

import (
	"context"

	"github.com/google/uuid"
)

// FeedbackRepository defines persistence operations for trip feedback.
type FeedbackRepository interface {
	Save(ctx context.Context, fb *TripFeedback) error
	FindByPlanID(ctx context.Context, planID uuid.UUID) ([]*TripFeedback, error)
	FindByID(ctx context.Context, id uuid.UUID) (*TripFeedback, error)
}
