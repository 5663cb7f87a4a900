package plan

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository defines the persistence contract for trip plan aggregates.
type PlanRepository interface {
	// FindByID retrieves a plan by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*TripPlan, error)

	// FindByNumber retrieves a plan by its human-readable plan number.
	FindByNumber(ctx context.Context, number string) (*TripPlan, error)

	// FindByCommuterID retrieves plans belonging to a specific commuter with pagination.
	FindByCommuterID(ctx context.Context, commuterID uuid.UUID, page, limit int) ([]*TripPlan, int64, error)

	// ListAll retrieves all plans with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*TripPlan, int64, error)

	// CountByStatus returns plan counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new plan.
	Save(ctx context.Context, p *TripPlan) error

	// Update persists changes to an existing plan with optimistic locking.
	Update(ctx context.Context, p *TripPlan) error
}
