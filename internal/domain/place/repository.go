package place

import (
	"context"

	"github.com/google/uuid"
)

// PlaceRepository defines persistence operations for saved places.
type PlaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SavedPlace, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*SavedPlace, error)
	Save(ctx context.Context, p *SavedPlace) error
	Update(ctx context.Context, p *SavedPlace) error
	Delete(ctx context.Context, id uuid.UUID) error
}
