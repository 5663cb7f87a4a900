package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoCommute/service-planner/internal/domain"
	placeDomain "github.com/EcoCommute/service-planner/internal/domain/place"
	"github.com/EcoCommute/service-planner/internal/geo"
)

// CreatePlaceRequest is the request DTO for saving a place.
type CreatePlaceRequest struct {
	Label   string `json:"label" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Notes   string `json:"notes"`
}

// UpdatePlaceRequest is the request DTO for updating a saved place.
type UpdatePlaceRequest struct {
	Label   string `json:"label"`
	Address string `json:"address"`
	City    string `json:"city"`
	Notes   string `json:"notes"`
}

// PlaceDTO is the API response representation of a saved place.
type PlaceDTO struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	PlaceID   string    `json:"place_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceService implements use cases for saved place management. Places are
// geocoded when created and re-geocoded when their address changes.
type PlaceService struct {
	repo     placeDomain.PlaceRepository
	geocoder geo.Geocoder
	logger   *zap.Logger
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(repo placeDomain.PlaceRepository, geocoder geo.Geocoder, logger *zap.Logger) *PlaceService {
	return &PlaceService{repo: repo, geocoder: geocoder, logger: logger}
}

// CreatePlace geocodes and saves a new place for the given owner.
func (s *PlaceService) CreatePlace(ctx context.Context, ownerID uuid.UUID, req CreatePlaceRequest) (*PlaceDTO, error) {
	loc, err := s.geocoder.Geocode(ctx, req.Address, req.City)
	if err != nil {
		return nil, resolveError("address", req.Address, err)
	}

	p, err := placeDomain.NewSavedPlace(
		ownerID,
		req.Label, req.Address, req.City,
		loc.Latitude, loc.Longitude,
		loc.PlaceID, req.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid place data: %w", err)
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to create place", zap.Error(err))
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	s.logger.Info("place saved",
		zap.String("place_id", p.ID().String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("label", req.Label),
	)
	result := toPlaceDTO(p)
	return &result, nil
}

// GetMyPlaces returns all active saved places for the given owner.
func (s *PlaceService) GetMyPlaces(ctx context.Context, ownerID uuid.UUID) ([]PlaceDTO, error) {
	places, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get places: %w", err)
	}
	dtos := make([]PlaceDTO, len(places))
	for i, p := range places {
		dtos[i] = toPlaceDTO(p)
	}
	return dtos, nil
}

// GetPlace returns a single saved place by ID, verifying ownership.
func (s *PlaceService) GetPlace(ctx context.Context, ownerID, placeID uuid.UUID) (*PlaceDTO, error) {
	p, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("you do not own this place")
	}
	result := toPlaceDTO(p)
	return &result, nil
}

// UpdatePlace updates a saved place, verifying ownership. If the address or
// city changed the place is geocoded again.
func (s *PlaceService) UpdatePlace(ctx context.Context, ownerID, placeID uuid.UUID, req UpdatePlaceRequest) (*PlaceDTO, error) {
	p, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("you do not own this place")
	}

	if p.Update(req.Label, req.Address, req.City, req.Notes) {
		loc, err := s.geocoder.Geocode(ctx, p.Address(), p.City())
		if err != nil {
			return nil, resolveError("address", p.Address(), err)
		}
		p.SetCoordinates(loc.Latitude, loc.Longitude, loc.PlaceID)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update place", zap.Error(err))
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	s.logger.Info("place updated", zap.String("place_id", placeID.String()))
	result := toPlaceDTO(p)
	return &result, nil
}

// DeletePlace archives a saved place, verifying ownership.
func (s *PlaceService) DeletePlace(ctx context.Context, ownerID, placeID uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(ownerID) {
		return domain.NewForbiddenError("you do not own this place")
	}

	p.Archive()
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to archive place", zap.Error(err))
		return fmt.Errorf("failed to archive place: %w", err)
	}

	s.logger.Info("place archived", zap.String("place_id", placeID.String()))
	return nil
}

func toPlaceDTO(p *placeDomain.SavedPlace) PlaceDTO {
	return PlaceDTO{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Label:     p.Label(),
		Address:   p.Address(),
		City:      p.City(),
		Latitude:  p.Latitude(),
		Longitude: p.Longitude(),
		PlaceID:   p.PlaceID(),
		Notes:     p.Notes(),
		Status:    string(p.Status()),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}
