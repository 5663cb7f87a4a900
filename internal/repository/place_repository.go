package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EcoCommute/service-planner/internal/domain"
	placeDomain "github.com/EcoCommute/service-planner/internal/domain/place"
)

// PlaceModel is the GORM model for the saved_places table.
type PlaceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Label     string    `gorm:"type:varchar(100);not null"`
	Address   string    `gorm:"type:varchar(500);not null"`
	City      string    `gorm:"type:varchar(100);not null"`
	Latitude  float64   `gorm:"type:decimal(9,6)"`
	Longitude float64   `gorm:"type:decimal(9,6)"`
	PlaceID   string    `gorm:"type:varchar(255)"`
	Notes     string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (PlaceModel) TableName() string { return "saved_places" }

// GormPlaceRepository implements PlaceRepository using GORM.
type GormPlaceRepository struct {
	db *gorm.DB
}

func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

func (r *GormPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*placeDomain.SavedPlace, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Place", id.String())
		}
		return nil, err
	}
	return toPlaceDomain(&model), nil
}

func (r *GormPlaceRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*placeDomain.SavedPlace, error) {
	var models []PlaceModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, "active").
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	places := make([]*placeDomain.SavedPlace, len(models))
	for i, m := range models {
		places[i] = toPlaceDomain(&m)
	}
	return places, nil
}

func (r *GormPlaceRepository) Save(ctx context.Context, place *placeDomain.SavedPlace) error {
	model := toPlaceModel(place)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormPlaceRepository) Update(ctx context.Context, place *placeDomain.SavedPlace) error {
	model := toPlaceModel(place)
	previousVersion := place.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PlaceModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("place was modified by another transaction")
	}
	return nil
}

func (r *GormPlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&PlaceModel{}).Error
}

// --- Conversions ---

func toPlaceModel(p *placeDomain.SavedPlace) *PlaceModel {
	return &PlaceModel{
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
		Version:   p.Version(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toPlaceDomain(m *PlaceModel) *placeDomain.SavedPlace {
	return placeDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.Label, m.Address, m.City,
		m.Latitude, m.Longitude,
		m.PlaceID, m.Notes,
		placeDomain.PlaceStatus(m.Status),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
