package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EcoCommute/service-planner/internal/domain"
	planDomain "github.com/EcoCommute/service-planner/internal/domain/plan"
	"github.com/EcoCommute/service-planner/internal/domain/route"
)

// PlanModel is the GORM model for the trip_plans table.
type PlanModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PlanNumber       string          `gorm:"uniqueIndex;not null;size:20"`
	CommuterID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Status           string          `gorm:"not null;size:30;index"`
	Query            json.RawMessage `gorm:"type:jsonb;not null"`
	OriginPoint      json.RawMessage `gorm:"type:jsonb;not null"`
	DestinationPoint json.RawMessage `gorm:"type:jsonb;not null"`
	CarBaseline      json.RawMessage `gorm:"type:jsonb;not null"`
	Currency         string          `gorm:"not null;size:3;default:'INR'"`
	Routes           json.RawMessage `gorm:"type:jsonb;not null"`
	ChosenRouteID    *string         `gorm:"size:64"`
	TakenAt          *time.Time      `gorm:""`
	ArchivedAt       *time.Time      `gorm:""`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlanModel) TableName() string {
	return "trip_plans"
}

// GormPlanRepository is the GORM-based implementation of PlanRepository.
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository.
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID retrieves a plan by its unique identifier.
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*planDomain.TripPlan, error) {
	var model PlanModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Plan", id.String())
		}
		return nil, fmt.Errorf("failed to find plan by ID: %w", err)
	}
	return toDomainPlan(&model)
}

// FindByNumber retrieves a plan by its plan number.
func (r *GormPlanRepository) FindByNumber(ctx context.Context, number string) (*planDomain.TripPlan, error) {
	var model PlanModel
	if err := r.db.WithContext(ctx).Where("plan_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Plan", number)
		}
		return nil, fmt.Errorf("failed to find plan by number: %w", err)
	}
	return toDomainPlan(&model)
}

// FindByCommuterID retrieves plans for a specific commuter with pagination.
func (r *GormPlanRepository) FindByCommuterID(ctx context.Context, commuterID uuid.UUID, page, limit int) ([]*planDomain.TripPlan, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PlanModel{}).Where("commuter_id = ?", commuterID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commuter plans: %w", err)
	}

	var models []PlanModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("commuter_id = ?", commuterID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find commuter plans: %w", err)
	}

	plans := make([]*planDomain.TripPlan, len(models))
	for i, m := range models {
		p, err := toDomainPlan(&m)
		if err != nil {
			return nil, 0, err
		}
		plans[i] = p
	}

	return plans, total, nil
}

// Save persists a new plan.
func (r *GormPlanRepository) Save(ctx context.Context, p *planDomain.TripPlan) error {
	model, err := toPlanModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// Update persists changes to an existing plan with optimistic locking.
func (r *GormPlanRepository) Update(ctx context.Context, p *planDomain.TripPlan) error {
	model, err := toPlanModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := p.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&PlanModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"routes":          model.Routes,
			"chosen_route_id": model.ChosenRouteID,
			"taken_at":        model.TakenAt,
			"archived_at":     model.ArchivedAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("plan was modified by another transaction")
	}

	return nil
}

// ListAll retrieves all plans with pagination (admin).
func (r *GormPlanRepository) ListAll(ctx context.Context, page, limit int) ([]*planDomain.TripPlan, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PlanModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	var models []PlanModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*planDomain.TripPlan, len(models))
	for i, m := range models {
		p, err := toDomainPlan(&m)
		if err != nil {
			return nil, 0, err
		}
		plans[i] = p
	}

	return plans, total, nil
}

// CountByStatus returns plan counts grouped by status (admin).
func (r *GormPlanRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&PlanModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toPlanModel(p *planDomain.TripPlan) (*PlanModel, error) {
	queryJSON, err := json.Marshal(p.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	originJSON, err := json.Marshal(p.OriginPoint())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal origin point: %w", err)
	}

	destinationJSON, err := json.Marshal(p.DestinationPoint())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal destination point: %w", err)
	}

	baselineJSON, err := json.Marshal(p.Baseline())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal car baseline: %w", err)
	}

	routesJSON, err := json.Marshal(p.Routes())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal routes: %w", err)
	}

	return &PlanModel{
		ID:               p.ID(),
		PlanNumber:       p.PlanNumber(),
		CommuterID:       p.CommuterID(),
		Status:           string(p.Status()),
		Query:            queryJSON,
		OriginPoint:      originJSON,
		DestinationPoint: destinationJSON,
		CarBaseline:      baselineJSON,
		Currency:         p.Currency(),
		Routes:           routesJSON,
		ChosenRouteID:    p.ChosenRouteID(),
		TakenAt:          p.TakenAt(),
		ArchivedAt:       p.ArchivedAt(),
		Version:          p.Version(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}, nil
}

func toDomainPlan(m *PlanModel) (*planDomain.TripPlan, error) {
	var query planDomain.TripQuery
	if err := json.Unmarshal(m.Query, &query); err != nil {
		return nil, fmt.Errorf("failed to unmarshal query: %w", err)
	}

	var originPoint planDomain.GeoPoint
	if err := json.Unmarshal(m.OriginPoint, &originPoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal origin point: %w", err)
	}

	var destinationPoint planDomain.GeoPoint
	if err := json.Unmarshal(m.DestinationPoint, &destinationPoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal destination point: %w", err)
	}

	var baseline planDomain.CarBaseline
	if err := json.Unmarshal(m.CarBaseline, &baseline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal car baseline: %w", err)
	}

	var routes []route.Option
	if err := json.Unmarshal(m.Routes, &routes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal routes: %w", err)
	}

	status, err := planDomain.ParsePlanStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return planDomain.ReconstructTripPlan(
		m.ID,
		m.PlanNumber,
		m.CommuterID,
		status,
		query,
		originPoint,
		destinationPoint,
		baseline,
		m.Currency,
		routes,
		m.ChosenRouteID,
		m.TakenAt,
		m.ArchivedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
