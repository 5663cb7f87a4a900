package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	feedbackDomain "github.com/EcoCommute/service-planner/internal/domain/feedback"
)

// FeedbackModel is the GORM model for the trip_feedback table.
type FeedbackModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlanID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CommuterID uuid.UUID `gorm:"type:uuid;not null"`
	RouteID    string    `gorm:"type:varchar(64);not null"`
	Rating     int       `gorm:"not null"`
	Comment    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (FeedbackModel) TableName() string { return "trip_feedback" }

// GormFeedbackRepository implements FeedbackRepository using GORM.
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewGormFeedbackRepository creates a new GormFeedbackRepository.
func NewGormFeedbackRepository(db *gorm.DB) *GormFeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

// Save persists a new feedback entry.
func (r *GormFeedbackRepository) Save(ctx context.Context, fb *feedbackDomain.TripFeedback) error {
	model := toFeedbackModel(fb)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByPlanID returns all feedback for a plan.
func (r *GormFeedbackRepository) FindByPlanID(ctx context.Context, planID uuid.UUID) ([]*feedbackDomain.TripFeedback, error) {
	var models []FeedbackModel
	if err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]*feedbackDomain.TripFeedback, len(models))
	for i, m := range models {
		entries[i] = toFeedbackDomain(&m)
	}
	return entries, nil
}

// FindByID returns a single feedback entry by ID.
func (r *GormFeedbackRepository) FindByID(ctx context.Context, id uuid.UUID) (*feedbackDomain.TripFeedback, error) {
	var model FeedbackModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return toFeedbackDomain(&model), nil
}

func toFeedbackModel(f *feedbackDomain.TripFeedback) FeedbackModel {
	return FeedbackModel{
		ID:         f.ID(),
		PlanID:     f.PlanID(),
		CommuterID: f.CommuterID(),
		RouteID:    f.RouteID(),
		Rating:     f.Rating(),
		Comment:    f.Comment(),
		CreatedAt:  f.CreatedAt(),
	}
}

func toFeedbackDomain(m *FeedbackModel) *feedbackDomain.TripFeedback {
	return feedbackDomain.Reconstruct(
		m.ID,
		m.PlanID,
		m.CommuterID,
		m.RouteID,
		m.Rating,
		m.Comment,
		m.CreatedAt,
	)
}
