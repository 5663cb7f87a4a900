package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/domain"
	feedbackDomain "github.com/EcoCommute/service-planner/internal/domain/feedback"
	"github.com/EcoCommute/service-planner/internal/domain/plan"
)

// SubmitFeedbackRequest holds the data to submit feedback on a route.
type SubmitFeedbackRequest struct {
	RouteID string `json:"route_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// FeedbackDTO is the API response representation of trip feedback.
type FeedbackDTO struct {
	ID         uuid.UUID `json:"id"`
	PlanID     uuid.UUID `json:"plan_id"`
	CommuterID uuid.UUID `json:"commuter_id"`
	RouteID    string    `json:"route_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackService handles trip feedback use cases.
type FeedbackService struct {
	repo     feedbackDomain.FeedbackRepository
	planRepo plan.PlanRepository
	logger   *zap.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(repo feedbackDomain.FeedbackRepository, planRepo plan.PlanRepository, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, planRepo: planRepo, logger: logger}
}

// SubmitFeedback records feedback on one of a plan's routes. The plan must
// belong to the commuter and the route must be part of it.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, planID, commuterID uuid.UUID, req SubmitFeedbackRequest) (*FeedbackDTO, error) {
	p, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(commuterID) {
		return nil, domain.NewForbiddenError("plan does not belong to this user")
	}
	if _, ok := p.FindRoute(req.RouteID); !ok {
		return nil, domain.NewValidationError("route does not belong to this plan")
	}

	fb, err := feedbackDomain.NewTripFeedback(planID, commuterID, req.RouteID, req.Rating, req.Comment)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, fb); err != nil {
		return nil, err
	}

	s.logger.Info("trip feedback submitted",
		zap.String("plan_id", planID.String()),
		zap.String("route_id", req.RouteID),
		zap.Int("rating", req.Rating),
	)

	return toFeedbackDTO(fb), nil
}

// GetPlanFeedback returns all feedback left on a plan's routes.
func (s *FeedbackService) GetPlanFeedback(ctx context.Context, planID, requesterID uuid.UUID, requesterRole string) ([]*FeedbackDTO, error) {
	p, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if requesterRole != auth.RoleAdmin && !p.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("plan does not belong to this user")
	}

	items, err := s.repo.FindByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*FeedbackDTO, len(items))
	for i, fb := range items {
		dtos[i] = toFeedbackDTO(fb)
	}
	return dtos, nil
}

func toFeedbackDTO(fb *feedbackDomain.TripFeedback) *FeedbackDTO {
	return &FeedbackDTO{
		ID:         fb.ID(),
		PlanID:     fb.PlanID(),
		CommuterID: fb.CommuterID(),
		RouteID:    fb.RouteID(),
		Rating:     fb.Rating(),
		Comment:    fb.Comment(),
		CreatedAt:  fb.CreatedAt(),
	}
}
