package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/EcoCommute/service-planner/internal/ai"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/domain"
	"github.com/EcoCommute/service-planner/internal/domain/plan"
	"github.com/EcoCommute/service-planner/internal/domain/route"
	"github.com/EcoCommute/service-planner/internal/events"
	"github.com/EcoCommute/service-planner/internal/geo"
	"github.com/EcoCommute/service-planner/internal/kafka"
)

// CreatePlanRequest holds the data needed to create a trip plan.
type CreatePlanRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	City        string `json:"city" binding:"required"`
}

// RouteDTO is a route option decorated with best-in-class badges. Ties all
// count: two routes sharing the minimum cost are both cheapest.
type RouteDTO struct {
	route.Option
	IsFastest  bool `json:"is_fastest"`
	IsCheapest bool `json:"is_cheapest"`
	IsGreenest bool `json:"is_greenest"`
}

// PlanDTO is the response representation of a trip plan.
type PlanDTO struct {
	ID               uuid.UUID        `json:"id"`
	PlanNumber       string           `json:"plan_number"`
	CommuterID       uuid.UUID        `json:"commuter_id"`
	Status           string           `json:"status"`
	Query            plan.TripQuery   `json:"query"`
	OriginPoint      plan.GeoPoint    `json:"origin_point"`
	DestinationPoint plan.GeoPoint    `json:"destination_point"`
	CarBaseline      plan.CarBaseline `json:"car_baseline"`
	Currency         string           `json:"currency"`
	Routes           []RouteDTO       `json:"routes"`
	BestStats        *route.BestStats `json:"best_stats,omitempty"`
	ChosenRouteID    *string          `json:"chosen_route_id,omitempty"`
	TakenAt          *time.Time       `json:"taken_at,omitempty"`
	ArchivedAt       *time.Time       `json:"archived_at,omitempty"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// PlanSummaryDTO is the list representation of a plan, without the full
// routes payload.
type PlanSummaryDTO struct {
	ID          uuid.UUID `json:"id"`
	PlanNumber  string    `json:"plan_number"`
	CommuterID  uuid.UUID `json:"commuter_id"`
	Status      string    `json:"status"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	City        string    `json:"city"`
	RouteCount  int       `json:"route_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventPublisher abstracts the Kafka producer for event publication.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// PlannerService is the application service orchestrating trip plan use cases.
type PlannerService struct {
	repo      plan.PlanRepository
	generator ai.RouteGenerator
	geocoder  geo.Geocoder
	producer  EventPublisher
	currency  string
	logger    *zap.Logger
}

// NewPlannerService creates a new PlannerService.
func NewPlannerService(
	repo plan.PlanRepository,
	generator ai.RouteGenerator,
	geocoder geo.Geocoder,
	producer EventPublisher,
	currency string,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		repo:      repo,
		generator: generator,
		geocoder:  geocoder,
		producer:  producer,
		currency:  currency,
		logger:    logger,
	}
}

// CreatePlan geocodes the query, generates route options, normalizes them and
// persists the resulting plan for the given commuter.
func (s *PlannerService) CreatePlan(ctx context.Context, commuterID uuid.UUID, req CreatePlanRequest) (*PlanDTO, error) {
	var originLoc, destLoc *geo.Location

	// Both endpoints resolve independently, so geocode them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loc, err := s.geocoder.Geocode(gctx, req.Origin, req.City)
		if err != nil {
			return resolveError("origin", req.Origin, err)
		}
		originLoc = loc
		return nil
	})
	g.Go(func() error {
		loc, err := s.geocoder.Geocode(gctx, req.Destination, req.City)
		if err != nil {
			return resolveError("destination", req.Destination, err)
		}
		destLoc = loc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateRoutes(ctx, ai.Query{
		Origin:         req.Origin,
		Destination:    req.Destination,
		City:           req.City,
		OriginLat:      originLoc.Latitude,
		OriginLng:      originLoc.Longitude,
		DestinationLat: destLoc.Latitude,
		DestinationLng: destLoc.Longitude,
		Currency:       s.currency,
	})
	if err != nil {
		return nil, err
	}

	options, err := route.Normalize(generated.Candidates)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, domain.NewUnavailableError("route generator returned no routes")
	}

	p, err := plan.NewTripPlan(
		commuterID,
		plan.TripQuery{Origin: req.Origin, Destination: req.Destination, City: req.City},
		toGeoPoint(originLoc),
		toGeoPoint(destLoc),
		plan.CarBaseline{
			TotalDurationMinutes: generated.Baseline.TotalDurationMinutes,
			TotalCostCurrency:    generated.Baseline.TotalCostCurrency,
			CO2EmittedKg:         generated.Baseline.CO2EmittedKg,
		},
		s.currency,
		options,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	s.publishPlanCreated(ctx, p)

	s.logger.Info("trip plan created",
		zap.String("plan_id", p.ID().String()),
		zap.String("plan_number", p.PlanNumber()),
		zap.String("commuter_id", commuterID.String()),
		zap.Int("routes", len(options)),
	)

	result := s.toPlanDTO(p)
	return &result, nil
}

// GetPlan retrieves a single plan. Commuters can only read their own plans;
// admins can read any.
func (s *PlannerService) GetPlan(ctx context.Context, planID, requesterID uuid.UUID, requesterRole string) (*PlanDTO, error) {
	p, err := s.findAccessible(ctx, planID, requesterID, requesterRole)
	if err != nil {
		return nil, err
	}
	result := s.toPlanDTO(p)
	return &result, nil
}

// GetPlanRoutes returns the plan's routes re-ranked by the given key and
// order, with best-in-class stats recomputed for the set.
func (s *PlannerService) GetPlanRoutes(
	ctx context.Context,
	planID, requesterID uuid.UUID,
	requesterRole string,
	key route.SortKey,
	order route.SortOrder,
) ([]RouteDTO, *route.BestStats, error) {
	p, err := s.findAccessible(ctx, planID, requesterID, requesterRole)
	if err != nil {
		return nil, nil, err
	}

	sorted := route.SortOptions(p.Routes(), key, order)
	stats := route.ComputeBestStats(p.Routes())
	return decorateRoutes(sorted, stats), stats, nil
}

// ListPlans retrieves paginated plan summaries for a commuter.
func (s *PlannerService) ListPlans(ctx context.Context, commuterID uuid.UUID, page, limit int) (*domain.PaginatedResult[PlanSummaryDTO], error) {
	plans, total, err := s.repo.FindByCommuterID(ctx, commuterID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]PlanSummaryDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanSummaryDTO(p)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ArchivePlan archives a plan owned by the requester.
func (s *PlannerService) ArchivePlan(ctx context.Context, planID, requesterID uuid.UUID) (*PlanDTO, error) {
	p, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("plan does not belong to this user")
	}

	if err := p.Archive(); err != nil {
		return nil, err
	}

	p.IncrementVersion()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	evt := events.PlanArchivedEvent{
		PlanID:     p.ID(),
		PlanNumber: p.PlanNumber(),
		CommuterID: p.CommuterID(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicPlanEvents, events.PlanArchived, evt)

	result := s.toPlanDTO(p)
	return &result, nil
}

// CompleteTrip marks a plan as taken with the route the commuter actually
// used. Invoked by the trip-events consumer when the tracking service reports
// a completed trip.
func (s *PlannerService) CompleteTrip(ctx context.Context, planID uuid.UUID, routeID string) error {
	p, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return err
	}

	if err := p.MarkTaken(routeID); err != nil {
		return err
	}

	p.IncrementVersion()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	taken, _ := p.FindRoute(routeID)
	evt := events.PlanTakenEvent{
		PlanID:     p.ID(),
		PlanNumber: p.PlanNumber(),
		CommuterID: p.CommuterID(),
		RouteID:    routeID,
		RouteTitle: taken.Title,
		CO2SavedKg: taken.CO2SavedKg,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicPlanEvents, events.PlanTaken, evt)

	s.logger.Info("plan marked taken",
		zap.String("plan_id", p.ID().String()),
		zap.String("route_id", routeID),
	)
	return nil
}

// SuggestLocations returns geocoder-backed suggestions for a partial query.
func (s *PlannerService) SuggestLocations(ctx context.Context, query, city string, limit int) ([]geo.Location, error) {
	return s.geocoder.Suggest(ctx, query, city, limit)
}

// --- Admin methods ---

// PlanStatsDTO holds plan statistics for the admin dashboard.
type PlanStatsDTO struct {
	TotalPlans int64            `json:"total_plans"`
	ByStatus   map[string]int64 `json:"by_status"`
}

// ListAllPlans returns a paginated list of all plans (admin).
func (s *PlannerService) ListAllPlans(ctx context.Context, page, limit int) ([]PlanSummaryDTO, int64, error) {
	plans, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	dtos := make([]PlanSummaryDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanSummaryDTO(p)
	}
	return dtos, total, nil
}

// GetPlanStats returns aggregate plan statistics (admin).
func (s *PlannerService) GetPlanStats(ctx context.Context) (*PlanStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &PlanStatsDTO{
		TotalPlans: total,
		ByStatus:   counts,
	}, nil
}

// --- Helpers ---

func (s *PlannerService) findAccessible(ctx context.Context, planID, requesterID uuid.UUID, requesterRole string) (*plan.TripPlan, error) {
	p, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if requesterRole != auth.RoleAdmin && !p.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("plan does not belong to this user")
	}
	return p, nil
}

func (s *PlannerService) toPlanDTO(p *plan.TripPlan) PlanDTO {
	stats := route.ComputeBestStats(p.Routes())
	return PlanDTO{
		ID:               p.ID(),
		PlanNumber:       p.PlanNumber(),
		CommuterID:       p.CommuterID(),
		Status:           string(p.Status()),
		Query:            p.Query(),
		OriginPoint:      p.OriginPoint(),
		DestinationPoint: p.DestinationPoint(),
		CarBaseline:      p.Baseline(),
		Currency:         p.Currency(),
		Routes:           decorateRoutes(p.Routes(), stats),
		BestStats:        stats,
		ChosenRouteID:    p.ChosenRouteID(),
		TakenAt:          p.TakenAt(),
		ArchivedAt:       p.ArchivedAt(),
		Version:          p.Version(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}

func toPlanSummaryDTO(p *plan.TripPlan) PlanSummaryDTO {
	return PlanSummaryDTO{
		ID:          p.ID(),
		PlanNumber:  p.PlanNumber(),
		CommuterID:  p.CommuterID(),
		Status:      string(p.Status()),
		Origin:      p.Query().Origin,
		Destination: p.Query().Destination,
		City:        p.Query().City,
		RouteCount:  len(p.Routes()),
		CreatedAt:   p.CreatedAt(),
	}
}

func decorateRoutes(options []route.Option, stats *route.BestStats) []RouteDTO {
	dtos := make([]RouteDTO, len(options))
	for i, o := range options {
		dto := RouteDTO{Option: o}
		if stats != nil {
			dto.IsFastest = o.TotalDurationMinutes == stats.MinDurationMinutes
			dto.IsCheapest = o.TotalCostCurrency == stats.MinCostCurrency
			dto.IsGreenest = o.CO2SavedKg == stats.MaxCO2SavedKg
		}
		dtos[i] = dto
	}
	return dtos
}

func toGeoPoint(loc *geo.Location) plan.GeoPoint {
	return plan.GeoPoint{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Label:     loc.Label,
		PlaceID:   loc.PlaceID,
	}
}

// resolveError turns a geocoding miss into a caller-facing validation error;
// provider failures pass through untouched.
func resolveError(which, address string, err error) error {
	if errors.Is(err, geo.ErrNoResults) {
		return domain.NewValidationError(fmt.Sprintf("could not resolve %s %q", which, address))
	}
	return err
}

func (s *PlannerService) publishPlanCreated(ctx context.Context, p *plan.TripPlan) {
	stats := route.ComputeBestStats(p.Routes())

	evt := events.PlanCreatedEvent{
		PlanID:      p.ID(),
		PlanNumber:  p.PlanNumber(),
		CommuterID:  p.CommuterID(),
		Origin:      p.Query().Origin,
		Destination: p.Query().Destination,
		City:        p.Query().City,
		RouteCount:  len(p.Routes()),
		OccurredAt:  time.Now().UTC(),
	}
	if stats != nil {
		evt.MinDurationMinutes = stats.MinDurationMinutes
		evt.MinCostCurrency = stats.MinCostCurrency
		evt.MaxCO2SavedKg = stats.MaxCO2SavedKg
	}
	s.publishEvent(ctx, events.TopicPlanEvents, events.PlanCreated, evt)
}

func (s *PlannerService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-planner", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
