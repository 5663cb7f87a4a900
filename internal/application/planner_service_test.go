package application_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EcoCommute/service-planner/internal/ai"
	"github.com/EcoCommute/service-planner/internal/application"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/domain"
	"github.com/EcoCommute/service-planner/internal/domain/plan"
	"github.com/EcoCommute/service-planner/internal/domain/route"
	"github.com/EcoCommute/service-planner/internal/events"
	"github.com/EcoCommute/service-planner/internal/geo"
	"github.com/EcoCommute/service-planner/internal/kafka"
)

// --- Fakes ---

type fakePlanRepo struct {
	plans     map[uuid.UUID]*plan.TripPlan
	saveErr   error
	updateErr error
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uuid.UUID]*plan.TripPlan)}
}

func (r *fakePlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*plan.TripPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.NewNotFoundError("Plan", id.String())
	}
	return p, nil
}

func (r *fakePlanRepo) FindByNumber(ctx context.Context, number string) (*plan.TripPlan, error) {
	for _, p := range r.plans {
		if p.PlanNumber() == number {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Plan", number)
}

func (r *fakePlanRepo) FindByCommuterID(ctx context.Context, commuterID uuid.UUID, page, limit int) ([]*plan.TripPlan, int64, error) {
	var out []*plan.TripPlan
	for _, p := range r.plans {
		if p.CommuterID() == commuterID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePlanRepo) ListAll(ctx context.Context, page, limit int) ([]*plan.TripPlan, int64, error) {
	var out []*plan.TripPlan
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePlanRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, p := range r.plans {
		counts[string(p.Status())]++
	}
	return counts, nil
}

func (r *fakePlanRepo) Save(ctx context.Context, p *plan.TripPlan) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.plans[p.ID()] = p
	return nil
}

func (r *fakePlanRepo) Update(ctx context.Context, p *plan.TripPlan) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.plans[p.ID()] = p
	return nil
}

type fakeGeocoder struct {
	err     error
	missing map[string]bool
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address, city string) (*geo.Location, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.missing[address] {
		return nil, geo.ErrNoResults
	}
	return &geo.Location{
		Label:     address + ", " + city,
		Latitude:  12.97,
		Longitude: 77.64,
		PlaceID:   "place-" + address,
	}, nil
}

func (g *fakeGeocoder) Suggest(ctx context.Context, query, city string, limit int) ([]geo.Location, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []geo.Location{{Label: query + ", " + city, Latitude: 12.97, Longitude: 77.64}}, nil
}

type fakeGenerator struct {
	result *ai.RoutePlan
	err    error
}

func (f *fakeGenerator) GenerateRoutes(ctx context.Context, q ai.Query) (*ai.RoutePlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{topic: topic, event: event})
	return nil
}

// --- Fixtures ---

func fl(v float64) *float64 { return &v }

func generatedRoutes() *ai.RoutePlan {
	step := func(mode string, minutes float64) route.Step {
		return route.Step{Mode: mode, Instruction: "go", DurationMinutes: minutes}
	}
	return &ai.RoutePlan{
		Baseline: ai.Baseline{TotalDurationMinutes: 55, TotalCostCurrency: 180, CO2EmittedKg: 3.4},
		Candidates: []route.Candidate{
			{
				ID: "r1", Title: "Metro + Walk",
				TotalDurationMinutes: fl(35), TotalCostCurrency: fl(40),
				CO2SavedKg: 3.0, Tags: []string{"Fastest"},
				Steps: []route.Step{step("walk", 8), step("metro", 27)},
			},
			{
				ID: "dup", Title: "metro + walk ",
				TotalDurationMinutes: fl(35), TotalCostCurrency: fl(40),
				CO2SavedKg: 9.9, Tags: []string{"Most Balanced"},
				Steps: []route.Step{step("walk", 8), step("metro", 27)},
			},
			{
				ID: "r2", Title: "Bus Direct",
				TotalDurationMinutes: fl(50), TotalCostCurrency: fl(15),
				CO2SavedKg: 2.5, Tags: []string{"Cheapest"},
				Steps: []route.Step{step("bus", 50)},
			},
		},
	}
}

type serviceFixture struct {
	repo      *fakePlanRepo
	geocoder  *fakeGeocoder
	generator *fakeGenerator
	publisher *fakePublisher
	service   *application.PlannerService
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		repo:      newFakePlanRepo(),
		geocoder:  &fakeGeocoder{},
		generator: &fakeGenerator{result: generatedRoutes()},
		publisher: &fakePublisher{},
	}
	f.service = application.NewPlannerService(f.repo, f.generator, f.geocoder, f.publisher, "INR", zap.NewNop())
	return f
}

func createRequest() application.CreatePlanRequest {
	return application.CreatePlanRequest{
		Origin:      "Indiranagar",
		Destination: "Whitefield",
		City:        "Bengaluru",
	}
}

// --- Tests ---

func TestCreatePlan(t *testing.T) {
	f := newFixture()
	commuterID := uuid.New()

	dto, err := f.service.CreatePlan(context.Background(), commuterID, createRequest())
	require.NoError(t, err)

	assert.Equal(t, commuterID, dto.CommuterID)
	assert.Equal(t, "ready", dto.Status)
	assert.Equal(t, "INR", dto.Currency)
	assert.Regexp(t, `^CP-`, dto.PlanNumber)
	assert.Equal(t, 180.0, dto.CarBaseline.TotalCostCurrency)
	assert.Equal(t, "Indiranagar, Bengaluru", dto.OriginPoint.Label)

	// Duplicate candidate collapsed into the first occurrence, tags merged.
	require.Len(t, dto.Routes, 2)
	assert.Equal(t, "Metro + Walk", dto.Routes[0].Title)
	assert.Equal(t, []string{"Fastest", "Most Balanced"}, dto.Routes[0].Tags)
	assert.Equal(t, 3.0, dto.Routes[0].CO2SavedKg, "first-seen numeric fields win")

	// Badges by equality against the best stats.
	require.NotNil(t, dto.BestStats)
	assert.True(t, dto.Routes[0].IsFastest)
	assert.True(t, dto.Routes[0].IsGreenest)
	assert.False(t, dto.Routes[0].IsCheapest)
	assert.True(t, dto.Routes[1].IsCheapest)

	// Persisted and announced.
	assert.Len(t, f.repo.plans, 1)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TopicPlanEvents, f.publisher.published[0].topic)
	assert.Equal(t, events.PlanCreated, f.publisher.published[0].event.Type)
	assert.Equal(t, "service-planner", f.publisher.published[0].event.Source)
}

func TestCreatePlan_UnresolvableOrigin(t *testing.T) {
	f := newFixture()
	f.geocoder.missing = map[string]bool{"Indiranagar": true}

	_, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "origin")
	assert.Empty(t, f.repo.plans)
}

func TestCreatePlan_GeocoderDown(t *testing.T) {
	f := newFixture()
	f.geocoder.err = domain.NewUnavailableError("geocoding service is unavailable")

	_, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	var unavailableErr *domain.UnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
}

func TestCreatePlan_GeneratorDown(t *testing.T) {
	f := newFixture()
	f.generator.err = domain.NewUnavailableError("route generator is unreachable")
	f.generator.result = nil

	_, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	var unavailableErr *domain.UnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
	assert.Empty(t, f.publisher.published)
}

func TestCreatePlan_InvalidCandidateFailsWholeBatch(t *testing.T) {
	f := newFixture()
	f.generator.result.Candidates[1].TotalCostCurrency = nil

	_, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.repo.plans, "nothing is persisted when normalization rejects the batch")
}

func TestCreatePlan_NoRoutesGenerated(t *testing.T) {
	f := newFixture()
	f.generator.result = &ai.RoutePlan{}

	_, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	var unavailableErr *domain.UnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
}

func TestCreatePlan_PublishFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture()
	f.publisher.err = assert.AnError

	dto, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)
	assert.NotNil(t, dto)
	assert.Len(t, f.repo.plans, 1)
}

func TestGetPlan_Ownership(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	created, err := f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)

	got, err := f.service.GetPlan(context.Background(), created.ID, owner, auth.RoleCommuter)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.service.GetPlan(context.Background(), created.ID, uuid.New(), auth.RoleCommuter)
	var forbiddenErr *domain.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	_, err = f.service.GetPlan(context.Background(), created.ID, uuid.New(), auth.RoleAdmin)
	assert.NoError(t, err, "admins can read any plan")
}

func TestGetPlan_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.service.GetPlan(context.Background(), uuid.New(), uuid.New(), auth.RoleAdmin)
	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestGetPlanRoutes_SortsWithoutMutating(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	created, err := f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)

	routes, stats, err := f.service.GetPlanRoutes(context.Background(), created.ID, owner, auth.RoleCommuter, route.SortKeyCost, route.SortAsc)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "Bus Direct", routes[0].Title)
	assert.Equal(t, "Metro + Walk", routes[1].Title)
	require.NotNil(t, stats)
	assert.Equal(t, 15.0, stats.MinCostCurrency)
	assert.True(t, routes[0].IsCheapest)

	// The stored plan keeps its generated order.
	stored, err := f.service.GetPlan(context.Background(), created.ID, owner, auth.RoleCommuter)
	require.NoError(t, err)
	assert.Equal(t, "Metro + Walk", stored.Routes[0].Title)
}

func TestArchivePlan(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	created, err := f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)

	archived, err := f.service.ArchivePlan(context.Background(), created.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "archived", archived.Status)
	assert.NotNil(t, archived.ArchivedAt)

	last := f.publisher.published[len(f.publisher.published)-1]
	assert.Equal(t, events.PlanArchived, last.event.Type)

	_, err = f.service.ArchivePlan(context.Background(), created.ID, owner)
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr, "archived is terminal")
}

func TestArchivePlan_NotOwner(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)

	_, err = f.service.ArchivePlan(context.Background(), created.ID, uuid.New())
	var forbiddenErr *domain.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
}

func TestCompleteTrip(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	created, err := f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)
	routeID := created.Routes[0].ID

	require.NoError(t, f.service.CompleteTrip(context.Background(), created.ID, routeID))

	got, err := f.service.GetPlan(context.Background(), created.ID, owner, auth.RoleCommuter)
	require.NoError(t, err)
	assert.Equal(t, "taken", got.Status)
	require.NotNil(t, got.ChosenRouteID)
	assert.Equal(t, routeID, *got.ChosenRouteID)

	last := f.publisher.published[len(f.publisher.published)-1]
	assert.Equal(t, events.PlanTaken, last.event.Type)

	var evt events.PlanTakenEvent
	require.NoError(t, last.event.ParseData(&evt))
	assert.Equal(t, "Metro + Walk", evt.RouteTitle)
	assert.Equal(t, 3.0, evt.CO2SavedKg)
}

func TestCompleteTrip_UnknownRoute(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)

	err = f.service.CompleteTrip(context.Background(), created.ID, "r999")
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCompleteTrip_AlreadyTaken(t *testing.T) {
	f := newFixture()
	created, err := f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)
	routeID := created.Routes[0].ID

	require.NoError(t, f.service.CompleteTrip(context.Background(), created.ID, routeID))

	err = f.service.CompleteTrip(context.Background(), created.ID, routeID)
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestListPlans(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	_, err := f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)
	_, err = f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)
	_, err = f.service.CreatePlan(context.Background(), uuid.New(), createRequest())
	require.NoError(t, err)

	result, err := f.service.ListPlans(context.Background(), owner, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.Items[0].RouteCount)
}

func TestGetPlanStats(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	created, err := f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)
	_, err = f.service.CreatePlan(context.Background(), owner, createRequest())
	require.NoError(t, err)
	_, err = f.service.ArchivePlan(context.Background(), created.ID, owner)
	require.NoError(t, err)

	stats, err := f.service.GetPlanStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPlans)
	assert.Equal(t, int64(1), stats.ByStatus["ready"])
	assert.Equal(t, int64(1), stats.ByStatus["archived"])
}
