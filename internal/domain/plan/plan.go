package plan

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/EcoCommute/service-planner/internal/domain"
	"github.com/EcoCommute/service-planner/internal/domain/route"
)

const planNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TripPlan is the aggregate root for the planning domain. It holds the
// commuter's query, the resolved endpoints, the car baseline and the
// normalized set of route options the commuter can choose from.
type TripPlan struct {
	id               uuid.UUID
	planNumber       string
	commuterID       uuid.UUID
	status           PlanStatus
	query            TripQuery
	originPoint      GeoPoint
	destinationPoint GeoPoint
	baseline         CarBaseline
	currency         string
	routes           []route.Option

	chosenRouteID *string
	takenAt       *time.Time
	archivedAt    *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generatePlanNumber creates a plan number in the format "CP-XXXXXX".
func generatePlanNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(planNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate plan number: %w", err)
		}
		result[i] = planNumberChars[n.Int64()]
	}
	return "CP-" + string(result), nil
}

// NewTripPlan creates a new TripPlan aggregate with status=ready.
func NewTripPlan(
	commuterID uuid.UUID,
	query TripQuery,
	originPoint GeoPoint,
	destinationPoint GeoPoint,
	baseline CarBaseline,
	currency string,
	routes []route.Option,
) (*TripPlan, error) {
	if commuterID == uuid.Nil {
		return nil, domain.NewValidationError("commuter ID is required")
	}
	if query.Origin == "" {
		return nil, domain.NewValidationError("origin is required")
	}
	if query.Destination == "" {
		return nil, domain.NewValidationError("destination is required")
	}
	if query.City == "" {
		return nil, domain.NewValidationError("city is required")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}
	if len(routes) == 0 {
		return nil, domain.NewValidationError("at least one route option is required")
	}

	planNumber, err := generatePlanNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &TripPlan{
		id:               uuid.New(),
		planNumber:       planNumber,
		commuterID:       commuterID,
		status:           StatusReady,
		query:            query,
		originPoint:      originPoint,
		destinationPoint: destinationPoint,
		baseline:         baseline,
		currency:         currency,
		routes:           routes,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructTripPlan rebuilds a TripPlan from persistence data (no validation).
func ReconstructTripPlan(
	id uuid.UUID,
	planNumber string,
	commuterID uuid.UUID,
	status PlanStatus,
	query TripQuery,
	originPoint GeoPoint,
	destinationPoint GeoPoint,
	baseline CarBaseline,
	currency string,
	routes []route.Option,
	chosenRouteID *string,
	takenAt *time.Time,
	archivedAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *TripPlan {
	return &TripPlan{
		id:               id,
		planNumber:       planNumber,
		commuterID:       commuterID,
		status:           status,
		query:            query,
		originPoint:      originPoint,
		destinationPoint: destinationPoint,
		baseline:         baseline,
		currency:         currency,
		routes:           routes,
		chosenRouteID:    chosenRouteID,
		takenAt:          takenAt,
		archivedAt:       archivedAt,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the plan's unique identifier.
func (p *TripPlan) ID() uuid.UUID { return p.id }

// PlanNumber returns the human-readable plan number.
func (p *TripPlan) PlanNumber() string { return p.planNumber }

// CommuterID returns the commuter's user ID.
func (p *TripPlan) CommuterID() uuid.UUID { return p.commuterID }

// Status returns the current plan status.
func (p *TripPlan) Status() PlanStatus { return p.status }

// Query returns the trip query the plan was generated for.
func (p *TripPlan) Query() TripQuery { return p.query }

// OriginPoint returns the geocoded origin.
func (p *TripPlan) OriginPoint() GeoPoint { return p.originPoint }

// DestinationPoint returns the geocoded destination.
func (p *TripPlan) DestinationPoint() GeoPoint { return p.destinationPoint }

// Baseline returns the private-car baseline for the trip.
func (p *TripPlan) Baseline() CarBaseline { return p.baseline }

// Currency returns the currency code all route costs are expressed in.
func (p *TripPlan) Currency() string { return p.currency }

// Routes returns the normalized route options in their generated order.
func (p *TripPlan) Routes() []route.Option { return p.routes }

// ChosenRouteID returns the ID of the route the commuter took, or nil.
func (p *TripPlan) ChosenRouteID() *string { return p.chosenRouteID }

// TakenAt returns the time the commuter started the trip.
func (p *TripPlan) TakenAt() *time.Time { return p.takenAt }

// ArchivedAt returns the time the plan was archived.
func (p *TripPlan) ArchivedAt() *time.Time { return p.archivedAt }

// Version returns the entity version for optimistic locking.
func (p *TripPlan) Version() int64 { return p.version }

// CreatedAt returns the creation timestamp.
func (p *TripPlan) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (p *TripPlan) UpdatedAt() time.Time { return p.updatedAt }

// IsOwnedBy returns true if the plan belongs to the given user.
func (p *TripPlan) IsOwnedBy(userID uuid.UUID) bool {
	return p.commuterID == userID
}

// FindRoute returns the route option with the given ID, if present.
func (p *TripPlan) FindRoute(routeID string) (route.Option, bool) {
	for _, r := range p.routes {
		if r.ID == routeID {
			return r, true
		}
	}
	return route.Option{}, false
}

// --- Behavior ---

// MarkTaken transitions the plan from ready to taken, recording which of its
// route options the commuter actually used.
func (p *TripPlan) MarkTaken(routeID string) error {
	if !p.status.CanTransitionTo(StatusTaken) {
		return domain.NewInvalidStateError(string(p.status), string(StatusTaken))
	}
	if routeID == "" {
		return domain.NewValidationError("route ID is required")
	}
	if _, ok := p.FindRoute(routeID); !ok {
		return domain.NewValidationError(fmt.Sprintf("route %s does not belong to this plan", routeID))
	}
	now := time.Now().UTC()
	p.status = StatusTaken
	p.chosenRouteID = &routeID
	p.takenAt = &now
	p.updatedAt = now
	return nil
}

// Archive transitions the plan to archived if it is not in a terminal state.
func (p *TripPlan) Archive() error {
	if !p.status.CanBeArchived() {
		return domain.NewInvalidStateError(string(p.status), string(StatusArchived))
	}
	now := time.Now().UTC()
	p.status = StatusArchived
	p.archivedAt = &now
	p.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *TripPlan) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
