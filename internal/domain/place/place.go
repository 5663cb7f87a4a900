package place

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlaceStatus represents the lifecycle state of a saved place.
type PlaceStatus string

const (
	PlaceStatusActive   PlaceStatus = "active"
	PlaceStatusArchived PlaceStatus = "archived"
)

// SavedPlace is the aggregate root for a commuter's saved location,
// such as home or office. Coordinates come from geocoding the address.
type SavedPlace struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	label     string
	address   string
	city      string
	latitude  float64
	longitude float64
	placeID   string
	notes     string
	status    PlaceStatus
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewSavedPlace creates a new active saved place with validated fields.
func NewSavedPlace(
	ownerID uuid.UUID,
	label, address, city string,
	latitude, longitude float64,
	placeID, notes string,
) (*SavedPlace, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if label == "" {
		return nil, fmt.Errorf("place label is required")
	}
	if address == "" {
		return nil, fmt.Errorf("place address is required")
	}
	if city == "" {
		return nil, fmt.Errorf("place city is required")
	}

	now := time.Now().UTC()
	return &SavedPlace{
		id:        uuid.New(),
		ownerID:   ownerID,
		label:     label,
		address:   address,
		city:      city,
		latitude:  latitude,
		longitude: longitude,
		placeID:   placeID,
		notes:     notes,
		status:    PlaceStatusActive,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a SavedPlace from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	label, address, city string,
	latitude, longitude float64,
	placeID, notes string,
	status PlaceStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *SavedPlace {
	return &SavedPlace{
		id:        id,
		ownerID:   ownerID,
		label:     label,
		address:   address,
		city:      city,
		latitude:  latitude,
		longitude: longitude,
		placeID:   placeID,
		notes:     notes,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (p *SavedPlace) ID() uuid.UUID       { return p.id }
func (p *SavedPlace) OwnerID() uuid.UUID  { return p.ownerID }
func (p *SavedPlace) Label() string       { return p.label }
func (p *SavedPlace) Address() string     { return p.address }
func (p *SavedPlace) City() string        { return p.city }
func (p *SavedPlace) Latitude() float64   { return p.latitude }
func (p *SavedPlace) Longitude() float64  { return p.longitude }
func (p *SavedPlace) PlaceID() string     { return p.placeID }
func (p *SavedPlace) Notes() string       { return p.notes }
func (p *SavedPlace) Status() PlaceStatus { return p.status }
func (p *SavedPlace) Version() int64      { return p.version }
func (p *SavedPlace) CreatedAt() time.Time { return p.createdAt }
func (p *SavedPlace) UpdatedAt() time.Time { return p.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the place belongs to the given owner.
func (p *SavedPlace) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// Update applies partial updates to the saved place. It reports whether the
// address or city changed, meaning the place needs re-geocoding.
func (p *SavedPlace) Update(label, address, city, notes string) bool {
	needsGeocode := false
	if label != "" {
		p.label = label
	}
	if address != "" && address != p.address {
		p.address = address
		needsGeocode = true
	}
	if city != "" && city != p.city {
		p.city = city
		needsGeocode = true
	}
	if notes != "" {
		p.notes = notes
	}
	p.version++
	p.updatedAt = time.Now().UTC()
	return needsGeocode
}

// SetCoordinates records the geocoded position for the place.
func (p *SavedPlace) SetCoordinates(latitude, longitude float64, placeID string) {
	p.latitude = latitude
	p.longitude = longitude
	p.placeID = placeID
	p.updatedAt = time.Now().UTC()
}

// Archive marks the saved place as archived.
func (p *SavedPlace) Archive() {
	p.status = PlaceStatusArchived
	p.version++
	p.updatedAt = time.Now().UTC()
}

// IsActive returns true if the saved place is active.
func (p *SavedPlace) IsActive() bool {
	return p.status == PlaceStatusActive
}
