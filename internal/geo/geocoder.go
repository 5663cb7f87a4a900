package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"googlemaps.github.io/maps"

	"github.com/EcoCommute/service-planner/internal/domain"
)

// ErrNoResults is returned when the provider finds nothing for a query.
var ErrNoResults = errors.New("no geocoding results")

// Location is a resolved place.
type Location struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	PlaceID   string  `json:"place_id"`
}

// Geocoder resolves free-form addresses to coordinates.
type Geocoder interface {
	// Geocode resolves a single address within a city. Returns ErrNoResults
	// if the provider cannot place it.
	Geocode(ctx context.Context, address, city string) (*Location, error)

	// Suggest returns up to limit candidate locations for a partial query.
	Suggest(ctx context.Context, query, city string, limit int) ([]Location, error)
}

// GoogleGeocoder resolves addresses through the Google Geocoding API. Results
// are cached with a TTL and concurrent lookups for the same address are
// coalesced through singleflight, so a burst of plans for the same office
// address costs one provider call.
type GoogleGeocoder struct {
	client *maps.Client
	region string
	cache  *locationCache
	group  singleflight.Group
	logger *zap.Logger
}

// NewGoogleGeocoder creates a geocoder backed by the Google Maps API. region
// biases results ("in" for India). Extra client options are for tests.
func NewGoogleGeocoder(apiKey, region string, cacheTTL time.Duration, logger *zap.Logger, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{
		client: client,
		region: region,
		cache:  newLocationCache(cacheTTL),
		logger: logger,
	}, nil
}

// Geocode resolves a single address within a city.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address, city string) (*Location, error) {
	key := cacheKey("geocode", address, city, 1)

	locations, err := g.lookup(ctx, key, address, city, 1)
	if err != nil {
		return nil, err
	}
	return &locations[0], nil
}

// Suggest returns up to limit candidate locations for a partial query.
func (g *GoogleGeocoder) Suggest(ctx context.Context, query, city string, limit int) ([]Location, error) {
	if limit <= 0 {
		limit = 5
	}
	key := cacheKey("suggest", query, city, limit)

	locations, err := g.lookup(ctx, key, query, city, limit)
	if errors.Is(err, ErrNoResults) {
		return []Location{}, nil
	}
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// lookup serves from cache when possible, otherwise fetches through
// singleflight so identical concurrent queries share one provider call.
func (g *GoogleGeocoder) lookup(ctx context.Context, key, address, city string, limit int) ([]Location, error) {
	if cached, ok := g.cache.get(key); ok {
		return cached, nil
	}

	result, err, shared := g.group.Do(key, func() (interface{}, error) {
		return g.fetch(ctx, key, address, city, limit)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		g.logger.Debug("geocode lookup coalesced", zap.String("key", key))
	}
	return result.([]Location), nil
}

func (g *GoogleGeocoder) fetch(ctx context.Context, key, address, city string, limit int) ([]Location, error) {
	full := address
	if city != "" && !strings.Contains(strings.ToLower(address), strings.ToLower(city)) {
		full = address + ", " + city
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: full,
		Region:  g.region,
	})
	if err != nil {
		g.logger.Error("geocoding request failed", zap.String("address", full), zap.Error(err))
		return nil, domain.NewUnavailableError("geocoding service is unavailable")
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	if len(results) > limit {
		results = results[:limit]
	}

	locations := make([]Location, len(results))
	for i, r := range results {
		locations[i] = Location{
			Label:     r.FormattedAddress,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
			PlaceID:   r.PlaceID,
		}
	}

	g.cache.put(key, locations)
	return locations, nil
}

func cacheKey(kind, address, city string, limit int) string {
	return fmt.Sprintf("%s:%d:%s|%s", kind, limit, strings.ToLower(strings.TrimSpace(address)), strings.ToLower(strings.TrimSpace(city)))
}
