package plan

// TripQuery is an immutable value object describing the commute being planned.
type TripQuery struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	City        string `json:"city"`
}

// GeoPoint is a resolved geographic location for one end of a trip.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Label     string  `json:"label"`
	PlaceID   string  `json:"place_id"`
}

// CarBaseline is a value object capturing what the same trip would take by
// private car. Per-route savings are expressed relative to it.
type CarBaseline struct {
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	TotalCostCurrency    float64 `json:"total_cost_currency"`
	CO2EmittedKg         float64 `json:"co2_emitted_kg"`
}
