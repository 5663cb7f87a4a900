package route

import (
	"fmt"
	"math"
	"sort"
)

// SortKey selects the metric routes are compared on.
type SortKey string

const (
	SortKeyDuration SortKey = "duration"
	SortKeyCost     SortKey = "cost"
	SortKeyCO2      SortKey = "co2"
)

// ParseSortKey converts a string to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortKeyDuration, SortKeyCost, SortKeyCO2:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("invalid sort key: %s", s)
}

// SortOrder selects the comparison direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder converts a string to a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("invalid sort order: %s", s)
}

// BestStats holds the best value per metric across a route set. Multiple
// routes may equal an extremum; consumers compare by equality, so all of
// them count as best-in-class.
type BestStats struct {
	MinDurationMinutes float64 `json:"min_duration_minutes"`
	MinCostCurrency    float64 `json:"min_cost_currency"`
	MaxCO2SavedKg      float64 `json:"max_co2_saved_kg"`
}

// SortOptions returns a new slice sorted by the given key and order. The
// sort is stable (ties keep their prior relative order) and the input is
// not mutated. asc means smaller-first for every key; the co2 key compares
// CO2SavedKg. NaN compares greater than any finite value, which keeps the
// order total: NaN entries sort last ascending and first descending.
func SortOptions(options []Option, key SortKey, order SortOrder) []Option {
	out := make([]Option, len(options))
	copy(out, options)

	metric := metricFor(key)
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareFloat(metric(out[i]), metric(out[j]))
		if order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// ComputeBestStats returns the minimum duration, minimum cost and maximum
// CO2 saved across the set, or nil for an empty set. Non-finite values never
// win an extremum; a metric with no finite values at all reports NaN.
func ComputeBestStats(options []Option) *BestStats {
	if len(options) == 0 {
		return nil
	}

	minDuration := math.NaN()
	minCost := math.NaN()
	maxCO2Saved := math.NaN()

	for _, o := range options {
		if isFinite(o.TotalDurationMinutes) && (math.IsNaN(minDuration) || o.TotalDurationMinutes < minDuration) {
			minDuration = o.TotalDurationMinutes
		}
		if isFinite(o.TotalCostCurrency) && (math.IsNaN(minCost) || o.TotalCostCurrency < minCost) {
			minCost = o.TotalCostCurrency
		}
		if isFinite(o.CO2SavedKg) && (math.IsNaN(maxCO2Saved) || o.CO2SavedKg > maxCO2Saved) {
			maxCO2Saved = o.CO2SavedKg
		}
	}

	return &BestStats{
		MinDurationMinutes: minDuration,
		MinCostCurrency:    minCost,
		MaxCO2SavedKg:      maxCO2Saved,
	}
}

func metricFor(key SortKey) func(Option) float64 {
	switch key {
	case SortKeyCost:
		return func(o Option) float64 { return o.TotalCostCurrency }
	case SortKeyCO2:
		return func(o Option) float64 { return o.CO2SavedKg }
	default:
		return func(o Option) float64 { return o.TotalDurationMinutes }
	}
}

// compareFloat orders floats with NaN greater than any other value, so
// comparisons stay transitive even on malformed numeric input.
func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
