// Package route holds the commute route model: the candidate shape returned
// by the generation service, the normalized option shape served to clients,
// and the pure normalization and ranking functions that connect them.
package route

// Step is one leg of a multimodal route.
type Step struct {
	Mode            string  `json:"mode"`
	Instruction     string  `json:"instruction"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// Option is a normalized route option compared against the car baseline.
// TimeSavedMinutes is signed; positive means faster than the car.
type Option struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	TotalDurationMinutes float64  `json:"total_duration_minutes"`
	TotalCostCurrency    float64  `json:"total_cost_currency"`
	CO2EmittedKg         float64  `json:"co2_emitted_kg"`
	TimeSavedMinutes     float64  `json:"time_saved_minutes"`
	MoneySavedCurrency   float64  `json:"money_saved_currency"`
	CO2SavedKg           float64  `json:"co2_saved_kg"`
	Steps                []Step   `json:"steps"`
	Tags                 []string `json:"tags"`
	Score                float64  `json:"score"`
}

// Candidate is a raw route as parsed from the generation service, before
// normalization. Cost and duration are pointers so that absent fields are
// distinguishable from legitimate zero values (a walking route costs 0).
type Candidate struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	TotalDurationMinutes *float64 `json:"total_duration_minutes"`
	TotalCostCurrency    *float64 `json:"total_cost_currency"`
	CO2EmittedKg         float64  `json:"co2_emitted_kg"`
	TimeSavedMinutes     float64  `json:"time_saved_minutes"`
	MoneySavedCurrency   float64  `json:"money_saved_currency"`
	CO2SavedKg           float64  `json:"co2_saved_kg"`
	Steps                []Step   `json:"steps"`
	Tags                 []string `json:"tags"`
	Score                float64  `json:"score"`
}

// option converts a validated candidate into an Option with fresh slices and
// its own tags deduplicated.
func (c Candidate) option() Option {
	steps := make([]Step, len(c.Steps))
	copy(steps, c.Steps)

	return Option{
		ID:                   c.ID,
		Title:                c.Title,
		TotalDurationMinutes: *c.TotalDurationMinutes,
		TotalCostCurrency:    *c.TotalCostCurrency,
		CO2EmittedKg:         c.CO2EmittedKg,
		TimeSavedMinutes:     c.TimeSavedMinutes,
		MoneySavedCurrency:   c.MoneySavedCurrency,
		CO2SavedKg:           c.CO2SavedKg,
		Steps:                steps,
		Tags:                 dedupTags(c.Tags),
		Score:                c.Score,
	}
}
