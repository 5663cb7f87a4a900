package route_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EcoCommute/service-planner/internal/domain"
	"github.com/EcoCommute/service-planner/internal/domain/route"
)

func fl(v float64) *float64 { return &v }

func candidate(title string, cost, duration float64, tags ...string) route.Candidate {
	return route.Candidate{
		Title:                title,
		TotalCostCurrency:    fl(cost),
		TotalDurationMinutes: fl(duration),
		Steps: []route.Step{
			{Mode: "metro", Instruction: "Take the metro", DurationMinutes: duration},
		},
		Tags: tags,
	}
}

func asCandidates(options []route.Option) []route.Candidate {
	out := make([]route.Candidate, len(options))
	for i, o := range options {
		cost, duration := o.TotalCostCurrency, o.TotalDurationMinutes
		out[i] = route.Candidate{
			ID:                   o.ID,
			Title:                o.Title,
			TotalCostCurrency:    &cost,
			TotalDurationMinutes: &duration,
			CO2EmittedKg:         o.CO2EmittedKg,
			TimeSavedMinutes:     o.TimeSavedMinutes,
			MoneySavedCurrency:   o.MoneySavedCurrency,
			CO2SavedKg:           o.CO2SavedKg,
			Steps:                o.Steps,
			Tags:                 o.Tags,
			Score:                o.Score,
		}
	}
	return out
}

func TestNormalize_EmptyInput(t *testing.T) {
	out, err := route.Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = route.Normalize([]route.Candidate{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNormalize_PreservesOrderWithoutDuplicates(t *testing.T) {
	in := []route.Candidate{
		candidate("Metro + Walk", 40, 35, "Fastest"),
		candidate("Bus Direct", 15, 50, "Cheapest"),
		candidate("E-Bike", 25, 42, "Greenest"),
	}

	out, err := route.Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Metro + Walk", out[0].Title)
	assert.Equal(t, "Bus Direct", out[1].Title)
	assert.Equal(t, "E-Bike", out[2].Title)
}

func TestNormalize_MergesSignatureDuplicates(t *testing.T) {
	a := candidate("Metro+Walk", 40, 35, "Fastest")
	dup := candidate("metro+walk ", 40, 35, "Cheapest")

	out, err := route.Normalize([]route.Candidate{a, dup})
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "Metro+Walk", got.Title, "first occurrence keeps its title")
	assert.Equal(t, []string{"Fastest", "Cheapest"}, got.Tags)
	assert.Equal(t, 40.0, got.TotalCostCurrency)
	assert.Equal(t, 35.0, got.TotalDurationMinutes)
}

func TestNormalize_FirstSeenFieldsWin(t *testing.T) {
	first := candidate("Express Bus", 30, 45, "Fastest")
	first.CO2SavedKg = 1.5
	first.Score = 82

	dup := candidate("express bus", 30, 45, "Most Balanced")
	dup.CO2SavedKg = 9.9
	dup.Score = 10

	out, err := route.Normalize([]route.Candidate{first, dup})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, 1.5, out[0].CO2SavedKg, "duplicate's numeric fields are discarded")
	assert.Equal(t, 82.0, out[0].Score)
	assert.Equal(t, []string{"Fastest", "Most Balanced"}, out[0].Tags)
}

func TestNormalize_TitleOnlyMatchIsNotADuplicate(t *testing.T) {
	a := candidate("Metro", 40, 35)
	b := candidate("Metro", 40, 38)

	out, err := route.Normalize([]route.Candidate{a, b})
	require.NoError(t, err)
	assert.Len(t, out, 2, "same title with different duration is a distinct route")
}

func TestNormalize_DeduplicatesTagsWithinCandidate(t *testing.T) {
	in := []route.Candidate{candidate("Metro", 40, 35, "Fastest", "Fastest", "Greenest")}

	out, err := route.Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"Fastest", "Greenest"}, out[0].Tags)
}

func TestNormalize_TagCaseIsSignificant(t *testing.T) {
	a := candidate("Metro", 40, 35, "Fastest")
	dup := candidate("metro", 40, 35, "fastest")

	out, err := route.Normalize([]route.Candidate{a, dup})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"Fastest", "fastest"}, out[0].Tags)
}

func TestNormalize_MissingTagsAndStepsAreEmptyNotErrors(t *testing.T) {
	in := []route.Candidate{{
		Title:                "Walk",
		TotalCostCurrency:    fl(0),
		TotalDurationMinutes: fl(70),
	}}

	out, err := route.Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Tags)
	assert.Empty(t, out[0].Steps)
}

func TestNormalize_Idempotent(t *testing.T) {
	in := []route.Candidate{
		candidate("Metro + Walk", 40, 35, "Fastest"),
		candidate("metro + walk", 40, 35, "Cheapest"),
		candidate("Bus Direct", 15, 50, "Cheapest"),
	}

	once, err := route.Normalize(in)
	require.NoError(t, err)

	twice, err := route.Normalize(asCandidates(once))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	a := candidate("Metro", 40, 35, "Fastest")
	dup := candidate("metro", 40, 35, "Cheapest")
	in := []route.Candidate{a, dup}

	_, err := route.Normalize(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"Fastest"}, in[0].Tags)
	assert.Equal(t, []string{"Cheapest"}, in[1].Tags)
}

func TestNormalize_RejectsEntriesWithIllDefinedSignature(t *testing.T) {
	t.Run("missing title", func(t *testing.T) {
		in := []route.Candidate{
			candidate("Metro", 40, 35),
			{Title: "   ", TotalCostCurrency: fl(10), TotalDurationMinutes: fl(20)},
		}
		_, err := route.Normalize(in)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Message, "position 1")
		assert.Contains(t, validationErr.Message, "title")
	})

	t.Run("missing cost", func(t *testing.T) {
		in := []route.Candidate{{Title: "Metro", TotalDurationMinutes: fl(20)}}
		_, err := route.Normalize(in)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Message, "Metro")
		assert.Contains(t, validationErr.Message, "cost")
	})

	t.Run("missing duration", func(t *testing.T) {
		in := []route.Candidate{{Title: "Metro", TotalCostCurrency: fl(40)}}
		_, err := route.Normalize(in)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Message, "duration")
	})

	t.Run("whole batch rejected", func(t *testing.T) {
		in := []route.Candidate{
			candidate("Metro", 40, 35),
			{Title: "Bus"},
		}
		out, err := route.Normalize(in)
		require.Error(t, err)
		assert.Nil(t, out, "no partial output on validation failure")
	})
}

func TestNormalize_ZeroCostIsValid(t *testing.T) {
	in := []route.Candidate{candidate("Walk", 0, 70, "Greenest")}

	out, err := route.Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].TotalCostCurrency)
}
