package route_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EcoCommute/service-planner/internal/domain/route"
)

func option(id, title string, cost, duration, co2Saved float64) route.Option {
	return route.Option{
		ID:                   id,
		Title:                title,
		TotalCostCurrency:    cost,
		TotalDurationMinutes: duration,
		CO2SavedKg:           co2Saved,
	}
}

func ids(options []route.Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.ID
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	for _, s := range []string{"duration", "cost", "co2"} {
		key, err := route.ParseSortKey(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(key))
	}

	_, err := route.ParseSortKey("price")
	assert.EqualError(t, err, "invalid sort key: price")
}

func TestParseSortOrder(t *testing.T) {
	for _, s := range []string{"asc", "desc"} {
		order, err := route.ParseSortOrder(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(order))
	}

	_, err := route.ParseSortOrder("up")
	assert.EqualError(t, err, "invalid sort order: up")
}

func TestSortOptions_ByDurationAscending(t *testing.T) {
	in := []route.Option{
		option("a", "Metro", 40, 35, 1.2),
		option("b", "Bus", 15, 50, 0.5),
		option("c", "E-Bike", 25, 20, 2.8),
	}

	got := route.SortOptions(in, route.SortKeyDuration, route.SortAsc)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestSortOptions_ByCO2UsesSavedNotEmitted(t *testing.T) {
	a := option("a", "Metro", 40, 35, 1.2)
	a.CO2EmittedKg = 9.0
	b := option("b", "E-Bike", 25, 42, 2.8)
	b.CO2EmittedKg = 0.1

	got := route.SortOptions([]route.Option{a, b}, route.SortKeyCO2, route.SortDesc)
	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestSortOptions_StableOnTies(t *testing.T) {
	x := option("x", "Metro A", 40, 10, 1.0)
	y := option("y", "Metro B", 15, 10, 2.0)
	z := option("z", "Bus", 20, 30, 0.5)

	got := route.SortOptions([]route.Option{x, y, z}, route.SortKeyDuration, route.SortAsc)
	assert.Equal(t, []string{"x", "y", "z"}, ids(got), "tied entries keep their input order")

	got = route.SortOptions([]route.Option{y, x, z}, route.SortKeyDuration, route.SortAsc)
	assert.Equal(t, []string{"y", "x", "z"}, ids(got))
}

func TestSortOptions_DescendingIsReversedAscending(t *testing.T) {
	in := []route.Option{
		option("a", "Metro", 40, 35, 1.2),
		option("b", "Bus", 15, 50, 0.5),
		option("c", "E-Bike", 25, 42, 2.8),
		option("d", "Walk", 0, 70, 3.1),
	}

	asc := route.SortOptions(in, route.SortKeyCost, route.SortAsc)
	desc := route.SortOptions(in, route.SortKeyCost, route.SortDesc)

	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[len(asc)-1-i].ID, desc[i].ID)
	}
}

func TestSortOptions_NaNComparesGreaterThanFinite(t *testing.T) {
	a := option("a", "Metro", 40, 35, 1.2)
	nan := option("n", "Mystery", math.NaN(), 20, 0.5)
	b := option("b", "Bus", 15, 50, 0.5)

	asc := route.SortOptions([]route.Option{a, nan, b}, route.SortKeyCost, route.SortAsc)
	assert.Equal(t, []string{"b", "a", "n"}, ids(asc))

	desc := route.SortOptions([]route.Option{a, nan, b}, route.SortKeyCost, route.SortDesc)
	assert.Equal(t, []string{"n", "a", "b"}, ids(desc))
}

func TestSortOptions_DoesNotMutateInput(t *testing.T) {
	in := []route.Option{
		option("a", "Metro", 40, 35, 1.2),
		option("b", "Bus", 15, 50, 0.5),
	}

	_ = route.SortOptions(in, route.SortKeyCost, route.SortAsc)

	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "b", in[1].ID)
}

func TestComputeBestStats(t *testing.T) {
	in := []route.Option{
		option("a", "Metro", 40, 35, 1.2),
		option("b", "Bus", 15, 20, 0.5),
		option("c", "Walk", 0, 50, 2.8),
	}

	stats := route.ComputeBestStats(in)
	require.NotNil(t, stats)
	assert.Equal(t, 20.0, stats.MinDurationMinutes)
	assert.Equal(t, 0.0, stats.MinCostCurrency)
	assert.Equal(t, 2.8, stats.MaxCO2SavedKg)
}

func TestComputeBestStats_EmptyInput(t *testing.T) {
	assert.Nil(t, route.ComputeBestStats(nil))
	assert.Nil(t, route.ComputeBestStats([]route.Option{}))
}

func TestComputeBestStats_SingleOption(t *testing.T) {
	stats := route.ComputeBestStats([]route.Option{option("a", "Metro", 40, 35, 1.2)})
	require.NotNil(t, stats)
	assert.Equal(t, 35.0, stats.MinDurationMinutes)
	assert.Equal(t, 40.0, stats.MinCostCurrency)
	assert.Equal(t, 1.2, stats.MaxCO2SavedKg)
}

func TestComputeBestStats_SkipsNonFiniteValues(t *testing.T) {
	a := option("a", "Metro", math.NaN(), 35, 1.2)
	b := option("b", "Bus", 15, math.Inf(1), 0.5)

	stats := route.ComputeBestStats([]route.Option{a, b})
	require.NotNil(t, stats)
	assert.Equal(t, 35.0, stats.MinDurationMinutes)
	assert.Equal(t, 15.0, stats.MinCostCurrency)
	assert.Equal(t, 1.2, stats.MaxCO2SavedKg)

	allNaN := option("n", "Mystery", math.NaN(), math.NaN(), math.NaN())
	stats = route.ComputeBestStats([]route.Option{allNaN})
	require.NotNil(t, stats)
	assert.True(t, math.IsNaN(stats.MinDurationMinutes))
}
