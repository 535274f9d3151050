package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, location, category, price, currency string) PriceEntry {
	return PriceEntry{
		ID:       id,
		Location: location,
		Country:  InferCountry(location),
		Category: category,
		ItemName: "item " + id,
		Price:    decimal.RequireFromString(price),
		Currency: currency,
	}
}

// sample is most-recent-first, like Store.All.
func sample() []PriceEntry {
	return []PriceEntry{
		entry("5", "Lisbon, Portugal", "Food", "1.20", "EUR"),
		entry("4", "Bangkok, Thailand", "Food", "60", "THB"),
		entry("3", "Bangkok, Thailand", "Transport", "8.00", "USD"),
		entry("2", "Mexico City, Mexico", "Food", "1.50", "USD"),
		entry("1", "Mexico City, Mexico", "Food", "2.50", "USD"),
	}
}

func TestFilter(t *testing.T) {
	all := sample()

	t.Run("identity when both selectors unset", func(t *testing.T) {
		assert.Equal(t, all, Filter(all, NewSelection(AllSelector, AllSelector)))
		assert.Equal(t, all, Filter(all, Selection{}))
	})

	t.Run("category only", func(t *testing.T) {
		got := Filter(all, NewSelection("Food", AllSelector))
		require.Len(t, got, 4)
		for _, e := range got {
			assert.Equal(t, "Food", e.Category)
		}
		assert.Equal(t, []string{"5", "4", "2", "1"}, ids(got))
	})

	t.Run("both selectors", func(t *testing.T) {
		got := Filter(all, NewSelection("Food", "Bangkok, Thailand"))
		assert.Equal(t, []string{"4"}, ids(got))
	})

	t.Run("exact and case sensitive", func(t *testing.T) {
		assert.Empty(t, Filter(all, NewSelection("food", AllSelector)))
		assert.Empty(t, Filter(all, NewSelection(AllSelector, "Bangkok")))
	})

	t.Run("unknown value yields empty", func(t *testing.T) {
		got := Filter(all, NewSelection("Shopping", AllSelector))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Filter(nil, NewSelection("Food", AllSelector)))
	})

	t.Run("one transport among foods", func(t *testing.T) {
		entries := []PriceEntry{
			entry("a", "Bangkok, Thailand", "Food", "1", "USD"),
			entry("b", "Bangkok, Thailand", "Transport", "8", "USD"),
			entry("c", "Lisbon, Portugal", "Food", "2", "EUR"),
		}
		got := Filter(entries, NewSelection("Transport", AllSelector))
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})
}

func TestSelection(t *testing.T) {
	assert.True(t, Selection{}.IsCleared())
	sel := NewSelection("Food", "")
	assert.False(t, sel.IsCleared())
	assert.Equal(t, AllSelector, sel.Location)
	assert.True(t, sel.Clear().IsCleared())
}

func TestFacets(t *testing.T) {
	all := sample()
	assert.Equal(t, []string{"Food", "Transport"}, DistinctCategories(all))
	assert.Equal(t, []string{"Mexico City, Mexico", "Bangkok, Thailand", "Lisbon, Portugal"}, DistinctLocations(all))
	assert.Empty(t, DistinctCategories(nil))

	assert.Equal(t, Stats{TotalEntries: 5, Locations: 3, Categories: 2}, StatsOf(all))
}

func TestAveragesByLocationAndCategory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := AveragesByLocationAndCategory(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("two entries in one group", func(t *testing.T) {
		entries := []PriceEntry{
			entry("1", "Mexico City, Mexico", "Food", "2.50", "USD"),
			entry("2", "Mexico City, Mexico", "Food", "1.50", "USD"),
		}
		got := AveragesByLocationAndCategory(entries)
		require.Len(t, got, 1)
		g := got[0]
		assert.Equal(t, "Mexico City, Mexico", g.Location)
		assert.Equal(t, "Mexico", g.Country)
		assert.Equal(t, "Food", g.Category)
		assert.Equal(t, 2, g.EntryCount)
		assert.True(t, g.AveragePrice.Equal(decimal.RequireFromString("2.00")), "average %s", g.AveragePrice)
		assert.Equal(t, "USD", g.Currency)
		assert.False(t, g.MixedCurrency)
	})

	t.Run("sorted by location, mean per group", func(t *testing.T) {
		all := sample()
		got := AveragesByLocationAndCategory(all)
		require.Len(t, got, 4)

		var locs []string
		for _, g := range got {
			locs = append(locs, g.Location+"/"+g.Category)
		}
		assert.Equal(t, []string{
			"Bangkok, Thailand/Food",
			"Bangkok, Thailand/Transport",
			"Lisbon, Portugal/Food",
			"Mexico City, Mexico/Food",
		}, locs)

		for _, g := range got {
			assert.GreaterOrEqual(t, g.EntryCount, 1)
			sum := decimal.Zero
			for _, e := range Filter(all, NewSelection(g.Category, g.Location)) {
				sum = sum.Add(e.Price)
			}
			want := sum.Div(decimal.NewFromInt(int64(g.EntryCount)))
			assert.True(t, want.Equal(g.AveragePrice), "%s/%s: %s != %s", g.Location, g.Category, want, g.AveragePrice)
		}
	})

	t.Run("first entry labels a mixed group", func(t *testing.T) {
		entries := []PriceEntry{
			entry("1", "Bangkok, Thailand", "Food", "60", "THB"),
			entry("2", "Bangkok, Thailand", "Food", "2", "USD"),
		}
		got := AveragesByLocationAndCategory(entries)
		require.Len(t, got, 1)
		assert.Equal(t, "THB", got[0].Currency)
		assert.True(t, got[0].MixedCurrency)
		assert.True(t, got[0].AveragePrice.Equal(decimal.NewFromInt(31)))
	})

	t.Run("locale aware order", func(t *testing.T) {
		entries := []PriceEntry{
			entry("1", "Zurich, Switzerland", "Food", "5", "CHF"),
			entry("2", "berlin, Germany", "Food", "3", "EUR"),
			entry("3", "Ålesund, Norway", "Food", "4", "EUR"),
		}
		got := AveragesByLocationAndCategory(entries)
		require.Len(t, got, 3)
		assert.Equal(t, "Ålesund, Norway", got[0].Location)
		assert.Equal(t, "berlin, Germany", got[1].Location)
		assert.Equal(t, "Zurich, Switzerland", got[2].Location)
	})

	t.Run("idempotent", func(t *testing.T) {
		all := sample()
		before := append([]PriceEntry(nil), all...)
		first := AveragesByLocationAndCategory(all)
		second := AveragesByLocationAndCategory(all)
		assert.Equal(t, first, second)
		assert.Equal(t, before, all)
	})
}

func TestGroupByLocation(t *testing.T) {
	blocks := GroupByLocation(AveragesByLocationAndCategory(sample()))
	require.Len(t, blocks, 3)
	assert.Equal(t, "Bangkok, Thailand", blocks[0].Location)
	assert.Equal(t, "Thailand", blocks[0].Country)
	require.Len(t, blocks[0].Categories, 2)
	assert.Equal(t, "Food", blocks[0].Categories[0].Category)
	assert.Equal(t, "Transport", blocks[0].Categories[1].Category)
	assert.Equal(t, "Lisbon, Portugal", blocks[1].Location)
	assert.Equal(t, "Mexico City, Mexico", blocks[2].Location)

	assert.Empty(t, GroupByLocation(nil))
}

func TestSummarizeByLocation(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := SummarizeByLocation(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("three entries at one location", func(t *testing.T) {
		entries := []PriceEntry{
			entry("1", "Bangkok, Thailand", "Food", "2", "USD"),
			entry("2", "Bangkok, Thailand", "Transport", "8", "USD"),
			entry("3", "Bangkok, Thailand", "Food", "5", "USD"),
		}
		got := SummarizeByLocation(entries)
		require.Len(t, got, 1)
		s := got[0]
		assert.Equal(t, 3, s.EntryCount)
		assert.ElementsMatch(t, []string{"Food", "Transport"}, s.Categories)
		assert.True(t, s.AveragePrice.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, "USD", s.Currency)
		assert.Equal(t, "Thailand", s.Country)
	})

	t.Run("first seen order across locations", func(t *testing.T) {
		got := SummarizeByLocation(sample())
		require.Len(t, got, 3)
		assert.Equal(t, "Lisbon, Portugal", got[0].Location)
		assert.Equal(t, "Bangkok, Thailand", got[1].Location)
		assert.Equal(t, "THB", got[1].Currency)
		assert.True(t, got[1].MixedCurrency)
		assert.Equal(t, "Mexico City, Mexico", got[2].Location)
		assert.Equal(t, 2, got[2].EntryCount)
	})

	t.Run("idempotent", func(t *testing.T) {
		all := sample()
		assert.Equal(t, SummarizeByLocation(all), SummarizeByLocation(all))
	})
}

func ids(entries []PriceEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
