package core

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAverage is the mean price of one (location, category) group.
//
// Prices are averaged as plain numbers even when the group mixes currencies;
// Currency is then the first entry's and MixedCurrency is set.
type CategoryAverage struct {
	Location      string
	Country       string
	Category      string
	EntryCount    int
	AveragePrice  decimal.Decimal
	Currency      string
	MixedCurrency bool
}

// LocationAverages nests the category rows of one location under a single
// header.
type LocationAverages struct {
	Location   string
	Country    string
	Categories []CategoryAverage
}

// LocationSummary aggregates every entry recorded at a location.
type LocationSummary struct {
	Location      string
	Country       string
	EntryCount    int
	AveragePrice  decimal.Decimal
	Currency      string
	MixedCurrency bool
	Categories    []string // distinct, first-seen order
}

type group struct {
	location string
	country  string
	category string
	currency string
	mixed    bool
	count    int
	sum      decimal.Decimal
	cats     []string
}

func (g *group) add(e PriceEntry) {
	if g.count == 0 {
		g.currency = e.Currency
		g.country = e.Country
	} else if e.Currency != g.currency {
		g.mixed = true
	}
	g.count++
	g.sum = g.sum.Add(e.Price)
}

func (g *group) mean() decimal.Decimal {
	return g.sum.Div(decimal.NewFromInt(int64(g.count)))
}

type pairKey struct{ location, category string }

// AveragesByLocationAndCategory groups entries by exact (location, category)
// and averages each group. Rows are ordered by location using a
// locale-aware comparison; rows of one location keep the order in which
// their categories first appear in entries.
func AveragesByLocationAndCategory(entries []PriceEntry) []CategoryAverage {
	index := make(map[pairKey]int)
	groups := make([]*group, 0)
	for _, e := range entries {
		k := pairKey{e.Location, e.Category}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, &group{location: e.Location, category: e.Category})
		}
		groups[i].add(e)
	}

	out := make([]CategoryAverage, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryAverage{
			Location:      g.location,
			Country:       g.country,
			Category:      g.category,
			EntryCount:    g.count,
			AveragePrice:  g.mean(),
			Currency:      g.currency,
			MixedCurrency: g.mixed,
		})
	}
	sortByLocation(out)
	return out
}

// GroupByLocation folds consecutive rows of the same location into one
// block, keeping the row order. The block's country is its first row's.
func GroupByLocation(averages []CategoryAverage) []LocationAverages {
	out := make([]LocationAverages, 0)
	for _, a := range averages {
		if n := len(out); n > 0 && out[n-1].Location == a.Location {
			out[n-1].Categories = append(out[n-1].Categories, a)
			continue
		}
		out = append(out, LocationAverages{
			Location:   a.Location,
			Country:    a.Country,
			Categories: []CategoryAverage{a},
		})
	}
	return out
}

// SummarizeByLocation groups entries by exact location, in the order
// locations first appear in entries.
func SummarizeByLocation(entries []PriceEntry) []LocationSummary {
	index := make(map[string]int)
	groups := make([]*group, 0)
	for _, e := range entries {
		i, ok := index[e.Location]
		if !ok {
			i = len(groups)
			index[e.Location] = i
			groups = append(groups, &group{location: e.Location})
		}
		g := groups[i]
		g.add(e)
		if !contains(g.cats, e.Category) {
			g.cats = append(g.cats, e.Category)
		}
	}

	out := make([]LocationSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, LocationSummary{
			Location:      g.location,
			Country:       g.country,
			EntryCount:    g.count,
			AveragePrice:  g.mean(),
			Currency:      g.currency,
			MixedCurrency: g.mixed,
			Categories:    g.cats,
		})
	}
	return out
}

// sortByLocation orders rows like a locale-aware string compare. Labels the
// collator considers equal fall back to byte order so that rows of one exact
// location always stay adjacent.
func sortByLocation(rows []CategoryAverage) {
	// Collators are not safe for concurrent use.
	col := collate.New(language.English)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Location, rows[j].Location
		if c := col.CompareString(a, b); c != 0 {
			return c < 0
		}
		return a < b
	})
}
