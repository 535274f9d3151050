package core

// Stats are the headline counters shown above the browser.
type Stats struct {
	TotalEntries int
	Locations    int
	Categories   int
}

// DistinctCategories returns each category present in entries once, in
// insertion order. entries is expected most-recent-first, as returned by the
// stores, so it is scanned from the oldest entry forward.
func DistinctCategories(entries []PriceEntry) []string {
	return distinct(entries, func(e PriceEntry) string { return e.Category })
}

// DistinctLocations is DistinctCategories for the location label.
func DistinctLocations(entries []PriceEntry) []string {
	return distinct(entries, func(e PriceEntry) string { return e.Location })
}

// StatsOf counts entries and their distinct locations and categories.
func StatsOf(entries []PriceEntry) Stats {
	return Stats{
		TotalEntries: len(entries),
		Locations:    len(DistinctLocations(entries)),
		Categories:   len(DistinctCategories(entries)),
	}
}

func distinct(entries []PriceEntry, key func(PriceEntry) string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0)
	for i := len(entries) - 1; i >= 0; i-- {
		v := key(entries[i])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
