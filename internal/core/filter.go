package core

import "strings"

// Selection holds the two filter selectors. Each is either AllSelector (an
// empty value means the same) or an exact, case-sensitive value.
type Selection struct {
	Category string
	Location string
}

// NewSelection builds a selection from raw selector values.
func NewSelection(category, location string) Selection {
	return Selection{Category: selector(category), Location: selector(location)}
}

func selector(v string) string {
	if strings.TrimSpace(v) == "" {
		return AllSelector
	}
	return v
}

// IsCleared reports whether neither dimension is constrained.
func (s Selection) IsCleared() bool {
	return selector(s.Category) == AllSelector && selector(s.Location) == AllSelector
}

// Clear resets both selectors to AllSelector.
func (s Selection) Clear() Selection {
	return Selection{Category: AllSelector, Location: AllSelector}
}

// Matches reports whether e passes both selectors.
func (s Selection) Matches(e PriceEntry) bool {
	if c := selector(s.Category); c != AllSelector && e.Category != c {
		return false
	}
	if l := selector(s.Location); l != AllSelector && e.Location != l {
		return false
	}
	return true
}

// Filter returns the entries matching sel, in their original order. A
// selector that matches nothing yields an empty, non-nil slice.
func Filter(entries []PriceEntry, sel Selection) []PriceEntry {
	out := make([]PriceEntry, 0, len(entries))
	for _, e := range entries {
		if sel.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
