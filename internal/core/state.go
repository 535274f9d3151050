package core

import "net/url"

// View is the active browser tab.
type View string

const (
	ViewList     View = "list"
	ViewAverages View = "averages"
	ViewMap      View = "map"
)

// ParseView maps a raw tab name to a View, defaulting to the list.
func ParseView(s string) View {
	switch View(s) {
	case ViewAverages, ViewMap:
		return View(s)
	default:
		return ViewList
	}
}

// AppState is the whole browsing state of a client: the active tab and the
// filter selectors. It round-trips through URL query parameters so that
// every view is addressable.
type AppState struct {
	View      View
	Selection Selection
}

// DefaultState shows the unfiltered list.
func DefaultState() AppState {
	return AppState{View: ViewList, Selection: NewSelection("", "")}
}

// StateFromQuery reads view, category and location parameters.
func StateFromQuery(q url.Values) AppState {
	return AppState{
		View:      ParseView(q.Get("view")),
		Selection: NewSelection(q.Get("category"), q.Get("location")),
	}
}

// Query encodes the state, omitting defaults.
func (s AppState) Query() url.Values {
	q := url.Values{}
	if s.View != "" && s.View != ViewList {
		q.Set("view", string(s.View))
	}
	if c := selector(s.Selection.Category); c != AllSelector {
		q.Set("category", c)
	}
	if l := selector(s.Selection.Location); l != AllSelector {
		q.Set("location", l)
	}
	return q
}

// ShowsFilters reports whether the filter bar applies to the view. The
// location summary always covers every entry.
func (s AppState) ShowsFilters() bool {
	return s.View != ViewMap
}
