package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nomadprices/internal/core"
)

var templateFuncs = template.FuncMap{
	"price": func(p decimal.Decimal, currency string) string {
		return core.FormatPrice(p, currency)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"join": strings.Join,
	// link builds the address of a tab, keeping the current filters.
	"link": func(st core.AppState, view string) string {
		st.View = core.ParseView(view)
		if q := st.Query().Encode(); q != "" {
			return "/?" + q
		}
		return "/"
	},
	"clearLink": func(st core.AppState) string {
		st.Selection = st.Selection.Clear()
		if q := st.Query().Encode(); q != "" {
			return "/?" + q
		}
		return "/"
	},
	"filtersLink": func(st core.AppState) string {
		if q := st.Query().Encode(); q != "" {
			return "/ui/filters?" + q
		}
		return "/ui/filters"
	},
	"partial": func(st core.AppState) string {
		path := "/ui/entries"
		switch st.View {
		case core.ViewAverages:
			path = "/ui/averages"
		case core.ViewMap:
			path = "/ui/locations"
		}
		st.View = core.ViewList
		if q := st.Query().Encode(); q != "" {
			return path + "?" + q
		}
		return path
	},
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

func escape(s string) string {
	return template.HTMLEscapeString(s)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
