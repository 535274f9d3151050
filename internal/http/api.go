package http

import (
	"context"
	"net/http"
	"time"

	"nomadprices/internal/core"
	applog "nomadprices/internal/log"
)

type entryJSON struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	Category    string    `json:"category"`
	ItemName    string    `json:"itemName"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	SubmittedBy string    `json:"submittedBy"`
}

func newEntryJSON(e core.PriceEntry) entryJSON {
	return entryJSON{
		ID:          e.ID,
		Location:    e.Location,
		Country:     e.Country,
		Category:    e.Category,
		ItemName:    e.ItemName,
		Price:       e.Price.String(),
		Currency:    e.Currency,
		Comment:     e.Comment,
		SubmittedAt: e.SubmittedAt,
		SubmittedBy: e.SubmittedBy,
	}
}

type categoryAverageJSON struct {
	Category      string `json:"category"`
	EntryCount    int    `json:"entryCount"`
	AveragePrice  string `json:"averagePrice"`
	Currency      string `json:"currency"`
	MixedCurrency bool   `json:"mixedCurrency,omitempty"`
}

type locationAveragesJSON struct {
	Location   string                `json:"location"`
	Country    string                `json:"country"`
	Categories []categoryAverageJSON `json:"categories"`
}

type locationSummaryJSON struct {
	Location      string   `json:"location"`
	Country       string   `json:"country"`
	EntryCount    int      `json:"entryCount"`
	AveragePrice  string   `json:"averagePrice"`
	Currency      string   `json:"currency"`
	MixedCurrency bool     `json:"mixedCurrency,omitempty"`
	Categories    []string `json:"categories"`
}

type rejectionJSON struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func newRejectionJSON(v *core.ValidationError) rejectionJSON {
	return rejectionJSON{Field: v.Field, Reason: v.Err.Error()}
}

type errorJSON struct {
	Error string `json:"error"`
}

type catalogJSON struct {
	Categories []string            `json:"categories"`
	Currencies []string            `json:"currencies"`
	Locations  []knownLocationJSON `json:"locations"`
}

type knownLocationJSON struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (s *Server) handleAPIEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	sel := core.StateFromQuery(r.URL.Query()).Selection
	list, err := s.entries(ctx, sel)
	if err != nil {
		s.apiError(w, r, err, applog.OpList)
		return
	}
	out := make([]entryJSON, 0, len(list))
	for _, e := range list {
		out = append(out, newEntryJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIFacets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	f, err := s.facets(ctx)
	if err != nil {
		s.apiError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	stats, err := s.service.Stats(ctx)
	if err != nil {
		s.apiError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"totalEntries": stats.TotalEntries,
		"locations":    stats.Locations,
		"categories":   stats.Categories,
	})
}

func (s *Server) handleAPIAverages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	sel := core.StateFromQuery(r.URL.Query()).Selection
	blocks, err := s.averages(ctx, sel)
	if err != nil {
		s.apiError(w, r, err, applog.OpAverage)
		return
	}
	out := make([]locationAveragesJSON, 0, len(blocks))
	for _, b := range blocks {
		block := locationAveragesJSON{
			Location:   b.Location,
			Country:    b.Country,
			Categories: make([]categoryAverageJSON, 0, len(b.Categories)),
		}
		for _, c := range b.Categories {
			block.Categories = append(block.Categories, categoryAverageJSON{
				Category:      c.Category,
				EntryCount:    c.EntryCount,
				AveragePrice:  c.AveragePrice.StringFixed(2),
				Currency:      c.Currency,
				MixedCurrency: c.MixedCurrency,
			})
		}
		out = append(out, block)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPILocations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	summaries, err := s.locations(ctx)
	if err != nil {
		s.apiError(w, r, err, applog.OpSummary)
		return
	}
	out := make([]locationSummaryJSON, 0, len(summaries))
	for _, l := range summaries {
		out = append(out, locationSummaryJSON{
			Location:      l.Location,
			Country:       l.Country,
			EntryCount:    l.EntryCount,
			AveragePrice:  l.AveragePrice.StringFixed(2),
			Currency:      l.Currency,
			MixedCurrency: l.MixedCurrency,
			Categories:    l.Categories,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPICatalog(w http.ResponseWriter, r *http.Request) {
	locs := make([]knownLocationJSON, 0, len(core.KnownLocations))
	for _, l := range core.KnownLocations {
		locs = append(locs, knownLocationJSON{Name: l.Name, Currency: l.Currency})
	}
	writeJSON(w, http.StatusOK, catalogJSON{
		Categories: core.SupportedCategories,
		Currencies: core.SupportedCurrencies,
		Locations:  locs,
	})
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error, op string) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(), "Query failed", err, op, nil)
	writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "could not load prices"})
}
