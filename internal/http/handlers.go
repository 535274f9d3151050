package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nomadprices/internal/core"
	applog "nomadprices/internal/log"
	"nomadprices/internal/services"
)

// queryTimeout bounds store reads behind a page or partial.
const queryTimeout = 5 * time.Second

type pageData struct {
	State      core.AppState
	Stats      core.Stats
	Facets     services.Facets
	Categories []string
	Currencies []string
	Locations  []core.KnownLocation

	Entries   entriesData
	Averages  averagesData
	Summaries locationsData
}

type entriesData struct {
	State   core.AppState
	Entries []core.PriceEntry
}

type averagesData struct {
	State  core.AppState
	Blocks []core.LocationAverages
}

type locationsData struct {
	Summaries []core.LocationSummary
}

type filtersData struct {
	State  core.AppState
	Facets services.Facets
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			"error_type", applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	state := core.StateFromQuery(r.URL.Query())
	data := pageData{
		State:      state,
		Categories: core.SupportedCategories,
		Currencies: core.SupportedCurrencies,
		Locations:  core.KnownLocations,
	}

	stats, err := s.service.Stats(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Stats error", applog.FieldError, err)
	}
	data.Stats = stats

	facets, err := s.facets(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Facets error", applog.FieldError, err)
	}
	data.Facets = facets

	switch state.View {
	case core.ViewAverages:
		blocks, err := s.averages(ctx, state.Selection)
		if err != nil {
			s.renderError(w, r, err, applog.OpAverage)
			return
		}
		data.Averages = averagesData{State: state, Blocks: blocks}
	case core.ViewMap:
		summaries, err := s.locations(ctx)
		if err != nil {
			s.renderError(w, r, err, applog.OpSummary)
			return
		}
		data.Summaries = locationsData{Summaries: summaries}
	default:
		list, err := s.entries(ctx, state.Selection)
		if err != nil {
			s.renderError(w, r, err, applog.OpList)
			return
		}
		data.Entries = entriesData{State: state, Entries: list}
	}

	s.render(w, r, "index.html", data)
}

// handleEntriesPartial renders the filtered entry list.
func (s *Server) handleEntriesPartial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	state := core.StateFromQuery(r.URL.Query())
	state.View = core.ViewList
	list, err := s.entries(ctx, state.Selection)
	if err != nil {
		s.renderError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "entries.html", entriesData{State: state, Entries: list})
}

// handleAveragesPartial renders averages of the filtered entries, grouped
// by location.
func (s *Server) handleAveragesPartial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	state := core.StateFromQuery(r.URL.Query())
	state.View = core.ViewAverages
	blocks, err := s.averages(ctx, state.Selection)
	if err != nil {
		s.renderError(w, r, err, applog.OpAverage)
		return
	}
	s.render(w, r, "averages.html", averagesData{State: state, Blocks: blocks})
}

// handleLocationsPartial renders the per-location summary of all entries.
func (s *Server) handleLocationsPartial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	summaries, err := s.locations(ctx)
	if err != nil {
		s.renderError(w, r, err, applog.OpSummary)
		return
	}
	s.render(w, r, "locations.html", locationsData{Summaries: summaries})
}

// handleStatsPartial renders the header counters.
func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	stats, err := s.service.Stats(ctx)
	if err != nil {
		s.renderError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "stats.html", stats)
}

// handleFiltersPartial renders the filter bar with choices taken from the
// current entries.
func (s *Server) handleFiltersPartial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	facets, err := s.facets(ctx)
	if err != nil {
		s.renderError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "filters.html", filtersData{
		State:  core.StateFromQuery(r.URL.Query()),
		Facets: facets,
	})
}

// handleLocationOptions feeds the location picker's datalist.
func (s *Server) handleLocationOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		// The picker input sends itself under its form name.
		q = r.URL.Query().Get(core.FieldLocation)
	}
	matches := core.SearchLocations(sanitizeInput(q))
	s.render(w, r, "location_options.html", matches)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Unreadable submission",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpParse)
		if parser.IsJSON() || wantsJSON(r) {
			writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid request body"})
			return
		}
		BadRequestError("Invalid request format").Write(w)
		return
	}
	asJSON := parser.IsJSON() || wantsJSON(r)

	res, err := s.service.SubmitEntry(r.Context(), parser.Draft())
	if err != nil {
		s.events.LogError(r.Context(), "Failed to save price entry", err, applog.OpSubmit, applog.NewFields())
		if asJSON {
			writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "could not save entry"})
			return
		}
		InternalServerError("Error saving price").Write(w)
		return
	}

	if !res.Accepted() {
		s.events.LogEntryRejected(r.Context(), res.Rejection)
		if asJSON {
			writeJSON(w, http.StatusUnprocessableEntity, newRejectionJSON(res.Rejection))
			return
		}
		ValidationErrorResponse(res.Rejection).Write(w)
		return
	}

	s.invalidateCaches()
	s.events.LogEntrySubmitted(r.Context(), res.Entry)

	if asJSON {
		writeJSON(w, http.StatusCreated, newEntryJSON(res.Entry))
		return
	}

	e := res.Entry
	NewHTMXResponse().
		TriggerPriceAdded(e).
		TriggerFormReset().
		TriggerSuccessNotification("Price added").
		BodyHTML(fmt.Sprintf(`<div class="success">Added %s in %s: %s</div>`,
			escape(e.ItemName), escape(e.Location), escape(core.FormatPrice(e.Price, e.Currency)))).
		Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady checks templates and the entry store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.service.Ready(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	var hits, misses int64
	for _, st := range []func() (int64, int64){
		s.entriesCache.Stats, s.averagesCache.Stats, s.locationsCache.Stats, s.facetsCache.Stats,
	} {
		h, m := st()
		hits += h
		misses += m
	}

	var total int
	if stats, err := s.service.Stats(r.Context()); err == nil {
		total = stats.TotalEntries
	}

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP price_entries Current number of price entries\n")
	fmt.Fprintf(w, "# TYPE price_entries gauge\n")
	fmt.Fprintf(w, "price_entries %d\n\n", total)

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", hits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", misses)

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"entries\"} %d\n", s.entriesCache.Size())
	fmt.Fprintf(w, "cache_entries{type=\"averages\"} %d\n\n", s.averagesCache.Size())

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Total requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", rateLimitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name,
			applog.FieldOperation, applog.OpRender)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error, op string) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(), "Query failed", err, op, nil)
	InternalServerError("Could not load prices").Write(w)
}
