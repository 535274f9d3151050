package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"nomadprices/internal/cache"
	"nomadprices/internal/core"
	applog "nomadprices/internal/log"
	"nomadprices/internal/middleware/ratelimit"
	"nomadprices/internal/middleware/security"
	"nomadprices/internal/middleware/trace"
	"nomadprices/internal/services"
	appweb "nomadprices/web"
)

// Config tunes the HTTP surface.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	CacheTTL           time.Duration
	CacheSize          int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	templates *template.Template
	service   *services.EntryService
	logger    *applog.Logger
	events    *applog.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	// Query caches, purged on every accepted submission.
	entriesCache   *cache.LRUCache[[]core.PriceEntry]
	averagesCache  *cache.LRUCache[[]core.LocationAverages]
	locationsCache *cache.LRUCache[[]core.LocationSummary]
	facetsCache    *cache.LRUCache[services.Facets]
	cacheManager   *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(cfg Config, svc *services.EntryService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 100
	}
	httpLogger := logger.WithComponent(applog.ComponentHTTP)

	rlCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			httpLogger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	s := &Server{
		service:          svc,
		logger:           httpLogger,
		events:           applog.NewStructuredLogger(logger.WithComponent(applog.ComponentEntries)),
		rateLimiter:      ratelimit.NewLimiter(rlCfg),
		securityDetector: detector,
		entriesCache:     cache.NewLRUCache[[]core.PriceEntry](cfg.CacheSize, cfg.CacheTTL),
		averagesCache:    cache.NewLRUCache[[]core.LocationAverages](cfg.CacheSize, cfg.CacheTTL),
		locationsCache:   cache.NewLRUCache[[]core.LocationSummary](1, cfg.CacheTTL),
		facetsCache:      cache.NewLRUCache[services.Facets](1, cfg.CacheTTL),
		cacheManager:     cache.NewManager(logger.WithComponent(applog.ComponentCache).Slog()),
		startedAt:        time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(detector.ExtractClientIP, logger)

	s.cacheManager.Register(s.entriesCache)
	s.cacheManager.Register(s.averagesCache)
	s.cacheManager.Register(s.locationsCache)
	s.cacheManager.Register(s.facetsCache)
	if cfg.CacheTTL > 0 {
		s.cacheManager.StartCleanup(cfg.CacheTTL * 2)
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(applog.ComponentTemplate).Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		httpLogger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /entries", s.handleCreateEntry)

	// UI partials
	mux.HandleFunc("GET /ui/entries", s.handleEntriesPartial)
	mux.HandleFunc("GET /ui/averages", s.handleAveragesPartial)
	mux.HandleFunc("GET /ui/locations", s.handleLocationsPartial)
	mux.HandleFunc("GET /ui/location-options", s.handleLocationOptions)
	mux.HandleFunc("GET /ui/stats", s.handleStatsPartial)
	mux.HandleFunc("GET /ui/filters", s.handleFiltersPartial)

	// JSON API: never cached by clients, logged under its own component.
	api := func(h http.HandlerFunc) http.Handler {
		return security.NoStore(applog.ComponentMiddleware(applog.ComponentAPI)(h))
	}
	mux.Handle("GET /api/entries", api(s.handleAPIEntries))
	mux.Handle("GET /api/facets", api(s.handleAPIFacets))
	mux.Handle("GET /api/averages", api(s.handleAPIAverages))
	mux.Handle("GET /api/locations", api(s.handleAPILocations))
	mux.Handle("GET /api/catalog", api(s.handleAPICatalog))
	mux.Handle("GET /api/stats", api(s.handleAPIStats))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimited)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = applog.RequestIDMiddleware(trace.GetRequestID)(handler)
	handler = applog.Middleware(httpLogger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many submissions. Please try again later.").Write(w)
}

// Shutdown stops background loops and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateCaches drops every cached query result after a write.
func (s *Server) invalidateCaches() {
	s.cacheManager.PurgeAll()
}
