package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"giftshop/internal/engine"
	"giftshop/internal/infra"
	"giftshop/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Config holds runtime options for the storefront HTTP server.
type Config struct {
	Address        string
	CookieName     string
	AssetsDir      string // empty: no /assets route
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// Deps are the services the handlers call into.
type Deps struct {
	Catalog   *service.CatalogService
	Carts     *service.CartService
	Pages     *service.PageService
	Hub       *LiveHub
	Sequencer *engine.Sequencer
	Metrics   *infra.Metrics
	Logger    *slog.Logger
}

// Server wires handlers to services.
type Server struct {
	cfg     Config
	catalog *service.CatalogService
	carts   *service.CartService
	pages   *service.PageService
	hub     *LiveHub
	seq     *engine.Sequencer
	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewServer creates a Server. Missing optional deps get defaults.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.CookieName == "" {
		cfg.CookieName = "giftshop_session"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:     cfg,
		catalog: deps.Catalog,
		carts:   deps.Carts,
		pages:   deps.Pages,
		hub:     deps.Hub,
		seq:     deps.Sequencer,
		metrics: deps.Metrics,
		logger:  deps.Logger,
	}
	if s.metrics == nil {
		s.metrics = &infra.Metrics{}
	}
	if s.hub == nil {
		s.hub = NewLiveHub(s.metrics)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Routes builds the router with its middleware stack.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(RequestLogger(s.logger))
	router.Use(chimw.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Get("/debug/metrics", s.handleMetrics)
	if s.cfg.AssetsDir != "" {
		router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.AssetsDir))))
	}

	router.Group(func(r chi.Router) {
		r.Use(Session(s.cfg.CookieName))

		// Long-lived, outside the request timeout
		r.Get("/ws/cart", s.handleLiveCart)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.RequestTimeout))

			r.Get("/", s.handlePage)
			r.Post("/catalog/select", s.handleSelectForm)
			r.Post("/cart/items", s.handleAddForm)
			r.Post("/cart/lines/{id}", s.handleQuantityForm)
			r.Post("/cart/lines/{id}/delete", s.handleRemoveForm)

			r.Route("/api", func(r chi.Router) {
				r.Use(chimw.NoCache)
				r.Get("/catalog", s.handleAPICatalog)
				r.Put("/selection", s.handleAPISelect)
				r.Get("/cart", s.handleAPICart)
				r.Post("/cart/items", s.handleAPIAdd)
				r.Patch("/cart/lines/{id}", s.handleAPIQuantity)
				r.Delete("/cart/lines/{id}", s.handleAPIRemove)
			})
		})
	})

	return router
}

// New constructs the HTTP server with middleware stack.
func New(cfg Config, deps Deps) *http.Server {
	s := NewServer(cfg, deps)
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	code := http.StatusOK
	if s.seq != nil {
		select {
		case <-s.seq.Done():
			status["status"] = "sequencer stopped"
			code = http.StatusServiceUnavailable
		default:
		}
		status["sessions"] = s.seq.SessionCount()
	}
	writeJSON(w, code, status)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
