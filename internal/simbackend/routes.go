package simbackend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/joe/fairwatch/internal/statusapi"
)

// Server exposes a Simulator over HTTP.
type Server struct {
	Sim      *Simulator
	Logger   *slog.Logger
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Routes mounts the API both at the root (the API's own port) and under /api (the path
// the web UI proxies), plus /metrics and /healthz.
func (s *Server) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
	)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})

	if s.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Mount("/api", s.apiRoutes())
	router.Mount("/", s.apiRoutes())

	return router
}

// Handler wraps Routes with CORS. No origins means any origin.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"Content-Type", "Accept", statusapi.RequestIDHeader},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	return c.Handler(s.Routes())
}

func (s *Server) apiRoutes() *chi.Mux {
	router := chi.NewRouter()

	router.Post(statusapi.StartPath, s.startWorkflowsHandler)
	router.Get(statusapi.PriorityStatusPath, s.runStatusHandler)
	router.Get(statusapi.FairnessStatusPath, s.runStatusFairnessHandler)

	return router
}

func (s *Server) count(endpoint string, status int) {
	if s.Metrics != nil {
		s.Metrics.StatusRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, endpoint string, status int, msg string) {
	s.count(endpoint, status)
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Message: msg})
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}

	return time.Now()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger().Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return s.Logger
}

// GET: /run-status-fairness?runPrefix=
func (s *Server) runStatusFairnessHandler(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("runPrefix")
	if prefix == "" {
		s.fail(w, r, statusapi.FairnessStatusPath, http.StatusBadRequest, "runPrefix is required")
		return
	}

	s.count(statusapi.FairnessStatusPath, http.StatusOK)
	render.JSON(w, r, s.Sim.FairnessStatus(prefix))
}

// GET: /run-status?runPrefix=
func (s *Server) runStatusHandler(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("runPrefix")
	if prefix == "" {
		s.fail(w, r, statusapi.PriorityStatusPath, http.StatusBadRequest, "runPrefix is required")
		return
	}

	s.count(statusapi.PriorityStatusPath, http.StatusOK)
	render.JSON(w, r, s.Sim.PriorityStatus(prefix))
}

// POST: /start-workflows
func (s *Server) startWorkflowsHandler(w http.ResponseWriter, r *http.Request) {
	var cfg statusapi.TestConfig

	if err := render.DecodeJSON(r.Body, &cfg); err != nil {
		s.fail(w, r, statusapi.StartPath, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	info, err := s.Sim.Start(cfg, s.now())

	switch {
	case errors.Is(err, ErrRunExists):
		s.fail(w, r, statusapi.StartPath, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.fail(w, r, statusapi.StartPath, http.StatusBadRequest, err.Error())
		return
	}

	s.count(statusapi.StartPath, http.StatusOK)
	render.JSON(w, r, info)
}

type errorResponse struct {
	Message string `json:"message"`
}
