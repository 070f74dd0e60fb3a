package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/flavourai/backend/internal/config"
	"github.com/flavourai/backend/internal/engine"
	"github.com/flavourai/backend/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	Engine   *engine.Engine
	Logger   *logrus.Entry
	Router   chi.Router
	validate *validator.Validate

	mu   sync.Mutex
	http *http.Server
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine:   eng,
		Logger:   logger.WithField("component", "api"),
		Router:   chi.NewRouter(),
		validate: validator.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.Use(s.requestID)
	s.Router.Use(chimiddleware.Recoverer)
	s.Router.Use(s.instrument)

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/recommend/nutrients", s.handleNutrients)
		r.Get("/recipes/{id}", s.handleRecipe)
		r.Get("/reviews/stats", s.handleReviewStats)
		r.Get("/status", s.handleStatus)
	})
	s.Router.Handle("/metrics", promhttp.Handler())
}

// ServeHTTP lets the server be mounted or driven by httptest directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) Start(cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.Logger.Infof("Starting API Server on %s", cfg.Addr)
	return srv.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// requestID tags each request with an id, reusing the caller's when present.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), elapsed)

		s.Logger.WithFields(logrus.Fields{
			"request_id": r.Header.Get(requestIDHeader),
			"method":     r.Method,
			"route":      route,
			"status":     status,
			"elapsed":    elapsed,
		}).Debug("Handled request")
	})
}
