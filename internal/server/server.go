// Package server exposes the occupancy core over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gympulse/pulse-cli/internal/checkin"
	"github.com/gympulse/pulse-cli/internal/directory"
	"github.com/gympulse/pulse-cli/internal/entitlement"
	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
	"github.com/gympulse/pulse-cli/internal/refresh"
	"github.com/gympulse/pulse-cli/internal/store"
)

// ReadingProvider supplies the live reading for a gym.
type ReadingProvider interface {
	Reading(ctx context.Context, gymID string) (*model.LiveOccupancyReading, error)
}

// Server routes API requests to the occupancy core.
type Server struct {
	directory *directory.Directory
	store     store.Store
	checkins  *checkin.Service
	readings  ReadingProvider
	synth     *occupancy.Synthesizer
	verifier  *entitlement.Verifier
	engine    *refresh.Engine
	nowFunc   func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithEngine attaches the refresh engine. Occupancy reads are served from
// its snapshots, and check-ins and sensor readings trigger an immediate
// refresh.
func WithEngine(e *refresh.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithNow overrides the clock. Tests use this.
func WithNow(now func() time.Time) Option {
	return func(s *Server) { s.nowFunc = now }
}

// New creates a Server.
func New(
	dir *directory.Directory,
	st store.Store,
	checkins *checkin.Service,
	readings ReadingProvider,
	synth *occupancy.Synthesizer,
	verifier *entitlement.Verifier,
	opts ...Option,
) *Server {
	s := &Server{
		directory: dir,
		store:     st,
		checkins:  checkins,
		readings:  readings,
		synth:     synth,
		verifier:  verifier,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/gyms", func(r chi.Router) {
			r.Get("/", s.handleListGyms)
			r.Get("/search", s.handleSearchGyms)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGym)
				r.Get("/occupancy", s.handleOccupancy)
				r.Get("/trend", s.handleTrend)
				r.Get("/forecast", s.handleForecast)
				r.Post("/checkins", s.handleCheckIn)
				r.Post("/sensor", s.handleSensorReading)
			})
		})
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/personal", s.handlePersonalAnalytics)
			r.Get("/community", s.handleCommunityAnalytics)
			r.With(s.requirePremium).Get("/advanced", s.handleAdvancedAnalytics)
		})
		r.With(s.requirePremium).Get("/export/partnership", s.handlePartnershipExport)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
