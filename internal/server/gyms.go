package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/directory"
	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
)

func (s *Server) handleListGyms(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")
	city := r.URL.Query().Get("city")

	var gyms []model.Gym
	switch {
	case province != "" && city != "":
		gyms = s.directory.GymsForProvinceAndCity(province, city)
	case province != "":
		for _, g := range s.directory.All() {
			if g.Province == province {
				gyms = append(gyms, g)
			}
		}
	default:
		gyms = s.directory.All()
	}
	respondJSON(w, http.StatusOK, map[string]any{"gyms": gyms})
}

func (s *Server) handleSearchGyms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"gyms": s.directory.Search(q)})
}

func (s *Server) handleGetGym(w http.ResponseWriter, r *http.Request) {
	gym, err := s.directory.GymByID(chi.URLParam(r, "id"))
	if err != nil {
		if eris.Is(err, directory.ErrGymNotFound) {
			respondError(w, http.StatusNotFound, "gym not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, gym)
}

func (s *Server) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	gymID := chi.URLParam(r, "id")

	// Serve the refresh engine's snapshot when one has landed; compute on
	// demand before the first sweep or when running without the engine.
	var reading *model.LiveOccupancyReading
	if s.engine != nil {
		reading = s.engine.Snapshot(gymID)
	}
	if reading == nil {
		var err error
		reading, err = s.readings.Reading(r.Context(), gymID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "reading unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"reading":          reading,
		"confidence_label": occupancy.ConfidenceLabel(reading.Confidence),
		"stale":            occupancy.IsStale(reading.LastUpdatedAt, s.nowFunc(), occupancy.DefaultStaleAfter),
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if !s.gymExists(w, r) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"points": s.synth.Trend()})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if !s.gymExists(w, r) {
		return
	}
	preds := s.synth.Forecast()
	respondJSON(w, http.StatusOK, map[string]any{
		"points":     preds,
		"best_visit": occupancy.BestVisitWindow(preds),
	})
}

// gymExists 404s unknown gym ids for the synthetic series routes.
func (s *Server) gymExists(w http.ResponseWriter, r *http.Request) bool {
	if _, err := s.directory.GymByID(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, "gym not found")
		return false
	}
	return true
}
