package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/checkin"
	"github.com/gympulse/pulse-cli/internal/directory"
	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/observability"
)

type checkInRequest struct {
	UserID string  `json:"user_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	gymID := chi.URLParam(r, "id")

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ci, err := s.checkins.SubmitAt(r.Context(), req.UserID, gymID, model.Coordinates{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		var rej *checkin.RejectionError
		if eris.As(err, &rej) {
			observability.RecordCheckIn(rej.Reason)
			respondJSON(w, http.StatusUnprocessableEntity, rej)
			return
		}
		observability.RecordCheckIn("error")
		if eris.Is(err, directory.ErrGymNotFound) {
			respondError(w, http.StatusNotFound, "gym not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "check-in failed")
		return
	}

	observability.RecordCheckIn("accepted")
	if s.engine != nil {
		s.engine.Trigger()
	}
	respondJSON(w, http.StatusCreated, ci)
}

type sensorRequest struct {
	Headcount int `json:"headcount"`
}

func (s *Server) handleSensorReading(w http.ResponseWriter, r *http.Request) {
	gymID := chi.URLParam(r, "id")
	if !s.gymExists(w, r) {
		return
	}

	var req sensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Headcount < 0 {
		respondError(w, http.StatusBadRequest, "headcount must be non-negative")
		return
	}

	reading := model.SensorReading{
		GymID:      gymID,
		Headcount:  req.Headcount,
		RecordedAt: s.nowFunc(),
	}
	if err := s.store.SetSensorReading(r.Context(), reading); err != nil {
		respondError(w, http.StatusInternalServerError, "store failed")
		return
	}

	if s.engine != nil {
		s.engine.Trigger()
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
