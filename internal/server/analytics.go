package server

import (
	"net/http"

	"github.com/gympulse/pulse-cli/internal/analytics"
	"github.com/gympulse/pulse-cli/internal/model"
)

const userHistoryLimit = 100

func (s *Server) handlePersonalAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	checkIns, err := s.store.ListUserCheckIns(r.Context(), userID, userHistoryLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load history failed")
		return
	}
	respondJSON(w, http.StatusOK, analytics.AnalyzePersonal(checkIns, s.directory, s.nowFunc()))
}

func (s *Server) handleCommunityAnalytics(w http.ResponseWriter, r *http.Request) {
	now := s.nowFunc()
	checkIns, err := s.store.ListCheckIns(r.Context(), now.Add(-model.CheckInRetention))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load check-ins failed")
		return
	}
	respondJSON(w, http.StatusOK, analytics.AnalyzeCommunity(checkIns, s.directory, now))
}

func (s *Server) handleAdvancedAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	now := s.nowFunc()
	checkIns, err := s.store.ListUserCheckIns(r.Context(), userID, userHistoryLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load history failed")
		return
	}
	personal := analytics.AnalyzePersonal(checkIns, s.directory, now)
	respondJSON(w, http.StatusOK, analytics.AnalyzeAdvanced(personal, checkIns, now))
}

func (s *Server) handlePartnershipExport(w http.ResponseWriter, r *http.Request) {
	now := s.nowFunc()
	checkIns, err := s.store.ListCheckIns(r.Context(), now.Add(-model.CheckInRetention))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "load check-ins failed")
		return
	}
	respondJSON(w, http.StatusOK, analytics.BuildPartnershipExport(checkIns, s.directory, now))
}
