package server

import (
	"net/http"
	"strings"
)

// requirePremium gates advanced analytics and partnership export behind a
// verified entitlement token with a premium plan.
func (s *Server) requirePremium(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "entitlement token required")
			return
		}

		claims, err := s.verifier.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid entitlement token")
			return
		}
		if !claims.Premium() {
			respondError(w, http.StatusForbidden, "premium plan required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
