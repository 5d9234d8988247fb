package httpapi

import (
	"net/http"
	"strconv"
)

const defaultEventCount = 10

func (s *Server) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	n := defaultEventCount
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, r, errBadRequest)
			return
		}
		n = parsed
	}

	events, err := s.security.RecentEvents(r.Context(), principalFrom(r), n, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"events": events})
}
