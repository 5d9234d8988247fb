package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/secblog/internal/common"
)

var (
	errUnauthenticated      = errors.New("authentication required")
	errAlreadyAuthenticated = errors.New("already authenticated")
	errForbidden            = errors.New("forbidden")
	errBadRequest           = errors.New("bad request")
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(r.Context(), "response encode failed", "err", err)
	}
}

// writeError maps service errors onto HTTP statuses. Credential and cipher
// failures collapse into one 401 so responses cannot be used to enumerate
// accounts; lockout (423) and rate limiting (429) stay distinguishable
// because the client reacts differently to each.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, errBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, errUnauthenticated):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, errAlreadyAuthenticated):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, errForbidden), errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrorMfaInvalid),
		errors.Is(err, common.ErrorAuthentication),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorMfaRequired):
		status, msg = http.StatusForbidden, "mfa_required"
	case errors.Is(err, common.ErrorLockedOut):
		status, msg = http.StatusLocked, "locked out"
	case errors.Is(err, common.ErrorRateLimited):
		status, msg = http.StatusTooManyRequests, "rate limited"
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorDuplicateEmail):
		status, msg = http.StatusConflict, "email already registered"
	default:
		s.logger.Error(r.Context(), "request failed", "err", err)
	}

	s.writeJSON(w, r, status, errorResponse{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
