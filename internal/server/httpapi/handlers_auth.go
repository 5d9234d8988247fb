package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/secblog/internal/server/services"
)

type registerRequest struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, r, errBadRequest)
		return
	}

	user, err := s.accounts.Register(r.Context(), services.RegisterRequest{
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
		Password:  req.Password,
		Origin:    clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.accounts.Login(r.Context(), services.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		TOTPCode:  req.TOTPCode,
		SessionID: sessionIDFrom(r),
		Origin:    clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.SessionTokenValidityDuration.Seconds()),
	})

	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"id":    res.User.ID,
		"email": res.User.Email,
		"role":  res.User.Role,
	})
}

type mfaSetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleMFASetup is the enrollment step: a correct password yields the
// otpauth:// URI for the authenticator app. The account stays unenrolled
// until a login attempt presents a valid code.
func (s *Server) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	var req mfaSetupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	uri, err := s.accounts.BeginMFAEnrollment(r.Context(), services.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		SessionID: sessionIDFrom(r),
		Origin:    clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"provisioning_uri": uri})
}

// handleUnlock resets the current browser session's attempt counter. It is
// deliberately reachable without authentication: a locked-out user is by
// definition not logged in.
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	s.accounts.Unlock(r.Context(), sessionIDFrom(r), clientIP(r))
	s.writeJSON(w, r, http.StatusOK, map[string]any{"status": "unlocked"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	s.writeJSON(w, r, http.StatusOK, map[string]any{"status": "logged out"})
}
