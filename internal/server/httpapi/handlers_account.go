package httpapi

import (
	"net/http"
)

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	user := principalFrom(r)
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"firstname":   user.Firstname,
		"lastname":    user.Lastname,
		"phone":       user.Phone,
		"role":        user.Role,
		"mfa_enabled": user.MFAEnabled,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.NewPassword == "" {
		s.writeError(w, r, errBadRequest)
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), principalFrom(r), req.OldPassword, req.NewPassword, clientIP(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{"status": "password changed"})
}
