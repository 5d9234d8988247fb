package httpapi

import (
	"context"
	"net"
	"net/http"

	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/auth"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxKeyPrincipal contextKey = "principal"
	ctxKeySessionID contextKey = "sessionID"
)

const (
	sessionCookieName = "secblog_session"
	tokenCookieName   = "secblog_token"
)

// withSessionCookie guarantees every request carries a browser-session ID.
// The ID keys the login attempt counter, so it exists before the first login
// attempt and survives across them.
func (s *Server) withSessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
			sessionID = c.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySessionID, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withPrincipal resolves the token cookie into a loaded user record. A
// missing, expired or otherwise invalid token just leaves the request
// anonymous; the gates downstream decide whether that is acceptable.
func (s *Server) withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(tokenCookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseToken(c.Value, []byte(s.cfg.SecretKey))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.accounts.GetUserByID(r.Context(), claims.UserID)
		if err != nil || !user.Active {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyPrincipal, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principalFrom(r) == nil {
			s.writeError(w, r, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if access.RequiresAnonymous(principalFrom(r) != nil) {
			s.writeError(w, r, errAlreadyAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireRole(roles ...access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := principalFrom(r)
			if principal == nil || !access.Authorize(principal.Role, roles...) {
				if principal != nil {
					if err := s.audit.Event("unauthorized role access",
						"email", principal.Email, "role", principal.Role,
						"path", r.URL.Path, "ip", clientIP(r)); err != nil {
						s.logger.Error(r.Context(), "audit append failed", "err", err)
					}
				}
				s.writeError(w, r, errForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(ctxKeyPrincipal).(*models.User)
	return user
}

func sessionIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeySessionID).(string)
	return id
}

// clientIP returns the request origin address, without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
