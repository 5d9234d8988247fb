package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.withSessionCookie)
	r.Use(s.withPrincipal)

	// anonymous-only authentication flows, with a transport-level cap on top
	// of the in-process attempt governor
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.LoginRateLimit, s.cfg.LoginRateWindow))
		r.Use(s.requireAnonymous)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/mfa-setup", s.handleMFASetup)
	})

	r.Post("/auth/unlock", s.handleUnlock)

	// authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuthenticated)

		r.Post("/auth/logout", s.handleLogout)

		r.Get("/account", s.handleAccount)
		r.Post("/account/password", s.handleChangePassword)

		r.Route("/posts", func(r chi.Router) {
			r.Use(s.requireRole(access.RoleEndUser))
			r.Get("/", s.handleListPosts)
			r.Post("/", s.handleCreatePost)
			r.Get("/{id}", s.handleGetPost)
			r.Put("/{id}", s.handleUpdatePost)
			r.Delete("/{id}", s.handleDeletePost)
		})

		// no role gate here: the service refuses non-admins itself, and the
		// refusal has to land in the audit log
		r.Get("/security/events", s.handleSecurityEvents)
	})

	return r
}
