// Package httpapi is the HTTP surface of the server: the router, the
// middleware chain (session cookie, token authentication, role gates) and the
// JSON handlers that translate requests into service calls.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/config"
	"github.com/dmitrijs2005/secblog/internal/server/services"
)

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	audit    *audit.Recorder
	accounts *services.AccountService
	posts    *services.PostService
	security *services.SecurityService

	httpServer *http.Server
}

func NewServer(cfg *config.Config, logger logging.Logger, rec *audit.Recorder,
	accounts *services.AccountService, posts *services.PostService,
	security *services.SecurityService) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		audit:    rec,
		accounts: accounts,
		posts:    posts,
		security: security,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.EndpointAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.cfg.EndpointAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
