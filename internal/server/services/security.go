package services

import (
	"context"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/models"
)

// SecurityService exposes the audit tail to security administrators.
type SecurityService struct {
	audit  *audit.Recorder
	logger logging.Logger
}

func NewSecurityService(rec *audit.Recorder, logger logging.Logger) *SecurityService {
	return &SecurityService{audit: rec, logger: logger}
}

// RecentEvents returns up to n audit lines, newest first, to a sec_admin.
// Any other role is refused, and the refusal itself becomes an audit event.
func (s *SecurityService) RecentEvents(ctx context.Context, principal *models.User, n int, origin string) ([]string, error) {
	if !access.Authorize(principal.Role, access.RoleSecAdmin) {
		if err := s.audit.Event("unauthorized security log access",
			"email", principal.Email, "role", principal.Role, "ip", origin); err != nil {
			s.logger.Error(ctx, "audit append failed", "err", err)
		}
		return nil, common.ErrorUnauthorized
	}

	events, err := s.audit.RecentEvents(n)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return events, nil
}
