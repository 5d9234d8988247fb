package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecurityFixture(t *testing.T) (*SecurityService, *audit.Recorder) {
	t.Helper()
	rec, err := audit.NewRecorder(filepath.Join(t.TempDir(), "security.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return NewSecurityService(rec, logging.NewSlogLogger(testSlog())), rec
}

func TestRecentEvents_SecAdmin(t *testing.T) {
	svc, rec := newSecurityFixture(t)

	require.NoError(t, rec.Event("first"))
	require.NoError(t, rec.Event("second"))

	admin := &models.User{Email: "sec@example.com", Role: access.RoleSecAdmin}
	events, err := svc.RecentEvents(context.Background(), admin, 10, "ip")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Contains(t, events[0], "second")
	assert.Contains(t, events[1], "first")
}

func TestRecentEvents_OtherRolesRefusedAndAudited(t *testing.T) {
	svc, rec := newSecurityFixture(t)

	for _, role := range []access.Role{access.RoleEndUser, access.RoleDBAdmin} {
		user := &models.User{Email: "u@example.com", Role: role}
		_, err := svc.RecentEvents(context.Background(), user, 10, "203.0.113.7")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	}

	events, err := rec.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2, "each refusal is itself an audit event")
	assert.Contains(t, events[0], "unauthorized security log access")
	assert.Contains(t, events[0], "203.0.113.7")
}
