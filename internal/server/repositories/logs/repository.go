// Package logs persists the one-to-one login history record per user.
package logs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secblog/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string) (*models.Log, error)
	RecordLogin(ctx context.Context, userID string, at time.Time, origin string) error
	GetByUserID(ctx context.Context, userID string) (*models.Log, error)
}
