package logs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/dbx"
	"github.com/dmitrijs2005/secblog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string) (*models.Log, error) {

	query :=
		`INSERT INTO logs (user_id)
         VALUES ($1)
		 RETURNING id, registered_at
		 `

	log := &models.Log{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&log.ID, &log.RegisteredAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return log, nil
}

// RecordLogin shifts latest→previous and stores the new login in one UPDATE,
// so the two-entry rolling history can never observe a half-shifted state.
func (r *PostgresRepository) RecordLogin(ctx context.Context, userID string, at time.Time, origin string) error {
	query :=
		`UPDATE logs SET
		   previous_login_at = latest_login_at,
		   previous_login_ip = latest_login_ip,
		   latest_login_at = $2,
		   latest_login_ip = $3
		 WHERE user_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, at, origin)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Log, error) {
	query :=
		`SELECT id, user_id, registered_at, latest_login_at, previous_login_at, latest_login_ip, previous_login_ip
		 FROM logs
		 WHERE user_id = $1
		 `

	log := &models.Log{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&log.ID, &log.UserID, &log.RegisteredAt,
			&log.LatestLoginAt, &log.PreviousLoginAt,
			&log.LatestLoginIP, &log.PreviousLoginIP)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return log, nil
}
