package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secblog/internal/common"
	"github.com/dmitrijs2005/secblog/internal/dbx"
	"github.com/dmitrijs2005/secblog/internal/server/access"
	"github.com/dmitrijs2005/secblog/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for unique-constraint violations. The
// email uniqueness race on registration is resolved here, by the database
// constraint, not by an application-level check-then-insert.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, firstname, lastname, phone, password_hash, salt, mfa_secret, role)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, mfa_enabled, active, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Firstname, user.Lastname, user.Phone,
		user.PasswordHash, user.Salt, user.MFASecret, string(user.Role)).
		Scan(&user.ID, &user.MFAEnabled, &user.Active, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, firstname, lastname, phone, password_hash, salt, mfa_secret, mfa_enabled, active, role, created_at
		 FROM users
		 WHERE email = $1
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, firstname, lastname, phone, password_hash, salt, mfa_secret, mfa_enabled, active, role, created_at
		 FROM users
		 WHERE id = $1
		 `

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SetMFAEnabled flips mfa_enabled to true. The column only ever transitions
// false→true; there is no reverse operation.
func (r *PostgresRepository) SetMFAEnabled(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET mfa_enabled = true
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role string

	err := row.Scan(&user.ID, &user.Email, &user.Firstname, &user.Lastname, &user.Phone,
		&user.PasswordHash, &user.Salt, &user.MFASecret, &user.MFAEnabled, &user.Active,
		&role, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role, err = access.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt user record %s: %w", user.ID, err)
	}

	return user, nil
}
