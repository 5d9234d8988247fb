// Package repomanager wires repositories to a database handle. Services ask
// the manager for a repository bound to either the root *sql.DB or a
// transaction, which keeps multi-record operations (registration, password
// change) inside one transaction without the repositories knowing.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secblog/internal/dbx"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/logs"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Logs(db dbx.DBTX) logs.Repository
}
