// Package repomanager wires the repository set to a database handle. Passing
// a dbx.DBTX lets services use the same repositories inside and outside of a
// transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/server/repositories/achievements"
	"github.com/thriveos/thriveremote/internal/server/repositories/applications"
	"github.com/thriveos/thriveremote/internal/server/repositories/ledger"
	"github.com/thriveos/thriveremote/internal/server/repositories/sessions"
	"github.com/thriveos/thriveremote/internal/server/repositories/tasks"
	"github.com/thriveos/thriveremote/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Ledger(db dbx.DBTX) ledger.Repository
	Achievements(db dbx.DBTX) achievements.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Applications(db dbx.DBTX) applications.Repository
}
