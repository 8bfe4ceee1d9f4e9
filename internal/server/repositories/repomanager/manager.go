package repomanager

import (
	"context"
	"database/sql"

	"github.com/namaniisc/CloudDrop/internal/dbx"
	"github.com/namaniisc/CloudDrop/internal/server/repositories/transfers"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Transfers(db dbx.DBTX) transfers.Repository
}
