package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rfile/internal/dbx"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/blocks"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/files"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	Blocks(db dbx.DBTX) blocks.Repository
}
