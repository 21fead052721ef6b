package repomanager

import (
	"context"
	"database/sql"

	"github.com/viewtube/viewtube/internal/dbx"
	"github.com/viewtube/viewtube/internal/server/repositories/users"
	"github.com/viewtube/viewtube/internal/server/repositories/videos"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Videos(db dbx.DBTX) videos.Repository
}
