package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/productkeeper/internal/dbx"
	"github.com/dmitrijs2005/productkeeper/internal/server/repositories/products"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Products(db dbx.DBTX) products.Repository
}
