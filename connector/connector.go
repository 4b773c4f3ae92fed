// Package connector opens database connections for the supported drivers and adapts them
// to the database.Conn seam.
package connector

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dialect"
)

// Connection is an open pool.
type Connection interface {
	// DB returns a database/sql handle, used for catalog queries.
	DB() *sql.DB
	Dialect() dialect.Dialect
	// Conn returns the statement seam. stmts may be nil; drivers without
	// database/sql statements ignore it.
	Conn(logger *zap.Logger, stmts *cache.StatementCache) database.Conn
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}
