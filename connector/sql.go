package connector

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dialect"
)

func init() {
	Register("postgres", &sqlProvider{driver: "postgres", dialect: dialect.NewPostgresDialect()})
	Register("mysql", &sqlProvider{driver: "mysql", dialect: dialect.NewMySQLDialect()})
	Register("tidb", &sqlProvider{driver: "mysql", dialect: dialect.NewTiDBDialect()})
	Register("sqlserver", &sqlProvider{driver: "sqlserver", dialect: dialect.NewSQLServerDialect()})
	Register("sqlite3", &sqlProvider{driver: "sqlite3", dialect: dialect.NewSQLiteDialect()})
}

// sqlProvider opens connections through a database/sql driver.
type sqlProvider struct {
	driver  string
	dialect dialect.Dialect
}

func (p *sqlProvider) Dialect() dialect.Dialect { return p.dialect }

func (p *sqlProvider) Connect(ctx context.Context, cfg Config) (Connection, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(p.driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.Pool.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLConnection{db: db, dialect: p.dialect}, nil
}

// SQLConnection is a Connection over *sql.DB.
type SQLConnection struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewSQLConnection wraps an already opened db.
func NewSQLConnection(db *sql.DB, d dialect.Dialect) *SQLConnection {
	return &SQLConnection{db: db, dialect: d}
}

func (c *SQLConnection) DB() *sql.DB { return c.db }

func (c *SQLConnection) Dialect() dialect.Dialect { return c.dialect }

func (c *SQLConnection) Conn(logger *zap.Logger, stmts *cache.StatementCache) database.Conn {
	opts := []database.ConnOption{database.WithLogger(logger)}
	if stmts != nil {
		opts = append(opts, database.WithStatementCache(stmts))
	}
	return database.NewSQLConn(c.db, c.dialect, opts...)
}

func (c *SQLConnection) Health(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("not connected")
	}
	return c.db.PingContext(ctx)
}

func (c *SQLConnection) Stats() ConnectionStats {
	s := c.db.Stats()
	return ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}

func (c *SQLConnection) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
