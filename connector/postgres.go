package connector

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dialect"
)

func init() {
	Register("pgx", postgresProvider{})
}

type postgresProvider struct{}

func (postgresProvider) Dialect() dialect.Dialect { return dialect.NewPostgresDialect() }

func (postgresProvider) Connect(ctx context.Context, cfg Config) (Connection, error) {
	p := &PostgresConnector{config: cfg, dialect: dialect.NewPostgresDialect()}
	if err := p.connect(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// PostgresConnector is a native pgx pool. Statements run through pgx; DB exposes the
// same pool through database/sql for catalog queries.
type PostgresConnector struct {
	config  Config
	pool    *pgxpool.Pool
	dialect dialect.Dialect

	dbOnce sync.Once
	db     *sql.DB
}

// OpenPgxPool builds a pgx pool from cfg without the registry.
func OpenPgxPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.Pool.MaxOpen > 0 {
		poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		poolCfg.MinConns = int32(cfg.Pool.MaxIdle)
	}
	if cfg.Pool.MaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	}
	if cfg.Pool.MaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (p *PostgresConnector) connect(ctx context.Context) error {
	if p.pool != nil {
		return nil // Already connected
	}
	pool, err := OpenPgxPool(ctx, p.config)
	if err != nil {
		return err
	}
	p.pool = pool
	return nil
}

// Pool returns the pgx pool.
func (p *PostgresConnector) Pool() *pgxpool.Pool { return p.pool }

// DB returns the pool wrapped as *sql.DB.
func (p *PostgresConnector) DB() *sql.DB {
	p.dbOnce.Do(func() {
		p.db = stdlib.OpenDBFromPool(p.pool)
	})
	return p.db
}

// Dialect returns the PostgreSQL dialect.
func (p *PostgresConnector) Dialect() dialect.Dialect {
	return p.dialect
}

// Conn returns a native pgx statement seam. The statement cache does not apply; pgx
// caches prepared statements per connection itself.
func (p *PostgresConnector) Conn(logger *zap.Logger, _ *cache.StatementCache) database.Conn {
	return database.NewPgxConn(p.pool, logger)
}

// Health checks the connection health.
func (p *PostgresConnector) Health(ctx context.Context) error {
	if p.pool == nil {
		return fmt.Errorf("not connected")
	}
	return p.pool.Ping(ctx)
}

// Stats returns connection pool statistics.
func (p *PostgresConnector) Stats() ConnectionStats {
	if p.pool == nil {
		return ConnectionStats{}
	}
	s := p.pool.Stat()
	return ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

// Close closes the connection pool.
func (p *PostgresConnector) Close() error {
	if p.db != nil {
		_ = p.db.Close()
	}
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}
