// Package engine ties compilation, metadata resolution, binding and materialization
// together behind one facade.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/config"
	"github.com/Konsultn-Engineering/namedb/connector"
	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/procedure"
	"github.com/Konsultn-Engineering/namedb/query"
	"github.com/Konsultn-Engineering/namedb/schema"
)

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithConfig sets the tunables. Without it the defaults and the NAMEDB_* environment apply.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

func WithCompiler(c *query.Compiler) Option {
	return func(e *Engine) { e.compiler = c }
}

// WithResolver enables procedure metadata discovery for call statements.
func WithResolver(r *procedure.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

func WithSchema(s *schema.Context) Option {
	return func(e *Engine) { e.schema = s }
}

type Engine struct {
	conn     database.Conn
	dialect  dialect.Dialect
	compiler *query.Compiler
	resolver *procedure.Resolver
	schema   *schema.Context
	cfg      *config.Config
	logger   *zap.Logger
	ids      *idSource

	pool    connector.Connection
	closers []io.Closer
}

// New returns an engine over conn.
func New(conn database.Conn, opts ...Option) (*Engine, error) {
	if conn == nil {
		return nil, errors.New("engine: nil connection")
	}
	e := &Engine{conn: conn, dialect: conn.Dialect()}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg == nil {
		e.cfg = config.Default()
	}
	e.logger = logging.OrNop(e.logger)

	if e.compiler == nil {
		c, err := newCompiler(e.cfg, e.dialect, e.logger)
		if err != nil {
			return nil, err
		}
		e.compiler = c
	}
	if e.schema == nil {
		s, err := schema.New()
		if err != nil {
			return nil, err
		}
		e.schema = s
	}
	e.ids = newIDSource()
	return e, nil
}

func newCompiler(cfg *config.Config, d dialect.Dialect, logger *zap.Logger) (*query.Compiler, error) {
	return query.NewCompiler(
		query.WithCacheSize(cfg.TemplateCacheSize),
		query.WithPrefixes(cfg.ParameterPrefixes),
		query.WithSpringSyntax(cfg.SpringSyntax),
		query.WithBackslashEscapes(dialect.BackslashEscapes(d)),
		query.WithLogger(logger),
	)
}

// Open connects with cfg.Database and wires the statement cache and the catalog-backed
// procedure resolver. Close releases both.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger = logging.OrNop(logger)

	conn, err := connector.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var stmts *cache.StatementCache
	if cfg.PrepareStatements {
		if stmts, err = cache.NewStatementCache(cfg.StatementCacheSize); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	d := conn.Dialect()
	compiler, err := newCompiler(cfg, d, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	catalog := procedure.NewSQLCatalog(conn.DB(), d)
	resolver := procedure.NewResolver(catalog, d, procedure.WithLogger(logger))

	e, err := New(conn.Conn(logger, stmts),
		WithConfig(cfg),
		WithLogger(logger),
		WithCompiler(compiler),
		WithResolver(resolver))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if stmts != nil {
		e.closers = append(e.closers, stmts)
	}
	e.pool = conn
	e.closers = append(e.closers, conn)

	logger.Info("engine opened",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dialect", d.Name()))
	return e, nil
}

// Close releases what Open acquired. Engines built with New own nothing.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	e.pool = nil
	return errors.Join(errs...)
}

// Ping checks that the pool opened by Open can reach the database.
func (e *Engine) Ping(ctx context.Context) error {
	if e.pool == nil {
		return ErrNotOpened
	}
	if err := e.pool.Health(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", e.dialect.Name(), err)
	}
	return nil
}

// PoolStats reports the connection pool opened by Open.
func (e *Engine) PoolStats() (connector.ConnectionStats, error) {
	if e.pool == nil {
		return connector.ConnectionStats{}, ErrNotOpened
	}
	return e.pool.Stats(), nil
}

func (e *Engine) Dialect() dialect.Dialect { return e.dialect }

func (e *Engine) Compiler() *query.Compiler { return e.compiler }

// Resolver is nil when metadata discovery is disabled.
func (e *Engine) Resolver() *procedure.Resolver { return e.resolver }

func (e *Engine) Schema() *schema.Context { return e.schema }

func (e *Engine) Config() *config.Config { return e.cfg }
