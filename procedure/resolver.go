package procedure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/param"
)

type Option func(*Resolver)

// WithCache shares a metadata cache between resolvers of the same database.
func WithCache(c *Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// Resolver returns the declared parameters of stored procedures, discovering them
// through a Catalog on a cache miss.
type Resolver struct {
	catalog Catalog
	dialect dialect.Dialect
	cache   *Cache
	logger  *zap.Logger

	userOnce sync.Once
	user     string
}

func NewResolver(catalog Catalog, d dialect.Dialect, opts ...Option) *Resolver {
	r := &Resolver{catalog: catalog, dialect: d}
	for _, opt := range opts {
		opt(r)
	}
	if r.dialect == nil {
		r.dialect = dialect.NewGenericDialect()
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	r.logger = logging.OrNop(r.logger)
	return r
}

// Cache exposes the metadata cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Resolve returns the parameters of the procedure identified by catalog, schema and name.
// Names are normalized for the dialect first. With useCache false, or on a miss, the
// catalog is queried once and every procedure it reports is cached under its discovered
// key. The result is a copy with no values.
func (r *Resolver) Resolve(ctx context.Context, catalog, schema, name string, useCache bool) (*param.Model, error) {
	cat, sch, proc := dialect.Normalize(r.dialect, catalog, schema, name, r.userName(ctx, schema))
	search := NewKey(cat, sch, proc)

	if useCache {
		m, err := r.cache.Lookup(search)
		if err == nil {
			r.logger.Debug("procedure metadata cache hit", zap.Stringer("procedure", search))
			return m, nil
		}
		if errors.Is(err, ErrAmbiguousProcedure) {
			return nil, err
		}
	}

	if err := r.discover(ctx, cat, sch, proc); err != nil {
		return nil, err
	}
	return r.cache.Lookup(search)
}

// ResolveKey resolves a key as returned by ParseCall.
func (r *Resolver) ResolveKey(ctx context.Context, k Key, useCache bool) (*param.Model, error) {
	return r.Resolve(ctx, k.Catalog.String, k.Schema.String, k.Name.String, useCache)
}

func (r *Resolver) userName(ctx context.Context, schema string) string {
	if schema != "" {
		return ""
	}
	r.userOnce.Do(func() {
		user, err := r.catalog.UserName(ctx)
		if err != nil {
			r.logger.Warn("cannot read current user, schema default disabled", zap.Error(err))
			return
		}
		r.user = user
	})
	return r.user
}

func (r *Resolver) discover(ctx context.Context, catalog, schema, name string) error {
	procs, err := r.catalog.Procedures(ctx, catalog, schema, name)
	if err != nil {
		return fmt.Errorf("discover procedures %s: %w", NewKey(catalog, schema, name), err)
	}

	batch := make([]Entry, 0, len(procs))
	for _, p := range procs {
		cols, err := r.catalog.ProcedureColumns(ctx, p)
		if err != nil {
			return fmt.Errorf("discover columns of %s.%s: %w", p.Schema, p.Name, err)
		}
		batch = append(batch, Entry{
			Key:          NewKey(p.Catalog, p.Schema, r.dialect.TrimProcedureName(p.Name)),
			SpecificName: p.SpecificName,
			Params:       r.model(cols),
		})
	}
	r.cache.Store(batch)

	r.logger.Debug("procedures discovered",
		zap.Stringer("filter", NewKey(catalog, schema, name)),
		zap.Int("count", len(batch)))
	return nil
}

func (r *Resolver) model(cols []Column) *param.Model {
	m := param.New()
	for _, c := range cols {
		if c.Name == "" && c.Kind != ColumnReturn && c.Kind != ColumnResult {
			continue
		}
		t := c.Type
		if !t.Known() {
			t = r.dialect.TypeCode(c.TypeName)
		}
		name := c.Name
		if m.Has(name) {
			name = fmt.Sprintf("#%d", m.Len())
		}
		m.Set(name, nil, param.WithType(t), param.WithDirection(c.Kind.Direction()))
	}
	return m
}
