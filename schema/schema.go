// Package schema is the reflection side of struct mapping. A Context introspects struct
// types once, caches the result in an LRU, and implements result.PropertyHandler so rows
// can be materialized into structs and structs turned into parameter models.
package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/result"
)

// Context holds the mapping configuration and the metadata cache. It is safe for
// concurrent use.
type Context struct {
	namingStrategy NamingStrategy
	tagName        string

	entityCache *cache.LRU[reflect.Type, *EntityMeta]
	cacheSize   int
	onEvict     func(reflect.Type, *EntityMeta)
}

type Option func(*Context)

// WithNamingStrategy sets how field names without an explicit column become column names.
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(ctx *Context) { ctx.namingStrategy = strategy }
}

// WithTagName sets the struct tag name to use for database field mapping
func WithTagName(tagName string) Option {
	return func(ctx *Context) { ctx.tagName = tagName }
}

// WithCacheSize sets the LRU cache size for struct metadata
func WithCacheSize(size int) Option {
	return func(ctx *Context) { ctx.cacheSize = size }
}

// WithEvictionCallback sets a callback function for cache eviction events
func WithEvictionCallback(onEvict func(reflect.Type, *EntityMeta)) Option {
	return func(ctx *Context) { ctx.onEvict = onEvict }
}

// New creates a Context. Defaults: snake_case naming, the "db" tag and a metadata cache
// of cache.DefaultSize types.
func New(options ...Option) (*Context, error) {
	ctx := &Context{
		namingStrategy: DefaultNamingStrategy(),
		tagName:        "db",
		cacheSize:      cache.DefaultSize,
	}
	for _, opt := range options {
		opt(ctx)
	}

	c, err := cache.NewLRU(ctx.cacheSize, ctx.onEvict)
	if err != nil {
		return nil, fmt.Errorf("schema: entity cache: %w", err)
	}
	ctx.entityCache = c
	return ctx, nil
}

// Introspect returns the metadata of t, a struct or pointer to struct, building it on
// first use.
func (c *Context) Introspect(t reflect.Type) (*EntityMeta, error) {
	if t == nil {
		return nil, errors.New("schema: nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	meta, _, err := c.entityCache.GetOrAdd(t, func() (*EntityMeta, error) {
		return c.buildMeta(t)
	})
	return meta, err
}

// CacheStats reports the metadata cache counters.
func (c *Context) CacheStats() cache.Stats {
	return c.entityCache.Stats()
}

// Properties lists the mapped fields of t.
func (c *Context) Properties(t reflect.Type) ([]result.Property, error) {
	meta, err := c.Introspect(t)
	if err != nil {
		return nil, err
	}
	props := make([]result.Property, len(meta.Fields))
	for i, f := range meta.Fields {
		props[i] = result.Property{Name: f.Name, Column: f.DBName, Type: f.Type, Index: f.Index}
	}
	return props, nil
}

// Get reads p from obj, a struct value.
func (c *Context) Get(obj reflect.Value, p result.Property) (any, error) {
	obj = reflect.Indirect(obj)
	f, err := obj.FieldByIndexErr(p.Index)
	if err != nil {
		return nil, err
	}
	return f.Interface(), nil
}

// Set converts value through the compatibility table and stores it into p of obj, an
// addressable struct value. A nil value stores the zero value.
func (c *Context) Set(obj reflect.Value, p result.Property, value any) error {
	obj = reflect.Indirect(obj)
	f, err := obj.FieldByIndexErr(p.Index)
	if err != nil {
		return result.NewBindingError(p.Name, value, p.Type, err)
	}
	if !f.CanSet() {
		return result.NewBindingError(p.Name, value, p.Type, errors.New("field is not settable"))
	}
	v, err := Convert(value, f.Type())
	if err != nil {
		return result.NewBindingError(p.Name, value, f.Type(), err)
	}
	f.Set(v)
	return nil
}

// New returns a pointer to a new zero value of t.
func (c *Context) New(t reflect.Type) reflect.Value {
	return reflect.New(t)
}

// Params builds a parameter model from a struct or pointer to struct, in field order.
// Entries are named by column and carry the type and direction declared in the tag.
func (c *Context) Params(obj any) (*param.Model, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errors.New("schema: nil struct pointer")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: expected struct, got %T", obj)
	}

	meta, err := c.Introspect(v.Type())
	if err != nil {
		return nil, err
	}
	m := param.New()
	for _, f := range meta.Fields {
		m.Set(f.DBName, v.FieldByIndex(f.Index).Interface(),
			param.WithType(f.Tag.Type),
			param.WithDirection(f.Tag.Direction))
	}
	return m, nil
}

var _ result.PropertyHandler = (*Context)(nil)
