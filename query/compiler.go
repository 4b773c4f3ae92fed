// Package query compiles SQL written with named parameters (:name, &name, :{name}) into
// positional SQL, and remembers the rewrite in a bounded cache.
package query

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/logging"
)

// DefaultPrefixes are the characters that introduce a named parameter.
const DefaultPrefixes = ":&"

// Option configures a Compiler.
type Option func(*Compiler)

// WithCacheSize bounds the number of cached templates.
func WithCacheSize(n int) Option {
	return func(c *Compiler) { c.cacheSize = n }
}

// WithCache injects a template cache. Share a cache only between compilers built with
// the same options.
func WithCache(lru *cache.LRU[string, *ProcessedInput]) Option {
	return func(c *Compiler) { c.cache = lru }
}

// WithPrefixes replaces the parameter prefix characters.
func WithPrefixes(prefixes string) Option {
	return func(c *Compiler) {
		if prefixes != "" {
			c.prefixes = prefixes
		}
	}
}

// WithBackslashEscapes makes a backslash escape the next byte inside quoted literals, as
// MySQL does by default.
func WithBackslashEscapes(enabled bool) Option {
	return func(c *Compiler) { c.backslash = enabled }
}

// WithSpringSyntax treats "::" casts and "\:" escapes as plain text.
func WithSpringSyntax(enabled bool) Option {
	return func(c *Compiler) { c.spring = enabled }
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// Compiler turns named-parameter SQL into a ProcessedInput. It is safe for concurrent use.
type Compiler struct {
	cache     *cache.LRU[string, *ProcessedInput]
	cacheSize int
	prefixes  string
	spring    bool
	backslash bool
	logger    *zap.Logger
}

// NewCompiler builds a compiler with its own template cache unless one is injected.
func NewCompiler(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		cacheSize: cache.DefaultSize,
		prefixes:  DefaultPrefixes,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)

	if c.cache == nil {
		lru, err := cache.NewLRU[string, *ProcessedInput](c.cacheSize, nil)
		if err != nil {
			return nil, err
		}
		c.cache = lru
	}
	return c, nil
}

// Compile returns the compiled template for sql. The result is a private copy the caller
// may bind values to.
func (c *Compiler) Compile(sql string) (*ProcessedInput, error) {
	p, hit, err := c.cache.GetOrAdd(sql, func() (*ProcessedInput, error) {
		p, err := c.parse(sql)
		if err != nil {
			return nil, err
		}
		return p.stripped(), nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		c.logger.Debug("template cache hit", logging.Query(sql))
	} else {
		c.logger.Debug("template compiled",
			logging.Query(sql),
			zap.Int("parameters", len(p.Parameters)))
	}
	return p.Clone(), nil
}

// Stats exposes the template cache counters.
func (c *Compiler) Stats() cache.Stats {
	return c.cache.Stats()
}

// HasUnnamedParameters reports whether sql contains a bare '?' outside literals and
// comments. It stops at the first one.
func (c *Compiler) HasUnnamedParameters(sql string) bool {
	return hasUnnamed(sql, c.backslash)
}

// HasUnnamedParameters reports whether sql contains a bare '?' outside literals and
// comments.
func HasUnnamedParameters(sql string) bool {
	return hasUnnamed(sql, false)
}

func hasUnnamed(sql string, backslash bool) bool {
	found := false
	walk(sql, backslash, func(i int) int {
		if sql[i] == '?' {
			found = true
			return len(sql)
		}
		return i + 1
	})
	return found
}

// PositionalMarkers returns the offsets of every bare '?' in sql.
func PositionalMarkers(sql string) []int {
	var out []int
	walk(sql, false, func(i int) int {
		if sql[i] == '?' {
			out = append(out, i)
		}
		return i + 1
	})
	return out
}

func (c *Compiler) isPrefix(b byte) bool {
	return strings.IndexByte(c.prefixes, b) >= 0
}

func (c *Compiler) parse(sql string) (*ProcessedInput, error) {
	p := &ProcessedInput{OriginalSQL: sql}

	var (
		out        strings.Builder
		last       int
		positional []int
		failure    *CompileError
	)
	out.Grow(len(sql))
	n := len(sql)

	walk(sql, c.backslash, func(i int) int {
		ch := sql[i]

		if c.spring {
			if ch == '\\' && i+1 < n && sql[i+1] == ':' {
				out.WriteString(sql[last:i])
				last = i + 1 // keep the colon, drop the backslash
				return i + 2
			}
			if ch == ':' && i+1 < n && sql[i+1] == ':' {
				return i + 2
			}
		}

		if ch == '?' {
			positional = append(positional, i)
			out.WriteString(sql[last : i+1])
			p.markers = append(p.markers, out.Len()-1)
			last = i + 1
			return i + 1
		}

		if !c.isPrefix(ch) || (i > 0 && !isSeparator(sql[i-1])) {
			return i + 1
		}

		var name string
		end := i + 1
		if end < n && sql[end] == '{' {
			rb := strings.IndexByte(sql[end:], '}')
			if rb < 0 {
				failure = &CompileError{SQL: sql, Offset: i, Reason: "unterminated parameter block"}
				return n
			}
			name = strings.TrimSpace(sql[end+1 : end+rb])
			end += rb + 1
			if name == "" {
				failure = &CompileError{SQL: sql, Offset: i, Reason: "empty parameter name"}
				return n
			}
		} else {
			name, end = scanName(sql, end)
			if name == "" || (end < n && !isTrailing(sql[end])) {
				return i + 1
			}
		}

		out.WriteString(sql[last:i])
		p.markers = append(p.markers, out.Len())
		out.WriteByte('?')
		p.Parameters = append(p.Parameters, Reference{
			Name:  strings.ToLower(name),
			Start: i,
			End:   end,
		})
		last = end
		return end
	})

	if failure != nil {
		return nil, failure
	}
	if len(p.Parameters) > 0 && len(positional) > 0 {
		return nil, &CompileError{SQL: sql, Offset: positional[0], Reason: "mixed named and positional parameters"}
	}

	out.WriteString(sql[last:])
	p.ParsedSQL = out.String()
	return p, nil
}
