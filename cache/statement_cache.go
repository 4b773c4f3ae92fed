package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// acquireAttempts bounds how often GetOrPrepare retries an entry closed by a concurrent
// eviction before it prepares an uncached statement.
const acquireAttempts = 3

// Preparer is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// cachedStmt counts the callers using a statement. An evicted statement is closed once the
// last caller releases it.
type cachedStmt struct {
	stmt *sql.Stmt

	mu      sync.Mutex
	refs    int
	evicted bool
	closed  bool
}

func (c *cachedStmt) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.refs++
	return true
}

func (c *cachedStmt) release() {
	c.mu.Lock()
	c.refs--
	closeNow := c.evicted && c.refs == 0 && !c.closed
	if closeNow {
		c.closed = true
	}
	c.mu.Unlock()
	if closeNow {
		_ = c.stmt.Close()
	}
}

func (c *cachedStmt) evict() {
	c.mu.Lock()
	c.evicted = true
	closeNow := c.refs == 0 && !c.closed
	if closeNow {
		c.closed = true
	}
	c.mu.Unlock()
	if closeNow {
		_ = c.stmt.Close()
	}
}

// StatementCache keeps prepared statements keyed by a fingerprint of their SQL text.
// Evicted statements are closed when no caller holds them any more.
type StatementCache struct {
	cache *LRU[uint64, *cachedStmt]
}

func NewStatementCache(size int) (*StatementCache, error) {
	c, err := NewLRU(size, func(_ uint64, entry *cachedStmt) {
		entry.evict()
	})
	if err != nil {
		return nil, err
	}
	return &StatementCache{cache: c}, nil
}

// GetOrPrepare returns the cached statement for key, preparing query on a miss. The
// statement stays open until release is called, even if it is evicted meanwhile.
func (s *StatementCache) GetOrPrepare(ctx context.Context, key uint64, db Preparer, query string) (*sql.Stmt, func(), error) {
	for i := 0; i < acquireAttempts; i++ {
		entry, _, err := s.cache.GetOrAdd(key, func() (*cachedStmt, error) {
			stmt, err := db.PrepareContext(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("prepare statement: %w", err)
			}
			return &cachedStmt{stmt: stmt}, nil
		})
		if err != nil {
			return nil, nil, err
		}
		if entry.acquire() {
			return entry.stmt, entry.release, nil
		}
	}

	stmt, err := db.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare statement: %w", err)
	}
	return stmt, func() { _ = stmt.Close() }, nil
}

func (s *StatementCache) Stats() Stats {
	return s.cache.Stats()
}

// Close drops every cached statement. Statements still held are closed on release.
func (s *StatementCache) Close() error {
	s.cache.Purge()
	return nil
}
