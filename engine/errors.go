package engine

import "errors"

var (
	// ErrNoRows is returned by First when the query produced no data rows.
	ErrNoRows = errors.New("no rows in result set")
	// ErrNoResultSet is returned by Cursor when the statement produced no rows.
	ErrNoResultSet = errors.New("statement produced no result set")
	// ErrNoResolver is returned by Describe when metadata discovery is not configured.
	ErrNoResolver = errors.New("procedure metadata resolver not configured")
	// ErrNotOpened is returned by Ping and PoolStats on engines built with New.
	ErrNotOpened = errors.New("engine does not own a connection pool")
)
