// Package database is the seam between the engine and a native driver. Positions are
// 1-based, as in every driver API.
package database

import (
	"context"
	"errors"

	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/param"
)

// ErrUnsupported is returned by optional driver capabilities, such as reporting the
// parameter count of a statement.
var ErrUnsupported = errors.New("not supported by driver")

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Columns() ([]string, error)
	Err() error
}

// ScrollableRows can move back to a row that was already read.
type ScrollableRows interface {
	Rows
	// Absolute positions the rows on row i (0-based) so that Scan reads it. A following
	// Next moves to row i+1.
	Absolute(i int) error
}

// Statement is one prepared call.
type Statement interface {
	SetParameter(pos int, value any, t param.SQLType) error
	SetNull(pos int, t param.SQLType) error
	RegisterOutParameter(pos int, t param.SQLType) error

	// ParameterCount reports the number of placeholders the database sees, or
	// ErrUnsupported.
	ParameterCount(ctx context.Context) (int, error)

	Execute(ctx context.Context) error
	// UpdateCount is the number of affected rows, or -1 when the statement produced rows.
	UpdateCount() int64
	GeneratedKeys(ctx context.Context) (Rows, error)
	// ResultSet returns the current result set, or nil. It stays owned by the statement.
	ResultSet() Rows
	// MoreResults moves to the next result set and reports whether there is one.
	MoreResults() bool
	OutParameter(pos int) (any, error)

	Close() error
}

// Conn prepares statements for one database.
type Conn interface {
	Prepare(ctx context.Context, query string) (Statement, error)
	Dialect() dialect.Dialect
}

// ScanRow reads the current row of rows as driver values.
func ScanRow(rows Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}
