package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/param"
)

// PgxConn implements Conn for a pgxpool.Pool. SQL must use $n placeholders.
type PgxConn struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgxConn creates a new PgxConn.
func NewPgxConn(pool *pgxpool.Pool, logger *zap.Logger) *PgxConn {
	return &PgxConn{pool: pool, logger: logging.OrNop(logger)}
}

func (c *PgxConn) Dialect() dialect.Dialect { return dialect.NewPostgresDialect() }

func (c *PgxConn) Prepare(_ context.Context, query string) (Statement, error) {
	return &PgxStatement{conn: c, query: query, updateCount: -1}, nil
}

// PgxStatement implements Statement over pgx. A CALL returns its OUT and INOUT values
// as a single row, in declaration order.
type PgxStatement struct {
	conn  *PgxConn
	query string

	args    []any
	outs    map[int]param.SQLType
	outVals map[int]any

	rows        pgx.Rows
	updateCount int64
}

func (s *PgxStatement) slot(pos int) error {
	if pos < 1 {
		return fmt.Errorf("parameter position %d out of range", pos)
	}
	for len(s.args) < pos {
		s.args = append(s.args, nil)
	}
	return nil
}

func (s *PgxStatement) SetParameter(pos int, value any, _ param.SQLType) error {
	if err := s.slot(pos); err != nil {
		return err
	}
	s.args[pos-1] = value
	return nil
}

func (s *PgxStatement) SetNull(pos int, _ param.SQLType) error {
	if err := s.slot(pos); err != nil {
		return err
	}
	s.args[pos-1] = nil
	return nil
}

func (s *PgxStatement) RegisterOutParameter(pos int, t param.SQLType) error {
	if err := s.slot(pos); err != nil {
		return err
	}
	if s.outs == nil {
		s.outs = make(map[int]param.SQLType)
	}
	s.outs[pos] = t
	return nil
}

// ParameterCount describes the statement on the server.
func (s *PgxStatement) ParameterCount(ctx context.Context) (int, error) {
	conn, err := s.conn.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	sd, err := conn.Conn().Prepare(ctx, "", s.query)
	if err != nil {
		return 0, err
	}
	return len(sd.ParamOIDs), nil
}

func (s *PgxStatement) Execute(ctx context.Context) error {
	start := time.Now()

	if len(s.outs) > 0 {
		return s.call(ctx)
	}

	if ReturnsRows(s.query) {
		rows, err := s.conn.pool.Query(ctx, s.query, s.args...)
		if err != nil {
			return err
		}
		s.rows = rows
		s.conn.logger.Debug("query executed", logging.Query(s.query), zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	tag, err := s.conn.pool.Exec(ctx, s.query, s.args...)
	if err != nil {
		return err
	}
	s.updateCount = tag.RowsAffected()
	s.conn.logger.Debug("statement executed",
		logging.Query(s.query),
		zap.Int64("rows_affected", s.updateCount),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *PgxStatement) call(ctx context.Context) error {
	rows, err := s.conn.pool.Query(ctx, s.query, s.args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	positions := make([]int, 0, len(s.outs))
	for pos := range s.outs {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	s.outVals = make(map[int]any, len(positions))
	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return err
		}
		for i, pos := range positions {
			if i < len(values) {
				s.outVals[pos] = values[i]
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.updateCount = rows.CommandTag().RowsAffected()
	return nil
}

func (s *PgxStatement) UpdateCount() int64 { return s.updateCount }

// GeneratedKeys is not available; use RETURNING.
func (s *PgxStatement) GeneratedKeys(context.Context) (Rows, error) {
	return nil, ErrUnsupported
}

func (s *PgxStatement) ResultSet() Rows {
	if s.rows == nil {
		return nil
	}
	return &PgxRows{rows: s.rows}
}

// MoreResults is always false; pgx yields one result set per query.
func (s *PgxStatement) MoreResults() bool {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	return false
}

func (s *PgxStatement) OutParameter(pos int) (any, error) {
	if _, ok := s.outs[pos]; !ok {
		return nil, fmt.Errorf("parameter %d was not registered as output", pos)
	}
	return s.outVals[pos], nil
}

func (s *PgxStatement) Close() error {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	return nil
}

// PgxRows implements Rows for pgx.Rows.
type PgxRows struct {
	rows              pgx.Rows
	fieldDescriptions []pgconn.FieldDescription
}

// Next prepares the next result row for reading.
func (p *PgxRows) Next() bool { return p.rows.Next() }

// Scan copies the columns from the current row into the provided destinations.
func (p *PgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }

// Close closes the rows iterator.
func (p *PgxRows) Close() error { p.rows.Close(); return nil }

// Columns returns the column names.
func (p *PgxRows) Columns() ([]string, error) {
	if p.fieldDescriptions == nil {
		p.fieldDescriptions = p.rows.FieldDescriptions()
	}
	columns := make([]string, len(p.fieldDescriptions))
	for i, fd := range p.fieldDescriptions {
		columns[i] = fd.Name
	}
	return columns, nil
}

func (p *PgxRows) Err() error { return p.rows.Err() }

var (
	_ Conn      = (*PgxConn)(nil)
	_ Statement = (*PgxStatement)(nil)
	_ Rows      = (*PgxRows)(nil)
)
