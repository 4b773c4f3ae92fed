package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/cache"
	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/utils"
)

// Executor is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// ConnOption configures a SQLConn.
type ConnOption func(*SQLConn)

// WithStatementCache prepares every statement once and reuses it.
func WithStatementCache(c *cache.StatementCache) ConnOption {
	return func(s *SQLConn) { s.stmts = c }
}

func WithLogger(l *zap.Logger) ConnOption {
	return func(s *SQLConn) { s.logger = l }
}

// SQLConn implements Conn for database/sql.
type SQLConn struct {
	db      Executor
	dialect dialect.Dialect
	stmts   *cache.StatementCache
	logger  *zap.Logger
}

// NewSQLConn creates a new SQLConn.
func NewSQLConn(db Executor, d dialect.Dialect, opts ...ConnOption) *SQLConn {
	c := &SQLConn{db: db, dialect: d}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialect == nil {
		c.dialect = dialect.NewGenericDialect()
	}
	c.logger = logging.OrNop(c.logger)
	return c
}

func (c *SQLConn) Dialect() dialect.Dialect { return c.dialect }

// Prepare creates a statement. The SQL is sent to the database on Execute.
func (c *SQLConn) Prepare(_ context.Context, query string) (Statement, error) {
	return &SQLStatement{conn: c, query: query, updateCount: -1}, nil
}

// SQLStatement implements Statement over database/sql. OUT parameters are passed as
// sql.Out.
type SQLStatement struct {
	conn  *SQLConn
	query string

	args     []any
	outs     map[int]*sql.Out
	outTypes map[int]param.SQLType

	rows         *sql.Rows
	updateCount  int64
	lastInsertID int64
	hasInsertID  bool
}

func (s *SQLStatement) slot(pos int) error {
	if pos < 1 {
		return fmt.Errorf("parameter position %d out of range", pos)
	}
	for len(s.args) < pos {
		s.args = append(s.args, nil)
	}
	return nil
}

func (s *SQLStatement) SetParameter(pos int, value any, _ param.SQLType) error {
	if err := s.slot(pos); err != nil {
		return err
	}
	s.args[pos-1] = value
	if out, ok := s.outs[pos]; ok {
		fillHolder(out, s.outTypes[pos], value)
	}
	return nil
}

func (s *SQLStatement) SetNull(pos int, t param.SQLType) error {
	if err := s.slot(pos); err != nil {
		return err
	}
	s.args[pos-1] = nullOf(t)
	if out, ok := s.outs[pos]; ok {
		fillHolder(out, s.outTypes[pos], nil)
	}
	return nil
}

func (s *SQLStatement) RegisterOutParameter(pos int, t param.SQLType) error {
	if err := s.slot(pos); err != nil {
		return err
	}
	if s.outs == nil {
		s.outs = make(map[int]*sql.Out)
		s.outTypes = make(map[int]param.SQLType)
	}
	out := &sql.Out{Dest: holderOf(t)}
	// a slot already bound by SetParameter or SetNull makes this an INOUT parameter
	if v := s.args[pos-1]; v != nil {
		fillHolder(out, t, v)
	}
	s.outs[pos] = out
	s.outTypes[pos] = t
	return nil
}

// ParameterCount is not exposed by database/sql.
func (s *SQLStatement) ParameterCount(context.Context) (int, error) {
	return 0, ErrUnsupported
}

func (s *SQLStatement) bound() []any {
	args := make([]any, len(s.args))
	copy(args, s.args)
	for pos, out := range s.outs {
		args[pos-1] = *out
	}
	return args
}

func (s *SQLStatement) Execute(ctx context.Context) error {
	args := s.bound()
	start := time.Now()

	var stmt *sql.Stmt
	if s.conn.stmts != nil {
		var (
			release func()
			err     error
		)
		stmt, release, err = s.conn.stmts.GetOrPrepare(ctx, utils.FingerprintString(s.query), s.conn.db, s.query)
		if err != nil {
			return err
		}
		// open rows keep the prepared statement alive on their own
		defer release()
	}

	if len(s.outs) == 0 && ReturnsRows(s.query) {
		var (
			rows *sql.Rows
			err  error
		)
		if stmt != nil {
			rows, err = stmt.QueryContext(ctx, args...)
		} else {
			rows, err = s.conn.db.QueryContext(ctx, s.query, args...)
		}
		if err != nil {
			return err
		}
		s.rows = rows
		s.updateCount = -1
		s.conn.logger.Debug("query executed", logging.Query(s.query), zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	var (
		res sql.Result
		err error
	)
	if stmt != nil {
		res, err = stmt.ExecContext(ctx, args...)
	} else {
		res, err = s.conn.db.ExecContext(ctx, s.query, args...)
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil {
		s.updateCount = n
	}
	if id, err := res.LastInsertId(); err == nil {
		s.lastInsertID, s.hasInsertID = id, true
	}
	s.conn.logger.Debug("statement executed",
		logging.Query(s.query),
		zap.Int64("rows_affected", s.updateCount),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *SQLStatement) UpdateCount() int64 { return s.updateCount }

// GeneratedKeys reports the last insert id as a one-row result.
func (s *SQLStatement) GeneratedKeys(context.Context) (Rows, error) {
	if !s.hasInsertID {
		return nil, ErrUnsupported
	}
	return NewMemoryRows([]string{"GENERATED_KEY"}, [][]any{{s.lastInsertID}}), nil
}

func (s *SQLStatement) ResultSet() Rows {
	if s.rows == nil {
		return nil
	}
	return &SQLRows{rows: s.rows}
}

func (s *SQLStatement) MoreResults() bool {
	if s.rows == nil {
		return false
	}
	if s.rows.NextResultSet() {
		return true
	}
	_ = s.rows.Close()
	s.rows = nil
	return false
}

func (s *SQLStatement) OutParameter(pos int) (any, error) {
	out, ok := s.outs[pos]
	if !ok {
		return nil, fmt.Errorf("parameter %d was not registered as output", pos)
	}
	return holderValue(out.Dest), nil
}

func (s *SQLStatement) Close() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	return err
}

// SQLRows implements Rows for *sql.Rows.
type SQLRows struct {
	rows *sql.Rows
}

// NewSQLRows wraps rows.
func NewSQLRows(rows *sql.Rows) *SQLRows { return &SQLRows{rows: rows} }

// Next prepares the next result row for reading.
func (s *SQLRows) Next() bool { return s.rows.Next() }

// Scan copies the columns from the current row into the provided destinations.
func (s *SQLRows) Scan(dest ...any) error { return s.rows.Scan(dest...) }

// Close closes the rows iterator.
func (s *SQLRows) Close() error { return s.rows.Close() }

// Columns returns the column names.
func (s *SQLRows) Columns() ([]string, error) { return s.rows.Columns() }

func (s *SQLRows) Err() error { return s.rows.Err() }

var (
	_ Conn      = (*SQLConn)(nil)
	_ Statement = (*SQLStatement)(nil)
	_ Rows      = (*SQLRows)(nil)
)
