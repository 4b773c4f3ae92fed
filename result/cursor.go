package result

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/param"
)

// State of a Cursor.
type State int

const (
	StateOpen State = iota
	StateExhausted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateExhausted:
		return "EXHAUSTED"
	case StateClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type CursorOption func(*Cursor)

// WithMaxBuffer bounds the unread look-ahead kept by the cursor. Rows already returned by
// GetNext are dropped. Zero keeps every row.
//
// Over scrollable rows the oldest buffered row is dropped and re-read on demand. Over
// forward-only rows the bound is a hard cap: reading past max unread rows stops iteration
// and Truncated reports whether rows were lost. Prefetch never reads past the cap.
func WithMaxBuffer(max int) CursorOption {
	return func(c *Cursor) { c.max = max }
}

func WithCursorLogger(l *zap.Logger) CursorOption {
	return func(c *Cursor) { c.logger = l }
}

// OnClose runs fn once when the cursor releases its rows, typically to close the
// statement that produced them.
func OnClose(fn func() error) CursorOption {
	return func(c *Cursor) { c.onClose = fn }
}

// Cursor streams rows from a driver result. It is not safe for concurrent use.
type Cursor struct {
	rows    database.Rows
	scroll  database.ScrollableRows
	columns []string
	max     int
	logger  *zap.Logger
	onClose func() error

	window  []*param.Model // rows base..fetched-1
	base    int            // absolute index of window[0]
	fetched int            // rows read from the driver
	next    int            // absolute index GetNext returns

	state     State
	released  bool
	truncated bool
	err       error
}

// NewCursor wraps rows. The cursor owns rows and closes them.
func NewCursor(rows database.Rows, opts ...CursorOption) (*Cursor, error) {
	c := &Cursor{rows: rows}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	if s, ok := rows.(database.ScrollableRows); ok {
		c.scroll = s
	}

	cols, err := rows.Columns()
	if err != nil {
		_ = c.release()
		return nil, err
	}
	c.columns = UniqueColumns(cols)
	return c, nil
}

func (c *Cursor) Columns() []string { return c.columns }

func (c *Cursor) State() State { return c.state }

// Truncated reports whether a forward-only bounded cursor dropped rows.
func (c *Cursor) Truncated() bool { return c.truncated }

// Fetched is the number of rows read from the driver so far.
func (c *Cursor) Fetched() int { return c.fetched }

// HasNext reports whether GetNext has a row, reading at most one row ahead.
func (c *Cursor) HasNext() (bool, error) {
	if c.state == StateClosed {
		return false, ErrCursorClosed
	}
	if c.next < c.fetched {
		return true, nil
	}
	return c.fetch()
}

// GetNext returns the next row and advances.
func (c *Cursor) GetNext() (*param.Model, error) {
	ok, err := c.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMoreRows
	}
	row, err := c.Get(c.next)
	if err != nil {
		return nil, err
	}
	if c.bounded() && c.next == c.base && len(c.window) > 0 {
		c.window[0] = nil
		c.window = c.window[1:]
		c.base++
	}
	c.next++
	return row, nil
}

// Get returns row i (0-based), reading ahead when i has not been reached yet. Rows
// dropped from a bounded buffer are re-read through the scrollable rows.
func (c *Cursor) Get(i int) (*param.Model, error) {
	if c.state == StateClosed {
		return nil, ErrCursorClosed
	}
	if i < 0 {
		return nil, fmt.Errorf("row %d out of range", i)
	}
	for i >= c.fetched {
		ok, err := c.fetch()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoMoreRows
		}
	}
	if i >= c.base {
		return c.window[i-c.base], nil
	}
	return c.refetch(i)
}

// Prefetch reads ahead until n unread rows are buffered or the rows are exhausted, and
// returns the number of unread rows available.
func (c *Cursor) Prefetch(n int) (int, error) {
	if c.state == StateClosed {
		return 0, ErrCursorClosed
	}
	if c.bounded() && c.scroll == nil && n > c.max {
		n = c.max
	}
	for c.fetched-c.next < n {
		ok, err := c.fetch()
		if err != nil {
			return c.fetched - c.next, err
		}
		if !ok {
			break
		}
	}
	return c.fetched - c.next, nil
}

func (c *Cursor) bounded() bool { return c.max > 0 }

func (c *Cursor) fetch() (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.state != StateOpen {
		return false, nil
	}

	if c.bounded() && c.scroll == nil && c.fetched-c.next >= c.max {
		if c.rows.Next() {
			c.truncated = true
			c.logger.Warn("bounded cursor over forward-only rows truncated results",
				zap.Int("max_buffer", c.max),
				zap.Int("fetched", c.fetched))
		}
		c.exhaust()
		return false, nil
	}

	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = err
			return false, err
		}
		c.exhaust()
		return false, nil
	}

	values, err := database.ScanRow(c.rows, len(c.columns))
	if err != nil {
		c.err = err
		return false, err
	}
	if c.bounded() && len(c.window) >= c.max {
		c.window[0] = nil
		c.window = c.window[1:]
		c.base++
	}
	c.window = append(c.window, NewRow(c.columns, values))
	c.fetched++
	return true, nil
}

func (c *Cursor) refetch(i int) (*param.Model, error) {
	if c.scroll == nil || c.released {
		return nil, fmt.Errorf("row %d is no longer buffered", i)
	}
	if err := c.scroll.Absolute(i); err != nil {
		return nil, err
	}
	values, err := database.ScanRow(c.scroll, len(c.columns))
	if err != nil {
		return nil, err
	}
	// put the forward position back on the last fetched row
	if err := c.scroll.Absolute(c.fetched - 1); err != nil {
		return nil, err
	}
	return NewRow(c.columns, values), nil
}

// exhaust marks the end of the rows. The driver rows are released unless dropped rows
// may still need to be re-read.
func (c *Cursor) exhaust() {
	c.state = StateExhausted
	if c.scroll == nil || c.base == 0 {
		if err := c.release(); err != nil {
			c.logger.Debug("releasing exhausted rows", zap.Error(err))
		}
	}
}

func (c *Cursor) release() error {
	if c.released {
		return nil
	}
	c.released = true
	err := c.rows.Close()
	if c.onClose != nil {
		err = errors.Join(err, c.onClose())
	}
	return err
}

// Close releases the rows and drops buffered rows. Closing twice is a no-op.
func (c *Cursor) Close() error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	c.window = nil
	return c.release()
}

// All reads the remaining rows into a RowSet and closes the cursor.
func (c *Cursor) All() (RowSet, error) {
	rs := RowSet{technicalRow(-1, c.columns)}
	for {
		row, err := c.GetNext()
		if errors.Is(err, ErrNoMoreRows) {
			break
		}
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		rs = append(rs, row)
	}
	return rs, c.Close()
}
