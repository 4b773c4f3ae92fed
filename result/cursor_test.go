package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/namedb/database"
)

// forwardOnly hides Absolute from MemoryRows.
type forwardOnly struct {
	database.Rows
}

func syntheticRows(n int) *database.MemoryRows {
	data := make([][]any, n)
	for i := range data {
		data[i] = []any{i}
	}
	return database.NewMemoryRows([]string{"n"}, data)
}

func drain(t *testing.T, c *Cursor) []any {
	t.Helper()
	var out []any
	for {
		ok, err := c.HasNext()
		require.NoError(t, err)
		if !ok {
			return out
		}
		row, err := c.GetNext()
		require.NoError(t, err)
		out = append(out, row.Value("n"))
	}
}

func TestCursorYieldsAllRowsInOrder(t *testing.T) {
	rows := syntheticRows(20)
	closes := 0
	c, err := NewCursor(forwardOnly{rows}, OnClose(func() error { closes++; return nil }))
	require.NoError(t, err)

	got := drain(t, c)
	require.Len(t, got, 20)
	for i, v := range got {
		assert.Equal(t, i, v)
	}

	assert.Equal(t, StateExhausted, c.State())
	assert.True(t, rows.Closed(), "exhaustion releases the driver rows")
	assert.Equal(t, 1, closes)

	_, err = c.GetNext()
	assert.ErrorIs(t, err, ErrNoMoreRows)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, closes)
}

func TestCursorAccessAfterClose(t *testing.T) {
	rows := syntheticRows(5)
	c, err := NewCursor(rows)
	require.NoError(t, err)

	_, err = c.GetNext()
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.True(t, rows.Closed())
	assert.Equal(t, StateClosed, c.State())

	_, err = c.HasNext()
	assert.ErrorIs(t, err, ErrCursorClosed)
	_, err = c.GetNext()
	assert.ErrorIs(t, err, ErrCursorClosed)
	_, err = c.Get(0)
	assert.ErrorIs(t, err, ErrCursorClosed)
	_, err = c.Prefetch(1)
	assert.ErrorIs(t, err, ErrCursorClosed)
}

func TestCursorHasNextReadsOneRowAhead(t *testing.T) {
	c, err := NewCursor(syntheticRows(10))
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 3; i++ {
		ok, err := c.HasNext()
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, c.Fetched())

	n, err := c.Prefetch(4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, c.Fetched())
}

func TestCursorBoundedForwardOnlyStreamsEverything(t *testing.T) {
	tests := []struct {
		name string
		rows int
		max  int
	}{
		{name: "more rows than buffer", rows: 20, max: 5},
		{name: "exact fit", rows: 4, max: 4},
		{name: "single row buffer", rows: 7, max: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCursor(forwardOnly{syntheticRows(tt.rows)}, WithMaxBuffer(tt.max))
			require.NoError(t, err)
			defer c.Close()

			var got []any
			for {
				ok, err := c.HasNext()
				require.NoError(t, err)
				if !ok {
					break
				}
				row, err := c.GetNext()
				require.NoError(t, err)
				got = append(got, row.Value("n"))
				assert.LessOrEqual(t, len(c.window), tt.max, "consumed rows are not kept")
			}

			require.Len(t, got, tt.rows)
			for i, v := range got {
				assert.Equal(t, i, v)
			}
			assert.False(t, c.Truncated())
		})
	}
}

func TestCursorBoundedForwardOnlyPrefetchStopsAtCap(t *testing.T) {
	c, err := NewCursor(forwardOnly{syntheticRows(10)}, WithMaxBuffer(3))
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Prefetch(8)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, c.Fetched())
	assert.False(t, c.Truncated())

	assert.Len(t, drain(t, c), 10)
	assert.False(t, c.Truncated())
}

func TestCursorBoundedForwardOnlyTruncatesPastCap(t *testing.T) {
	c, err := NewCursor(forwardOnly{syntheticRows(10)}, WithMaxBuffer(4))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(6)
	assert.ErrorIs(t, err, ErrNoMoreRows)
	assert.True(t, c.Truncated())

	assert.Equal(t, []any{0, 1, 2, 3}, drain(t, c), "buffered rows are still returned")
}

func TestCursorBoundedForwardOnlyDropsConsumedRows(t *testing.T) {
	c, err := NewCursor(forwardOnly{syntheticRows(5)}, WithMaxBuffer(2))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetNext()
	require.NoError(t, err)
	_, err = c.Get(0)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMoreRows)
}

func TestCursorBoundedScrollableEvictsAndRefetches(t *testing.T) {
	rows := syntheticRows(10)
	c, err := NewCursor(rows, WithMaxBuffer(3))
	require.NoError(t, err)

	n, err := c.Prefetch(6)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	got := drain(t, c)
	require.Len(t, got, 10, "scrollable rows are never truncated")
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.False(t, c.Truncated())
	assert.False(t, rows.Closed(), "kept open for re-fetch")

	row, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Value("n"))

	require.NoError(t, c.Close())
	assert.True(t, rows.Closed())
}

func TestCursorGetReplaysUnbounded(t *testing.T) {
	c, err := NewCursor(forwardOnly{syntheticRows(5)})
	require.NoError(t, err)

	row, err := c.Get(3)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Value("n"))

	first, err := c.GetNext()
	require.NoError(t, err)
	assert.Equal(t, 0, first.Value("n"))

	_, err = c.Get(7)
	assert.ErrorIs(t, err, ErrNoMoreRows)
	_, err = c.Get(-1)
	assert.Error(t, err)
}

type failingRows struct {
	database.Rows
	err error
}

func (f failingRows) Next() bool { return false }
func (f failingRows) Err() error { return f.err }

func TestCursorSurfacesDriverErrors(t *testing.T) {
	boom := errors.New("connection lost")
	c, err := NewCursor(failingRows{Rows: syntheticRows(1), err: boom})
	require.NoError(t, err)

	_, err = c.HasNext()
	assert.ErrorIs(t, err, boom)
	_, err = c.GetNext()
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, c.Close())
}

func TestCursorAll(t *testing.T) {
	c, err := NewCursor(syntheticRows(3))
	require.NoError(t, err)

	_, err = c.GetNext()
	require.NoError(t, err)

	rs, err := c.All()
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, []string{"n"}, rs.Columns())
	assert.Equal(t, StateClosed, c.State())
}
