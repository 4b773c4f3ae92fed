// Package result turns driver rows into RowSets and converts them into arrays, maps and
// structs, either eagerly or through a streaming Cursor.
package result

import (
	"strconv"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/param"
)

// Names of the technical row entries.
const (
	UpdateCountKey = "updateCount"
	ColumnsKey     = "columns"
)

// RowSet is one materialized result. Index 0 is always the technical row (update count
// and column names); data rows start at index 1. Every row is a param.Model keyed by
// column name.
type RowSet []*param.Model

// Technical returns a RowSet holding only a technical row.
func Technical(updateCount int64) RowSet {
	return RowSet{technicalRow(updateCount, nil)}
}

func technicalRow(updateCount int64, columns []string) *param.Model {
	return param.New().
		Set(UpdateCountKey, updateCount).
		Set(ColumnsKey, columns)
}

// UpdateCount returns the affected row count, or -1.
func (rs RowSet) UpdateCount() int64 {
	if len(rs) == 0 {
		return -1
	}
	n, ok := rs[0].Value(UpdateCountKey).(int64)
	if !ok {
		return -1
	}
	return n
}

// Columns returns the column names of the data rows.
func (rs RowSet) Columns() []string {
	if len(rs) == 0 {
		return nil
	}
	cols, _ := rs[0].Value(ColumnsKey).([]string)
	return cols
}

// Rows returns the data rows.
func (rs RowSet) Rows() []*param.Model {
	if len(rs) < 2 {
		return nil
	}
	return rs[1:]
}

// Len is the number of data rows.
func (rs RowSet) Len() int {
	if len(rs) == 0 {
		return 0
	}
	return len(rs) - 1
}

// NewRow builds a row from column names and values. Names must be unique; see
// UniqueColumns.
func NewRow(columns []string, values []any) *param.Model {
	row := param.New()
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		row.Set(col, v)
	}
	return row
}

// UniqueColumns renames repeated column names to "name#k", k counting occurrences.
func UniqueColumns(columns []string) []string {
	out := make([]string, len(columns))
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		seen[c]++
		if k := seen[c]; k > 1 {
			out[i] = c + "#" + strconv.Itoa(k)
			continue
		}
		out[i] = c
	}
	return out
}

// Materialize reads every remaining row. rows is not closed.
func Materialize(rows database.Rows) (RowSet, error) {
	raw, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	columns := UniqueColumns(raw)

	rs := RowSet{technicalRow(-1, columns)}
	for rows.Next() {
		values, err := database.ScanRow(rows, len(columns))
		if err != nil {
			return nil, err
		}
		rs = append(rs, NewRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
