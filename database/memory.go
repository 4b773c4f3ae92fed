package database

import (
	"errors"
	"fmt"
	"reflect"
)

// MemoryRows is a scrollable in-memory result, used for generated keys, catalog rows
// and tests.
type MemoryRows struct {
	columns []string
	data    [][]any
	pos     int
	closed  bool
}

func NewMemoryRows(columns []string, data [][]any) *MemoryRows {
	return &MemoryRows{columns: columns, data: data, pos: -1}
}

func (m *MemoryRows) Next() bool {
	if m.closed || m.pos+1 >= len(m.data) {
		m.pos = len(m.data)
		return false
	}
	m.pos++
	return true
}

func (m *MemoryRows) Scan(dest ...any) error {
	if m.closed {
		return errors.New("rows are closed")
	}
	if m.pos < 0 || m.pos >= len(m.data) {
		return errors.New("scan called without a current row")
	}
	row := m.data[m.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destination arguments in Scan, not %d", len(row), len(dest))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest, value any) error {
	if p, ok := dest.(*any); ok {
		*p = value
		return nil
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return errors.New("destination is not a non-nil pointer")
	}
	dv = dv.Elem()
	if value == nil {
		dv.Set(reflect.Zero(dv.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(dv.Type()):
		dv.Set(v)
	case v.Type().ConvertibleTo(dv.Type()) && !numberToString(v, dv):
		dv.Set(v.Convert(dv.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, dv.Type())
	}
	return nil
}

// numberToString guards against reflect turning 65 into "A".
func numberToString(v, dv reflect.Value) bool {
	return dv.Kind() == reflect.String && v.Kind() != reflect.String && v.Kind() != reflect.Slice
}

func (m *MemoryRows) Close() error {
	m.closed = true
	return nil
}

func (m *MemoryRows) Columns() ([]string, error) {
	return m.columns, nil
}

func (m *MemoryRows) Err() error { return nil }

func (m *MemoryRows) Absolute(i int) error {
	if m.closed {
		return errors.New("rows are closed")
	}
	if i < 0 || i >= len(m.data) {
		return fmt.Errorf("row %d out of range [0,%d)", i, len(m.data))
	}
	m.pos = i
	return nil
}

// Closed reports whether Close was called.
func (m *MemoryRows) Closed() bool { return m.closed }

var _ ScrollableRows = (*MemoryRows)(nil)
