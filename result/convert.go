package result

import "reflect"

// ToArray returns the values of the first data row, or nil.
func ToArray(rs RowSet) []any {
	if rs.Len() == 0 {
		return nil
	}
	return rs[1].Values()
}

// ToArrayList returns the values of every data row.
func ToArrayList(rs RowSet) [][]any {
	if rs.Len() == 0 {
		return nil
	}
	out := make([][]any, 0, rs.Len())
	for _, row := range rs.Rows() {
		out = append(out, row.Values())
	}
	return out
}

// ToMap returns the first data row keyed by column, or nil.
func ToMap(rs RowSet) map[string]any {
	if rs.Len() == 0 {
		return nil
	}
	return rs[1].Map()
}

// ToMapList returns every data row keyed by column.
func ToMapList(rs RowSet) []map[string]any {
	if rs.Len() == 0 {
		return nil
	}
	out := make([]map[string]any, 0, rs.Len())
	for _, row := range rs.Rows() {
		out = append(out, row.Map())
	}
	return out
}

// ToBean converts the first data row into a new T. It returns nil, nil when there are
// no data rows.
func ToBean[T any](rs RowSet, h PropertyHandler, opts ...MapOption) (*T, error) {
	if rs.Len() == 0 {
		return nil, nil
	}
	m, err := newMapper(h, opts)
	if err != nil {
		return nil, err
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	props, err := h.Properties(t)
	if err != nil {
		return nil, err
	}
	v := h.New(t)
	if err := m.fill(v.Elem(), props, rs[1]); err != nil {
		return nil, err
	}
	return v.Interface().(*T), nil
}

// ToBeanList converts every data row. It returns nil, nil when there are no data rows.
func ToBeanList[T any](rs RowSet, h PropertyHandler, opts ...MapOption) ([]T, error) {
	if rs.Len() == 0 {
		return nil, nil
	}
	var out []T
	if err := BeanInto(rs, &out, h, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
