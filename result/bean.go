package result

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Konsultn-Engineering/namedb/param"
)

// Property is one settable field of a struct type.
type Property struct {
	// Name is the Go field name.
	Name string
	// Column is the column name the field maps to by default.
	Column string
	Type   reflect.Type
	Index  []int
}

// PropertyHandler is the reflection capability the materializer depends on.
type PropertyHandler interface {
	Properties(t reflect.Type) ([]Property, error)
	Get(obj reflect.Value, p Property) (any, error)
	// Set stores value into p of obj, converting through the handler's compatibility
	// rules. A nil value stores the zero value.
	Set(obj reflect.Value, p Property, value any) error
	// New returns a pointer to a new zero value of t.
	New(t reflect.Type) reflect.Value
}

// MapOption customizes column to field mapping.
type MapOption func(*mapper)

// WithOverrides maps columns to field names explicitly. It is consulted before name
// matching; keys are matched case-insensitively.
func WithOverrides(columnToField map[string]string) MapOption {
	return func(m *mapper) {
		for col, field := range columnToField {
			m.overrides[strings.ToLower(col)] = field
		}
	}
}

type mapper struct {
	handler   PropertyHandler
	overrides map[string]string
}

func newMapper(h PropertyHandler, opts []MapOption) (*mapper, error) {
	if h == nil {
		return nil, errors.New("result: nil property handler")
	}
	m := &mapper{handler: h, overrides: make(map[string]string)}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *mapper) match(column string, props []Property) (Property, bool) {
	if field, ok := m.overrides[strings.ToLower(column)]; ok {
		for _, p := range props {
			if p.Name == field {
				return p, true
			}
		}
		return Property{}, false
	}
	for _, p := range props {
		if strings.EqualFold(p.Column, column) || strings.EqualFold(p.Name, column) {
			return p, true
		}
	}
	return Property{}, false
}

// fill copies row into obj, an addressable struct value. Unmapped columns are skipped.
func (m *mapper) fill(obj reflect.Value, props []Property, row *param.Model) error {
	for _, e := range row.Entries() {
		p, ok := m.match(e.Name, props)
		if !ok {
			continue
		}
		if err := m.handler.Set(obj, p, e.Value); err != nil {
			var be *BindingError
			if errors.As(err, &be) {
				return err
			}
			return NewBindingError(p.Name, e.Value, p.Type, err)
		}
	}
	return nil
}

// BeanInto converts rs into dest. A *Struct receives the first data row and is left
// untouched when there is none; a *[]Struct or *[]*Struct receives every data row.
func BeanInto(rs RowSet, dest any, h PropertyHandler, opts ...MapOption) error {
	m, err := newMapper(h, opts)
	if err != nil {
		return err
	}
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("result: destination must be a non-nil pointer, got %T", dest)
	}
	dv = dv.Elem()

	switch dv.Kind() {
	case reflect.Struct:
		if rs.Len() == 0 {
			return nil
		}
		props, err := h.Properties(dv.Type())
		if err != nil {
			return err
		}
		return m.fill(dv, props, rs[1])

	case reflect.Slice:
		elem := dv.Type().Elem()
		ptr := elem.Kind() == reflect.Pointer
		structType := elem
		if ptr {
			structType = elem.Elem()
		}
		props, err := h.Properties(structType)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(dv.Type(), 0, rs.Len())
		for _, row := range rs.Rows() {
			item := h.New(structType)
			if err := m.fill(item.Elem(), props, row); err != nil {
				return err
			}
			if ptr {
				out = reflect.Append(out, item)
			} else {
				out = reflect.Append(out, item.Elem())
			}
		}
		dv.Set(out)
		return nil
	}
	return fmt.Errorf("result: unsupported destination %T", dest)
}
