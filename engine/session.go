package engine

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/result"
)

// Session collects the parameters of one statement fluently:
//
//	e.SQL("SELECT * FROM users WHERE id = :id").Set("id", 7).Find(ctx, &users)
//
// The first error met while building is returned by the terminal call.
type Session struct {
	engine    *Engine
	sql       string
	params    *param.Model
	overrides map[string]string
	err       error
}

func (e *Engine) SQL(text string) *Session {
	return &Session{engine: e, sql: text, params: param.New()}
}

// Set binds an input value. Attributes declare its type or direction.
func (s *Session) Set(name string, value any, attrs ...param.Attr) *Session {
	s.params.Set(name, value, attrs...)
	return s
}

// Out declares an output parameter of type t.
func (s *Session) Out(name string, t param.SQLType) *Session {
	s.params.Set(name, nil, param.WithDirection(param.DirectionOut), param.WithType(t))
	return s
}

// InOut binds a value that the database may overwrite.
func (s *Session) InOut(name string, value any, t param.SQLType) *Session {
	s.params.Set(name, value, param.WithDirection(param.DirectionInOut), param.WithType(t))
	return s
}

// Bind sets every value of values, in name order.
func (s *Session) Bind(values map[string]any) *Session {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.params.Set(name, values[name])
	}
	return s
}

// SetStruct binds every mapped field of obj under its column name, with the type and
// direction declared in its tag.
func (s *Session) SetStruct(obj any) *Session {
	if s.err != nil {
		return s
	}
	m, err := s.engine.schema.Params(obj)
	if err != nil {
		s.err = err
		return s
	}
	for _, entry := range m.Entries() {
		var attrs []param.Attr
		if entry.Type.Known() {
			attrs = append(attrs, param.WithType(entry.Type))
		}
		if entry.Direction != param.DirectionUnset {
			attrs = append(attrs, param.WithDirection(entry.Direction))
		}
		s.params.Set(entry.Name, entry.Value, attrs...)
	}
	return s
}

// Map routes a result column to a struct field ahead of name matching.
func (s *Session) Map(column, field string) *Session {
	if s.overrides == nil {
		s.overrides = make(map[string]string)
	}
	s.overrides[column] = field
	return s
}

// Params returns the parameters collected so far.
func (s *Session) Params() *param.Model { return s.params }

func (s *Session) Exec(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.engine.Exec(ctx, s.sql, s.params)
}

func (s *Session) Query(ctx context.Context) (result.RowSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.engine.Query(ctx, s.sql, s.params)
}

func (s *Session) QueryAll(ctx context.Context) ([]result.RowSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.engine.QueryAll(ctx, s.sql, s.params)
}

// Call runs the statement as a call. OUT values are also written back to Params.
func (s *Session) Call(ctx context.Context) (*CallResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.engine.Call(ctx, s.sql, s.params)
}

func (s *Session) Cursor(ctx context.Context, opts ...result.CursorOption) (*result.Cursor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.engine.Cursor(ctx, s.sql, s.params, opts...)
}

// Find loads every data row into dest, a pointer to a slice of structs or struct
// pointers.
func (s *Session) Find(ctx context.Context, dest any) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Pointer || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("Find expects pointer to slice, got %T", dest)
	}
	rs, err := s.Query(ctx)
	if err != nil {
		return err
	}
	return result.BeanInto(rs, dest, s.engine.schema, s.mapOptions()...)
}

// First loads the first data row into dest, a pointer to a struct. It returns ErrNoRows
// when there is none.
func (s *Session) First(ctx context.Context, dest any) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Pointer || destVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("First expects pointer to struct, got %T", dest)
	}
	rs, err := s.Query(ctx)
	if err != nil {
		return err
	}
	if rs.Len() == 0 {
		return ErrNoRows
	}
	return result.BeanInto(rs, dest, s.engine.schema, s.mapOptions()...)
}

func (s *Session) mapOptions() []result.MapOption {
	if len(s.overrides) == 0 {
		return nil
	}
	return []result.MapOption{result.WithOverrides(s.overrides)}
}
