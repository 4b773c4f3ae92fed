package result

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrBinding is matched by every BindingError.
	ErrBinding = errors.New("cannot bind value")
	// ErrCursorClosed is returned by any Cursor access after Close.
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrNoMoreRows is returned by Cursor.GetNext past the last row.
	ErrNoMoreRows = errors.New("no more rows")
)

// BindingError reports a value that cannot be stored in a struct field.
type BindingError struct {
	Field  string
	Source string
	Target string
	Err    error
}

// NewBindingError describes storing value into a field of type target.
func NewBindingError(field string, value any, target reflect.Type, err error) *BindingError {
	src := "nil"
	if value != nil {
		src = reflect.TypeOf(value).String()
	}
	dst := "<nil>"
	if target != nil {
		dst = target.String()
	}
	return &BindingError{Field: field, Source: src, Target: dst, Err: err}
}

func (e *BindingError) Error() string {
	msg := fmt.Sprintf("cannot bind %s to field %s of type %s", e.Source, e.Field, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BindingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBinding}
	}
	return []error{ErrBinding, e.Err}
}
