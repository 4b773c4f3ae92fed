package binder

import (
	"errors"
	"fmt"
)

// ErrParameterCount is matched by CountError.
var ErrParameterCount = errors.New("parameter count mismatch")

// CountError reports a statement whose placeholder count differs from the parameter
// model. It is only returned in strict mode.
type CountError struct {
	Expected int
	Actual   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("statement expects %d parameters, model has %d", e.Expected, e.Actual)
}

func (e *CountError) Unwrap() error { return ErrParameterCount }
