package query

import (
	"errors"
	"fmt"
)

// ErrMalformedParameter marks SQL whose parameter syntax cannot be compiled.
var ErrMalformedParameter = errors.New("malformed parameter")

// CompileError reports where compilation failed. It matches ErrMalformedParameter.
type CompileError struct {
	SQL    string
	Offset int
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile sql: %s at offset %d", e.Reason, e.Offset)
}

func (e *CompileError) Unwrap() error {
	return ErrMalformedParameter
}
