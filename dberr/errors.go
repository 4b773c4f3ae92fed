// Package dberr wraps driver failures into ExecError and classifies them by vendor code.
package dberr

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/logging"
)

// ErrExecution is matched by every ExecError.
var ErrExecution = errors.New("statement execution failed")

// Kind classifies a driver failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindDataIntegrity
	KindBadGrammar
	KindPermission
	KindConcurrency
	KindDeadlock
	KindTimeout
	KindConnection
	KindInvalidData
)

var kindNames = [...]string{
	"unknown", "data_integrity", "bad_grammar", "permission", "concurrency",
	"deadlock", "timeout", "connection", "invalid_data",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExecError carries the statement and the values that were sent when the driver failed.
type ExecError struct {
	QueryID string
	SQL     string
	Params  []any
	Vendor  string
	Kind    Kind
	Err     error
}

// Wrap builds an ExecError for err, or returns nil when err is nil. An err that already
// is an ExecError is returned unchanged.
func Wrap(queryID, vendor, sql string, params []any, err error) error {
	if err == nil {
		return nil
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		return err
	}
	return &ExecError{
		QueryID: queryID,
		SQL:     sql,
		Params:  params,
		Vendor:  vendor,
		Kind:    Translate(err),
		Err:     err,
	}
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("query %s failed (%s): %s: %v", e.QueryID, e.Kind, logging.SanitizeQuery(e.SQL), e.Err)
}

func (e *ExecError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}

// Fields returns the log fields describing e. Parameter values are not logged.
func (e *ExecError) Fields() []zap.Field {
	return []zap.Field{
		zap.String("query_id", e.QueryID),
		logging.Query(e.SQL),
		zap.Int("params", len(e.Params)),
		zap.String("vendor", e.Vendor),
		zap.Stringer("kind", e.Kind),
		zap.Error(e.Err),
	}
}

// KindOf returns the kind of the ExecError in err's chain, or classifies err directly.
func KindOf(err error) Kind {
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return Translate(err)
}
