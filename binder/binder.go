// Package binder pushes a parameter model into a prepared statement and reads back
// update counts, generated keys, result sets and OUT values.
package binder

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/result"
)

// Options controls binding and read-back.
type Options struct {
	// StrictParameterCount turns a placeholder count mismatch into a CountError.
	StrictParameterCount bool
	// ReturnGeneratedKeys adds the generated keys as an extra RowSet after the technical
	// one when rows were affected.
	ReturnGeneratedKeys bool
	Logger              *zap.Logger
}

func (o Options) logger() *zap.Logger { return logging.OrNop(o.Logger) }

// Bind sets every input value of params at position+1 and registers every output slot.
// Null inputs are sent as typed nulls, falling back to VARCHAR when no type is known.
func Bind(ctx context.Context, stmt database.Statement, params *param.Model, opts Options) error {
	if err := checkCount(ctx, stmt, params, opts); err != nil {
		return err
	}

	for _, e := range params.Entries() {
		pos := e.Position + 1
		if e.Direction.IsInput() {
			var err error
			if isNull(e.Value) {
				t := e.Type
				if !t.Known() {
					t = param.TypeVarchar
				}
				err = stmt.SetNull(pos, t)
			} else {
				err = stmt.SetParameter(pos, e.Value, e.Type)
			}
			if err != nil {
				return fmt.Errorf("bind %q at %d: %w", e.Name, pos, err)
			}
		}
		if e.Direction.IsOutput() {
			if err := stmt.RegisterOutParameter(pos, e.Type); err != nil {
				return fmt.Errorf("register out %q at %d: %w", e.Name, pos, err)
			}
		}
	}
	return nil
}

func checkCount(ctx context.Context, stmt database.Statement, params *param.Model, opts Options) error {
	n, err := stmt.ParameterCount(ctx)
	if errors.Is(err, database.ErrUnsupported) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("parameter count: %w", err)
	}
	if n == params.Len() {
		return nil
	}
	if opts.StrictParameterCount {
		return &CountError{Expected: n, Actual: params.Len()}
	}
	opts.logger().Warn("parameter count mismatch",
		zap.Int("expected", n),
		zap.Int("actual", params.Len()))
	return nil
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// ReadResults collects everything an executed statement produced. Element 0 is the
// technical RowSet carrying the update count. Generated keys follow when requested and
// rows were affected, then every result set in the order the driver yields them.
func ReadResults(ctx context.Context, stmt database.Statement, opts Options) ([]result.RowSet, error) {
	count := stmt.UpdateCount()
	sets := []result.RowSet{result.Technical(count)}

	if opts.ReturnGeneratedKeys && count > 0 {
		keys, err := generatedKeys(ctx, stmt)
		if err != nil {
			return nil, err
		}
		if keys != nil {
			sets = append(sets, keys)
		} else {
			opts.logger().Debug("driver does not report generated keys")
		}
	}

	for rows := stmt.ResultSet(); rows != nil; rows = stmt.ResultSet() {
		rs, err := result.Materialize(rows)
		if err != nil {
			return nil, fmt.Errorf("read result set %d: %w", len(sets), err)
		}
		sets = append(sets, rs)
		if !stmt.MoreResults() {
			break
		}
	}
	return sets, nil
}

func generatedKeys(ctx context.Context, stmt database.Statement) (result.RowSet, error) {
	rows, err := stmt.GeneratedKeys(ctx)
	if errors.Is(err, database.ErrUnsupported) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("generated keys: %w", err)
	}
	defer rows.Close()
	return result.Materialize(rows)
}

// ReadOutParameters returns a slice aligned with params: the read-back value for every
// OUT, INOUT and RETURN slot, nil everywhere else.
func ReadOutParameters(stmt database.Statement, params *param.Model) ([]any, error) {
	values := make([]any, params.Len())
	for _, e := range params.Entries() {
		if !e.Direction.IsOutput() {
			continue
		}
		v, err := stmt.OutParameter(e.Position + 1)
		if err != nil {
			return nil, fmt.Errorf("read out %q: %w", e.Name, err)
		}
		values[e.Position] = v
	}
	return values, nil
}
