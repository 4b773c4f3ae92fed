package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/namedb/binder"
	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dberr"
	"github.com/Konsultn-Engineering/namedb/logging"
	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/procedure"
	"github.com/Konsultn-Engineering/namedb/query"
	"github.com/Konsultn-Engineering/namedb/result"
	"github.com/Konsultn-Engineering/namedb/utils"
)

// CallResult is what a call statement produced. Params holds the caller's parameters
// with OUT, INOUT and RETURN values read back.
type CallResult struct {
	Params  *param.Model
	Results []result.RowSet
}

// Value returns the read-back value of the named parameter.
func (r *CallResult) Value(name string) any {
	return r.Params.Value(name)
}

// UpdateCount is the update count of the technical row set.
func (r *CallResult) UpdateCount() int64 {
	if len(r.Results) == 0 {
		return -1
	}
	return r.Results[0].UpdateCount()
}

// execution is one prepared, bound and executed statement.
type execution struct {
	id       string
	vendor   string
	sql      string
	input    *query.ProcessedInput
	params   *param.Model
	expanded *param.Model
	stmt     database.Statement
}

func (x *execution) wrap(err error) error {
	return dberr.Wrap(x.id, x.vendor, x.sql, x.input.Values, err)
}

func (e *Engine) bindOptions() binder.Options {
	return binder.Options{
		StrictParameterCount: e.cfg.StrictParameterCount,
		ReturnGeneratedKeys:  e.cfg.ReturnGeneratedKeys,
		Logger:               e.logger,
	}
}

func (e *Engine) execute(ctx context.Context, sqlText string, params *param.Model) (*execution, error) {
	if params == nil {
		params = param.New()
	}
	input, err := e.compiler.Compile(sqlText)
	if err != nil {
		return nil, err
	}
	params, err = e.overlayMetadata(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	expanded, err := input.Expand(params)
	if err != nil {
		return nil, err
	}

	x := &execution{
		id:       e.ids.next(),
		vendor:   e.dialect.Name(),
		sql:      sqlText,
		input:    input,
		params:   params,
		expanded: expanded,
	}
	text := input.Render(e.dialect.Placeholder)
	e.logger.Debug("executing statement",
		zap.String("query_id", x.id),
		logging.Query(text),
		zap.Uint64("fingerprint", utils.FingerprintString(input.ParsedSQL)),
		zap.Int("parameters", expanded.Len()))

	stmt, err := e.conn.Prepare(ctx, text)
	if err != nil {
		return nil, x.wrap(err)
	}
	if err := binder.Bind(ctx, stmt, expanded, e.bindOptions()); err != nil {
		_ = stmt.Close()
		var ce *binder.CountError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, x.wrap(err)
	}
	if err := stmt.Execute(ctx); err != nil {
		_ = stmt.Close()
		err = x.wrap(err)
		var ee *dberr.ExecError
		if errors.As(err, &ee) {
			e.logger.Debug("statement failed", ee.Fields()...)
		}
		return nil, err
	}
	x.stmt = stmt
	return x, nil
}

// overlayMetadata fills unset directions and types of a call statement from the
// procedure catalog. Statements that are not calls and fully declared models pass
// through untouched.
func (e *Engine) overlayMetadata(ctx context.Context, sqlText string, params *param.Model) (*param.Model, error) {
	if e.resolver == nil || !needsMetadata(params) {
		return params, nil
	}
	key, ok := procedure.ParseCall(sqlText)
	if !ok {
		return params, nil
	}
	discovered, err := e.resolver.ResolveKey(ctx, key, e.cfg.MetadataCache)
	if err != nil {
		return nil, err
	}
	merged, undeclared := param.BindMetadata(params, discovered)
	if len(undeclared) > 0 {
		e.logger.Warn("procedure parameters not declared by caller",
			zap.Stringer("procedure", key),
			zap.Strings("parameters", undeclared))
	}
	return merged, nil
}

func needsMetadata(m *param.Model) bool {
	for _, entry := range m.Entries() {
		if entry.Direction == param.DirectionUnset || !entry.Type.Known() {
			return true
		}
	}
	return false
}

// Exec runs a statement and returns its update count, -1 when it produced rows.
func (e *Engine) Exec(ctx context.Context, sqlText string, params *param.Model) (int64, error) {
	x, err := e.execute(ctx, sqlText, params)
	if err != nil {
		return 0, err
	}
	defer x.stmt.Close()
	return x.stmt.UpdateCount(), nil
}

// QueryAll runs a statement and materializes everything it produced. Element 0 is the
// technical row set.
func (e *Engine) QueryAll(ctx context.Context, sqlText string, params *param.Model) ([]result.RowSet, error) {
	x, err := e.execute(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	defer x.stmt.Close()

	sets, err := binder.ReadResults(ctx, x.stmt, e.bindOptions())
	if err != nil {
		return nil, x.wrap(err)
	}
	return sets, nil
}

// Query returns the first row set after the technical one, or the technical row set
// when the statement produced none.
func (e *Engine) Query(ctx context.Context, sqlText string, params *param.Model) (result.RowSet, error) {
	sets, err := e.QueryAll(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	if len(sets) > 1 {
		return sets[1], nil
	}
	return sets[0], nil
}

// Call runs a call statement and reads back every output parameter. When params is
// given, its output entries receive the read-back values too.
func (e *Engine) Call(ctx context.Context, sqlText string, params *param.Model) (*CallResult, error) {
	x, err := e.execute(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	defer x.stmt.Close()

	sets, err := binder.ReadResults(ctx, x.stmt, e.bindOptions())
	if err != nil {
		return nil, x.wrap(err)
	}
	outs, err := binder.ReadOutParameters(x.stmt, x.expanded)
	if err != nil {
		return nil, x.wrap(err)
	}
	if err := x.params.Update(x.input.Fold(x.params, outs), true); err != nil {
		return nil, fmt.Errorf("update out parameters: %w", err)
	}

	if params != nil && params != x.params {
		for _, entry := range x.params.Entries() {
			if entry.Direction.IsOutput() && params.Has(entry.Name) {
				_ = params.SetValue(entry.Name, entry.Value)
			}
		}
	}
	return &CallResult{Params: x.params, Results: sets}, nil
}

// Cursor runs a query and streams its first result set. The statement is closed with
// the cursor. Options are applied after the configured buffer bound.
func (e *Engine) Cursor(ctx context.Context, sqlText string, params *param.Model, opts ...result.CursorOption) (*result.Cursor, error) {
	x, err := e.execute(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	rows := x.stmt.ResultSet()
	if rows == nil {
		_ = x.stmt.Close()
		return nil, ErrNoResultSet
	}

	base := []result.CursorOption{
		result.WithMaxBuffer(e.cfg.LazyMaxBuffer),
		result.WithCursorLogger(e.logger.With(zap.String("query_id", x.id))),
		result.OnClose(x.stmt.Close),
	}
	c, err := result.NewCursor(traceRows(rows, x.wrap), append(base, opts...)...)
	if err != nil {
		_ = x.stmt.Close()
		return nil, x.wrap(err)
	}
	return c, nil
}

// Describe resolves the parameters of a procedure named "[catalog.][schema.]name".
func (e *Engine) Describe(ctx context.Context, qualified string) (*param.Model, error) {
	if e.resolver == nil {
		return nil, ErrNoResolver
	}
	key, ok := procedure.ParseCall("CALL " + qualified)
	if !ok {
		return nil, fmt.Errorf("invalid procedure name %q", qualified)
	}
	return e.resolver.ResolveKey(ctx, key, e.cfg.MetadataCache)
}

// tracedRows turns driver errors met while streaming into execution errors.
type tracedRows struct {
	database.Rows
	wrap func(error) error
}

func (r tracedRows) Scan(dest ...any) error { return r.wrap(r.Rows.Scan(dest...)) }

func (r tracedRows) Err() error { return r.wrap(r.Rows.Err()) }

type tracedScrollableRows struct {
	tracedRows
	scroll database.ScrollableRows
}

func (r tracedScrollableRows) Absolute(i int) error { return r.wrap(r.scroll.Absolute(i)) }

func traceRows(rows database.Rows, wrap func(error) error) database.Rows {
	t := tracedRows{Rows: rows, wrap: wrap}
	if s, ok := rows.(database.ScrollableRows); ok {
		return tracedScrollableRows{tracedRows: t, scroll: s}
	}
	return t
}
