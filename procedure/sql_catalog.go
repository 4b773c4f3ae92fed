package procedure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/query"
)

// Querier is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type catalogQueries struct {
	product    string
	user       string
	procedures string
	columns    string
	// functions report their return value as an extra routine column
	returnFromRoutine bool
}

var catalogSQL = map[string]catalogQueries{
	"postgres": {
		product: `SELECT version()`,
		user:    `SELECT current_user`,
		procedures: `SELECT routine_catalog, routine_schema, routine_name, specific_name,
       routine_type, COALESCE(data_type, '')
  FROM information_schema.routines
 WHERE (:catalog = '' OR routine_catalog = :catalog)
   AND (:schema = '' OR routine_schema = :schema)
   AND (:name = '' OR routine_name = :name)
 ORDER BY routine_schema, routine_name`,
		columns: `SELECT COALESCE(parameter_name, ''), COALESCE(parameter_mode, ''), data_type, ordinal_position
  FROM information_schema.parameters
 WHERE specific_catalog = :catalog AND specific_schema = :schema AND specific_name = :specific
 ORDER BY ordinal_position`,
		returnFromRoutine: true,
	},
	"mysql": {
		product: `SELECT CONCAT('MySQL ', version())`,
		user:    `SELECT CURRENT_USER()`,
		procedures: `SELECT routine_catalog, routine_schema, routine_name, specific_name,
       routine_type, COALESCE(data_type, '')
  FROM information_schema.routines
 WHERE (:catalog = '' OR routine_catalog = :catalog)
   AND (:schema = '' OR UPPER(routine_schema) = UPPER(:schema))
   AND (:name = '' OR UPPER(routine_name) = UPPER(:name))
 ORDER BY routine_schema, routine_name`,
		columns: `SELECT COALESCE(parameter_name, ''), COALESCE(parameter_mode, ''), data_type, ordinal_position
  FROM information_schema.parameters
 WHERE specific_catalog = :catalog AND specific_schema = :schema AND specific_name = :specific
 ORDER BY ordinal_position`,
	},
	"sqlserver": {
		product: `SELECT @@VERSION`,
		user:    `SELECT USER_NAME()`,
		procedures: `SELECT ROUTINE_CATALOG, ROUTINE_SCHEMA, ROUTINE_NAME, SPECIFIC_NAME,
       ROUTINE_TYPE, COALESCE(DATA_TYPE, '')
  FROM INFORMATION_SCHEMA.ROUTINES
 WHERE (:catalog = '' OR UPPER(ROUTINE_CATALOG) = UPPER(:catalog))
   AND (:schema = '' OR UPPER(ROUTINE_SCHEMA) = UPPER(:schema))
   AND (:name = '' OR UPPER(ROUTINE_NAME) = UPPER(:name))
 ORDER BY ROUTINE_SCHEMA, ROUTINE_NAME`,
		columns: `SELECT COALESCE(PARAMETER_NAME, ''), COALESCE(PARAMETER_MODE, ''), DATA_TYPE, ORDINAL_POSITION
  FROM INFORMATION_SCHEMA.PARAMETERS
 WHERE SPECIFIC_CATALOG = :catalog AND SPECIFIC_SCHEMA = :schema AND SPECIFIC_NAME = :specific
 ORDER BY ORDINAL_POSITION`,
	},
}

func init() {
	catalogSQL["tidb"] = catalogSQL["mysql"]
}

// SQLCatalog reads procedure metadata from information_schema.
type SQLCatalog struct {
	db       Querier
	dialect  dialect.Dialect
	compiler *query.Compiler
	queries  catalogQueries
	mu       sync.Mutex
	// routine return types by specific name
	returns map[string]string
}

// NewSQLCatalog returns a catalog for db. Dialects without an information_schema
// catalog report database.ErrUnsupported from every call.
//
// The catalog queries are written with ':' parameters, so the catalog keeps its own
// compiler with the default prefixes whatever the engine is configured with.
func NewSQLCatalog(db Querier, d dialect.Dialect) *SQLCatalog {
	compiler, _ := query.NewCompiler(
		query.WithCacheSize(8),
		query.WithPrefixes(query.DefaultPrefixes))
	return &SQLCatalog{
		db:       db,
		dialect:  d,
		compiler: compiler,
		queries:  catalogSQL[d.Name()],
		returns:  make(map[string]string),
	}
}

func (c *SQLCatalog) supported() error {
	if c.queries.procedures == "" {
		return fmt.Errorf("%s procedure catalog: %w", c.dialect.Name(), database.ErrUnsupported)
	}
	return nil
}

// prepare compiles a named catalog query for the dialect's placeholders.
func (c *SQLCatalog) prepare(sqlText string, values *param.Model) (string, []any, error) {
	p, err := c.compiler.Compile(sqlText)
	if err != nil {
		return "", nil, err
	}
	if _, err := p.Expand(values); err != nil {
		return "", nil, err
	}
	return p.Render(c.dialect.Placeholder), p.Values, nil
}

func (c *SQLCatalog) scalar(ctx context.Context, q string) (string, error) {
	if err := c.supported(); err != nil {
		return "", err
	}
	var s sql.NullString
	if err := c.db.QueryRowContext(ctx, q).Scan(&s); err != nil {
		return "", err
	}
	return s.String, nil
}

func (c *SQLCatalog) ProductName(ctx context.Context) (string, error) {
	return c.scalar(ctx, c.queries.product)
}

func (c *SQLCatalog) UserName(ctx context.Context) (string, error) {
	return c.scalar(ctx, c.queries.user)
}

func (c *SQLCatalog) Procedures(ctx context.Context, catalog, schema, name string) ([]Procedure, error) {
	if err := c.supported(); err != nil {
		return nil, err
	}
	q, args, err := c.prepare(c.queries.procedures, param.New().
		Set("catalog", catalog).
		Set("schema", schema).
		Set("name", name))
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var procs []Procedure
	for rows.Next() {
		var (
			p                     Procedure
			routineType, dataType string
		)
		if err := rows.Scan(&p.Catalog, &p.Schema, &p.Name, &p.SpecificName, &routineType, &dataType); err != nil {
			return nil, err
		}
		if c.queries.returnFromRoutine && strings.EqualFold(routineType, "FUNCTION") {
			c.mu.Lock()
			c.returns[p.SpecificName] = dataType
			c.mu.Unlock()
		}
		procs = append(procs, p)
	}
	return procs, rows.Err()
}

func (c *SQLCatalog) ProcedureColumns(ctx context.Context, p Procedure) ([]Column, error) {
	if err := c.supported(); err != nil {
		return nil, err
	}
	specific := p.SpecificName
	if specific == "" {
		specific = p.Name
	}
	q, args, err := c.prepare(c.queries.columns, param.New().
		Set("catalog", p.Catalog).
		Set("schema", p.Schema).
		Set("specific", specific))
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	c.mu.Lock()
	ret, ok := c.returns[specific]
	c.mu.Unlock()
	if ok && returnsValue(ret) {
		cols = append(cols, Column{Kind: ColumnReturn, TypeName: ret})
	}
	for rows.Next() {
		var (
			col     Column
			mode    string
			ordinal int
		)
		if err := rows.Scan(&col.Name, &mode, &col.TypeName, &ordinal); err != nil {
			return nil, err
		}
		col.Kind = columnKind(mode, ordinal)
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// columnKind decodes information_schema parameter modes. Ordinal 0 without a mode is a
// function result.
func columnKind(mode string, ordinal int) ColumnKind {
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case "IN":
		return ColumnIn
	case "OUT":
		return ColumnOut
	case "INOUT", "IN/OUT":
		return ColumnInOut
	case "":
		if ordinal == 0 {
			return ColumnReturn
		}
	}
	return ColumnUnknown
}

func returnsValue(dataType string) bool {
	switch strings.ToLower(dataType) {
	case "", "void", "record", "trigger":
		return false
	}
	return true
}

var _ Catalog = (*SQLCatalog)(nil)
