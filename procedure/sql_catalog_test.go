package procedure

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/param"
)

func TestSQLCatalogRendersDialectPlaceholders(t *testing.T) {
	tests := []struct {
		dialect dialect.Dialect
		first   string
	}{
		{dialect: dialect.NewPostgresDialect(), first: "$1"},
		{dialect: dialect.NewSQLServerDialect(), first: "@p1"},
		{dialect: dialect.NewMySQLDialect(), first: "?"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			c := NewSQLCatalog(nil, tt.dialect)
			q, args, err := c.prepare(c.queries.procedures, param.New().
				Set("catalog", "").
				Set("schema", "app").
				Set("name", "p"))
			require.NoError(t, err)

			assert.Contains(t, q, tt.first)
			assert.NotContains(t, q, ":schema")
			assert.Equal(t, []any{"", "", "app", "app", "p", "p"}, args)
		})
	}
}

func TestSQLCatalogUnsupportedDialect(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	c := NewSQLCatalog(db, dialect.NewSQLiteDialect())
	ctx := context.Background()

	_, err = c.Procedures(ctx, "", "", "p")
	assert.ErrorIs(t, err, database.ErrUnsupported)
	_, err = c.ProductName(ctx)
	assert.ErrorIs(t, err, database.ErrUnsupported)

	_, err = NewResolver(c, dialect.NewSQLiteDialect()).Resolve(ctx, "", "", "p", true)
	assert.ErrorIs(t, err, database.ErrUnsupported)
}

func TestColumnKind(t *testing.T) {
	assert.Equal(t, ColumnIn, columnKind("IN", 1))
	assert.Equal(t, ColumnOut, columnKind("out", 2))
	assert.Equal(t, ColumnInOut, columnKind("INOUT", 3))
	assert.Equal(t, ColumnReturn, columnKind("", 0))
	assert.Equal(t, ColumnUnknown, columnKind("", 4))
	assert.False(t, returnsValue("void"))
	assert.True(t, returnsValue("integer"))
}

// openInformationSchema serves a MySQL-shaped information_schema from SQLite.
func openInformationSchema(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`ATTACH DATABASE ':memory:' AS information_schema`,
		`CREATE TABLE information_schema.routines (routine_catalog TEXT, routine_schema TEXT,
			routine_name TEXT, specific_name TEXT, routine_type TEXT, data_type TEXT)`,
		`CREATE TABLE information_schema.parameters (specific_catalog TEXT, specific_schema TEXT,
			specific_name TEXT, parameter_name TEXT, parameter_mode TEXT, data_type TEXT,
			ordinal_position INTEGER)`,
		`INSERT INTO information_schema.routines VALUES ('def', 'shop', 'get_total', 'get_total', 'PROCEDURE', NULL)`,
		`INSERT INTO information_schema.parameters VALUES
			('def', 'shop', 'get_total', 'customer', 'IN', 'bigint', 1),
			('def', 'shop', 'get_total', 'total', 'OUT', 'decimal', 2),
			('def', 'shop', 'get_total', 'note', 'INOUT', 'varchar', 3)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestSQLCatalogResolvesFromInformationSchema(t *testing.T) {
	c := NewSQLCatalog(openInformationSchema(t), dialect.NewMySQLDialect())
	r := NewResolver(c, dialect.NewMySQLDialect())

	m, err := r.Resolve(context.Background(), "", "shop", "GET_TOTAL", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer", "total", "note"}, m.Names())

	tests := []struct {
		name string
		dir  param.Direction
		typ  param.SQLType
	}{
		{name: "customer", dir: param.DirectionIn, typ: param.TypeBigInt},
		{name: "total", dir: param.DirectionOut, typ: param.TypeDecimal},
		{name: "note", dir: param.DirectionInOut, typ: param.TypeVarchar},
	}
	for _, tt := range tests {
		e, ok := m.Get(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.dir, e.Direction, tt.name)
		assert.Equal(t, tt.typ, e.Type, tt.name)
	}
}
