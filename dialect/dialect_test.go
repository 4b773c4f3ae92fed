package dialect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Konsultn-Engineering/namedb/param"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "pgx", want: "postgres"},
		{name: "PostgreSQL", want: "postgres"},
		{name: "mysql", want: "mysql"},
		{name: "MariaDB", want: "mysql"},
		{name: "TiDB", want: "tidb"},
		{name: "Microsoft SQL Server", want: "sqlserver"},
		{name: "sqlserver", want: "sqlserver"},
		{name: "Oracle", want: "oracle"},
		{name: "sqlite3", want: "sqlite"},
		{name: "H2", want: "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.name).Name())
		})
	}
}

func TestPlaceholdersAndQuoting(t *testing.T) {
	tests := []struct {
		dialect     Dialect
		placeholder string
		quoted      string
	}{
		{dialect: NewGenericDialect(), placeholder: "?", quoted: `"order"`},
		{dialect: NewPostgresDialect(), placeholder: "$3", quoted: `"order"`},
		{dialect: NewMySQLDialect(), placeholder: "?", quoted: "`order`"},
		{dialect: NewTiDBDialect(), placeholder: "?", quoted: "`order`"},
		{dialect: NewSQLServerDialect(), placeholder: "@p3", quoted: "[order]"},
		{dialect: NewOracleDialect(), placeholder: ":3", quoted: `"order"`},
		{dialect: NewSQLiteDialect(), placeholder: "?", quoted: `"order"`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			assert.Equal(t, tt.placeholder, tt.dialect.Placeholder(3))
			assert.Equal(t, tt.quoted, tt.dialect.QuoteIdentifier("order"))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name                       string
		dialect                    Dialect
		catalog, schema, proc      string
		user                       string
		wantCat, wantSch, wantProc string
	}{
		{
			name:    "generic upper-cases",
			dialect: NewGenericDialect(),
			schema:  "app", proc: "get_user",
			wantSch: "APP", wantProc: "GET_USER",
		},
		{
			name:    "postgres lower-cases and defaults to public",
			dialect: NewPostgresDialect(),
			proc:    "Get_User",
			wantSch: "public", wantProc: "get_user",
		},
		{
			name:    "oracle defaults to the current user",
			dialect: NewOracleDialect(),
			proc:    "pkg_x", user: "scott",
			wantSch: "SCOTT", wantProc: "PKG_X",
		},
		{
			name:    "quoted names keep their case",
			dialect: NewPostgresDialect(),
			catalog: `"Main"`, schema: `"Sales"`, proc: `"DoIt"`,
			wantCat: "Main", wantSch: "Sales", wantProc: "DoIt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s, p := Normalize(tt.dialect, tt.catalog, tt.schema, tt.proc, tt.user)
			assert.Equal(t, tt.wantCat, c)
			assert.Equal(t, tt.wantSch, s)
			assert.Equal(t, tt.wantProc, p)
		})
	}
}

func TestSQLServerTrimsGroupNumber(t *testing.T) {
	d := NewSQLServerDialect()
	assert.Equal(t, "usp_orders", d.TrimProcedureName("usp_orders;1"))
	assert.Equal(t, "usp_orders", d.TrimProcedureName("usp_orders"))
	assert.Equal(t, "x;1", NewGenericDialect().TrimProcedureName("x;1"))
}

func TestLookupType(t *testing.T) {
	tests := []struct {
		name string
		want param.SQLType
	}{
		{name: "", want: param.TypeUnspecified},
		{name: "character varying(20)", want: param.TypeVarchar},
		{name: "INT UNSIGNED", want: param.TypeInteger},
		{name: "numeric(10, 2)", want: param.TypeDecimal},
		{name: "double  precision", want: param.TypeDouble},
		{name: "timestamp with time zone", want: param.TypeTimestampTZ},
		{name: "text[]", want: param.TypeArray},
		{name: "_int4", want: param.TypeArray},
		{name: "refcursor", want: param.TypeCursor},
		{name: "uniqueidentifier", want: param.TypeUUID},
		{name: "geometry", want: param.TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupType(tt.name))
		})
	}

	assert.Equal(t, param.TypeOther, NewPostgresDialect().TypeCode("USER-DEFINED"))
}

func TestRenderValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "NULL", NewGenericDialect().RenderValue(nil))
	assert.Equal(t, "'O''Brien'", NewGenericDialect().RenderValue("O'Brien"))
	assert.Equal(t, "TRUE", NewGenericDialect().RenderValue(true))
	assert.Equal(t, "42", NewGenericDialect().RenderValue(int64(42)))
	assert.Equal(t, "1.5", NewGenericDialect().RenderValue(1.5))
	assert.Equal(t, "'2024-01-02 03:04:05.000000'", NewGenericDialect().RenderValue(ts))
	assert.Equal(t, `'\x0aff'`, NewPostgresDialect().RenderValue([]byte{0x0a, 0xff}))
	assert.Equal(t, "0x0aff", NewSQLServerDialect().RenderValue([]byte{0x0a, 0xff}))
	assert.Equal(t, "X'0aff'", NewMySQLDialect().RenderValue([]byte{0x0a, 0xff}))
}

func TestBackslashEscapes(t *testing.T) {
	tests := []struct {
		d    Dialect
		want bool
	}{
		{d: NewMySQLDialect(), want: true},
		{d: NewTiDBDialect(), want: true},
		{d: NewPostgresDialect(), want: false},
		{d: NewSQLServerDialect(), want: false},
		{d: NewGenericDialect(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.d.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, BackslashEscapes(tt.d))
		})
	}
}
