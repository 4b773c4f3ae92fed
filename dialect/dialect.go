// Package dialect captures the vendor rules the engine needs: identifier quoting,
// placeholder style, catalog name normalization and type-name decoding.
package dialect

import (
	"strings"

	"github.com/Konsultn-Engineering/namedb/param"
)

type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// Placeholder renders the n-th (1-based) positional parameter.
	Placeholder(n int) string
	RenderValue(v any) string

	// NormalizeIdentifier folds an unquoted catalog, schema or procedure name the way
	// the database stores it.
	NormalizeIdentifier(name string) string
	// DefaultSchema is the schema searched when the caller gives none. Empty means any.
	DefaultSchema(user string) string
	// TrimProcedureName strips vendor decorations from a discovered procedure name.
	TrimProcedureName(name string) string
	// TypeCode maps a vendor type name to a SQL type.
	TypeCode(typeName string) param.SQLType
}

// Generic is the ANSI fallback: double-quoted identifiers, '?' placeholders and
// upper-case catalog names.
type Generic struct{}

func NewGenericDialect() Dialect {
	return &Generic{}
}

func (Generic) Name() string { return "generic" }

func (Generic) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Generic) Placeholder(int) string { return "?" }

func (Generic) RenderValue(v any) string {
	return renderValue(v, hexLiteral("X'", "'"))
}

func (Generic) NormalizeIdentifier(name string) string {
	return strings.ToUpper(name)
}

func (Generic) DefaultSchema(string) string { return "" }

func (Generic) TrimProcedureName(name string) string { return name }

func (Generic) TypeCode(typeName string) param.SQLType {
	return LookupType(typeName)
}

// BackslashEscapes reports whether d treats a backslash inside string literals as an
// escape character.
func BackslashEscapes(d Dialect) bool {
	e, ok := d.(interface{ BackslashEscapes() bool })
	return ok && e.BackslashEscapes()
}

// Normalize applies d's rules to a procedure search key. Empty parts stay empty, except
// the schema which falls back to d.DefaultSchema(user).
func Normalize(d Dialect, catalog, schema, name, user string) (string, string, string) {
	if schema == "" {
		schema = d.DefaultSchema(user)
	}
	return fold(d, catalog), fold(d, schema), fold(d, name)
}

func fold(d Dialect, s string) string {
	if s == "" {
		return ""
	}
	// quoted identifiers keep their case
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '[' && s[len(s)-1] == ']') {
		return s[1 : len(s)-1]
	}
	return d.NormalizeIdentifier(s)
}

// Lookup returns the dialect for a driver name ("pgx", "sqlserver") or a product name
// reported by the database ("PostgreSQL", "Microsoft SQL Server"). Unknown names get
// the generic dialect.
func Lookup(name string) Dialect {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "postgres"), n == "pgx", n == "pq":
		return NewPostgresDialect()
	case strings.Contains(n, "tidb"):
		return NewTiDBDialect()
	case strings.Contains(n, "mysql"), strings.Contains(n, "mariadb"):
		return NewMySQLDialect()
	case strings.Contains(n, "sql server"), strings.Contains(n, "sqlserver"), n == "mssql", strings.Contains(n, "microsoft"):
		return NewSQLServerDialect()
	case strings.Contains(n, "oracle"), n == "godror", n == "oci8":
		return NewOracleDialect()
	case strings.Contains(n, "sqlite"):
		return NewSQLiteDialect()
	default:
		return NewGenericDialect()
	}
}
