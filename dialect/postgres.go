package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/namedb/param"
)

// Postgres folds unquoted names to lower case and searches the public schema by default.
type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string { return "postgres" }

func (p Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (p Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (Postgres) RenderValue(v any) string {
	return renderValue(v, func(b []byte) string {
		return fmt.Sprintf("'\\x%x'", b) // hex bytea literal
	})
}

func (Postgres) NormalizeIdentifier(name string) string {
	return strings.ToLower(name)
}

func (Postgres) DefaultSchema(string) string { return "public" }

func (Postgres) TrimProcedureName(name string) string { return name }

func (Postgres) TypeCode(typeName string) param.SQLType {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "user-defined":
		return param.TypeOther
	case "character":
		return param.TypeChar
	}
	return LookupType(typeName)
}
