package dialect

import (
	"strconv"
	"strings"
)

// SQLServer uses bracket quoting and @pN placeholders. Procedure names reported by the
// catalog may carry a ";N" group number.
type SQLServer struct {
	Generic
}

func NewSQLServerDialect() Dialect {
	return &SQLServer{}
}

func (SQLServer) Name() string { return "sqlserver" }

func (SQLServer) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (SQLServer) Placeholder(n int) string {
	return "@p" + strconv.Itoa(n)
}

func (SQLServer) RenderValue(v any) string {
	return renderValue(v, hexLiteral("0x", ""))
}

func (SQLServer) TrimProcedureName(name string) string {
	if i := strings.LastIndexByte(name, ';'); i >= 0 {
		return name[:i]
	}
	return name
}
