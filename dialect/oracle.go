package dialect

import (
	"strconv"
	"strings"
)

// Oracle searches the connected user's schema when none is given.
type Oracle struct {
	Generic
}

func NewOracleDialect() Dialect {
	return &Oracle{}
}

func (Oracle) Name() string { return "oracle" }

func (Oracle) Placeholder(n int) string {
	return ":" + strconv.Itoa(n)
}

func (Oracle) RenderValue(v any) string {
	return renderValue(v, hexLiteral("HEXTORAW('", "')"))
}

func (Oracle) DefaultSchema(user string) string {
	return strings.ToUpper(user)
}
