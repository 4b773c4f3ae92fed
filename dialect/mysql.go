package dialect

import "strings"

type MySQL struct {
	Generic
}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (MySQL) Name() string { return "mysql" }

func (m MySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (m MySQL) Placeholder(n int) string {
	return "?"
}

// BackslashEscapes reports that a backslash escapes the next byte in string literals.
func (MySQL) BackslashEscapes() bool { return true }
