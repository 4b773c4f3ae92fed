package dialect

// SQLite has no stored procedures; only quoting and placeholders matter.
type SQLite struct {
	Generic
}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (SQLite) Name() string { return "sqlite" }
