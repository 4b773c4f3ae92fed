package schema

import (
	"strings"
	"unicode"
)

// NamingStrategy defines how Go field names are converted to column names.
type NamingStrategy interface {
	// ColumnName converts a Go field name to a database column name.
	// Should return consistent results for the same input.
	ColumnName(fieldName string) string
}

// ColumnNamingType represents different column naming conventions.
type ColumnNamingType int

const (
	ColumnSnakeCase  ColumnNamingType = iota // user_id, first_name, created_at
	ColumnCamelCase                          // userId, firstName, createdAt
	ColumnPascalCase                         // UserId, FirstName, CreatedAt
)

type columnNamingStrategy struct {
	namingType ColumnNamingType
}

// NewNamingStrategy creates a column naming strategy for the given convention.
func NewNamingStrategy(namingType ColumnNamingType) NamingStrategy {
	return &columnNamingStrategy{namingType: namingType}
}

// DefaultNamingStrategy returns snake_case, the most common database convention.
func DefaultNamingStrategy() NamingStrategy {
	return NewNamingStrategy(ColumnSnakeCase)
}

// ColumnName converts field names according to the configured strategy.
func (c *columnNamingStrategy) ColumnName(fieldName string) string {
	switch c.namingType {
	case ColumnCamelCase:
		return toCamelCase(fieldName)
	case ColumnPascalCase:
		return toPascalCase(fieldName)
	default:
		return toSnakeCase(fieldName)
	}
}

// acronyms that are lowered as a whole instead of letter by letter.
var acronyms = map[string]string{
	"ID":   "id",
	"UUID": "uuid",
	"URL":  "url",
	"API":  "api",
	"JSON": "json",
	"SQL":  "sql",
}

// toSnakeCase converts CamelCase and PascalCase to snake_case.
//
//	UserID     -> user_id
//	HTTPServer -> http_server
//	Address2   -> address2
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}
	if s, ok := acronyms[name]; ok {
		return s
	}
	// already snake_case
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	var b strings.Builder
	b.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// toCamelCase converts any naming convention to camelCase.
func toCamelCase(name string) string {
	pascal := toPascalCase(name)
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// toPascalCase converts any naming convention to PascalCase.
func toPascalCase(name string) string {
	parts := strings.Split(toSnakeCase(name), "_")

	var b strings.Builder
	b.Grow(len(name))
	for _, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
