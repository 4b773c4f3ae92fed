package database

import (
	"regexp"
	"strings"
)

var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b|\bOUTPUT\s+(INSERTED|DELETED)\.`)

var rowKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"PRAGMA":   true,
	"TABLE":    true,
	"CALL":     true,
	"EXEC":     true,
	"EXECUTE":  true,
}

// ReturnsRows guesses whether query yields a result set. Calls are treated as row
// producers since procedures may return result sets.
func ReturnsRows(query string) bool {
	kw := firstKeyword(query)
	if rowKeywords[kw] {
		return true
	}
	return returningClause.MatchString(query)
}

// firstKeyword returns the first word of query, upper-cased, skipping whitespace,
// comments, parentheses and a leading ODBC call brace.
func firstKeyword(query string) string {
	s := query
	for {
		s = strings.TrimLeft(s, " \t\r\n({")
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = s[i+2:]
				continue
			}
			return ""
		}
		break
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
	})
	if end < 0 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}
