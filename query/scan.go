package query

import "strings"

// separators bound a parameter reference on either side. ':' is deliberately absent from
// the leading set so that "a::int" never yields a parameter.
const separators = "\"'&,;()|=+-*%/\\<>^[]{}!~ \t\r\n\f\v"

func isSeparator(c byte) bool {
	return strings.IndexByte(separators, c) >= 0
}

// isTrailing reports whether c may follow a parameter name. A colon is allowed so that
// ":id::text" binds "id".
func isTrailing(c byte) bool {
	return c == ':' || isSeparator(c)
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '-'
}

// walk calls visit for every byte that lies outside quoted literals and comments.
// visit returns the index to resume scanning from; returning len(sql) stops the walk.
// Unterminated literals and block comments consume the rest of the input. With
// backslash set, a backslash inside a literal escapes the next byte.
func walk(sql string, backslash bool, visit func(i int) int) {
	n := len(sql)
	i := 0
	for i < n {
		c := sql[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(sql, i, c, backslash)
		case c == '-' && i+1 < n && sql[i+1] == '-':
			i = skipLine(sql, i)
		case c == '/' && i+1 < n && sql[i+1] == '*':
			i = skipBlock(sql, i)
		default:
			i = visit(i)
		}
	}
}

func skipQuoted(sql string, i int, quote byte, backslash bool) int {
	n := len(sql)
	for j := i + 1; j < n; j++ {
		if backslash && sql[j] == '\\' {
			j++
			continue
		}
		if sql[j] != quote {
			continue
		}
		if j+1 < n && sql[j+1] == quote {
			j++ // doubled quote
			continue
		}
		return j + 1
	}
	return n
}

func skipLine(sql string, i int) int {
	if j := strings.IndexByte(sql[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(sql)
}

func skipBlock(sql string, i int) int {
	if j := strings.Index(sql[i+2:], "*/"); j >= 0 {
		return i + 2 + j + 2
	}
	return len(sql)
}

// scanName reads a parameter name starting at i, the index right after the prefix.
// It returns the name and the index after it. Names stop before a "--" comment.
func scanName(sql string, i int) (string, int) {
	j := i
	for j < len(sql) && isNameChar(sql[j]) {
		if sql[j] == '-' && j+1 < len(sql) && sql[j+1] == '-' {
			break
		}
		j++
	}
	return sql[i:j], j
}
