package procedure

import (
	"regexp"
	"strings"
)

const identPart = `(?:"[^"]+"|\[[^\]]+\]|[\w$#]+)`

var (
	// {call p(...)}, {? = call f(...)}, {:r = call f(...)}, CALL p(...), EXEC[UTE] [@r =] p ...
	callPattern = regexp.MustCompile(`(?is)^\{?\s*(?:(?:\?|[:&@]\w+)\s*=\s*)?(?:call|exec(?:ute)?)\s+(?:@\w+\s*=\s*)?(` +
		identPart + `(?:\s*\.\s*` + identPart + `){0,2})`)
	partPattern = regexp.MustCompile(identPart)
)

// ParseCall extracts the procedure named by a call statement. It reports false when sql
// is not a call. Parts are returned as written, quotes included.
func ParseCall(sql string) (Key, bool) {
	m := callPattern.FindStringSubmatch(strings.TrimSpace(stripComments(sql)))
	if m == nil {
		return Key{}, false
	}
	parts := partPattern.FindAllString(m[1], -1)
	switch len(parts) {
	case 1:
		return NewKey("", "", parts[0]), true
	case 2:
		return NewKey("", parts[0], parts[1]), true
	case 3:
		return NewKey(parts[0], parts[1], parts[2]), true
	}
	return Key{}, false
}

// stripComments removes leading comments.
func stripComments(sql string) string {
	s := sql
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			return s
		}
	}
}
