package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/namedb/param"
)

// parseParams turns repeated "name=value" flags into a model, in flag order. Values
// that read as integers, floats or booleans are typed; "null" is nil.
func parseParams(flags []string) (*param.Model, error) {
	m := param.New()
	for _, f := range flags {
		name, raw, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", f)
		}
		m.Set(name, parseValue(raw))
	}
	return m, nil
}

func parseValue(raw string) any {
	if raw == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil && raw != "1" && raw != "0" {
		return b
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		return unquoted
	}
	return raw
}
