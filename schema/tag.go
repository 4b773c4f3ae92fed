package schema

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/param"
)

// ParsedTag is the parsed form of a `db` struct tag.
type ParsedTag struct {
	ColumnName string        // explicit column name, empty to derive from the field name
	Skip       bool          // db:"-"
	Type       param.SQLType // declared SQL type, from type:<name>
	Direction  param.Direction
}

// parseTag parses a tag value.
//
// Supported syntax:
//
//	`db:"column_name"`              // column mapping
//	`db:"column:custom_name"`       // explicit column name
//	`db:"total;type:decimal;inout"` // declared type and direction
//	`db:"-"`                        // skip field entirely
func parseTag(value string) (*ParsedTag, error) {
	if value == "-" {
		return &ParsedTag{Skip: true}, nil
	}
	tag := &ParsedTag{}
	if value == "" {
		return tag, nil
	}

	for i, option := range strings.Split(value, ";") {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		key, val, hasValue := strings.Cut(option, ":")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch {
		case hasValue && (key == "column" || key == "name"):
			tag.ColumnName = val
		case hasValue && key == "type":
			t := dialect.LookupType(val)
			if t == param.TypeOther || !t.Known() {
				return nil, fmt.Errorf("unknown SQL type %q", val)
			}
			tag.Type = t
		case hasValue && (key == "dir" || key == "direction"):
			d := param.ParseDirection(strings.ToUpper(val))
			if d == param.DirectionUnset {
				return nil, fmt.Errorf("unknown direction %q", val)
			}
			tag.Direction = d
		case !hasValue && (option == "in" || option == "out" || option == "inout"):
			tag.Direction = param.ParseDirection(option)
		case !hasValue && i == 0:
			// leading bare word is the column name
			tag.ColumnName = option
		}
		// unknown options are ignored for forward compatibility
	}
	return tag, nil
}
