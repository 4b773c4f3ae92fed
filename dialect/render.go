package dialect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// renderValue inlines v as a SQL literal. It is meant for diagnostics, never for
// building executable SQL from untrusted input.
func renderValue(v any, bytes func([]byte) string) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64)
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000000") + "'"
	case []byte:
		return bytes(val)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}

func hexLiteral(prefix, suffix string) func([]byte) string {
	return func(b []byte) string {
		return fmt.Sprintf("%s%x%s", prefix, b, suffix)
	}
}
