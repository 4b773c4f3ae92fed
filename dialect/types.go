package dialect

import (
	"strings"

	"github.com/Konsultn-Engineering/namedb/param"
)

// typeNames maps vendor type names, upper-cased and without length or precision, to
// SQL types.
var typeNames = map[string]param.SQLType{
	// character
	"CHAR":              param.TypeChar,
	"NCHAR":             param.TypeChar,
	"CHARACTER":         param.TypeChar,
	"BPCHAR":            param.TypeChar,
	"VARCHAR":           param.TypeVarchar,
	"NVARCHAR":          param.TypeVarchar,
	"VARCHAR2":          param.TypeVarchar,
	"NVARCHAR2":         param.TypeVarchar,
	"CHAR VARYING":      param.TypeVarchar,
	"CHARACTER VARYING": param.TypeVarchar,
	"NAME":              param.TypeVarchar,
	"TEXT":              param.TypeText,
	"NTEXT":             param.TypeText,
	"TINYTEXT":          param.TypeText,
	"MEDIUMTEXT":        param.TypeText,
	"LONGTEXT":          param.TypeText,
	"CLOB":              param.TypeClob,
	"NCLOB":             param.TypeClob,

	// integers
	"TINYINT":     param.TypeSmallInt,
	"SMALLINT":    param.TypeSmallInt,
	"INT2":        param.TypeSmallInt,
	"SMALLSERIAL": param.TypeSmallInt,
	"YEAR":        param.TypeSmallInt,
	"MEDIUMINT":   param.TypeInteger,
	"INT":         param.TypeInteger,
	"INT4":        param.TypeInteger,
	"INTEGER":     param.TypeInteger,
	"SERIAL":      param.TypeInteger,
	"BIGINT":      param.TypeBigInt,
	"INT8":        param.TypeBigInt,
	"BIGSERIAL":   param.TypeBigInt,

	// exact and approximate numerics
	"NUMERIC":          param.TypeDecimal,
	"DECIMAL":          param.TypeDecimal,
	"DEC":              param.TypeDecimal,
	"NUMBER":           param.TypeDecimal,
	"MONEY":            param.TypeDecimal,
	"SMALLMONEY":       param.TypeDecimal,
	"REAL":             param.TypeReal,
	"FLOAT4":           param.TypeReal,
	"FLOAT":            param.TypeDouble,
	"FLOAT8":           param.TypeDouble,
	"DOUBLE":           param.TypeDouble,
	"DOUBLE PRECISION": param.TypeDouble,
	"BINARY_DOUBLE":    param.TypeDouble,

	"BOOLEAN": param.TypeBoolean,
	"BOOL":    param.TypeBoolean,
	"BIT":     param.TypeBoolean,

	// date and time
	"DATE":                        param.TypeDate,
	"TIME":                        param.TypeTime,
	"TIMETZ":                      param.TypeTime,
	"TIME WITH TIME ZONE":         param.TypeTime,
	"TIME WITHOUT TIME ZONE":      param.TypeTime,
	"DATETIME":                    param.TypeTimestamp,
	"DATETIME2":                   param.TypeTimestamp,
	"SMALLDATETIME":               param.TypeTimestamp,
	"TIMESTAMP":                   param.TypeTimestamp,
	"TIMESTAMP WITHOUT TIME ZONE": param.TypeTimestamp,
	"TIMESTAMPTZ":                 param.TypeTimestampTZ,
	"TIMESTAMP WITH TIME ZONE":    param.TypeTimestampTZ,
	"DATETIMEOFFSET":              param.TypeTimestampTZ,

	// binary
	"BINARY":     param.TypeBinary,
	"VARBINARY":  param.TypeBinary,
	"BYTEA":      param.TypeBinary,
	"RAW":        param.TypeBinary,
	"BLOB":       param.TypeBlob,
	"TINYBLOB":   param.TypeBlob,
	"MEDIUMBLOB": param.TypeBlob,
	"LONGBLOB":   param.TypeBlob,
	"LONG RAW":   param.TypeBlob,
	"IMAGE":      param.TypeBlob,

	"JSON":             param.TypeJSON,
	"JSONB":            param.TypeJSON,
	"UUID":             param.TypeUUID,
	"UNIQUEIDENTIFIER": param.TypeUUID,
	"ARRAY":            param.TypeArray,
	"REFCURSOR":        param.TypeCursor,
	"REF CURSOR":       param.TypeCursor,
	"SYS_REFCURSOR":    param.TypeCursor,
	"CURSOR":           param.TypeCursor,
}

// LookupType decodes a vendor type name such as "character varying(20)",
// "int unsigned" or "text[]". Empty names are unspecified, unknown names are TypeOther.
func LookupType(typeName string) param.SQLType {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if name == "" {
		return param.TypeUnspecified
	}
	if strings.HasSuffix(name, "[]") || strings.HasPrefix(name, "_") {
		return param.TypeArray
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimSpace(strings.TrimSuffix(name, " UNSIGNED"))
	name = strings.Join(strings.Fields(name), " ")

	if t, ok := typeNames[name]; ok {
		return t
	}
	return param.TypeOther
}
