package database

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/Konsultn-Engineering/namedb/param"
)

// holderOf allocates the destination an OUT parameter of type t is read into. Holders are
// nullable so a NULL can travel in both directions.
func holderOf(t param.SQLType) any {
	switch t {
	case param.TypeSmallInt, param.TypeInteger, param.TypeBigInt:
		return new(sql.NullInt64)
	case param.TypeReal, param.TypeDouble:
		return new(sql.NullFloat64)
	case param.TypeBoolean:
		return new(sql.NullBool)
	case param.TypeDate, param.TypeTime, param.TypeTimestamp, param.TypeTimestampTZ:
		return new(sql.NullTime)
	case param.TypeBinary, param.TypeBlob:
		return new([]byte)
	case param.TypeChar, param.TypeVarchar, param.TypeText, param.TypeClob,
		param.TypeDecimal, param.TypeJSON, param.TypeUUID:
		return new(sql.NullString)
	default:
		return new(any)
	}
}

// fillHolder sends value as the input half of an INOUT parameter. A fresh holder of type
// t is allocated first; a NULL leaves it invalid. A value the typed holder cannot take is
// kept as is in an untyped holder.
func fillHolder(out *sql.Out, t param.SQLType, value any) {
	out.In = true
	out.Dest = holderOf(t)

	value, null := resolveNull(value)
	if null {
		return
	}

	switch dest := out.Dest.(type) {
	case *any:
		*dest = value
		return
	case *[]byte:
		switch v := value.(type) {
		case []byte:
			*dest = v
			return
		case string:
			*dest = []byte(v)
			return
		}
	case sql.Scanner:
		if err := dest.Scan(value); err == nil {
			return
		}
	}

	holder := new(any)
	*holder = value
	out.Dest = holder
}

// resolveNull unwraps driver.Valuer inputs and reports whether the value is NULL.
func resolveNull(value any) (any, bool) {
	if value == nil {
		return nil, true
	}
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Slice) && rv.IsNil() {
		return nil, true
	}
	if valuer, ok := value.(driver.Valuer); ok {
		v, err := valuer.Value()
		if err != nil {
			return value, false
		}
		if v == nil {
			return nil, true
		}
		return v, false
	}
	return value, false
}

// holderValue reads a holder back, reporting NULL as nil.
func holderValue(dest any) any {
	switch d := dest.(type) {
	case *any:
		return *d
	case *[]byte:
		if *d == nil {
			return nil
		}
		return *d
	case driver.Valuer:
		v, err := d.Value()
		if err != nil {
			return nil
		}
		return v
	}
	return reflect.ValueOf(dest).Elem().Interface()
}

// nullOf returns a typed NULL for t.
func nullOf(t param.SQLType) any {
	switch t {
	case param.TypeSmallInt, param.TypeInteger, param.TypeBigInt:
		return sql.NullInt64{}
	case param.TypeReal, param.TypeDouble:
		return sql.NullFloat64{}
	case param.TypeBoolean:
		return sql.NullBool{}
	case param.TypeDate, param.TypeTime, param.TypeTimestamp, param.TypeTimestampTZ:
		return sql.NullTime{}
	case param.TypeBinary, param.TypeBlob:
		return []byte(nil)
	default:
		return sql.NullString{}
	}
}
