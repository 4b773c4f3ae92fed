package param

import "strconv"

// Direction tells the binder how a parameter travels between caller and database.
type Direction uint8

const (
	// DirectionUnset marks a parameter whose direction was not declared. It binds as IN
	// until procedure metadata fills it in.
	DirectionUnset Direction = iota
	DirectionIn
	DirectionOut
	DirectionInOut
	DirectionReturn
)

var directionNames = [...]string{"UNSET", "IN", "OUT", "INOUT", "RETURN"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// Valid reports whether d is one of the declared directions.
func (d Direction) Valid() bool {
	return d <= DirectionReturn
}

// IsInput reports whether a value is sent to the database for this direction.
func (d Direction) IsInput() bool {
	return d == DirectionUnset || d == DirectionIn || d == DirectionInOut
}

// IsOutput reports whether the database writes a value back for this direction.
func (d Direction) IsOutput() bool {
	return d == DirectionOut || d == DirectionInOut || d == DirectionReturn
}

// ParseDirection maps a textual parameter mode (as found in information_schema) to a Direction.
func ParseDirection(s string) Direction {
	switch s {
	case "IN", "in":
		return DirectionIn
	case "OUT", "out":
		return DirectionOut
	case "INOUT", "inout", "IN/OUT", "IN OUT":
		return DirectionInOut
	case "RETURN", "return":
		return DirectionReturn
	default:
		return DirectionUnset
	}
}

// SQLType is a vendor-neutral SQL type code. The zero value means the type is unknown
// and the driver decides how to send the value.
type SQLType int

const (
	TypeUnspecified SQLType = iota
	TypeChar
	TypeVarchar
	TypeText
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeDecimal
	TypeReal
	TypeDouble
	TypeBoolean
	TypeDate
	TypeTime
	TypeTimestamp
	TypeTimestampTZ
	TypeBinary
	TypeBlob
	TypeClob
	TypeJSON
	TypeUUID
	TypeArray
	TypeCursor
	TypeOther
	typeLimit
)

var typeNames = [...]string{
	"UNSPECIFIED", "CHAR", "VARCHAR", "TEXT", "SMALLINT", "INTEGER", "BIGINT", "DECIMAL",
	"REAL", "DOUBLE", "BOOLEAN", "DATE", "TIME", "TIMESTAMP", "TIMESTAMPTZ", "BINARY",
	"BLOB", "CLOB", "JSON", "UUID", "ARRAY", "CURSOR", "OTHER",
}

func (t SQLType) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return "SQLType(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t falls inside the closed set of type codes.
func (t SQLType) Valid() bool {
	return t >= TypeUnspecified && t < typeLimit
}

// Known reports whether t carries a usable type, i.e. it is valid and not unspecified.
func (t SQLType) Known() bool {
	return t != TypeUnspecified && t.Valid()
}
