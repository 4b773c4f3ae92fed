package procedure

import (
	"context"

	"github.com/Konsultn-Engineering/namedb/param"
)

// ColumnKind is the driver code describing a procedure column.
type ColumnKind int

const (
	ColumnUnknown ColumnKind = iota
	ColumnIn
	ColumnInOut
	ColumnResult
	ColumnOut
	ColumnReturn
)

// directions maps column kinds to parameter directions. Result and return columns
// both mean a returned value.
var directions = map[ColumnKind]param.Direction{
	ColumnUnknown: param.DirectionUnset,
	ColumnIn:      param.DirectionIn,
	ColumnInOut:   param.DirectionInOut,
	ColumnResult:  param.DirectionReturn,
	ColumnOut:     param.DirectionOut,
	ColumnReturn:  param.DirectionReturn,
}

// Direction maps k to a parameter direction. Unknown codes are unset.
func (k ColumnKind) Direction() param.Direction {
	if d, ok := directions[k]; ok {
		return d
	}
	return param.DirectionUnset
}

// Procedure is one routine reported by a catalog.
type Procedure struct {
	Catalog string
	Schema  string
	Name    string
	// SpecificName tells overloads apart where the database supports them.
	SpecificName string
}

// Column is one parameter (or returned value) of a procedure.
type Column struct {
	Name string
	Kind ColumnKind
	// Type is the decoded SQL type; when unspecified the resolver decodes TypeName.
	Type     param.SQLType
	TypeName string
}

// Catalog is the metadata side of a driver connection. Empty filter arguments match
// anything.
type Catalog interface {
	ProductName(ctx context.Context) (string, error)
	UserName(ctx context.Context) (string, error)
	Procedures(ctx context.Context, catalog, schema, name string) ([]Procedure, error)
	ProcedureColumns(ctx context.Context, p Procedure) ([]Column, error)
}
