package models

import (
	"fmt"
)

// CoercionError records one cell that could not be converted to its
// column's type and was replaced with null. Coercion errors are tallied on
// the column; they are never returned from a load.
type CoercionError struct {
	// Row is the zero-based data row (after skipped rows and the header).
	Row int `json:"row"`
	// Value is the original cell.
	Value CellValue `json:"-"`
	// Target is the column type the cell was coerced to.
	Target ColumnType `json:"target"`
}

func (e CoercionError) Error() string {
	return fmt.Sprintf("row %d: cannot coerce %s to %s", e.Row, e.Value, e.Target)
}

// SchemaConflictError is returned in strict mode when a pinned column type
// cannot represent an observed value.
type SchemaConflictError struct {
	// Sheet is the sheet being loaded.
	Sheet string
	// Column is the column name.
	Column string
	// Type is the pinned type.
	Type ColumnType
	// Row is the zero-based data row of the first offending cell.
	Row int
	// Value is the offending cell.
	Value CellValue
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict in sheet %q column %q: row %d value %s is not representable as %s",
		e.Sheet, e.Column, e.Row, e.Value, e.Type)
}
