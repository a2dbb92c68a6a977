package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrTypeMismatch is returned by typed column accessors called on a column
// of another type.
var ErrTypeMismatch = errors.New("column type mismatch")

// ErrLengthMismatch is returned by NewTable when columns differ in length.
var ErrLengthMismatch = errors.New("column length mismatch")

// Column is a homogeneous, typed column. Every non-null value has the kind
// matching the column type: text for TypeString and TypeMixed.
type Column struct {
	name    string
	typ     ColumnType
	pinned  bool
	values  []CellValue
	errors  int
	samples []CoercionError
}

// NewColumn builds a column. values is owned by the column afterwards.
func NewColumn(name string, typ ColumnType, pinned bool, values []CellValue, errCount int, samples []CoercionError) *Column {
	return &Column{
		name:    name,
		typ:     typ,
		pinned:  pinned,
		values:  values,
		errors:  errCount,
		samples: samples,
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the column type.
func (c *Column) Type() ColumnType { return c.typ }

// Pinned reports whether the type came from a schema override.
func (c *Column) Pinned() bool { return c.pinned }

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.values) }

// Value returns the cell at row i.
func (c *Column) Value(i int) CellValue { return c.values[i] }

// Values returns a copy of the column's cells.
func (c *Column) Values() []CellValue {
	out := make([]CellValue, len(c.values))
	copy(out, c.values)
	return out
}

// Errors returns the number of cells replaced with null, either because they
// were error cells or because they could not be coerced.
func (c *Column) Errors() int { return c.errors }

// ErrorSamples returns the first recorded coercion failures.
func (c *Column) ErrorSamples() []CoercionError {
	out := make([]CoercionError, len(c.samples))
	copy(out, c.samples)
	return out
}

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

func (c *Column) expect(types ...ColumnType) error {
	for _, t := range types {
		if c.typ == t {
			return nil
		}
	}
	return fmt.Errorf("%w: column %q is %s", ErrTypeMismatch, c.name, c.typ)
}

// Bools returns the values of a boolean column and their validity.
func (c *Column) Bools() ([]bool, []bool, error) {
	if err := c.expect(TypeBool); err != nil {
		return nil, nil, err
	}
	out, valid := make([]bool, len(c.values)), make([]bool, len(c.values))
	for i, v := range c.values {
		out[i], valid[i] = v.AsBool()
	}
	return out, valid, nil
}

// Int64s returns the values of an int column and their validity.
func (c *Column) Int64s() ([]int64, []bool, error) {
	if err := c.expect(TypeInt); err != nil {
		return nil, nil, err
	}
	out, valid := make([]int64, len(c.values)), make([]bool, len(c.values))
	for i, v := range c.values {
		out[i], valid[i] = v.AsInt()
	}
	return out, valid, nil
}

// Float64s returns the values of a float column and their validity.
func (c *Column) Float64s() ([]float64, []bool, error) {
	if err := c.expect(TypeFloat); err != nil {
		return nil, nil, err
	}
	out, valid := make([]float64, len(c.values)), make([]bool, len(c.values))
	for i, v := range c.values {
		out[i], valid[i] = v.AsFloat()
	}
	return out, valid, nil
}

// Strings returns the values of a string or mixed column and their validity.
func (c *Column) Strings() ([]string, []bool, error) {
	if err := c.expect(TypeString, TypeMixed); err != nil {
		return nil, nil, err
	}
	out, valid := make([]string, len(c.values)), make([]bool, len(c.values))
	for i, v := range c.values {
		out[i], valid[i] = v.AsString()
	}
	return out, valid, nil
}

// DateTimes returns the values of a datetime column and their validity.
func (c *Column) DateTimes() ([]time.Time, []bool, error) {
	if err := c.expect(TypeDateTime); err != nil {
		return nil, nil, err
	}
	out, valid := make([]time.Time, len(c.values)), make([]bool, len(c.values))
	for i, v := range c.values {
		out[i], valid[i] = v.AsDateTime()
	}
	return out, valid, nil
}

// Durations returns the values of a duration column and their validity.
func (c *Column) Durations() ([]time.Duration, []bool, error) {
	if err := c.expect(TypeDuration); err != nil {
		return nil, nil, err
	}
	out, valid := make([]time.Duration, len(c.values)), make([]bool, len(c.values))
	for i, v := range c.values {
		out[i], valid[i] = v.AsDuration()
	}
	return out, valid, nil
}

// Table is an immutable set of equally long columns materialized from one
// sheet.
type Table struct {
	name           string
	columns        []*Column
	height         int
	totalHeight    int
	truncatedCells int
}

// TableMeta carries the table-level counters set by the materializer.
type TableMeta struct {
	// TotalHeight is the number of data rows available in the sheet after
	// skipped rows and the header, ignoring the row limit.
	TotalHeight int
	// TruncatedCells counts cells dropped because they lay beyond the column
	// count fixed by the inference window.
	TruncatedCells int
}

// NewTable assembles a table, checking that every column has height rows.
func NewTable(name string, height int, columns []*Column, meta TableMeta) (*Table, error) {
	for _, c := range columns {
		if c.Len() != height {
			return nil, fmt.Errorf("%w: column %q has %d rows, table has %d", ErrLengthMismatch, c.name, c.Len(), height)
		}
	}
	return &Table{
		name:           name,
		columns:        columns,
		height:         height,
		totalHeight:    meta.TotalHeight,
		truncatedCells: meta.TruncatedCells,
	}, nil
}

// Name returns the sheet name the table was loaded from.
func (t *Table) Name() string { return t.name }

// Height returns the number of materialized rows.
func (t *Table) Height() int { return t.height }

// TotalHeight returns the number of data rows in the sheet, regardless of
// the row limit.
func (t *Table) TotalHeight() int { return t.totalHeight }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// TruncatedCells returns how many cells were dropped past the fixed width.
func (t *Table) TruncatedCells() int { return t.truncatedCells }

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

// Column returns the column named name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// ColumnTypes returns the column types in order.
func (t *Table) ColumnTypes() []ColumnType {
	types := make([]ColumnType, len(t.columns))
	for i, c := range t.columns {
		types[i] = c.typ
	}
	return types
}

// ErrorCounts maps column names to their error tallies, omitting clean
// columns.
func (t *Table) ErrorCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range t.columns {
		if c.errors > 0 {
			counts[c.name] = c.errors
		}
	}
	return counts
}

// Row returns the cells of row i across all columns.
func (t *Table) Row(i int) []CellValue {
	row := make([]CellValue, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.values[i]
	}
	return row
}

// Rows returns the table in row-major order.
func (t *Table) Rows() [][]CellValue {
	rows := make([][]CellValue, t.height)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// Select returns a table restricted to the given column positions, in the
// given order. The columns are shared, not copied.
func (t *Table) Select(positions []int) *Table {
	cols := make([]*Column, len(positions))
	for i, p := range positions {
		cols[i] = t.columns[p]
	}
	return &Table{
		name:           t.name,
		columns:        cols,
		height:         t.height,
		totalHeight:    t.totalHeight,
		truncatedCells: t.truncatedCells,
	}
}
