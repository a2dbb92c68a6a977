package parser

import (
	"errors"
	"fmt"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

var (
	// ErrTooManyRowsSkipped is returned when SkipRows consumes every row of
	// a sheet.
	ErrTooManyRowsSkipped = errors.New("too many rows skipped")
	// ErrInvalidOptions is returned for out of range materialization options.
	ErrInvalidOptions = errors.New("invalid materialization options")
	// ErrColumnNotFound is returned when a selected column does not exist.
	ErrColumnNotFound = errors.New("column not found")
)

// MaterializeOptions controls how a sheet is turned into a table.
type MaterializeOptions struct {
	// HasHeader consumes the first row after SkipRows as column names.
	HasHeader bool
	// SkipRows is the number of rows dropped before the header.
	SkipRows int
	// RowLimit caps the number of materialized data rows. Nil reads all.
	RowLimit *int
	// SampleRows is the length of the inference window. Nil infers from
	// every row.
	SampleRows *int
	// Schema pins column types by name or index.
	Schema models.Schema
	// Strict fails the load when a pinned column cannot represent a cell.
	Strict bool
	// ColumnNames overrides column names by position.
	ColumnNames []string
	// UseColumns restricts the result to the given columns, in order.
	UseColumns []models.ColumnKey
}

// Validate checks the numeric bounds of the options.
func (o MaterializeOptions) Validate() error {
	if o.SkipRows < 0 {
		return fmt.Errorf("%w: skip rows %d is negative", ErrInvalidOptions, o.SkipRows)
	}
	if o.RowLimit != nil && *o.RowLimit < 0 {
		return fmt.Errorf("%w: row limit %d is negative", ErrInvalidOptions, *o.RowLimit)
	}
	if o.SampleRows != nil && *o.SampleRows < 1 {
		return fmt.Errorf("%w: sample rows must be at least 1, got %d", ErrInvalidOptions, *o.SampleRows)
	}
	for k := range o.Schema {
		if !k.ByName && k.Index < 0 {
			return fmt.Errorf("%w: schema column index %d is negative", ErrInvalidOptions, k.Index)
		}
	}
	seen := make(map[models.ColumnKey]struct{}, len(o.UseColumns))
	for _, k := range o.UseColumns {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: column %s selected twice", ErrInvalidOptions, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Materialize reads sheet in file order and assembles a typed table.
// Cells that cannot be represented in their column's type become null and
// are tallied on the column; only strict mode turns them into an error.
func Materialize(sheet Sheet, opts MaterializeOptions, coercer *Coercer) (*models.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	iter, err := sheet.Rows()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	next := func() ([]models.CellValue, bool) {
		if !iter.Next() {
			return nil, false
		}
		return iter.Row(), true
	}

	for skipped := 0; skipped < opts.SkipRows; skipped++ {
		if _, ok := next(); !ok {
			if err := iter.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: sheet %q has %d rows, %d skipped",
				ErrTooManyRowsSkipped, sheet.Name(), skipped, opts.SkipRows)
		}
	}

	var header []models.CellValue
	if opts.HasHeader {
		if row, ok := next(); ok {
			header = row
		}
	}

	inferrer := NewSchemaInferrer(header, opts.ColumnNames, opts.Schema, coercer, opts.SampleRows)

	total := 0
	for {
		row, ok := next()
		if !ok {
			break
		}
		if opts.RowLimit == nil || total < *opts.RowLimit {
			inferrer.Observe(row)
		}
		total++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	height := inferrer.Rows()
	truncated := inferrer.Truncated()
	columns, conflicts := inferrer.Finalize()
	if opts.Strict && len(conflicts) > 0 {
		c := conflicts[0]
		return nil, &models.SchemaConflictError{
			Sheet:  sheet.Name(),
			Column: c.Column,
			Type:   c.Failure.Target,
			Row:    c.Failure.Row,
			Value:  c.Failure.Value,
		}
	}

	table, err := models.NewTable(sheet.Name(), height, columns, models.TableMeta{
		TotalHeight:    total,
		TruncatedCells: truncated,
	})
	if err != nil {
		return nil, err
	}

	if len(opts.UseColumns) == 0 {
		return table, nil
	}
	positions, err := resolveColumns(table, opts.UseColumns)
	if err != nil {
		return nil, err
	}
	return table.Select(positions), nil
}

// resolveColumns maps selection keys to column positions.
func resolveColumns(table *models.Table, keys []models.ColumnKey) ([]int, error) {
	names := table.ColumnNames()
	positions := make([]int, 0, len(keys))
	seen := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		pos := -1
		for idx, name := range names {
			if k.Matches(name, idx) {
				pos = idx
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("%w: %s in sheet %q", ErrColumnNotFound, k, table.Name())
		}
		if _, dup := seen[pos]; dup {
			return nil, fmt.Errorf("%w: column %q selected twice", ErrInvalidOptions, names[pos])
		}
		seen[pos] = struct{}{}
		positions = append(positions, pos)
	}
	return positions, nil
}
