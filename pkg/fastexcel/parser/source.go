// Package parser decodes workbook containers into rows of cells and
// materializes sheets into typed tables.
package parser

import (
	"errors"
	"fmt"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// ErrSheetIndex is returned by Book.Sheet for an out of range index.
var ErrSheetIndex = errors.New("sheet index out of range")

// RowIterator walks the rows of a sheet in file order.
type RowIterator interface {
	// Next advances to the next row, returning false at the end of the
	// sheet or on error.
	Next() bool
	// Row returns the current row. The slice must not be modified.
	Row() []models.CellValue
	// Err returns the error that stopped iteration, if any.
	Err() error
	// Close releases the iterator.
	Close() error
}

// Sheet is a finite row source that can be iterated more than once.
type Sheet interface {
	// Name returns the sheet name.
	Name() string
	// Rows starts a new pass over the sheet.
	Rows() (RowIterator, error)
}

// Book is a decoded workbook container.
type Book interface {
	// SheetNames lists the sheets in workbook order.
	SheetNames() []string
	// Sheet returns the sheet at the zero-based index.
	Sheet(idx int) (Sheet, error)
	// DateSystem returns the epoch the workbook stores dates in.
	DateSystem() DateSystem
	// Close releases the container.
	Close() error
}

// SliceSheet is an in-memory sheet.
type SliceSheet struct {
	name string
	rows [][]models.CellValue
}

// NewSliceSheet returns a sheet over rows. rows is not copied.
func NewSliceSheet(name string, rows [][]models.CellValue) *SliceSheet {
	return &SliceSheet{name: name, rows: rows}
}

// Name returns the sheet name.
func (s *SliceSheet) Name() string { return s.name }

// Rows starts a new pass over the rows.
func (s *SliceSheet) Rows() (RowIterator, error) {
	return &sliceRows{rows: s.rows, pos: -1}, nil
}

type sliceRows struct {
	rows [][]models.CellValue
	pos  int
}

func (r *sliceRows) Next() bool {
	if r.pos+1 >= len(r.rows) {
		r.pos = len(r.rows)
		return false
	}
	r.pos++
	return true
}

func (r *sliceRows) Row() []models.CellValue { return r.rows[r.pos] }

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Close() error { return nil }

// SliceBook is an in-memory workbook, mainly for tests and callers that
// decode rows themselves.
type SliceBook struct {
	sheets []*SliceSheet
	dates  DateSystem
}

// NewSliceBook returns a workbook over the given sheets.
func NewSliceBook(dates DateSystem, sheets ...*SliceSheet) *SliceBook {
	return &SliceBook{sheets: sheets, dates: dates}
}

// SheetNames lists the sheets in order.
func (b *SliceBook) SheetNames() []string {
	names := make([]string, len(b.sheets))
	for i, s := range b.sheets {
		names[i] = s.name
	}
	return names
}

// Sheet returns the sheet at idx.
func (b *SliceBook) Sheet(idx int) (Sheet, error) {
	if idx < 0 || idx >= len(b.sheets) {
		return nil, fmt.Errorf("%w: %d", ErrSheetIndex, idx)
	}
	return b.sheets[idx], nil
}

// DateSystem returns the configured epoch.
func (b *SliceBook) DateSystem() DateSystem { return b.dates }

// Close is a no-op.
func (b *SliceBook) Close() error { return nil }
