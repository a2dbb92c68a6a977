package parser

import (
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// SchemaInferrer drives one ColumnBuilder per column over the data rows of
// a sheet. While inside the sample window, wider rows add columns that are
// backfilled with nulls and every cell promotes its column's type. Once the
// window is exhausted the column set and types are locked: later cells are
// coerced against the locked types and cells past the last column are
// dropped.
type SchemaInferrer struct {
	namer    *columnNamer
	schema   models.Schema
	coercer  *Coercer
	sample   int // negative samples the whole sheet
	builders []*ColumnBuilder

	rows      int
	frozen    bool
	truncated int
}

// NewSchemaInferrer returns an inferrer. header is the consumed header row,
// or nil; its width seeds the column set. explicit names, when non-nil, take
// precedence over header cells. sampleRows nil samples every row.
func NewSchemaInferrer(header []models.CellValue, explicit []string, schema models.Schema, coercer *Coercer, sampleRows *int) *SchemaInferrer {
	s := &SchemaInferrer{
		namer:   newColumnNamer(explicit, header),
		schema:  schema,
		coercer: coercer,
		sample:  -1,
	}
	if sampleRows != nil {
		s.sample = *sampleRows
	}
	s.grow(len(header))
	if s.sample == 0 {
		s.lock()
	}
	return s
}

// grow adds columns up to width, backfilling them to the rows seen so far.
func (s *SchemaInferrer) grow(width int) {
	for idx := len(s.builders); idx < width; idx++ {
		name := s.namer.name(idx)
		var b *ColumnBuilder
		if typ, ok := s.schema.Lookup(name, idx); ok {
			b = NewPinnedColumnBuilder(name, typ)
		} else {
			b = NewColumnBuilder(name)
		}
		b.Backfill(s.rows)
		s.builders = append(s.builders, b)
	}
}

func (s *SchemaInferrer) lock() {
	s.frozen = true
	for _, b := range s.builders {
		b.Lock()
	}
}

// Observe feeds one data row. Short rows are padded with nulls.
func (s *SchemaInferrer) Observe(row []models.CellValue) {
	if !s.frozen {
		s.grow(len(row))
	} else {
		for _, extra := range row[min(len(row), len(s.builders)):] {
			if !s.coercer.Normalize(extra).IsNull() {
				s.truncated++
			}
		}
	}

	for idx, b := range s.builders {
		if idx < len(row) {
			b.Observe(s.coercer.Normalize(row[idx]))
		} else {
			b.Observe(models.Null())
		}
	}

	s.rows++
	if !s.frozen && s.sample > 0 && s.rows >= s.sample {
		s.lock()
	}
}

// Rows returns the number of observed data rows.
func (s *SchemaInferrer) Rows() int { return s.rows }

// Width returns the current number of columns.
func (s *SchemaInferrer) Width() int { return len(s.builders) }

// Locked reports whether the sample window has been exhausted.
func (s *SchemaInferrer) Locked() bool { return s.frozen }

// Truncated returns the number of non-null cells dropped past the locked
// column set.
func (s *SchemaInferrer) Truncated() int { return s.truncated }

// Types returns the running column types.
func (s *SchemaInferrer) Types() []models.ColumnType {
	types := make([]models.ColumnType, len(s.builders))
	for i, b := range s.builders {
		types[i] = b.Type()
	}
	return types
}

// PinnedConflict is the first cell of a pinned column that its type could
// not represent.
type PinnedConflict struct {
	// Column is the column name.
	Column string
	// Failure describes the cell.
	Failure models.CoercionError
}

// Finalize converts every column to its final type. The builders are
// drained; the inferrer must not be used afterwards. The second result holds
// the first conflict of each pinned column, in column order.
func (s *SchemaInferrer) Finalize() ([]*models.Column, []PinnedConflict) {
	columns := make([]*models.Column, len(s.builders))
	var conflicts []PinnedConflict
	for i, b := range s.builders {
		col, conflict := b.Finalize(s.coercer)
		columns[i] = col
		if conflict != nil && b.Pinned() {
			conflicts = append(conflicts, PinnedConflict{Column: b.Name(), Failure: *conflict})
		}
	}
	s.builders = nil
	return columns, conflicts
}
