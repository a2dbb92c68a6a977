package parser

import (
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// maxErrorSamples bounds the coercion failures kept per column.
const maxErrorSamples = 16

// ColumnBuilder accumulates the raw cells of one column and tracks its
// running type. Cells are converted only at Finalize, once the type is final.
type ColumnBuilder struct {
	name    string
	running models.ColumnType
	pinned  bool
	locked  bool
	cells   []models.CellValue
}

// NewColumnBuilder returns a builder whose type is inferred from observed
// cells.
func NewColumnBuilder(name string) *ColumnBuilder {
	return &ColumnBuilder{name: name, running: models.TypeNull}
}

// NewPinnedColumnBuilder returns a builder whose type is fixed to typ.
func NewPinnedColumnBuilder(name string, typ models.ColumnType) *ColumnBuilder {
	return &ColumnBuilder{name: name, running: typ, pinned: true, locked: true}
}

// Name returns the column name.
func (b *ColumnBuilder) Name() string { return b.name }

// Type returns the running type.
func (b *ColumnBuilder) Type() models.ColumnType { return b.running }

// Pinned reports whether the type is fixed by a schema override.
func (b *ColumnBuilder) Pinned() bool { return b.pinned }

// Locked reports whether observed cells still move the running type.
func (b *ColumnBuilder) Locked() bool { return b.locked }

// Len returns the number of observed cells.
func (b *ColumnBuilder) Len() int { return len(b.cells) }

// Lock freezes the running type; later cells are coerced against it.
func (b *ColumnBuilder) Lock() { b.locked = true }

// Observe appends v and, unless the builder is locked, promotes the
// running type.
func (b *ColumnBuilder) Observe(v models.CellValue) {
	if !b.locked {
		b.running = models.Promote(b.running, v.Type())
	}
	b.cells = append(b.cells, v)
}

// Backfill appends n null cells.
func (b *ColumnBuilder) Backfill(n int) {
	for i := 0; i < n; i++ {
		b.cells = append(b.cells, models.Null())
	}
}

// Finalize converts every observed cell to the running type. Cells that
// cannot be converted become null and are tallied; error cells always
// count as errors. The second result is the first failure of a cell that
// was neither null nor an error cell, or nil.
func (b *ColumnBuilder) Finalize(c *Coercer) (*models.Column, *models.CoercionError) {
	values := make([]models.CellValue, len(b.cells))
	var (
		errCount int
		samples  []models.CoercionError
		conflict *models.CoercionError
	)
	for i, cell := range b.cells {
		out, ok := c.Coerce(cell, b.running)
		values[i] = out
		if ok {
			continue
		}
		errCount++
		failure := models.CoercionError{Row: i, Value: cell, Target: b.running}
		if len(samples) < maxErrorSamples {
			samples = append(samples, failure)
		}
		if conflict == nil && !cell.IsError() {
			conflict = &failure
		}
	}
	b.cells = nil
	return models.NewColumn(b.name, b.running, b.pinned, values, errCount, samples), conflict
}
