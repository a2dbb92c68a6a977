package output

import (
	"testing"
	"time"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/parser"
	"github.com/stretchr/testify/require"
)

var (
	day     = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	elapsed = 90*time.Minute + 500*time.Millisecond
)

// sampleTable materializes a sheet with one column of each type.
func sampleTable(t *testing.T) *models.Table {
	t.Helper()

	sheet := parser.NewSliceSheet("Data Sheet", [][]models.CellValue{
		{models.String("flag"), models.String("n"), models.String("x"), models.String("label"),
			models.String("when"), models.String("took"), models.String("any"), models.String("empty")},
		{models.Bool(true), models.Int(1), models.Float(1.5), models.String("a"),
			models.DateTime(day), models.Duration(elapsed), models.Int(1)},
		{models.Null(), models.Int(2), models.Int(2), models.Null(),
			models.Null(), models.Null(), models.String("b")},
	})
	table, err := parser.Materialize(sheet, parser.MaterializeOptions{HasHeader: true},
		parser.NewCoercer(parser.Date1900, parser.DefaultNumberFormat(), nil))
	require.NoError(t, err)
	return table
}
