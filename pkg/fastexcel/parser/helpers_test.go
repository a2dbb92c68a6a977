package parser

import (
	"fmt"
	"time"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// row builds a row of cells from Go values.
func row(vals ...any) []models.CellValue {
	cells := make([]models.CellValue, len(vals))
	for i, v := range vals {
		cells[i] = cell(v)
	}
	return cells
}

func cell(v any) models.CellValue {
	switch v := v.(type) {
	case nil:
		return models.Null()
	case models.CellValue:
		return v
	case models.ErrorCode:
		return models.Error(v)
	case bool:
		return models.Bool(v)
	case int:
		return models.Int(int64(v))
	case float64:
		return models.Float(v)
	case string:
		return models.String(v)
	case time.Time:
		return models.DateTime(v)
	case time.Duration:
		return models.Duration(v)
	}
	panic(fmt.Sprintf("unsupported test cell %T", v))
}

func sheetOf(rows ...[]models.CellValue) *SliceSheet {
	return NewSliceSheet("Sheet1", rows)
}

func ptr(n int) *int { return &n }

func defaultCoercer() *Coercer {
	return NewCoercer(Date1900, DefaultNumberFormat(), nil)
}
