package parser

import (
	"testing"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input         string
		expectedSheet string
		expected      CellRange
	}{
		{"A1:C3", "", CellRange{0, 0, 2, 2}},
		{"$B$2:$D$10", "", CellRange{1, 1, 9, 3}},
		{"'Sheet 1'!A1:B2", "Sheet 1", CellRange{0, 0, 1, 1}},
		{"'O''Brien'!A1:B2", "O'Brien", CellRange{0, 0, 1, 1}},
		{"'''Q'''!$A$1:$A$1", "'Q'", CellRange{0, 0, 0, 0}},
		{"Data!AA10:AB20", "Data", CellRange{9, 26, 19, 27}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sheet, r, err := ParseRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSheet, sheet)
			assert.Equal(t, tt.expected, r)
		})
	}
}

func TestParseRangeInvalid(t *testing.T) {
	for _, input := range []string{"", "A1", "A1:B2:C3", "1A:B2", "C3:A1"} {
		_, _, err := ParseRange(input)
		assert.ErrorIs(t, err, ErrInvalidRange, "%q", input)
	}
}

func TestCellRangeString(t *testing.T) {
	assert.Equal(t, "B2:D10", CellRange{1, 1, 9, 3}.String())
}

func TestUsedRange(t *testing.T) {
	sheet := sheetOf(
		row(),
		row(nil, nil),
		row(nil, "a", "b", nil),
		row(nil, 1),
		row(nil, nil, nil),
	)

	trimmed, err := UsedRange(sheet)
	require.NoError(t, err)

	rows, err := collectRows(trimmed)
	require.NoError(t, err)
	assert.Equal(t, [][]models.CellValue{row("a", "b"), row(1)}, rows)
}

func TestUsedRangeEmpty(t *testing.T) {
	trimmed, err := UsedRange(sheetOf(row(nil), row()))
	require.NoError(t, err)

	rows, err := collectRows(trimmed)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCropRange(t *testing.T) {
	sheet := sheetOf(
		row("title"),
		row(nil, "a", "b", "c"),
		row(nil, 1, 2, 3),
		row(nil, 4),
	)

	cropped, err := CropRange(sheet, CellRange{FirstRow: 1, FirstCol: 1, LastRow: 10, LastCol: 2})
	require.NoError(t, err)

	rows, err := collectRows(cropped)
	require.NoError(t, err)
	assert.Equal(t, [][]models.CellValue{row("a", "b"), row(1, 2), row(4)}, rows)
	assert.Equal(t, "Sheet1", cropped.Name())
}
