package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidRange is returned for malformed cell range references.
var ErrInvalidRange = errors.New("invalid cell range")

// CellRange is an inclusive rectangle of cells with zero-based bounds.
type CellRange struct {
	// FirstRow is the top row.
	FirstRow int
	// FirstCol is the leftmost column.
	FirstCol int
	// LastRow is the bottom row, inclusive.
	LastRow int
	// LastCol is the rightmost column, inclusive.
	LastCol int
}

// String renders the range in A1 notation.
func (r CellRange) String() string {
	start, _ := excelize.CoordinatesToCellName(r.FirstCol+1, r.FirstRow+1)
	end, _ := excelize.CoordinatesToCellName(r.LastCol+1, r.LastRow+1)
	return start + ":" + end
}

// ParseRange parses a reference like "B2:D10", "$A$1:$D$10" or
// "'Sheet 1'!A1:C3". The sheet part, when present, is returned unquoted.
func ParseRange(ref string) (string, CellRange, error) {
	var sheet string
	rangeStr := strings.TrimSpace(ref)
	if idx := strings.LastIndex(rangeStr, "!"); idx >= 0 {
		sheet = unquoteSheetName(rangeStr[:idx])
		rangeStr = rangeStr[idx+1:]
	}

	// Remove $ signs
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) != 2 {
		return "", CellRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return "", CellRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, ref, err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return "", CellRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, ref, err)
	}
	if endCol < startCol || endRow < startRow {
		return "", CellRange{}, fmt.Errorf("%w: %q is inverted", ErrInvalidRange, ref)
	}

	return sheet, CellRange{
		FirstRow: startRow - 1,
		FirstCol: startCol - 1,
		LastRow:  endRow - 1,
		LastCol:  endCol - 1,
	}, nil
}

// unquoteSheetName strips the quotes of a quoted sheet name and collapses
// doubled quotes inside it.
func unquoteSheetName(name string) string {
	if len(name) >= 2 && name[0] == '\'' && name[len(name)-1] == '\'' {
		return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

// collectRows drains a fresh pass over sheet.
func collectRows(sheet Sheet) ([][]models.CellValue, error) {
	iter, err := sheet.Rows()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var rows [][]models.CellValue
	for iter.Next() {
		rows = append(rows, iter.Row())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// UsedRange returns an in-memory view of sheet cropped to its non-empty
// cells, so data starts at the first row and column holding a value.
func UsedRange(sheet Sheet) (*SliceSheet, error) {
	rows, err := collectRows(sheet)
	if err != nil {
		return nil, err
	}
	return NewSliceSheet(sheet.Name(), trimToUsedRange(rows)), nil
}

// CropRange returns an in-memory view of the cells of sheet inside r. Rows
// past the end of the sheet are not synthesized.
func CropRange(sheet Sheet, r CellRange) (*SliceSheet, error) {
	rows, err := collectRows(sheet)
	if err != nil {
		return nil, err
	}

	var result [][]models.CellValue
	for rowIdx := r.FirstRow; rowIdx <= r.LastRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if r.FirstCol >= len(row) {
			result = append(result, nil)
			continue
		}
		end := r.LastCol + 1
		if end > len(row) {
			end = len(row)
		}
		result = append(result, row[r.FirstCol:end])
	}
	return NewSliceSheet(sheet.Name(), result), nil
}
