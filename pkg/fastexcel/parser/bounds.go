package parser

import (
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// trimToUsedRange crops decoded rows to the bounding box of non-null cells:
// leading and trailing empty rows, leading empty columns and trailing null
// cells of each row are dropped.
func trimToUsedRange(rows [][]models.CellValue) [][]models.CellValue {
	minRow, maxRow, minCol, _ := findDataBounds(rows)
	if minRow < 0 {
		return nil
	}

	result := make([][]models.CellValue, 0, maxRow-minRow+1)
	for rowIdx := minRow; rowIdx <= maxRow; rowIdx++ {
		row := rows[rowIdx]
		end := len(row)
		for end > minCol && row[end-1].IsNull() {
			end--
		}
		if end <= minCol {
			result = append(result, nil)
			continue
		}
		result = append(result, row[minCol:end])
	}
	return result
}

// findDataBounds finds the bounding box of non-null cells. All bounds are -1
// when every cell is null.
func findDataBounds(rows [][]models.CellValue) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if !cell.IsNull() {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}
