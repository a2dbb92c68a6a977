package parser

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/xuri/excelize/v2"
)

// DecodeOptions tunes container decoding.
type DecodeOptions struct {
	// DateSystem overrides the epoch declared by the workbook.
	DateSystem *DateSystem
}

func (o DecodeOptions) dates(declared DateSystem) DateSystem {
	if o.DateSystem != nil {
		return *o.DateSystem
	}
	return declared
}

// ExcelizeBook decodes xlsx and xlsm workbooks. Sheets are decoded on
// first use and kept in memory; decoding is serialized on the book.
type ExcelizeBook struct {
	f      *excelize.File
	names  []string
	dates  DateSystem
	sheets []*excelizeSheet

	mu      sync.Mutex
	formats map[int]FormatKind
}

// NewExcelizeBook wraps an opened excelize file. The book takes ownership of
// f and closes it in Close.
func NewExcelizeBook(f *excelize.File, opts DecodeOptions) (*ExcelizeBook, error) {
	declared := Date1900
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("reading workbook properties: %w", err)
	}
	if props.Date1904 != nil && *props.Date1904 {
		declared = Date1904
	}

	b := &ExcelizeBook{
		f:       f,
		names:   f.GetSheetList(),
		dates:   opts.dates(declared),
		formats: make(map[int]FormatKind),
	}
	b.sheets = make([]*excelizeSheet, len(b.names))
	for i, name := range b.names {
		b.sheets[i] = &excelizeSheet{book: b, name: name}
	}
	return b, nil
}

// SheetNames lists the sheets in workbook order.
func (b *ExcelizeBook) SheetNames() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

// Sheet returns the sheet at idx.
func (b *ExcelizeBook) Sheet(idx int) (Sheet, error) {
	if idx < 0 || idx >= len(b.sheets) {
		return nil, fmt.Errorf("%w: %d", ErrSheetIndex, idx)
	}
	return b.sheets[idx], nil
}

// DateSystem returns the epoch used to decode date cells.
func (b *ExcelizeBook) DateSystem() DateSystem { return b.dates }

// Close closes the underlying file.
func (b *ExcelizeBook) Close() error { return b.f.Close() }

type excelizeSheet struct {
	book *ExcelizeBook
	name string

	once sync.Once
	rows [][]models.CellValue
	err  error
}

func (s *excelizeSheet) Name() string { return s.name }

func (s *excelizeSheet) Rows() (RowIterator, error) {
	s.once.Do(func() {
		s.rows, s.err = s.book.decodeSheet(s.name)
	})
	if s.err != nil {
		return nil, s.err
	}
	return &sliceRows{rows: s.rows, pos: -1}, nil
}

// decodeSheet reads every row of a sheet. Row i of the result is sheet row
// i+1 and cell j is column j+1, so positions survive empty rows.
func (b *ExcelizeBook) decodeSheet(sheetName string) ([][]models.CellValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.f.Rows(sheetName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]models.CellValue
	for rowNum := 1; rows.Next(); rowNum++ {
		raw, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		row := make([]models.CellValue, len(raw))
		for colIdx, cellValue := range raw {
			if cellValue == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err != nil {
				return nil, err
			}
			row[colIdx], err = b.decodeCell(sheetName, cellName, cellValue)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", cellName, err)
			}
		}
		result = append(result, row)
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	return result, nil
}

// decodeCell converts one raw cell value using its stored type and, for
// numbers, its number format. Type and style lookups go through the loaded
// worksheet, so the first lookup reads the whole sheet into memory.
func (b *ExcelizeBook) decodeCell(sheetName, cellName, raw string) (models.CellValue, error) {
	cellType, err := b.f.GetCellType(sheetName, cellName)
	if err != nil {
		return models.Null(), err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return models.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeError:
		if code, ok := models.LookupErrorCode(raw); ok {
			return models.Error(code), nil
		}
		return models.Error(models.ErrorValue), nil
	case excelize.CellTypeDate:
		if t, ok := parseDateTime(raw); ok {
			return models.DateTime(t), nil
		}
		return models.String(raw), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return models.String(raw), nil
	}

	number, ok := parseValue(raw)
	if !ok {
		return models.String(raw), nil
	}
	kind, err := b.formatKind(sheetName, cellName)
	if err != nil {
		return models.Null(), err
	}
	return convertNumber(number, kind, b.dates), nil
}

// formatKind classifies the number format of a cell, caching by style id.
func (b *ExcelizeBook) formatKind(sheetName, cellName string) (FormatKind, error) {
	styleID, err := b.f.GetCellStyle(sheetName, cellName)
	if err != nil {
		return FormatNumber, err
	}
	if kind, ok := b.formats[styleID]; ok {
		return kind, nil
	}
	kind := FormatNumber
	style, err := b.f.GetStyle(styleID)
	if err == nil && style != nil {
		var code string
		if style.CustomNumFmt != nil {
			code = *style.CustomNumFmt
		}
		kind = ClassifyFormat(style.NumFmt, code)
	}
	b.formats[styleID] = kind
	return kind, nil
}

// parseValue parses a raw numeric cell value. Integral values become ints.
func parseValue(s string) (models.CellValue, bool) {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.Int(i), true
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.Float(f), true
	}
	return models.Null(), false
}

// convertNumber applies a number format kind to a decoded number. Serials
// outside the representable range are kept as numbers.
func convertNumber(v models.CellValue, kind FormatKind, dates DateSystem) models.CellValue {
	f, ok := v.AsFloat()
	if !ok {
		return v
	}
	switch kind {
	case FormatDateTime:
		if t, err := SerialToDateTime(f, dates); err == nil {
			return models.DateTime(t)
		}
	case FormatDuration:
		if d, err := SerialToDuration(f); err == nil {
			return models.Duration(d)
		}
	}
	return v
}
