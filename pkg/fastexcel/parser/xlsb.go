package parser

import (
	"fmt"
	"math"
	"sync"

	"github.com/TsubasaBE/go-xlsb/workbook"
	"github.com/TsubasaBE/go-xlsb/worksheet"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// XLSBBook decodes binary (.xlsb) workbooks.
type XLSBBook struct {
	wb     *workbook.Workbook
	names  []string
	dates  DateSystem
	sheets []*xlsbSheet
	mu     sync.Mutex
}

// NewXLSBBook wraps an opened xlsb workbook and takes ownership of it.
func NewXLSBBook(wb *workbook.Workbook, opts DecodeOptions) *XLSBBook {
	declared := Date1900
	if wb.Date1904 {
		declared = Date1904
	}
	b := &XLSBBook{
		wb:    wb,
		names: wb.Sheets(),
		dates: opts.dates(declared),
	}
	b.sheets = make([]*xlsbSheet, len(b.names))
	for i, name := range b.names {
		b.sheets[i] = &xlsbSheet{book: b, idx: i, name: name}
	}
	return b
}

// SheetNames lists the sheets in workbook order.
func (b *XLSBBook) SheetNames() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

// Sheet returns the sheet at idx.
func (b *XLSBBook) Sheet(idx int) (Sheet, error) {
	if idx < 0 || idx >= len(b.sheets) {
		return nil, fmt.Errorf("%w: %d", ErrSheetIndex, idx)
	}
	return b.sheets[idx], nil
}

// DateSystem returns the epoch used to decode date cells.
func (b *XLSBBook) DateSystem() DateSystem { return b.dates }

// Close releases the workbook.
func (b *XLSBBook) Close() error { return b.wb.Close() }

type xlsbSheet struct {
	book *XLSBBook
	idx  int
	name string

	once sync.Once
	rows [][]models.CellValue
	err  error
}

func (s *xlsbSheet) Name() string { return s.name }

func (s *xlsbSheet) Rows() (RowIterator, error) {
	s.once.Do(func() {
		s.rows, s.err = s.book.decodeSheet(s.idx)
	})
	if s.err != nil {
		return nil, s.err
	}
	return &sliceRows{rows: s.rows, pos: -1}, nil
}

// decodeSheet reads a sheet in dense mode so row and column positions match
// the sheet grid.
func (b *XLSBBook) decodeSheet(idx int) ([][]models.CellValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ws, err := b.wb.Sheet(idx + 1)
	if err != nil {
		return nil, err
	}

	var result [][]models.CellValue
	for row := range ws.Rows(false) {
		cells := make([]models.CellValue, len(row))
		for i, cell := range row {
			cells[i] = b.decodeCell(cell)
		}
		result = append(result, cells)
	}
	return result, nil
}

func (b *XLSBBook) decodeCell(cell worksheet.Cell) models.CellValue {
	switch v := cell.V.(type) {
	case nil:
		return models.Null()
	case bool:
		return models.Bool(v)
	case string:
		if v == "" {
			return models.Null()
		}
		// go-xlsb surfaces error records as their display text, so text
		// spelling an error code decodes as an error cell too.
		if code, ok := models.LookupErrorCode(v); ok {
			return models.Error(code)
		}
		return models.String(v)
	case float64:
		var number models.CellValue
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			number = models.Int(int64(v))
		} else {
			number = models.Float(v)
		}
		if b.wb.Styles.IsDate(cell.Style) {
			return convertNumber(number, FormatDateTime, b.dates)
		}
		return number
	case int:
		return models.Int(int64(v))
	case int64:
		return models.Int(v)
	}
	return models.String(fmt.Sprint(cell.V))
}
