package parser

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixtureTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// writeFixture builds a workbook in memory and saves it to a temp file.
func writeFixture(t *testing.T, build func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	build(f)

	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return tmpFile
}

func openFixture(t *testing.T, path string, opts DecodeOptions) Book {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	book, err := OpenBook(bytes.NewReader(data), int64(len(data)), opts)
	require.NoError(t, err)
	t.Cleanup(func() { book.Close() })
	return book
}

func typedFixture(f *excelize.File) {
	sheetName := "Sheet1"
	for i, h := range []string{"name", "count", "ratio", "flag", "when", "day", "elapsed"} {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cellName, h)
	}
	f.SetCellValue(sheetName, "A2", "alpha")
	f.SetCellValue(sheetName, "B2", 100)
	f.SetCellValue(sheetName, "C2", 200.5)
	f.SetCellValue(sheetName, "D2", true)
	f.SetCellValue(sheetName, "E2", fixtureTime)

	dayFmt := "yyyy-mm-dd"
	dayStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &dayFmt})
	f.SetCellStyle(sheetName, "F2", "F2", dayStyle)
	f.SetCellFloat(sheetName, "F2", 45285, -1, 64)

	elapsedStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 46})
	f.SetCellStyle(sheetName, "G2", "G2", elapsedStyle)
	f.SetCellFloat(sheetName, "G2", 1.5, -1, 64)

	f.SetCellValue(sheetName, "A3", "beta")
	f.SetCellValue(sheetName, "B3", 7)
}

func TestExcelizeBookDecodesCells(t *testing.T) {
	book := openFixture(t, writeFixture(t, typedFixture), DecodeOptions{})

	assert.Equal(t, []string{"Sheet1"}, book.SheetNames())
	assert.Equal(t, Date1900, book.DateSystem())

	sheet, err := book.Sheet(0)
	require.NoError(t, err)
	rows, err := collectRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	expected := []models.CellValue{
		models.String("alpha"),
		models.Int(100),
		models.Float(200.5),
		models.Bool(true),
		models.DateTime(fixtureTime),
		models.DateTime(time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)),
		models.Duration(36 * time.Hour),
	}
	require.Len(t, rows[1], len(expected))
	for i, want := range expected {
		assert.True(t, want.Equal(rows[1][i]), "cell %d: got %s, expected %s", i, rows[1][i], want)
	}
	assert.Equal(t, []models.CellValue{models.String("beta"), models.Int(7)}, rows[2])

	_, err = book.Sheet(1)
	assert.ErrorIs(t, err, ErrSheetIndex)
}

func TestExcelizeBookMaterialize(t *testing.T) {
	book := openFixture(t, writeFixture(t, typedFixture), DecodeOptions{})
	sheet, err := book.Sheet(0)
	require.NoError(t, err)

	table, err := Materialize(sheet, MaterializeOptions{HasHeader: true}, NewCoercer(book.DateSystem(), DefaultNumberFormat(), nil))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Height())
	assert.Equal(t, []models.ColumnType{
		models.TypeString,
		models.TypeInt,
		models.TypeFloat,
		models.TypeBool,
		models.TypeDateTime,
		models.TypeDateTime,
		models.TypeDuration,
	}, table.ColumnTypes())
}

func TestExcelizeBookPositions(t *testing.T) {
	path := writeFixture(t, func(f *excelize.File) {
		f.NewSheet("Report")
		f.SetCellValue("Report", "C4", "id")
		f.SetCellValue("Report", "D4", "label")
		f.SetCellValue("Report", "C5", 1)
		f.SetCellValue("Report", "D6", "x")
	})
	book := openFixture(t, path, DecodeOptions{})
	assert.Equal(t, []string{"Sheet1", "Report"}, book.SheetNames())

	sheet, err := book.Sheet(1)
	require.NoError(t, err)

	rows, err := collectRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, models.String("id"), rows[3][2])

	used, err := UsedRange(sheet)
	require.NoError(t, err)
	table, err := Materialize(used, MaterializeOptions{HasHeader: true}, defaultCoercer())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "label"}, table.ColumnNames())
	assert.Equal(t, 2, table.Height())
	assert.Equal(t, []models.CellValue{models.Null(), models.String("x")}, table.Row(1))
}

func TestExcelizeBookDate1904(t *testing.T) {
	path := writeFixture(t, func(f *excelize.File) {
		date1904 := true
		require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}))
		style, _ := f.NewStyle(&excelize.Style{NumFmt: 14})
		f.SetCellStyle("Sheet1", "A1", "A1", style)
		f.SetCellFloat("Sheet1", "A1", 1, -1, 64)
	})

	book := openFixture(t, path, DecodeOptions{})
	assert.Equal(t, Date1904, book.DateSystem())

	sheet, err := book.Sheet(0)
	require.NoError(t, err)
	rows, err := collectRows(sheet)
	require.NoError(t, err)
	assert.Equal(t, models.DateTime(time.Date(1904, 1, 2, 0, 0, 0, 0, time.UTC)), rows[0][0])

	override := Date1900
	book = openFixture(t, path, DecodeOptions{DateSystem: &override})
	assert.Equal(t, Date1900, book.DateSystem())
}

func TestDetectContainer(t *testing.T) {
	data, err := os.ReadFile(writeFixture(t, func(*excelize.File) {}))
	require.NoError(t, err)

	container, err := DetectContainer(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, ContainerXLSX, container)

	garbage := []byte("name,count\nalpha,1\n")
	_, err = DetectContainer(bytes.NewReader(garbage), int64(len(garbage)))
	assert.ErrorIs(t, err, ErrNotWorkbook)

	_, err = OpenBook(bytes.NewReader(garbage), int64(len(garbage)), DecodeOptions{})
	assert.ErrorIs(t, err, ErrNotWorkbook)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected models.CellValue
		ok       bool
	}{
		{"123", models.Int(123), true},
		{"123.45", models.Float(123.45), true},
		{"-100", models.Int(-100), true},
		{"1E+21", models.Float(1e21), true},
		{"hello", models.Null(), false},
		{"", models.Null(), false},
	}

	for _, tt := range tests {
		result, ok := parseValue(tt.input)
		if ok != tt.ok || !result.Equal(tt.expected) {
			t.Errorf("parseValue(%q) = %s, %v, expected %s, %v",
				tt.input, result, ok, tt.expected, tt.ok)
		}
	}
}
