package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDTypes(t *testing.T) {
	schema, err := parseDTypes([]string{"amount=float", "0=string", "=2019=int", "a=b=datetime"})
	require.NoError(t, err)
	assert.Equal(t, models.Schema{
		models.ColumnName("amount"): models.TypeFloat,
		models.ColumnIndex(0):       models.TypeString,
		models.ColumnName("2019"):   models.TypeInt,
		models.ColumnName("a=b"):    models.TypeDateTime,
	}, schema)

	for _, spec := range []string{"amount", "=float", "amount=", "amount=decimal"} {
		_, err := parseDTypes([]string{spec})
		assert.ErrorIs(t, err, fastexcel.ErrInvalidParameters, spec)
	}
}

func TestRun(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "id")
	f.SetCellValue("Sheet1", "B1", "label")
	f.SetCellValue("Sheet1", "A2", 1)
	f.SetCellValue("Sheet1", "B2", "one")
	path := filepath.Join(t.TempDir(), "cli.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{path, "--dtype", "id=string"})
	require.NoError(t, cmd.Execute())

	var doc struct {
		BookName string `json:"book_name"`
		Sheets   []struct {
			Name    string `json:"name"`
			Columns []struct {
				Name   string `json:"name"`
				Type   string `json:"type"`
				Values []any  `json:"values"`
			} `json:"columns"`
		} `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Equal(t, "cli.xlsx", doc.BookName)
	require.Len(t, doc.Sheets, 1)
	require.Len(t, doc.Sheets[0].Columns, 2)
	assert.Equal(t, "string", doc.Sheets[0].Columns[0].Type)
	assert.Equal(t, []any{"1"}, doc.Sheets[0].Columns[0].Values)
}

func TestRunSheetsDir(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "id")
	f.SetCellValue("Sheet1", "A2", 1)
	_, err := f.NewSheet("Totals")
	require.NoError(t, err)
	f.SetCellValue("Totals", "A1", "sum")
	f.SetCellValue("Totals", "A2", 2.5)
	path := filepath.Join(t.TempDir(), "cli.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	dir := filepath.Join(t.TempDir(), "sheets")
	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{path, "--sheets-dir", dir})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())

	for name, typ := range map[string]string{"Sheet1": "int", "Totals": "float"} {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		require.NoError(t, err)

		var sheet struct {
			Name    string `json:"name"`
			Columns []struct {
				Type string `json:"type"`
			} `json:"columns"`
		}
		require.NoError(t, json.Unmarshal(data, &sheet))
		assert.Equal(t, name, sheet.Name)
		require.Len(t, sheet.Columns, 1)
		assert.Equal(t, typ, sheet.Columns[0].Type)
	}
}
