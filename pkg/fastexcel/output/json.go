// Package output serializes materialized tables.
package output

import (
	"encoding/json"
	"math"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// WorkbookJSON is the JSON document for a set of tables.
type WorkbookJSON struct {
	BookName string      `json:"book_name"`
	Sheets   []TableJSON `json:"sheets"`
}

// TableJSON is the JSON form of one table.
type TableJSON struct {
	Name           string       `json:"name"`
	Height         int          `json:"height"`
	TotalHeight    int          `json:"total_height"`
	TruncatedCells int          `json:"truncated_cells,omitempty"`
	Columns        []ColumnJSON `json:"columns"`
}

// ColumnJSON is the JSON form of one column. Temporal values are rendered
// as ISO-8601 text.
type ColumnJSON struct {
	Name   string            `json:"name"`
	Type   models.ColumnType `json:"type"`
	Pinned bool              `json:"pinned,omitempty"`
	Errors int               `json:"errors,omitempty"`
	Values []any             `json:"values"`
}

// NewTableJSON converts a table to its JSON form.
func NewTableJSON(t *models.Table) TableJSON {
	out := TableJSON{
		Name:           t.Name(),
		Height:         t.Height(),
		TotalHeight:    t.TotalHeight(),
		TruncatedCells: t.TruncatedCells(),
		Columns:        make([]ColumnJSON, 0, t.Width()),
	}
	for _, col := range t.Columns() {
		values := make([]any, col.Len())
		for i := range values {
			values[i] = jsonValue(col.Value(i))
		}
		out.Columns = append(out.Columns, ColumnJSON{
			Name:   col.Name(),
			Type:   col.Type(),
			Pinned: col.Pinned(),
			Errors: col.Errors(),
			Values: values,
		})
	}
	return out
}

func jsonValue(v models.CellValue) any {
	switch v.Kind() {
	case models.KindNull:
		return nil
	case models.KindBool:
		b, _ := v.AsBool()
		return b
	case models.KindInt:
		i, _ := v.AsInt()
		return i
	case models.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.ToStringRepr()
		}
		return f
	}
	return v.ToStringRepr()
}

// TableToJSON serializes one table.
func TableToJSON(t *models.Table, pretty bool) ([]byte, error) {
	return marshal(NewTableJSON(t), pretty)
}

// TablesToJSON serializes tables in the given order.
func TablesToJSON(bookName string, tables []*models.Table, pretty bool) ([]byte, error) {
	doc := WorkbookJSON{BookName: bookName, Sheets: make([]TableJSON, 0, len(tables))}
	for _, t := range tables {
		doc.Sheets = append(doc.Sheets, NewTableJSON(t))
	}
	return marshal(doc, pretty)
}

// ToJSON serializes the tables of a workbook in sheet order. Sheets without
// a table are left out.
func ToJSON(data *models.WorkbookData, pretty bool) ([]byte, error) {
	tables := make([]*models.Table, 0, len(data.Tables))
	for _, name := range data.SheetNames {
		if t, ok := data.Tables[name]; ok {
			tables = append(tables, t)
		}
	}
	return TablesToJSON(data.BookName, tables, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
