package output

import (
	"encoding/json"
	"testing"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableToJSON(t *testing.T) {
	data, err := TableToJSON(sampleTable(t), false)
	require.NoError(t, err)

	var doc struct {
		Name        string `json:"name"`
		Height      int    `json:"height"`
		TotalHeight int    `json:"total_height"`
		Columns     []struct {
			Name   string `json:"name"`
			Type   string `json:"type"`
			Values []any  `json:"values"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Data Sheet", doc.Name)
	assert.Equal(t, 2, doc.Height)
	assert.Equal(t, 2, doc.TotalHeight)
	require.Len(t, doc.Columns, 8)

	types := make([]string, len(doc.Columns))
	for i, c := range doc.Columns {
		types[i] = c.Type
	}
	assert.Equal(t, []string{"boolean", "int", "float", "string", "datetime", "duration", "mixed", "null"}, types)

	assert.Equal(t, []any{true, nil}, doc.Columns[0].Values)
	assert.Equal(t, []any{float64(1), float64(2)}, doc.Columns[1].Values)
	assert.Equal(t, []any{1.5, float64(2)}, doc.Columns[2].Values)
	assert.Equal(t, []any{"2024-01-15T10:30:00", nil}, doc.Columns[4].Values)
	assert.Equal(t, []any{"PT1H30M0.5S", nil}, doc.Columns[5].Values)
	assert.Equal(t, []any{"1", "b"}, doc.Columns[6].Values)
	assert.Equal(t, []any{nil, nil}, doc.Columns[7].Values)
}

func TestToJSONIsDeterministic(t *testing.T) {
	render := func() []byte {
		table := sampleTable(t)
		data, err := ToJSON(&models.WorkbookData{
			BookName:   "book.xlsx",
			SheetNames: []string{"Data Sheet", "Missing"},
			Tables:     map[string]*models.Table{"Data Sheet": table},
		}, true)
		require.NoError(t, err)
		return data
	}

	first := render()
	assert.Equal(t, first, render())

	var doc WorkbookJSON
	require.NoError(t, json.Unmarshal(first, &doc))
	assert.Equal(t, "book.xlsx", doc.BookName)
	require.Len(t, doc.Sheets, 1)
	assert.Equal(t, "Data Sheet", doc.Sheets[0].Name)
	assert.Equal(t, models.TypeDuration, doc.Sheets[0].Columns[5].Type)
}
