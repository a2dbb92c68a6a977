package output

import (
	"context"
	"testing"
	"time"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDuckDB(t *testing.T) {
	db, err := OpenDuckDB("")
	require.NoError(t, err)
	defer db.Close()

	name, cols, err := LoadDuckDB(context.Background(), db, "Data Sheet", sampleTable(t))
	require.NoError(t, err)
	assert.Equal(t, "data_sheet", name)
	assert.Equal(t, []string{"flag", "n", "x", "label", "when", "took", "any", "empty"}, cols)

	var (
		count   int
		sumN    int64
		label   string
		when    time.Time
		tookMS  int64
		anyText string
	)
	err = db.QueryRow(`SELECT count(*), sum(n) FROM data_sheet`).Scan(&count, &sumN)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.EqualValues(t, 3, sumN)

	err = db.QueryRow(`SELECT label, "when", CAST(epoch(took) * 1000 AS BIGINT), "any" FROM data_sheet WHERE n = 1`).
		Scan(&label, &when, &tookMS, &anyText)
	require.NoError(t, err)
	assert.Equal(t, "a", label)
	assert.True(t, day.Equal(when.UTC()), "got %v", when)
	assert.Equal(t, elapsed.Milliseconds(), tookMS)
	assert.Equal(t, "1", anyText)

	var nulls int
	err = db.QueryRow(`SELECT count(*) FROM data_sheet WHERE empty IS NULL AND flag IS NULL`).Scan(&nulls)
	require.NoError(t, err)
	assert.Equal(t, 1, nulls)

	// Loading again replaces the table.
	_, _, err = LoadDuckDB(context.Background(), db, "Data Sheet", sampleTable(t))
	require.NoError(t, err)
	err = db.QueryRow(`SELECT count(*) FROM data_sheet`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLoadDuckDBManyRows(t *testing.T) {
	const height = 5000
	ids := make([]models.CellValue, height)
	labels := make([]models.CellValue, height)
	for i := range ids {
		ids[i] = models.Int(int64(i))
		labels[i] = models.String("row")
		if i%1000 == 0 {
			labels[i] = models.Null()
		}
	}
	table, err := models.NewTable("Big", height, []*models.Column{
		models.NewColumn("id", models.TypeInt, false, ids, 0, nil),
		models.NewColumn("label", models.TypeString, false, labels, 0, nil),
	}, models.TableMeta{TotalHeight: height})
	require.NoError(t, err)

	db, err := OpenDuckDB("")
	require.NoError(t, err)
	defer db.Close()

	_, _, err = LoadDuckDB(context.Background(), db, "Big", table)
	require.NoError(t, err)

	var (
		count, nullLabels int
		maxID             int64
	)
	err = db.QueryRow(`SELECT count(*), count(*) - count(label), max(id) FROM big`).Scan(&count, &nullLabels, &maxID)
	require.NoError(t, err)
	assert.Equal(t, height, count)
	assert.Equal(t, 5, nullLabels)
	assert.EqualValues(t, height-1, maxID)
}

func TestLoadDuckDBEmptyTable(t *testing.T) {
	table, err := models.NewTable("Nothing", 0, []*models.Column{
		models.NewColumn("a", models.TypeNull, false, nil, 0, nil),
	}, models.TableMeta{})
	require.NoError(t, err)

	db, err := OpenDuckDB("")
	require.NoError(t, err)
	defer db.Close()

	name, cols, err := LoadDuckDB(context.Background(), db, "Nothing", table)
	require.NoError(t, err)
	assert.Equal(t, "nothing", name)
	assert.Equal(t, []string{"a"}, cols)

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM nothing`).Scan(&count))
	assert.Zero(t, count)
}

func TestTableName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Sheet1", "sheet1"},
		{"Q1 Sales", "q1_sales"},
		{"2024", "t_2024"},
		{"", "t_"},
	}

	for _, tt := range tests {
		if got := TableName(tt.input); got != tt.expected {
			t.Errorf("TableName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
