package output

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/parser"
	"github.com/marcboeker/go-duckdb"
)

var identifierRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// OpenDuckDB opens a DuckDB database at path, or an in-memory one when path
// is empty.
func OpenDuckDB(path string) (*sql.DB, error) {
	return sql.Open("duckdb", path)
}

// SQLType returns the DuckDB column type a column type is stored as.
func SQLType(t models.ColumnType) string {
	switch t {
	case models.TypeBool:
		return "BOOLEAN"
	case models.TypeInt:
		return "BIGINT"
	case models.TypeFloat:
		return "DOUBLE"
	case models.TypeDateTime:
		return "TIMESTAMP"
	case models.TypeDuration:
		return "INTERVAL"
	}
	return "VARCHAR"
}

// TableName converts a sheet name to a valid SQL table name.
func TableName(name string) string {
	sanitized := identifierRe.ReplaceAllString(name, "_")

	// Ensure it starts with a letter
	if sanitized == "" || (sanitized[0] >= '0' && sanitized[0] <= '9') {
		sanitized = "t_" + sanitized
	}

	return strings.ToLower(sanitized)
}

// columnNames converts column names to unique SQL identifiers.
func columnNames(t *models.Table) []string {
	used := make(map[string]struct{}, t.Width())
	names := make([]string, t.Width())
	for i, name := range t.ColumnNames() {
		sanitized := strings.ToLower(identifierRe.ReplaceAllString(name, "_"))
		if sanitized == "" || (sanitized[0] >= '0' && sanitized[0] <= '9') {
			sanitized = "c_" + sanitized
		}
		names[i] = parser.AliasForName(sanitized, used)
		used[names[i]] = struct{}{}
	}
	return names
}

// LoadDuckDB creates or replaces the table tableName in db and bulk loads t
// into it through a DuckDB appender. It returns the table and column
// identifiers used.
func LoadDuckDB(ctx context.Context, db *sql.DB, tableName string, t *models.Table) (string, []string, error) {
	tableName = TableName(tableName)
	cols := columnNames(t)
	types := t.ColumnTypes()

	defs := make([]string, len(cols))
	for i, name := range cols {
		defs[i] = fmt.Sprintf("%q %s", name, SQLType(types[i]))
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return "", nil, err
	}
	defer conn.Close()

	createQuery := fmt.Sprintf("CREATE OR REPLACE TABLE %q (%s)", tableName, strings.Join(defs, ", "))
	if _, err := conn.ExecContext(ctx, createQuery); err != nil {
		return "", nil, fmt.Errorf("failed to create table: %w", err)
	}
	if t.Height() == 0 || len(cols) == 0 {
		return tableName, cols, nil
	}

	err = conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		appender, err := duckdb.NewAppenderFromConn(dc, "", tableName)
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}

		columns := t.Columns()
		args := make([]driver.Value, len(cols))
		for r := 0; r < t.Height(); r++ {
			for c, col := range columns {
				args[c] = sqlValue(col.Value(r))
			}
			if err := appender.AppendRow(args...); err != nil {
				appender.Close()
				return fmt.Errorf("failed to append row %d: %w", r, err)
			}
		}
		return appender.Close()
	})
	if err != nil {
		return "", nil, err
	}
	return tableName, cols, nil
}

func sqlValue(v models.CellValue) driver.Value {
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
		return f
	case models.KindDateTime:
		t, _ := v.AsDateTime()
		return t
	case models.KindDuration:
		d, _ := v.AsDuration()
		return duckdb.Interval{Micros: d.Milliseconds() * 1000}
	}
	return v.ToStringRepr()
}
