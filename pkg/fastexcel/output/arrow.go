package output

import (
	"fmt"
	"strconv"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Field metadata keys set on every Arrow field.
const (
	MetadataColumnType = "fastexcel.column_type"
	MetadataErrors     = "fastexcel.errors"
)

// ArrowType returns the Arrow data type a column type is exported as.
// Mixed columns are exported as strings.
func ArrowType(t models.ColumnType) arrow.DataType {
	switch t {
	case models.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case models.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case models.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case models.TypeString, models.TypeMixed:
		return arrow.BinaryTypes.String
	case models.TypeDateTime:
		return &arrow.TimestampType{Unit: arrow.Millisecond}
	case models.TypeDuration:
		return &arrow.DurationType{Unit: arrow.Millisecond}
	}
	return arrow.Null
}

// ArrowSchema returns the Arrow schema of a table.
func ArrowSchema(t *models.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.Width())
	for i, col := range t.Columns() {
		fields[i] = arrow.Field{
			Name:     col.Name(),
			Type:     ArrowType(col.Type()),
			Nullable: true,
			Metadata: arrow.NewMetadata(
				[]string{MetadataColumnType, MetadataErrors},
				[]string{col.Type().String(), strconv.Itoa(col.Errors())},
			),
		}
	}
	return arrow.NewSchema(fields, nil)
}

// ToArrowRecord copies a table into an Arrow record allocated from mem. The
// caller must Release the record.
func ToArrowRecord(mem memory.Allocator, t *models.Table) (arrow.Record, error) {
	b := array.NewRecordBuilder(mem, ArrowSchema(t))
	defer b.Release()

	for i, col := range t.Columns() {
		if err := appendColumn(b.Field(i), col); err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name(), err)
		}
	}
	return b.NewRecord(), nil
}

func appendColumn(fb array.Builder, col *models.Column) error {
	switch fb := fb.(type) {
	case *array.BooleanBuilder:
		values, valid, err := col.Bools()
		if err != nil {
			return err
		}
		fb.AppendValues(values, valid)
	case *array.Int64Builder:
		values, valid, err := col.Int64s()
		if err != nil {
			return err
		}
		fb.AppendValues(values, valid)
	case *array.Float64Builder:
		values, valid, err := col.Float64s()
		if err != nil {
			return err
		}
		fb.AppendValues(values, valid)
	case *array.StringBuilder:
		values, valid, err := col.Strings()
		if err != nil {
			return err
		}
		fb.AppendValues(values, valid)
	case *array.TimestampBuilder:
		values, valid, err := col.DateTimes()
		if err != nil {
			return err
		}
		stamps := make([]arrow.Timestamp, len(values))
		for i, v := range values {
			stamps[i] = arrow.Timestamp(v.UnixMilli())
		}
		fb.AppendValues(stamps, valid)
	case *array.DurationBuilder:
		values, valid, err := col.Durations()
		if err != nil {
			return err
		}
		durations := make([]arrow.Duration, len(values))
		for i, v := range values {
			durations[i] = arrow.Duration(v.Milliseconds())
		}
		fb.AppendValues(durations, valid)
	case *array.NullBuilder:
		for i := 0; i < col.Len(); i++ {
			fb.AppendNull()
		}
	default:
		return fmt.Errorf("unsupported arrow builder %T", fb)
	}
	return nil
}
