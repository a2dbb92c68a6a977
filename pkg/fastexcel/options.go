// Package fastexcel reads spreadsheet workbooks into typed, columnar
// tables.
package fastexcel

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/parser"
)

// DefaultSampleRows is the inference window set by DefaultLoadOptions.
const DefaultSampleRows = 1000

// LoadOptions configures how one sheet is materialized.
type LoadOptions struct {
	// HasHeader uses the first row after SkipRows as column names.
	HasHeader bool
	// SkipRows drops rows before the header.
	SkipRows int
	// RowLimit caps the number of data rows. If nil, every row is loaded.
	RowLimit *int
	// SampleRows is the number of data rows column types are inferred
	// from. Types are locked after the window and later cells that do not
	// fit become null. If nil, types are inferred from the whole sheet.
	SampleRows *int
	// Schema pins column types by name or index.
	Schema models.Schema
	// Strict fails the load when a pinned column cannot represent a cell.
	Strict bool
	// ColumnNames overrides column names by position.
	ColumnNames []string
	// UseColumns restricts the table to the given columns, in order.
	UseColumns []models.ColumnKey
	// Range crops the sheet to a rectangle in A1 notation such as "B2:F40".
	// If empty, the sheet is cropped to its used range.
	Range string
}

// DefaultLoadOptions returns options with a header row and a
// DefaultSampleRows inference window.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		HasHeader:  true,
		SampleRows: Ptr(DefaultSampleRows),
	}
}

// Ptr returns a pointer to v, for the optional fields of LoadOptions.
func Ptr[T any](v T) *T {
	return &v
}

func (o LoadOptions) materialize() parser.MaterializeOptions {
	return parser.MaterializeOptions{
		HasHeader:   o.HasHeader,
		SkipRows:    o.SkipRows,
		RowLimit:    o.RowLimit,
		SampleRows:  o.SampleRows,
		Schema:      o.Schema,
		Strict:      o.Strict,
		ColumnNames: o.ColumnNames,
		UseColumns:  o.UseColumns,
	}
}

// Validate reports options that cannot be honored.
func (o LoadOptions) Validate() error {
	if err := o.materialize().Validate(); err != nil {
		return invalidParameters(err)
	}
	if o.Range != "" {
		if _, _, err := parser.ParseRange(o.Range); err != nil {
			return invalidParameters(err)
		}
	}
	return nil
}

// cacheKey renders the options in a canonical form, so equal options share
// cached tables regardless of map order.
func (o LoadOptions) cacheKey() string {
	optional := func(p *int) string {
		if p == nil {
			return "all"
		}
		return strconv.Itoa(*p)
	}
	keys := make([]string, len(o.UseColumns))
	for i, k := range o.UseColumns {
		keys[i] = k.String()
	}
	return fmt.Sprintf("header=%t;skip=%d;limit=%s;sample=%s;schema=%s;strict=%t;names=%q;use=%s;range=%s",
		o.HasHeader, o.SkipRows, optional(o.RowLimit), optional(o.SampleRows),
		o.Schema.Canonical(), o.Strict, o.ColumnNames, strings.Join(keys, ","),
		strings.ToUpper(strings.ReplaceAll(o.Range, "$", "")))
}

// Option configures a Workbook.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	dates       *parser.DateSystem
	numbers     parser.NumberFormat
	nullStrings []string
}

func defaultConfig() config {
	return config{
		logger:  slog.New(slog.DiscardHandler),
		numbers: parser.DefaultNumberFormat(),
	}
}

// WithLogger sets the logger for load diagnostics. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDateSystem overrides the date epoch declared by the workbook.
func WithDateSystem(system parser.DateSystem) Option {
	return func(c *config) {
		c.dates = &system
	}
}

// WithNumberFormat sets the separators used to parse numbers stored as
// text.
func WithNumberFormat(format parser.NumberFormat) Option {
	return func(c *config) {
		c.numbers = format
	}
}

// WithNullStrings replaces the text values treated as empty cells. An empty
// list disables the mapping.
func WithNullStrings(values ...string) Option {
	return func(c *config) {
		c.nullStrings = append([]string{}, values...)
	}
}

// SheetRef addresses a sheet by name or zero-based index.
type SheetRef struct {
	name   string
	index  int
	byName bool
}

// SheetByName addresses a sheet by name.
func SheetByName(name string) SheetRef {
	return SheetRef{name: name, byName: true}
}

// SheetByIndex addresses a sheet by zero-based index.
func SheetByIndex(idx int) SheetRef {
	return SheetRef{index: idx}
}

// ParseSheetRef treats non-negative integers as indexes and anything else
// as a name.
func ParseSheetRef(s string) SheetRef {
	if idx, err := strconv.Atoi(s); err == nil && idx >= 0 {
		return SheetByIndex(idx)
	}
	return SheetByName(s)
}

func (r SheetRef) String() string {
	if r.byName {
		return strconv.Quote(r.name)
	}
	return "at index " + strconv.Itoa(r.index)
}
