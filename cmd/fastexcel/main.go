// Package main provides the CLI entry point for fastexcel.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/output"
	"github.com/spf13/cobra"
)

var (
	outputPath  string
	pretty      bool
	listSheets  bool
	sheets      []string
	noHeader    bool
	skipRows    int
	nRows       int
	sampleRows  int
	dtypes      []string
	useColumns  []string
	columnNames []string
	cellRange   string
	strict      bool
	duckdbPath  string
	sheetsDir   string
	verbose     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fastexcel [input.xlsx]",
		Short: "Read Excel sheets into typed tables",
		Long: `fastexcel reads the sheets of an Excel workbook (.xlsx, .xlsm, .xlsb),
infers a type per column and outputs the typed columns as JSON or loads
them into a DuckDB database.`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	flags.BoolVar(&listSheets, "list-sheets", false, "List sheet names and exit")
	flags.StringSliceVarP(&sheets, "sheet", "s", nil, "Sheet name or zero-based index to load (repeatable, default: all)")
	flags.BoolVar(&noHeader, "no-header", false, "Treat the first row as data and name columns by position")
	flags.IntVar(&skipRows, "skip-rows", 0, "Rows to skip before the header")
	flags.IntVarP(&nRows, "n-rows", "n", -1, "Maximum data rows per sheet (default: all)")
	flags.IntVar(&sampleRows, "sample-rows", fastexcel.DefaultSampleRows, "Rows used to infer column types, 0 for the whole sheet")
	flags.StringArrayVar(&dtypes, "dtype", nil, "Pin a column type as COLUMN=TYPE; COLUMN is a name or zero-based index (repeatable)")
	flags.StringSliceVar(&useColumns, "columns", nil, "Columns to keep, by name or zero-based index")
	flags.StringSliceVar(&columnNames, "column-names", nil, "Column names to use instead of the header")
	flags.StringVar(&cellRange, "range", "", "Cell range to read, such as B2:F40")
	flags.BoolVar(&strict, "strict", false, "Fail when a pinned column cannot represent a cell")
	flags.StringVar(&duckdbPath, "duckdb", "", "Load the tables into this DuckDB database file")
	flags.StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log load diagnostics to stderr")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	var sessionOpts []fastexcel.Option
	if verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		sessionOpts = append(sessionOpts, fastexcel.WithLogger(logger))
	}

	wb, err := fastexcel.Open(inputPath, sessionOpts...)
	if err != nil {
		return err
	}
	defer wb.Close()

	if listSheets {
		for _, name := range wb.SheetNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	opts, err := loadOptions()
	if err != nil {
		return err
	}

	refs := make([]fastexcel.SheetRef, 0, len(sheets))
	for _, s := range sheets {
		refs = append(refs, fastexcel.ParseSheetRef(s))
	}
	if len(refs) == 0 {
		for i := range wb.SheetNames() {
			refs = append(refs, fastexcel.SheetByIndex(i))
		}
	}

	tables, err := wb.LoadSheets(cmd.Context(), refs, opts)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if duckdbPath != "" {
		if err := writeDuckDB(cmd.Context(), tables); err != nil {
			return fmt.Errorf("failed to load duckdb: %w", err)
		}
		if outputPath == "" && sheetsDir == "" {
			return nil
		}
	}

	// Write per-sheet files
	if sheetsDir != "" {
		if err := writeSheetFiles(tables, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
		if outputPath == "" {
			return nil
		}
	}

	// Serialize to JSON
	jsonData, err := output.TablesToJSON(wb.Name(), tables, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	// Write output
	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

// loadOptions maps the command line flags onto LoadOptions.
func loadOptions() (fastexcel.LoadOptions, error) {
	opts := fastexcel.LoadOptions{
		HasHeader:   !noHeader,
		SkipRows:    skipRows,
		Strict:      strict,
		ColumnNames: columnNames,
		Range:       cellRange,
	}
	if nRows >= 0 {
		opts.RowLimit = fastexcel.Ptr(nRows)
	}
	if sampleRows > 0 {
		opts.SampleRows = fastexcel.Ptr(sampleRows)
	}

	schema, err := parseDTypes(dtypes)
	if err != nil {
		return opts, err
	}
	opts.Schema = schema

	for _, c := range useColumns {
		opts.UseColumns = append(opts.UseColumns, models.ParseColumnKey(c))
	}
	return opts, nil
}

// parseDTypes parses COLUMN=TYPE pins. The type follows the last "=", so
// column names may contain "=" and keep the "=name" escape.
func parseDTypes(specs []string) (models.Schema, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	schema := make(models.Schema, len(specs))
	for _, spec := range specs {
		i := strings.LastIndex(spec, "=")
		if i <= 0 || i == len(spec)-1 {
			return nil, fmt.Errorf("%w: dtype %q must be COLUMN=TYPE", fastexcel.ErrInvalidParameters, spec)
		}
		col, typeName := spec[:i], spec[i+1:]
		typ, err := models.ParseColumnType(typeName)
		if err != nil {
			return nil, fmt.Errorf("%w: dtype %q: %w", fastexcel.ErrInvalidParameters, spec, err)
		}
		schema[models.ParseColumnKey(col)] = typ
	}
	return schema, nil
}

func writeSheetFiles(tables []*models.Table, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, t := range tables {
		jsonData, err := output.TableToJSON(t, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, t.Name()+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

func writeDuckDB(ctx context.Context, tables []*models.Table) error {
	db, err := output.OpenDuckDB(duckdbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, t := range tables {
		if _, _, err := output.LoadDuckDB(ctx, db, t.Name(), t); err != nil {
			return fmt.Errorf("sheet %q: %w", t.Name(), err)
		}
	}
	return nil
}
