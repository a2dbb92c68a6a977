package fastexcel

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"golang.org/x/sync/errgroup"
)

// ExtractAll loads every sheet of the workbook at path. Sheets that fail
// are logged and left out of the result; their errors are joined into the
// returned error as ExtractionErrors.
func ExtractAll(ctx context.Context, path string, opts LoadOptions, options ...Option) (*models.WorkbookData, error) {
	wb, err := Open(path, options...)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheetList := wb.SheetNames()
	data := &models.WorkbookData{
		BookName:   filepath.Base(path),
		SheetNames: sheetList,
		Tables:     make(map[string]*models.Table, len(sheetList)),
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, ctx := errgroup.WithContext(ctx)
	for i, sheetName := range sheetList {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, err := wb.LoadSheetByIndex(i, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Log warning and continue with the other sheets
				wb.log.Warn("skipping sheet", "sheet", sheetName, "error", err)
				errs = append(errs, NewExtractionError(sheetName, "table", err))
				return nil
			}
			data.Tables[sheetName] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, errors.Join(errs...)
}
