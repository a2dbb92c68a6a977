package fastexcel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/parser"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Workbook is an open workbook. Sheets are decoded on first use and loaded
// tables are cached per sheet and options. A Workbook is safe for concurrent
// use.
type Workbook struct {
	name    string
	book    parser.Book
	closer  io.Closer
	coercer *parser.Coercer
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	views  map[int]*parser.SliceSheet
	tables map[tableKey]*models.Table
	group  singleflight.Group
}

type tableKey struct {
	sheet int
	opts  string
}

// Open opens the workbook at path. The container format is detected from
// the file contents.
func Open(path string, opts ...Option) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	wb, err := openBook(filepath.Base(path), f, info.Size(), f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return wb, nil
}

// OpenReader opens a workbook held in r. r must stay readable until the
// workbook is closed.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Workbook, error) {
	return openBook("", r, size, nil, opts)
}

func openBook(name string, r io.ReaderAt, size int64, closer io.Closer, opts []Option) (*Workbook, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	book, err := parser.OpenBook(r, size, parser.DecodeOptions{DateSystem: cfg.dates})
	if err != nil {
		return nil, &FormatError{Path: name, Err: err}
	}
	wb := newWorkbook(name, book, cfg)
	wb.closer = closer
	return wb, nil
}

// NewWorkbook wraps an already decoded book, such as a parser.SliceBook.
func NewWorkbook(name string, book parser.Book, opts ...Option) *Workbook {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newWorkbook(name, book, cfg)
}

func newWorkbook(name string, book parser.Book, cfg config) *Workbook {
	wb := &Workbook{
		name:    name,
		book:    book,
		coercer: parser.NewCoercer(book.DateSystem(), cfg.numbers, cfg.nullStrings),
		log:     cfg.logger.With("workbook", name),
		views:   make(map[int]*parser.SliceSheet),
		tables:  make(map[tableKey]*models.Table),
	}
	wb.log.Debug("opened workbook", "sheets", len(book.SheetNames()), "date_system", book.DateSystem())
	return wb
}

// Name returns the workbook file name, or "" for workbooks opened from a
// reader.
func (wb *Workbook) Name() string { return wb.name }

// SheetNames lists the sheets in workbook order.
func (wb *Workbook) SheetNames() []string { return wb.book.SheetNames() }

// DateSystem returns the epoch used for date serials.
func (wb *Workbook) DateSystem() parser.DateSystem { return wb.book.DateSystem() }

// resolve maps a reference to a sheet index and name.
func (wb *Workbook) resolve(ref SheetRef) (int, string, error) {
	names := wb.book.SheetNames()
	if ref.byName {
		for i, name := range names {
			if name == ref.name {
				return i, name, nil
			}
		}
		return -1, "", &SheetNotFoundError{Ref: ref}
	}
	if ref.index < 0 || ref.index >= len(names) {
		return -1, "", &SheetNotFoundError{Ref: ref}
	}
	return ref.index, names[ref.index], nil
}

// LoadSheet materializes a sheet. Repeated loads with equal options return
// the cached table.
func (wb *Workbook) LoadSheet(ref SheetRef, opts LoadOptions) (*models.Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	idx, name, err := wb.resolve(ref)
	if err != nil {
		return nil, err
	}
	key := tableKey{sheet: idx, opts: opts.cacheKey()}

	wb.mu.RLock()
	closed := wb.closed
	table, ok := wb.tables[key]
	wb.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		wb.log.Debug("table cache hit", "sheet", name)
		return table, nil
	}

	v, err, shared := wb.group.Do(strconv.Itoa(idx)+"|"+key.opts, func() (any, error) {
		return wb.materialize(key, name, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		wb.log.Debug("joined concurrent load", "sheet", name)
	}
	return v.(*models.Table), nil
}

// LoadSheetByName materializes the sheet called name.
func (wb *Workbook) LoadSheetByName(name string, opts LoadOptions) (*models.Table, error) {
	return wb.LoadSheet(SheetByName(name), opts)
}

// LoadSheetByIndex materializes the sheet at the zero-based idx.
func (wb *Workbook) LoadSheetByIndex(idx int, opts LoadOptions) (*models.Table, error) {
	return wb.LoadSheet(SheetByIndex(idx), opts)
}

// LoadSheets materializes several sheets concurrently. Tables are returned
// in the order of refs. The first failure cancels sheets not yet started.
func (wb *Workbook) LoadSheets(ctx context.Context, refs []SheetRef, opts LoadOptions) ([]*models.Table, error) {
	tables := make([]*models.Table, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, err := wb.LoadSheet(ref, opts)
			if err != nil {
				return err
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// LoadAll materializes every sheet concurrently, in workbook order.
func (wb *Workbook) LoadAll(ctx context.Context, opts LoadOptions) ([]*models.Table, error) {
	refs := make([]SheetRef, len(wb.book.SheetNames()))
	for i := range refs {
		refs[i] = SheetByIndex(i)
	}
	return wb.LoadSheets(ctx, refs, opts)
}

// CachedTables returns the number of tables held in the cache.
func (wb *Workbook) CachedTables() int {
	wb.mu.RLock()
	defer wb.mu.RUnlock()
	return len(wb.tables)
}

// Close releases the workbook. Cached tables stay valid.
func (wb *Workbook) Close() error {
	wb.mu.Lock()
	if wb.closed {
		wb.mu.Unlock()
		return nil
	}
	wb.closed = true
	wb.views = nil
	wb.mu.Unlock()

	err := wb.book.Close()
	if wb.closer != nil {
		if cerr := wb.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (wb *Workbook) materialize(key tableKey, name string, opts LoadOptions) (*models.Table, error) {
	// Check again: a load for this key may have finished since the cache
	// lookup.
	wb.mu.RLock()
	if table, ok := wb.tables[key]; ok {
		wb.mu.RUnlock()
		return table, nil
	}
	wb.mu.RUnlock()

	view, err := wb.view(key.sheet, name, opts.Range)
	if err != nil {
		return nil, err
	}

	table, err := parser.Materialize(view, opts.materialize(), wb.coercer)
	if err != nil {
		return nil, err
	}
	wb.log.Debug("materialized sheet",
		"sheet", name,
		"rows", table.Height(),
		"total_rows", table.TotalHeight(),
		"columns", table.Width())
	if counts := table.ErrorCounts(); len(counts) > 0 {
		wb.log.Warn("cells replaced with null", "sheet", name, "errors", counts)
	}
	if n := table.TruncatedCells(); n > 0 {
		wb.log.Warn("cells dropped past inferred width", "sheet", name, "cells", n)
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()
	if existing, ok := wb.tables[key]; ok {
		return existing, nil
	}
	if wb.closed {
		return table, nil
	}
	wb.tables[key] = table
	return table, nil
}

// view returns the sheet cropped to rng, or to its used range when rng is
// empty. Used-range views are decoded once per sheet.
func (wb *Workbook) view(idx int, name, rng string) (parser.Sheet, error) {
	sheet, err := wb.book.Sheet(idx)
	if err != nil {
		return nil, NewExtractionError(name, "cells", err)
	}

	if rng != "" {
		rangeSheet, r, err := parser.ParseRange(rng)
		if err != nil {
			return nil, invalidParameters(err)
		}
		if rangeSheet != "" && rangeSheet != name {
			return nil, fmt.Errorf("%w: range %q does not address sheet %q", ErrInvalidParameters, rng, name)
		}
		cropped, err := parser.CropRange(sheet, r)
		if err != nil {
			return nil, NewExtractionError(name, "cells", err)
		}
		return cropped, nil
	}

	wb.mu.RLock()
	used, ok := wb.views[idx]
	wb.mu.RUnlock()
	if ok {
		return used, nil
	}

	wb.log.Debug("decoding sheet", "sheet", name)
	used, err = parser.UsedRange(sheet)
	if err != nil {
		return nil, NewExtractionError(name, "cells", err)
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()
	if existing, ok := wb.views[idx]; ok {
		return existing, nil
	}
	if wb.views != nil {
		wb.views[idx] = used
	}
	return used, nil
}
