package fastexcel

import (
	"errors"
	"fmt"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/parser"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is not a readable workbook.
var ErrInvalidFormat = errors.New("invalid workbook format")

// ErrSheetNotFound is matched by every SheetNotFoundError.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrInvalidParameters indicates load options that cannot be honored.
var ErrInvalidParameters = errors.New("invalid parameters")

// ErrClosed is returned by a Workbook used after Close.
var ErrClosed = errors.New("workbook is closed")

// Errors produced while materializing a sheet.
var (
	ErrTooManyRowsSkipped = parser.ErrTooManyRowsSkipped
	ErrColumnNotFound     = parser.ErrColumnNotFound
)

// SchemaConflictError is returned in strict mode when a pinned column type
// cannot represent a cell.
type SchemaConflictError = models.SchemaConflictError

// CoercionError describes one cell replaced with null during a load.
type CoercionError = models.CoercionError

// FormatError reports a container that could not be decoded.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot read workbook %q: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is makes every FormatError match ErrInvalidFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// SheetNotFoundError reports a sheet reference with no match.
type SheetNotFoundError struct {
	Ref SheetRef
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %s not found", e.Ref)
}

// Is makes every SheetNotFoundError match ErrSheetNotFound.
func (e *SheetNotFoundError) Is(target error) bool {
	return target == ErrSheetNotFound
}

// ExtractionError represents an error while loading one sheet of a
// workbook.
type ExtractionError struct {
	SheetName string
	Component string // "cells" or "table"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}

// invalidParameters wraps a parser option error as ErrInvalidParameters.
func invalidParameters(err error) error {
	if errors.Is(err, parser.ErrInvalidOptions) || errors.Is(err, parser.ErrInvalidRange) {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return err
}
