package parser

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"github.com/TsubasaBE/go-xlsb/workbook"
	"github.com/xuri/excelize/v2"
)

// ErrNotWorkbook is returned when the input is not a supported workbook
// container.
var ErrNotWorkbook = errors.New("not a supported workbook container")

// Container identifies a workbook file format.
type Container int

const (
	// ContainerXLSX is an Office Open XML workbook (.xlsx, .xlsm).
	ContainerXLSX Container = iota
	// ContainerXLSB is a binary workbook (.xlsb).
	ContainerXLSB
)

func (c Container) String() string {
	switch c {
	case ContainerXLSX:
		return "xlsx"
	case ContainerXLSB:
		return "xlsb"
	}
	return fmt.Sprintf("Container(%d)", int(c))
}

// DetectContainer inspects the zip directory of r for the workbook part.
func DetectContainer(r io.ReaderAt, size int64) (Container, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	for _, file := range zr.File {
		switch file.Name {
		case "xl/workbook.xml":
			return ContainerXLSX, nil
		case "xl/workbook.bin":
			return ContainerXLSB, nil
		}
	}
	return 0, fmt.Errorf("%w: no workbook part", ErrNotWorkbook)
}

// OpenBook detects the container format of r and opens it with the matching
// decoder.
func OpenBook(r io.ReaderAt, size int64, opts DecodeOptions) (Book, error) {
	container, err := DetectContainer(r, size)
	if err != nil {
		return nil, err
	}

	switch container {
	case ContainerXLSB:
		wb, err := workbook.OpenReader(r, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
		}
		return NewXLSBBook(wb, opts), nil
	default:
		f, err := excelize.OpenReader(io.NewSectionReader(r, 0, size))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
		}
		book, err := NewExcelizeBook(f, opts)
		if err != nil {
			f.Close()
			return nil, err
		}
		return book, nil
	}
}
