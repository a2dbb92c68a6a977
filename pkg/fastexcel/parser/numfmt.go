package parser

import (
	"github.com/xuri/nfp"
)

// FormatKind classifies a number format by how numeric cells using it must
// be decoded.
type FormatKind int

const (
	// FormatNumber is a plain numeric format.
	FormatNumber FormatKind = iota
	// FormatDateTime renders serials as dates or times of day.
	FormatDateTime
	// FormatDuration renders serials as elapsed time ([h]:mm:ss).
	FormatDuration
)

// firstCustomFormatID is the lowest number format id reserved for
// workbook-defined formats.
const firstCustomFormatID = 164

// builtinFormatKind returns the kind of a built-in number format id.
func builtinFormatKind(id int) FormatKind {
	switch {
	case id == 46:
		return FormatDuration
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return FormatDateTime
	}
	return FormatNumber
}

// ClassifyFormat returns the kind of the number format with the given id and
// format code. The code is consulted for custom ids, or whenever it is set.
func ClassifyFormat(id int, code string) FormatKind {
	if code == "" {
		if id >= firstCustomFormatID {
			return FormatNumber
		}
		return builtinFormatKind(id)
	}
	return classifyFormatCode(code)
}

// classifyFormatCode tokenizes a format code. Any elapsed-time token makes
// the format a duration; otherwise any date or time token makes it a
// datetime.
func classifyFormatCode(code string) FormatKind {
	p := nfp.NumberFormatParser()
	kind := FormatNumber
	for _, section := range p.Parse(code) {
		for _, token := range section.Items {
			switch token.TType {
			case nfp.TokenTypeElapsedDateTimes:
				return FormatDuration
			case nfp.TokenTypeDateTimes:
				kind = FormatDateTime
			}
		}
	}
	return kind
}
