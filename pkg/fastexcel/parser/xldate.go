package parser

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateSystem selects the epoch used to interpret serial date numbers.
type DateSystem int

const (
	// Date1900 counts days from 1899-12-31 and includes Lotus 1-2-3's
	// phantom 1900-02-29 (serial 60).
	Date1900 DateSystem = iota
	// Date1904 counts days from 1904-01-01.
	Date1904
)

func (s DateSystem) String() string {
	if s == Date1904 {
		return "1904"
	}
	return "1900"
}

// Serial bounds: serials at or above these land in year 10000.
const (
	serialTooLarge1900 = 2958466
	serialTooLarge1904 = serialTooLarge1900 - 1462
)

// phantomLeapDay is the 1900-system serial of the non-existent 1900-02-29.
const phantomLeapDay = 60

var (
	epoch1904       = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	epoch1900       = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	epoch1900Minus1 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

// Serial conversion errors.
var (
	ErrSerialNegative = errors.New("serial date is negative")
	ErrSerialTooLarge = errors.New("serial date is past year 9999")
	ErrSerialNaN      = errors.New("serial date is not a finite number")
	ErrPhantomLeapDay = errors.New("serial date 60 is the non-existent 1900-02-29")
)

// SerialToDateTime converts a spreadsheet serial number into a datetime,
// rounded to the millisecond.
//
// In the 1900 system serials below 60 count from 1899-12-31 and serials
// from 61 on count from 1899-12-30, compensating for the phantom leap day.
// Serial 60 itself is rejected. Serials in [0, 1) are times of day on the
// epoch date.
func SerialToDateTime(serial float64, system DateSystem) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, ErrSerialNaN
	}
	if serial < 0 {
		return time.Time{}, fmt.Errorf("%w: %v", ErrSerialNegative, serial)
	}

	days := math.Floor(serial)
	epoch := epoch1904
	limit := float64(serialTooLarge1904)
	if system == Date1900 {
		limit = serialTooLarge1900
		switch {
		case days == phantomLeapDay:
			return time.Time{}, ErrPhantomLeapDay
		case days < phantomLeapDay:
			epoch = epoch1900
		default:
			epoch = epoch1900Minus1
		}
	}
	if days >= limit {
		return time.Time{}, fmt.Errorf("%w: %v", ErrSerialTooLarge, serial)
	}

	millis := int64(math.Round((serial - days) * 86400000))
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(millis) * time.Millisecond), nil
}

// SerialToDuration converts a fractional day count into a duration, rounded
// to the millisecond.
func SerialToDuration(serial float64) (time.Duration, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return 0, ErrSerialNaN
	}
	millis := math.Round(serial * 86400000)
	if math.Abs(millis) > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, fmt.Errorf("%w: %v", ErrSerialTooLarge, serial)
	}
	return time.Duration(millis) * time.Millisecond, nil
}
