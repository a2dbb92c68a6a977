package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/shopspring/decimal"
)

// DefaultNullStrings are text cell values treated as empty cells.
var DefaultNullStrings = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan", "1.#IND", "1.#QNAN",
	"<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// NumberFormat describes how numbers written as text are parsed.
type NumberFormat struct {
	// DecimalSeparator separates the integer and fractional parts.
	DecimalSeparator rune
	// ThousandsSeparator groups digits; zero disables grouping.
	ThousandsSeparator rune
}

// DefaultNumberFormat parses "1234.5" style numbers without grouping.
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{DecimalSeparator: '.'}
}

// dateTimeLayouts are tried in order when text is coerced to a datetime.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	isoDurationRe   = regexp.MustCompile(`^(-)?PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)
	clockDurationRe = regexp.MustCompile(`^(-)?(\d+):([0-5]\d)(?::([0-5]\d(?:\.\d+)?))?$`)
)

// Coercer converts cells to a target column type. The zero value is not
// usable; build one with NewCoercer.
type Coercer struct {
	dates   DateSystem
	numbers NumberFormat
	nulls   map[string]struct{}
}

// NewCoercer returns a coercer with the given policies. A nil nullStrings
// selects DefaultNullStrings; an empty non-nil slice disables null strings.
func NewCoercer(dates DateSystem, numbers NumberFormat, nullStrings []string) *Coercer {
	if numbers.DecimalSeparator == 0 {
		numbers.DecimalSeparator = '.'
	}
	if nullStrings == nil {
		nullStrings = DefaultNullStrings
	}
	nulls := make(map[string]struct{}, len(nullStrings))
	for _, s := range nullStrings {
		nulls[s] = struct{}{}
	}
	return &Coercer{dates: dates, numbers: numbers, nulls: nulls}
}

// Normalize maps text cells listed as null strings to null. Other cells are
// returned unchanged.
func (c *Coercer) Normalize(v models.CellValue) models.CellValue {
	if s, ok := v.AsString(); ok {
		if _, null := c.nulls[s]; null {
			return models.Null()
		}
	}
	return v
}

// Coerce converts v to target. ok is false when v cannot be represented;
// the returned value is then null. Null and error cells always produce null;
// error cells are reported as failures.
func (c *Coercer) Coerce(v models.CellValue, target models.ColumnType) (models.CellValue, bool) {
	switch v.Kind() {
	case models.KindNull:
		return models.Null(), true
	case models.KindError:
		return models.Null(), false
	}

	switch target {
	case models.TypeNull:
		return models.Null(), false
	case models.TypeBool:
		return c.toBool(v)
	case models.TypeInt:
		return c.toInt(v)
	case models.TypeFloat:
		return c.toFloat(v)
	case models.TypeString, models.TypeMixed:
		return models.String(v.ToStringRepr()), true
	case models.TypeDateTime:
		return c.toDateTime(v)
	case models.TypeDuration:
		return c.toDuration(v)
	}
	return models.Null(), false
}

func (c *Coercer) toBool(v models.CellValue) (models.CellValue, bool) {
	if _, ok := v.AsBool(); ok {
		return v, true
	}
	if s, ok := v.AsString(); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return models.Bool(true), true
		case "false":
			return models.Bool(false), true
		}
	}
	return models.Null(), false
}

func (c *Coercer) toInt(v models.CellValue) (models.CellValue, bool) {
	switch v.Kind() {
	case models.KindInt:
		return v, true
	case models.KindFloat:
		f, _ := v.AsFloat()
		if f != math.Trunc(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
			return models.Null(), false
		}
		return models.Int(int64(f)), true
	case models.KindString:
		s, _ := v.AsString()
		d, ok := c.parseDecimal(s)
		if !ok || !d.IsInteger() {
			return models.Null(), false
		}
		bi := d.BigInt()
		if !bi.IsInt64() {
			return models.Null(), false
		}
		return models.Int(bi.Int64()), true
	}
	return models.Null(), false
}

func (c *Coercer) toFloat(v models.CellValue) (models.CellValue, bool) {
	switch v.Kind() {
	case models.KindInt, models.KindFloat:
		f, _ := v.AsFloat()
		return models.Float(f), true
	case models.KindString:
		s, _ := v.AsString()
		d, ok := c.parseDecimal(s)
		if !ok {
			return models.Null(), false
		}
		return models.Float(d.InexactFloat64()), true
	}
	return models.Null(), false
}

// parseDecimal parses text using the configured separators.
func (c *Coercer) parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	if c.numbers.ThousandsSeparator != 0 {
		s = strings.ReplaceAll(s, string(c.numbers.ThousandsSeparator), "")
	}
	if c.numbers.DecimalSeparator != '.' {
		if strings.ContainsRune(s, '.') {
			return decimal.Zero, false
		}
		s = strings.ReplaceAll(s, string(c.numbers.DecimalSeparator), ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (c *Coercer) toDateTime(v models.CellValue) (models.CellValue, bool) {
	switch v.Kind() {
	case models.KindDateTime:
		return v, true
	case models.KindInt, models.KindFloat:
		f, _ := v.AsFloat()
		t, err := SerialToDateTime(f, c.dates)
		if err != nil {
			return models.Null(), false
		}
		return models.DateTime(t), true
	case models.KindString:
		s, _ := v.AsString()
		if t, ok := parseDateTime(strings.TrimSpace(s)); ok {
			return models.DateTime(t), true
		}
	}
	return models.Null(), false
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == time.RFC3339Nano {
				t = t.UTC()
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *Coercer) toDuration(v models.CellValue) (models.CellValue, bool) {
	switch v.Kind() {
	case models.KindDuration:
		return v, true
	case models.KindInt, models.KindFloat:
		f, _ := v.AsFloat()
		d, err := SerialToDuration(f)
		if err != nil {
			return models.Null(), false
		}
		return models.Duration(d), true
	case models.KindString:
		s, _ := v.AsString()
		if d, ok := parseDuration(strings.TrimSpace(s)); ok {
			return models.Duration(d), true
		}
	}
	return models.Null(), false
}

// parseDuration accepts the ISO-8601 form produced by
// models.FormatDuration ("PT1H30M0S"), clock notation ("36:05:00.25",
// "1:30") and Go duration strings ("1h30m").
func parseDuration(s string) (time.Duration, bool) {
	if m := isoDurationRe.FindStringSubmatch(s); m != nil && s != "PT" && s != "-PT" {
		return assembleDuration(m[1], m[2], m[3], m[4])
	}
	if m := clockDurationRe.FindStringSubmatch(s); m != nil {
		return assembleDuration(m[1], m[2], m[3], m[4])
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	return 0, false
}

func assembleDuration(sign, hours, minutes, seconds string) (time.Duration, bool) {
	var total time.Duration
	if hours != "" {
		h, err := strconv.ParseInt(hours, 10, 64)
		if err != nil {
			return 0, false
		}
		total += time.Duration(h) * time.Hour
	}
	if minutes != "" {
		m, err := strconv.ParseInt(minutes, 10, 64)
		if err != nil {
			return 0, false
		}
		total += time.Duration(m) * time.Minute
	}
	if seconds != "" {
		sec, err := strconv.ParseFloat(seconds, 64)
		if err != nil {
			return 0, false
		}
		total += time.Duration(math.Round(sec*1000)) * time.Millisecond
	}
	if sign == "-" {
		total = -total
	}
	return total, true
}
