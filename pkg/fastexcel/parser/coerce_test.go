package parser

import (
	"testing"
	"time"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	noon := time.Date(2022, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    models.CellValue
		target   models.ColumnType
		expected models.CellValue
		ok       bool
	}{
		{"null to int", models.Null(), models.TypeInt, models.Null(), true},
		{"error to string", models.Error(models.ErrorRef), models.TypeString, models.Null(), false},
		{"value to null type", models.Int(1), models.TypeNull, models.Null(), false},

		{"bool to bool", models.Bool(true), models.TypeBool, models.Bool(true), true},
		{"text to bool", models.String(" FALSE "), models.TypeBool, models.Bool(false), true},
		{"int to bool", models.Int(1), models.TypeBool, models.Null(), false},

		{"int to int", models.Int(7), models.TypeInt, models.Int(7), true},
		{"integral float to int", models.Float(3), models.TypeInt, models.Int(3), true},
		{"fractional float to int", models.Float(3.5), models.TypeInt, models.Null(), false},
		{"text to int", models.String("42"), models.TypeInt, models.Int(42), true},
		{"integral decimal text to int", models.String("42.000"), models.TypeInt, models.Int(42), true},
		{"fractional text to int", models.String("4.2"), models.TypeInt, models.Null(), false},
		{"overflow text to int", models.String("99999999999999999999"), models.TypeInt, models.Null(), false},
		{"bool to int", models.Bool(true), models.TypeInt, models.Null(), false},

		{"int to float", models.Int(2), models.TypeFloat, models.Float(2), true},
		{"text to float", models.String("-1.25"), models.TypeFloat, models.Float(-1.25), true},
		{"word to float", models.String("abc"), models.TypeFloat, models.Null(), false},

		{"int to string", models.Int(10), models.TypeString, models.String("10"), true},
		{"float to string", models.Float(0.1), models.TypeString, models.String("0.1"), true},
		{"bool to mixed", models.Bool(false), models.TypeMixed, models.String("false"), true},
		{"datetime to string", models.DateTime(noon), models.TypeString, models.String("2022-03-02T12:00:00"), true},

		{"serial to datetime", models.Float(44622.5), models.TypeDateTime, models.DateTime(noon), true},
		{"text to datetime", models.String("2022-03-02 12:00"), models.TypeDateTime, models.DateTime(noon), true},
		{"date text to datetime", models.String("2022-03-02"), models.TypeDateTime, models.DateTime(time.Date(2022, 3, 2, 0, 0, 0, 0, time.UTC)), true},
		{"rfc3339 to datetime", models.String("2022-03-02T13:00:00+01:00"), models.TypeDateTime, models.DateTime(noon), true},
		{"phantom serial to datetime", models.Int(60), models.TypeDateTime, models.Null(), false},
		{"bool to datetime", models.Bool(true), models.TypeDateTime, models.Null(), false},

		{"serial to duration", models.Float(1.5), models.TypeDuration, models.Duration(36 * time.Hour), true},
		{"iso text to duration", models.String("PT36H5M0.25S"), models.TypeDuration, models.Duration(36*time.Hour + 5*time.Minute + 250*time.Millisecond), true},
		{"clock text to duration", models.String("1:30"), models.TypeDuration, models.Duration(90 * time.Minute), true},
		{"negative clock text", models.String("-0:00:30"), models.TypeDuration, models.Duration(-30 * time.Second), true},
		{"go text to duration", models.String("1h2m"), models.TypeDuration, models.Duration(62 * time.Minute), true},
		{"empty iso to duration", models.String("PT"), models.TypeDuration, models.Null(), false},
	}

	c := defaultCoercer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Coerce(tt.input, tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.expected.Equal(got), "got %s, expected %s", got, tt.expected)
		})
	}
}

func TestCoerceNumberFormat(t *testing.T) {
	c := NewCoercer(Date1900, NumberFormat{DecimalSeparator: ',', ThousandsSeparator: '.'}, nil)

	got, ok := c.Coerce(models.String("1.234,5"), models.TypeFloat)
	assert.True(t, ok)
	assert.Equal(t, models.Float(1234.5), got)

	got, ok = c.Coerce(models.String("1.234"), models.TypeInt)
	assert.True(t, ok)
	assert.Equal(t, models.Int(1234), got)
}

func TestCoerceDateSystem(t *testing.T) {
	c := NewCoercer(Date1904, DefaultNumberFormat(), nil)

	got, ok := c.Coerce(models.Int(0), models.TypeDateTime)
	assert.True(t, ok)
	assert.Equal(t, models.DateTime(time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)), got)
}

func TestNormalize(t *testing.T) {
	c := defaultCoercer()
	for _, s := range DefaultNullStrings {
		assert.True(t, c.Normalize(models.String(s)).IsNull(), "%q", s)
	}
	assert.Equal(t, models.String("N.A."), c.Normalize(models.String("N.A.")))
	assert.Equal(t, models.Int(0), c.Normalize(models.Int(0)))

	custom := NewCoercer(Date1900, DefaultNumberFormat(), []string{"-"})
	assert.True(t, custom.Normalize(models.String("-")).IsNull())
	assert.Equal(t, models.String("NA"), custom.Normalize(models.String("NA")))
}
