package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ColumnKey addresses a column either by name or by zero-based index.
type ColumnKey struct {
	// Name is the column name when ByName is true.
	Name string
	// Index is the zero-based position when ByName is false.
	Index int
	// ByName selects which of Name or Index is meaningful.
	ByName bool
}

// ColumnName returns a key addressing a column by name.
func ColumnName(name string) ColumnKey {
	return ColumnKey{Name: name, ByName: true}
}

// ColumnIndex returns a key addressing a column by zero-based position.
func ColumnIndex(idx int) ColumnKey {
	return ColumnKey{Index: idx}
}

// ParseColumnKey parses a textual key: a non-negative integer selects by
// index, anything else selects by name. A leading "=" forces a name lookup,
// so "=2019" addresses a column named "2019".
func ParseColumnKey(s string) ColumnKey {
	if strings.HasPrefix(s, "=") {
		return ColumnName(s[1:])
	}
	if idx, err := strconv.Atoi(s); err == nil && idx >= 0 {
		return ColumnIndex(idx)
	}
	return ColumnName(s)
}

// Matches reports whether the key addresses the column at idx named name.
func (k ColumnKey) Matches(name string, idx int) bool {
	if k.ByName {
		return k.Name == name
	}
	return k.Index == idx
}

func (k ColumnKey) String() string {
	if k.ByName {
		return strconv.Quote(k.Name)
	}
	return "#" + strconv.Itoa(k.Index)
}

// Schema pins column types, short-circuiting inference for those columns.
type Schema map[ColumnKey]ColumnType

// Lookup returns the pinned type for a column, looking up by name first and
// by index second.
func (s Schema) Lookup(name string, idx int) (ColumnType, bool) {
	if len(s) == 0 {
		return TypeNull, false
	}
	if t, ok := s[ColumnName(name)]; ok {
		return t, true
	}
	t, ok := s[ColumnIndex(idx)]
	return t, ok
}

// Canonical returns a stable textual form of the schema, independent of map
// iteration order.
func (s Schema) Canonical() string {
	if len(s) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s))
	for k, t := range s {
		parts = append(parts, fmt.Sprintf("%s=%s", k, t))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
