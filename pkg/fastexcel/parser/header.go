package parser

import (
	"strconv"
	"strings"

	"github.com/alexander-beedie/fastexcel/pkg/fastexcel/models"
)

// UnnamedPrefix prefixes the positional label of columns without a name.
const UnnamedPrefix = "__UNNAMED__"

// UnnamedColumn returns the positional label of the column at idx.
func UnnamedColumn(idx int) string {
	return UnnamedPrefix + strconv.Itoa(idx)
}

// AliasForName returns name if unused, otherwise the first of name_1,
// name_2, ... not present in existing.
func AliasForName(name string, existing map[string]struct{}) string {
	if _, taken := existing[name]; !taken {
		return name
	}
	for depth := 1; ; depth++ {
		alias := name + "_" + strconv.Itoa(depth)
		if _, taken := existing[alias]; !taken {
			return alias
		}
	}
}

// columnNamer hands out unique column names by position. Explicit names
// win over header cells; missing or blank names get positional labels.
type columnNamer struct {
	explicit []string
	header   []models.CellValue
	used     map[string]struct{}
}

func newColumnNamer(explicit []string, header []models.CellValue) *columnNamer {
	return &columnNamer{explicit: explicit, header: header, used: make(map[string]struct{})}
}

// name returns the unique name of the column at idx. It must be called once
// per column, in increasing position order.
func (n *columnNamer) name(idx int) string {
	var raw string
	switch {
	case n.explicit != nil:
		if idx < len(n.explicit) {
			raw = n.explicit[idx]
		}
	case idx < len(n.header):
		raw = strings.TrimSpace(n.header[idx].ToStringRepr())
	}
	if raw == "" {
		raw = UnnamedColumn(idx)
	}
	alias := AliasForName(raw, n.used)
	n.used[alias] = struct{}{}
	return alias
}
