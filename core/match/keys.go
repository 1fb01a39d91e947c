package match

import "strings"

// KeyDelimiter joins fragments. It is not escaped, so a cell containing it
// can collide with a differently split key.
const KeyDelimiter = "|"

// Normalize trims value and uppercases it unless caseSensitive.
func Normalize(value string, caseSensitive bool) string {
	if value == "" {
		return ""
	}
	value = strings.TrimSpace(value)
	if !caseSensitive {
		value = strings.ToUpper(value)
	}
	return value
}

// KeyBuilder derives composite keys for rows of one table on one side.
type KeyBuilder struct {
	rules     []Rule
	side      Side
	positions []int
	mappings  Mappings
}

// NewKeyBuilder resolves every rule column against columns once. A column
// that is absent resolves to -1 and always yields an empty fragment.
func NewKeyBuilder(columns []string, rules []Rule, side Side, mappings Mappings) *KeyBuilder {
	first := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, seen := first[name]; !seen {
			first[name] = i
		}
	}

	positions := make([]int, len(rules))
	for i, r := range rules {
		pos, ok := first[r.Column(side)]
		if !ok {
			pos = -1
		}
		positions[i] = pos
	}

	return &KeyBuilder{rules: rules, side: side, positions: positions, mappings: mappings}
}

// Fragment returns the normalized contribution of rule i for cells.
func (kb *KeyBuilder) Fragment(i int, cells []string) string {
	pos := kb.positions[i]
	if pos < 0 || pos >= len(cells) {
		return ""
	}

	rule := kb.rules[i]
	value := cells[pos]
	if kb.side == Source && rule.MappingID != nil {
		if m, ok := kb.mappings[*rule.MappingID]; ok {
			if mapped, ok := m[value]; ok {
				value = mapped
			}
		}
	}
	return Normalize(value, rule.CaseSensitive)
}

// Key returns the composite key of cells.
func (kb *KeyBuilder) Key(cells []string) string {
	var b strings.Builder
	for i := range kb.rules {
		if i > 0 {
			b.WriteString(KeyDelimiter)
		}
		b.WriteString(kb.Fragment(i, cells))
	}
	return b.String()
}

// BuildKey is a one-shot helper around NewKeyBuilder.
func BuildKey(cells, columns []string, rules []Rule, side Side, mappings Mappings) string {
	return NewKeyBuilder(columns, rules, side, mappings).Key(cells)
}
