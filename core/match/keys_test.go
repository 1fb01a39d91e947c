package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		caseSensitive bool
		want          string
	}{
		{"Empty", "", false, ""},
		{"Whitespace Only", "   ", false, ""},
		{"Trim And Upper", "  abc ", false, "ABC"},
		{"Case Sensitive Keeps Case", " abc ", true, "abc"},
		{"Inner Whitespace Kept", "a  b", false, "A  B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.value, tt.caseSensitive)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got, tt.caseSensitive), "normalization must be idempotent")
		})
	}
}

func TestKeyBuilder(t *testing.T) {
	columns := []string{"Ref", "Ccy", "Amount", "Ref"}
	mappings := Mappings{7: {"usd": "USD-X", "eur": "EUR-X"}}

	tests := []struct {
		name  string
		rules []Rule
		side  Side
		cells []string
		want  string
	}{
		{
			name:  "Single Rule",
			rules: []Rule{{SourceColumn: "Ref", TargetColumn: "Ref"}},
			side:  Source,
			cells: []string{" t1 ", "usd", "10", "dup"},
			want:  "T1",
		},
		{
			name: "Composite Preserves Rule Order",
			rules: []Rule{
				{SourceColumn: "Ccy", TargetColumn: "Ccy"},
				{SourceColumn: "Ref", TargetColumn: "Ref"},
			},
			side:  Target,
			cells: []string{"t1", "usd", "10", "dup"},
			want:  "USD|T1",
		},
		{
			name:  "First Duplicate Column Wins",
			rules: []Rule{{SourceColumn: "Ref", TargetColumn: "Ref", CaseSensitive: true}},
			side:  Source,
			cells: []string{"first", "", "", "second"},
			want:  "first",
		},
		{
			name:  "Missing Column Gives Empty Fragment",
			rules: []Rule{{SourceColumn: "Nope"}, {SourceColumn: "Ref"}},
			side:  Source,
			cells: []string{"t1", "usd", "10", ""},
			want:  "|T1",
		},
		{
			name:  "Column Names Are Case Sensitive",
			rules: []Rule{{SourceColumn: "ref"}},
			side:  Source,
			cells: []string{"t1"},
			want:  "",
		},
		{
			name:  "Short Row Gives Empty Fragment",
			rules: []Rule{{SourceColumn: "Ref"}, {SourceColumn: "Amount"}},
			side:  Source,
			cells: []string{"t1"},
			want:  "T1|",
		},
		{
			name:  "Mapping Applies On Source",
			rules: []Rule{{SourceColumn: "Ccy", TargetColumn: "Ccy", MappingID: uintPtr(7)}},
			side:  Source,
			cells: []string{"t1", "usd"},
			want:  "USD-X",
		},
		{
			name:  "Mapping Ignored On Target",
			rules: []Rule{{SourceColumn: "Ccy", TargetColumn: "Ccy", MappingID: uintPtr(7)}},
			side:  Target,
			cells: []string{"t1", "usd"},
			want:  "USD",
		},
		{
			name:  "Mapping Lookup Is Exact Before Normalization",
			rules: []Rule{{SourceColumn: "Ccy", MappingID: uintPtr(7)}},
			side:  Source,
			cells: []string{"t1", "USD"},
			want:  "USD",
		},
		{
			name:  "Unresolved Mapping Is Identity",
			rules: []Rule{{SourceColumn: "Ccy", MappingID: uintPtr(99)}},
			side:  Source,
			cells: []string{"t1", "gbp"},
			want:  "GBP",
		},
		{
			name:  "No Rules",
			rules: nil,
			side:  Source,
			cells: []string{"t1"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildKey(tt.cells, columns, tt.rules, tt.side, mappings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyDelimiterIsNotEscaped(t *testing.T) {
	columns := []string{"A", "B"}
	rules := []Rule{{SourceColumn: "A"}, {SourceColumn: "B"}}

	left := BuildKey([]string{"x|y", "z"}, columns, rules, Source, nil)
	right := BuildKey([]string{"x", "y|z"}, columns, rules, Source, nil)
	assert.Equal(t, left, right)
}

func TestSide_String(t *testing.T) {
	assert.Equal(t, "source", Source.String())
	assert.Equal(t, "target", Target.String())
}
