package match

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genKeys yields short key columns drawn from a small alphabet so that
// collisions and case or whitespace variants are frequent.
func genKeys() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf("a", "A", " a", "b", "B ", "c", "", "a|b"))
}

func tableOf(keys []string) *Table {
	t := &Table{Columns: []string{"Key"}}
	// Reverse order on purpose: storage order is not row order
	for i := len(keys) - 1; i >= 0; i-- {
		t.Rows = append(t.Rows, Row{Index: i, Cells: []string{keys[i]}})
	}
	return t
}

func TestProperty_Matching(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("conservation of source and target rows", prop.ForAll(
		func(src, tgt []string, caseSensitive bool) bool {
			rules := []Rule{{SourceColumn: "Key", TargetColumn: "Key", CaseSensitive: caseSensitive}}
			out := Run(tableOf(src), tableOf(tgt), rules, nil)
			m, us, ut := out.Counts()
			return m+us == len(src) && m+ut == len(tgt)
		},
		genKeys(), genKeys(), gen.Bool(),
	))

	properties.Property("no target row is matched twice", prop.ForAll(
		func(src, tgt []string) bool {
			out := Run(tableOf(src), tableOf(tgt), keyRule, nil)
			seen := make(map[int]bool)
			for _, p := range out.Pairs {
				if seen[p.TargetIndex] {
					return false
				}
				seen[p.TargetIndex] = true
			}
			for _, u := range out.UnmatchedTarget {
				if seen[u.RowIndex] {
					return false
				}
			}
			return true
		},
		genKeys(), genKeys(),
	))

	properties.Property("runs are deterministic", prop.ForAll(
		func(src, tgt []string) bool {
			first := Run(tableOf(src), tableOf(tgt), keyRule, nil)
			second := Run(tableOf(src), tableOf(tgt), keyRule, nil)
			if len(first.Pairs) != len(second.Pairs) || len(first.UnmatchedSource) != len(second.UnmatchedSource) {
				return false
			}
			for i := range first.Pairs {
				if first.Pairs[i].SourceIndex != second.Pairs[i].SourceIndex ||
					first.Pairs[i].TargetIndex != second.Pairs[i].TargetIndex {
					return false
				}
			}
			return true
		},
		genKeys(), genKeys(),
	))

	properties.Property("pairs per key never exceed the smaller side", prop.ForAll(
		func(src, tgt []string) bool {
			out := Run(tableOf(src), tableOf(tgt), keyRule, nil)
			pairs := make(map[string]int)
			for _, p := range out.Pairs {
				pairs[Normalize(p.SourceRow[0], false)]++
			}
			srcCount := make(map[string]int)
			tgtCount := make(map[string]int)
			for _, k := range src {
				srcCount[Normalize(k, false)]++
			}
			for _, k := range tgt {
				tgtCount[Normalize(k, false)]++
			}
			for k, n := range pairs {
				if n != min(srcCount[k], tgtCount[k]) {
					return false
				}
			}
			return true
		},
		genKeys(), genKeys(),
	))

	properties.Property("normalization is idempotent", prop.ForAll(
		func(v string, caseSensitive bool) bool {
			once := Normalize(v, caseSensitive)
			return Normalize(once, caseSensitive) == once
		},
		gen.AlphaString().Map(func(s string) string { return " \t" + s + "  " }), gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
