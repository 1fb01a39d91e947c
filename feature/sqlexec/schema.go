package sqlexec

import (
	"fmt"
	"strings"
	"time"

	"didp/core/database"
	"didp/feature/tables"
)

const uncategorized = "Other"

// typeRules maps column name fragments to a suggested SQL type. The first
// rule with a matching fragment wins.
var typeRules = []struct {
	sqlType   string
	fragments []string
}{
	{"DATETIME", []string{"date", "time", "dt"}},
	{"INTEGER", []string{"id", "qty", "quantity", "no", "number", "count"}},
	{"DECIMAL(16,4)", []string{"price", "value", "amount", "mtm", "p/l", "turnover", "brokerage", "charges", "tax", "rate"}},
	{"SMALLINT", []string{"status", "type", "buy/sell", "dr/cr", "flag"}},
}

// InferType suggests a SQL type from a column name.
func InferType(column string) string {
	lower := strings.ToLower(column)
	for _, r := range typeRules {
		for _, f := range r.fragments {
			if strings.Contains(lower, f) {
				return r.sqlType
			}
		}
	}
	return "VARCHAR(255)"
}

// GenerateDDL renders CREATE TABLE statements for every schema, grouped by
// category in first-seen order.
func GenerateDDL(schemas []tables.Schema, now time.Time) string {
	var order []string
	groups := map[string][]tables.Schema{}
	for _, s := range schemas {
		cat := uncategorized
		if s.Category != nil && *s.Category != "" {
			cat = *s.Category
		}
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], s)
	}

	var b strings.Builder
	b.WriteString("-- Database Schema\n")
	fmt.Fprintf(&b, "-- Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	rule := "-- " + strings.Repeat("=", 44) + "\n"
	for _, cat := range order {
		b.WriteString(rule)
		fmt.Fprintf(&b, "-- %s TABLES\n", strings.ToUpper(cat))
		b.WriteString(rule)
		b.WriteString("\n")

		for _, s := range groups[cat] {
			fmt.Fprintf(&b, "-- Table: %s (%s records)\n", s.Name, thousands(s.RowCount))
			fmt.Fprintf(&b, "CREATE TABLE %s (\n", database.QuoteIdent(s.Key))
			b.WriteString("  id INTEGER PRIMARY KEY")
			for _, c := range s.Columns {
				fmt.Fprintf(&b, ",\n  %s %s", database.QuoteIdent(c), InferType(c))
			}
			b.WriteString("\n);\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func thousands(n int) string {
	s := fmt.Sprint(n)
	if n < 0 {
		return "-" + thousands(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
