package formula

import (
	"fmt"
	"math"

	"didp/core/utils"
)

// Round rounds half away from zero to places decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Variance is actual minus expected.
func Variance(expected, actual float64) float64 {
	return Round(actual-expected, 4)
}

// VariancePct is the variance relative to |expected| in percent. A zero
// expected value yields 0 when actual is also 0 and +Inf otherwise.
func VariancePct(expected, actual float64) float64 {
	if expected == 0 {
		if actual == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return Round((actual-expected)/math.Abs(expected)*100, 4)
}

// IsMatched reports whether a and b differ by at most tolerance.
func IsMatched(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// MatchStatus returns "Match" or "Break: +1.23" style text.
func MatchStatus(a, b, tolerance float64) string {
	diff := b - a
	if math.Abs(diff) <= tolerance {
		return "Match"
	}
	return fmt.Sprintf("Break: %+.2f", diff)
}

// ToleranceMatch accepts an absolute or a relative (fraction of |a|) tolerance.
func ToleranceMatch(a, b, absTol, pctTol float64) bool {
	diff := math.Abs(a - b)
	if absTol > 0 && diff <= absTol {
		return true
	}
	if pctTol > 0 && a != 0 && diff/math.Abs(a) <= pctTol {
		return true
	}
	return diff == 0
}

// BreakSummary aggregates expected versus actual columns.
type BreakSummary struct {
	TotalRecords  int     `json:"total_records"`
	Matched       int     `json:"matched"`
	Breaks        int     `json:"breaks"`
	MatchRate     float64 `json:"match_rate"`
	TotalVariance float64 `json:"total_variance"`
	AbsVariance   float64 `json:"abs_variance"`
	MaxVariance   float64 `json:"max_variance"`
}

// SummarizeBreaks compares expectedCol and actualCol row by row; blank or
// non-numeric cells count as 0.
func SummarizeBreaks(d *Dataset, expectedCol, actualCol string, tolerance float64) BreakSummary {
	ei, ai := d.ColumnIndex(expectedCol), d.ColumnIndex(actualCol)
	s := BreakSummary{TotalRecords: len(d.Rows)}
	if ei < 0 || ai < 0 || len(d.Rows) == 0 {
		return s
	}
	for _, r := range d.Rows {
		e, _ := utils.ToFloat(cell(r, ei))
		a, _ := utils.ToFloat(cell(r, ai))
		v := a - e
		if math.Abs(v) <= tolerance {
			s.Matched++
		}
		s.TotalVariance += v
		s.AbsVariance += math.Abs(v)
		s.MaxVariance = math.Max(s.MaxVariance, math.Abs(v))
	}
	s.Breaks = s.TotalRecords - s.Matched
	s.MatchRate = Round(float64(s.Matched)/float64(s.TotalRecords)*100, 2)
	s.TotalVariance = Round(s.TotalVariance, 2)
	s.AbsVariance = Round(s.AbsVariance, 2)
	s.MaxVariance = Round(s.MaxVariance, 2)
	return s
}
