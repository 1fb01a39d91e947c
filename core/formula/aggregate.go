package formula

import (
	"math"
	"strings"

	"didp/core/utils"

	"github.com/montanaflynn/stats"
)

// numbers returns the numeric cells of col; blanks and text are skipped.
func numbers(d *Dataset, col string) stats.Float64Data {
	var out stats.Float64Data
	for _, v := range d.Column(col) {
		if f, ok := utils.ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// orZero maps the empty-input error of the stats package to 0.
func orZero(v float64, err error) float64 {
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Sum adds the numeric cells of col.
func Sum(d *Dataset, col string) float64 {
	return orZero(stats.Sum(numbers(d, col)))
}

// Average is the arithmetic mean of the numeric cells of col.
func Average(d *Dataset, col string) float64 {
	return orZero(stats.Mean(numbers(d, col)))
}

// Median of the numeric cells of col.
func Median(d *Dataset, col string) float64 {
	return orZero(stats.Median(numbers(d, col)))
}

// StdDev is the sample standard deviation of the numeric cells of col.
func StdDev(d *Dataset, col string) float64 {
	return orZero(stats.StandardDeviationSample(numbers(d, col)))
}

// Max of the numeric cells of col.
func Max(d *Dataset, col string) float64 {
	return orZero(stats.Max(numbers(d, col)))
}

// Min of the numeric cells of col.
func Min(d *Dataset, col string) float64 {
	return orZero(stats.Min(numbers(d, col)))
}

// Count counts numeric cells of col.
func Count(d *Dataset, col string) int {
	return len(numbers(d, col))
}

// CountA counts non-blank cells of col.
func CountA(d *Dataset, col string) int {
	n := 0
	for _, v := range d.Column(col) {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// SumIf adds sumCol over rows whose criteriaCol equals criteria.
func SumIf(d *Dataset, criteriaCol string, criteria any, sumCol string) float64 {
	ci, si := d.ColumnIndex(criteriaCol), d.ColumnIndex(sumCol)
	if ci < 0 || si < 0 {
		return 0
	}
	want := utils.ToString(criteria)
	total := 0.0
	for _, r := range d.Rows {
		if cell(r, ci) != want {
			continue
		}
		if f, ok := utils.ToFloat(cell(r, si)); ok {
			total += f
		}
	}
	return total
}

// CountIf counts rows whose col equals criteria.
func CountIf(d *Dataset, col string, criteria any) int {
	want := utils.ToString(criteria)
	n := 0
	for _, v := range d.Column(col) {
		if v == want {
			n++
		}
	}
	return n
}

// VLookup searches the first column for value and returns the cell at the
// 1-based colIndex. Approximate lookup picks the largest first-column number
// not above value. Nil means no match.
func VLookup(value any, d *Dataset, colIndex int, exact bool) any {
	if colIndex < 1 || colIndex > len(d.Columns) || len(d.Columns) == 0 {
		return nil
	}
	if exact {
		want := utils.ToString(value)
		for _, r := range d.Rows {
			if cell(r, 0) == want {
				return cell(r, colIndex-1)
			}
		}
		return nil
	}

	target, ok := utils.ToFloat(value)
	if !ok {
		return nil
	}
	best := -1
	bestVal := math.Inf(-1)
	for i, r := range d.Rows {
		f, ok := utils.ToFloat(cell(r, 0))
		if ok && f <= target && f > bestVal {
			best, bestVal = i, f
		}
	}
	if best < 0 {
		return nil
	}
	return cell(d.Rows[best], colIndex-1)
}

// IndexMatch returns returnCol of the first row whose matchCol equals value.
func IndexMatch(d *Dataset, matchCol string, value any, returnCol string) any {
	mi, ri := d.ColumnIndex(matchCol), d.ColumnIndex(returnCol)
	if mi < 0 || ri < 0 {
		return nil
	}
	want := utils.ToString(value)
	for _, r := range d.Rows {
		if cell(r, mi) == want {
			return cell(r, ri)
		}
	}
	return nil
}
