package formula

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, bool) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

func isBusinessDay(t time.Time, holidays map[string]bool) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday && !holidays[t.Format(dateLayout)]
}

func holidaySet(holidays []string) map[string]bool {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[h] = true
	}
	return set
}

// SettlementDate adds the business days of a "T+n" cycle to tradeDate,
// skipping weekends and holidays. Unparseable dates are returned unchanged
// and an unparseable cycle means T+2.
func SettlementDate(tradeDate, cycle string, holidays []string) string {
	t, ok := parseDate(tradeDate)
	if !ok {
		return tradeDate
	}
	days, err := strconv.Atoi(strings.TrimPrefix(strings.TrimPrefix(strings.ToUpper(cycle), "T+"), "T"))
	if err != nil {
		days = 2
	}
	set := holidaySet(holidays)
	for n := 0; n < days; {
		t = t.AddDate(0, 0, 1)
		if isBusinessDay(t, set) {
			n++
		}
	}
	return t.Format(dateLayout)
}

// DaysToSettlement counts business days after tradeDate up to settleDate.
func DaysToSettlement(tradeDate, settleDate string, holidays []string) int {
	start, ok1 := parseDate(tradeDate)
	end, ok2 := parseDate(settleDate)
	if !ok1 || !ok2 {
		return 0
	}
	set := holidaySet(holidays)
	n := 0
	for t := start; t.Before(end); {
		t = t.AddDate(0, 0, 1)
		if isBusinessDay(t, set) {
			n++
		}
	}
	return n
}

// DayCountFraction supports ACT/365 (default), ACT/360 and 30/360.
func DayCountFraction(startDate, endDate, convention string) float64 {
	start, ok1 := parseDate(startDate)
	end, ok2 := parseDate(endDate)
	if !ok1 || !ok2 {
		return 0
	}
	switch strings.ToUpper(convention) {
	case "30/360":
		d1 := min(start.Day(), 30)
		d2 := end.Day()
		if d1 == 30 {
			d2 = min(d2, 30)
		}
		days := (end.Year()-start.Year())*360 + (int(end.Month())-int(start.Month()))*30 + (d2 - d1)
		return Round(float64(days)/360, 6)
	case "ACT/360":
		return Round(end.Sub(start).Hours()/24/360, 6)
	default:
		return Round(end.Sub(start).Hours()/24/365, 6)
	}
}

// AccruedInterest is face * coupon * days / basis, where the basis is 360
// for ACT/360 and 30/360 and 365 otherwise.
func AccruedInterest(face, couponRate float64, days int, convention string) float64 {
	basis := 365.0
	switch strings.ToUpper(convention) {
	case "ACT/360", "30/360":
		basis = 360
	}
	return Round(face*couponRate*float64(days)/basis, 2)
}

// CleanPrice strips accrued interest expressed per 100 of face.
func CleanPrice(dirty, accrued, face float64) float64 {
	if face == 0 {
		face = 100
	}
	return Round(dirty-accrued/face*100, 4)
}

// DirtyPrice adds accrued interest expressed per 100 of face.
func DirtyPrice(clean, accrued, face float64) float64 {
	if face == 0 {
		face = 100
	}
	return Round(clean+accrued/face*100, 4)
}
