package utils

import (
	"strings"
	"time"
)

// Day count conventions understood by YearFraction.
const (
	Act360     = "ACT/360"
	Act365F    = "ACT/365F"
	ActActISDA = "ACT/ACT"
	Thirty360  = "30/360"
	ThirtyE360 = "30E/360"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, ACT/ACT (ISDA), 30E/360, 30/360.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch strings.ToUpper(strings.TrimSpace(convention)) {
	case Act360:
		return Days(start, end) / 360.0
	case Act365F, "ACT/365":
		return Days(start, end) / 365.0
	case ActActISDA, "ACT/ACT ISDA":
		return actActISDA(start, end)
	case ThirtyE360, Thirty360:
		// 30E/360 ISDA (Eurobond basis)
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}

// YearFractionICMA is ACT/ACT ICMA: days in [start, end] over the days of the
// reference coupon period, divided by the coupon frequency.
func YearFractionICMA(start, end, refStart, refEnd time.Time, frequency int) float64 {
	period := Days(refStart, refEnd)
	if period <= 0 || frequency <= 0 {
		return YearFraction(start, end, Act365F)
	}
	return Days(start, end) / period / float64(frequency)
}

func actActISDA(start, end time.Time) float64 {
	if end.Before(start) {
		return -actActISDA(end, start)
	}
	if start.Year() == end.Year() {
		return Days(start, end) / daysInYear(start.Year())
	}

	nextYear := time.Date(start.Year()+1, time.January, 1, 0, 0, 0, 0, start.Location())
	thisYear := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	yf := Days(start, nextYear) / daysInYear(start.Year())
	yf += float64(end.Year() - start.Year() - 1)
	yf += Days(thisYear, end) / daysInYear(end.Year())
	return yf
}

func daysInYear(year int) float64 {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}
