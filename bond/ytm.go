package bond

import (
	"fmt"
	"math"
	"time"
)

// yieldFloor keeps the yield bracket off the pole of the discount factor.
const yieldFloor = -1 + 1e-6

// FullPriceFromYield discounts the cashflows paid after valueDate at yield.
//
// A single remaining cashflow paid within one year is discounted with simple
// interest, a single later one with annual compounding. Otherwise yield
// compounds Frequency times a year. Nothing left to pay prices at zero.
func FullPriceFromYield(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	remaining := Remaining(cfs, valueDate)
	switch len(remaining) {
	case 0:
		return 0
	case 1:
		cf := remaining[0]
		t := conv.yearFraction(valueDate, cf.Date)
		if !cf.Date.After(valueDate.AddDate(1, 0, 0)) {
			return cf.Amount() / (1 + yield*t)
		}
		return cf.Amount() / math.Pow(1+yield, t)
	}

	freq := conv.frequency()
	npv := 0.0
	for _, cf := range remaining {
		t := conv.yearFraction(valueDate, cf.Date)
		npv += cf.Amount() / math.Pow(1+yield/freq, freq*t)
	}
	return npv
}

// YieldFromFullPrice solves for the yield at which FullPriceFromYield equals
// fullPrice. It uses the active config.
func YieldFromFullPrice(cfs []Cashflow, valueDate time.Time, fullPrice float64, conv Convention) (float64, error) {
	return DefaultPricer().YieldFromFullPrice(cfs, valueDate, fullPrice, conv)
}

// YieldFromFullPrice solves for the yield at which FullPriceFromYield equals
// fullPrice, on [YieldLow, YieldHigh]. A single cashflow paid within one year
// is priced with simple interest, unbounded at -1/T, so the lower end moves
// just above it. Compounded prices are unbounded at -1, and the lower end
// stays above that.
func (p Pricer) YieldFromFullPrice(cfs []Cashflow, valueDate time.Time, fullPrice float64, conv Convention) (float64, error) {
	remaining := Remaining(cfs, valueDate)
	if len(remaining) == 0 {
		return 0, nil
	}

	left, right := math.Max(p.cfg.YieldLow, yieldFloor), p.cfg.YieldHigh
	if len(remaining) == 1 && !remaining[0].Date.After(valueDate.AddDate(1, 0, 0)) {
		if t := conv.yearFraction(valueDate, remaining[0].Date); t > 0 {
			left = yieldFloor / t
		}
	}

	f := func(y float64) float64 {
		return FullPriceFromYield(remaining, valueDate, y, conv) - fullPrice
	}
	res, err := p.solver(p.cfg.YieldTolerance).Solve(f, left, right)
	if err != nil {
		return 0, fmt.Errorf("YieldFromFullPrice: bond yield does not converge: %w", err)
	}
	return res.Root, nil
}

// AccruedInterest is the coupon accrued from the last coupon date to
// valueDate, linear in calendar days.
func AccruedInterest(coupon float64, lastCoupon, nextCoupon, valueDate time.Time) float64 {
	period := daysBetween(lastCoupon, nextCoupon)
	if period <= 0 || !valueDate.After(lastCoupon) {
		return 0
	}
	return coupon * float64(daysBetween(lastCoupon, valueDate)) / float64(period)
}

// CleanPriceFromYield is FullPriceFromYield less accrued interest.
func CleanPriceFromYield(cfs []Cashflow, valueDate time.Time, yield, accrued float64, conv Convention) float64 {
	return FullPriceFromYield(cfs, valueDate, yield, conv) - accrued
}
