package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/fisolve/curve"
)

// MacaulayDuration is the present-value weighted time to the cashflows paid
// after valueDate. With one cashflow left it is the time to that payment.
func MacaulayDuration(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	remaining := Remaining(cfs, valueDate)
	switch len(remaining) {
	case 0:
		return 0
	case 1:
		return conv.yearFraction(valueDate, remaining[0].Date)
	}

	freq := conv.frequency()
	weighted, pv := 0.0, 0.0
	for _, cf := range remaining {
		t := conv.yearFraction(valueDate, cf.Date)
		v := cf.Amount() / math.Pow(1+yield/freq, freq*t)
		weighted += t * v
		pv += v
	}
	if pv == 0 {
		return 0
	}
	return weighted / pv
}

// ModifiedDuration uses the active config bump size.
func ModifiedDuration(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	return DefaultPricer().ModifiedDuration(cfs, valueDate, yield, conv)
}

// Convexity uses the active config bump size.
func Convexity(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	return DefaultPricer().Convexity(cfs, valueDate, yield, conv)
}

// ModifiedDuration is the central difference
//
//	(P(y-dy) - P(y+dy)) / dy / (P(y-dy) + P(y+dy))
//
// with dy the configured bump.
func (p Pricer) ModifiedDuration(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	dy := p.cfg.BumpSize
	down := FullPriceFromYield(cfs, valueDate, yield-dy, conv)
	up := FullPriceFromYield(cfs, valueDate, yield+dy, conv)
	if up+down == 0 {
		return 0
	}
	return (down - up) / dy / (down + up)
}

// Convexity is (P(y+dy) + P(y-dy) - 2P) / P / dy².
func (p Pricer) Convexity(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	dy := p.cfg.BumpSize
	price := FullPriceFromYield(cfs, valueDate, yield, conv)
	if price == 0 {
		return 0
	}
	down := FullPriceFromYield(cfs, valueDate, yield-dy, conv)
	up := FullPriceFromYield(cfs, valueDate, yield+dy, conv)
	return (up + down - 2*price) / price / (dy * dy)
}

// DV01 is the price change for a one basis point fall in yield, from a
// central difference over the configured bump.
func (p Pricer) DV01(cfs []Cashflow, valueDate time.Time, yield float64, conv Convention) float64 {
	dy := p.cfg.BumpSize
	down := FullPriceFromYield(cfs, valueDate, yield-dy, conv)
	up := FullPriceFromYield(cfs, valueDate, yield+dy, conv)
	return (down - up) / (2 * dy) * 1e-4
}

// KeyRate is the sensitivity of a bond price to one curve pillar.
type KeyRate struct {
	Pillar time.Time
	// PriceChange is P(bumped) - P for a bump of the pillar zero rate.
	PriceChange float64
	// Duration is -PriceChange / P / bump.
	Duration float64
}

// KeyRateDurations bumps each pillar zero rate of c in turn by the configured
// bump and reprices the bond at zero spread spread.
func (p Pricer) KeyRateDurations(cfs []Cashflow, c *curve.Curve, valueDate time.Time, spread float64) ([]KeyRate, error) {
	dz := p.cfg.BumpSize
	base := PriceFromZeroSpread(cfs, c, valueDate, spread)
	if base == 0 {
		return nil, fmt.Errorf("KeyRateDurations: bond has no value after %s", valueDate.Format("2006-01-02"))
	}

	pillars := c.Pillars()
	out := make([]KeyRate, 0, len(pillars))
	for i, d := range pillars {
		bumped, err := c.BumpPillar(i, dz)
		if err != nil {
			return nil, fmt.Errorf("KeyRateDurations: %w", err)
		}
		change := PriceFromZeroSpread(cfs, bumped, valueDate, spread) - base
		out = append(out, KeyRate{
			Pillar:      d,
			PriceChange: change,
			Duration:    -change / base / dz,
		})
	}
	return out, nil
}
