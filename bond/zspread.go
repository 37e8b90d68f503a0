package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/fisolve/curve"
)

// PriceFromZeroSpread discounts the cashflows paid after valueDate on c with
// every zero rate shifted by spread. Discount factors are forward from
// valueDate.
func PriceFromZeroSpread(cfs []Cashflow, c curve.DiscountCurve, valueDate time.Time, spread float64) float64 {
	shifted := c.Shift(spread)
	base := shifted.DF(valueDate)
	pv := 0.0
	for _, cf := range Remaining(cfs, valueDate) {
		pv += cf.Amount() * shifted.DF(cf.Date) / base
	}
	return pv
}

// ZeroSpread uses the active config.
func ZeroSpread(cfs []Cashflow, c curve.DiscountCurve, valueDate time.Time, fullPrice float64) (float64, error) {
	return DefaultPricer().ZeroSpread(cfs, c, valueDate, fullPrice)
}

// ZeroSpread solves for the parallel zero-rate shift at which the bond
// reprices to fullPrice. The search starts on [ZeroSpreadLow, ZeroSpreadHigh]
// and widens by BracketGrowth up to BracketAttempts times.
func (p Pricer) ZeroSpread(cfs []Cashflow, c curve.DiscountCurve, valueDate time.Time, fullPrice float64) (float64, error) {
	if c == nil {
		return 0, fmt.Errorf("ZeroSpread: curve is required")
	}
	remaining := Remaining(cfs, valueDate)
	if len(remaining) == 0 {
		return 0, nil
	}

	f := func(s float64) float64 {
		return PriceFromZeroSpread(remaining, c, valueDate, s) - fullPrice
	}
	res, err := p.solver(p.cfg.YieldTolerance).SolveExpanding(f, p.cfg.ZeroSpreadLow, p.cfg.ZeroSpreadHigh, p.cfg.BracketGrowth, p.cfg.BracketAttempts)
	if err != nil {
		return 0, fmt.Errorf("ZeroSpread: bond zero spread does not converge: %w", err)
	}
	return res.Root, nil
}

// ZeroSpreadRisk is the price change for a one basis point rise in the zero
// spread.
func ZeroSpreadRisk(cfs []Cashflow, c curve.DiscountCurve, valueDate time.Time, spread float64) float64 {
	return PriceFromZeroSpread(cfs, c, valueDate, spread+1e-4) - PriceFromZeroSpread(cfs, c, valueDate, spread)
}
