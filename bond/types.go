package bond

import (
	"time"

	"github.com/meenmo/fisolve/config"
	"github.com/meenmo/fisolve/solver"
	"github.com/meenmo/fisolve/utils"
)

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are in currency units (e.g., EUR), not price-per-100.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Remaining returns the cashflows paid strictly after valueDate, in input
// order.
func Remaining(cfs []Cashflow, valueDate time.Time) []Cashflow {
	out := make([]Cashflow, 0, len(cfs))
	for _, cf := range cfs {
		if cf.Date.After(valueDate) {
			out = append(out, cf)
		}
	}
	return out
}

// Maturity is the latest cashflow date.
func Maturity(cfs []Cashflow) time.Time {
	var maturity time.Time
	for _, cf := range cfs {
		if cf.Date.After(maturity) {
			maturity = cf.Date
		}
	}
	return maturity
}

// Convention describes how a bond yield compounds.
type Convention struct {
	// DayCount measures time to each cashflow (see utils.YearFraction).
	DayCount string
	// Frequency is the number of compounding periods per year.
	Frequency int
}

func (c Convention) yearFraction(start, end time.Time) float64 {
	return utils.YearFraction(start, end, c.DayCount)
}

func (c Convention) frequency() float64 {
	if c.Frequency <= 0 {
		return 1
	}
	return float64(c.Frequency)
}

// Pricer runs the bond calculations that need solver or bump settings.
type Pricer struct {
	cfg config.Config
}

// NewPricer returns a Pricer using cfg.
func NewPricer(cfg config.Config) Pricer {
	return Pricer{cfg: cfg}
}

// DefaultPricer returns a Pricer using the active config.
func DefaultPricer() Pricer {
	return NewPricer(config.GetConfig())
}

func (p Pricer) solver(tolerance float64) solver.Brent {
	return p.cfg.Solver(tolerance)
}
