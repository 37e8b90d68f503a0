package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/fisolve/utils"
)

// ForwardYieldInput holds the parameters needed to compute the forward yield
// of a bond delivered via a futures contract.
type ForwardYieldInput struct {
	// SettlementDate is the futures delivery date (e.g. 2026-03-10 for Eurex).
	SettlementDate time.Time
	// FuturesPrice is the clean futures price (e.g. 128.20).
	FuturesPrice float64
	// ConversionFactor maps the futures price to the CTD bond's invoice price.
	ConversionFactor float64
	// CouponRate is the annual coupon in percent (e.g. 2.5 for 2.5%).
	CouponRate float64
	// CouponFrequency is coupons per year (1 = annual, 2 = semi-annual).
	CouponFrequency int
	// Cashflows are the remaining cash flows after settlement, per 100.
	Cashflows []Cashflow
}

// ForwardYieldResult is the output of ComputeForwardYield.
type ForwardYieldResult struct {
	// ForwardYield is the annualised yield in percent (e.g. 2.83).
	ForwardYield float64
	// InvoicePrice is futures_price × conversion_factor + accrued_interest (per-100).
	InvoicePrice float64
	// AccruedInterest is the accrued coupon at settlement (per-100).
	AccruedInterest float64
	// Iterations is the number of Brent steps taken.
	Iterations int
}

const (
	forwardYieldTolerance = 1e-12
	forwardYieldFloor     = -0.05
	forwardYieldCeiling   = 0.50
)

// ComputeForwardYield uses the active config.
func ComputeForwardYield(in ForwardYieldInput) (ForwardYieldResult, error) {
	return DefaultPricer().ComputeForwardYield(in)
}

// ComputeForwardYield solves for the yield y such that the ACT/ACT ICMA dirty
// price equals the invoice price of the futures delivery. The root is found
// on [-5%, 50%] with the classic Brent solver under the iteration settings
// of p.
func (p Pricer) ComputeForwardYield(in ForwardYieldInput) (ForwardYieldResult, error) {
	if in.SettlementDate.IsZero() {
		return ForwardYieldResult{}, fmt.Errorf("ComputeForwardYield: SettlementDate is required")
	}
	if len(in.Cashflows) == 0 {
		return ForwardYieldResult{}, fmt.Errorf("ComputeForwardYield: Cashflows are required")
	}
	if in.CouponFrequency <= 0 || 12%in.CouponFrequency != 0 {
		return ForwardYieldResult{}, fmt.Errorf("ComputeForwardYield: CouponFrequency must divide 12, got %d", in.CouponFrequency)
	}

	// Previous coupon date: first cashflow minus one coupon period.
	prevCoupon := in.Cashflows[0].Date.AddDate(0, -12/in.CouponFrequency, 0)
	coupon := in.CouponRate / float64(in.CouponFrequency)
	accrued := AccruedInterest(coupon, prevCoupon, in.Cashflows[0].Date, in.SettlementDate)
	invoicePrice := in.FuturesPrice*in.ConversionFactor + accrued

	f := func(y float64) float64 {
		return ICMADirtyPrice(y, in.SettlementDate, prevCoupon, in.CouponFrequency, in.Cashflows) - invoicePrice
	}
	res, err := p.solver(forwardYieldTolerance).Solve(f, forwardYieldFloor, forwardYieldCeiling)
	if err != nil {
		return ForwardYieldResult{}, fmt.Errorf("ComputeForwardYield: %w", err)
	}

	return ForwardYieldResult{
		ForwardYield:    res.Root * 100.0,
		InvoicePrice:    invoicePrice,
		AccruedInterest: accrued,
		Iterations:      res.Iterations,
	}, nil
}

// ICMADirtyPrice discounts cfs at yield y with ACT/ACT ICMA period counting:
//
//	t_1   = f · ICMA(settlement, cf[0]; prevCoupon, cf[0])
//	t_k   = t_1 + (k − 1)
//	price = Σ CF_k / (1 + y/f)^t_k
func ICMADirtyPrice(y float64, settlement, prevCoupon time.Time, frequency int, cfs []Cashflow) float64 {
	if len(cfs) == 0 {
		return 0
	}
	freq := float64(frequency)
	if frequency <= 0 {
		freq = 1
	}

	t1 := freq * utils.YearFractionICMA(settlement, cfs[0].Date, prevCoupon, cfs[0].Date, int(freq))

	price := 0.0
	for i, cf := range cfs {
		price += cf.Amount() / math.Pow(1.0+y/freq, t1+float64(i))
	}
	return price
}

// daysBetween returns the number of calendar days from start to end (ACT).
func daysBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours() / 24))
}
