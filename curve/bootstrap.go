package curve

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/fisolve/config"
	"github.com/meenmo/fisolve/utils"
)

// ErrDuplicateMaturity is returned when two calibration quotes mature on the
// same date.
var ErrDuplicateMaturity = errors.New("curve: duplicate quote maturity")

// Payment is a dated amount paid by a calibration instrument.
type Payment struct {
	Date   time.Time
	Amount float64
}

// Quote is a calibration instrument: the payments it makes and the price they
// must discount to. Its pillar is the last payment date.
type Quote struct {
	Payments []Payment
	Price    float64
}

// Maturity is the last payment date of q.
func (q Quote) Maturity() time.Time {
	var m time.Time
	for _, p := range q.Payments {
		if p.Date.After(m) {
			m = p.Date
		}
	}
	return m
}

// PV discounts the payments of q that fall after the curve settlement.
func (q Quote) PV(c DiscountCurve) float64 {
	pv := 0.0
	for _, p := range q.Payments {
		if !p.Date.After(c.Settlement()) {
			continue
		}
		pv += p.Amount * c.DF(p.Date)
	}
	return pv
}

// DepositQuote is a simple-interest deposit from settlement to maturity
// priced at par.
func DepositQuote(settlement, maturity time.Time, rate float64, dayCount string) Quote {
	accrual := utils.YearFraction(settlement, maturity, dayCount)
	return Quote{
		Payments: []Payment{{Date: maturity, Amount: 1 + rate*accrual}},
		Price:    1,
	}
}

// ParBondQuote is a bullet bond paying coupon (decimal, annual) frequency
// times a year, priced at par. Coupon dates roll back from maturity.
func ParBondQuote(settlement, maturity time.Time, coupon float64, frequency int, dayCount string) Quote {
	if frequency <= 0 {
		frequency = 1
	}
	months := 12 / frequency

	var dates []time.Time
	for k := 0; ; k++ {
		d := utils.AddMonth(maturity, -months*k)
		if !d.After(settlement) {
			break
		}
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	payments := make([]Payment, 0, len(dates))
	prev := settlement
	for i, d := range dates {
		amount := coupon * utils.YearFraction(prev, d, dayCount)
		if i == len(dates)-1 {
			amount += 1
		}
		payments = append(payments, Payment{Date: d, Amount: amount})
		prev = d
	}
	return Quote{Payments: payments, Price: 1}
}

// Bootstrap calibrates one zero rate per quote, in maturity order, so that
// each quote reprices to its price. It uses the active config.
func Bootstrap(settlement time.Time, quotes []Quote) (*Curve, error) {
	return BootstrapWith(config.GetConfig(), settlement, quotes)
}

// BootstrapWith is Bootstrap with explicit settings. Each pillar is solved
// with the classic Brent solver on [BootstrapLow, BootstrapHigh].
func BootstrapWith(cfg config.Config, settlement time.Time, quotes []Quote) (*Curve, error) {
	if len(quotes) == 0 {
		return nil, ErrNoPillars
	}

	sorted := append([]Quote(nil), quotes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Maturity().Before(sorted[j].Maturity())
	})

	dates := make([]time.Time, len(sorted))
	for i, q := range sorted {
		m := q.Maturity()
		if !m.After(settlement) {
			return nil, fmt.Errorf("Bootstrap: quote %d matures on %s, not after settlement %s", i, m.Format(utils.DateLayout), settlement.Format(utils.DateLayout))
		}
		if i > 0 && m.Equal(dates[i-1]) {
			return nil, fmt.Errorf("Bootstrap: %w %s", ErrDuplicateMaturity, m.Format(utils.DateLayout))
		}
		dates[i] = m
	}

	s := cfg.Solver(cfg.BootstrapTolerance)
	solvedZeros := make([]float64, 0, len(sorted))
	for i, q := range sorted {
		// Later pillars do not affect payments up to dates[i], so a curve
		// over the first i+1 pillars is enough.
		partial := newCurve(settlement, dates[:i+1], make([]float64, i+1))
		copy(partial.zeros, solvedZeros)

		f := func(z float64) float64 {
			partial.zeros[i] = z
			return q.PV(partial) - q.Price
		}
		res, err := s.Solve(f, cfg.BootstrapLow, cfg.BootstrapHigh)
		if err != nil {
			return nil, fmt.Errorf("Bootstrap: pillar %d (%s): %w", i, dates[i].Format(utils.DateLayout), err)
		}
		solvedZeros = append(solvedZeros, res.Root)
	}

	return newCurve(settlement, dates, solvedZeros), nil
}
