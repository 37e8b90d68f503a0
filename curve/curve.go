package curve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/fisolve/utils"
)

var (
	// ErrNoPillars is returned when a curve is built without any pillar.
	ErrNoPillars = errors.New("curve: at least one pillar is required")
	// ErrPillarIndex is returned by BumpPillar for an index out of range.
	ErrPillarIndex = errors.New("curve: pillar index out of range")
)

// DiscountCurve provides discount factors and zero rates for valuation.
//
// Zero rates are continuously compounded decimals on an ACT/365F time axis.
type DiscountCurve interface {
	Settlement() time.Time
	DF(t time.Time) float64
	ZeroRateAt(t time.Time) float64
	// Shift returns a copy of the curve with spread added to every zero rate.
	Shift(spread float64) DiscountCurve
}

// Curve is a zero curve defined on pillar dates. Zero rates are linearly
// interpolated in time and extrapolated flat on both sides.
type Curve struct {
	settlement time.Time
	dates      []time.Time
	times      []float64
	zeros      []float64
	spread     float64
}

// curveDayCount is the time basis of every curve.
const curveDayCount = utils.Act365F

// NewCurve creates a curve from continuously compounded zero rates keyed by
// pillar date. Pillars on or before settlement are ignored.
func NewCurve(settlement time.Time, zeros map[time.Time]float64) (*Curve, error) {
	dates := make([]time.Time, 0, len(zeros))
	for d := range zeros {
		if d.After(settlement) {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, ErrNoPillars
	}
	utils.SortDates(dates)

	rates := make([]float64, len(dates))
	for i, d := range dates {
		rates[i] = zeros[d]
	}
	return newCurve(settlement, dates, rates), nil
}

// NewFlatCurve creates a curve with the same zero rate at every maturity.
func NewFlatCurve(settlement time.Time, rate float64) *Curve {
	return newCurve(settlement, []time.Time{settlement.AddDate(1, 0, 0)}, []float64{rate})
}

// NewCurveFromDFs creates a curve from explicitly provided discount factors.
// This is primarily for diagnostics, where valuation has to be isolated from
// curve construction by injecting discount factors from another system.
func NewCurveFromDFs(settlement time.Time, dfs map[time.Time]float64) (*Curve, error) {
	zeros := make(map[time.Time]float64, len(dfs))
	for d, df := range dfs {
		if !d.After(settlement) {
			continue
		}
		if !(df > 0) {
			return nil, fmt.Errorf("curve: discount factor at %s must be positive, got %g", d.Format(utils.DateLayout), df)
		}
		t := utils.YearFraction(settlement, d, curveDayCount)
		zeros[d] = -math.Log(df) / t
	}
	return NewCurve(settlement, zeros)
}

func newCurve(settlement time.Time, dates []time.Time, zeros []float64) *Curve {
	times := make([]float64, len(dates))
	for i, d := range dates {
		times[i] = utils.YearFraction(settlement, d, curveDayCount)
	}
	return &Curve{
		settlement: settlement,
		dates:      dates,
		times:      times,
		zeros:      zeros,
	}
}

// Settlement is the date at which DF equals one.
func (c *Curve) Settlement() time.Time {
	return c.settlement
}

// Pillars returns a copy of the pillar dates.
func (c *Curve) Pillars() []time.Time {
	return append([]time.Time(nil), c.dates...)
}

// ZeroRates returns a copy of the pillar zero rates, spread included.
func (c *Curve) ZeroRates() []float64 {
	out := make([]float64, len(c.zeros))
	for i, z := range c.zeros {
		out[i] = z + c.spread
	}
	return out
}

// Spread is the parallel shift accumulated through Shift.
func (c *Curve) Spread() float64 {
	return c.spread
}

// TimeTo returns the curve time from settlement to t in years.
func (c *Curve) TimeTo(t time.Time) float64 {
	return utils.YearFraction(c.settlement, t, curveDayCount)
}

// ZeroRateAt returns the continuously compounded zero rate at t.
func (c *Curve) ZeroRateAt(t time.Time) float64 {
	return c.zeroAt(t, c.TimeTo(t)) + c.spread
}

// DF returns the discount factor from settlement to t. Dates on or before
// settlement discount at one.
func (c *Curve) DF(t time.Time) float64 {
	tau := c.TimeTo(t)
	if tau <= 0 {
		return 1.0
	}
	return math.Exp(-(c.zeroAt(t, tau) + c.spread) * tau)
}

// Shift returns a copy of the curve with spread added to every zero rate.
func (c *Curve) Shift(spread float64) DiscountCurve {
	out := c.clone()
	out.spread += spread
	return out
}

// BumpPillar returns a copy of the curve with the zero rate of pillar i
// moved by dz, leaving the other pillars in place.
func (c *Curve) BumpPillar(i int, dz float64) (*Curve, error) {
	if i < 0 || i >= len(c.zeros) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPillarIndex, i, len(c.zeros))
	}
	out := c.clone()
	out.zeros[i] += dz
	return out, nil
}

func (c *Curve) clone() *Curve {
	return &Curve{
		settlement: c.settlement,
		dates:      c.dates,
		times:      c.times,
		zeros:      append([]float64(nil), c.zeros...),
		spread:     c.spread,
	}
}

// zeroAt interpolates the pillar zeros at t, tau being the curve time of t.
func (c *Curve) zeroAt(t time.Time, tau float64) float64 {
	n := len(c.dates)
	if n == 1 || !t.After(c.dates[0]) {
		return c.zeros[0]
	}
	if !t.Before(c.dates[n-1]) {
		return c.zeros[n-1]
	}

	i := utils.AdjacentIndex(t, c.dates)
	t1, t2 := c.times[i], c.times[i+1]
	z1, z2 := c.zeros[i], c.zeros[i+1]
	return z1 + (z2-z1)*(tau-t1)/(t2-t1)
}
