package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/solver"
	"github.com/meenmo/fisolve/utils"
)

var settlement = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func yearsFrom(t time.Time) float64 {
	return utils.YearFraction(settlement, t, utils.Act365F)
}

func TestFlatCurve(t *testing.T) {
	t.Parallel()

	c := curve.NewFlatCurve(settlement, 0.03)
	for _, d := range []time.Time{settlement.AddDate(0, 3, 0), settlement.AddDate(5, 0, 0), settlement.AddDate(40, 0, 0)} {
		assert.InDelta(t, math.Exp(-0.03*yearsFrom(d)), c.DF(d), 1e-15)
		assert.InDelta(t, 0.03, c.ZeroRateAt(d), 1e-15)
	}
	assert.Equal(t, 1.0, c.DF(settlement))
	assert.Equal(t, 1.0, c.DF(settlement.AddDate(0, 0, -10)))
}

func TestCurve_InterpolationAndExtrapolation(t *testing.T) {
	t.Parallel()

	d1 := settlement.AddDate(1, 0, 0)
	d2 := settlement.AddDate(3, 0, 0)
	c, err := curve.NewCurve(settlement, map[time.Time]float64{
		d2:         0.04,
		d1:         0.02,
		settlement: 0.5, // ignored
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d1, d2}, c.Pillars())

	mid := settlement.AddDate(2, 0, 0)
	t1, t2, tm := yearsFrom(d1), yearsFrom(d2), yearsFrom(mid)
	want := 0.02 + 0.02*(tm-t1)/(t2-t1)
	assert.InDelta(t, want, c.ZeroRateAt(mid), 1e-15)

	assert.InDelta(t, 0.02, c.ZeroRateAt(settlement.AddDate(0, 1, 0)), 1e-15)
	assert.InDelta(t, 0.04, c.ZeroRateAt(settlement.AddDate(10, 0, 0)), 1e-15)

	_, err = curve.NewCurve(settlement, map[time.Time]float64{settlement: 0.01})
	assert.ErrorIs(t, err, curve.ErrNoPillars)
}

func TestCurve_InteriorPillars(t *testing.T) {
	t.Parallel()

	d1 := settlement.AddDate(1, 0, 0)
	d2 := settlement.AddDate(2, 0, 0)
	d3 := settlement.AddDate(5, 0, 0)
	c, err := curve.NewCurve(settlement, map[time.Time]float64{d1: 0.02, d2: 0.035, d3: 0.03})
	require.NoError(t, err)

	assert.InDelta(t, 0.02, c.ZeroRateAt(d1), 1e-15)
	assert.InDelta(t, 0.035, c.ZeroRateAt(d2), 1e-15)
	assert.InDelta(t, 0.03, c.ZeroRateAt(d3), 1e-15)

	// Each segment interpolates between its own two pillars.
	for _, d := range []time.Time{settlement.AddDate(1, 6, 0), settlement.AddDate(3, 3, 0)} {
		lo, hi, zlo, zhi := d1, d2, 0.02, 0.035
		if d.After(d2) {
			lo, hi, zlo, zhi = d2, d3, 0.035, 0.03
		}
		w := (yearsFrom(d) - yearsFrom(lo)) / (yearsFrom(hi) - yearsFrom(lo))
		want := zlo + (zhi-zlo)*w
		assert.InDelta(t, want, c.ZeroRateAt(d), 1e-15)
		assert.InDelta(t, math.Exp(-want*yearsFrom(d)), c.DF(d), 1e-15)
	}
}

func TestNewCurveFromDFs(t *testing.T) {
	t.Parallel()

	d1 := settlement.AddDate(1, 0, 0)
	d2 := settlement.AddDate(2, 0, 0)
	c, err := curve.NewCurveFromDFs(settlement, map[time.Time]float64{
		settlement: 1.0,
		d1:         0.97,
		d2:         0.93,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.97, c.DF(d1), 1e-14)
	assert.InDelta(t, 0.93, c.DF(d2), 1e-14)

	_, err = curve.NewCurveFromDFs(settlement, map[time.Time]float64{d1: -0.5})
	assert.Error(t, err)
}

func TestCurve_ShiftAndBump(t *testing.T) {
	t.Parallel()

	d1 := settlement.AddDate(1, 0, 0)
	d2 := settlement.AddDate(5, 0, 0)
	c, err := curve.NewCurve(settlement, map[time.Time]float64{d1: 0.02, d2: 0.03})
	require.NoError(t, err)

	shifted := c.Shift(0.01)
	for _, d := range []time.Time{d1, settlement.AddDate(3, 0, 0), d2} {
		assert.InDelta(t, c.DF(d)*math.Exp(-0.01*yearsFrom(d)), shifted.DF(d), 1e-15)
	}
	assert.Equal(t, 0.0, c.Spread(), "Shift must not modify the receiver")
	assert.InDelta(t, 0.02, shifted.Shift(-0.01).ZeroRateAt(d1), 1e-15)

	bumped, err := c.BumpPillar(1, 0.0001)
	require.NoError(t, err)
	assert.InDelta(t, 0.0301, bumped.ZeroRateAt(d2), 1e-15)
	assert.InDelta(t, 0.02, bumped.ZeroRateAt(d1), 1e-15)
	assert.InDelta(t, 0.03, c.ZeroRateAt(d2), 1e-15)
	assert.InDeltaSlice(t, []float64{0.02, 0.0301}, bumped.ZeroRates(), 1e-15)

	_, err = c.BumpPillar(2, 0.0001)
	assert.ErrorIs(t, err, curve.ErrPillarIndex)
}

func TestBootstrap_RepricesQuotes(t *testing.T) {
	t.Parallel()

	quotes := []curve.Quote{
		curve.ParBondQuote(settlement, settlement.AddDate(5, 0, 0), 0.031, 1, utils.Act365F),
		curve.DepositQuote(settlement, settlement.AddDate(0, 6, 0), 0.025, utils.Act360),
		curve.DepositQuote(settlement, settlement.AddDate(1, 0, 0), 0.027, utils.Act360),
		curve.ParBondQuote(settlement, settlement.AddDate(2, 0, 0), 0.028, 2, utils.Act365F),
		curve.ParBondQuote(settlement, settlement.AddDate(10, 0, 0), 0.034, 1, utils.Act365F),
	}

	c, err := curve.Bootstrap(settlement, quotes)
	require.NoError(t, err)
	require.Len(t, c.Pillars(), len(quotes))

	for i, q := range quotes {
		assert.InDelta(t, q.Price, q.PV(c), 1e-10, "quote %d", i)
	}
	zeros := c.ZeroRates()
	for i := 1; i < len(zeros); i++ {
		assert.Greater(t, zeros[i], 0.0)
		assert.Less(t, zeros[i], 0.05)
	}
}

func TestBootstrap_Errors(t *testing.T) {
	t.Parallel()

	_, err := curve.Bootstrap(settlement, nil)
	assert.ErrorIs(t, err, curve.ErrNoPillars)

	m := settlement.AddDate(1, 0, 0)
	_, err = curve.Bootstrap(settlement, []curve.Quote{
		curve.DepositQuote(settlement, m, 0.02, utils.Act360),
		curve.DepositQuote(settlement, m, 0.03, utils.Act360),
	})
	assert.ErrorIs(t, err, curve.ErrDuplicateMaturity)

	_, err = curve.Bootstrap(settlement, []curve.Quote{
		{Payments: []curve.Payment{{Date: settlement, Amount: 1}}, Price: 1},
	})
	assert.Error(t, err)

	// Paying 1.02 for a price of 10 needs a zero rate far below the bracket.
	_, err = curve.Bootstrap(settlement, []curve.Quote{
		{Payments: []curve.Payment{{Date: m, Amount: 1.02}}, Price: 10},
	})
	assert.ErrorIs(t, err, solver.ErrInvalidBracket)
	assert.Contains(t, err.Error(), "pillar 0")
}

func TestParBondQuote_Schedule(t *testing.T) {
	t.Parallel()

	q := curve.ParBondQuote(settlement, settlement.AddDate(2, 0, 0), 0.04, 2, utils.Thirty360)
	require.Len(t, q.Payments, 4)
	assert.Equal(t, settlement.AddDate(0, 6, 0), q.Payments[0].Date)
	assert.InDelta(t, 0.02, q.Payments[0].Amount, 1e-15)
	assert.InDelta(t, 1.02, q.Payments[3].Amount, 1e-15)
	assert.Equal(t, settlement.AddDate(2, 0, 0), q.Maturity())
}
