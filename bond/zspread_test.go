package bond_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/config"
	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/solver"
	"github.com/meenmo/fisolve/utils"
)

func testCurve(t *testing.T, settlement time.Time) *curve.Curve {
	t.Helper()
	c, err := curve.NewCurve(settlement, map[time.Time]float64{
		settlement.AddDate(0, 6, 0):  0.019,
		settlement.AddDate(1, 0, 0):  0.021,
		settlement.AddDate(2, 0, 0):  0.024,
		settlement.AddDate(5, 0, 0):  0.027,
		settlement.AddDate(10, 0, 0): 0.030,
		settlement.AddDate(30, 0, 0): 0.032,
	})
	require.NoError(t, err)
	return c
}

func TestZeroSpread_RoundTrip(t *testing.T) {
	t.Parallel()

	settlement := date(2025, 3, 17)
	c := testCurve(t, settlement)
	cfs := bullet(date(2024, 6, 15), 10, 2, 4.0)

	for _, s := range []float64{-0.01, 0, 0.0042, 0.03, 0.2} {
		price := bond.PriceFromZeroSpread(cfs, c, settlement, s)
		got, err := bond.ZeroSpread(cfs, c, settlement, price)
		require.NoError(t, err, "spread %g", s)
		assert.InDelta(t, s, got, 1e-9, "spread %g", s)
	}
}

func TestPriceFromZeroSpread_FlatCurve(t *testing.T) {
	t.Parallel()

	settlement := date(2025, 1, 2)
	c := curve.NewFlatCurve(settlement, 0.03)
	cfs := bullet(settlement, 3, 1, 5)

	want := 0.0
	for _, cf := range cfs {
		tt := utils.YearFraction(settlement, cf.Date, utils.Act365F)
		want += cf.Amount() * math.Exp(-0.035*tt)
	}
	assert.InDelta(t, want, bond.PriceFromZeroSpread(cfs, c, settlement, 0.005), 1e-10)

	// Discounting is forward from the value date.
	later := date(2026, 1, 2)
	fwd := 0.0
	for _, cf := range bond.Remaining(cfs, later) {
		tt := utils.YearFraction(later, cf.Date, utils.Act365F)
		fwd += cf.Amount() * math.Exp(-0.03*tt)
	}
	assert.InDelta(t, fwd, bond.PriceFromZeroSpread(cfs, c, later, 0), 1e-10)
}

func TestZeroSpread_ExpandsBracket(t *testing.T) {
	t.Parallel()

	settlement := date(2025, 1, 2)
	c := curve.NewFlatCurve(settlement, 0.02)
	cfs := bullet(settlement, 5, 1, 4)
	price := bond.PriceFromZeroSpread(cfs, c, settlement, 0.05)

	cfg := config.DefaultConfig
	cfg.ZeroSpreadLow, cfg.ZeroSpreadHigh = 0, 0.01
	cfg.BracketGrowth = 2
	cfg.BracketAttempts = 5

	s, err := bond.NewPricer(cfg).ZeroSpread(cfs, c, settlement, price)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, s, 1e-9)

	cfg.BracketAttempts = 0
	_, err = bond.NewPricer(cfg).ZeroSpread(cfs, c, settlement, price)
	require.Error(t, err)
	assert.ErrorIs(t, err, solver.ErrInvalidBracket)
	assert.Contains(t, err.Error(), "does not converge")
}

func TestZeroSpread_EdgeCases(t *testing.T) {
	t.Parallel()

	settlement := date(2025, 1, 2)
	cfs := bullet(date(2020, 1, 2), 3, 1, 4)

	_, err := bond.ZeroSpread(cfs, nil, settlement, 100)
	assert.Error(t, err)

	s, err := bond.ZeroSpread(cfs, curve.NewFlatCurve(settlement, 0.02), settlement, 100)
	require.NoError(t, err)
	assert.Zero(t, s, "matured bond")
}

func TestZeroSpreadRisk(t *testing.T) {
	t.Parallel()

	settlement := date(2025, 3, 17)
	c := testCurve(t, settlement)
	cfs := bullet(date(2024, 6, 15), 10, 2, 4.0)

	risk := bond.ZeroSpreadRisk(cfs, c, settlement, 0.004)
	assert.Less(t, risk, 0.0)

	price := bond.PriceFromZeroSpread(cfs, c, settlement, 0.004)
	// Roughly duration times price times one basis point.
	assert.InEpsilon(t, -8.0*price*1e-4, risk, 0.15)
}
