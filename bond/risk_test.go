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
	"github.com/meenmo/fisolve/utils"
)

func TestDurations(t *testing.T) {
	t.Parallel()

	valueDate := date(2025, 3, 17)
	cfs := bullet(date(2024, 6, 15), 10, 2, 4.0)
	const y = 0.045

	mac := bond.MacaulayDuration(cfs, valueDate, y, semiAnnual)
	mod := bond.ModifiedDuration(cfs, valueDate, y, semiAnnual)
	assert.Greater(t, mac, 7.0)
	assert.Less(t, mac, 9.25)
	assert.InDelta(t, mac/(1+y/2), mod, 1e-6)

	// Analytic second derivative of Σ cf (1+y/f)^(-f t).
	price, d2 := 0.0, 0.0
	for _, cf := range bond.Remaining(cfs, valueDate) {
		tt := utils.YearFraction(valueDate, cf.Date, utils.Act365F)
		price += cf.Amount() * math.Pow(1+y/2, -2*tt)
		d2 += cf.Amount() * tt * (tt + 0.5) * math.Pow(1+y/2, -2*tt-2)
	}
	assert.InEpsilon(t, d2/price, bond.Convexity(cfs, valueDate, y, semiAnnual), 1e-4)

	dv01 := bond.DefaultPricer().DV01(cfs, valueDate, y, semiAnnual)
	assert.InEpsilon(t, mod*price*1e-4, dv01, 1e-6)
}

func TestDurations_SingleCashflow(t *testing.T) {
	t.Parallel()

	valueDate := date(2025, 1, 1)
	cfs := []bond.Cashflow{{Date: date(2028, 1, 1), Principal: 100}}
	tt := utils.YearFraction(valueDate, cfs[0].Date, utils.Act365F)

	assert.Equal(t, tt, bond.MacaulayDuration(cfs, valueDate, 0.03, semiAnnual))
	// Annually compounded: -P'/P = t / (1+y).
	assert.InDelta(t, tt/1.03, bond.ModifiedDuration(cfs, valueDate, 0.03, semiAnnual), 1e-7)

	assert.Zero(t, bond.MacaulayDuration(cfs, date(2029, 1, 1), 0.03, semiAnnual))
	assert.Zero(t, bond.ModifiedDuration(cfs, date(2029, 1, 1), 0.03, semiAnnual))
	assert.Zero(t, bond.Convexity(cfs, date(2029, 1, 1), 0.03, semiAnnual))
}

func TestKeyRateDurations(t *testing.T) {
	t.Parallel()

	settlement := date(2025, 1, 2)
	c, err := curve.NewCurve(settlement, map[time.Time]float64{
		date(2026, 1, 2): 0.021,
		date(2027, 1, 2): 0.024,
		date(2030, 1, 2): 0.028,
		date(2035, 1, 2): 0.031,
		date(2055, 1, 2): 0.033,
	})
	require.NoError(t, err)

	cfs := bullet(date(2025, 1, 2), 5, 1, 3.0)
	p := bond.NewPricer(config.DefaultConfig)

	krs, err := p.KeyRateDurations(cfs, c, settlement, 0.001)
	require.NoError(t, err)
	require.Len(t, krs, 5)

	total := 0.0
	for _, kr := range krs {
		total += kr.PriceChange
	}
	base := bond.PriceFromZeroSpread(cfs, c, settlement, 0.001)
	parallel := bond.PriceFromZeroSpread(cfs, c, settlement, 0.001+config.DefaultConfig.BumpSize) - base
	assert.InEpsilon(t, parallel, total, 1e-3)

	assert.Less(t, krs[2].PriceChange, 0.0)
	assert.Greater(t, krs[2].Duration, 4.0)
	assert.InDelta(t, 0.0, krs[3].PriceChange, 1e-12, "pillars beyond maturity carry no risk")
	assert.InDelta(t, 0.0, krs[4].PriceChange, 1e-12)
	assert.Equal(t, date(2030, 1, 2), krs[2].Pillar)

	_, err = p.KeyRateDurations(cfs, c, date(2031, 1, 1), 0)
	assert.Error(t, err)
}
