package bond_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fisolve/bond"
)

func deliverable() bond.FuturesDeliverable {
	return bond.FuturesDeliverable{
		ValueDate:        date(2026, 1, 15),
		DeliveryDate:     date(2026, 3, 10),
		ConversionFactor: 0.8123,
		AccruedStart:     1.03,
		AccruedEnd:       0.21,
		Coupons:          []bond.Cashflow{{Date: date(2026, 2, 15), Coupon: 1.25}},
		RepoRate:         0.02,
	}
}

func TestFuturesDeliverable_Identities(t *testing.T) {
	t.Parallel()

	d := deliverable()
	r := d.Evaluate(101.5, 0.025)

	assert.InDelta(t, 102.53, r.DirtyPrice, 1e-12)
	assert.InDelta(t, 1.25, r.Coupon, 1e-12)
	assert.InDelta(t, r.CleanPrice-r.FuturesPrice*d.ConversionFactor, r.Basis, 1e-12)
	assert.InDelta(t, r.Basis-r.PnL, r.NetBasis, 1e-12)
	assert.InDelta(t, r.FuturesPrice*d.ConversionFactor+d.AccruedEnd, r.InvoicePrice, 1e-12)
	assert.InDelta(t, 0.005, r.Spread, 1e-15)

	// Delivering at the repo rate leaves no net basis.
	atRepo := d.Evaluate(101.5, d.RepoRate)
	assert.InDelta(t, 0.0, atRepo.NetBasis, 1e-12)

	// Coupons outside (value, delivery] are ignored.
	d.Coupons = append(d.Coupons, bond.Cashflow{Date: date(2026, 1, 15), Coupon: 9}, bond.Cashflow{Date: date(2026, 4, 1), Coupon: 9})
	assert.InDelta(t, r.FuturesPrice, d.Evaluate(101.5, 0.025).FuturesPrice, 1e-12)
}

func TestFuturesDeliverable_Solves(t *testing.T) {
	t.Parallel()

	d := deliverable()
	const clean, irr = 101.5, 0.025
	want := d.Evaluate(clean, irr)

	got, err := d.ImpliedRepo(want.FuturesPrice, clean, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, irr, got.Irr, 1e-9)

	got, err = d.CleanPriceFromRepo(want.FuturesPrice, irr, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, clean, got.CleanPrice, 1e-9)

	got, err = d.CleanPriceFromNetBasis(want.FuturesPrice, want.NetBasis, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, clean, got.CleanPrice, 1e-9)
	assert.InDelta(t, irr, got.Irr, 1e-8)

	got, err = d.FuturesPriceFromNetBasis(clean, want.NetBasis, 1e-12)
	require.NoError(t, err)
	assert.InDelta(t, want.FuturesPrice, got.FuturesPrice, 1e-9)
	assert.InDelta(t, irr, got.Irr, 1e-8)
}

func TestFuturesDeliverable_Invalid(t *testing.T) {
	t.Parallel()

	d := deliverable()
	d.DeliveryDate = d.ValueDate
	_, err := d.ImpliedRepo(125, 101, 1e-9)
	assert.Error(t, err)

	d = deliverable()
	d.ConversionFactor = 0
	_, err = d.CleanPriceFromRepo(125, 0.02, 1e-9)
	assert.Error(t, err)
}
