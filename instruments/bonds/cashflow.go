package bonds

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/fisolve/bond"
)

// CashflowCents mirrors the Bloomberg-style cashflow feed where coupon/principal
// are stored as integer minor units (e.g., cents for EUR).
type CashflowCents struct {
	Date           time.Time
	CouponCents    int64
	PrincipalCents int64
}

// MinorUnits converts an integer amount with exp implied decimals, e.g.
// 12345 with exp 2 is 123.45.
func MinorUnits(v int64, exp int32) decimal.Decimal {
	return decimal.New(v, -exp)
}

func (c CashflowCents) ToCashflow() bond.Cashflow {
	return c.ToCashflowScaled(2)
}

// ToCashflowScaled converts with exp implied decimals instead of cents. The
// futures feed stores per-100 amounts with four.
func (c CashflowCents) ToCashflowScaled(exp int32) bond.Cashflow {
	return bond.Cashflow{
		Date:      c.Date,
		Coupon:    MinorUnits(c.CouponCents, exp).InexactFloat64(),
		Principal: MinorUnits(c.PrincipalCents, exp).InexactFloat64(),
	}
}

func ToCashflows(in []CashflowCents) []bond.Cashflow {
	return ToCashflowsScaled(in, 2)
}

func ToCashflowsScaled(in []CashflowCents, exp int32) []bond.Cashflow {
	out := make([]bond.Cashflow, 0, len(in))
	for _, cf := range in {
		out = append(out, cf.ToCashflowScaled(exp))
	}
	return out
}

// FromCashflow rounds a cashflow half away from zero to whole cents.
func FromCashflow(cf bond.Cashflow) CashflowCents {
	return CashflowCents{
		Date:           cf.Date,
		CouponCents:    decimal.NewFromFloat(cf.Coupon).Shift(2).Round(0).IntPart(),
		PrincipalCents: decimal.NewFromFloat(cf.Principal).Shift(2).Round(0).IntPart(),
	}
}

// Total is the exact sum of every coupon and principal payment.
func Total(in []CashflowCents) decimal.Decimal {
	sum := decimal.Zero
	for _, cf := range in {
		sum = sum.Add(MinorUnits(cf.CouponCents+cf.PrincipalCents, 2))
	}
	return sum
}

// PerHundred rescales cashflows held on face to amounts per 100 face.
func PerHundred(in []bond.Cashflow, face decimal.Decimal) []bond.Cashflow {
	if face.IsZero() {
		return nil
	}
	ratio := decimal.NewFromInt(100).Div(face)
	out := make([]bond.Cashflow, 0, len(in))
	for _, cf := range in {
		out = append(out, bond.Cashflow{
			Date:      cf.Date,
			Coupon:    decimal.NewFromFloat(cf.Coupon).Mul(ratio).InexactFloat64(),
			Principal: decimal.NewFromFloat(cf.Principal).Mul(ratio).InexactFloat64(),
		})
	}
	return out
}
