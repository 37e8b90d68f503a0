package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/utils"
)

type ASWInput struct {
	SettlementDate time.Time
	DirtyPrice     float64
	Notional       float64
	Cashflows      []Cashflow

	// FloatDayCount accrues the floating leg for PV01. The floating leg
	// resets on the bond's own payment dates.
	FloatDayCount string

	DiscountCurve curve.DiscountCurve
}

type ASWResult struct {
	SpreadBP float64
	PVBondRF float64
	PV01     float64
	// ZeroSpreadBP is the exact zero spread at DirtyPrice, for comparison.
	ZeroSpreadBP float64
}

// ComputeASWSpread computes the asset swap spread (in bp) using the approximation:
//
//	ASW ≈ (PV_bond^{rf} - P_dirty) / PV01
//
// where PV01 is the PV of receiving 1bp on the floating leg between the bond
// payment dates.
func ComputeASWSpread(in ASWInput) (ASWResult, error) {
	return DefaultPricer().ComputeASWSpread(in)
}

// ComputeASWSpread is ComputeASWSpread with the zero spread solved under the
// settings of p.
func (p Pricer) ComputeASWSpread(in ASWInput) (ASWResult, error) {
	if in.SettlementDate.IsZero() {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: SettlementDate is required")
	}
	if in.Notional <= 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: Notional must be positive")
	}
	if in.DiscountCurve == nil {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: DiscountCurve is required")
	}
	remaining := Remaining(in.Cashflows, in.SettlementDate)
	if len(remaining) == 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: no cashflows after settlement (%s)", in.SettlementDate.Format(utils.DateLayout))
	}

	dates := make([]time.Time, 0, len(remaining))
	pvBondRF := 0.0
	for _, cf := range remaining {
		pvBondRF += cf.Amount() * in.DiscountCurve.DF(cf.Date)
		dates = append(dates, cf.Date)
	}
	utils.SortDates(dates)

	dayCount := in.FloatDayCount
	if dayCount == "" {
		dayCount = utils.Act360
	}
	pv01 := 0.0
	start := in.SettlementDate
	for _, end := range dates {
		if !end.After(start) {
			continue
		}
		accrual := utils.YearFraction(start, end, dayCount)
		pv01 += in.Notional * accrual * 1e-4 * in.DiscountCurve.DF(end)
		start = end
	}
	if pv01 == 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: PV01 is zero")
	}

	z, err := p.ZeroSpread(remaining, in.DiscountCurve, in.SettlementDate, in.DirtyPrice)
	if err != nil {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
	}

	return ASWResult{
		SpreadBP:     (pvBondRF - in.DirtyPrice) / pv01,
		PVBondRF:     pvBondRF,
		PV01:         pv01,
		ZeroSpreadBP: z * 1e4,
	}, nil
}
