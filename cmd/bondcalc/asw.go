package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/instruments/bonds"
	"github.com/meenmo/fisolve/utils"
)

type aswInput struct {
	TaskID    string `json:"task_id,omitempty"`
	CurveDate string `json:"curve_date"`
	// CurveDayCount accrues deposits and par coupons of the curve quotes.
	CurveDayCount string `json:"curve_day_count"`
	// CurveFrequency is the coupon frequency of par quotes from one year.
	CurveFrequency int          `json:"curve_frequency"`
	CurveQuotes    []curveQuote `json:"curve_quotes"`
	FloatDayCount  string       `json:"float_day_count"`
	Bonds          []bondCase   `json:"bonds"`
}

type curveQuote struct {
	Tenor string  `json:"tenor"`
	Rate  float64 `json:"rate"`
}

type bondCase struct {
	ISIN           string  `json:"isin"`
	Notional       float64 `json:"notional"`
	BondDirtyPrice float64 `json:"bond_dirty_price"`
	// Cashflows are in cents on Notional.
	Cashflows []feedCashflow `json:"cashflows"`
}

type aswOutput struct {
	ISIN             string  `json:"isin"`
	BondMaturityDate string  `json:"bond_maturity_date"`
	BondNotional     float64 `json:"bond_notional"`
	BondDirtyPrice   float64 `json:"bond_dirty_price"`
	BondPVRF         float64 `json:"bond_pv_rf"`
	SwapPV01BP       float64 `json:"swap_pv01_bp"`
	ASWSpreadBP      float64 `json:"asw_spread_bp"`
	ZeroSpreadBP     float64 `json:"zero_spread_bp"`
	Error            string  `json:"error,omitempty"`
}

type aswResult struct {
	TaskID    string      `json:"task_id,omitempty"`
	CurveDate string      `json:"curve_date,omitempty"`
	Bonds     []aswOutput `json:"bonds,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func newASWCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "asw",
		Short: "Bootstrap a curve from par quotes and compute asset swap spreads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.assetSwap,
				func(in aswInput, err error) aswResult {
					return aswResult{TaskID: in.TaskID, CurveDate: in.CurveDate, Error: err.Error()}
				},
				func(in aswInput) string { return in.TaskID })
		},
	}
}

// assetSwap fails as a whole when the curve cannot be built, and per bond
// otherwise.
func (a *app) assetSwap(in aswInput) (aswResult, error) {
	settlement, err := parseDate("curve_date", in.CurveDate)
	if err != nil {
		return aswResult{}, err
	}
	c, err := a.buildCurve(settlement, in)
	if err != nil {
		return aswResult{}, fmt.Errorf("build curve: %w", err)
	}

	pricer := bond.NewPricer(a.cfg)
	res := aswResult{TaskID: in.TaskID, CurveDate: in.CurveDate}
	var failed []string
	for _, tc := range in.Bonds {
		out, err := assetSwapBond(pricer, settlement, c, in.FloatDayCount, tc)
		if err != nil {
			failed = append(failed, tc.ISIN)
			out = aswOutput{ISIN: tc.ISIN, Error: err.Error()}
		}
		res.Bonds = append(res.Bonds, out)
	}
	if len(failed) > 0 {
		res.Error = fmt.Sprintf("failed bonds: %s", strings.Join(failed, ", "))
		return aswResult{}, &partialError[aswResult]{out: res, msg: res.Error}
	}
	return res, nil
}

func assetSwapBond(pricer bond.Pricer, settlement time.Time, c curve.DiscountCurve, floatDayCount string, tc bondCase) (aswOutput, error) {
	feed := make([]bonds.CashflowCents, 0, len(tc.Cashflows))
	for _, r := range tc.Cashflows {
		d, err := parseDate("cashflow date", r.Date)
		if err != nil {
			return aswOutput{}, err
		}
		feed = append(feed, bonds.CashflowCents{Date: d, CouponCents: r.Coupon, PrincipalCents: r.Principal})
	}
	cfs := bonds.ToCashflows(feed)

	dirty := tc.Notional * tc.BondDirtyPrice / 100.0
	res, err := pricer.ComputeASWSpread(bond.ASWInput{
		SettlementDate: settlement,
		DirtyPrice:     dirty,
		Notional:       tc.Notional,
		Cashflows:      cfs,
		FloatDayCount:  floatDayCount,
		DiscountCurve:  c,
	})
	if err != nil {
		return aswOutput{}, err
	}

	return aswOutput{
		ISIN:             tc.ISIN,
		BondMaturityDate: bond.Maturity(cfs).Format(utils.DateLayout),
		BondNotional:     tc.Notional,
		BondDirtyPrice:   tc.BondDirtyPrice,
		BondPVRF:         res.PVBondRF,
		SwapPV01BP:       res.PV01,
		ASWSpreadBP:      res.SpreadBP,
		ZeroSpreadBP:     res.ZeroSpreadBP,
	}, nil
}

// buildCurve bootstraps deposits below one year and par bonds from one year
// on. Rates are in percent.
func (a *app) buildCurve(settlement time.Time, in aswInput) (*curve.Curve, error) {
	if len(in.CurveQuotes) == 0 {
		return nil, fmt.Errorf("curve_quotes are required")
	}
	dc := in.CurveDayCount
	if dc == "" {
		dc = utils.Act365F
	}
	freq := in.CurveFrequency
	if freq <= 0 {
		freq = 1
	}

	quotes := make([]curve.Quote, 0, len(in.CurveQuotes))
	for _, q := range in.CurveQuotes {
		maturity, err := tenorDate(settlement, q.Tenor)
		if err != nil {
			return nil, fmt.Errorf("tenor %q: %w", q.Tenor, err)
		}
		rate := q.Rate / 100
		if maturity.Before(settlement.AddDate(1, 0, 0)) {
			quotes = append(quotes, curve.DepositQuote(settlement, maturity, rate, dc))
			continue
		}
		quotes = append(quotes, curve.ParBondQuote(settlement, maturity, rate, freq, dc))
	}
	return curve.BootstrapWith(a.cfg, settlement, quotes)
}

// tenorDate resolves tenors like 1D, 91D, 3M, 10Y against settlement.
func tenorDate(settlement time.Time, value string) (time.Time, error) {
	t := strings.ToUpper(strings.TrimSpace(value))
	if len(t) < 2 {
		return time.Time{}, fmt.Errorf("invalid tenor")
	}
	n, err := strconv.Atoi(t[:len(t)-1])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("invalid tenor")
	}
	switch t[len(t)-1] {
	case 'D':
		return settlement.AddDate(0, 0, n), nil
	case 'W':
		return settlement.AddDate(0, 0, 7*n), nil
	case 'M':
		return utils.AddMonth(settlement, n), nil
	case 'Y':
		return utils.AddMonth(settlement, 12*n), nil
	default:
		return time.Time{}, fmt.Errorf("invalid tenor unit")
	}
}
