package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/fisolve/bond"
)

type futuresInput struct {
	TaskID           string         `json:"task_id,omitempty"`
	ValueDate        string         `json:"value_date"`
	DeliveryDate     string         `json:"delivery_date"`
	ConversionFactor float64        `json:"conversion_factor"`
	AccruedStart     float64        `json:"accrued_start"`
	AccruedEnd       float64        `json:"accrued_end"`
	RepoRate         float64        `json:"repo_rate"`
	Coupons          []cashflowJSON `json:"coupons"`

	// Solve is irr, clean_price, net_basis_clean or net_basis_futures.
	Solve        string  `json:"solve"`
	FuturesPrice float64 `json:"futures_price"`
	CleanPrice   float64 `json:"clean_price"`
	Irr          float64 `json:"irr"`
	NetBasis     float64 `json:"net_basis"`
}

type futuresOutput struct {
	TaskID         string  `json:"task_id,omitempty"`
	FuturesPrice   float64 `json:"futures_price"`
	CleanPrice     float64 `json:"clean_price"`
	DirtyPrice     float64 `json:"dirty_price"`
	InvoicePrice   float64 `json:"invoice_price"`
	Irr            float64 `json:"irr"`
	Basis          float64 `json:"basis"`
	NetBasis       float64 `json:"net_basis"`
	Coupon         float64 `json:"coupon"`
	InterestIncome float64 `json:"interest_income"`
	InterestCost   float64 `json:"interest_cost"`
	PnL            float64 `json:"pnl"`
	Margin         float64 `json:"margin"`
	Spread         float64 `json:"spread"`
	Error          string  `json:"error,omitempty"`
}

func newFuturesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "futures",
		Short: "Solve implied repo, prices or net basis of a futures deliverable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.futures,
				func(in futuresInput, err error) futuresOutput {
					return futuresOutput{TaskID: in.TaskID, Error: err.Error()}
				},
				func(in futuresInput) string { return in.TaskID })
		},
	}
}

func (a *app) futures(in futuresInput) (futuresOutput, error) {
	valueDate, err := parseDate("value_date", in.ValueDate)
	if err != nil {
		return futuresOutput{}, err
	}
	delivery, err := parseDate("delivery_date", in.DeliveryDate)
	if err != nil {
		return futuresOutput{}, err
	}
	var coupons []bond.Cashflow
	if len(in.Coupons) > 0 {
		if coupons, err = parseCashflows(in.Coupons); err != nil {
			return futuresOutput{}, err
		}
	}

	d := bond.FuturesDeliverable{
		ValueDate:        valueDate,
		DeliveryDate:     delivery,
		ConversionFactor: in.ConversionFactor,
		AccruedStart:     in.AccruedStart,
		AccruedEnd:       in.AccruedEnd,
		Coupons:          coupons,
		RepoRate:         in.RepoRate,
	}
	acc := a.cfg.DiscoveryAccuracy

	var r bond.FuturesResult
	switch strings.ToLower(strings.TrimSpace(in.Solve)) {
	case "", "irr":
		r, err = d.ImpliedRepo(in.FuturesPrice, in.CleanPrice, acc)
	case "clean_price":
		r, err = d.CleanPriceFromRepo(in.FuturesPrice, in.Irr, acc)
	case "net_basis_clean":
		r, err = d.CleanPriceFromNetBasis(in.FuturesPrice, in.NetBasis, acc)
	case "net_basis_futures":
		r, err = d.FuturesPriceFromNetBasis(in.CleanPrice, in.NetBasis, acc)
	default:
		return futuresOutput{}, fmt.Errorf("unsupported solve %q", in.Solve)
	}
	if err != nil {
		return futuresOutput{}, err
	}

	return futuresOutput{
		TaskID:         in.TaskID,
		FuturesPrice:   r.FuturesPrice,
		CleanPrice:     r.CleanPrice,
		DirtyPrice:     r.DirtyPrice,
		InvoicePrice:   r.InvoicePrice,
		Irr:            r.Irr,
		Basis:          r.Basis,
		NetBasis:       r.NetBasis,
		Coupon:         r.Coupon,
		InterestIncome: r.InterestIncome,
		InterestCost:   r.InterestCost,
		PnL:            r.PnL,
		Margin:         r.Margin,
		Spread:         r.Spread,
	}, nil
}

type holdingInput struct {
	TaskID           string  `json:"task_id,omitempty"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Side             string  `json:"side"`
	Notional         float64 `json:"notional"`
	StartAccrued     float64 `json:"start_accrued"`
	EndAccrued       float64 `json:"end_accrued"`
	PrincipalBetween float64 `json:"principal_between"`
	InterestBetween  float64 `json:"interest_between"`
	StartCommission  float64 `json:"start_commission"`
	EndCommission    float64 `json:"end_commission"`
	BusinessTaxRate  float64 `json:"business_tax_rate"`
	InterestTaxRate  float64 `json:"interest_tax_rate"`
	HoldingCost      float64 `json:"holding_cost"`
	DayCount         string  `json:"day_count"`

	// Solve is evaluate, end_price, start_price, end_price_pnl or
	// start_price_pnl.
	Solve           string  `json:"solve"`
	StartCleanPrice float64 `json:"start_clean_price"`
	EndCleanPrice   float64 `json:"end_clean_price"`
	Yield           float64 `json:"yield"`
	NetPnL          float64 `json:"net_pnl"`
}

type holdingOutput struct {
	TaskID                  string  `json:"task_id,omitempty"`
	StartCleanPrice         float64 `json:"start_clean_price"`
	EndCleanPrice           float64 `json:"end_clean_price"`
	StartTotal              float64 `json:"start_total"`
	EndTotal                float64 `json:"end_total"`
	CleanPnL                float64 `json:"clean_pnl"`
	InterestPnL             float64 `json:"interest_pnl"`
	PnLPreTax               float64 `json:"pnl_pre_tax"`
	BusinessTax             float64 `json:"business_tax"`
	InterestTax             float64 `json:"interest_tax"`
	PnLAfterTax             float64 `json:"pnl_after_tax"`
	NetPnL                  float64 `json:"net_pnl"`
	YieldAfterTax           float64 `json:"yield_after_tax"`
	AnnualizedYieldAfterTax float64 `json:"annualized_yield_after_tax"`
	NetAnnualizedYield      float64 `json:"net_annualized_yield"`
	Error                   string  `json:"error,omitempty"`
}

func newHoldingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "holding",
		Short: "Evaluate or solve a holding-period trade",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.holding,
				func(in holdingInput, err error) holdingOutput {
					return holdingOutput{TaskID: in.TaskID, Error: err.Error()}
				},
				func(in holdingInput) string { return in.TaskID })
		},
	}
}

func parseSide(s string) (bond.Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "buy", "buy_then_sell":
		return bond.BuyThenSell, nil
	case "sell", "sell_then_buy":
		return bond.SellThenBuy, nil
	default:
		return 0, fmt.Errorf("unsupported side %q", s)
	}
}

func (a *app) holding(in holdingInput) (holdingOutput, error) {
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return holdingOutput{}, err
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return holdingOutput{}, err
	}
	side, err := parseSide(in.Side)
	if err != nil {
		return holdingOutput{}, err
	}

	h := bond.HoldingPeriod{
		StartDate:        start,
		EndDate:          end,
		Side:             side,
		Notional:         in.Notional,
		StartAccrued:     in.StartAccrued,
		EndAccrued:       in.EndAccrued,
		PrincipalBetween: in.PrincipalBetween,
		InterestBetween:  in.InterestBetween,
		StartCommission:  in.StartCommission,
		EndCommission:    in.EndCommission,
		BusinessTaxRate:  in.BusinessTaxRate,
		InterestTaxRate:  in.InterestTaxRate,
		HoldingCost:      in.HoldingCost,
		DayCount:         in.DayCount,
	}
	acc := a.cfg.DiscoveryAccuracy

	var r bond.HoldingResult
	switch strings.ToLower(strings.TrimSpace(in.Solve)) {
	case "", "evaluate":
		if in.Notional <= 0 {
			return holdingOutput{}, fmt.Errorf("notional must be positive")
		}
		r = h.Evaluate(in.StartCleanPrice, in.EndCleanPrice)
	case "end_price":
		r, err = h.EndPriceFromYield(in.StartCleanPrice, in.Yield, acc)
	case "start_price":
		r, err = h.StartPriceFromYield(in.EndCleanPrice, in.Yield, acc)
	case "end_price_pnl":
		r, err = h.EndPriceFromPnL(in.StartCleanPrice, in.NetPnL, acc)
	case "start_price_pnl":
		r, err = h.StartPriceFromPnL(in.EndCleanPrice, in.NetPnL, acc)
	default:
		return holdingOutput{}, fmt.Errorf("unsupported solve %q", in.Solve)
	}
	if err != nil {
		return holdingOutput{}, err
	}

	return holdingOutput{
		TaskID:                  in.TaskID,
		StartCleanPrice:         r.StartCleanPrice,
		EndCleanPrice:           r.EndCleanPrice,
		StartTotal:              r.StartTotal,
		EndTotal:                r.EndTotal,
		CleanPnL:                r.CleanPnL,
		InterestPnL:             r.InterestPnL,
		PnLPreTax:               r.PnLPreTax,
		BusinessTax:             r.BusinessTax,
		InterestTax:             r.InterestTax,
		PnLAfterTax:             r.PnLAfterTax,
		NetPnL:                  r.NetPnL,
		YieldAfterTax:           r.YieldAfterTax,
		AnnualizedYieldAfterTax: r.AnnualizedYieldAfterTax,
		NetAnnualizedYield:      r.NetAnnualizedYield,
	}, nil
}
