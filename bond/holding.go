package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/fisolve/solver"
	"github.com/meenmo/fisolve/utils"
)

// Side is the direction of a holding-period trade.
type Side int

const (
	// BuyThenSell buys on the start date and sells on the end date.
	BuyThenSell Side = 1
	// SellThenBuy sells on the start date and buys back on the end date.
	SellThenBuy Side = -1
)

// Unknowns of the holding-period equations, in DoSolve change-index order.
const (
	startPriceIndex = iota
	endPriceIndex
	targetIndex // yield, or net PnL
)

// HoldingPeriod describes a round trip in one bond. Prices and accrued
// interest are per 100 face; amounts are in currency.
type HoldingPeriod struct {
	StartDate time.Time
	EndDate   time.Time
	Side      Side
	Notional  float64

	StartAccrued float64
	EndAccrued   float64
	// PrincipalBetween and InterestBetween are paid per 100 face during the
	// holding period.
	PrincipalBetween float64
	InterestBetween  float64

	StartCommission float64
	EndCommission   float64
	// BusinessTaxRate applies to the clean PnL, InterestTaxRate to the
	// interest PnL. Losses are not taxed.
	BusinessTaxRate float64
	InterestTaxRate float64
	// HoldingCost is subtracted from the after-tax PnL.
	HoldingCost float64

	// DayCount annualizes the yield. Defaults to ACT/365F.
	DayCount string
}

// HoldingResult is the full breakdown of a holding-period trade.
type HoldingResult struct {
	StartCleanPrice float64
	EndCleanPrice   float64
	StartTotal      float64
	EndTotal        float64

	CleanPnL    float64
	InterestPnL float64
	PnLPreTax   float64
	BusinessTax float64
	InterestTax float64
	PnLAfterTax float64
	NetPnL      float64

	YieldAfterTax           float64
	AnnualizedYieldAfterTax float64
	NetAnnualizedYield      float64
}

func (h HoldingPeriod) validate() error {
	if h.Side != BuyThenSell && h.Side != SellThenBuy {
		return fmt.Errorf("holding period: unknown side %d", h.Side)
	}
	if h.Notional <= 0 {
		return fmt.Errorf("holding period: notional must be positive, got %g", h.Notional)
	}
	if h.EndDate.Before(h.StartDate) {
		return fmt.Errorf("holding period: end date %s before start date %s",
			h.EndDate.Format(utils.DateLayout), h.StartDate.Format(utils.DateLayout))
	}
	return nil
}

func (h HoldingPeriod) yearFraction() float64 {
	end := h.EndDate
	if !end.After(h.StartDate) {
		end = h.StartDate.AddDate(0, 0, 1)
	}
	dc := h.DayCount
	if dc == "" {
		dc = utils.Act365F
	}
	return utils.YearFraction(h.StartDate, end, dc)
}

// Evaluate values the trade between two clean prices.
func (h HoldingPeriod) Evaluate(startClean, endClean float64) HoldingResult {
	side := float64(h.Side)
	face := h.Notional / 100

	startCleanAmount := -side * face * startClean
	endCleanAmount := side * face * endClean
	startInterest := -side * face * h.StartAccrued
	endInterest := side * face * h.EndAccrued
	startTotal := startCleanAmount + startInterest - h.StartCommission
	endTotal := endCleanAmount + endInterest - h.EndCommission

	principalBetween := math.Max(side, 0) * face * h.PrincipalBetween
	interestBetween := math.Max(0, face*h.InterestBetween)
	commission := h.StartCommission + h.EndCommission

	cleanPnL := startCleanAmount + endCleanAmount + principalBetween
	interestPnL := startInterest + endInterest + interestBetween
	businessTax := math.Max(0, cleanPnL*h.BusinessTaxRate)
	interestTax := math.Max(0, interestPnL*h.InterestTaxRate)
	afterTax := cleanPnL - businessTax + interestPnL - interestTax - commission
	net := afterTax - h.HoldingCost

	yf := h.yearFraction()
	yieldAfterTax := 0.0
	netYield := 0.0
	if startTotal != 0 {
		yieldAfterTax = -side * afterTax / startTotal
		netYield = -side * net / startTotal / yf
	}

	return HoldingResult{
		StartCleanPrice:         startClean,
		EndCleanPrice:           endClean,
		StartTotal:              startTotal,
		EndTotal:                endTotal,
		CleanPnL:                cleanPnL,
		InterestPnL:             interestPnL,
		PnLPreTax:               cleanPnL + interestPnL - commission,
		BusinessTax:             businessTax,
		InterestTax:             interestTax,
		PnLAfterTax:             afterTax,
		NetPnL:                  net,
		YieldAfterTax:           yieldAfterTax,
		AnnualizedYieldAfterTax: yieldAfterTax / yf,
		NetAnnualizedYield:      netYield,
	}
}

// yieldEquation is NetAnnualizedYield - yield over the unknowns
// [start clean, end clean, yield].
func (h HoldingPeriod) yieldEquation(known [3]float64) solver.IndexedFunc {
	return func(x float64, changeIndex int) float64 {
		v := known
		v[changeIndex] = x
		return h.Evaluate(v[startPriceIndex], v[endPriceIndex]).NetAnnualizedYield - v[targetIndex]
	}
}

// pnlEquation is NetPnL - pnl over the unknowns [start clean, end clean, pnl].
func (h HoldingPeriod) pnlEquation(known [3]float64) solver.IndexedFunc {
	return func(x float64, changeIndex int) float64 {
		v := known
		v[changeIndex] = x
		return h.Evaluate(v[startPriceIndex], v[endPriceIndex]).NetPnL - v[targetIndex]
	}
}

func (h HoldingPeriod) solvePrice(op string, f solver.IndexedFunc, changeIndex int, accuracy float64) (float64, error) {
	if err := h.validate(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	price, err := solver.DoSolveFrom(f, 0, 10000, 100, changeIndex, accuracy)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return price, nil
}

// EndPriceFromYield solves for the end clean price that earns a net
// annualized yield of yield.
func (h HoldingPeriod) EndPriceFromYield(startClean, yield, accuracy float64) (HoldingResult, error) {
	end, err := h.solvePrice("EndPriceFromYield", h.yieldEquation([3]float64{startClean, 0, yield}), endPriceIndex, accuracy)
	if err != nil {
		return HoldingResult{}, err
	}
	return h.Evaluate(startClean, end), nil
}

// StartPriceFromYield solves for the start clean price that earns a net
// annualized yield of yield.
func (h HoldingPeriod) StartPriceFromYield(endClean, yield, accuracy float64) (HoldingResult, error) {
	start, err := h.solvePrice("StartPriceFromYield", h.yieldEquation([3]float64{0, endClean, yield}), startPriceIndex, accuracy)
	if err != nil {
		return HoldingResult{}, err
	}
	return h.Evaluate(start, endClean), nil
}

// EndPriceFromPnL solves for the end clean price that makes a net PnL of pnl.
func (h HoldingPeriod) EndPriceFromPnL(startClean, pnl, accuracy float64) (HoldingResult, error) {
	end, err := h.solvePrice("EndPriceFromPnL", h.pnlEquation([3]float64{startClean, 0, pnl}), endPriceIndex, accuracy)
	if err != nil {
		return HoldingResult{}, err
	}
	return h.Evaluate(startClean, end), nil
}

// StartPriceFromPnL solves for the start clean price that makes a net PnL of
// pnl.
func (h HoldingPeriod) StartPriceFromPnL(endClean, pnl, accuracy float64) (HoldingResult, error) {
	start, err := h.solvePrice("StartPriceFromPnL", h.pnlEquation([3]float64{0, endClean, pnl}), startPriceIndex, accuracy)
	if err != nil {
		return HoldingResult{}, err
	}
	return h.Evaluate(start, endClean), nil
}
