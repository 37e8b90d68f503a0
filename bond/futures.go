package bond

import (
	"fmt"
	"time"

	"github.com/meenmo/fisolve/solver"
	"github.com/meenmo/fisolve/utils"
)

// Unknowns of the futures equations, in DoSolve change-index order. The
// third unknown is the implied repo or the net basis.
const (
	futuresPriceIndex = iota
	cleanPriceIndex
	rateIndex
)

// FuturesDeliverable is one deliverable bond of a bond futures contract.
// Prices and accrued interest are per 100 face.
type FuturesDeliverable struct {
	ValueDate        time.Time
	DeliveryDate     time.Time
	ConversionFactor float64
	// AccruedStart and AccruedEnd are the accrued interest on ValueDate and
	// DeliveryDate.
	AccruedStart float64
	AccruedEnd   float64
	// Coupons are the coupons paid in (ValueDate, DeliveryDate].
	Coupons []Cashflow
	// RepoRate funds the bond and reinvests its coupons, simple ACT/365F.
	RepoRate float64
}

// FuturesResult is a consistent set of futures, bond and carry figures.
type FuturesResult struct {
	FuturesPrice   float64
	CleanPrice     float64
	DirtyPrice     float64
	InvoicePrice   float64
	Irr            float64
	Basis          float64
	NetBasis       float64
	Coupon         float64
	InterestIncome float64
	InterestCost   float64
	PnL            float64
	Margin         float64
	// Spread is Irr - RepoRate.
	Spread float64
}

func (d FuturesDeliverable) validate() error {
	if !d.DeliveryDate.After(d.ValueDate) {
		return fmt.Errorf("futures: delivery date %s must be after value date %s",
			d.DeliveryDate.Format(utils.DateLayout), d.ValueDate.Format(utils.DateLayout))
	}
	if d.ConversionFactor <= 0 {
		return fmt.Errorf("futures: conversion factor must be positive, got %g", d.ConversionFactor)
	}
	return nil
}

func (d FuturesDeliverable) term() float64 {
	return utils.YearFraction(d.ValueDate, d.DeliveryDate, utils.Act365F)
}

func (d FuturesDeliverable) coupons() []Cashflow {
	out := make([]Cashflow, 0, len(d.Coupons))
	for _, cf := range d.Coupons {
		if cf.Date.After(d.ValueDate) && !cf.Date.After(d.DeliveryDate) {
			out = append(out, cf)
		}
	}
	return out
}

func (d FuturesDeliverable) couponTotal() float64 {
	total := 0.0
	for _, cf := range d.coupons() {
		total += cf.Amount()
	}
	return total
}

// reinvested is the interest earned on coupons paid before delivery when
// reinvested at rate, simple ACT/365F from the payment date.
func (d FuturesDeliverable) reinvested(rate float64) float64 {
	total := 0.0
	for _, cf := range d.coupons() {
		total += cf.Amount() * rate * utils.YearFraction(cf.Date, d.DeliveryDate, utils.Act365F)
	}
	return total
}

// Evaluate prices the futures implied by a clean price and an implied repo
// rate, and derives the basis and carry.
//
//	F = (Dirty·(1 + irr·T) - AI_end - C - C_irr) / CF
func (d FuturesDeliverable) Evaluate(cleanPrice, irr float64) FuturesResult {
	dt := d.term()
	dirty := cleanPrice + d.AccruedStart

	coupon := d.couponTotal()
	futures := (dirty*(1+irr*dt) - d.AccruedEnd - coupon - d.reinvested(irr)) / d.ConversionFactor

	return d.carry(futures, cleanPrice, irr, coupon)
}

func (d FuturesDeliverable) carry(futures, cleanPrice, irr, coupon float64) FuturesResult {
	dt := d.term()
	dirty := cleanPrice + d.AccruedStart
	invoice := futures*d.ConversionFactor + d.AccruedEnd
	basis := cleanPrice - futures*d.ConversionFactor

	income := d.AccruedEnd - d.AccruedStart + coupon + d.reinvested(d.RepoRate)
	cost := dirty * d.RepoRate * dt
	pnl := income - cost

	return FuturesResult{
		FuturesPrice:   futures,
		CleanPrice:     cleanPrice,
		DirtyPrice:     dirty,
		InvoicePrice:   invoice,
		Irr:            irr,
		Basis:          basis,
		NetBasis:       basis - pnl,
		Coupon:         coupon,
		InterestIncome: income,
		InterestCost:   cost,
		PnL:            pnl,
		Margin:         invoice - dirty + coupon,
		Spread:         irr - d.RepoRate,
	}
}

// irrEquation is F(clean, irr) - futures over the unknowns
// [futures, clean, irr].
func (d FuturesDeliverable) irrEquation(known [3]float64) solver.IndexedFunc {
	return func(x float64, changeIndex int) float64 {
		v := known
		v[changeIndex] = x
		return d.Evaluate(v[cleanPriceIndex], v[rateIndex]).FuturesPrice - v[futuresPriceIndex]
	}
}

// netBasisEquation is NetBasis(futures, clean) - netBasis over the unknowns
// [futures, clean, net basis].
func (d FuturesDeliverable) netBasisEquation(known [3]float64) solver.IndexedFunc {
	return func(x float64, changeIndex int) float64 {
		v := known
		v[changeIndex] = x
		r := d.carry(v[futuresPriceIndex], v[cleanPriceIndex], d.RepoRate, d.couponTotal())
		return r.NetBasis - v[rateIndex]
	}
}

// ImpliedRepo solves for the implied repo rate linking futuresPrice and
// cleanPrice on [-500, 500], starting from zero.
func (d FuturesDeliverable) ImpliedRepo(futuresPrice, cleanPrice float64, accuracy float64) (FuturesResult, error) {
	if err := d.validate(); err != nil {
		return FuturesResult{}, err
	}
	f := d.irrEquation([3]float64{futuresPrice, cleanPrice, 0})
	irr, err := solver.DoSolveFrom(f, -500, 500, 0, rateIndex, accuracy)
	if err != nil {
		return FuturesResult{}, fmt.Errorf("ImpliedRepo: %w", err)
	}
	return d.Evaluate(cleanPrice, irr), nil
}

// CleanPriceFromRepo solves for the clean price at which the bond delivers
// into futuresPrice at implied repo irr.
func (d FuturesDeliverable) CleanPriceFromRepo(futuresPrice, irr float64, accuracy float64) (FuturesResult, error) {
	if err := d.validate(); err != nil {
		return FuturesResult{}, err
	}
	f := d.irrEquation([3]float64{futuresPrice, 0, irr})
	clean, err := solver.DoSolveFrom(f, 1, 50000, 100, cleanPriceIndex, accuracy)
	if err != nil {
		return FuturesResult{}, fmt.Errorf("CleanPriceFromRepo: %w", err)
	}
	return d.Evaluate(clean, irr), nil
}

// CleanPriceFromNetBasis solves for the clean price at which the bond shows
// netBasis against futuresPrice.
func (d FuturesDeliverable) CleanPriceFromNetBasis(futuresPrice, netBasis float64, accuracy float64) (FuturesResult, error) {
	if err := d.validate(); err != nil {
		return FuturesResult{}, err
	}
	f := d.netBasisEquation([3]float64{futuresPrice, 0, netBasis})
	clean, err := solver.DoSolveFrom(f, 1, 50000, 100, cleanPriceIndex, accuracy)
	if err != nil {
		return FuturesResult{}, fmt.Errorf("CleanPriceFromNetBasis: %w", err)
	}
	r, err := d.ImpliedRepo(futuresPrice, clean, accuracy)
	if err != nil {
		return FuturesResult{}, fmt.Errorf("CleanPriceFromNetBasis: %w", err)
	}
	return r, nil
}

// FuturesPriceFromNetBasis solves for the futures price at which the bond
// shows netBasis at cleanPrice.
func (d FuturesDeliverable) FuturesPriceFromNetBasis(cleanPrice, netBasis float64, accuracy float64) (FuturesResult, error) {
	if err := d.validate(); err != nil {
		return FuturesResult{}, err
	}
	f := d.netBasisEquation([3]float64{0, cleanPrice, netBasis})
	futures, err := solver.DoSolveFrom(f, 1, 50000, 100, futuresPriceIndex, accuracy)
	if err != nil {
		return FuturesResult{}, fmt.Errorf("FuturesPriceFromNetBasis: %w", err)
	}
	r, err := d.ImpliedRepo(futures, cleanPrice, accuracy)
	if err != nil {
		return FuturesResult{}, fmt.Errorf("FuturesPriceFromNetBasis: %w", err)
	}
	return r, nil
}
