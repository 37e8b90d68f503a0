// Package portfolio values batches of bond positions concurrently.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/config"
	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/marketdata"
)

// Position is one bond to value.
type Position struct {
	ISIN       string
	ValueDate  time.Time
	Convention bond.Convention
	// DirtyPrice is used instead of the source quote when positive.
	DirtyPrice float64
}

// Valuation holds the metrics of one position. Metrics that could not be
// computed are NaN and Err says why.
type Valuation struct {
	ISIN             string
	ValueDate        time.Time
	DirtyPrice       float64
	Yield            float64
	ModifiedDuration float64
	Convexity        float64
	DV01             float64
	ZeroSpread       float64
	ZeroSpreadRisk   float64
	Err              error
}

// Failed reports whether any metric is missing.
func (v Valuation) Failed() bool {
	return v.Err != nil
}

func failed(p Position, err error) Valuation {
	nan := math.NaN()
	return Valuation{
		ISIN:             p.ISIN,
		ValueDate:        p.ValueDate,
		DirtyPrice:       nan,
		Yield:            nan,
		ModifiedDuration: nan,
		Convexity:        nan,
		DV01:             nan,
		ZeroSpread:       nan,
		ZeroSpreadRisk:   nan,
		Err:              err,
	}
}

// Valuer values positions against a market data source and, optionally, a
// discount curve for zero spreads.
type Valuer struct {
	source  marketdata.Source
	curve   curve.DiscountCurve
	pricer  bond.Pricer
	workers int
	logger  *logrus.Logger
}

// NewValuer returns a Valuer using cfg for solver settings and concurrency.
// c may be nil, in which case zero spreads are NaN.
func NewValuer(source marketdata.Source, c curve.DiscountCurve, cfg config.Config, logger *logrus.Logger) *Valuer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Valuer{
		source:  source,
		curve:   c,
		pricer:  bond.NewPricer(cfg),
		workers: workers,
		logger:  logger,
	}
}

// Run values every position with at most Workers solves in flight. Results
// are in input order. A failing position never stops the batch; only ctx
// does, and then the positions not yet valued carry ctx.Err().
func (v *Valuer) Run(ctx context.Context, positions []Position) ([]Valuation, error) {
	out := make([]Valuation, len(positions))
	done := make([]bool, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, p := range positions {
		if gctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			out[i] = v.value(gctx, p)
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	err := ctx.Err()
	for i, p := range positions {
		if !done[i] {
			out[i] = failed(p, err)
		}
	}
	if err != nil {
		v.logger.WithError(err).Warn("valuation cancelled")
		return out, err
	}
	return out, nil
}

func (v *Valuer) value(ctx context.Context, p Position) Valuation {
	log := v.logger.WithFields(logrus.Fields{
		"isin":       p.ISIN,
		"value_date": p.ValueDate.Format("2006-01-02"),
	})

	cfs, err := v.source.Cashflows(ctx, p.ISIN)
	if err != nil {
		log.WithError(err).WithField("metric", "cashflows").Warn("position skipped")
		return failed(p, err)
	}

	dirty := p.DirtyPrice
	if dirty <= 0 {
		dirty, err = v.source.DirtyPrice(ctx, p.ISIN, p.ValueDate)
		if err != nil {
			log.WithError(err).WithField("metric", "dirty_price").Warn("position skipped")
			return failed(p, err)
		}
	}

	y, err := v.pricer.YieldFromFullPrice(cfs, p.ValueDate, dirty, p.Convention)
	if err != nil {
		log.WithError(err).WithField("metric", "yield").Warn("calibration failed")
		res := failed(p, err)
		res.DirtyPrice = dirty
		return res
	}

	res := Valuation{
		ISIN:             p.ISIN,
		ValueDate:        p.ValueDate,
		DirtyPrice:       dirty,
		Yield:            y,
		ModifiedDuration: v.pricer.ModifiedDuration(cfs, p.ValueDate, y, p.Convention),
		Convexity:        v.pricer.Convexity(cfs, p.ValueDate, y, p.Convention),
		DV01:             v.pricer.DV01(cfs, p.ValueDate, y, p.Convention),
		ZeroSpread:       math.NaN(),
		ZeroSpreadRisk:   math.NaN(),
	}

	if v.curve == nil {
		return res
	}
	z, err := v.pricer.ZeroSpread(cfs, v.curve, p.ValueDate, dirty)
	if err != nil {
		log.WithError(err).WithField("metric", "zero_spread").Warn("calibration failed")
		res.Err = fmt.Errorf("%s: %w", p.ISIN, err)
		return res
	}
	res.ZeroSpread = z
	res.ZeroSpreadRisk = bond.ZeroSpreadRisk(cfs, v.curve, p.ValueDate, z)
	log.WithFields(logrus.Fields{"yield": y, "zero_spread": z}).Debug("valued")
	return res
}
