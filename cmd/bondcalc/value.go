package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/marketdata"
	"github.com/meenmo/fisolve/marketdata/pgstore"
	"github.com/meenmo/fisolve/portfolio"
	"github.com/meenmo/fisolve/utils"
)

type valueInput struct {
	TaskID    string `json:"task_id,omitempty"`
	CurveDate string `json:"curve_date"`
	// Curve is optional; without it zero spreads are null.
	Curve []pillarJSON `json:"curve"`
	// Bonds are the market data when no --dsn is given.
	Bonds     []sourceBond   `json:"bonds"`
	Positions []positionJSON `json:"positions"`
}

type sourceBond struct {
	ISIN      string         `json:"isin"`
	Cashflows []cashflowJSON `json:"cashflows"`
	Quotes    []quoteJSON    `json:"quotes"`
}

type quoteJSON struct {
	Date       string  `json:"date"`
	DirtyPrice float64 `json:"dirty_price"`
}

type positionJSON struct {
	ISIN      string `json:"isin"`
	ValueDate string `json:"value_date"`
	DayCount  string `json:"day_count"`
	Frequency int    `json:"frequency"`
	// DirtyPrice overrides the source quote when positive.
	DirtyPrice float64 `json:"dirty_price"`
}

// valuationJSON reports metrics that could not be computed as null.
type valuationJSON struct {
	ISIN             string   `json:"isin"`
	ValueDate        string   `json:"value_date"`
	DirtyPrice       *float64 `json:"dirty_price"`
	Yield            *float64 `json:"yield"`
	ModifiedDuration *float64 `json:"modified_duration"`
	Convexity        *float64 `json:"convexity"`
	DV01             *float64 `json:"dv01"`
	ZeroSpread       *float64 `json:"zero_spread"`
	ZeroSpreadRisk   *float64 `json:"zero_spread_risk"`
	Error            string   `json:"error,omitempty"`
}

type valueOutput struct {
	TaskID     string          `json:"task_id,omitempty"`
	Valuations []valuationJSON `json:"valuations,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func newValueCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value",
		Short: "Value bond positions concurrently from PostgreSQL or inline market data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.valuePositions,
				func(in valueInput, err error) valueOutput {
					return valueOutput{TaskID: in.TaskID, Error: err.Error()}
				},
				func(in valueInput) string { return in.TaskID })
		},
	}
	cmd.Flags().String("dsn", "", "PostgreSQL DSN for cashflows and quotes (env FISOLVE_DSN)")
	_ = a.v.BindPFlag("dsn", cmd.Flags().Lookup("dsn"))
	return cmd
}

func (a *app) valuePositions(in valueInput) (valueOutput, error) {
	if len(in.Positions) == 0 {
		return valueOutput{}, fmt.Errorf("positions are required")
	}
	positions := make([]portfolio.Position, 0, len(in.Positions))
	for _, p := range in.Positions {
		d, err := parseDate("value_date", p.ValueDate)
		if err != nil {
			return valueOutput{}, fmt.Errorf("%s: %w", p.ISIN, err)
		}
		dc := p.DayCount
		if dc == "" {
			dc = utils.Act365F
		}
		positions = append(positions, portfolio.Position{
			ISIN:       p.ISIN,
			ValueDate:  d,
			Convention: bond.Convention{DayCount: dc, Frequency: p.Frequency},
			DirtyPrice: p.DirtyPrice,
		})
	}

	var c curve.DiscountCurve
	if len(in.Curve) > 0 {
		settlement, err := parseDate("curve_date", in.CurveDate)
		if err != nil {
			return valueOutput{}, err
		}
		zc, err := parseCurve(settlement, in.Curve)
		if err != nil {
			return valueOutput{}, err
		}
		c = zc
	}

	source, closeSource, err := a.marketData(in.Bonds)
	if err != nil {
		return valueOutput{}, err
	}
	defer closeSource()

	vals, err := portfolio.NewValuer(source, c, a.cfg, a.logger).Run(a.ctx, positions)
	if err != nil {
		return valueOutput{}, err
	}

	out := valueOutput{TaskID: in.TaskID, Valuations: make([]valuationJSON, len(vals))}
	var failed []string
	for i, v := range vals {
		out.Valuations[i] = valuationJSON{
			ISIN:             v.ISIN,
			ValueDate:        v.ValueDate.Format(utils.DateLayout),
			DirtyPrice:       number(v.DirtyPrice),
			Yield:            number(v.Yield),
			ModifiedDuration: number(v.ModifiedDuration),
			Convexity:        number(v.Convexity),
			DV01:             number(v.DV01),
			ZeroSpread:       number(v.ZeroSpread),
			ZeroSpreadRisk:   number(v.ZeroSpreadRisk),
		}
		if v.Failed() {
			out.Valuations[i].Error = v.Err.Error()
			failed = append(failed, v.ISIN)
		}
	}
	if len(failed) > 0 {
		out.Error = fmt.Sprintf("failed positions: %s", strings.Join(failed, ", "))
		return valueOutput{}, &partialError[valueOutput]{out: out, msg: out.Error}
	}
	return out, nil
}

// marketData opens the PostgreSQL store when a DSN is configured and
// otherwise serves the inline bonds.
func (a *app) marketData(inline []sourceBond) (marketdata.Source, func(), error) {
	if dsn := a.v.GetString("dsn"); dsn != "" {
		store, err := pgstore.Open(a.ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				a.logger.WithError(err).Warn("close market data store")
			}
		}, nil
	}

	src := marketdata.NewMapSource()
	for _, b := range inline {
		cfs, err := parseCashflows(b.Cashflows)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", b.ISIN, err)
		}
		src.AddBond(b.ISIN, cfs)
		for _, q := range b.Quotes {
			d, err := parseDate("quote date", q.Date)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", b.ISIN, err)
			}
			src.AddQuote(b.ISIN, d, q.DirtyPrice)
		}
	}
	return src, func() {}, nil
}

func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
