package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/curve"
)

type pillarJSON struct {
	Date string `json:"date"`
	// ZeroRate is continuously compounded, ACT/365F.
	ZeroRate float64 `json:"zero_rate"`
}

type zspreadInput struct {
	TaskID     string         `json:"task_id,omitempty"`
	ValueDate  string         `json:"value_date"`
	DirtyPrice float64        `json:"dirty_price"`
	Cashflows  []cashflowJSON `json:"cashflows"`
	Curve      []pillarJSON   `json:"curve"`
}

type zspreadOutput struct {
	TaskID         string  `json:"task_id,omitempty"`
	ValueDate      string  `json:"value_date,omitempty"`
	DirtyPrice     float64 `json:"dirty_price"`
	ZeroSpread     float64 `json:"zero_spread"`
	ZeroSpreadRisk float64 `json:"zero_spread_risk"`
	Error          string  `json:"error,omitempty"`
}

func newZSpreadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "zspread",
		Short: "Solve the zero spread over a zero curve from dirty price",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.zeroSpread,
				func(in zspreadInput, err error) zspreadOutput {
					return zspreadOutput{TaskID: in.TaskID, Error: err.Error()}
				},
				func(in zspreadInput) string { return in.TaskID })
		},
	}
}

func (a *app) zeroSpread(in zspreadInput) (zspreadOutput, error) {
	valueDate, err := parseDate("value_date", in.ValueDate)
	if err != nil {
		return zspreadOutput{}, err
	}
	cfs, err := parseCashflows(in.Cashflows)
	if err != nil {
		return zspreadOutput{}, err
	}

	c, err := parseCurve(valueDate, in.Curve)
	if err != nil {
		return zspreadOutput{}, err
	}

	z, err := bond.NewPricer(a.cfg).ZeroSpread(cfs, c, valueDate, in.DirtyPrice)
	if err != nil {
		return zspreadOutput{}, err
	}
	return zspreadOutput{
		TaskID:         in.TaskID,
		ValueDate:      in.ValueDate,
		DirtyPrice:     in.DirtyPrice,
		ZeroSpread:     z,
		ZeroSpreadRisk: bond.ZeroSpreadRisk(cfs, c, valueDate, z),
	}, nil
}

func parseCurve(settlement time.Time, pillars []pillarJSON) (*curve.Curve, error) {
	zeros := make(map[time.Time]float64, len(pillars))
	for _, p := range pillars {
		d, err := parseDate("curve date", p.Date)
		if err != nil {
			return nil, err
		}
		zeros[d] = p.ZeroRate
	}
	c, err := curve.NewCurve(settlement, zeros)
	if err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	return c, nil
}
