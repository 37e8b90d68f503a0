package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/utils"
)

type bondInput struct {
	TaskID    string         `json:"task_id,omitempty"`
	ValueDate string         `json:"value_date"`
	DayCount  string         `json:"day_count"`
	Frequency int            `json:"frequency"`
	Cashflows []cashflowJSON `json:"cashflows"`
	// DirtyPrice is read by yield, Yield by price.
	DirtyPrice float64 `json:"dirty_price"`
	Yield      float64 `json:"yield"`
}

type bondOutput struct {
	TaskID           string  `json:"task_id,omitempty"`
	ValueDate        string  `json:"value_date,omitempty"`
	DirtyPrice       float64 `json:"dirty_price"`
	Yield            float64 `json:"yield"`
	MacaulayDuration float64 `json:"macaulay_duration"`
	ModifiedDuration float64 `json:"modified_duration"`
	Convexity        float64 `json:"convexity"`
	DV01             float64 `json:"dv01"`
	Error            string  `json:"error,omitempty"`
}

func (in bondInput) parse() ([]bond.Cashflow, bond.Convention, error) {
	cfs, err := parseCashflows(in.Cashflows)
	if err != nil {
		return nil, bond.Convention{}, err
	}
	dc := in.DayCount
	if dc == "" {
		dc = utils.Act365F
	}
	if in.Frequency < 0 {
		return nil, bond.Convention{}, fmt.Errorf("frequency must not be negative")
	}
	return cfs, bond.Convention{DayCount: dc, Frequency: in.Frequency}, nil
}

func newYieldCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "yield",
		Short: "Solve yield to maturity from dirty price",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.yieldFromPrice, failedBond, bondTaskID)
		},
	}
}

func newPriceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "price",
		Short: "Price a bond from its yield to maturity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, a.priceFromYield, failedBond, bondTaskID)
		},
	}
}

func (a *app) yieldFromPrice(in bondInput) (bondOutput, error) {
	valueDate, err := parseDate("value_date", in.ValueDate)
	if err != nil {
		return bondOutput{}, err
	}
	cfs, conv, err := in.parse()
	if err != nil {
		return bondOutput{}, err
	}
	if in.DirtyPrice <= 0 {
		return bondOutput{}, fmt.Errorf("dirty_price must be positive")
	}

	y, err := bond.NewPricer(a.cfg).YieldFromFullPrice(cfs, valueDate, in.DirtyPrice, conv)
	if err != nil {
		return bondOutput{}, err
	}
	return a.bondRisk(in, valueDate, cfs, conv, in.DirtyPrice, y), nil
}

func (a *app) priceFromYield(in bondInput) (bondOutput, error) {
	valueDate, err := parseDate("value_date", in.ValueDate)
	if err != nil {
		return bondOutput{}, err
	}
	cfs, conv, err := in.parse()
	if err != nil {
		return bondOutput{}, err
	}
	price := bond.FullPriceFromYield(cfs, valueDate, in.Yield, conv)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return bondOutput{}, fmt.Errorf("yield %g gives no finite price", in.Yield)
	}
	return a.bondRisk(in, valueDate, cfs, conv, price, in.Yield), nil
}

func (a *app) bondRisk(in bondInput, valueDate time.Time, cfs []bond.Cashflow, conv bond.Convention, price, y float64) bondOutput {
	p := bond.NewPricer(a.cfg)
	a.logger.WithField("task_id", in.TaskID).WithField("yield", y).Debug("solved")
	return bondOutput{
		TaskID:           in.TaskID,
		ValueDate:        in.ValueDate,
		DirtyPrice:       price,
		Yield:            y,
		MacaulayDuration: bond.MacaulayDuration(cfs, valueDate, y, conv),
		ModifiedDuration: p.ModifiedDuration(cfs, valueDate, y, conv),
		Convexity:        p.Convexity(cfs, valueDate, y, conv),
		DV01:             p.DV01(cfs, valueDate, y, conv),
	}
}

func failedBond(in bondInput, err error) bondOutput {
	return bondOutput{TaskID: in.TaskID, Error: err.Error()}
}

func bondTaskID(in bondInput) string { return in.TaskID }
