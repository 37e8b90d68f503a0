package main

import (
	"fmt"
	"time"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/curve"
	"github.com/meenmo/fisolve/utils"
)

func main() {
	settlement := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)

	// Par rates (percent) by tenor in years.
	parRates := map[int]float64{
		1:  2.7225,
		2:  2.8075,
		3:  2.8882,
		5:  3.0189,
		7:  3.0889,
		10: 3.1579,
		20: 3.0946,
	}

	quotes := []curve.Quote{
		curve.DepositQuote(settlement, settlement.AddDate(0, 6, 0), 0.0276, utils.Act365F),
	}
	for tenor, rate := range parRates {
		quotes = append(quotes, curve.ParBondQuote(settlement, settlement.AddDate(tenor, 0, 0), rate/100, 4, utils.Act365F))
	}

	c, err := curve.Bootstrap(settlement, quotes)
	if err != nil {
		fmt.Println("bootstrap:", err)
		return
	}

	cashflows := make([]bond.Cashflow, 0, 20)
	for k := 1; k <= 20; k++ {
		cf := bond.Cashflow{Date: utils.AddMonth(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC), 6*k), Coupon: 1.625}
		if k == 20 {
			cf.Principal = 100
		}
		cashflows = append(cashflows, cf)
	}
	conv := bond.Convention{DayCount: utils.Act365F, Frequency: 2}
	const dirty = 99.85

	ytm, err := bond.YieldFromFullPrice(cashflows, settlement, dirty, conv)
	if err != nil {
		fmt.Println("yield:", err)
		return
	}
	z, err := bond.ZeroSpread(cashflows, c, settlement, dirty)
	if err != nil {
		fmt.Println("zero spread:", err)
		return
	}

	fmt.Printf("YTM: %.6f%%\n", ytm*100)
	fmt.Printf("Modified duration: %.4f\n", bond.ModifiedDuration(cashflows, settlement, ytm, conv))
	fmt.Printf("Convexity: %.4f\n", bond.Convexity(cashflows, settlement, ytm, conv))
	fmt.Printf("Zero spread: %.2f bp\n", z*1e4)
}
