package bond_test

import (
	"time"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// bullet returns the cashflows of a fixed-coupon bullet bond per 100 face,
// with coupon in percent paid frequency times a year.
func bullet(issue time.Time, years, frequency int, coupon float64) []bond.Cashflow {
	months := 12 / frequency
	n := years * frequency
	cfs := make([]bond.Cashflow, 0, n)
	for k := 1; k <= n; k++ {
		cf := bond.Cashflow{
			Date:   utils.AddMonth(issue, k*months),
			Coupon: coupon / float64(frequency),
		}
		if k == n {
			cf.Principal = 100
		}
		cfs = append(cfs, cf)
	}
	return cfs
}

func scale(cfs []bond.Cashflow, notional float64) []bond.Cashflow {
	out := make([]bond.Cashflow, len(cfs))
	for i, cf := range cfs {
		out[i] = bond.Cashflow{
			Date:      cf.Date,
			Coupon:    cf.Coupon * notional / 100,
			Principal: cf.Principal * notional / 100,
		}
	}
	return out
}
