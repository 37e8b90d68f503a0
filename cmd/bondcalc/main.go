// Command bondcalc solves bond yields, prices, zero spreads and futures
// forward yields from JSON.
//
// Each subcommand reads a JSON object or array from --input (or stdin) and
// writes the results in the same shape to stdout. The exit status is 1 when
// any element fails.
package main

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errBatchFailed) {
			logrus.WithError(err).Error("bondcalc failed")
		}
		os.Exit(1)
	}
}
