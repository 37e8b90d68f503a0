package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/fisolve/bond"
)

// ErrNotFound is returned when a source has no data for an ISIN or date.
var ErrNotFound = errors.New("marketdata: not found")

// Source supplies bond cashflows (per 100 face) and dirty price quotes.
type Source interface {
	Cashflows(ctx context.Context, isin string) ([]bond.Cashflow, error)
	DirtyPrice(ctx context.Context, isin string, date time.Time) (float64, error)
}

// MapSource is a static map-backed implementation for development/testing.
type MapSource struct {
	cashflows map[string][]bond.Cashflow
	quotes    map[string]float64
}

func NewMapSource() *MapSource {
	return &MapSource{
		cashflows: make(map[string][]bond.Cashflow),
		quotes:    make(map[string]float64),
	}
}

// AddBond registers the cashflows of isin. Not safe for use concurrently
// with reads.
func (m *MapSource) AddBond(isin string, cfs []bond.Cashflow) {
	m.cashflows[isin] = cfs
}

// AddQuote registers a dirty price. Not safe for use concurrently with reads.
func (m *MapSource) AddQuote(isin string, date time.Time, dirty float64) {
	m.quotes[quoteKey(isin, date)] = dirty
}

func (m *MapSource) Cashflows(ctx context.Context, isin string) ([]bond.Cashflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfs, ok := m.cashflows[isin]
	if !ok {
		return nil, fmt.Errorf("%w: cashflows for %s", ErrNotFound, isin)
	}
	return cfs, nil
}

func (m *MapSource) DirtyPrice(ctx context.Context, isin string, date time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	val, ok := m.quotes[quoteKey(isin, date)]
	if !ok {
		return 0, fmt.Errorf("%w: quote for %s on %s", ErrNotFound, isin, date.Format("2006-01-02"))
	}
	return val, nil
}

func quoteKey(isin string, date time.Time) string {
	return isin + "|" + date.Format("2006-01-02")
}
