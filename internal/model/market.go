package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one close of a historical price series.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// Quote is a point-in-time snapshot of an instrument. Every field may be
// absent: numbers are NullDecimal, text is empty.
type Quote struct {
	Symbol              string
	Name                string
	Currency            string
	CurrentPrice        decimal.NullDecimal
	DayHigh             decimal.NullDecimal
	DayLow              decimal.NullDecimal
	TrailingPE          decimal.NullDecimal
	DividendYield       decimal.NullDecimal
	LongBusinessSummary string
	Benchmark           string
	PerformanceOverview string
	FundFamily          string
	FetchedAt           time.Time
}

// UnavailableQuote is the degraded snapshot shown when a lookup fails.
func UnavailableQuote(symbol string) *Quote {
	return &Quote{Symbol: symbol, FetchedAt: time.Now()}
}

// Closes extracts the close prices of a series in order.
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
