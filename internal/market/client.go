// Package market fetches instrument snapshots, price history and analyst
// trends from a market-data provider.
package market

import (
	"context"
	"fmt"

	"InvestmentHelper/internal/model"
)

// Client defines the interface for fetching market data.
type Client interface {
	Lookup(ctx context.Context, symbol string) (*model.Quote, error)
	History(ctx context.Context, symbol string, period Period) ([]model.PricePoint, error)
	Trend(ctx context.Context, symbol string) (*model.RecommendationTrend, error)
	Name() string
}

// Period is a provider history range.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	Period10y Period = "10y"
	PeriodYtd Period = "ytd"
	PeriodMax Period = "max"
)

var periods = []Period{Period1d, Period5d, Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y, Period10y, PeriodYtd, PeriodMax}

// ParsePeriod validates s against the known ranges.
func ParsePeriod(s string) (Period, error) {
	for _, p := range periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown history period %q", s)
}
