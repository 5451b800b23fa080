// Package recorder journals watchlist changes and quote snapshots for
// later analysis.
package recorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// WatchlistEvent records one applied watchlist change.
type WatchlistEvent struct {
	Action string // "add" or "remove"
	Symbol string
	Items  []string // list after the change
	At     time.Time
}

// QuoteSnapshot records a quote seen by the digest job.
type QuoteSnapshot struct {
	Symbol   string
	Currency string
	Price    decimal.NullDecimal
	DayHigh  decimal.NullDecimal
	DayLow   decimal.NullDecimal
	Source   string
	At       time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordWatchlistEvent(evt *WatchlistEvent) error
	RecordQuote(snap *QuoteSnapshot) error
	Close() error
}
