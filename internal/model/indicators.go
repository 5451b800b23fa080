package model

import "github.com/shopspring/decimal"

// Indicator is one macro-economic data point.
type Indicator struct {
	Category string
	Country  string
	Value    decimal.NullDecimal
	RawValue string // kept when the provider sends a non-numeric value
	Unit     string
}

// Technicals are the indicators derived locally from a price series.
type Technicals struct {
	SMA20      float64
	SMA50      float64
	RSI14      float64
	RangeHigh  float64
	RangeLow   float64
	Position   float64 // 0.0 ~ 1.0 within [RangeLow, RangeHigh]
	HasSMA20   bool
	HasSMA50   bool
	HasRSI     bool
	HasRange   bool
	LastClose  float64
	PointCount int
}
