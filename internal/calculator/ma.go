package calculator

import (
	"errors"

	"InvestmentHelper/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateSMA20 returns the 20-day simple moving average of the closes.
func CalculateSMA20(points []model.PricePoint) (float64, error) {
	return CalculateSMA(model.Closes(points), 20)
}

// CalculateSMA50 returns the 50-day simple moving average of the closes.
func CalculateSMA50(points []model.PricePoint) (float64, error) {
	return CalculateSMA(model.Closes(points), 50)
}
