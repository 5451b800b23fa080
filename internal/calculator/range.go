package calculator

import (
	"errors"
	"math"

	"InvestmentHelper/internal/model"
)

// CalculateRange returns the highest and lowest close of the series.
func CalculateRange(points []model.PricePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no price points provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range points {
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
	}
	return high, low, nil
}

// CalculatePosition returns where current sits within [low, high] (0.0~1.0).
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
