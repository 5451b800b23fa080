package calculator

import "InvestmentHelper/internal/model"

// Technicals derives every local indicator that the series is long enough for.
func Technicals(points []model.PricePoint) model.Technicals {
	t := model.Technicals{PointCount: len(points)}
	if len(points) == 0 {
		return t
	}
	t.LastClose = points[len(points)-1].Close

	if v, err := CalculateSMA20(points); err == nil {
		t.SMA20, t.HasSMA20 = v, true
	}
	if v, err := CalculateSMA50(points); err == nil {
		t.SMA50, t.HasSMA50 = v, true
	}
	if v, err := CalculateRSI(model.Closes(points), 14); err == nil {
		t.RSI14, t.HasRSI = v, true
	}
	if h, l, err := CalculateRange(points); err == nil {
		t.RangeHigh, t.RangeLow, t.HasRange = h, l, true
		t.Position, _ = CalculatePosition(t.LastClose, h, l)
	}
	return t
}
