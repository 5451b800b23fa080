package strategy

import (
	"fmt"

	"InvestmentHelper/internal/model"
)

const (
	weightConsensus = 0.50
	weightSMA       = 0.25
	weightRSI       = 0.25
)

// scoreConsensus maps the analyst distribution onto [-2, 2]:
// strong buy counts +2, buy +1, hold 0, sell -1, strong sell -2.
// Weight: 0.50
func scoreConsensus(trend *model.RecommendationTrend) (model.FactorScore, bool) {
	if trend == nil || trend.Total() == 0 {
		return model.FactorScore{}, false
	}
	sum := 2*trend.StrongBuy + trend.Buy - trend.Sell - 2*trend.StrongSell
	score := float64(sum) / float64(trend.Total())
	return model.FactorScore{
		Name:     "Analyst consensus",
		RawScore: score,
		Weight:   weightConsensus,
		Commentary: fmt.Sprintf("%d analysts: %d strong buy, %d buy, %d hold, %d sell, %d strong sell",
			trend.Total(), trend.StrongBuy, trend.Buy, trend.Hold, trend.Sell, trend.StrongSell),
	}, true
}

// scoreSMADeviation scores how far the last close sits from the longest
// available moving average. Below the average scores positive.
// Weight: 0.25
func scoreSMADeviation(tech model.Technicals) (model.FactorScore, bool) {
	ma, label := tech.SMA50, "SMA50"
	if !tech.HasSMA50 {
		ma, label = tech.SMA20, "SMA20"
		if !tech.HasSMA20 {
			return model.FactorScore{}, false
		}
	}
	if ma == 0 {
		return model.FactorScore{}, false
	}
	deviation := (tech.LastClose - ma) / ma * 100

	var score float64
	switch {
	case deviation <= -15:
		score = 2.0
	case deviation <= -10:
		score = 1.5
	case deviation <= -5:
		score = 1.0
	case deviation <= -2:
		score = 0.5
	case deviation <= 2:
		score = 0
	case deviation <= 5:
		score = -0.5
	case deviation <= 10:
		score = -1.0
	case deviation <= 15:
		score = -1.5
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       label + " deviation",
		RawScore:   score,
		Weight:     weightSMA,
		Commentary: fmt.Sprintf("%+.1f%% vs %s", deviation, label),
	}, true
}

// scoreRSI scores the daily RSI(14).
// Weight: 0.25
func scoreRSI(tech model.Technicals) (model.FactorScore, bool) {
	if !tech.HasRSI {
		return model.FactorScore{}, false
	}
	rsi := tech.RSI14
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "RSI14",
		RawScore:   score,
		Weight:     weightRSI,
		Commentary: fmt.Sprintf("RSI=%.0f", rsi),
	}, true
}
