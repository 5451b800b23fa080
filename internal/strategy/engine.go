// Package strategy turns analyst ratings and local technicals into a
// single recommendation tier.
package strategy

import "InvestmentHelper/internal/model"

// Tier labels, highest first.
var (
	TierStrongBuy  = model.Tier{Label: "Strong buy", Action: "Consider building a position"}
	TierBuy        = model.Tier{Label: "Buy", Action: "Consider adding on weakness"}
	TierHold       = model.Tier{Label: "Hold", Action: "Keep current exposure"}
	TierSell       = model.Tier{Label: "Sell", Action: "Consider trimming"}
	TierStrongSell = model.Tier{Label: "Strong sell", Action: "Consider exiting"}
)

// InsufficientTier is returned when no factor could be scored.
var InsufficientTier = model.Tier{Label: "Insufficient data", Action: "No recommendation"}

// mapTier maps a total score to a Tier.
func mapTier(totalScore float64) model.Tier {
	switch {
	case totalScore >= 1.0:
		return TierStrongBuy
	case totalScore >= 0.3:
		return TierBuy
	case totalScore > -0.3:
		return TierHold
	case totalScore > -1.0:
		return TierSell
	default:
		return TierStrongSell
	}
}

// Evaluate scores symbol. Factors without data are left out and the weights
// of the remaining ones are rescaled to sum to one.
func Evaluate(symbol string, trend *model.RecommendationTrend, tech model.Technicals) *model.Recommendation {
	rec := &model.Recommendation{Symbol: symbol}

	var factors []model.FactorScore
	if f, ok := scoreConsensus(trend); ok {
		factors = append(factors, f)
	}
	if f, ok := scoreSMADeviation(tech); ok {
		factors = append(factors, f)
	}
	if f, ok := scoreRSI(tech); ok {
		factors = append(factors, f)
	}
	if len(factors) == 0 {
		rec.Tier = InsufficientTier
		return rec
	}

	var weightSum float64
	for _, f := range factors {
		weightSum += f.Weight
	}
	for i := range factors {
		factors[i].Weight /= weightSum
		factors[i].Weighted = factors[i].RawScore * factors[i].Weight
		rec.TotalScore += factors[i].Weighted
	}
	rec.Factors = factors
	rec.Tier = mapTier(rec.TotalScore)

	if tech.HasRSI && tech.RSI14 > 85 {
		rec.WarningMsg = "RSI above 85: the price looks stretched"
	}
	return rec
}
