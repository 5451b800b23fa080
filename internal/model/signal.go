package model

// RecommendationTrend is the latest analyst rating distribution.
type RecommendationTrend struct {
	Period     string
	StrongBuy  int
	Buy        int
	Hold       int
	Sell       int
	StrongSell int
}

// Total returns the number of analyst ratings.
func (t RecommendationTrend) Total() int {
	return t.StrongBuy + t.Buy + t.Hold + t.Sell + t.StrongSell
}

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// Tier maps a total score range to a rating label.
type Tier struct {
	Label  string
	Action string
}

// Recommendation is the scored outcome for one symbol.
type Recommendation struct {
	Symbol     string
	Factors    []FactorScore
	TotalScore float64
	Tier       Tier
	WarningMsg string
}
