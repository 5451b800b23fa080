package market

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"InvestmentHelper/internal/model"
)

// MockClient returns controllable fixed data for development and testing.
type MockClient struct {
	Quotes map[string]*model.Quote
	Price  float64
	Points []model.PricePoint
	Trends map[string]*model.RecommendationTrend
	Err    error // returned by every call when set

	lookups atomic.Int64
}

func (m *MockClient) Name() string { return "mock" }

// LookupCount returns how many times Lookup was called.
func (m *MockClient) LookupCount() int64 { return m.lookups.Load() }

func (m *MockClient) Lookup(_ context.Context, symbol string) (*model.Quote, error) {
	m.lookups.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if q, ok := m.Quotes[symbol]; ok {
		return q, nil
	}
	return &model.Quote{
		Symbol:       symbol,
		Name:         symbol,
		Currency:     "USD",
		CurrentPrice: decimal.NewNullDecimal(decimal.NewFromFloat(m.Price)),
		FetchedAt:    time.Now(),
	}, nil
}

func (m *MockClient) History(_ context.Context, _ string, _ Period) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Points != nil {
		return m.Points, nil
	}
	return GenerateMockPoints(m.Price, 120), nil
}

func (m *MockClient) Trend(_ context.Context, symbol string) (*model.RecommendationTrend, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if t, ok := m.Trends[symbol]; ok {
		return t, nil
	}
	return nil, model.NewFailure("mock", model.KindNotFound, nil)
}

// GenerateMockPoints builds a gently rising daily series ending today.
func GenerateMockPoints(basePrice float64, count int) []model.PricePoint {
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date:  time.Now().AddDate(0, 0, -(count - i)),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}
