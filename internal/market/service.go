package market

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"InvestmentHelper/internal/calculator"
	"InvestmentHelper/internal/model"
)

// Service is what the dashboard surfaces call. Identical concurrent calls
// share one upstream request; nothing is kept once it returns.
type Service struct {
	client Client
	period Period
	group  singleflight.Group
}

// NewService wraps client. An empty period falls back to six months.
func NewService(client Client, period Period) *Service {
	if period == "" {
		period = Period6mo
	}
	return &Service{client: client, period: period}
}

// Period returns the history range used by History.
func (s *Service) Period() Period { return s.period }

// Source names the underlying provider.
func (s *Service) Source() string { return s.client.Name() }

// do runs fn once per key across concurrent callers. The shared call does not
// inherit any one caller's cancellation; each caller stops waiting when its
// own ctx is done.
func (s *Service) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) { return fn(detached) })
	select {
	case r := <-ch:
		return r.Val, r.Err, r.Shared
	case <-ctx.Done():
		return nil, model.NewFailure(s.client.Name(), model.KindUnavailable, ctx.Err()), false
	}
}

// Quote looks up symbol. On failure the value is a blank snapshot so callers
// can always render it.
func (s *Service) Quote(ctx context.Context, symbol string) model.Result[*model.Quote] {
	symbol = strings.TrimSpace(symbol)
	v, err, shared := s.do(ctx, "quote:"+symbol, func(ctx context.Context) (any, error) {
		return s.client.Lookup(ctx, symbol)
	})
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("source", s.client.Name()).Msg("quote lookup failed")
		return model.Result[*model.Quote]{Value: model.UnavailableQuote(symbol), Err: err}
	}
	q := v.(*model.Quote)
	if q == nil {
		return model.Result[*model.Quote]{Value: model.UnavailableQuote(symbol)}
	}
	if shared {
		log.Debug().Str("symbol", symbol).Msg("quote lookup coalesced")
	}
	// copy so coalesced callers never share a pointer
	cp := *q
	return model.ResultOf(&cp, nil)
}

// History returns the close series for the configured period.
func (s *Service) History(ctx context.Context, symbol string) model.Result[[]model.PricePoint] {
	symbol = strings.TrimSpace(symbol)
	v, err, _ := s.do(ctx, "history:"+string(s.period)+":"+symbol, func(ctx context.Context) (any, error) {
		return s.client.History(ctx, symbol, s.period)
	})
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("history fetch failed")
		return model.Result[[]model.PricePoint]{Err: err}
	}
	points, _ := v.([]model.PricePoint)
	return model.ResultOf(append([]model.PricePoint(nil), points...), nil)
}

// Trend returns the latest analyst rating distribution.
func (s *Service) Trend(ctx context.Context, symbol string) model.Result[*model.RecommendationTrend] {
	symbol = strings.TrimSpace(symbol)
	v, err, _ := s.do(ctx, "trend:"+symbol, func(ctx context.Context) (any, error) {
		return s.client.Trend(ctx, symbol)
	})
	if err != nil {
		if model.KindOf(err) != model.KindNotFound {
			log.Warn().Err(err).Str("symbol", symbol).Msg("analyst trend fetch failed")
		}
		return model.Result[*model.RecommendationTrend]{Err: err}
	}
	t, _ := v.(*model.RecommendationTrend)
	if t == nil {
		return model.Result[*model.RecommendationTrend]{Err: model.NewFailure(s.client.Name(), model.KindNotFound, nil)}
	}
	cp := *t
	return model.ResultOf(&cp, nil)
}

// Technicals derives local indicators from a fetched series.
func Technicals(points []model.PricePoint) model.Technicals {
	return calculator.Technicals(points)
}
