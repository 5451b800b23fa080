package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"InvestmentHelper/internal/model"
)

const (
	yahooBaseURL   = "https://query1.finance.yahoo.com"
	summaryModules = "price,summaryDetail,assetProfile,fundProfile,fundPerformance,defaultKeyStatistics"
)

// YahooClient implements Client using the Yahoo Finance public API.
type YahooClient struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps display symbol to Yahoo ticker
}

// NewYahooClient creates a Yahoo Finance client with optional proxy support.
func NewYahooClient(timeout time.Duration, proxyURL string, symbolMap map[string]string) *YahooClient {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if symbolMap == nil {
		symbolMap = map[string]string{}
	}
	return &YahooClient{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		SymbolMap: symbolMap,
	}
}

func (c *YahooClient) Name() string { return "yahoo" }

func (c *YahooClient) yahooSymbol(symbol string) string {
	if mapped, ok := c.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta       map[string]any `json:"meta"`
			Timestamp  []int64        `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []any `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// get performs a GET and returns the body of a 200 response.
func (c *YahooClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+endpoint, nil)
	if err != nil {
		return nil, model.NewFailure("yahoo", model.KindUnavailable, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, model.NewFailure("yahoo", model.KindUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewFailure("yahoo", model.KindUnavailable, fmt.Errorf("read body: %w", err))
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.NewFailure("yahoo", model.KindNotFound, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, model.NewFailure("yahoo", model.KindUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	}
	return body, nil
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol, interval string, period Period) (*yahooChart, error) {
	endpoint := fmt.Sprintf("/v8/finance/chart/%s?interval=%s&range=%s",
		url.PathEscape(c.yahooSymbol(symbol)), interval, period)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, model.NewFailure("yahoo", model.KindDecode, err)
	}
	if chart.Chart.Error != nil {
		kind := model.KindUnavailable
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			kind = model.KindNotFound
		}
		return nil, model.NewFailure("yahoo", kind, fmt.Errorf("api error: %s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, model.NewFailure("yahoo", model.KindNotFound, fmt.Errorf("no data returned for %s", symbol))
	}
	return &chart, nil
}

// fetchSummary returns the first quoteSummary result as a generic document.
func (c *YahooClient) fetchSummary(ctx context.Context, symbol, modules string) (any, error) {
	endpoint := fmt.Sprintf("/v10/finance/quoteSummary/%s?modules=%s",
		url.PathEscape(c.yahooSymbol(symbol)), modules)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, model.NewFailure("yahoo", model.KindDecode, err)
	}
	result := pathValue(doc, "$.quoteSummary.result[0]")
	if result == nil {
		return nil, model.NewFailure("yahoo", model.KindNotFound, fmt.Errorf("empty quote summary for %s", symbol))
	}
	return result, nil
}

// Lookup returns a quote snapshot. The quoteSummary endpoint carries every
// field; when it is refused the chart metadata still gives name and prices.
func (c *YahooClient) Lookup(ctx context.Context, symbol string) (*model.Quote, error) {
	summary, err := c.fetchSummary(ctx, symbol, summaryModules)
	if err == nil {
		return quoteFromSummary(symbol, summary), nil
	}
	log.Debug().Err(err).Str("symbol", symbol).Msg("yahoo quote summary failed, falling back to chart meta")

	chart, chartErr := c.fetchChart(ctx, symbol, "1d", Period1d)
	if chartErr != nil {
		return nil, chartErr
	}
	return quoteFromMeta(symbol, chart.Chart.Result[0].Meta), nil
}

func quoteFromSummary(symbol string, doc any) *model.Quote {
	return &model.Quote{
		Symbol:              symbol,
		Name:                pathString(doc, "$.price.longName", "$.price.shortName"),
		Currency:            pathString(doc, "$.price.currency", "$.summaryDetail.currency"),
		CurrentPrice:        pathDecimal(doc, "$.price.regularMarketPrice", "$.financialData.currentPrice"),
		DayHigh:             pathDecimal(doc, "$.summaryDetail.dayHigh", "$.price.regularMarketDayHigh"),
		DayLow:              pathDecimal(doc, "$.summaryDetail.dayLow", "$.price.regularMarketDayLow"),
		TrailingPE:          pathDecimal(doc, "$.summaryDetail.trailingPE"),
		DividendYield:       pathDecimal(doc, "$.summaryDetail.dividendYield", "$.summaryDetail.yield"),
		LongBusinessSummary: pathString(doc, "$.assetProfile.longBusinessSummary", "$.fundProfile.longBusinessSummary"),
		Benchmark:           pathString(doc, "$.fundPerformance.performanceOverview.benchmark", "$.fundProfile.categoryName"),
		PerformanceOverview: performanceOverview(doc),
		FundFamily:          pathString(doc, "$.fundProfile.family", "$.defaultKeyStatistics.fundFamily"),
		FetchedAt:           time.Now(),
	}
}

// performanceOverview condenses the fund return figures into one line.
func performanceOverview(doc any) string {
	labels := []struct{ label, path string }{
		{"YTD", "$.fundPerformance.performanceOverview.ytdReturnPct"},
		{"1Y", "$.fundPerformance.performanceOverview.oneYearTotalReturn"},
		{"5Y avg", "$.fundPerformance.performanceOverview.fiveYrAvgReturnPct"},
	}
	var parts []string
	for _, l := range labels {
		v := pathDecimal(doc, l.path)
		if !v.Valid {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s%%", l.label, v.Decimal.Shift(2).StringFixed(2)))
	}
	return strings.Join(parts, ", ")
}

func quoteFromMeta(symbol string, meta map[string]any) *model.Quote {
	var doc any = meta
	return &model.Quote{
		Symbol:       symbol,
		Name:         pathString(doc, "$.longName", "$.shortName"),
		Currency:     pathString(doc, "$.currency"),
		CurrentPrice: pathDecimal(doc, "$.regularMarketPrice"),
		DayHigh:      pathDecimal(doc, "$.regularMarketDayHigh"),
		DayLow:       pathDecimal(doc, "$.regularMarketDayLow"),
		FetchedAt:    time.Now(),
	}
}

// History returns daily closes over period, oldest first. Null bars are skipped.
func (c *YahooClient) History(ctx context.Context, symbol string, period Period) ([]model.PricePoint, error) {
	chart, err := c.fetchChart(ctx, symbol, "1d", period)
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close
	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		cl := toFloat(closes[i])
		if cl == 0 {
			continue // null bar (holiday, halted)
		}
		points = append(points, model.PricePoint{Date: time.Unix(ts, 0).UTC(), Close: cl})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// Trend returns the most recent analyst recommendation distribution.
func (c *YahooClient) Trend(ctx context.Context, symbol string) (*model.RecommendationTrend, error) {
	summary, err := c.fetchSummary(ctx, symbol, "recommendationTrend")
	if err != nil {
		return nil, err
	}
	const base = "$.recommendationTrend.trend[0]"
	if pathValue(summary, base) == nil {
		return nil, model.NewFailure("yahoo", model.KindNotFound, fmt.Errorf("no analyst trend for %s", symbol))
	}
	return &model.RecommendationTrend{
		Period:     pathString(summary, base+".period"),
		StrongBuy:  pathInt(summary, base+".strongBuy"),
		Buy:        pathInt(summary, base+".buy"),
		Hold:       pathInt(summary, base+".hold"),
		Sell:       pathInt(summary, base+".sell"),
		StrongSell: pathInt(summary, base+".strongSell"),
	}, nil
}
