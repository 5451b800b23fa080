// Package macro reads macro-economic indicators from a Trading Economics
// style endpoint.
package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"InvestmentHelper/internal/model"
)

const source = "macro"

// Client performs the single indicators request.
type Client struct {
	URL    string
	APIKey string
	Limit  int
	HTTP   *http.Client
}

// NewClient creates a macro client. limit <= 0 means no truncation in Latest.
func NewClient(endpoint, apiKey string, timeout time.Duration, limit int, proxyURL string) *Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		URL:    endpoint,
		APIKey: apiKey,
		Limit:  limit,
		HTTP:   &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (c *Client) requestURL() string {
	if c.APIKey == "" {
		return c.URL
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	q := u.Query()
	q.Set("c", c.APIKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch issues one GET and decodes the indicator array. Every failure
// returns an empty, non-nil slice together with a *model.Failure.
func (c *Client) Fetch(ctx context.Context) ([]model.Indicator, error) {
	empty := []model.Indicator{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return empty, model.NewFailure(source, model.KindUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return empty, model.NewFailure(source, model.KindUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return empty, model.NewFailure(source, model.KindUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	}

	var items []any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return empty, model.NewFailure(source, model.KindDecode, err)
	}

	out := make([]model.Indicator, 0, len(items))
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			continue
		}
		out = append(out, parseIndicator(item))
	}
	log.Debug().Int("count", len(out)).Msg("macro indicators fetched")
	return out, nil
}

// Latest fetches and keeps the first Limit indicators.
func (c *Client) Latest(ctx context.Context) model.Result[[]model.Indicator] {
	items, err := c.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("macro indicators unavailable")
		return model.Result[[]model.Indicator]{Value: items, Err: err}
	}
	return model.ResultOf(Head(items, c.Limit), nil)
}

// Head returns at most n leading indicators; n <= 0 keeps all.
func Head(items []model.Indicator, n int) []model.Indicator {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

func parseIndicator(item any) model.Indicator {
	ind := model.Indicator{
		Category: field(item, "$.category", "$.Category"),
		Country:  field(item, "$.country", "$.Country"),
		Unit:     field(item, "$.unit", "$.Unit"),
	}
	switch v := lookup(item, "$.value", "$.Value", "$.LatestValue").(type) {
	case float64:
		ind.Value = decimal.NewNullDecimal(decimal.NewFromFloat(v))
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			ind.Value = decimal.NewNullDecimal(d)
		} else {
			ind.RawValue = strings.TrimSpace(v)
		}
	}
	return ind
}

func lookup(item any, paths ...string) any {
	for _, p := range paths {
		if v, err := jsonpath.Get(p, item); err == nil && v != nil {
			return v
		}
	}
	return nil
}

func field(item any, paths ...string) string {
	switch v := lookup(item, paths...).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return decimal.NewFromFloat(v).String()
	}
	return ""
}
