package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestmentHelper/internal/market"
	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

type fakeMacro struct {
	res model.Result[[]model.Indicator]
}

func (f fakeMacro) Latest(context.Context) model.Result[[]model.Indicator] { return f.res }

type testEnv struct {
	server  *httptest.Server
	manager *watchlist.Manager
	broker  *watchlist.Broker
	client  *market.MockClient
}

func newTestEnv(t *testing.T, macroRes model.Result[[]model.Indicator]) *testEnv {
	t.Helper()
	broker := watchlist.NewBroker(8)
	manager, err := watchlist.NewManager(watchlist.NewStore(filepath.Join(t.TempDir(), "watchlist.json")), broker)
	require.NoError(t, err)

	client := &market.MockClient{
		Price: 100,
		Quotes: map[string]*model.Quote{
			"AAPL": {
				Symbol:       "AAPL",
				Name:         "Apple Inc.",
				Currency:     "USD",
				CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("189.5")),
			},
		},
	}
	svc := market.NewService(client, market.Period6mo)
	macroSrc := fakeMacro{res: macroRes}
	ctrl := view.NewController(svc, macroSrc, manager, nil)
	h := NewHandler(ctrl, svc, macroSrc, broker, "test")
	h.KeepAlive = 50 * time.Millisecond

	srv := httptest.NewServer(NewRouter(h, []string{"http://localhost:8501"}))
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, manager: manager, broker: broker, client: client}
}

func okMacro() model.Result[[]model.Indicator] {
	return model.ResultOf([]model.Indicator{
		{Category: "GDP Growth Rate", Country: "United States", Value: decimal.NewNullDecimal(decimal.RequireFromString("2.8")), Unit: "percent"},
	}, nil)
}

func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, okMacro())

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var body struct {
		Data healthResponse `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "ok", body.Data.Status)
	assert.Equal(t, "test", body.Data.Version)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, okMacro())

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get(RequestIDHeader))
}

func TestWatchlistAPI(t *testing.T) {
	env := newTestEnv(t, okMacro())
	api := env.server.URL + "/api/v1/watchlist"

	t.Run("empty list", func(t *testing.T) {
		resp, err := http.Get(api)
		require.NoError(t, err)
		var body struct {
			Data watchlistResponse `json:"data"`
		}
		decode(t, resp, &body)
		assert.Equal(t, []string{}, body.Data.Items)
	})

	t.Run("add", func(t *testing.T) {
		resp, err := http.Post(api, "application/json", strings.NewReader(`{"symbol":"aapl"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body struct {
			Data watchlistResponse `json:"data"`
			Meta Meta              `json:"meta"`
		}
		decode(t, resp, &body)
		assert.Equal(t, []string{"AAPL"}, body.Data.Items)
		assert.Equal(t, "AAPL added to the watchlist", body.Meta.Message)
	})

	t.Run("duplicate add", func(t *testing.T) {
		resp, err := http.Post(api, "application/json", strings.NewReader(`{"symbol":"AAPL"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, watchlist.List{"AAPL"}, env.manager.Items())
	})

	t.Run("missing symbol", func(t *testing.T) {
		resp, err := http.Post(api, "application/json", strings.NewReader(`{"symbol":"  "}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, ErrCodeInvalidParameter, body.Error.Code)
	})

	t.Run("bad json", func(t *testing.T) {
		resp, err := http.Post(api, "application/json", strings.NewReader(`{`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("remove", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, api+"/AAPL", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, env.manager.Items())
	})

	t.Run("remove missing", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, api+"/MSFT", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, ErrCodeNotFound, body.Error.Code)
	})
}

func TestWatchlistAPI_ResolvesCasing(t *testing.T) {
	env := newTestEnv(t, okMacro())
	api := env.server.URL + "/api/v1/watchlist"

	resp, err := http.Post(api, "application/json", strings.NewReader(`{"symbol":"aapl"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, watchlist.List{"AAPL"}, env.manager.Items())

	req, _ := http.NewRequest(http.MethodDelete, api+"/aapl", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, env.manager.Items())

	_, err = env.manager.Add("US 10Y Treasury")
	require.NoError(t, err)
	req, _ = http.NewRequest(http.MethodDelete, api+"/"+url.PathEscape("us 10y treasury"), nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, env.manager.Items())
}

func TestGetQuote(t *testing.T) {
	env := newTestEnv(t, okMacro())

	resp, err := http.Get(env.server.URL + "/api/v1/quotes/AAPL")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data quoteResponse `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Apple Inc.", body.Data.Name)
	require.True(t, body.Data.CurrentPrice.Valid)
	assert.Equal(t, "189.5", body.Data.CurrentPrice.Decimal.String())
	assert.False(t, body.Data.DayHigh.Valid)
}

func TestGetQuoteFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", model.NewFailure("mock", model.KindNotFound, nil), http.StatusNotFound, ErrCodeNotFound},
		{"timeout", model.NewFailure("mock", model.KindTimeout, context.DeadlineExceeded), http.StatusGatewayTimeout, ErrCodeExternalAPITimeout},
		{"unavailable", model.NewFailure("mock", model.KindUnavailable, errors.New("status 500")), http.StatusBadGateway, ErrCodeExternalAPIError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, okMacro())
			env.client.Err = tt.err

			resp, err := http.Get(env.server.URL + "/api/v1/quotes/AAPL")
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			var body ErrorResponse
			decode(t, resp, &body)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.RequestID)
		})
	}
}

func TestGetMacro(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		env := newTestEnv(t, okMacro())
		resp, err := http.Get(env.server.URL + "/api/v1/macro")
		require.NoError(t, err)
		var body struct {
			Data []indicatorResponse `json:"data"`
			Meta Meta                `json:"meta"`
		}
		decode(t, resp, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "GDP Growth Rate (United States)", body.Data[0].Label)
		assert.Equal(t, 1, body.Meta.Count)
	})

	t.Run("unavailable", func(t *testing.T) {
		env := newTestEnv(t, model.Result[[]model.Indicator]{
			Value: []model.Indicator{},
			Err:   model.NewFailure("tradingeconomics", model.KindUnavailable, errors.New("status 401")),
		})
		resp, err := http.Get(env.server.URL + "/api/v1/macro")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestDashboardRendersSelectedTab(t *testing.T) {
	env := newTestEnv(t, okMacro())

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"<h1>Quick Info: AAPL</h1>", "Add to watchlist", "<polyline"}},
		{"?tab=macro", []string{"GDP Growth Rate (United States)", "2.8"}},
		{"?tab=watchlist", []string{"Your watchlist is empty.", "EventSource"}},
		{"?tab=quick-info&class=funds", []string{"Quick Info: SPY"}},
		{"?tab=bogus", []string{"Quick Info"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(env.server.URL + "/" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

			var sb strings.Builder
			sc := bufio.NewScanner(resp.Body)
			for sc.Scan() {
				sb.WriteString(sc.Text())
				sb.WriteByte('\n')
			}
			for _, w := range tt.want {
				assert.Contains(t, sb.String(), w)
			}
		})
	}
}

func TestDashboardFormsRedirectWithNotice(t *testing.T) {
	env := newTestEnv(t, okMacro())
	client := noRedirect()

	resp, err := client.PostForm(env.server.URL+"/watchlist/add", url.Values{
		"tab":    {"quick-info"},
		"class":  {"equities"},
		"symbol": {"MSFT"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "MSFT added to the watchlist", loc.Query().Get("notice"))
	assert.Equal(t, "success", loc.Query().Get("kind"))
	assert.Equal(t, "MSFT", loc.Query().Get("symbol"))
	assert.Equal(t, watchlist.List{"MSFT"}, env.manager.Items())

	resp, err = client.Post(env.server.URL+"/watchlist/remove/MSFT", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err = url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "watchlist", loc.Query().Get("tab"))
	assert.Equal(t, "MSFT removed from the watchlist", loc.Query().Get("notice"))
	assert.Empty(t, env.manager.Items())
}

func TestStreamWatchlist(t *testing.T) {
	env := newTestEnv(t, okMacro())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, env.server.URL+"/api/v1/watchlist/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && name != "":
				return name, data
			}
		}
	}

	name, _ := readEvent()
	assert.Equal(t, "snapshot", name)

	require.Eventually(t, func() bool { return env.broker.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)
	_, err = env.manager.Add("TSLA")
	require.NoError(t, err)

	name, data := readEvent()
	assert.Equal(t, "watchlist", name)
	var evt watchlist.Event
	require.NoError(t, json.Unmarshal([]byte(data), &evt))
	assert.Equal(t, watchlist.ActionAdd, evt.Action)
	assert.Equal(t, "TSLA", evt.Symbol)
	assert.Equal(t, watchlist.List{"TSLA"}, evt.Items)
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInternalServer, body.Error.Code)
}

func TestErrorLogKeepsMessage(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/watchlist/MSFT", nil), "MSFT is not in the watchlist")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "MSFT is not in the watchlist", entry["error_message"])
	assert.Equal(t, "API error response", entry["message"])
	assert.Equal(t, ErrCodeNotFound, entry["error_code"])
}
