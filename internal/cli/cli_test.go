package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestmentHelper/internal/config"
	"InvestmentHelper/internal/market"
	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/notifier"
	"InvestmentHelper/internal/recorder"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

type fakeMacro struct{}

func (fakeMacro) Latest(context.Context) model.Result[[]model.Indicator] {
	return model.ResultOf([]model.Indicator{
		{Category: "Inflation Rate", Country: "Euro Area", Value: decimal.NewNullDecimal(decimal.RequireFromString("2.4")), Unit: "percent"},
	}, nil)
}

func testApp(t *testing.T) *App {
	t.Helper()
	broker := watchlist.NewBroker(8)
	list, err := watchlist.NewManager(watchlist.NewStore(filepath.Join(t.TempDir(), "watchlist.json")), broker)
	require.NoError(t, err)
	quotes := market.NewService(&market.MockClient{
		Price: 42,
		Trends: map[string]*model.RecommendationTrend{
			"AAPL": {Period: "0m", StrongBuy: 8, Buy: 12, Hold: 5},
		},
	}, market.Period6mo)
	return &App{
		Config:     &config.Config{},
		Broker:     broker,
		Watchlist:  list,
		Market:     quotes,
		Macro:      fakeMacro{},
		Controller: view.NewController(quotes, fakeMacro{}, list, nil),
		Recorder:   recorder.NewNoopRecorder(),
	}
}

func testEnv(app *App) (env, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return env{
		load:   func(context.Context, bool) (*App, error) { return app, nil },
		out:    &out,
		errOut: &errOut,
	}, &out, &errOut
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestAddListRemove(t *testing.T) {
	app := testApp(t)
	e, out, errOut := testEnv(app)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{env: e}, "aapl", "us 10y treasury", "AAPL"))
	assert.Equal(t, "AAPL added to the watchlist\nUS 10Y Treasury added to the watchlist\nAAPL is already in the watchlist\n", out.String())
	assert.Equal(t, watchlist.List{"AAPL", "US 10Y Treasury"}, app.Watchlist.Items())

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &listCmd{env: e}))
	assert.Equal(t, "AAPL\nUS 10Y Treasury\n", out.String())

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &removeCmd{env: e}, "aapl", "msft"))
	assert.Equal(t, "AAPL removed from the watchlist\nMSFT is not in the watchlist\n", out.String())
	assert.Equal(t, watchlist.List{"US 10Y Treasury"}, app.Watchlist.Items())

	assert.Empty(t, errOut.String())
}

func TestListEmpty(t *testing.T) {
	e, out, errOut := testEnv(testApp(t))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &listCmd{env: e}))
	assert.Empty(t, out.String())
	assert.Equal(t, "Your watchlist is empty.\n", errOut.String())
}

func TestAddRequiresSymbol(t *testing.T) {
	e, _, errOut := testEnv(testApp(t))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{env: e}))
	assert.Contains(t, errOut.String(), "at least one symbol")
}

func TestLoaderError(t *testing.T) {
	var errOut bytes.Buffer
	e := env{
		load:   func(context.Context, bool) (*App, error) { return nil, errors.New("bad config") },
		out:    &bytes.Buffer{},
		errOut: &errOut,
	}
	assert.Equal(t, subcommands.ExitFailure, run(t, &listCmd{env: e}))
	assert.Equal(t, "Error: bad config\n", errOut.String())
}

func TestPanels(t *testing.T) {
	tests := []struct {
		name string
		cmd  func(env) subcommands.Command
		args []string
		want []string
	}{
		{"quote", func(e env) subcommands.Command { return &quoteCmd{env: e} }, []string{"-style", "notty", "nvda"}, []string{"Quick Info", "NVDA", "$42.00"}},
		{"quote default", func(e env) subcommands.Command { return &quoteCmd{env: e} }, []string{"-style", "notty"}, []string{"AAPL"}},
		{"macro", func(e env) subcommands.Command { return &macroCmd{env: e} }, []string{"-style", "notty"}, []string{"Inflation Rate (Euro Area)", "2.4"}},
		{"recommend", func(e env) subcommands.Command { return &recommendCmd{env: e} }, []string{"-style", "notty", "AAPL"}, []string{"Recommendations", "Analyst consensus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, out, errOut := testEnv(testApp(t))
			assert.Equal(t, subcommands.ExitSuccess, run(t, tt.cmd(e), tt.args...))
			assert.Empty(t, errOut.String())
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestDigestPrintsTable(t *testing.T) {
	app := testApp(t)
	_, err := app.Watchlist.Add("AAPL")
	require.NoError(t, err)
	e, out, _ := testEnv(app)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &digestCmd{env: e}, "-style", "notty"))
	assert.Contains(t, out.String(), "Watchlist digest")
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "$42.00")
}

func TestDigestSendWithoutTelegram(t *testing.T) {
	e, _, errOut := testEnv(testApp(t))
	assert.Equal(t, subcommands.ExitFailure, run(t, &digestCmd{env: e}, "-send", "-style", "notty"))
	assert.Contains(t, errOut.String(), "telegram is not configured")
}

func TestDigestSend(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		sent = append(sent, payload["text"])
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	app := testApp(t)
	_, err := app.Watchlist.Add("MSFT")
	require.NoError(t, err)
	app.Telegram = notifier.NewTelegramNotifier("token", "42", "")
	app.Telegram.BaseURL = srv.URL
	app.Telegram.RetryBase = time.Millisecond
	e, _, errOut := testEnv(app)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &digestCmd{env: e}, "-send", "-style", "notty"))
	assert.Equal(t, "Digest sent.\n", errOut.String())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "<b>MSFT</b>")
}

func TestDigestMarkdown(t *testing.T) {
	at := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "# Watchlist digest 2026-03-02\n\nYour watchlist is empty.\n", digestMarkdown(nil, at))

	md := digestMarkdown([]notifier.DigestEntry{
		{Symbol: "AAPL", Quote: &model.Quote{Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD",
			CurrentPrice: decimal.NewNullDecimal(decimal.RequireFromString("189.5"))}},
		{Symbol: "EU 10Y Bond", Err: model.NewFailure("mock", model.KindNotFound, nil)},
	}, at)
	assert.Contains(t, md, "| AAPL | $189.50 | N/A | Apple Inc. |")
	assert.Contains(t, md, "| EU 10Y Bond | N/A ⚠ | N/A |  |")
}

func TestCompletion(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "watchlist.json")
	require.NoError(t, watchlist.NewStore(listPath).Save(watchlist.List{"TSLA", "SPY"}))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("watchlist:\n  file: "+listPath+"\n"), 0o644))

	cmd := Completion(func() string { return cfgPath })

	for _, name := range []string{"serve", "list", "add", "remove", "quote", "macro", "recommend", "digest"} {
		assert.Contains(t, cmd.Sub, name)
	}
	assert.Contains(t, cmd.Sub["add"].Args.Predict(""), "US 10Y Treasury")
	assert.Equal(t, []string{"TSLA", "SPY"}, cmd.Sub["remove"].Args.Predict(""))
	assert.Contains(t, cmd.Sub["quote"].Flags["style"].Predict(""), "notty")
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "configs/config.yaml", DefaultConfigPath())
	t.Setenv("CONFIG_PATH", "/etc/helper.yaml")
	assert.Equal(t, "/etc/helper.yaml", DefaultConfigPath())
}

func TestUnreadableWatchlistFailsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte("oops"), 0o644))
	app := testApp(t)
	list, err := watchlist.OpenManager(watchlist.NewStore(path), app.Broker)
	require.Error(t, err)
	app.Watchlist = list
	app.Controller = view.NewController(app.Market, fakeMacro{}, list, nil)

	e, _, errOut := testEnv(app)
	assert.Equal(t, subcommands.ExitFailure, run(t, &listCmd{env: e}))
	assert.Contains(t, errOut.String(), "watchlist load")

	errOut.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &addCmd{env: e}, "AAPL"))
	assert.Contains(t, errOut.String(), "could not read watchlist")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "oops", string(data))
}
