// Package cli implements the helper command line: the dashboard server and
// one-shot commands over the same watchlist and data sources.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"InvestmentHelper/internal/advisor"
	"InvestmentHelper/internal/config"
	"InvestmentHelper/internal/logger"
	"InvestmentHelper/internal/macro"
	"InvestmentHelper/internal/market"
	"InvestmentHelper/internal/notifier"
	"InvestmentHelper/internal/recorder"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

// Version is stamped at build time with -ldflags "-X InvestmentHelper/internal/cli.Version=...".
var Version = "dev"

// App holds the wired components every command works on.
type App struct {
	Config     *config.Config
	Broker     *watchlist.Broker
	Watchlist  *watchlist.Manager
	Market     *market.Service
	Macro      view.MacroSource
	Advisor    *advisor.Advisor
	Controller *view.Controller
	Recorder   recorder.Recorder
	Telegram   *notifier.TelegramNotifier // nil when not configured
}

// Close releases the recorder.
func (a *App) Close() error {
	if a.Recorder == nil {
		return nil
	}
	return a.Recorder.Close()
}

// Loader builds the App for a command. verbose selects the configured log
// output instead of warnings only.
type Loader func(ctx context.Context, verbose bool) (*App, error)

// DefaultConfigPath is configs/config.yaml unless CONFIG_PATH is set.
func DefaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// NewLoader loads the config at path, sets up logging and opens the App.
func NewLoader(path string) Loader {
	return func(ctx context.Context, verbose bool) (*App, error) {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		if verbose {
			if err := logger.Init(logger.Config{
				Level:          cfg.Logging.Level,
				Format:         cfg.Logging.Format,
				FileEnabled:    cfg.Logging.FileEnabled,
				FilePath:       cfg.Logging.FilePath,
				RotationSize:   cfg.Logging.RotationSize,
				RetentionDays:  cfg.Logging.RetentionDays,
				ServiceName:    "investment-helper",
				ServiceVersion: Version,
			}); err != nil {
				return nil, err
			}
		} else {
			logger.Quiet()
		}
		return Open(ctx, cfg)
	}
}

// Open wires the components described by cfg.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	broker := watchlist.NewBroker(32)
	// An unreadable file leaves the watchlist read-only; surfaces report it.
	list, _ := watchlist.OpenManager(watchlist.NewStore(cfg.Watchlist.File), broker)

	period, err := market.ParsePeriod(cfg.Market.HistoryPeriod)
	if err != nil {
		return nil, err
	}
	quotes := market.NewService(market.NewYahooClient(cfg.Market.Timeout, cfg.Proxy, cfg.Market.SymbolMap), period)
	macroClient := macro.NewClient(cfg.Macro.URL, cfg.Macro.APIKey, cfg.Macro.Timeout, cfg.Macro.Limit, cfg.Proxy)

	adv, err := advisor.New(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model)
	if err != nil {
		log.Warn().Err(err).Msg("advisor unavailable, commentary disabled")
		adv = nil
	}

	app := &App{
		Config:     cfg,
		Broker:     broker,
		Watchlist:  list,
		Market:     quotes,
		Macro:      macroClient,
		Advisor:    adv,
		Controller: view.NewController(quotes, macroClient, list, adv),
		Recorder:   recorder.Open(cfg.Database.SQLitePath),
	}
	if cfg.TelegramEnabled() {
		app.Telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}
	log.Info().
		Str("source", quotes.Source()).
		Bool("advisor", adv.Enabled()).
		Bool("telegram", app.Telegram != nil).
		Msg("application wired")
	return app, nil
}
