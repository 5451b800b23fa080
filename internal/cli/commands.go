package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"InvestmentHelper/internal/notifier"
	"InvestmentHelper/internal/scheduler"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/web"
)

// Register adds every helper command to c.
func Register(c *subcommands.Commander, load Loader) {
	e := env{load: load, out: os.Stdout, errOut: os.Stderr}

	c.Register(&serveCmd{env: e}, "server")

	c.Register(&listCmd{env: e}, "watchlist")
	c.Register(&addCmd{env: e}, "watchlist")
	c.Register(&removeCmd{env: e}, "watchlist")

	c.Register(&quoteCmd{env: e}, "market")
	c.Register(&macroCmd{env: e}, "market")
	c.Register(&recommendCmd{env: e}, "market")
	c.Register(&digestCmd{env: e}, "market")
}

// env is shared by all commands.
type env struct {
	load   Loader
	out    io.Writer
	errOut io.Writer
}

func (e *env) open(ctx context.Context, verbose bool) (*App, bool) {
	app, err := e.load(ctx, verbose)
	if err != nil {
		fmt.Fprintf(e.errOut, "Error: %v\n", err)
		return nil, false
	}
	return app, true
}

func (e *env) close(app *App) {
	if err := app.Close(); err != nil {
		fmt.Fprintf(e.errOut, "Error closing recorder: %v\n", err)
	}
}

// display flags for commands that render a panel
type display struct {
	style string
	width int
}

func (d *display) setFlags(f *flag.FlagSet) {
	f.StringVar(&d.style, "style", "auto", "Terminal style: auto, dark, light, ascii or notty.")
	f.IntVar(&d.width, "width", 100, "Word wrap width.")
}

type serveCmd struct {
	env
	addr      string
	digestNow bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the web dashboard with the digest scheduler and Telegram bot" }
func (*serveCmd) Usage() string {
	return `helper serve [-addr <host:port>] [-digest-now]

  Serves the dashboard and JSON API. Watchlist changes are journaled and
  announced on Telegram when configured; the digest runs on its cron schedule.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides server.addr.")
	f.BoolVar(&c.digestNow, "digest-now", false, "Run the digest once at startup.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, ok := c.open(ctx, true)
	if !ok {
		return subcommands.ExitFailure
	}
	defer c.close(app)
	cfg := app.Config

	var sender scheduler.Sender
	if app.Telegram != nil {
		sender = app.Telegram
	}
	sched := scheduler.NewScheduler(ctx, app.Market, app.Watchlist, sender, app.Recorder)
	if err := sched.RegisterAll(cfg.Schedule.DigestCron); err != nil {
		log.Error().Err(err).Msg("register cron tasks")
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()
	go sched.Pump(ctx, app.Broker)

	if app.Telegram != nil {
		commands := &notifier.Commands{List: app.Controller, Quotes: app.Market}
		go app.Telegram.StartPolling(ctx, commands.Handle)
		log.Info().Msg("telegram polling started")
	}
	if c.digestNow {
		log.Info().Msg("digest-now enabled, sending digest")
		go func() {
			msg := sched.Digest(ctx)
			if sender == nil {
				return
			}
			if err := sender.SendWithRetry(ctx, msg, 3); err != nil {
				log.Error().Err(err).Msg("send startup digest")
			}
		}()
	}

	addr := cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}
	h := web.NewHandler(app.Controller, app.Market, app.Macro, app.Broker, Version)
	srv := web.NewServer(addr, web.NewRouter(h, cfg.Server.AllowedOrigins), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type listCmd struct{ env }

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print the watchlist, one symbol per line" }
func (*listCmd) Usage() string    { return "helper list\n" }
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, ok := c.open(ctx, false)
	if !ok {
		return subcommands.ExitFailure
	}
	defer c.close(app)

	if err := app.Watchlist.LoadErr(); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	items := app.Watchlist.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.errOut, "Your watchlist is empty.")
		return subcommands.ExitSuccess
	}
	for _, s := range items {
		fmt.Fprintln(c.out, s)
	}
	return subcommands.ExitSuccess
}

type addCmd struct{ env }

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add symbols to the watchlist" }
func (*addCmd) Usage() string {
	return `helper add <symbol>...

  Catalog names match case-insensitively; other input is upper-cased.
`
}
func (*addCmd) SetFlags(*flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.mutate(ctx, f, func(app *App, symbol string) view.Notice { return app.Controller.Add(symbol) })
}

type removeCmd struct{ env }

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove symbols from the watchlist" }
func (*removeCmd) Usage() string    { return "helper remove <symbol>...\n" }
func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.mutate(ctx, f, func(app *App, symbol string) view.Notice { return app.Controller.Remove(symbol) })
}

func (e *env) mutate(ctx context.Context, f *flag.FlagSet, op func(*App, string) view.Notice) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(e.errOut, "Error: at least one symbol is required")
		return subcommands.ExitUsageError
	}
	app, ok := e.open(ctx, false)
	if !ok {
		return subcommands.ExitFailure
	}
	defer e.close(app)

	status := subcommands.ExitSuccess
	for _, arg := range f.Args() {
		symbol := view.Resolve(arg)
		if symbol == "" {
			continue
		}
		n := op(app, symbol)
		if n.Kind == view.NoticeError {
			fmt.Fprintf(e.errOut, "Error: %s\n", n.Text)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintln(e.out, n.Text)
	}
	return status
}

type quoteCmd struct {
	env
	display
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show the Quick Info panel for a symbol" }
func (*quoteCmd) Usage() string {
	return `helper quote [-style <style>] [-width <n>] [<symbol>]

  Without a symbol the first equity of the catalog is shown.
`
}
func (c *quoteCmd) SetFlags(f *flag.FlagSet) { c.display.setFlags(f) }

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.panel(ctx, &c.display, view.TabQuickInfo, f.Arg(0))
}

type recommendCmd struct {
	env
	display
}

func (*recommendCmd) Name() string     { return "recommend" }
func (*recommendCmd) Synopsis() string { return "show analyst ratings and the scored recommendation for a symbol" }
func (*recommendCmd) Usage() string {
	return "helper recommend [-style <style>] [-width <n>] [<symbol>]\n"
}
func (c *recommendCmd) SetFlags(f *flag.FlagSet) { c.display.setFlags(f) }

func (c *recommendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.panel(ctx, &c.display, view.TabRecommendations, f.Arg(0))
}

type macroCmd struct {
	env
	display
}

func (*macroCmd) Name() string             { return "macro" }
func (*macroCmd) Synopsis() string         { return "show the latest macro-economic indicators" }
func (*macroCmd) Usage() string            { return "helper macro [-style <style>] [-width <n>]\n" }
func (c *macroCmd) SetFlags(f *flag.FlagSet) { c.display.setFlags(f) }

func (c *macroCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.panel(ctx, &c.display, view.TabMacro, "")
}

func (e *env) panel(ctx context.Context, d *display, tab view.Tab, symbol string) subcommands.ExitStatus {
	app, ok := e.open(ctx, false)
	if !ok {
		return subcommands.ExitFailure
	}
	defer e.close(app)

	page := app.Controller.RenderSymbol(ctx, tab, symbol)
	if err := renderPage(e.out, page, d.style, d.width); err != nil {
		fmt.Fprintf(e.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type digestCmd struct {
	env
	display
	send bool
}

func (*digestCmd) Name() string     { return "digest" }
func (*digestCmd) Synopsis() string { return "quote every watchlist symbol and record the snapshots" }
func (*digestCmd) Usage() string {
	return `helper digest [-send] [-style <style>] [-width <n>]

  Prints the digest table. With -send the digest is also posted to Telegram.
`
}

func (c *digestCmd) SetFlags(f *flag.FlagSet) {
	c.display.setFlags(f)
	f.BoolVar(&c.send, "send", false, "Also send the digest to Telegram.")
}

func (c *digestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, ok := c.open(ctx, false)
	if !ok {
		return subcommands.ExitFailure
	}
	defer c.close(app)

	if c.send && app.Telegram == nil {
		fmt.Fprintln(c.errOut, "Error: telegram is not configured")
		return subcommands.ExitFailure
	}

	sched := scheduler.NewScheduler(ctx, app.Market, app.Watchlist, nil, app.Recorder)
	entries := sched.Collect(ctx)
	now := time.Now()
	if err := renderMarkdown(c.out, digestMarkdown(entries, now), c.style, c.width); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.send {
		return subcommands.ExitSuccess
	}
	if err := app.Telegram.SendWithRetry(ctx, notifier.FormatDigest(entries, now), 3); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(c.errOut, "Digest sent.")
	return subcommands.ExitSuccess
}
