package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"InvestmentHelper/internal/calculator"
	"InvestmentHelper/internal/macro"
	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/strategy"
	"InvestmentHelper/internal/watchlist"
)

// QuoteSource is the market data the panels need.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) model.Result[*model.Quote]
	History(ctx context.Context, symbol string) model.Result[[]model.PricePoint]
	Trend(ctx context.Context, symbol string) model.Result[*model.RecommendationTrend]
}

// MacroSource returns the leading macro indicators.
type MacroSource interface {
	Latest(ctx context.Context) model.Result[[]model.Indicator]
}

// Commenter adds free-text commentary to a recommendation.
type Commenter interface {
	Enabled() bool
	Comment(ctx context.Context, q *model.Quote, rec *model.Recommendation) (string, error)
}

// Watchlist is the mutate-and-persist store.
type Watchlist interface {
	Items() watchlist.List
	Add(symbol string) (watchlist.Change, error)
	Remove(symbol string) (watchlist.Change, error)
}

const (
	msgMacroUnavailable = "Macro-economic data unavailable."
	msgWatchlistEmpty   = "Your watchlist is empty."
	msgNoMatch          = "No instrument matches the search."
	msgBondNote         = "Yield curve display is under development."
	sparkWidth          = 40
)

// Controller renders panels and applies watchlist actions.
type Controller struct {
	quotes    QuoteSource
	macro     MacroSource
	list      Watchlist
	commenter Commenter
}

// NewController wires the panel sources. commenter may be nil.
func NewController(quotes QuoteSource, macro MacroSource, list Watchlist, commenter Commenter) *Controller {
	return &Controller{quotes: quotes, macro: macro, list: list, commenter: commenter}
}

// Render builds the panel selected by st. Remote failures degrade the panel
// and never fail the render.
func (c *Controller) Render(ctx context.Context, st State) *Page {
	return c.render(ctx, st.normalize())
}

// RenderSymbol renders tab for a symbol typed as free text. Symbols outside
// the catalog get the equities layout.
func (c *Controller) RenderSymbol(ctx context.Context, tab Tab, input string) *Page {
	symbol := Resolve(input)
	if symbol == "" {
		return c.Render(ctx, NewState().WithTab(tab))
	}
	class, ok := ClassOf(symbol)
	if !ok {
		class = ClassEquities
	}
	return c.render(ctx, State{Tab: tab, Class: class, Symbol: symbol})
}

func (c *Controller) render(ctx context.Context, st State) *Page {
	page := &Page{State: st}
	switch st.Tab {
	case TabMacro:
		page.Macro = c.renderMacro(ctx)
	case TabRecommendations:
		page.Recommendations = c.renderRecommendations(ctx, st.Symbol)
	case TabWatchlist:
		page.Watchlist = c.renderWatchlist()
	default:
		page.State.Tab = TabQuickInfo
		page.QuickInfo = c.renderQuickInfo(ctx, st.Class, st.Symbol)
	}
	return page
}

func (c *Controller) renderQuickInfo(ctx context.Context, class AssetClass, symbol string) *QuickInfoPanel {
	panel := &QuickInfoPanel{Symbol: symbol, Class: class}
	if symbol == "" {
		panel.Message = msgNoMatch
		return panel
	}
	panel.InWatchlist = watchlist.Contains(c.list.Items(), symbol)

	var (
		quote   model.Result[*model.Quote]
		history model.Result[[]model.PricePoint]
		g       errgroup.Group
	)
	g.Go(func() error {
		quote = c.quotes.Quote(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		history = c.quotes.History(ctx, symbol)
		return nil
	})
	_ = g.Wait()

	q := quote.Value
	if q == nil {
		q = model.UnavailableQuote(symbol)
	}
	panel.Quote = q
	if !quote.Ok() {
		panel.Message = failureMessage("Quote", quote.Err)
	}

	panel.Fields = []Field{
		{"Name", Text(q.Name)},
		{"Current price", Price(q.CurrentPrice, q.Currency)},
		{"Day range", DayRange(q)},
	}
	switch class {
	case ClassEquities:
		panel.Fields = append(panel.Fields,
			Field{"P/E ratio", Number(q.TrailingPE, 2)},
			Field{"Dividend yield", Percent(q.DividendYield)},
			Field{"Description", Text(q.LongBusinessSummary)},
		)
	case ClassBonds:
		panel.Note = msgBondNote
	case ClassFunds:
		panel.Fields = append(panel.Fields,
			Field{"Benchmark", Text(q.Benchmark)},
			Field{"Performance", Text(q.PerformanceOverview)},
			Field{"Fund family", Text(q.FundFamily)},
		)
	}

	if !history.Ok() {
		panel.HistoryNote = failureMessage("Price history", history.Err)
		return panel
	}
	panel.History = history.Value
	if len(panel.History) == 0 {
		panel.HistoryNote = "No price history available."
		return panel
	}
	panel.Sparkline = Sparkline(panel.History, sparkWidth)
	panel.Technicals = technicalFields(calculator.Technicals(panel.History))
	return panel
}

func technicalFields(t model.Technicals) []Field {
	fields := []Field{
		{"SMA20", Placeholder},
		{"RSI14", Placeholder},
		{"Range", Placeholder},
		{"Position in range", Placeholder},
	}
	if t.HasSMA20 {
		fields[0].Value = fmt.Sprintf("%.2f", t.SMA20)
	}
	if t.HasRSI {
		fields[1].Value = fmt.Sprintf("%.1f", t.RSI14)
	}
	if t.HasRange {
		fields[2].Value = fmt.Sprintf("%.2f - %.2f", t.RangeLow, t.RangeHigh)
		fields[3].Value = fmt.Sprintf("%.0f%%", t.Position*100)
	}
	return fields
}

func (c *Controller) renderMacro(ctx context.Context) *MacroPanel {
	res := c.macro.Latest(ctx)
	if !res.Ok() || len(res.Value) == 0 {
		return &MacroPanel{Message: msgMacroUnavailable}
	}
	panel := &MacroPanel{Rows: make([]MacroRow, 0, len(res.Value))}
	for _, ind := range res.Value {
		panel.Rows = append(panel.Rows, MacroRow{
			Label: macro.Label(ind),
			Value: macro.FormatValue(ind),
			Unit:  ind.Unit,
		})
	}
	return panel
}

func (c *Controller) renderRecommendations(ctx context.Context, symbol string) *RecommendationsPanel {
	panel := &RecommendationsPanel{Symbol: symbol}
	if symbol == "" {
		panel.Message = msgNoMatch
		return panel
	}

	var (
		quote   model.Result[*model.Quote]
		trend   model.Result[*model.RecommendationTrend]
		history model.Result[[]model.PricePoint]
		g       errgroup.Group
	)
	g.Go(func() error { trend = c.quotes.Trend(ctx, symbol); return nil })
	g.Go(func() error { history = c.quotes.History(ctx, symbol); return nil })
	if c.commenter != nil && c.commenter.Enabled() {
		g.Go(func() error { quote = c.quotes.Quote(ctx, symbol); return nil })
	}
	_ = g.Wait()

	if trend.Ok() {
		panel.Trend = trend.Value
	} else {
		panel.TrendMessage = failureMessage("Analyst ratings", trend.Err)
	}
	var tech model.Technicals
	if history.Ok() {
		tech = calculator.Technicals(history.Value)
	}
	panel.Recommendation = strategy.Evaluate(symbol, panel.Trend, tech)

	if c.commenter != nil && c.commenter.Enabled() && len(panel.Recommendation.Factors) > 0 {
		text, err := c.commenter.Comment(ctx, quote.Value, panel.Recommendation)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("advisor commentary failed")
		} else {
			panel.Commentary = text
		}
	}
	return panel
}

func (c *Controller) renderWatchlist() *WatchlistPanel {
	if err := c.LoadErr(); err != nil {
		return &WatchlistPanel{Items: []string{}, Message: storageNotice(err).Text}
	}
	items := c.list.Items()
	if len(items) == 0 {
		return &WatchlistPanel{Items: []string{}, Message: msgWatchlistEmpty}
	}
	return &WatchlistPanel{Items: items}
}

// LoadErr reports a watchlist file that could not be read at startup.
func (c *Controller) LoadErr() error {
	if l, ok := c.list.(interface{ LoadErr() error }); ok {
		return l.LoadErr()
	}
	return nil
}

// Items returns the current watchlist.
func (c *Controller) Items() watchlist.List { return c.list.Items() }

// Add saves symbol to the watchlist.
func (c *Controller) Add(symbol string) Notice {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Notice{Kind: NoticeError, Text: "no instrument selected"}
	}
	change, err := c.list.Add(symbol)
	if err != nil {
		return storageNotice(err)
	}
	if !change.Applied {
		return Notice{Kind: NoticeInfo, Text: symbol + " is already in the watchlist"}
	}
	return Notice{Kind: NoticeSuccess, Text: symbol + " added to the watchlist"}
}

// Remove deletes symbol from the watchlist.
func (c *Controller) Remove(symbol string) Notice {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Notice{Kind: NoticeError, Text: "no instrument selected"}
	}
	change, err := c.list.Remove(symbol)
	if err != nil {
		return storageNotice(err)
	}
	if !change.Applied {
		return Notice{Kind: NoticeInfo, Text: symbol + " is not in the watchlist"}
	}
	return Notice{Kind: NoticeSuccess, Text: symbol + " removed from the watchlist"}
}

func storageNotice(err error) Notice {
	var se *watchlist.StorageError
	if errors.As(err, &se) {
		if se.Op == "load" {
			return Notice{Kind: NoticeError, Text: "could not read watchlist: " + se.Err.Error()}
		}
		return Notice{Kind: NoticeError, Text: "could not save watchlist: " + se.Err.Error()}
	}
	return Notice{Kind: NoticeError, Text: "could not save watchlist: " + err.Error()}
}

func failureMessage(what string, err error) string {
	switch model.KindOf(err) {
	case model.KindNotFound:
		return what + " not available for this instrument."
	case model.KindTimeout:
		return what + " timed out; showing placeholders."
	default:
		return what + " unavailable; showing placeholders."
	}
}
