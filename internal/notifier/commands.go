package notifier

import (
	"context"
	"html"
	"strings"

	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

// HelpText lists the accepted commands.
const HelpText = `Available commands:
• /watchlist: show the watchlist
• /add SYMBOL: add to the watchlist
• /remove SYMBOL: remove from the watchlist
• /quote SYMBOL: current quote
• /help: this message`

// WatchlistActions is the view controller surface the commands drive.
type WatchlistActions interface {
	Items() watchlist.List
	Add(symbol string) view.Notice
	Remove(symbol string) view.Notice
}

// Quoter looks up a quote.
type Quoter interface {
	Quote(ctx context.Context, symbol string) model.Result[*model.Quote]
}

// Commands routes chat commands to the watchlist and market data.
type Commands struct {
	List   WatchlistActions
	Quotes Quoter
}

// Handle answers one command. It satisfies CommandHandler.
func (c *Commands) Handle(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return HelpText
	}
	cmd := strings.ToLower(fields[0])
	// "/add@MyBot AAPL" in group chats
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	arg := view.Resolve(strings.Join(fields[1:], " "))

	switch cmd {
	case "/watchlist", "/list":
		return FormatList(c.List.Items())
	case "/add":
		if arg == "" {
			return "Usage: /add SYMBOL"
		}
		return noticeText(c.List.Add(arg))
	case "/remove":
		if arg == "" {
			return "Usage: /remove SYMBOL"
		}
		return noticeText(c.List.Remove(arg))
	case "/quote":
		if arg == "" {
			return "Usage: /quote SYMBOL"
		}
		res := c.Quotes.Quote(ctx, arg)
		reply := FormatQuote(res.Value)
		if !res.Ok() {
			reply += "\n\n⚠️ quote unavailable"
		}
		return reply
	default:
		return HelpText
	}
}

func noticeText(n view.Notice) string {
	icon := "✅"
	switch n.Kind {
	case view.NoticeInfo:
		icon = "ℹ️"
	case view.NoticeError:
		icon = "❌"
	}
	return icon + " " + html.EscapeString(n.Text)
}
