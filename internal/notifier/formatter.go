package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

// DigestEntry is one watchlist line of the daily digest.
type DigestEntry struct {
	Symbol string
	Quote  *model.Quote
	Err    error
}

// FormatDigest formats the watchlist digest into a Telegram message.
func FormatDigest(entries []DigestEntry, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>Watchlist digest</b> | %s\n\n", at.Format("2006-01-02")))
	if len(entries) == 0 {
		b.WriteString("Your watchlist is empty.")
		return b.String()
	}
	for _, e := range entries {
		b.WriteString("• " + quoteLine(e.Symbol, e.Quote))
		if e.Err != nil {
			b.WriteString(" ⚠️")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatQuote formats a single quote reply.
func FormatQuote(q *model.Quote) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n\n", html.EscapeString(q.Symbol)))
	b.WriteString(fmt.Sprintf("Name: %s\n", html.EscapeString(view.Text(q.Name))))
	b.WriteString(fmt.Sprintf("Price: %s\n", html.EscapeString(view.Price(q.CurrentPrice, q.Currency))))
	b.WriteString(fmt.Sprintf("Day range: %s", html.EscapeString(view.DayRange(q))))
	return b.String()
}

// FormatChange formats a watchlist change notice.
func FormatChange(evt watchlist.Event) string {
	icon, verb := "➕", "added to"
	if evt.Action == watchlist.ActionRemove {
		icon, verb = "➖", "removed from"
	}
	return fmt.Sprintf("%s <b>%s</b> %s the watchlist (%d items)",
		icon, html.EscapeString(evt.Symbol), verb, len(evt.Items))
}

// FormatList formats the current watchlist.
func FormatList(items watchlist.List) string {
	if len(items) == 0 {
		return "Your watchlist is empty."
	}
	var b strings.Builder
	b.WriteString("🔍 <b>Watchlist</b>\n")
	for _, s := range items {
		b.WriteString("\n• " + html.EscapeString(s))
	}
	return b.String()
}

func quoteLine(symbol string, q *model.Quote) string {
	if q == nil {
		q = model.UnavailableQuote(symbol)
	}
	line := fmt.Sprintf("<b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(view.Price(q.CurrentPrice, q.Currency)))
	if q.Name != "" && q.Name != symbol {
		line += " " + html.EscapeString(q.Name)
	}
	return line
}
