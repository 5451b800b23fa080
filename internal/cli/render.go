package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"InvestmentHelper/internal/notifier"
	"InvestmentHelper/internal/view"
)

// renderMarkdown styles md for the terminal. style is auto, dark, light,
// ascii or notty.
func renderMarkdown(w io.Writer, md, style string, width int) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func renderPage(w io.Writer, page *view.Page, style string, width int) error {
	md, err := page.Markdown()
	if err != nil {
		return err
	}
	return renderMarkdown(w, md, style, width)
}

// digestMarkdown lays the digest out as a table.
func digestMarkdown(entries []notifier.DigestEntry, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Watchlist digest %s\n\n", at.Format("2006-01-02"))
	if len(entries) == 0 {
		b.WriteString("Your watchlist is empty.\n")
		return b.String()
	}
	b.WriteString("| Symbol | Price | Day range | Name |\n|---|---|---|---|\n")
	for _, e := range entries {
		price, dayRange, name := view.Placeholder, view.Placeholder, ""
		if e.Quote != nil {
			price = view.Price(e.Quote.CurrentPrice, e.Quote.Currency)
			dayRange = view.DayRange(e.Quote)
			name = e.Quote.Name
		}
		if e.Err != nil {
			price += " ⚠"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", e.Symbol, price, dayRange, name)
	}
	return b.String()
}
