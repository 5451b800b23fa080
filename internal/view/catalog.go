// Package view holds the dashboard's navigation state and turns it into
// exactly one rendered panel per request.
package view

import (
	"fmt"
	"strings"
)

// Tab is the selected dashboard panel.
type Tab string

const (
	TabQuickInfo       Tab = "quick-info"
	TabMacro           Tab = "macro"
	TabRecommendations Tab = "recommendations"
	TabWatchlist       Tab = "watchlist"
)

// Tabs lists the panels in navigation order.
var Tabs = []Tab{TabQuickInfo, TabMacro, TabRecommendations, TabWatchlist}

// Title returns the human label of the tab.
func (t Tab) Title() string {
	switch t {
	case TabQuickInfo:
		return "Quick Info"
	case TabMacro:
		return "Macro Indicators"
	case TabRecommendations:
		return "Recommendations"
	case TabWatchlist:
		return "Watchlist"
	}
	return string(t)
}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	for _, x := range Tabs {
		if x == t {
			return true
		}
	}
	return false
}

// ParseTab accepts the slug or the title, case-insensitively.
func ParseTab(s string) (Tab, error) {
	s = strings.TrimSpace(s)
	for _, t := range Tabs {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Title()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// AssetClass groups the selectable instruments.
type AssetClass string

const (
	ClassEquities AssetClass = "equities"
	ClassBonds    AssetClass = "bonds"
	ClassFunds    AssetClass = "funds"
)

// Classes lists the asset classes in display order.
var Classes = []AssetClass{ClassEquities, ClassBonds, ClassFunds}

var candidates = map[AssetClass][]string{
	ClassEquities: {"AAPL", "MSFT", "GOOGL", "TSLA"},
	ClassBonds:    {"US 10Y Treasury", "EU 10Y Bond"},
	ClassFunds:    {"SPY", "VOO", "QQQ"},
}

// Title returns the human label of the class.
func (c AssetClass) Title() string {
	switch c {
	case ClassEquities:
		return "Equities"
	case ClassBonds:
		return "Bonds"
	case ClassFunds:
		return "Funds"
	}
	return string(c)
}

// Valid reports whether c is a known class.
func (c AssetClass) Valid() bool {
	_, ok := candidates[c]
	return ok
}

// Candidates returns a copy of the fixed instrument list for the class.
func (c AssetClass) Candidates() []string {
	return append([]string(nil), candidates[c]...)
}

// ParseClass accepts the slug or the title, case-insensitively.
func ParseClass(s string) (AssetClass, error) {
	s = strings.TrimSpace(s)
	for _, c := range Classes {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Title()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

// Filter keeps the candidates containing query, ignoring case.
// An empty query keeps everything.
func Filter(options []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, len(options))
	for _, o := range options {
		if q == "" || strings.Contains(strings.ToLower(o), q) {
			out = append(out, o)
		}
	}
	return out
}

// Resolve maps free text to a symbol: the catalog spelling when it matches a
// known instrument ignoring case, otherwise the trimmed text upper-cased.
func Resolve(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	for _, c := range Classes {
		for _, o := range candidates[c] {
			if strings.EqualFold(o, s) {
				return o
			}
		}
	}
	return strings.ToUpper(s)
}

// ClassOf returns the asset class listing symbol, or ok=false.
func ClassOf(symbol string) (AssetClass, bool) {
	for _, c := range Classes {
		for _, o := range candidates[c] {
			if o == symbol {
				return c, true
			}
		}
	}
	return "", false
}

// AllSymbols returns every catalog instrument in display order.
func AllSymbols() []string {
	var out []string
	for _, c := range Classes {
		out = append(out, candidates[c]...)
	}
	return out
}
