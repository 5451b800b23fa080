package view

import (
	"bytes"
	"text/template"

	"InvestmentHelper/internal/model"
)

// Field is one labelled line of a panel.
type Field struct {
	Label string
	Value string
}

// Page is the result of one render. Exactly one panel is set.
type Page struct {
	State           State
	QuickInfo       *QuickInfoPanel
	Macro           *MacroPanel
	Recommendations *RecommendationsPanel
	Watchlist       *WatchlistPanel
}

// Title is the heading of the rendered panel.
func (p *Page) Title() string { return p.State.Tab.Title() }

// QuickInfoPanel describes the selected instrument.
type QuickInfoPanel struct {
	Symbol      string
	Class       AssetClass
	Quote       *model.Quote
	Fields      []Field
	Note        string // class-specific remark, e.g. for bonds
	Message     string // set when the lookup degraded
	History     []model.PricePoint
	HistoryNote string
	Technicals  []Field
	Sparkline   string
	InWatchlist bool
}

// MacroPanel lists the leading macro indicators.
type MacroPanel struct {
	Rows    []MacroRow
	Message string
}

// MacroRow is one formatted indicator.
type MacroRow struct {
	Label string
	Value string
	Unit  string
}

// RecommendationsPanel shows analyst and computed views for one symbol.
type RecommendationsPanel struct {
	Symbol         string
	Trend          *model.RecommendationTrend
	TrendMessage   string
	Recommendation *model.Recommendation
	Commentary     string
	Message        string
}

// WatchlistPanel lists the saved symbols.
type WatchlistPanel struct {
	Items   []string
	Message string
}

// NoticeKind classifies a Notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is the user-visible outcome of a watchlist action.
type Notice struct {
	Kind NoticeKind
	Text string
}

const pageMarkdown = `{{with .QuickInfo}}# Quick Info{{if .Symbol}}: {{.Symbol}}{{end}}
{{if .Message}}
> {{.Message}}
{{end}}{{range .Fields}}
- **{{.Label}}**: {{.Value}}{{end}}
{{if .Note}}
_{{.Note}}_
{{end}}{{if .Technicals}}
## 6-month technicals
{{range .Technicals}}
- **{{.Label}}**: {{.Value}}{{end}}
{{end}}{{if .Sparkline}}
` + "`{{.Sparkline}}`" + `
{{end}}{{if .HistoryNote}}
_{{.HistoryNote}}_
{{end}}{{end}}{{with .Macro}}# Macro Indicators
{{if .Message}}
{{.Message}}
{{else}}{{range .Rows}}
- **{{.Label}}**: {{.Value}} {{.Unit}}{{end}}
{{end}}{{end}}{{with .Recommendations}}# Recommendations{{if .Symbol}}: {{.Symbol}}{{end}}
{{if .Message}}
{{.Message}}
{{else}}
Analyst recommendations for {{.Symbol}}.
{{with .Trend}}
| Strong buy | Buy | Hold | Sell | Strong sell |
|---|---|---|---|---|
| {{.StrongBuy}} | {{.Buy}} | {{.Hold}} | {{.Sell}} | {{.StrongSell}} |
{{else}}
_{{.TrendMessage}}_
{{end}}{{with .Recommendation}}
**{{.Tier.Label}}** (score {{printf "%+.2f" .TotalScore}}): {{.Tier.Action}}
{{range .Factors}}
- {{.Name}}: {{printf "%+.1f" .RawScore}} x {{printf "%.2f" .Weight}} ({{.Commentary}}){{end}}
{{if .WarningMsg}}
> {{.WarningMsg}}
{{end}}{{end}}{{if .Commentary}}
{{.Commentary}}
{{end}}{{end}}{{end}}{{with .Watchlist}}# Watchlist
{{if .Message}}
{{.Message}}
{{else}}{{range .Items}}
- {{.}}{{end}}
{{end}}{{end}}`

var pageTmpl = template.Must(template.New("page").Parse(pageMarkdown))

// Markdown renders the page as markdown for terminals and the web UI.
func (p *Page) Markdown() (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
