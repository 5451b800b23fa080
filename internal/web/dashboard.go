package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"InvestmentHelper/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	layoutTmpl = template.Must(template.New("layout.html").Funcs(template.FuncMap{
		"tabTitle":   func(t view.Tab) string { return t.Title() },
		"classTitle": func(c view.AssetClass) string { return c.Title() },
	}).ParseFS(templateFS, "templates/layout.html"))

	markdown = goldmark.New(goldmark.WithExtensions(extension.Table))
)

// dashboardData feeds templates/layout.html.
type dashboardData struct {
	Page        *view.Page
	Tabs        []view.Tab
	Classes     []view.AssetClass
	Candidates  []string
	Body        template.HTML
	Notice      *view.Notice
	ChartPoints string
	Query       string // encoded navigation state for form redirects
}

// stateFromQuery rebuilds the navigation from URL or form values.
// Unknown values fall back to the defaults.
func stateFromQuery(v url.Values) view.State {
	st := view.NewState()
	if tab, err := view.ParseTab(v.Get("tab")); err == nil {
		st = st.WithTab(tab)
	}
	if class, err := view.ParseClass(v.Get("class")); err == nil {
		st = st.WithClass(class)
	}
	st = st.WithQuery(v.Get("q"))
	if s := v.Get("symbol"); s != "" {
		st = st.WithSymbol(s)
	}
	return st
}

func stateQuery(st view.State) url.Values {
	v := url.Values{}
	v.Set("tab", string(st.Tab))
	v.Set("class", string(st.Class))
	if st.Query != "" {
		v.Set("q", st.Query)
	}
	if st.Symbol != "" {
		v.Set("symbol", st.Symbol)
	}
	return v
}

// Dashboard renders the HTML page for the selected tab.
// GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := stateFromQuery(q)
	page := h.ctrl.Render(r.Context(), st)

	data := dashboardData{
		Page:       page,
		Tabs:       view.Tabs,
		Classes:    view.Classes,
		Candidates: page.State.Candidates(),
		Query:      stateQuery(page.State).Encode(),
	}
	if text := q.Get("notice"); text != "" {
		data.Notice = &view.Notice{Kind: view.NoticeKind(q.Get("kind")), Text: text}
	}
	if page.QuickInfo != nil {
		data.ChartPoints = view.ChartPoints(page.QuickInfo.History, 600, 160)
	}
	if page.Watchlist == nil {
		md, err := page.Markdown()
		if err != nil {
			log.Error().Err(err).Msg("render panel markdown")
		}
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(md), &buf); err != nil {
			log.Error().Err(err).Msg("convert panel markdown")
		}
		data.Body = template.HTML(buf.String())
	}

	var out bytes.Buffer
	if err := layoutTmpl.Execute(&out, data); err != nil {
		log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("render dashboard")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out.Bytes())
}

// AddForm handles the dashboard "add to watchlist" button.
// POST /watchlist/add
func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st := stateFromQuery(r.PostForm)
	symbol := view.Resolve(r.PostForm.Get("symbol"))
	if symbol == "" {
		symbol = st.Symbol
	}
	h.redirectWithNotice(w, r, st, h.ctrl.Add(symbol))
}

// RemoveForm handles a watchlist row's remove button.
// POST /watchlist/remove/{symbol}
func (h *Handler) RemoveForm(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	st := view.NewState().WithTab(view.TabWatchlist)
	h.redirectWithNotice(w, r, st, h.ctrl.Remove(symbol))
}

func (h *Handler) redirectWithNotice(w http.ResponseWriter, r *http.Request, st view.State, n view.Notice) {
	v := stateQuery(st)
	v.Set("notice", n.Text)
	v.Set("kind", string(n.Kind))
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}
