package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"InvestmentHelper/internal/macro"
	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/view"
	"InvestmentHelper/internal/watchlist"
)

// Handler serves the dashboard and its JSON API.
type Handler struct {
	ctrl    *view.Controller
	quotes  view.QuoteSource
	macro   view.MacroSource
	broker  *watchlist.Broker
	started time.Time
	version string

	// KeepAlive is the SSE comment interval.
	KeepAlive time.Duration
}

// NewHandler creates a handler. broker may be nil, which disables the event stream.
func NewHandler(ctrl *view.Controller, quotes view.QuoteSource, indicators view.MacroSource, broker *watchlist.Broker, version string) *Handler {
	return &Handler{
		ctrl:      ctrl,
		quotes:    quotes,
		macro:     indicators,
		broker:    broker,
		started:   time.Now(),
		version:   version,
		KeepAlive: 30 * time.Second,
	}
}

type watchlistResponse struct {
	Items []string `json:"items"`
}

type watchlistRequest struct {
	Symbol string `json:"symbol"`
}

type quoteResponse struct {
	Symbol              string              `json:"symbol"`
	Name                string              `json:"name,omitempty"`
	Currency            string              `json:"currency,omitempty"`
	CurrentPrice        decimal.NullDecimal `json:"current_price"`
	DayHigh             decimal.NullDecimal `json:"day_high"`
	DayLow              decimal.NullDecimal `json:"day_low"`
	TrailingPE          decimal.NullDecimal `json:"trailing_pe"`
	DividendYield       decimal.NullDecimal `json:"dividend_yield"`
	LongBusinessSummary string              `json:"long_business_summary,omitempty"`
	Benchmark           string              `json:"benchmark,omitempty"`
	PerformanceOverview string              `json:"performance_overview,omitempty"`
	FundFamily          string              `json:"fund_family,omitempty"`
	FetchedAt           time.Time           `json:"fetched_at"`
}

func toQuoteResponse(q *model.Quote) quoteResponse {
	return quoteResponse{
		Symbol:              q.Symbol,
		Name:                q.Name,
		Currency:            q.Currency,
		CurrentPrice:        q.CurrentPrice,
		DayHigh:             q.DayHigh,
		DayLow:              q.DayLow,
		TrailingPE:          q.TrailingPE,
		DividendYield:       q.DividendYield,
		LongBusinessSummary: q.LongBusinessSummary,
		Benchmark:           q.Benchmark,
		PerformanceOverview: q.PerformanceOverview,
		FundFamily:          q.FundFamily,
		FetchedAt:           q.FetchedAt,
	}
}

type indicatorResponse struct {
	Category string              `json:"category"`
	Country  string              `json:"country"`
	Label    string              `json:"label"`
	Value    decimal.NullDecimal `json:"value"`
	RawValue string              `json:"raw_value,omitempty"`
	Unit     string              `json:"unit,omitempty"`
}

// ListWatchlist returns the saved symbols.
// GET /api/v1/watchlist
func (h *Handler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	items := h.ctrl.Items()
	if items == nil {
		items = watchlist.List{}
	}
	SuccessList(w, r, watchlistResponse{Items: items}, len(items))
}

// AddWatchlist appends a symbol.
// POST /api/v1/watchlist {"symbol": "AAPL"}
func (h *Handler) AddWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, r, "invalid JSON body")
		return
	}
	symbol := view.Resolve(req.Symbol)
	if symbol == "" {
		BadRequest(w, r, "symbol is required")
		return
	}

	n := h.ctrl.Add(symbol)
	switch n.Kind {
	case view.NoticeSuccess:
		Success(w, r, http.StatusCreated, watchlistResponse{Items: h.ctrl.Items()}, n.Text)
	case view.NoticeInfo:
		Success(w, r, http.StatusOK, watchlistResponse{Items: h.ctrl.Items()}, n.Text)
	default:
		Error(w, r, http.StatusInternalServerError, ErrCodeStorage, n.Text)
	}
}

// RemoveWatchlist deletes a symbol.
// DELETE /api/v1/watchlist/{symbol}
func (h *Handler) RemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := view.Resolve(chi.URLParam(r, "symbol"))
	if symbol == "" {
		BadRequest(w, r, "symbol is required")
		return
	}

	n := h.ctrl.Remove(symbol)
	switch n.Kind {
	case view.NoticeSuccess:
		Success(w, r, http.StatusOK, watchlistResponse{Items: h.ctrl.Items()}, n.Text)
	case view.NoticeInfo:
		NotFound(w, r, n.Text)
	default:
		Error(w, r, http.StatusInternalServerError, ErrCodeStorage, n.Text)
	}
}

// GetQuote returns a quote snapshot for one symbol.
// GET /api/v1/quotes/{symbol}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(chi.URLParam(r, "symbol"))
	if symbol == "" {
		BadRequest(w, r, "symbol is required")
		return
	}

	res := h.quotes.Quote(r.Context(), symbol)
	if !res.Ok() {
		status, code := failureStatus(res.Err)
		ErrorWithDetails(w, r, status, code, fmt.Sprintf("quote for %s unavailable", symbol), res.Err.Error())
		return
	}
	Success(w, r, http.StatusOK, toQuoteResponse(res.Value), "")
}

// GetMacro returns the latest macro indicators.
// GET /api/v1/macro
func (h *Handler) GetMacro(w http.ResponseWriter, r *http.Request) {
	res := h.macro.Latest(r.Context())
	if !res.Ok() {
		status, code := failureStatus(res.Err)
		ErrorWithDetails(w, r, status, code, "macro-economic data unavailable", res.Err.Error())
		return
	}
	out := make([]indicatorResponse, 0, len(res.Value))
	for _, ind := range res.Value {
		out = append(out, indicatorResponse{
			Category: ind.Category,
			Country:  ind.Country,
			Label:    macro.Label(ind),
			Value:    ind.Value,
			RawValue: ind.RawValue,
			Unit:     ind.Unit,
		})
	}
	SuccessList(w, r, out, len(out))
}

// failureStatus maps an upstream failure to an HTTP status and error code.
func failureStatus(err error) (int, string) {
	switch model.KindOf(err) {
	case model.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case model.KindTimeout:
		return http.StatusGatewayTimeout, ErrCodeExternalAPITimeout
	default:
		return http.StatusBadGateway, ErrCodeExternalAPIError
	}
}

// StreamWatchlist pushes every watchlist change as an SSE "watchlist" event.
// GET /api/v1/watchlist/events
func (h *Handler) StreamWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.broker == nil {
		http.Error(w, "event stream disabled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// the server write timeout would otherwise cut the stream
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sub := h.broker.Subscribe("sse:" + r.RemoteAddr)
	defer h.broker.Unsubscribe(sub)

	// Initial snapshot so a client never starts from stale state.
	sendEvent(w, "snapshot", watchlistResponse{Items: h.ctrl.Items()})
	flusher.Flush()

	log.Info().Str("remote", r.RemoteAddr).Msg("SSE: client connected")

	keepAlive := time.NewTicker(h.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info().Str("remote", r.RemoteAddr).Msg("SSE: client disconnected")
			return
		case evt, ok := <-sub.C:
			if !ok {
				return
			}
			sendEvent(w, "watchlist", evt)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("SSE: marshal event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Watchlist int    `json:"watchlist"`
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	Success(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Watchlist: len(h.ctrl.Items()),
	}, "")
}
