// Package scheduler runs the background jobs of the server: the cron
// watchlist digest and the pump that journals and announces watchlist
// changes.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"InvestmentHelper/internal/model"
	"InvestmentHelper/internal/notifier"
	"InvestmentHelper/internal/recorder"
	"InvestmentHelper/internal/watchlist"
)

const sendRetries = 3

// Quoter looks up quotes for the digest.
type Quoter interface {
	Quote(ctx context.Context, symbol string) model.Result[*model.Quote]
	Source() string
}

// Lister returns the current watchlist.
type Lister interface {
	Items() watchlist.List
}

// Sender delivers a message, retrying on failure.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Quotes   Quoter
	List     Lister
	Notifier Sender // nil when Telegram is not configured
	Recorder recorder.Recorder
	Ctx      context.Context
	now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, quotes Quoter, list Lister, sender Sender, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Quotes:   quotes,
		List:     list,
		Notifier: sender,
		Recorder: rec,
		Ctx:      ctx,
		now:      time.Now,
	}
}

// RegisterAll registers the digest task.
func (s *Scheduler) RegisterAll(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) digestTask() {
	log.Info().Msg("running digest task")
	msg := s.Digest(s.Ctx)
	s.trySend(msg)
}

// Digest quotes every watchlist symbol, records the snapshots and returns
// the formatted message.
func (s *Scheduler) Digest(ctx context.Context) string {
	return notifier.FormatDigest(s.Collect(ctx), s.now())
}

// Collect quotes every watchlist symbol in order and records a snapshot for
// each successful quote.
func (s *Scheduler) Collect(ctx context.Context) []notifier.DigestEntry {
	items := s.List.Items()
	entries := make([]notifier.DigestEntry, 0, len(items))
	for _, symbol := range items {
		res := s.Quotes.Quote(ctx, symbol)
		entries = append(entries, notifier.DigestEntry{Symbol: symbol, Quote: res.Value, Err: res.Err})
		if !res.Ok() {
			continue
		}
		q := res.Value
		if err := s.Recorder.RecordQuote(&recorder.QuoteSnapshot{
			Symbol:   symbol,
			Currency: q.Currency,
			Price:    q.CurrentPrice,
			DayHigh:  q.DayHigh,
			DayLow:   q.DayLow,
			Source:   s.Quotes.Source(),
			At:       q.FetchedAt,
		}); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("record quote snapshot")
		}
	}
	return entries
}

// Pump journals and announces broker events until ctx is done.
func (s *Scheduler) Pump(ctx context.Context, broker *watchlist.Broker) {
	sub := broker.Subscribe("scheduler")
	defer broker.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.C:
			if !ok {
				return
			}
			s.handleEvent(ctx, evt)
		}
	}
}

func (s *Scheduler) handleEvent(ctx context.Context, evt watchlist.Event) {
	if err := s.Recorder.RecordWatchlistEvent(&recorder.WatchlistEvent{
		Action: string(evt.Action),
		Symbol: evt.Symbol,
		Items:  evt.Items,
		At:     evt.At,
	}); err != nil {
		log.Error().Err(err).Str("symbol", evt.Symbol).Msg("record watchlist event")
	}
	if s.Notifier != nil {
		if err := s.Notifier.SendWithRetry(ctx, notifier.FormatChange(evt), sendRetries); err != nil {
			log.Error().Err(err).Msg("send change notification")
		}
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Debug().Msg("telegram disabled, digest not sent")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
