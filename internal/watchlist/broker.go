package watchlist

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Action names a watchlist mutation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Event is published after every applied change.
type Event struct {
	Action Action    `json:"action"`
	Symbol string    `json:"symbol"`
	Items  List      `json:"items"`
	At     time.Time `json:"at"`
}

// Subscription receives watchlist events on C.
type Subscription struct {
	C    chan Event
	name string
}

// Broker fans watchlist events out to subscribers without blocking the publisher.
type Broker struct {
	mu          sync.RWMutex
	subs        map[*Subscription]struct{}
	channelSize int
	dropped     atomic.Int64
}

// NewBroker creates a broker whose subscription channels hold channelSize events.
func NewBroker(channelSize int) *Broker {
	if channelSize <= 0 {
		channelSize = 16
	}
	return &Broker{
		subs:        make(map[*Subscription]struct{}),
		channelSize: channelSize,
	}
}

// Subscribe registers a new subscriber. name is used in logs only.
func (b *Broker) Subscribe(name string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{C: make(chan Event, b.channelSize), name: name}
	b.subs[sub] = struct{}{}
	log.Debug().Str("subscriber", name).Int("total_subs", len(b.subs)).Msg("watchlist broker: subscribed")
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.C)
	log.Debug().Str("subscriber", sub.name).Int("total_subs", len(b.subs)).Msg("watchlist broker: unsubscribed")
}

// Publish delivers evt to every subscriber whose buffer has room.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.C <- evt:
		default:
			b.dropped.Add(1)
			log.Warn().
				Str("subscriber", sub.name).
				Str("symbol", evt.Symbol).
				Msg("watchlist broker: subscriber full, event dropped")
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
