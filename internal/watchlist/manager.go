package watchlist

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Change describes the outcome of a Manager mutation.
type Change struct {
	Action  Action
	Symbol  string
	Applied bool // false when the add was a duplicate or the remove a miss
	Items   List
}

// Manager owns the in-memory watchlist and persists it after every mutation.
type Manager struct {
	mu     sync.Mutex
	items  List
	store  *Store
	broker *Broker
	// set when the file could not be read; every change is refused with it
	loadErr error
}

// NewManager loads the watchlist from store. broker may be nil.
func NewManager(store *Store, broker *Broker) (*Manager, error) {
	items, err := store.Load()
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", store.Path()).Int("items", len(items)).Msg("watchlist loaded")
	return &Manager{items: items, store: store, broker: broker}, nil
}

// OpenManager is NewManager for long-running surfaces. When the file cannot be
// read the manager still starts, empty, and refuses every change with the
// load error so the unreadable file is reported rather than overwritten.
// The error is returned alongside the usable manager.
func OpenManager(store *Store, broker *Broker) (*Manager, error) {
	m, err := NewManager(store, broker)
	if err == nil {
		return m, nil
	}
	log.Error().Err(err).Str("path", store.Path()).Msg("watchlist unreadable, changes disabled until the file is fixed")
	return &Manager{items: List{}, store: store, broker: broker, loadErr: err}, err
}

// LoadErr returns the error that put the manager in read-only mode, or nil.
func (m *Manager) LoadErr() error { return m.loadErr }

// Items returns a copy of the current watchlist.
func (m *Manager) Items() List {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Clone()
}

// Add appends symbol if absent and saves.
func (m *Manager) Add(symbol string) (Change, error) {
	return m.apply(ActionAdd, symbol, Add)
}

// Remove deletes symbol if present and saves.
func (m *Manager) Remove(symbol string) (Change, error) {
	return m.apply(ActionRemove, symbol, Remove)
}

func (m *Manager) apply(action Action, symbol string, op func(List, string) List) (Change, error) {
	m.mu.Lock()

	change := Change{Action: action, Symbol: symbol}
	if m.loadErr != nil {
		change.Items = m.items.Clone()
		m.mu.Unlock()
		return change, m.loadErr
	}
	next := op(m.items, symbol)
	if len(next) == len(m.items) {
		change.Items = m.items.Clone()
		m.mu.Unlock()
		return change, nil
	}

	// On a failed save the in-memory list stays as it was on disk.
	if err := m.store.Save(next); err != nil {
		change.Items = m.items.Clone()
		m.mu.Unlock()
		log.Error().Err(err).Str("action", string(action)).Str("symbol", symbol).Msg("watchlist save failed")
		return change, err
	}
	m.items = next
	change.Applied = true
	change.Items = next.Clone()
	// Publish never blocks; holding the lock keeps events in save order.
	if m.broker != nil {
		m.broker.Publish(Event{Action: action, Symbol: symbol, Items: change.Items.Clone(), At: time.Now()})
	}
	m.mu.Unlock()

	log.Info().Str("action", string(action)).Str("symbol", symbol).Int("items", len(next)).Msg("watchlist updated")
	return change, nil
}
