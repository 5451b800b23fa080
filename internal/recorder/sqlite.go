package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the CLI read while the server writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

// Open returns a SQLite recorder for dbPath, or a no-op recorder when the
// path is empty or the database cannot be opened.
func Open(dbPath string) Recorder {
	if dbPath == "" {
		return NewNoopRecorder()
	}
	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		log.Warn().Err(err).Str("path", dbPath).Msg("sqlite recorder unavailable, journaling disabled")
		return NewNoopRecorder()
	}
	return r
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			action    TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			items     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_ts ON watchlist_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS quote_snapshots (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			currency  TEXT,
			price     TEXT,
			day_high  TEXT,
			day_low   TEXT,
			source    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quote_symbol_ts ON quote_snapshots(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Unix()
}

func (r *SQLiteRecorder) RecordWatchlistEvent(evt *WatchlistEvent) error {
	items, err := json.Marshal(evt.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO watchlist_events
		(timestamp, action, symbol, items)
		VALUES (?,?,?,?)`,
		stamp(evt.At), evt.Action, evt.Symbol, string(items),
	)
	return err
}

func (r *SQLiteRecorder) RecordQuote(snap *QuoteSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO quote_snapshots
		(timestamp, symbol, currency, price, day_high, day_low, source)
		VALUES (?,?,?,?,?,?,?)`,
		stamp(snap.At), snap.Symbol, snap.Currency,
		snap.Price, snap.DayHigh, snap.DayLow, snap.Source,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
