package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/stockwatch/alert"
)

// Store is the SQL implementation of Journal. It speaks sqlite3 and postgres.
type Store struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreClock replaces time.Now for created_at stamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to driver ("sqlite3" or "postgres") and applies the schema.
func Open(driver, dsn string, opts ...StoreOption) (*Store, error) {
	var schema string
	switch driver {
	case "sqlite3", "sqlite":
		driver, schema = "sqlite3", SQLiteSchema
	case "postgres":
		schema = PostgresSchema
	default:
		return nil, fmt.Errorf("journal: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// one writer at a time; the API and the evaluator share the file
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}

	s := &Store{
		db:       db,
		postgres: driver == "postgres",
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewSQLite opens (creating if needed) a sqlite database file.
func NewSQLite(path string, opts ...StoreOption) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}
	return Open("sqlite3", dsn, opts...)
}

// q rewrites ? placeholders to $n for postgres.
func (s *Store) q(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ---- rules ----

func (s *Store) CreateRule(ctx context.Context, symbol string, dir alert.Direction, threshold float64) (alert.Rule, error) {
	r := alert.Rule{
		Symbol:    symbol,
		Direction: dir,
		Threshold: threshold,
		CreatedAt: s.now(),
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO rules (ticker, direction, price, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		r.Symbol, string(r.Direction), r.Threshold, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return alert.Rule{}, fmt.Errorf("create rule: %w", err)
	}
	return r, nil
}

// ListRules returns every rule, newest first.
func (s *Store) ListRules(ctx context.Context) ([]alert.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, ticker, direction, price, created_at FROM rules ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	out := []alert.Rule{}
	for rows.Next() {
		var r alert.Rule
		var dir string
		if err := rows.Scan(&r.ID, &r.Symbol, &dir, &r.Threshold, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.Direction = alert.Direction(dir)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRule returns sql.ErrNoRows when id does not exist.
func (s *Store) GetRule(ctx context.Context, id int64) (alert.Rule, error) {
	var r alert.Rule
	var dir string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, ticker, direction, price, created_at FROM rules WHERE id = ?`), id).
		Scan(&r.ID, &r.Symbol, &dir, &r.Threshold, &r.CreatedAt)
	if err != nil {
		return alert.Rule{}, err
	}
	r.Direction = alert.Direction(dir)
	return r, nil
}

// DeleteRule removes a rule. Deleting a missing id succeeds.
func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM rules WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	return nil
}

// ---- events ----

func (s *Store) AppendEvent(ctx context.Context, ev alert.Event) (alert.Event, error) {
	if ev.TriggeredAt.IsZero() {
		ev.TriggeredAt = s.now()
	}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO events (rule_id, ticker, direction, threshold, price, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		ev.RuleID, ev.Symbol, string(ev.Direction), ev.Threshold, ev.Price, ev.TriggeredAt,
	).Scan(&ev.ID)
	if err != nil {
		return alert.Event{}, fmt.Errorf("append event: %w", err)
	}
	return ev, nil
}

// ListEvents returns up to limit events, newest first. limit <= 0 means
// DefaultEventLimit; anything above MaxEventLimit is capped.
func (s *Store) ListEvents(ctx context.Context, limit int) ([]alert.Event, error) {
	return s.listEvents(ctx, `
		SELECT id, rule_id, ticker, direction, threshold, price, triggered_at
		FROM events ORDER BY id DESC LIMIT ?`, clampLimit(limit))
}

// ListEventsBySymbol is ListEvents filtered to one symbol.
func (s *Store) ListEventsBySymbol(ctx context.Context, symbol string, limit int) ([]alert.Event, error) {
	return s.listEvents(ctx, `
		SELECT id, rule_id, ticker, direction, threshold, price, triggered_at
		FROM events WHERE ticker = ? ORDER BY id DESC LIMIT ?`, symbol, clampLimit(limit))
}

func (s *Store) listEvents(ctx context.Context, query string, args ...any) ([]alert.Event, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []alert.Event{}
	for rows.Next() {
		var ev alert.Event
		var dir string
		if err := rows.Scan(&ev.ID, &ev.RuleID, &ev.Symbol, &dir, &ev.Threshold, &ev.Price, &ev.TriggeredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Direction = alert.Direction(dir)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ---- watchlist ----

// AddSymbol inserts symbol or refreshes its created_at if already present.
func (s *Store) AddSymbol(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO watchlist (ticker, created_at) VALUES (?, ?)
		ON CONFLICT (ticker) DO UPDATE SET created_at = excluded.created_at`),
		symbol, s.now(),
	)
	if err != nil {
		return fmt.Errorf("add %s to watchlist: %w", symbol, err)
	}
	return nil
}

// RemoveSymbol drops symbol from the watchlist. Rules on it are kept.
func (s *Store) RemoveSymbol(ctx context.Context, symbol string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM watchlist WHERE ticker = ?`), symbol); err != nil {
		return fmt.Errorf("remove %s from watchlist: %w", symbol, err)
	}
	return nil
}

// Watchlist returns the watchlist, most recently added first.
func (s *Store) Watchlist(ctx context.Context) ([]WatchItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, created_at FROM watchlist ORDER BY created_at DESC, ticker`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	out := []WatchItem{}
	for rows.Next() {
		var w WatchItem
		if err := rows.Scan(&w.Symbol, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// InWatchlist reports whether symbol is on the watchlist.
func (s *Store) InWatchlist(ctx context.Context, symbol string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT 1 FROM watchlist WHERE ticker = ?`), symbol).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TrackedSymbols is every symbol on the watchlist or referenced by a rule, sorted.
func (s *Store) TrackedSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker FROM watchlist
		UNION
		SELECT ticker FROM rules
		ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("tracked symbols: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

var _ Journal = (*Store)(nil)
