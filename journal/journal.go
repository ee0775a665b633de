// Package journal is the durable side of stockwatch: the rule store, the
// append-only event log and the watchlist.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/stockwatch/alert"
)

// DefaultEventLimit is used when a caller asks for events without a limit.
const DefaultEventLimit = 50

// MaxEventLimit caps a single ListEvents call.
const MaxEventLimit = 500

// WatchItem is one watchlist row.
type WatchItem struct {
	Symbol    string    `json:"ticker"`
	CreatedAt time.Time `json:"created_at"`
}

// RuleStore is rule CRUD. Rules are never updated; DeleteRule of a missing id
// is not an error.
type RuleStore interface {
	CreateRule(ctx context.Context, symbol string, dir alert.Direction, threshold float64) (alert.Rule, error)
	ListRules(ctx context.Context) ([]alert.Rule, error)
	DeleteRule(ctx context.Context, id int64) error
}

// EventLog is append-only from the engine's point of view.
type EventLog interface {
	AppendEvent(ctx context.Context, ev alert.Event) (alert.Event, error)
	ListEvents(ctx context.Context, limit int) ([]alert.Event, error)
}

// Watchlist is the user-maintained set of tracked symbols.
type Watchlist interface {
	Watchlist(ctx context.Context) ([]WatchItem, error)
	AddSymbol(ctx context.Context, symbol string) error
	RemoveSymbol(ctx context.Context, symbol string) error
	TrackedSymbols(ctx context.Context) ([]string, error)
}

// Journal is everything the engine and the admin surface persist.
type Journal interface {
	RuleStore
	EventLog
	Watchlist
	Close() error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultEventLimit
	}
	if limit > MaxEventLimit {
		return MaxEventLimit
	}
	return limit
}
