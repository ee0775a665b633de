// Package alert holds the rule and event model and the edge-triggered
// evaluator that turns price crossings into events.
package alert

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Direction string

const (
	Above Direction = "above"
	Below Direction = "below"
)

// ParseDirection accepts "above" or "below" in any letter case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Above:
		return Above, nil
	case Below:
		return Below, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want above|below)", s)
	}
}

// Condition reports whether price satisfies the direction against threshold.
// Both comparisons are inclusive.
func (d Direction) Condition(price, threshold float64) bool {
	if d == Below {
		return price <= threshold
	}
	return price >= threshold
}

// Rule is immutable once created; it is only ever deleted.
type Rule struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"ticker"`
	Direction Direction `json:"direction"`
	Threshold float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Condition evaluates the rule against price.
func (r Rule) Condition(price float64) bool {
	return r.Direction.Condition(price, r.Threshold)
}

func (r Rule) String() string {
	return fmt.Sprintf("rule %d: %s %s %.2f", r.ID, r.Symbol, r.Direction, r.Threshold)
}

// Event records one false to true transition of a rule's condition.
type Event struct {
	ID          int64     `json:"id"`
	RuleID      int64     `json:"rule_id"`
	Symbol      string    `json:"ticker"`
	Direction   Direction `json:"direction"`
	Threshold   float64   `json:"threshold"`
	Price       float64   `json:"price"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// RuleLister returns the full current rule set.
type RuleLister interface {
	ListRules(ctx context.Context) ([]Rule, error)
}

// EventAppender durably records an event and returns it with its id set.
type EventAppender interface {
	AppendEvent(ctx context.Context, ev Event) (Event, error)
}

// PriceReader is the read side of the price cache.
type PriceReader interface {
	Price(symbol string) (float64, bool)
}

// Notifier receives events after they are durably recorded. Delivery is
// best effort; a Notifier must not block for long.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}
