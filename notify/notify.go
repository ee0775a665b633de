// Package notify delivers recorded alert events to outside listeners.
// Every sink is best effort: a failed or slow delivery never reaches back
// into the evaluator.
package notify

import (
	"context"

	"github.com/rustyeddy/stockwatch/alert"
)

// Fanout forwards each event to every sink in order.
type Fanout []alert.Notifier

func (f Fanout) Notify(ctx context.Context, ev alert.Event) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

// Func adapts a plain function to alert.Notifier.
type Func func(ctx context.Context, ev alert.Event)

func (fn Func) Notify(ctx context.Context, ev alert.Event) { fn(ctx, ev) }
