package pricing

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnknownSymbol is returned by a QuoteSource that has no quote for a symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrNonPositivePrice marks a real-feed quote that was discarded.
	ErrNonPositivePrice = errors.New("non-positive price")
)

// Quote is what a QuoteSource returns for one symbol. Series is optional.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
	Series []Sample  `json:"series,omitempty"`
}

// QuoteSource fetches the latest quote for one symbol. An unknown or
// delisted symbol is an ordinary error, never a panic.
type QuoteSource interface {
	Fetch(ctx context.Context, symbol string) (Quote, error)
}

// SymbolTracker returns the symbols that should be refreshed in addition to
// the static defaults.
type SymbolTracker interface {
	TrackedSymbols(ctx context.Context) ([]string, error)
}
