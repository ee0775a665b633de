package pricing

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/stockwatch/market"
)

// DefaultVolatility is the standard deviation of one synthetic step, as a
// fraction of price (0.1%).
const DefaultVolatility = 0.001

// Synthetic is an offline QuoteSource that random-walks each known symbol
// from its seed price. Every call to Fetch advances the walk by one step.
type Synthetic struct {
	mu         sync.Mutex
	rng        *rand.Rand
	last       map[string]float64
	volatility float64
	floor      float64
	now        func() time.Time
}

// SyntheticOption configures a Synthetic feed.
type SyntheticOption func(*Synthetic)

// WithSeed makes the walk deterministic.
func WithSeed(seed int64) SyntheticOption {
	return func(s *Synthetic) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithVolatility overrides DefaultVolatility.
func WithVolatility(v float64) SyntheticOption {
	return func(s *Synthetic) {
		if v >= 0 {
			s.volatility = v
		}
	}
}

// WithFloor overrides market.DefaultFloor.
func WithFloor(f float64) SyntheticOption {
	return func(s *Synthetic) {
		if f > 0 {
			s.floor = f
		}
	}
}

// WithSeedPrices adds or replaces starting prices.
func WithSeedPrices(seeds map[string]float64) SyntheticOption {
	return func(s *Synthetic) {
		for sym, p := range seeds {
			s.last[market.NormalizeSymbol(sym)] = p
		}
	}
}

// NewSynthetic seeds the walk from market.Instruments.
func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		last:       make(map[string]float64, len(market.Instruments)),
		volatility: DefaultVolatility,
		floor:      market.DefaultFloor,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for sym, meta := range market.Instruments {
		s.last[sym] = meta.SeedPrice
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch implements QuoteSource.
func (s *Synthetic) Fetch(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	px, ok := s.last[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("synthetic feed %s: %w", symbol, ErrUnknownSymbol)
	}
	next := market.ClampPrice(px*(1.0+s.rng.NormFloat64()*s.volatility), s.floor)
	s.last[symbol] = next

	return Quote{Symbol: symbol, Price: next, Time: s.now()}, nil
}

// Floor is the minimum price this feed produces.
func (s *Synthetic) Floor() float64 { return s.floor }
