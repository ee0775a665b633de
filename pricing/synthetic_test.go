package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthetic_KnownSymbols(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(WithSeed(42))
	q, err := s.Fetch(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.InDelta(t, 189.5, q.Price, 189.5*0.01)
	assert.False(t, q.Time.IsZero())
}

func TestSynthetic_UnknownSymbol(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(WithSeed(1))
	_, err := s.Fetch(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestSynthetic_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewSynthetic(WithSeed(7))
	b := NewSynthetic(WithSeed(7))
	for i := 0; i < 20; i++ {
		qa, err := a.Fetch(context.Background(), "MSFT")
		require.NoError(t, err)
		qb, err := b.Fetch(context.Background(), "MSFT")
		require.NoError(t, err)
		assert.Equal(t, qa.Price, qb.Price)
	}
}

func TestSynthetic_NeverBelowFloor(t *testing.T) {
	t.Parallel()

	// a huge volatility drives the walk into the floor quickly
	s := NewSynthetic(WithSeed(3), WithVolatility(2.0), WithFloor(1.0), WithSeedPrices(map[string]float64{"penny": 1.2}))
	for i := 0; i < 500; i++ {
		q, err := s.Fetch(context.Background(), "PENNY")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, q.Price, 1.0)
	}
	assert.Equal(t, 1.0, s.Floor())
}

func TestSynthetic_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSynthetic().Fetch(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
