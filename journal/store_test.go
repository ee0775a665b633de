package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockwatch/alert"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stockwatch.db")
	clk := &stepClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	s, err := NewSQLite(path, WithStoreClock(clk.now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStoreSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('watchlist','rules','events')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())
	assert.Len(t, found, 3)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open("mysql", "x")
	assert.Error(t, err)
}

func TestRuleCRUD(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRule(ctx, "AAPL", alert.Above, 190)
	require.NoError(t, err)
	r2, err := s.CreateRule(ctx, "TSLA", alert.Below, 250.5)
	require.NoError(t, err)
	assert.Greater(t, r2.ID, r1.ID)
	assert.False(t, r1.CreatedAt.IsZero())

	rules, err := s.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, r2.ID, rules[0].ID)
	assert.Equal(t, "TSLA", rules[0].Symbol)
	assert.Equal(t, alert.Below, rules[0].Direction)
	assert.Equal(t, 250.5, rules[0].Threshold)
	assert.True(t, r2.CreatedAt.Equal(rules[0].CreatedAt))

	got, err := s.GetRule(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)

	require.NoError(t, s.DeleteRule(ctx, r1.ID))
	require.NoError(t, s.DeleteRule(ctx, r1.ID), "delete is idempotent")
	_, err = s.GetRule(ctx, r1.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// ids are never reused
	r3, err := s.CreateRule(ctx, "AAPL", alert.Above, 190)
	require.NoError(t, err)
	assert.Greater(t, r3.ID, r2.ID)
}

func TestEventLog(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		sym := "GOLD"
		if i%2 == 1 {
			sym = "OIL"
		}
		ev, err := s.AppendEvent(ctx, alert.Event{
			RuleID:      int64(i + 1),
			Symbol:      sym,
			Direction:   alert.Above,
			Threshold:   100,
			Price:       100 + float64(i),
			TriggeredAt: at.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), ev.ID)
	}

	all, err := s.ListEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(5), all[0].ID)
	assert.Equal(t, 104.0, all[0].Price)
	assert.Equal(t, 100.0, all[0].Threshold)
	assert.True(t, at.Add(4*time.Minute).Equal(all[0].TriggeredAt))

	two, err := s.ListEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, []int64{5, 4}, []int64{two[0].ID, two[1].ID})

	oil, err := s.ListEventsBySymbol(ctx, "OIL", 10)
	require.NoError(t, err)
	require.Len(t, oil, 2)
	for _, ev := range oil {
		assert.Equal(t, "OIL", ev.Symbol)
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{0, DefaultEventLimit},
		{-3, DefaultEventLimit},
		{1, 1},
		{MaxEventLimit, MaxEventLimit},
		{MaxEventLimit + 1, MaxEventLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in), tt.in)
	}
}

func TestWatchlist(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddSymbol(ctx, "NVDA"))
	require.NoError(t, s.AddSymbol(ctx, "EUR_USD"))

	items, err := s.Watchlist(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "EUR_USD", items[0].Symbol)

	// re-adding moves the symbol to the front
	require.NoError(t, s.AddSymbol(ctx, "NVDA"))
	items, err = s.Watchlist(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "NVDA", items[0].Symbol)

	ok, err := s.InWatchlist(ctx, "NVDA")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveSymbol(ctx, "NVDA"))
	require.NoError(t, s.RemoveSymbol(ctx, "NVDA"))
	ok, err = s.InWatchlist(ctx, "NVDA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrackedSymbolsUnion(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddSymbol(ctx, "NVDA"))
	require.NoError(t, s.AddSymbol(ctx, "AAPL"))
	_, err := s.CreateRule(ctx, "AAPL", alert.Above, 200)
	require.NoError(t, err)
	_, err = s.CreateRule(ctx, "XAU_USD", alert.Below, 2000)
	require.NoError(t, err)

	syms, err := s.TrackedSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA", "XAU_USD"}, syms)

	// removing from the watchlist keeps symbols that rules still reference
	require.NoError(t, s.RemoveSymbol(ctx, "AAPL"))
	syms, err = s.TrackedSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA", "XAU_USD"}, syms)
}

func TestPostgresRebind(t *testing.T) {
	t.Parallel()

	s := &Store{postgres: true}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", s.q("SELECT 1 WHERE a = ? AND b = ?"))

	s.postgres = false
	assert.Equal(t, "a = ?", s.q("a = ?"))
}
