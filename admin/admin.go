// Package admin is the validated CRUD surface shared by the HTTP API and the
// CLI. It uppercases symbols, rejects untracked ones and reads prices from
// the cache without ever writing to it.
package admin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/journal"
	"github.com/rustyeddy/stockwatch/market"
	"github.com/rustyeddy/stockwatch/pricing"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrNotTracked       = errors.New("symbol not tracked")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrNoPrice          = errors.New("no price available")
	ErrNoSeries         = errors.New("no intraday data")
)

// Store is the persistence the service needs.
type Store interface {
	journal.Journal
	InWatchlist(ctx context.Context, symbol string) (bool, error)
	Ping(ctx context.Context) error
}

// Prices is the read side of the price cache.
type Prices interface {
	Price(symbol string) (float64, bool)
	Snapshot() map[string]float64
	Series(symbol string) []pricing.Sample
	AllSeries() map[string][]pricing.Sample
}

type Service struct {
	store    Store
	prices   Prices
	defaults map[string]struct{}
}

// NewService builds a service. defaults are the always-tracked symbols.
func NewService(store Store, prices Prices, defaults []string) *Service {
	d := make(map[string]struct{}, len(defaults))
	for _, s := range market.NormalizeSymbols(defaults) {
		d[s] = struct{}{}
	}
	return &Service{store: store, prices: prices, defaults: d}
}

func normalize(symbol string) (string, error) {
	s := market.NormalizeSymbol(symbol)
	if !market.ValidSymbol(s) {
		return "", fmt.Errorf("%w %q", ErrInvalidSymbol, symbol)
	}
	return s, nil
}

// Tracked reports whether symbol is a default or on the watchlist.
func (s *Service) Tracked(ctx context.Context, symbol string) (bool, error) {
	if _, ok := s.defaults[symbol]; ok {
		return true, nil
	}
	return s.store.InWatchlist(ctx, symbol)
}

// CreateRule validates and stores a rule. The symbol must already be tracked
// but does not need a price yet.
func (s *Service) CreateRule(ctx context.Context, symbol, direction string, threshold float64) (alert.Rule, error) {
	sym, err := normalize(symbol)
	if err != nil {
		return alert.Rule{}, err
	}
	dir, err := alert.ParseDirection(direction)
	if err != nil {
		return alert.Rule{}, fmt.Errorf("%w: %w", ErrInvalidDirection, err)
	}
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return alert.Rule{}, fmt.Errorf("%w: %v must be a positive price", ErrInvalidThreshold, threshold)
	}

	ok, err := s.Tracked(ctx, sym)
	if err != nil {
		return alert.Rule{}, fmt.Errorf("check watchlist: %w", err)
	}
	if !ok {
		return alert.Rule{}, fmt.Errorf("%w: unsupported ticker '%s', add it to the watchlist or use one of %s",
			ErrNotTracked, sym, strings.Join(s.defaultList(), ", "))
	}
	return s.store.CreateRule(ctx, sym, dir, threshold)
}

func (s *Service) ListRules(ctx context.Context) ([]alert.Rule, error) {
	return s.store.ListRules(ctx)
}

// DeleteRule is idempotent.
func (s *Service) DeleteRule(ctx context.Context, id int64) error {
	return s.store.DeleteRule(ctx, id)
}

// Watchlist returns watched symbols, most recently added first.
func (s *Service) Watchlist(ctx context.Context) ([]string, error) {
	items, err := s.store.Watchlist(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Symbol
	}
	return out, nil
}

// AddSymbol puts symbol on the watchlist and returns the new list. The
// refresher starts pricing it on its next cycle.
func (s *Service) AddSymbol(ctx context.Context, symbol string) ([]string, error) {
	sym, err := normalize(symbol)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddSymbol(ctx, sym); err != nil {
		return nil, err
	}
	return s.Watchlist(ctx)
}

// RemoveSymbol is idempotent and returns the new list.
func (s *Service) RemoveSymbol(ctx context.Context, symbol string) ([]string, error) {
	if err := s.store.RemoveSymbol(ctx, market.NormalizeSymbol(symbol)); err != nil {
		return nil, err
	}
	return s.Watchlist(ctx)
}

func (s *Service) Prices() map[string]float64 {
	return s.prices.Snapshot()
}

func (s *Service) Price(symbol string) (string, float64, error) {
	sym := market.NormalizeSymbol(symbol)
	p, ok := s.prices.Price(sym)
	if !ok {
		return sym, 0, fmt.Errorf("%w for '%s' yet, add it to your watchlist and wait for the next refresh", ErrNoPrice, sym)
	}
	return sym, p, nil
}

func (s *Service) Series(symbol string) (string, []pricing.Sample, error) {
	sym := market.NormalizeSymbol(symbol)
	series := s.prices.Series(sym)
	if len(series) == 0 {
		return sym, nil, fmt.Errorf("%w for '%s'", ErrNoSeries, sym)
	}
	return sym, series, nil
}

func (s *Service) AllSeries() map[string][]pricing.Sample {
	return s.prices.AllSeries()
}

// Events returns the most recent events first. See journal.DefaultEventLimit.
func (s *Service) Events(ctx context.Context, limit int) ([]alert.Event, error) {
	return s.store.ListEvents(ctx, limit)
}

// Health pings the store.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) defaultList() []string {
	out := make([]string, 0, len(s.defaults))
	for k := range s.defaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsValidation reports whether err is a caller mistake rather than a
// storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrNotTracked) ||
		errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrInvalidThreshold)
}
