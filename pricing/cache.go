package pricing

import (
	"sort"
	"sync"
	"time"
)

// DefaultSeriesLimit caps each symbol's intraday series.
const DefaultSeriesLimit = 500

// Sample is one point of an intraday series.
type Sample struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Cache is the latest price per symbol plus a bounded recent series.
//
// Only the Refresher writes to it. Readers always get copies, and a symbol's
// price and series change together under one lock.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]float64
	times  map[string]time.Time
	series map[string][]Sample
	limit  int
}

func NewCache(seriesLimit int) *Cache {
	if seriesLimit <= 0 {
		seriesLimit = DefaultSeriesLimit
	}
	return &Cache{
		prices: make(map[string]float64),
		times:  make(map[string]time.Time),
		series: make(map[string][]Sample),
		limit:  seriesLimit,
	}
}

// Set stores q as the symbol's latest price. A quote carrying its own series
// replaces the stored series; otherwise the price is appended as a sample.
func (c *Cache) Set(q Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prices[q.Symbol] = q.Price
	c.times[q.Symbol] = q.Time

	if len(q.Series) > 0 {
		s := q.Series
		if len(s) > c.limit {
			s = s[len(s)-c.limit:]
		}
		c.series[q.Symbol] = append([]Sample(nil), s...)
		return
	}

	s := append(c.series[q.Symbol], Sample{Time: q.Time, Price: q.Price})
	if len(s) > c.limit {
		// shift into a fresh slice so the dropped head can be collected
		s = append([]Sample(nil), s[len(s)-c.limit:]...)
	}
	c.series[q.Symbol] = s
}

// Price implements alert.PriceReader.
func (c *Cache) Price(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[symbol]
	return p, ok
}

// Quote returns the latest price and its observation time.
func (c *Cache) Quote(symbol string) (Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[symbol]
	if !ok {
		return Quote{}, false
	}
	return Quote{Symbol: symbol, Price: p, Time: c.times[symbol]}, true
}

// Snapshot copies every latest price.
func (c *Cache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

// Series copies one symbol's intraday series, oldest first.
func (c *Cache) Series(symbol string) []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Sample(nil), c.series[symbol]...)
}

// AllSeries copies every non-empty series.
func (c *Cache) AllSeries() map[string][]Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]Sample, len(c.series))
	for k, v := range c.series {
		if len(v) == 0 {
			continue
		}
		out[k] = append([]Sample(nil), v...)
	}
	return out
}

// Symbols lists priced symbols in sorted order.
func (c *Cache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.prices))
	for k := range c.prices {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ResetSeries drops every intraday series but keeps latest prices.
func (c *Cache) ResetSeries() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = make(map[string][]Sample)
}
