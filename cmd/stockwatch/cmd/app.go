package cmd

import (
	"fmt"

	"github.com/rustyeddy/stockwatch/admin"
	"github.com/rustyeddy/stockwatch/config"
	"github.com/rustyeddy/stockwatch/journal"
	"github.com/rustyeddy/stockwatch/oanda"
	"github.com/rustyeddy/stockwatch/pricing"
)

func openStore(c *config.Config) (*journal.Store, error) {
	var (
		s   *journal.Store
		err error
	)
	if c.Storage.Driver == "sqlite3" {
		s, err = journal.NewSQLite(c.Storage.DSN)
	} else {
		s, err = journal.Open(c.Storage.Driver, c.Storage.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Storage.Driver, err)
	}
	return s, nil
}

// quoteSource builds the configured feed and the refresher options that go
// with it. Only the synthetic feed clamps to a floor; a real feed discards
// non-positive quotes.
func quoteSource(c *config.Config) (pricing.QuoteSource, []pricing.RefresherOption) {
	opts := []pricing.RefresherOption{
		pricing.WithDefaults(c.Feed.Symbols),
		pricing.WithRefreshInterval(c.Feed.Interval),
		pricing.WithConcurrency(c.Feed.Concurrency),
	}

	if c.Feed.Provider == "oanda" {
		// Validate already rejected unknown granularities
		g, _ := oanda.ParseGranularity(c.Oanda.Granularity)
		src := oanda.NewClient(c.Oanda.Token, c.Oanda.AccountID,
			oanda.WithBaseURL(c.Oanda.BaseURL),
			oanda.WithSeries(c.Oanda.SeriesCount),
			oanda.WithGranularity(g),
			oanda.WithTimeout(c.Oanda.Timeout),
		)
		return src, opts
	}

	synOpts := []pricing.SyntheticOption{
		pricing.WithVolatility(c.Feed.Volatility),
		pricing.WithFloor(c.Feed.Floor),
	}
	if c.Feed.Seed != 0 {
		synOpts = append(synOpts, pricing.WithSeed(c.Feed.Seed))
	}
	return pricing.NewSynthetic(synOpts...), append(opts, pricing.WithClamp(c.Feed.Floor))
}

func newService(c *config.Config, s *journal.Store, cache *pricing.Cache) *admin.Service {
	return admin.NewService(s, cache, c.Feed.Symbols)
}
