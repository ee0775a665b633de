package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockwatch/pricing"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Fetch one round of quotes from the configured feed",
	Long: `Run a single refresh cycle over feed.symbols, the watchlist and rule
symbols, and print what the feed returned. Symbols the feed could not
quote are listed as "-".

Example:
  stockwatch prices --config oanda.yaml`,
	Args: cobra.NoArgs,
	RunE: runPrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)
}

func runPrices(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cache := pricing.NewCache(cfg.Feed.SeriesLimit)
	src, opts := quoteSource(cfg)
	opts = append(opts, pricing.WithTracker(store), pricing.WithRefreshLogger(log))
	r := pricing.NewRefresher(cache, src, opts...)

	tracked := r.Tracked(cmd.Context())
	r.Refresh(cmd.Context())

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tPRICE")
	for _, sym := range tracked {
		if p, ok := cache.Price(sym); ok {
			fmt.Fprintf(tw, "%s\t%.2f\n", sym, p)
		} else {
			fmt.Fprintf(tw, "%s\t-\n", sym)
		}
	}
	return tw.Flush()
}
