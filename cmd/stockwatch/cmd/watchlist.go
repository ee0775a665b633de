package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockwatch/admin"
	"github.com/rustyeddy/stockwatch/pricing"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the tracked symbols",
	Long: `Symbols on the watchlist are refreshed alongside feed.symbols and can
have rules.

Examples:
  stockwatch watchlist add nvda
  stockwatch watchlist list
  stockwatch watchlist remove NVDA`,
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched symbols, most recently added first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(svc *admin.Service) ([]string, error) {
			return svc.Watchlist(cmd.Context())
		})
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <symbol>...",
	Short: "Add symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(svc *admin.Service) (list []string, err error) {
			for _, a := range args {
				if list, err = svc.AddSymbol(cmd.Context(), a); err != nil {
					return nil, err
				}
			}
			return list, nil
		})
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove <symbol>...",
	Short: "Remove symbols (rules on them are kept)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(svc *admin.Service) (list []string, err error) {
			for _, a := range args {
				if list, err = svc.RemoveSymbol(cmd.Context(), a); err != nil {
					return nil, err
				}
			}
			return list, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
}

// withWatchlist opens the store, runs fn and prints the resulting list.
func withWatchlist(cmd *cobra.Command, fn func(svc *admin.Service) ([]string, error)) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := fn(newService(cfg, store, pricing.NewCache(0)))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(watchlist is empty)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(list, "\n"))
	return nil
}
