package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/journal"
	"github.com/rustyeddy/stockwatch/market"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recorded alert events, most recent first",
	Long: `List alert events from the event log.

Examples:
  stockwatch events --limit 20
  stockwatch events --symbol AAPL --format org
  stockwatch events --format csv > events.csv`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

var (
	eventsLimit  int
	eventsSymbol string
	eventsFormat string
)

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", journal.DefaultEventLimit, "maximum events to show")
	eventsCmd.Flags().StringVarP(&eventsSymbol, "symbol", "s", "", "only events for this symbol")
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", "table", "output format: table, csv or org")
}

func runEvents(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var events []alert.Event
	if eventsSymbol != "" {
		events, err = store.ListEventsBySymbol(cmd.Context(), market.NormalizeSymbol(eventsSymbol), eventsLimit)
	} else {
		events, err = store.ListEvents(cmd.Context(), eventsLimit)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch eventsFormat {
	case "csv":
		return journal.WriteEventsCSV(out, events)
	case "org":
		fmt.Fprint(out, journal.FormatEventsOrg(events))
		return nil
	case "table":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tRULE\tTICKER\tDIRECTION\tTHRESHOLD\tPRICE\tTRIGGERED")
		for _, ev := range events {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.2f\t%.2f\t%s\n",
				ev.ID, ev.RuleID, ev.Symbol, ev.Direction, ev.Threshold, ev.Price,
				ev.TriggeredAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, csv or org)", eventsFormat)
	}
}
