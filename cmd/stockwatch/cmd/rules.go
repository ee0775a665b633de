package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stockwatch/journal"
	"github.com/rustyeddy/stockwatch/pricing"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Create, list and delete alert rules",
	Long: `Manage alert rules in the configured store. A running server picks up
changes on its next evaluation cycle.

Examples:
  stockwatch rules add AAPL above 190
  stockwatch rules list
  stockwatch rules delete 3`,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <symbol> <above|below> <price>",
	Short: "Create a rule",
	Args:  cobra.ExactArgs(3),
	RunE:  runRulesAdd,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a rule (deleting a missing id is not an error)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesDelete,
}

var rulesOrg bool

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)

	rulesListCmd.Flags().BoolVar(&rulesOrg, "org", false, "print as an Org table")
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	threshold, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("price %q: %w", args[2], err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := newService(cfg, store, pricing.NewCache(0)).CreateRule(cmd.Context(), args[0], args[1], threshold)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", r)
	return nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rules, err := store.ListRules(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rulesOrg {
		fmt.Fprint(out, journal.FormatRulesOrg(rules))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTICKER\tDIRECTION\tPRICE\tCREATED")
	for _, r := range rules {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", r.ID, r.Symbol, r.Direction, r.Threshold, r.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runRulesDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("rule id %q: %w", args[0], err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteRule(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted rule %d\n", id)
	return nil
}
