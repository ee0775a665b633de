package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/stockwatch/alert"
)

// FormatEventOrg renders an event as an Org-mode heading with the structured
// facts in a PROPERTIES drawer and an empty Notes section.
func FormatEventOrg(ev alert.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Alert: %s %s %.2f (event %d)\n", ev.Symbol, ev.Direction, ev.Threshold, ev.ID)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":EVENT_ID: %d\n", ev.ID)
	fmt.Fprintf(&b, ":RULE_ID: %d\n", ev.RuleID)
	fmt.Fprintf(&b, ":TICKER: %s\n", ev.Symbol)
	fmt.Fprintf(&b, ":DIRECTION: %s\n", ev.Direction)
	fmt.Fprintf(&b, ":THRESHOLD: %.2f\n", ev.Threshold)
	fmt.Fprintf(&b, ":PRICE: %.2f\n", ev.Price)
	fmt.Fprintf(&b, ":TRIGGERED_AT: %s\n", ev.TriggeredAt.UTC().Format(time.RFC3339))
	b.WriteString(":END:\n")
	b.WriteString("\n*** Notes\n- \n")
	return b.String()
}

// FormatEventsOrg renders multiple events separated by blank lines.
func FormatEventsOrg(events []alert.Event) string {
	var b strings.Builder
	for i, ev := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatEventOrg(ev))
	}
	return b.String()
}

// FormatRulesOrg renders rules as an Org table.
func FormatRulesOrg(rules []alert.Rule) string {
	var b strings.Builder
	b.WriteString("| id | ticker | direction | price | created_at |\n")
	b.WriteString("|----+--------+-----------+-------+------------|\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "| %d | %s | %s | %.2f | %s |\n",
			r.ID, r.Symbol, r.Direction, r.Threshold, r.CreatedAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}
