package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/stockwatch/alert"
)

var eventHeader = []string{"id", "rule_id", "ticker", "direction", "threshold", "price", "triggered_at"}

// WriteEventsCSV writes events with a header row.
func WriteEventsCSV(w io.Writer, events []alert.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, ev := range events {
		err := cw.Write([]string{
			strconv.FormatInt(ev.ID, 10),
			strconv.FormatInt(ev.RuleID, 10),
			ev.Symbol,
			string(ev.Direction),
			f(ev.Threshold),
			f(ev.Price),
			ev.TriggeredAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
