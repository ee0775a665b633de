package journal

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockwatch/alert"
)

var testEvent = alert.Event{
	ID:          12,
	RuleID:      3,
	Symbol:      "BTC",
	Direction:   alert.Above,
	Threshold:   110000,
	Price:       111000.5,
	TriggeredAt: time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC),
}

func TestWriteEventsCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteEventsCSV(&buf, []alert.Event{testEvent}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, eventHeader, records[0])
	assert.Equal(t, []string{"12", "3", "BTC", "above", "110000.00", "111000.50", "2024-03-04T14:30:00Z"}, records[1])
}

func TestFormatEventOrg(t *testing.T) {
	t.Parallel()

	out := FormatEventOrg(testEvent)
	assert.Contains(t, out, "** Alert: BTC above 110000.00 (event 12)\n")
	assert.Contains(t, out, ":RULE_ID: 3\n")
	assert.Contains(t, out, ":PRICE: 111000.50\n")
	assert.Contains(t, out, ":TRIGGERED_AT: 2024-03-04T14:30:00Z\n")
	assert.Contains(t, out, "*** Notes")

	two := FormatEventsOrg([]alert.Event{testEvent, testEvent})
	assert.Equal(t, 2, bytes.Count([]byte(two), []byte(":PROPERTIES:")))
}

func TestFormatRulesOrg(t *testing.T) {
	t.Parallel()

	out := FormatRulesOrg([]alert.Rule{{ID: 1, Symbol: "AAPL", Direction: alert.Below, Threshold: 180, CreatedAt: testEvent.TriggeredAt}})
	assert.Contains(t, out, "| 1 | AAPL | below | 180.00 | 2024-03-04T14:30:00Z |")
}
