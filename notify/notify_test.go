package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/internal/id"
)

var testEvent = alert.Event{
	ID:          9,
	RuleID:      4,
	Symbol:      "AAPL",
	Direction:   alert.Above,
	Threshold:   190,
	Price:       190.25,
	TriggeredAt: time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC),
}

func TestFanout(t *testing.T) {
	t.Parallel()

	var got []string
	f := Fanout{
		Func(func(ctx context.Context, ev alert.Event) { got = append(got, "a") }),
		nil,
		Func(func(ctx context.Context, ev alert.Event) { got = append(got, "b") }),
	}
	f.Notify(context.Background(), testEvent)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestHubBroadcast(t *testing.T) {
	t.Parallel()

	h := NewHub(1, zerolog.Nop())
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelB()
	assert.Equal(t, 2, h.Subscribers())

	h.Notify(context.Background(), testEvent)
	assert.Equal(t, testEvent, <-a)
	assert.Equal(t, testEvent, <-b)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Subscribers())
}

func TestHubDropsWhenFull(t *testing.T) {
	t.Parallel()

	h := NewHub(1, zerolog.Nop())
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Notify(context.Background(), testEvent)
	second := testEvent
	second.ID = 10
	h.Notify(context.Background(), second)

	assert.Equal(t, int64(9), (<-ch).ID)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %d", ev.ID)
	default:
	}
}

func TestHubCloseThenCancel(t *testing.T) {
	t.Parallel()

	h := NewHub(0, zerolog.Nop())
	ch, cancel := h.Subscribe()
	h.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, cancel)
	assert.Zero(t, h.Subscribers())
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*nats.Msg
	err  error
}

func (p *fakePublisher) PublishMsg(m *nats.Msg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, m)
	return nil
}

func TestNATSMessageShape(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := NewNATS(pub, "stockwatch.alerts", zerolog.Nop())
	n.Notify(context.Background(), testEvent)

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "stockwatch.alerts.AAPL", msg.Subject)
	assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))

	ts, err := id.Time(msg.Header.Get(nats.MsgIdHdr))
	require.NoError(t, err)
	assert.Equal(t, testEvent.TriggeredAt, ts)

	// publishing the same event again carries the same id
	n.Notify(context.Background(), testEvent)
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, msg.Header.Get(nats.MsgIdHdr), pub.msgs[1].Header.Get(nats.MsgIdHdr))

	other := testEvent
	other.ID++
	m2, err := n.Message(other)
	require.NoError(t, err)
	assert.NotEqual(t, msg.Header.Get(nats.MsgIdHdr), m2.Header.Get(nats.MsgIdHdr))

	var ev alert.Event
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, testEvent, ev)
}

func TestNATSPublishErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	n := NewNATS(pub, "stockwatch.alerts", zerolog.Nop())
	assert.NotPanics(t, func() { n.Notify(context.Background(), testEvent) })
	assert.Empty(t, pub.msgs)
}
