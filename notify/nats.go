package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/stockwatch/alert"
	"github.com/rustyeddy/stockwatch/internal/id"
	"github.com/rustyeddy/stockwatch/internal/metrics"
)

// Publisher is the part of *nats.Conn the NATS sink uses.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATS publishes each event as JSON on <subject>.<SYMBOL>. The message id
// header is derived from the event id and time, so a JetStream stream with a
// duplicate window drops republished events.
type NATS struct {
	pub     Publisher
	subject string
	log     zerolog.Logger
}

func NewNATS(pub Publisher, subject string, log zerolog.Logger) *NATS {
	return &NATS{pub: pub, subject: subject, log: log}
}

// Connect dials url with unlimited reconnects and logs connection changes.
func Connect(url string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("stockwatch"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject an event is published on.
func (n *NATS) Subject(ev alert.Event) string {
	return n.subject + "." + ev.Symbol
}

// Message builds the NATS message for ev.
func (n *NATS) Message(ev alert.Event) (*nats.Msg, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	msg := nats.NewMsg(n.Subject(ev))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, id.Derive(ev.TriggeredAt, ev.ID))
	msg.Header.Set("Content-Type", "application/json")
	return msg, nil
}

// Notify implements alert.Notifier. Errors are logged and counted only.
func (n *NATS) Notify(ctx context.Context, ev alert.Event) {
	msg, err := n.Message(ev)
	if err == nil {
		err = n.pub.PublishMsg(msg)
	}
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("nats", "error").Inc()
		n.log.Warn().Err(err).Int64("event_id", ev.ID).Str("symbol", ev.Symbol).Msg("nats publish failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("nats", "ok").Inc()
}
