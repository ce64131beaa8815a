package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// decodeRefresh parses a refresh event payload. A payload that fails here
// will fail on every redelivery, so callers terminate instead of Nak.
func decodeRefresh(data []byte) (*domain.RefreshEvent, error) {
	var ev domain.RefreshEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode refresh event: %w", err)
	}
	return &ev, nil
}

// decodeReading parses and validates a reading payload. Invalid kinds and
// negative loads are rejected here so they never reach the database path.
func decodeReading(data []byte) (*domain.SiteReading, error) {
	var r domain.SiteReading
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode reading: %w", err)
	}
	if r.Kind != domain.KindProduction && r.Kind != domain.KindConsumption {
		return nil, fmt.Errorf("unknown site kind %q", r.Kind)
	}
	if r.LoadMW < 0 {
		return nil, fmt.Errorf("negative load %.2f", r.LoadMW)
	}
	return &r, nil
}

// SubscribeRefresh delivers refresh events to every instance, so the
// subscription is ephemeral rather than durable. Handler failures are
// redelivered at most twice; poison payloads are terminated immediately.
func (s *Subscriber) SubscribeRefresh(ctx context.Context, handler func(ctx context.Context, ev *domain.RefreshEvent) error) error {
	sub, err := s.js.Subscribe("heat.sites.refresh", func(msg *nats.Msg) {
		ev, err := decodeRefresh(msg.Data)
		if err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.ManualAck(),
		nats.DeliverNew(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeReadings consumes the reading work queue with a durable consumer.
func (s *Subscriber) SubscribeReadings(ctx context.Context, handler func(ctx context.Context, r *domain.SiteReading) error) error {
	sub, err := s.js.Subscribe("heat.readings.>", func(msg *nats.Msg) {
		r, err := decodeReading(msg.Data)
		if err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, r); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("reading-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
