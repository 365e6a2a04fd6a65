// Package nats puts cellar domain events on a JetStream stream so
// out-of-process consumers can follow cellar activity durably.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "CELLAR_EVENTS"
	subjectPrefix = "events."

	connectTimeout = 5 * time.Second
	eventRetention = 7 * 24 * time.Hour
)

// envelope is the wire format for one event. The type and timestamp
// travel in-band so consumers never have to reverse them out of the
// subject or the arrival time.
type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventHandler processes one consumed event. A non-nil error nacks the
// message for redelivery.
type EventHandler func(ctx context.Context, event events.Event) error

// Bus publishes and consumes cellar events over one NATS connection.
type Bus struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	log logger.ILogger
}

// NewBus connects and ensures the cellar event stream exists. A missing
// stream is tolerated at startup; publishing will surface the failure.
func NewBus(url string, log logger.ILogger) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("wine-cellar-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	b := &Bus{nc: nc, js: js, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    eventRetention,
	})
	if err != nil {
		b.warn("stream not ensured", err)
	}
	return b, nil
}

// Publish writes one event to the stream under its typed subject.
func (b *Bus) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}

	subject := subjectPrefix + event.EventType()
	if _, err := b.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe attaches a durable consumer to the subject filter and feeds
// each decoded event to the handler. Undecodable messages are dropped
// with a nack; handler failures nack for redelivery.
func (b *Bus) Subscribe(subject, durableName string, handler EventHandler) error {
	consumer, err := b.js.CreateOrUpdateConsumer(context.Background(), streamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("consumer %s: %w", durableName, err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		event, err := decodeEvent(msg.Subject(), msg.Data())
		if err != nil {
			b.warn("undecodable event", err)
			msg.Nak()
			return
		}
		if err := handler(context.Background(), event); err != nil {
			b.warn("event handler failed", err)
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", durableName, err)
	}
	return nil
}

// decodeEvent rebuilds an event from the wire. Envelopes published by
// older writers without a type fall back to the subject suffix.
func decodeEvent(subject string, raw []byte) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		env.Type = strings.TrimPrefix(subject, subjectPrefix)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}
	return events.BaseEvent{
		Type:       env.Type,
		Data:       env.Data,
		OccurredAt: env.OccurredAt,
	}, nil
}

func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

func (b *Bus) warn(msg string, err error) {
	if b.log != nil {
		b.log.Warn("EventBus", msg, map[string]interface{}{"error": err.Error()})
	}
}
