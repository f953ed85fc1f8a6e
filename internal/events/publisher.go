package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
)

// Publisher delivers checkout events to whatever is listening.
type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
	Close() error
}

// Kafka publishes envelopes to a single topic, keyed by correlation id so
// events of one checkout land on one partition in order.
type Kafka struct {
	w *kafka.Writer
}

// NewKafka creates a Kafka publisher for the given brokers and topic.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (k *Kafka) Publish(ctx context.Context, e Envelope) error {
	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	if err := k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.CorrelationID),
		Value: value,
		Time:  e.OccurredAt,
	}); err != nil {
		return errors.Wrapf(err, "publish %s", e.EventType)
	}
	return nil
}

func (k *Kafka) Close() error { return k.w.Close() }

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Envelope) error { return nil }
func (Noop) Close() error                            { return nil }
