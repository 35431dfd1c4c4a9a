// Package events delivers order lifecycle events to Kafka.
package events

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/xenking/mealbox/internal/domain/order"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ order.Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes order events to a topic, keyed by order id so all
// events of one order land on the same partition.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher returns a publisher writing to topic on the given brokers.
// Delivery failures are reported to lg.
func NewKafkaPublisher(lg *zap.Logger, brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: newWriter(lg, brokers, topic)}
}

// newWriter builds an asynchronous writer: WriteMessages only enqueues, so a
// slow or unreachable broker never holds up an order request.
func newWriter(lg *zap.Logger, brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(msgs []kafka.Message, err error) {
			if err == nil {
				return
			}
			for _, m := range msgs {
				lg.Warn("Deliver order event",
					zap.String("topic", topic),
					zap.ByteString("order_id", m.Key),
					zap.Error(err),
				)
			}
		},
	}
}

// Publish enqueues e for delivery. Errors only report a closed or failing
// writer; broker failures surface through the writer's completion log.
func (p *KafkaPublisher) Publish(ctx context.Context, e order.Event) error {
	msg := kafka.Message{
		Key:   []byte(e.OrderID),
		Value: Encode(e),
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "write %s event", e.Type)
	}
	return nil
}

// Close flushes queued events and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

// Publish implements order.Publisher.
func (Nop) Publish(context.Context, order.Event) error { return nil }

// Encode renders e as the JSON event payload.
func Encode(e order.Event) []byte {
	var enc jx.Encoder
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("type", func(enc *jx.Encoder) { enc.Str(string(e.Type)) })
		enc.Field("orderId", func(enc *jx.Encoder) { enc.Str(e.OrderID) })
		enc.Field("customerId", func(enc *jx.Encoder) { enc.Str(e.CustomerID) })
		enc.Field("providerId", func(enc *jx.Encoder) { enc.Str(e.ProviderID) })
		enc.Field("status", func(enc *jx.Encoder) { enc.Str(string(e.Status)) })
		if e.PreviousStatus != "" {
			enc.Field("previousStatus", func(enc *jx.Encoder) { enc.Str(string(e.PreviousStatus)) })
		}
		enc.Field("at", func(enc *jx.Encoder) { enc.Str(e.At.UTC().Format(time.RFC3339Nano)) })
	})
	return enc.Bytes()
}
