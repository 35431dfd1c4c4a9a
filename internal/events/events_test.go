package events

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/mealbox/internal/domain/order"
)

// --- Mock implementations ---

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func testEvent() order.Event {
	return order.Event{
		Type:           order.EventStatusChanged,
		OrderID:        "9f1c",
		CustomerID:     "cust-1",
		ProviderID:     "prov-1",
		Status:         order.StatusDelivered,
		PreviousStatus: order.StatusInProgress,
		At:             time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
	}
}

func decodeFields(t *testing.T, data []byte) map[string]string {
	t.Helper()
	fields := map[string]string{}
	err := jx.DecodeBytes(data).ObjBytes(func(d *jx.Decoder, key []byte) error {
		v, err := d.Str()
		fields[string(key)] = v
		return err
	})
	require.NoError(t, err)
	return fields
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := &KafkaPublisher{w: w}

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "9f1c", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.status_changed", string(msg.Headers[0].Value))

	fields := decodeFields(t, msg.Value)
	assert.Equal(t, map[string]string{
		"type":           "order.status_changed",
		"orderId":        "9f1c",
		"customerId":     "cust-1",
		"providerId":     "prov-1",
		"status":         "delivered",
		"previousStatus": "in progress",
		"at":             "2024-01-03T12:00:00Z",
	}, fields)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{w: &mockWriter{err: errors.New("leader not available")}}

	err := p.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.status_changed")
}

func TestEncode_OmitsEmptyPreviousStatus(t *testing.T) {
	e := testEvent()
	e.Type = order.EventPlaced
	e.PreviousStatus = ""

	fields := decodeFields(t, Encode(e))
	assert.NotContains(t, fields, "previousStatus")
	assert.Equal(t, "order.placed", fields["type"])
}

func TestNop(t *testing.T) {
	require.NoError(t, Nop{}.Publish(context.Background(), testEvent()))
}

func TestNewWriter_DoesNotBlockOnBroker(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := newWriter(zap.New(core), []string{"localhost:9092"}, "mealbox.orders")

	assert.True(t, w.Async)
	assert.Equal(t, "mealbox.orders", w.Topic)
	require.NotNil(t, w.Completion)

	w.Completion([]kafka.Message{{Key: []byte("9f1c")}}, nil)
	assert.Zero(t, logs.Len())

	w.Completion([]kafka.Message{{Key: []byte("9f1c")}, {Key: []byte("a2b3")}}, errors.New("broker down"))
	entries := logs.FilterMessage("Deliver order event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "9f1c", entries[0].ContextMap()["order_id"])
}
