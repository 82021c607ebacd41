package kafka

import (
	"context"
	"errors"
	kafkaconfig "reservations/pkg/kafka/config"
	"reservations/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_WritesKeyValueAndHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "booking-status-changed", time.Second)

	msg, err := NewMessage().
		WithKey("room-1").
		WithValue(map[string]string{"to": "confirmed"}).
		WithEventType("booking.status_changed").
		Build()
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, w.messages, 1)

	got := w.messages[0]
	assert.Equal(t, "room-1", string(got.Key))
	assert.JSONEq(t, `{"to":"confirmed"}`, string(got.Value))

	headers := map[string]string{}
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "booking.status_changed", headers[HeaderEventType])
	assert.NotEmpty(t, headers[HeaderEventID])
	assert.NotEmpty(t, headers[HeaderTimestamp])
}

func TestPublish_RejectsEmptyKeyAndValue(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, "t", 0)

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestPublish_AfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "t", 0)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}), ErrProducerClosed)
}

func TestPublish_MiddlewareOrderAndError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, "t", 0)

	var order []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	p.Use(LoggingMiddleware(logger.NewNop()))
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "inner")
		assert.Equal(t, "t", msg.Topic)
		return next(ctx, msg)
	})

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")})
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestBuild_ReportsEncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestWriterSettings(t *testing.T) {
	assert.Equal(t, kafka.RequireAll, requiredAcks(kafkaconfig.AcksAll))
	assert.Equal(t, kafka.RequireOne, requiredAcks(kafkaconfig.AcksLeader))
	assert.Equal(t, kafka.RequireNone, requiredAcks(kafkaconfig.AcksNone))

	assert.Equal(t, compress.Zstd, compression("zstd"))
	assert.Equal(t, compress.Snappy, compression("unknown"))
}

func TestNewProducer_RejectsIncompleteSettings(t *testing.T) {
	_, err := NewProducer(nil, "booking-status-changed", logger.NewNop())
	assert.Error(t, err)

	_, err = NewProducer(&kafkaconfig.Config{Brokers: []string{"localhost:9092"}}, "", logger.NewNop())
	assert.Error(t, err)
}
