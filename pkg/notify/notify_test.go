package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
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

func sampleNotification() Notification {
	return Notification{
		ID:          uuid.New(),
		Type:        TypeBookingStatusChanged,
		Audience:    AudienceCustomer,
		RecipientID: uuid.New(),
		BookingID:   uuid.New(),
		Status:      "CONFIRMED",
		OccurredAt:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestKafkaNotifierKeysByBooking(t *testing.T) {
	writer := &fakeWriter{}
	notifier := newKafkaNotifier(writer, "booking.notifications", zap.NewNop())
	n := sampleNotification()

	require.NoError(t, notifier.Notify(context.Background(), n))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, n.BookingID.String(), string(msg.Key))

	var decoded Notification
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, n.ID, decoded.ID)
	assert.Equal(t, n.Type, decoded.Type)

	require.NoError(t, notifier.Close())
	assert.True(t, writer.closed)
}

func TestKafkaNotifierReturnsWriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	notifier := newKafkaNotifier(writer, "booking.notifications", zap.NewNop())

	err := notifier.Notify(context.Background(), sampleNotification())
	assert.ErrorContains(t, err, "broker down")
}

func TestLogNotifierWritesEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLogNotifier(zap.New(core))
	n := sampleNotification()

	require.NoError(t, notifier.Notify(context.Background(), n))
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, n.BookingID.String(), fields["booking_id"])
	assert.Equal(t, TypeBookingStatusChanged, fields["type"])
}

type blockingNotifier struct {
	release  chan struct{}
	sawErr   chan error
	closed   bool
	delivery int
}

func (b *blockingNotifier) Notify(ctx context.Context, _ Notification) error {
	select {
	case <-b.release:
		b.delivery++
		return nil
	case <-ctx.Done():
		b.sawErr <- ctx.Err()
		return ctx.Err()
	}
}

func (b *blockingNotifier) Close() error {
	b.closed = true
	return nil
}

func TestDispatcherReturnsBeforeDelivery(t *testing.T) {
	next := &blockingNotifier{release: make(chan struct{}), sawErr: make(chan error, 1)}
	d := NewDispatcher(next, time.Minute, zap.NewNop())

	require.NoError(t, d.Notify(context.Background(), sampleNotification()))
	assert.Zero(t, next.delivery)

	close(next.release)
	d.Flush()
	assert.Equal(t, 1, next.delivery)
}

func TestDispatcherBoundsDeliveryIndependentlyOfCaller(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	next := &blockingNotifier{release: make(chan struct{}), sawErr: make(chan error, 1)}
	d := NewDispatcher(next, 50*time.Millisecond, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Notify(ctx, sampleNotification()))
	cancel()

	select {
	case err := <-next.sawErr:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("delivery was never bounded")
	}

	d.Flush()
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to deliver notification", logs.All()[0].Message)
}

func TestDispatcherCloseDrainsAndRejects(t *testing.T) {
	writer := &fakeWriter{}
	d := NewDispatcher(newKafkaNotifier(writer, "booking.notifications", zap.NewNop()), time.Second, zap.NewNop())

	require.NoError(t, d.Notify(context.Background(), sampleNotification()))
	require.NoError(t, d.Close())
	assert.Len(t, writer.messages, 1)
	assert.True(t, writer.closed)

	assert.ErrorIs(t, d.Notify(context.Background(), sampleNotification()), ErrClosed)
}
