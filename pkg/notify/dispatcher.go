package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultDeliveryTimeout = 5 * time.Second

var ErrClosed = errors.New("notifier is closed")

// Dispatcher delivers through next in the background so callers never wait on
// the broker. Each delivery gets its own deadline, detached from the caller's.
type Dispatcher struct {
	next    Notifier
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

func NewDispatcher(next Notifier, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	return &Dispatcher{
		next:    next,
		timeout: timeout,
		log:     log.With(zap.String("notifier", "dispatcher")),
	}
}

// Notify queues n and returns immediately. Only a closed dispatcher reports an error.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.inFlight.Add(1)
	d.mu.Unlock()

	go d.deliver(context.WithoutCancel(ctx), n)
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	defer d.inFlight.Done()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.next.Notify(ctx, n); err != nil {
		d.log.Warn("Failed to deliver notification",
			zap.Error(err),
			zap.String("id", n.ID.String()),
			zap.String("type", n.Type),
			zap.String("audience", n.Audience),
			zap.String("booking_id", n.BookingID.String()),
		)
	}
}

// Flush blocks until every queued delivery has finished or timed out.
func (d *Dispatcher) Flush() {
	d.inFlight.Wait()
}

// Close stops accepting notifications, drains pending ones and closes next.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.inFlight.Wait()
	return d.next.Close()
}
