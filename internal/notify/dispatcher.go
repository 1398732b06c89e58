package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one event to its recipients over one channel
type Sender interface {
	Name() string
	Send(ctx context.Context, e Event, to []Recipient) error
}

// Dispatcher queues events and delivers them in the background.
// Notify never blocks the caller; failed deliveries are only logged.
type Dispatcher struct {
	senders []Sender
	admins  []Recipient
	queue   chan Event
	workers int
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher; call Start before Notify
func NewDispatcher(logger *zap.Logger, queueSize, workers int, admins []Recipient, senders ...Sender) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		senders: senders,
		admins:  admins,
		queue:   make(chan Event, queueSize),
		workers: workers,
		timeout: 15 * time.Second,
		logger:  logger,
	}
}

// Start launches the delivery workers
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting notification dispatcher",
		zap.Int("workers", d.workers),
		zap.Int("senders", len(d.senders)))

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for e := range d.queue {
				d.deliver(ctx, e)
			}
		}()
	}
}

// Notify enqueues e. When the queue is full the event is dropped.
func (d *Dispatcher) Notify(_ context.Context, e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notification dropped: dispatcher closed",
			zap.String("event_id", e.ID.String()),
			zap.String("type", string(e.Type)))
		return
	}

	select {
	case d.queue <- e:
	default:
		d.logger.Warn("Notification dropped: queue full",
			zap.String("event_id", e.ID.String()),
			zap.String("type", string(e.Type)))
	}
}

// Close stops accepting events and waits for queued ones to be delivered
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) deliver(ctx context.Context, e Event) {
	to := Recipients(e, d.admins)

	for _, s := range d.senders {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		err := s.Send(sendCtx, e, to)
		cancel()

		if err != nil {
			d.logger.Error("Failed to deliver notification",
				zap.String("sender", s.Name()),
				zap.String("event_id", e.ID.String()),
				zap.String("type", string(e.Type)),
				zap.Error(err))
			continue
		}

		d.logger.Debug("Notification delivered",
			zap.String("sender", s.Name()),
			zap.String("event_id", e.ID.String()),
			zap.String("type", string(e.Type)),
			zap.Int("recipients", len(to)))
	}
}
