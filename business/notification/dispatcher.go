package notification

import (
	"context"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"misikaMarket/pkg/metrics"
	"sync"
	"time"
)

// EmailSender contract interface
type EmailSender interface {
	SendEmail(ctx context.Context, msg domain.EmailMessage) error
}

type Config struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	BaseBackoff time.Duration
	SendTimeout time.Duration
}

// Dispatcher delivers emails on background workers. Delivery failures are
// retried with exponential backoff, then logged and dropped; they never reach
// the caller.
type Dispatcher struct {
	sender EmailSender
	cfg    Config
	queue  chan domain.Notification

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	stop   chan struct{}
}

func NewDispatcher(sender EmailSender, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		sender: sender,
		cfg:    cfg,
		queue:  make(chan domain.Notification, cfg.QueueSize),
		stop:   make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Enqueue schedules n for delivery without blocking. A full or closed queue
// drops the notification.
func (d *Dispatcher) Enqueue(n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.Warn("notification dropped after shutdown", "kind", n.Kind)
		metrics.NotificationsTotal.WithLabelValues(n.Kind, "dropped").Inc()
		return
	}

	select {
	case d.queue <- n:
		metrics.NotificationQueueDepth.Inc()
	default:
		logger.Warn("notification queue full, dropping", "kind", n.Kind, "to", n.Message.ToEmail)
		metrics.NotificationsTotal.WithLabelValues(n.Kind, "dropped").Inc()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for n := range d.queue {
		metrics.NotificationQueueDepth.Dec()
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	backoff := d.cfg.BaseBackoff

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		err := d.sender.SendEmail(ctx, n.Message)
		cancel()

		if err == nil {
			metrics.NotificationsTotal.WithLabelValues(n.Kind, "sent").Inc()
			return
		}

		logger.Warn("notification delivery failed", "kind", n.Kind, "attempt", attempt, "error", err)

		if attempt == d.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(backoff):
		case <-d.stop:
			// shutting down: one last try is all we get
			attempt = d.cfg.MaxAttempts - 1
		}
		backoff *= 2
	}

	logger.Error("notification abandoned", "kind", n.Kind, "to", n.Message.ToEmail)
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "failed").Inc()
}

// Close stops accepting work and waits for queued notifications until ctx
// is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		close(d.stop)
		return ctx.Err()
	}
}
