package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/api/metrics"
	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// SentChecker suppresses repeat deliveries for the same (application,
// status) pair; backed by Redis in production.
type SentChecker interface {
	AlreadySent(ctx context.Context, applicationID, status string) (bool, error)
	MarkSent(ctx context.Context, applicationID, status string) error
}

// Dispatcher is the post-commit side of a status transition: it routes
// status-change events to a fixed set of workers using consistent hashing on
// the application id, so events for one application are delivered in order.
// Notification failures are logged and counted, never propagated.
type Dispatcher struct {
	workers  []chan domain.StatusChange
	notifier ports.StatusNotifier
	sent     SentChecker
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.StatusNotifier, sent SentChecker, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.StatusChange, numWorkers),
		notifier: notifier,
		sent:     sent,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.StatusChange, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish enqueues a status change for asynchronous delivery. Non-blocking
// up to channelBuffer capacity; the committing request never waits on SMTP.
func (d *Dispatcher) Publish(change domain.StatusChange) {
	d.workers[d.shardIndex(change.ApplicationID)] <- change
}

func (d *Dispatcher) shardIndex(applicationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(applicationID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.StatusChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, change)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, change domain.StatusChange) {
	if change.RecipientEmail == "" {
		return
	}
	status := string(change.NewStatus)

	if d.sent != nil {
		dup, err := d.sent.AlreadySent(ctx, change.ApplicationID, status)
		if err != nil {
			d.log.Warn().Err(err).Str("application_id", change.ApplicationID).Msg("notify dedup check failed, sending anyway")
		} else if dup {
			d.log.Debug().Str("application_id", change.ApplicationID).Str("status", status).Msg("duplicate notification skipped")
			return
		}
	}

	if err := d.notifier.NotifyStatusChange(ctx, change.RecipientEmail, change.JobTitle, change.NewStatus); err != nil {
		metrics.NotificationsFailedTotal.WithLabelValues(status).Inc()
		d.log.Warn().Err(err).
			Str("application_id", change.ApplicationID).
			Str("status", status).
			Int("worker_id", workerID).
			Msg("status notification failed")
		return
	}

	metrics.NotificationsSentTotal.WithLabelValues(status).Inc()
	if d.sent != nil {
		if err := d.sent.MarkSent(ctx, change.ApplicationID, status); err != nil {
			d.log.Warn().Err(err).Str("application_id", change.ApplicationID).Msg("failed to mark notification sent")
		}
	}
}
