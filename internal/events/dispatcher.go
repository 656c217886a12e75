package events

import (
	"context"
	"time"

	"spendwise/internal/logger"
	"spendwise/internal/services"
)

// DefaultBuffer is the number of pending changes a Dispatcher holds before
// it starts dropping them.
const DefaultBuffer = 256

// Dispatcher forwards service changes and digests to a Publisher.
// Changes are queued so request handlers never wait on the broker.
type Dispatcher struct {
	publisher Publisher
	queue     chan services.Change
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher with room for buffer pending changes.
func NewDispatcher(publisher Publisher, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan services.Change, buffer),
		now:       time.Now,
	}
}

// OnChange queues a change for publishing. A full queue drops the change.
func (d *Dispatcher) OnChange(c services.Change) {
	select {
	case d.queue <- c:
	default:
		logger.Get().Warnw("Event queue full, dropping change",
			"user_id", c.UserID, "resource", c.Resource, "action", c.Action)
	}
}

// Run publishes queued changes until ctx is done. Changes still queued at
// that point are flushed before Run returns.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case c := <-d.queue:
			d.publishChange(ctx, c)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	flushCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	for {
		select {
		case c := <-d.queue:
			d.publishChange(flushCtx, c)
		default:
			return
		}
	}
}

func (d *Dispatcher) publishChange(ctx context.Context, c services.Change) {
	msg := NewChangeMessage(c)
	body, err := msg.ToJSON()
	if err != nil {
		logger.Get().Errorw("Failed to encode change", "error", err)
		return
	}
	if err := d.publisher.Publish(ctx, msg.RoutingKey(), body); err != nil {
		logger.Get().Errorw("Failed to publish change",
			"routing_key", msg.RoutingKey(), "user_id", c.UserID, "error", err)
	}
}

// PublishDigest publishes a monthly digest synchronously.
func (d *Dispatcher) PublishDigest(ctx context.Context, digest *services.DigestResult) error {
	body, err := NewDigestMessage(digest, d.now()).ToJSON()
	if err != nil {
		return err
	}
	return d.publisher.Publish(ctx, RoutingKeyMonthlyDigest, body)
}
