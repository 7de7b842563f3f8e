package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/metrics"
)

const sendTimeout = 5 * time.Second

type publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type store interface {
	ListUnpublishedEvents(ctx context.Context, limit int) ([]*booking.Event, error)
	MarkEventsPublished(ctx context.Context, ids []string, at time.Time) error
}

// Message is the envelope written to the topic.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	BookingID  string          `json:"bookingId"`
	Producer   string          `json:"producer"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type Config struct {
	Producer  string
	Interval  time.Duration
	BatchSize int
}

type Poller struct {
	l     *logger.Logger
	store store
	pub   publisher
	conf  Config
	now   func() time.Time
}

func NewPoller(l *logger.Logger, store store, pub publisher, conf Config) *Poller {
	return &Poller{
		l:     l.With("component", "outbox-poller"),
		store: store,
		pub:   pub,
		conf:  conf,
		now:   time.Now,
	}
}

// Run polls until ctx is done. Batch failures are logged and retried next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.conf.Interval)
	defer ticker.Stop()

	p.l.LogInfo("Outbox poller started, interval %s", p.conf.Interval)

	for {
		select {
		case <-ctx.Done():
			p.l.LogInfo("Outbox poller stopped")

			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.l.LogErrorf("Could not process outbox batch: %v", err)
			}
		}
	}
}

// ProcessBatch publishes one batch and returns how many events went out.
// Events that fail stay unpublished.
func (p *Poller) ProcessBatch(ctx context.Context) (int, error) {
	events, err := p.store.ListUnpublishedEvents(ctx, p.conf.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list unpublished events: %w", err)
	}

	if len(events) == 0 {
		return 0, nil
	}

	published := make([]string, 0, len(events))

	for _, e := range events {
		value, err := json.Marshal(Message{
			ID:         e.ID,
			Type:       string(e.Type),
			BookingID:  e.BookingID,
			Producer:   p.conf.Producer,
			OccurredAt: e.CreatedAt,
			Payload:    e.Payload,
		})
		if err != nil {
			metrics.PublishErrors.Inc()
			p.l.LogErrorf("Could not marshal event %s: %v", e.ID, err)

			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = p.pub.Publish(sendCtx, []byte(e.BookingID), value)
		cancel()

		if err != nil {
			metrics.PublishErrors.Inc()
			p.l.LogWarnf("Could not publish event %s: %v", e.ID, err)

			continue
		}

		metrics.EventsPublished.Inc()

		published = append(published, e.ID)
	}

	if len(published) == 0 {
		return 0, nil
	}

	if err := p.store.MarkEventsPublished(ctx, published, p.now().UTC()); err != nil {
		return 0, fmt.Errorf("mark %d events published: %w", len(published), err)
	}

	p.l.LogDebugf("Published %d booking events", len(published))

	return len(published), nil
}
