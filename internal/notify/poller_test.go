package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/metrics"
	"github.com/avstrong/discovertours/internal/notify"
	"github.com/avstrong/discovertours/internal/storage/memory"
)

type sent struct {
	key   string
	value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	sent   []sent
	failOn string
}

func (p *fakePublisher) Publish(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if string(key) == p.failOn {
		return errors.New("broker unavailable")
	}

	p.sent = append(p.sent, sent{key: string(key), value: value})

	return nil
}

func (p *fakePublisher) messages() []sent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]sent{}, p.sent...)
}

func seedEvents(t *testing.T, db *memory.DB, bookingIDs ...string) {
	t.Helper()

	for i, id := range bookingIDs {
		//nolint:exhaustruct
		require.NoError(t, db.SaveEvent(context.Background(), &booking.Event{
			ID:        "e" + id,
			BookingID: id,
			Type:      booking.EventBookingCreated,
			Payload:   json.RawMessage(`{"bookingId":"` + id + `"}`),
			CreatedAt: time.Date(2025, 5, 20, 10, i, 0, 0, time.UTC),
		}))
	}
}

func newPoller(db *memory.DB, pub *fakePublisher, batch int) *notify.Poller {
	return notify.NewPoller(logger.New(io.Discard, "error"), db, pub, notify.Config{
		Producer:  "discovertours",
		Interval:  10 * time.Millisecond,
		BatchSize: batch,
	})
}

func TestProcessBatch(t *testing.T) {
	db := memory.New(memory.Config{L: logger.New(io.Discard, "error")})
	pub := &fakePublisher{} //nolint:exhaustruct

	seedEvents(t, db, "b1", "b2", "b3")

	before := testutil.ToFloat64(metrics.EventsPublished)

	n, err := newPoller(db, pub, 2).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, before+2, testutil.ToFloat64(metrics.EventsPublished), 0.001)

	msgs := pub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "b1", msgs[0].key)

	var m notify.Message
	require.NoError(t, json.Unmarshal(msgs[0].value, &m))
	assert.Equal(t, "eb1", m.ID)
	assert.Equal(t, string(booking.EventBookingCreated), m.Type)
	assert.Equal(t, "discovertours", m.Producer)
	assert.JSONEq(t, `{"bookingId":"b1"}`, string(m.Payload))

	n, err = newPoller(db, pub, 2).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = newPoller(db, pub, 2).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, pub.messages(), 3)
}

func TestProcessBatchKeepsFailedEvents(t *testing.T) {
	db := memory.New(memory.Config{L: logger.New(io.Discard, "error")})
	pub := &fakePublisher{failOn: "b2"} //nolint:exhaustruct

	seedEvents(t, db, "b1", "b2")

	n, err := newPoller(db, pub, 10).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := db.ListUnpublishedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "eb2", left[0].ID)
}

func TestRunStopsWithContext(t *testing.T) {
	db := memory.New(memory.Config{L: logger.New(io.Discard, "error")})
	pub := &fakePublisher{} //nolint:exhaustruct

	seedEvents(t, db, "b1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		newPoller(db, pub, 10).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(pub.messages()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
