package memory_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/storage"
	"github.com/avstrong/discovertours/internal/storage/memory"
)

func newDB() (*memory.DB, *logger.Logger) {
	l := logger.New(io.Discard, "error")

	return memory.New(memory.Config{L: l}), l
}

func TestSettingsBatchIsAtomic(t *testing.T) {
	db, l := newDB()
	ctx := context.Background()

	err := storage.WithinTransaction(ctx, db, l, "settings", func(ctx context.Context) error {
		if err := db.UpsertSetting(ctx, "heroTitle", "Discover Egypt"); err != nil {
			return err
		}

		return db.UpsertSetting(ctx, "", "boom")
	})
	require.ErrorIs(t, err, memory.ErrInvalidRecord)

	values, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestCommitAppliesQueuedWrites(t *testing.T) {
	db, l := newDB()
	ctx := context.Background()

	err := storage.WithinTransaction(ctx, db, l, "tour", func(ctx context.Context) error {
		//nolint:exhaustruct
		if err := db.InsertTour(ctx, &catalog.Tour{ID: "1", Title: "Pyramids"}); err != nil {
			return err
		}

		_, err := db.GetTour(ctx, "1")
		require.ErrorIs(t, err, apperr.ErrNotFound, "uncommitted writes stay invisible")

		return nil
	})
	require.NoError(t, err)

	got, err := db.GetTour(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Pyramids", got.Title)
}

func TestRollbackOnPanic(t *testing.T) {
	db, l := newDB()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = storage.WithinTransaction(ctx, db, l, "panic", func(ctx context.Context) error {
			_ = db.UpsertSetting(ctx, "heroTitle", "x")

			panic("boom")
		})
	})

	values, err := db.GetSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestCommitWithoutTransaction(t *testing.T) {
	db, _ := newDB()

	err := db.CommitTransaction(context.Background())
	assert.ErrorIs(t, err, memory.ErrTransactionIDNotFoundInCtx)
}

func TestUpdateBookingStatusIsConditional(t *testing.T) {
	db, _ := newDB()
	ctx := context.Background()

	//nolint:exhaustruct
	require.NoError(t, db.InsertTour(ctx, &catalog.Tour{ID: "1", Title: "Pyramids"}))

	//nolint:exhaustruct
	require.NoError(t, db.SaveBooking(ctx, &booking.Booking{ID: "b1", TourID: "1", Status: booking.StatusPending}))

	//nolint:exhaustruct
	err := db.SaveBooking(ctx, &booking.Booking{ID: "b2", TourID: "404", Status: booking.StatusPending})
	require.ErrorIs(t, err, memory.ErrInvalidRecord)

	now := time.Now()
	require.NoError(t, db.UpdateBookingStatus(ctx, "b1", booking.StatusPending, booking.StatusConfirmed, now))

	err = db.UpdateBookingStatus(ctx, "b1", booking.StatusPending, booking.StatusCancelled, now)
	require.ErrorIs(t, err, apperr.ErrConflict)

	err = db.UpdateBookingStatus(ctx, "missing", booking.StatusPending, booking.StatusCancelled, now)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEventsPublishOnce(t *testing.T) {
	db, _ := newDB()
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		//nolint:exhaustruct
		require.NoError(t, db.SaveEvent(ctx, &booking.Event{ID: id, BookingID: "b1", Type: booking.EventBookingCreated}))
	}

	batch, err := db.ListUnpublishedEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "e1", batch[0].ID)

	require.NoError(t, db.MarkEventsPublished(ctx, []string{"e1", "e2"}, time.Now()))

	batch, err = db.ListUnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "e3", batch[0].ID)
}
