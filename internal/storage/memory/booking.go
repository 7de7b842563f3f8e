package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/booking"
)

func (db *DB) copyBooking(b *booking.Booking) *booking.Booking {
	out := *b

	if b.ReceiptImage != nil {
		p := *b.ReceiptImage
		out.ReceiptImage = &p
	}

	out.Tour = nil
	if row, ok := db.tours[b.TourID]; ok {
		out.Tour = &booking.TourSummary{Title: row.tour.Title}
	}

	return &out
}

func (db *DB) GetBooking(_ context.Context, id string) (*booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings[id]
	if !ok {
		return nil, apperr.NotFoundf("booking %s", id)
	}

	return db.copyBooking(b), nil
}

func (db *DB) GetBookingByIdempotencyKey(_ context.Context, key string) (*booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id, ok := db.idempotency[key]
	if !ok {
		return nil, apperr.NotFoundf("booking with idempotency key %s", key)
	}

	return db.copyBooking(db.bookings[id]), nil
}

func (db *DB) ListBookings(_ context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]*booking.Booking, 0, len(db.bookings))

	for _, b := range db.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}

		out = append(out, db.copyBooking(b))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (db *DB) SaveBooking(ctx context.Context, b *booking.Booking) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.bookings[b.ID]; ok {
		return apperr.Conflictf("booking %s already exists", b.ID)
	}

	if _, ok := db.tours[b.TourID]; !ok {
		return fmt.Errorf("booking references tour %s: %w", b.TourID, ErrInvalidRecord)
	}

	if b.IdempotencyKey != "" {
		if _, ok := db.idempotency[b.IdempotencyKey]; ok {
			return apperr.Conflictf("idempotency key %s already used", b.IdempotencyKey)
		}
	}

	stored := db.copyBooking(b)
	stored.Tour = nil

	return db.apply(ctx, func() {
		db.bookings[stored.ID] = stored
		if stored.IdempotencyKey != "" {
			db.idempotency[stored.IdempotencyKey] = stored.ID
		}
	})
}

// UpdateBookingStatus fails with a conflict when the booking is no longer in from.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, from, to booking.Status, at time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	b, ok := db.bookings[id]
	if !ok {
		return apperr.NotFoundf("booking %s", id)
	}

	if b.Status != from {
		return apperr.Conflictf("booking %s is %s, not %s", id, b.Status, from)
	}

	return db.apply(ctx, func() {
		b.Status = to
		b.UpdatedAt = at
	})
}

func (db *DB) SaveEvent(ctx context.Context, event *booking.Event) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	e := *event
	e.Payload = append([]byte{}, event.Payload...)

	return db.apply(ctx, func() {
		db.events = append(db.events, &e)
	})
}

// ListUnpublishedEvents returns up to limit events in creation order.
func (db *DB) ListUnpublishedEvents(_ context.Context, limit int) ([]*booking.Event, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []*booking.Event

	for _, e := range db.events {
		if e.PublishedAt != nil {
			continue
		}

		c := *e
		out = append(out, &c)

		if len(out) == limit {
			break
		}
	}

	return out, nil
}

func (db *DB) MarkEventsPublished(_ context.Context, ids []string, at time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	for _, e := range db.events {
		if _, ok := wanted[e.ID]; ok && e.PublishedAt == nil {
			t := at
			e.PublishedAt = &t
		}
	}

	return nil
}
