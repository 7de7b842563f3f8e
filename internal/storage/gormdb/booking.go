package gormdb

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/booking"
)

func tourTitle(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title")
}

func (s *Store) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	var record bookingRecord
	if err := s.conn(ctx).Preload("Tour", tourTitle).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err, "booking %s", id)
	}

	return record.toDomain(), nil
}

func (s *Store) GetBookingByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error) {
	var record bookingRecord

	err := s.conn(ctx).Preload("Tour", tourTitle).Where("idempotency_key = ?", key).First(&record).Error
	if err != nil {
		return nil, translate(err, "booking with idempotency key %s", key)
	}

	return record.toDomain(), nil
}

func (s *Store) ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	q := s.conn(ctx).Preload("Tour", tourTitle).Order("created_at DESC, id DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var records []bookingRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, translate(err, "list bookings")
	}

	out := make([]*booking.Booking, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}

	return out, nil
}

func (s *Store) SaveBooking(ctx context.Context, b *booking.Booking) error {
	err := s.conn(ctx).Omit(clause.Associations).Create(bookingFromDomain(b)).Error

	return translate(err, "booking %s", b.ID)
}

// UpdateBookingStatus only touches rows still in from, so a concurrent
// transition surfaces as a conflict instead of being overwritten.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, from, to booking.Status, at time.Time) error {
	res := s.conn(ctx).
		Model(&bookingRecord{}). //nolint:exhaustruct
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": at})
	if res.Error != nil {
		return translate(res.Error, "booking %s", id)
	}

	if res.RowsAffected > 0 {
		return nil
	}

	if _, err := s.GetBooking(ctx, id); err != nil {
		return err
	}

	return apperr.Conflictf("booking %s is no longer %s", id, from)
}

func (s *Store) SaveEvent(ctx context.Context, event *booking.Event) error {
	//nolint:exhaustruct
	record := &eventRecord{
		ID:        event.ID,
		BookingID: event.BookingID,
		Type:      string(event.Type),
		Payload:   []byte(event.Payload),
		CreatedAt: event.CreatedAt,
	}

	return translate(s.conn(ctx).Create(record).Error, "event %s", event.ID)
}

func (s *Store) ListUnpublishedEvents(ctx context.Context, limit int) ([]*booking.Event, error) {
	var records []eventRecord

	err := s.conn(ctx).
		Where("published_at IS NULL").
		Order("created_at, id").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, translate(err, "list unpublished events")
	}

	out := make([]*booking.Event, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}

	return out, nil
}

func (s *Store) MarkEventsPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.conn(ctx).
		Model(&eventRecord{}). //nolint:exhaustruct
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", at).Error

	return translate(err, "mark %d events published", len(ids))
}
