package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/catalog"
)

func (s *Store) ListTours(ctx context.Context, filter catalog.TourFilter) ([]*catalog.Tour, error) {
	q := s.conn(ctx).Order("created_at, id")
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}

	var records []tourRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, translate(err, "list tours")
	}

	out := make([]*catalog.Tour, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}

	return out, nil
}

func (s *Store) GetTour(ctx context.Context, id string) (*catalog.Tour, error) {
	var record tourRecord
	if err := s.conn(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err, "tour %s", id)
	}

	return record.toDomain(), nil
}

func (s *Store) CountBookingsForTour(ctx context.Context, tourID string) (int, error) {
	var n int64
	if err := s.conn(ctx).Model(&bookingRecord{}).Where("tour_id = ?", tourID).Count(&n).Error; err != nil {
		return 0, translate(err, "count bookings of tour %s", tourID)
	}

	return int(n), nil
}

func (s *Store) InsertTour(ctx context.Context, tour *catalog.Tour) error {
	return translate(s.conn(ctx).Create(tourFromDomain(tour)).Error, "tour %s", tour.ID)
}

func (s *Store) UpdateTour(ctx context.Context, tour *catalog.Tour) error {
	res := s.conn(ctx).
		Model(&tourRecord{}). //nolint:exhaustruct
		Where("id = ?", tour.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(tourFromDomain(tour))
	if res.Error != nil {
		return translate(res.Error, "tour %s", tour.ID)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFoundf("tour %s", tour.ID)
	}

	return nil
}

func (s *Store) DeleteTour(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&tourRecord{}) //nolint:exhaustruct
	if res.Error != nil {
		return translate(res.Error, "tour %s", id)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFoundf("tour %s", id)
	}

	return nil
}

func toursByCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at, id")
}

func (s *Store) ListDestinations(ctx context.Context) ([]*catalog.Destination, error) {
	var records []destinationRecord

	err := s.conn(ctx).
		Model(&destinationRecord{}). //nolint:exhaustruct
		Select("destinations.*, (SELECT COUNT(*) FROM tours WHERE tours.destination_id = destinations.id) AS tour_count").
		Order("name").
		Find(&records).Error
	if err != nil {
		return nil, translate(err, "list destinations")
	}

	out := make([]*catalog.Destination, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}

	return out, nil
}

// GetDestination matches the id first, then the slug.
func (s *Store) GetDestination(ctx context.Context, idOrSlug string) (*catalog.Destination, error) {
	var record destinationRecord

	err := s.conn(ctx).Preload("Tours", toursByCreation).Where("id = ?", idOrSlug).First(&record).Error
	if err == nil {
		return record.toDomain(), nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "destination %s", idOrSlug)
	}

	err = s.conn(ctx).Preload("Tours", toursByCreation).Where("slug = ?", idOrSlug).First(&record).Error
	if err != nil {
		return nil, translate(err, "destination %s", idOrSlug)
	}

	return record.toDomain(), nil
}

func (s *Store) DestinationSlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int64

	err := s.conn(ctx).Model(&destinationRecord{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&n).Error
	if err != nil {
		return false, translate(err, "destination slug %s", slug)
	}

	return n > 0, nil
}

func (s *Store) InsertDestination(ctx context.Context, destination *catalog.Destination) error {
	return translate(s.conn(ctx).Create(destinationFromDomain(destination)).Error, "destination %s", destination.Slug)
}

func (s *Store) UpdateDestination(ctx context.Context, destination *catalog.Destination) error {
	res := s.conn(ctx).
		Model(&destinationRecord{}). //nolint:exhaustruct
		Where("id = ?", destination.ID).
		Select("slug", "name", "description", "image", "header_image", "content", "updated_at").
		Updates(destinationFromDomain(destination))
	if res.Error != nil {
		return translate(res.Error, "destination %s", destination.Slug)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFoundf("destination %s", destination.ID)
	}

	return nil
}

// DeleteDestination detaches tours explicitly so sqlite without enforced
// foreign keys behaves like postgres.
func (s *Store) DeleteDestination(ctx context.Context, id string) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&tourRecord{}). //nolint:exhaustruct
			Where("destination_id = ?", id).
			Update("destination_id", nil).Error
		if err != nil {
			return translate(err, "detach tours of destination %s", id)
		}

		res := tx.Where("id = ?", id).Delete(&destinationRecord{}) //nolint:exhaustruct
		if res.Error != nil {
			return translate(res.Error, "destination %s", id)
		}

		if res.RowsAffected == 0 {
			return apperr.NotFoundf("destination %s", id)
		}

		return nil
	})
}
