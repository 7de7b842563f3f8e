package gormdb

import (
	"context"

	"gorm.io/gorm/clause"
)

func (s *Store) GetSettings(ctx context.Context) (map[string]string, error) {
	var records []settingRecord
	if err := s.conn(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&records).Error; err != nil {
		return nil, translate(err, "list settings")
	}

	out := make(map[string]string, len(records))
	for _, r := range records {
		out[r.Key] = r.Value
	}

	return out, nil
}

func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	//nolint:exhaustruct
	err := s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&settingRecord{Key: key, Value: value}).Error

	return translate(err, "setting %s", key)
}
