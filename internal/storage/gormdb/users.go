package gormdb

import (
	"context"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/auth"
)

func (s *Store) GetUser(ctx context.Context, id string) (*auth.User, error) {
	var record userRecord
	if err := s.conn(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err, "user %s", id)
	}

	return record.toDomain(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	var record userRecord
	if err := s.conn(ctx).Where("username = ?", username).First(&record).Error; err != nil {
		return nil, translate(err, "user %s", username)
	}

	return record.toDomain(), nil
}

func (s *Store) InsertUser(ctx context.Context, u *auth.User) error {
	return translate(s.conn(ctx).Create(userFromDomain(u)).Error, "user %s", u.Username)
}

func (s *Store) UpdateUser(ctx context.Context, u *auth.User) error {
	res := s.conn(ctx).
		Model(&userRecord{}). //nolint:exhaustruct
		Where("id = ?", u.ID).
		Select("username", "password_hash", "updated_at").
		Updates(userFromDomain(u))
	if res.Error != nil {
		return translate(res.Error, "user %s", u.Username)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFoundf("user %s", u.ID)
	}

	return nil
}
