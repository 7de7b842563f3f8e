package memory

import (
	"context"
	"fmt"
	"maps"
	"strings"
)

func (db *DB) GetSettings(_ context.Context) (map[string]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return maps.Clone(db.settings), nil
}

func (db *DB) UpsertSetting(ctx context.Context, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty setting key: %w", ErrInvalidRecord)
	}

	return db.apply(ctx, func() {
		db.settings[key] = value
	})
}
