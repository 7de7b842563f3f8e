package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/config"
	"github.com/avstrong/discovertours/internal/logger"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	l := logger.New(io.Discard, "error")

	t.Run("memory", func(t *testing.T) {
		conf := &config.Config{} //nolint:exhaustruct
		conf.Storage.Driver = config.DriverMemory

		s, p, closeFn, err := openStorage(ctx, conf, l)
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Nil(t, p)
		require.NoError(t, closeFn())
	})

	t.Run("sqlite", func(t *testing.T) {
		conf := &config.Config{} //nolint:exhaustruct
		conf.Storage.Driver = config.DriverSQLite
		conf.SQLite.Path = filepath.Join(t.TempDir(), "tours.db")

		s, p, closeFn, err := openStorage(ctx, conf, l)
		require.NoError(t, err)
		require.NotNil(t, p)
		require.NoError(t, p.Ping(ctx))

		values, err := s.GetSettings(ctx)
		require.NoError(t, err)
		assert.Empty(t, values)

		require.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		conf := &config.Config{} //nolint:exhaustruct
		conf.Storage.Driver = "mongo"

		_, _, _, err := openStorage(ctx, conf, l)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}
