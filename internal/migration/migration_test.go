package migration_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/idgen/uuidgen"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/migration"
	"github.com/avstrong/discovertours/internal/settings"
	"github.com/avstrong/discovertours/internal/storage/memory"
)

type managers struct {
	catalog  *catalog.Manager
	settings *settings.Manager
	auth     *auth.Manager
}

func newManagers() (*managers, *logger.Logger) {
	l := logger.New(io.Discard, "error")
	db := memory.New(memory.Config{L: l})
	ids := uuidgen.New()

	return &managers{
		catalog:  catalog.New(l, db, ids),
		settings: settings.New(l, db),
		auth:     auth.New(l, db, auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour, "discovertours"), ids),
	}, l
}

func (m *managers) deps() migration.Deps {
	return migration.Deps{Catalog: m.catalog, Settings: m.settings, Auth: m.auth}
}

func TestUpIsIdempotent(t *testing.T) {
	m, l := newManagers()
	ctx := context.Background()
	admin := migration.Admin{Username: "admin", Password: "s3cret-pass"}

	require.NoError(t, migration.Up(ctx, l, m.deps(), admin))

	_, err := m.settings.Upsert(ctx, map[string]string{settings.KeyHeroTitle: "Edited by admin"})
	require.NoError(t, err)

	require.NoError(t, migration.Up(ctx, l, m.deps(), admin))

	tours, err := m.catalog.ListTours(ctx, catalog.TourFilter{}) //nolint:exhaustruct
	require.NoError(t, err)
	assert.Len(t, tours, 8)

	for _, tour := range tours {
		assert.True(t, tour.Category.Valid(), tour.ID)
	}

	destinations, err := m.catalog.ListDestinations(ctx)
	require.NoError(t, err)
	assert.Len(t, destinations, 5)

	luxor, err := m.catalog.GetDestination(ctx, "luxor")
	require.NoError(t, err)
	assert.NotEmpty(t, luxor.Tours)

	values, err := m.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Edited by admin", values[settings.KeyHeroTitle], "seeding keeps edited settings")

	site, err := m.settings.Site(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, site.Testimonials)

	_, _, err = m.auth.Login(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
}

func TestUpWithoutAdminPassword(t *testing.T) {
	m, l := newManagers()
	ctx := context.Background()

	require.NoError(t, migration.Up(ctx, l, m.deps(), migration.Admin{Username: "admin"})) //nolint:exhaustruct

	_, _, err := m.auth.Login(ctx, "admin", "")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
