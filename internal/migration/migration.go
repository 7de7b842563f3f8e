package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/logger"
)

type catalogManager interface {
	GetTour(ctx context.Context, id string) (*catalog.Tour, error)
	CreateTour(ctx context.Context, input *catalog.TourInput) (*catalog.Tour, error)
	GetDestination(ctx context.Context, idOrSlug string) (*catalog.Destination, error)
	CreateDestination(ctx context.Context, input *catalog.DestinationInput) (*catalog.Destination, error)
}

type settingsManager interface {
	Get(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]string) (map[string]string, error)
}

type authManager interface {
	EnsureAdmin(ctx context.Context, username, password string) (*auth.User, error)
}

type Deps struct {
	Catalog  catalogManager
	Settings settingsManager
	Auth     authManager
}

type Admin struct {
	Username string
	Password string
}

// Up seeds the catalog, default site settings and the admin account. Rows
// that already exist are left alone, so Up is safe on every start.
func Up(ctx context.Context, l *logger.Logger, deps Deps, admin Admin) error {
	for i := range destinations {
		d := destinations[i]

		_, err := deps.Catalog.GetDestination(ctx, d.Slug)
		if err == nil {
			continue
		}

		if !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("get destination %s: %w", d.Slug, err)
		}

		if _, err := deps.Catalog.CreateDestination(ctx, &d); err != nil {
			return fmt.Errorf("seed destination %s: %w", d.Slug, err)
		}

		l.LogInfo("Seeded destination %s", d.Slug)
	}

	for i := range tours {
		t := tours[i]

		_, err := deps.Catalog.GetTour(ctx, t.ID)
		if err == nil {
			continue
		}

		if !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("get tour %s: %w", t.ID, err)
		}

		if _, err := deps.Catalog.CreateTour(ctx, &t); err != nil {
			return fmt.Errorf("seed tour %s: %w", t.ID, err)
		}

		l.LogInfo("Seeded tour %s", t.ID)
	}

	if err := seedSettings(ctx, deps.Settings); err != nil {
		return err
	}

	if admin.Password == "" {
		l.LogWarnf("Admin password is not configured, skipping admin seed")

		return nil
	}

	if _, err := deps.Auth.EnsureAdmin(ctx, admin.Username, admin.Password); err != nil {
		return fmt.Errorf("seed admin %s: %w", admin.Username, err)
	}

	return nil
}

func seedSettings(ctx context.Context, m settingsManager) error {
	current, err := m.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	missing := make(map[string]string)

	for k, v := range settings {
		if _, ok := current[k]; !ok {
			missing[k] = v
		}
	}

	if len(missing) == 0 {
		return nil
	}

	if _, err := m.Upsert(ctx, missing); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	return nil
}
