package app

import (
	"context"
	"fmt"
	"time"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/config"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/storage"
	"github.com/avstrong/discovertours/internal/storage/gormdb"
	"github.com/avstrong/discovertours/internal/storage/memory"
)

// Storage is the union of what the managers and the outbox poller need.
// Both memory.DB and gormdb.Store satisfy it.
type Storage interface {
	storage.Transactor

	ListTours(ctx context.Context, filter catalog.TourFilter) ([]*catalog.Tour, error)
	GetTour(ctx context.Context, id string) (*catalog.Tour, error)
	CountBookingsForTour(ctx context.Context, tourID string) (int, error)
	InsertTour(ctx context.Context, tour *catalog.Tour) error
	UpdateTour(ctx context.Context, tour *catalog.Tour) error
	DeleteTour(ctx context.Context, id string) error

	ListDestinations(ctx context.Context) ([]*catalog.Destination, error)
	GetDestination(ctx context.Context, idOrSlug string) (*catalog.Destination, error)
	DestinationSlugTaken(ctx context.Context, slug, exceptID string) (bool, error)
	InsertDestination(ctx context.Context, destination *catalog.Destination) error
	UpdateDestination(ctx context.Context, destination *catalog.Destination) error
	DeleteDestination(ctx context.Context, id string) error

	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetBookingByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error)
	ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error)
	SaveBooking(ctx context.Context, b *booking.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, from, to booking.Status, at time.Time) error
	SaveEvent(ctx context.Context, event *booking.Event) error
	ListUnpublishedEvents(ctx context.Context, limit int) ([]*booking.Event, error)
	MarkEventsPublished(ctx context.Context, ids []string, at time.Time) error

	GetSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error

	GetUser(ctx context.Context, id string) (*auth.User, error)
	GetUserByUsername(ctx context.Context, username string) (*auth.User, error)
	InsertUser(ctx context.Context, u *auth.User) error
	UpdateUser(ctx context.Context, u *auth.User) error
}

var (
	_ Storage = (*memory.DB)(nil)
	_ Storage = (*gormdb.Store)(nil)
)

type pinger interface {
	Ping(ctx context.Context) error
}

// openStorage returns the configured backend, a health pinger (nil for
// memory) and a close func.
func openStorage(ctx context.Context, conf *config.Config, l *logger.Logger) (Storage, pinger, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Driver {
	case config.DriverMemory:
		return memory.New(memory.Config{L: l}), nil, noop, nil
	case config.DriverSQLite:
		db, err := gormdb.OpenSQLite(conf.SQLite.Path, l)
		if err != nil {
			return nil, nil, noop, err
		}

		if err := db.Migrate(ctx); err != nil {
			return nil, nil, noop, fmt.Errorf("migrate sqlite: %w", err)
		}

		return db, db, db.Close, nil
	case config.DriverPostgres:
		db, err := gormdb.OpenPostgres(ctx, gormdb.PostgresConfig{
			DSN:          conf.Postgres.DSN,
			MaxOpenConns: conf.Postgres.MaxOpenConns,
			MaxIdleConns: conf.Postgres.MaxIdleConns,
		}, l)
		if err != nil {
			return nil, nil, noop, err
		}

		if err := db.Migrate(ctx); err != nil {
			return nil, nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}

		return db, db, db.Close, nil
	default:
		return nil, nil, noop, fmt.Errorf("storage driver %q: %w", conf.Storage.Driver, config.ErrInvalidConfig)
	}
}
