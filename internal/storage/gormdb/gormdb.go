package gormdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/logger"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	slowQueryThreshold    = 200 * time.Millisecond
)

var ErrNoTransaction = errors.New("no transaction found in ctx")

type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type Store struct {
	db *gorm.DB
	l  *logger.Logger
}

type gormWriter struct {
	l *logger.Logger
}

func (w gormWriter) Printf(format string, v ...any) {
	w.l.LogWarnf(format, v...)
}

func gormConfig(l *logger.Logger) *gorm.Config {
	//nolint:exhaustruct
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{l: l}, gormlogger.Config{ //nolint:exhaustruct
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// OpenPostgres connects through lib/pq and hands the pool to gorm.
func OpenPostgres(ctx context.Context, conf PostgresConfig, l *logger.Logger) (*Store, error) {
	sqlDB, err := sql.Open("postgres", conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	//nolint:exhaustruct
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(l))
	if err != nil {
		return nil, fmt.Errorf("open gorm over postgres: %w", err)
	}

	return &Store{db: db, l: l}, nil
}

// OpenSQLite opens a file database, or an in-memory one for ":memory:".
func OpenSQLite(path string, l *logger.Logger) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(l))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sqlite pool: %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return &Store{db: db, l: l}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&destinationRecord{},
		&tourRecord{},
		&bookingRecord{},
		&eventRecord{},
		&settingRecord{},
		&userRecord{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql pool: %w", err)
	}

	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql pool: %w", err)
	}

	return sqlDB.Close()
}

type txCtx struct{}

func (s *Store) BeginTransaction(ctx context.Context) (context.Context, error) {
	tx := s.conn(ctx).Begin()
	if tx.Error != nil {
		return ctx, fmt.Errorf("begin: %w", tx.Error)
	}

	return context.WithValue(ctx, txCtx{}, tx), nil
}

func txFromContext(ctx context.Context) (*gorm.DB, error) {
	tx, ok := ctx.Value(txCtx{}).(*gorm.DB)
	if !ok || tx == nil {
		return nil, ErrNoTransaction
	}

	return tx, nil
}

func (s *Store) CommitTransaction(ctx context.Context) error {
	tx, err := txFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.Commit().Error
}

func (s *Store) RollbackTransaction(ctx context.Context) error {
	tx, err := txFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.Rollback().Error
}

// conn returns the transaction carried by ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, err := txFromContext(ctx); err == nil {
		return tx
	}

	return s.db.WithContext(ctx)
}

// translate maps driver errors onto the apperr taxonomy.
func translate(err error, format string, v ...any) error {
	what := fmt.Sprintf(format, v...)

	var pqErr *pq.Error

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFoundf("%s", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflictf("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Conflictf("%s violates a reference", what)
	case errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation:
		return apperr.Conflictf("%s already exists", what)
	case errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation:
		return apperr.Conflictf("%s violates a reference", what)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return apperr.Conflictf("%s already exists", what)
	case strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return apperr.Conflictf("%s violates a reference", what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
