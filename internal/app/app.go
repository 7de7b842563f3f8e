package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/config"
	"github.com/avstrong/discovertours/internal/idgen/uuidgen"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/migration"
	"github.com/avstrong/discovertours/internal/notify"
	"github.com/avstrong/discovertours/internal/receipt"
	"github.com/avstrong/discovertours/internal/settings"
	"github.com/avstrong/discovertours/internal/transport/web"
)

const (
	livenessEndpoint = "/health"
	idempotencyTTL   = 30 * time.Second
)

//nolint:funlen,cyclop // wiring
func Run(conf *config.Config, l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	st, db, closeStorage, err := openStorage(ctx, conf, l)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", conf.Storage.Driver, err)
	}

	defer func() {
		if err := closeStorage(); err != nil {
			l.LogErrorf("Failed to close storage: %v", err.Error())
		}
	}()

	receipts, err := receipt.New(receipt.Config{
		Dir:      conf.Uploads.Dir,
		URLPath:  conf.Uploads.URLPath,
		MaxBytes: conf.Uploads.MaxBytes,
	})
	if err != nil {
		return fmt.Errorf("init receipt store: %w", err)
	}

	idGen := uuidgen.New()
	tokens := auth.NewTokenIssuer(conf.Auth.JWTSecret, conf.Auth.TokenTTL, conf.App.Name)

	catalogManager := catalog.New(l, st, idGen)
	bookingManager := booking.New(l, st, idGen, receipts)
	settingsManager := settings.New(l, st)
	authManager := auth.New(l, st, tokens, idGen)

	if conf.App.Seed {
		err := migration.Up(ctx, l, migration.Deps{
			Catalog:  catalogManager,
			Settings: settingsManager,
			Auth:     authManager,
		}, migration.Admin{
			Username: conf.Auth.AdminUsername,
			Password: conf.Auth.AdminPassword,
		})
		if err != nil {
			return fmt.Errorf("up seed migration: %w", err)
		}

		l.LogInfo("Seed migration has been applied")
	}

	var redisClient *redis.Client

	if conf.Redis.Addr != "" {
		//nolint:exhaustruct
		redisClient = redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})

		defer func() {
			if err := redisClient.Close(); err != nil {
				l.LogErrorf("Failed to close redis client: %v", err.Error())
			}
		}()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			l.LogWarnf("Redis at %s is not reachable, idempotency locks will be skipped until it is: %v", conf.Redis.Addr, err)
		}
	}

	if len(conf.Kafka.Brokers) > 0 {
		publisher := notify.NewKafkaPublisher(notify.KafkaConfig{
			Brokers: conf.Kafka.Brokers,
			Topic:   conf.Kafka.Topic,
		})

		defer func() {
			if err := publisher.Close(); err != nil {
				l.LogErrorf("Failed to close kafka publisher: %v", err.Error())
			}
		}()

		poller := notify.NewPoller(l, st, publisher, notify.Config{
			Producer:  conf.App.Name,
			Interval:  conf.Kafka.PollInterval,
			BatchSize: conf.Kafka.BatchSize,
		})

		go poller.Run(ctx)
	} else {
		l.LogInfo("Kafka brokers are not configured, booking events stay in the outbox")
	}

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      l.StdLogger(),
		Host:              conf.HTTP.Host,
		Port:              conf.HTTP.Port,
		ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
		LivenessEndpoint:  livenessEndpoint,
		AllowedOrigins:    conf.HTTP.AllowedOrigins,
		MaxUploadBytes:    conf.Uploads.MaxBytes,
		IdempotencyTTL:    idempotencyTTL,
	}

	srv, err := web.New(ctx, webConf, web.Deps{
		Catalog:  catalogManager,
		Bookings: bookingManager,
		Settings: settingsManager,
		Auth:     authManager,
		Receipts: receipts,
		Redis:    redisClient,
		DB:       db,
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v with %s storage...", webConf.Host, webConf.Port, conf.Storage.Driver)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		cancel()

		return fmt.Errorf("run http server: %w", err)
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}
