package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Storage  Storage  `yaml:"storage"`
	Postgres Postgres `yaml:"postgres"`
	SQLite   SQLite   `yaml:"sqlite"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Auth     Auth     `yaml:"auth"`
	Uploads  Uploads  `yaml:"uploads"`
}

type App struct {
	Name string `yaml:"name" env:"APP_NAME" env-default:"discovertours-api"`
	Seed bool   `yaml:"seed" env:"APP_SEED" env-default:"true"`
}

type HTTP struct {
	Host              string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `yaml:"port" env:"PORT" env-default:"3000"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"20s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	AllowedOrigins    []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000,http://localhost:5173"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type Postgres struct {
	DSN          string `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS" env-default:"2"`
}

type SQLite struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"discovertours.db"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Kafka struct {
	Brokers      []string      `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic        string        `yaml:"topic" env:"KAFKA_TOPIC" env-default:"booking-events"`
	PollInterval time.Duration `yaml:"poll_interval" env:"KAFKA_POLL_INTERVAL" env-default:"2s"`
	BatchSize    int           `yaml:"batch_size" env:"KAFKA_BATCH_SIZE" env-default:"20"`
}

type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"24h"`
	AdminUsername string        `yaml:"admin_username" env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

type Uploads struct {
	Dir      string `yaml:"dir" env:"UPLOADS_DIR" env-default:"uploads"`
	URLPath  string `yaml:"url_path" env:"UPLOADS_URL_PATH" env-default:"/uploads/"`
	MaxBytes int64  `yaml:"max_bytes" env:"UPLOADS_MAX_BYTES" env-default:"10485760"`
}

var ErrInvalidConfig = errors.New("invalid config")

// New loads .env (if present), then config.yaml with env overrides, falling
// back to env only when the file is missing.
func New(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver: %w", ErrInvalidConfig)
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q: %w", c.Storage.Driver, ErrInvalidConfig)
	}

	if len(c.Auth.JWTSecret) < 32 { //nolint:gomnd
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes: %w", ErrInvalidConfig)
	}

	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("uploads max bytes must be positive: %w", ErrInvalidConfig)
	}

	if len(c.Kafka.Brokers) > 0 {
		if c.Kafka.PollInterval <= 0 {
			return fmt.Errorf("kafka poll interval must be positive: %w", ErrInvalidConfig)
		}

		if c.Kafka.BatchSize <= 0 {
			return fmt.Errorf("kafka batch size must be positive: %w", ErrInvalidConfig)
		}
	}

	return nil
}
