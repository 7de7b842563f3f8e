package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/receipt"
	"github.com/avstrong/discovertours/internal/settings"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	srv      *http.Server
	router   *http.ServeMux
	handler  http.Handler
	l        *logger.Logger
	conf     Conf
	catalog  *catalog.Manager
	bookings *booking.Manager
	settings *settings.Manager
	auth     *auth.Manager
	receipts *receipt.Store
	redis    *redis.Client
	db       pinger
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	AllowedOrigins    []string
	MaxUploadBytes    int64
	IdempotencyTTL    time.Duration
}

// Deps are the managers the routes delegate to. Redis and DB are optional.
type Deps struct {
	Catalog  *catalog.Manager
	Bookings *booking.Manager
	Settings *settings.Manager
	Auth     *auth.Manager
	Receipts *receipt.Store
	Redis    *redis.Client
	DB       pinger
}

func New(ctx context.Context, conf Conf, deps Deps) (*Server, error) {
	mux := http.NewServeMux()

	//nolint:exhaustruct
	c := cors.New(cors.Options{
		AllowedOrigins:   conf.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	//nolint:exhaustruct
	srv := &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           handler,
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	server := &Server{
		srv:      srv,
		router:   mux,
		handler:  handler,
		l:        conf.L,
		conf:     conf,
		catalog:  deps.Catalog,
		bookings: deps.Bookings,
		settings: deps.Settings,
		auth:     deps.Auth,
		receipts: deps.Receipts,
		redis:    deps.Redis,
		db:       deps.DB,
	}

	server.addRoutes(mux)

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler is the full chain including CORS, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}
