package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/metrics"
)

const idempotencyKeyPrefix = "idempotency:"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func record(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func traceID(r *http.Request) string {
	sc := trace.SpanContextFromContext(r.Context())
	if sc.IsValid() {
		return sc.TraceID().String()
	}

	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}

	return uuid.NewString()
}

func (s *Server) loggerMiddleware() func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now().UTC()
			rec := record(w)
			id := traceID(r)

			rec.Header().Set("X-Request-ID", id)

			next.ServeHTTP(rec, r)

			s.l.LogInfo(
				"type: access, method: %s, url: %s, status: %d, proto: %s, userAgent: %s, traceID: %s, latency: %s",
				r.Method,
				r.URL.Path,
				rec.status,
				r.Proto,
				r.Header.Get("User-Agent"),
				id,
				time.Since(start),
			)
		})
	}
}

func (s *Server) recoverMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if re := recover(); re != nil {
					err, ok := re.(error)
					if !ok {
						err = fmt.Errorf("%v: %w", re, ErrPanic)
					}

					s.l.LogErrorf("type: panic, method: %s, url: %s, error: %v", r.Method, r.URL.Path, err)
					s.writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// metricsMiddleware labels by route pattern so ids do not explode cardinality.
func (s *Server) metricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}

			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// adminMiddleware requires a valid admin bearer token and puts its claims in ctx.
func (s *Server) adminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				s.l.LogDebugf("Rejected %s %s: %v", r.Method, r.URL.Path, errMissingAuth)
				s.writeMessage(w, http.StatusUnauthorized, "unauthorized")

				return
			}

			claims, err := s.auth.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				if !auth.IsInvalidToken(err) {
					s.writeError(w, r, err)

					return
				}

				s.l.LogDebugf("Rejected %s %s: %v", r.Method, r.URL.Path, err)
				s.writeMessage(w, http.StatusUnauthorized, "unauthorized")

				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// idempotencyMiddleware holds a short Redis lock per Idempotency-Key so two
// in-flight requests with the same key cannot both run. Replays after the
// first request finishes are answered by the booking store.
func (s *Server) idempotencyMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if s.redis == nil || key == "" {
				next.ServeHTTP(w, r)

				return
			}

			ctx := r.Context()
			lockKey := idempotencyKeyPrefix + key

			acquired, err := s.redis.SetNX(ctx, lockKey, "PROCESSING", s.conf.IdempotencyTTL).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				s.l.LogWarnf("Could not take idempotency lock %s, continuing without it: %v", key, err)
				next.ServeHTTP(w, r)

				return
			}

			if !acquired {
				s.writeMessage(w, http.StatusConflict, "a request with this Idempotency-Key is in progress")

				return
			}

			defer func() {
				if err := s.redis.Del(context.WithoutCancel(ctx), lockKey).Err(); err != nil {
					s.l.LogWarnf("Could not release idempotency lock %s: %v", key, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) applyMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, middleware := range middlewares {
		h = middleware(h)
	}

	return h
}
