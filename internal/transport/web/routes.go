package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/avstrong/discovertours/internal/metrics"
)

const maxJSONBody = 1 << 20

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.l.LogErrorf("Health check failed: %v", err)
			s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Timestamp: time.Now().UTC()})

			return
		}
	}

	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// route wraps h with the common chain. Extra middlewares run innermost.
func (s *Server) route(pattern string, h http.HandlerFunc, extra ...func(http.Handler) http.Handler) {
	middlewares := append(extra, s.metricsMiddleware(), s.loggerMiddleware(), s.recoverMiddleware())
	s.router.Handle(pattern, s.applyMiddlewares(h, middlewares...))
}

func (s *Server) addRoutes(r *http.ServeMux) {
	admin := s.adminMiddleware()

	s.route("GET /api/tours", s.listToursHandler)
	s.route("GET /api/tours/{id}", s.getTourHandler)
	s.route("POST /api/tours", s.createTourHandler, admin)
	s.route("PUT /api/tours/{id}", s.updateTourHandler, admin)
	s.route("DELETE /api/tours/{id}", s.deleteTourHandler, admin)

	s.route("GET /api/destinations", s.listDestinationsHandler)
	s.route("GET /api/destinations/{idOrSlug}", s.getDestinationHandler)
	s.route("POST /api/destinations", s.createDestinationHandler, admin)
	s.route("PUT /api/destinations/{id}", s.updateDestinationHandler, admin)
	s.route("DELETE /api/destinations/{id}", s.deleteDestinationHandler, admin)

	s.route("POST /api/bookings", s.createBookingHandler, s.idempotencyMiddleware())
	s.route("GET /api/bookings", s.listBookingsHandler, admin)
	s.route("GET /api/bookings/{id}", s.getBookingHandler, admin)
	s.route("PATCH /api/bookings/{id}", s.updateBookingStatusHandler, admin)

	s.route("POST /api/auth/login", s.loginHandler)
	s.route("PUT /api/auth/update", s.updateProfileHandler, admin)

	s.route("GET /api/settings", s.getSettingsHandler)
	s.route("GET /api/settings/site", s.getSiteHandler)
	s.route("POST /api/settings", s.upsertSettingsHandler, admin)

	s.route(fmt.Sprintf("GET %s", s.conf.LivenessEndpoint), s.livenessHandler)

	r.Handle("GET /metrics", metrics.Handler())

	if s.receipts != nil {
		r.Handle("GET "+s.receipts.URLPath(), s.applyMiddlewares(s.receipts.Handler(), s.loggerMiddleware(), s.recoverMiddleware()))
	}
}
