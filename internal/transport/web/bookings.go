package web

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/metrics"
)

const (
	multipartMemory = 1 << 20
	formOverhead    = 1 << 20
)

// parseBookingForm reads the multipart form the checkout page submits.
// The caller closes the returned receipt file, if any.
func (s *Server) parseBookingForm(w http.ResponseWriter, r *http.Request) (*booking.CreateInput, multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.conf.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			inputErr := apperr.NewInputError()

			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				inputErr.Add("receipt", "request body is too large")

				return nil, nil, inputErr
			}

			inputErr.Add("body", "malformed multipart form")

			return nil, nil, inputErr
		}

		if err := r.ParseForm(); err != nil {
			inputErr := apperr.NewInputError()
			inputErr.Add("body", "malformed form")

			return nil, nil, inputErr
		}
	}

	inputErr := apperr.NewInputError()

	//nolint:exhaustruct
	input := &booking.CreateInput{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Date:     r.FormValue("date"),
		TourID:   r.FormValue("tourId"),
	}

	guests, err := strconv.Atoi(strings.TrimSpace(r.FormValue("guests")))
	if err != nil {
		inputErr.Add("guests", "guests must be a whole number")
	}

	input.Guests = guests

	if raw := strings.TrimSpace(r.FormValue("totalPrice")); raw != "" {
		total, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			inputErr.Add("totalPrice", "totalPrice must be a number")
		}

		input.TotalPrice = &total
	}

	if err := inputErr.OrNil(); err != nil {
		return nil, nil, err
	}

	file, header, err := r.FormFile("receipt")

	switch {
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		return input, nil, nil
	case err != nil:
		inputErr.Add("receipt", "could not read receipt file")

		return nil, nil, inputErr
	}

	input.Receipt = &booking.Receipt{Filename: header.Filename, Body: file}

	return input, file, nil
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	input, file, err := s.parseBookingForm(w, r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if file != nil {
		defer file.Close()
	}

	ctx := r.Context()
	if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
		ctx = booking.NewContextWithIdempotencyKey(ctx, key)
	}

	out, err := s.bookings.CreateBooking(ctx, input)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	metrics.BookingsCreated.Inc()

	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	filter := booking.ListFilter{Status: booking.Status(strings.ToUpper(r.URL.Query().Get("status")))}

	out, err := s.bookings.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	out, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateBookingStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	out, err := s.bookings.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	metrics.BookingStatusChanges.WithLabelValues(string(out.Status)).Inc()

	s.writeJSON(w, http.StatusOK, out)
}
