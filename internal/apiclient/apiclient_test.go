package apiclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/apiclient"
	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/checkout"
	"github.com/avstrong/discovertours/internal/idgen/uuidgen"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/receipt"
	"github.com/avstrong/discovertours/internal/settings"
	"github.com/avstrong/discovertours/internal/storage/memory"
	"github.com/avstrong/discovertours/internal/transport/web"
)

const adminPassword = "s3cret-pass"

func newAPI(t *testing.T) *apiclient.Client {
	t.Helper()

	ctx := context.Background()
	l := logger.New(io.Discard, "error")
	db := memory.New(memory.Config{L: l})
	ids := uuidgen.New()

	receipts, err := receipt.New(receipt.Config{Dir: t.TempDir(), URLPath: "/uploads/", MaxBytes: 1 << 20})
	require.NoError(t, err)

	catalogManager := catalog.New(l, db, ids)
	authManager := auth.New(l, db, auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour, "discovertours"), ids)

	//nolint:exhaustruct
	_, err = catalogManager.CreateTour(ctx, &catalog.TourInput{
		ID:       "1",
		Title:    "Pyramids of Giza & Sphinx Tour",
		Price:    45,
		Category: catalog.CategoryDayTours,
	})
	require.NoError(t, err)

	_, err = authManager.EnsureAdmin(ctx, "admin", adminPassword)
	require.NoError(t, err)

	//nolint:exhaustruct
	srv, err := web.New(ctx, web.Conf{
		L:                l,
		LivenessEndpoint: "/health",
		MaxUploadBytes:   1 << 20,
		IdempotencyTTL:   time.Minute,
	}, web.Deps{
		Catalog: catalogManager,
		Bookings: booking.New(l, db, ids, receipts, booking.WithClock(func() time.Time {
			return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
		})),
		Settings: settings.New(l, db),
		Auth:     authManager,
		Receipts: receipts,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return apiclient.New(ts.URL, ts.Client())
}

func TestCheckoutToConfirmation(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	tour, err := api.GetTour(ctx, "1")
	require.NoError(t, err)

	flow := checkout.New(tour)
	require.NoError(t, flow.SubmitDetails(checkout.Details{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "+15551234567",
		Date:     "2025-06-01",
		Guests:   2,
	}))
	assert.Equal(t, checkout.StepAwaitingPayment, flow.Step())

	require.NoError(t, flow.AttachReceipt(checkout.Receipt{
		Filename: "receipt.png",
		Data:     []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
	}))

	conf, err := flow.Submit(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, conf.Status)
	assert.InDelta(t, tour.Price*2, conf.TotalPrice, 0.001)
	assert.True(t, strings.HasPrefix(conf.Reference, "DT-"))

	_, err = api.ListBookings(ctx, "")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = api.Login(ctx, "admin", adminPassword)
	require.NoError(t, err)

	b, err := api.GetBooking(ctx, conf.BookingID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.InDelta(t, 90.0, b.TotalPrice, 0.001)
	require.NotNil(t, b.ReceiptImage)
	assert.True(t, strings.HasPrefix(*b.ReceiptImage, "/uploads/"))

	_, err = api.UpdateBookingStatus(ctx, b.ID, booking.StatusConfirmed)
	require.NoError(t, err)

	b, err = api.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, b.Status)

	confirmed, err := api.ListBookings(ctx, booking.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	require.NotNil(t, confirmed[0].Tour)
	assert.Equal(t, tour.Title, confirmed[0].Tour.Title)
}

func TestResubmitWithSameKeyCreatesOneBooking(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	sub := &checkout.Submission{
		FullName:       "Jane Doe",
		Email:          "jane@x.com",
		Phone:          "+15551234567",
		Date:           "2025-06-01",
		Guests:         2,
		TourID:         "1",
		TotalPrice:     90,
		Receipt:        checkout.Receipt{Filename: "receipt.png", Data: []byte("\x89PNG\r\n\x1a\n")},
		IdempotencyKey: "flow-1",
	}

	first, err := api.CreateBooking(ctx, sub)
	require.NoError(t, err)

	second, err := api.CreateBooking(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = api.Login(ctx, "admin", adminPassword)
	require.NoError(t, err)

	all, err := api.ListBookings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestErrorsMapToTaxonomy(t *testing.T) {
	api := newAPI(t)
	ctx := context.Background()

	_, err := api.GetTour(ctx, "404")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	//nolint:exhaustruct
	_, err = api.CreateBooking(ctx, &checkout.Submission{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "+15551234567",
		Date:     "2025-06-01",
		Guests:   2,
		TourID:   "404",
	})

	inputErr := apperr.IsInputError(err)
	require.NotNil(t, inputErr)
	assert.Contains(t, inputErr.Fields(), "tourId")

	_, err = api.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}
