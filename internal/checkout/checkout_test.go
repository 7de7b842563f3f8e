package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/checkout"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []*checkout.Submission
	fail    error
	release chan struct{}
}

func (f *fakeSubmitter) CreateBooking(ctx context.Context, s *checkout.Submission) (*booking.Booking, error) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	release, fail := f.release, f.fail
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fail != nil {
		return nil, fail
	}

	//nolint:exhaustruct
	return &booking.Booking{
		ID:         "b1",
		Reference:  "DT-000000001",
		FullName:   s.FullName,
		Email:      s.Email,
		Phone:      s.Phone,
		Date:       s.Date,
		Guests:     s.Guests,
		TourID:     s.TourID,
		TotalPrice: s.TotalPrice,
		Status:     booking.StatusPending,
	}, nil
}

func (f *fakeSubmitter) submissions() []*checkout.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*checkout.Submission{}, f.calls...)
}

func tour() *catalog.Tour {
	//nolint:exhaustruct
	return &catalog.Tour{ID: "1", Title: "Pyramids of Giza & Sphinx Tour", Price: 45}
}

func details() checkout.Details {
	return checkout.Details{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "+15551234567",
		Date:     "2025-06-01",
		Guests:   2,
	}
}

func receipt() checkout.Receipt {
	return checkout.Receipt{Filename: "receipt.png", Data: []byte("\x89PNG\r\n\x1a\n")}
}

func TestGuestsClampAtOne(t *testing.T) {
	f := checkout.New(tour())
	assert.Equal(t, 2, f.Guests())
	assert.InDelta(t, 90.0, f.TotalPrice(), 0.001)

	f.DecrementGuests()
	f.DecrementGuests()
	f.DecrementGuests()
	assert.Equal(t, 1, f.Guests())

	f.IncrementGuests()
	assert.Equal(t, 2, f.Guests())

	f.SetGuests(-4)
	assert.Equal(t, 1, f.Guests())

	f.SetGuests(40)
	assert.InDelta(t, 1800.0, f.TotalPrice(), 0.001)
}

func TestSubmitDetailsRequiresEveryField(t *testing.T) {
	f := checkout.New(tour())

	err := f.SubmitDetails(checkout.Details{Guests: 1}) //nolint:exhaustruct

	inputErr := apperr.IsInputError(err)
	require.NotNil(t, inputErr)

	for _, field := range []string{"fullName", "email", "phone", "date"} {
		assert.Contains(t, inputErr.Fields(), field)
	}

	assert.Equal(t, checkout.StepCollectingDetails, f.Step())
}

func TestStepOrder(t *testing.T) {
	f := checkout.New(tour())

	require.ErrorIs(t, f.AttachReceipt(receipt()), checkout.ErrWrongStep)
	require.ErrorIs(t, f.Back(), checkout.ErrWrongStep)

	_, err := f.Submit(context.Background(), &fakeSubmitter{}) //nolint:exhaustruct
	require.ErrorIs(t, err, checkout.ErrWrongStep)

	in := details()
	in.Guests = 0
	require.NoError(t, f.SubmitDetails(in))
	assert.Equal(t, checkout.StepAwaitingPayment, f.Step())
	assert.Equal(t, 1, f.Guests())

	require.NoError(t, f.Back())
	assert.Equal(t, checkout.StepCollectingDetails, f.Step())
}

func TestSubmit(t *testing.T) {
	f := checkout.New(tour())
	sub := &fakeSubmitter{} //nolint:exhaustruct

	require.NoError(t, f.SubmitDetails(details()))

	_, err := f.Submit(context.Background(), sub)
	require.ErrorIs(t, err, checkout.ErrReceiptRequired)

	require.NoError(t, f.AttachReceipt(receipt()))

	conf, err := f.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "DT-000000001", conf.Reference)
	assert.Equal(t, "Pyramids of Giza & Sphinx Tour", conf.TourTitle)
	assert.Equal(t, 2, conf.Guests)
	assert.InDelta(t, 90.0, conf.TotalPrice, 0.001)
	assert.Equal(t, checkout.StepConfirmed, f.Step())
	assert.Same(t, conf, f.Confirmation())

	calls := sub.submissions()
	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].TourID)
	assert.Equal(t, "receipt.png", calls[0].Receipt.Filename)
	assert.Equal(t, f.IdempotencyKey(), calls[0].IdempotencyKey)

	_, err = f.Submit(context.Background(), sub)
	require.ErrorIs(t, err, checkout.ErrWrongStep)
}

func TestFailedSubmitCanBeRetried(t *testing.T) {
	f := checkout.New(tour())
	sub := &fakeSubmitter{fail: errors.New("network down")} //nolint:exhaustruct

	require.NoError(t, f.SubmitDetails(details()))
	require.NoError(t, f.AttachReceipt(receipt()))

	_, err := f.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, checkout.StepAwaitingPayment, f.Step())

	sub.mu.Lock()
	sub.fail = nil
	sub.mu.Unlock()

	_, err = f.Submit(context.Background(), sub)
	require.NoError(t, err)

	calls := sub.submissions()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].IdempotencyKey, calls[1].IdempotencyKey)
}

func TestEditingDetailsAfterFailedSubmitChangesKey(t *testing.T) {
	f := checkout.New(tour())
	sub := &fakeSubmitter{fail: errors.New("network down")} //nolint:exhaustruct

	require.NoError(t, f.SubmitDetails(details()))
	require.NoError(t, f.AttachReceipt(receipt()))

	_, err := f.Submit(context.Background(), sub)
	require.Error(t, err)

	firstKey := f.IdempotencyKey()

	require.NoError(t, f.Back())
	require.NoError(t, f.SubmitDetails(details()))
	assert.Equal(t, firstKey, f.IdempotencyKey())

	require.NoError(t, f.Back())

	edited := details()
	edited.Guests = 5
	require.NoError(t, f.SubmitDetails(edited))
	assert.NotEqual(t, firstKey, f.IdempotencyKey())

	sub.mu.Lock()
	sub.fail = nil
	sub.mu.Unlock()

	_, err = f.Submit(context.Background(), sub)
	require.NoError(t, err)

	calls := sub.submissions()
	require.Len(t, calls, 2)
	assert.NotEqual(t, calls[0].IdempotencyKey, calls[1].IdempotencyKey)
	assert.Equal(t, 5, calls[1].Guests)
}

func TestSubmitBlocksWhileInFlight(t *testing.T) {
	f := checkout.New(tour())
	sub := &fakeSubmitter{release: make(chan struct{})} //nolint:exhaustruct

	require.NoError(t, f.SubmitDetails(details()))
	require.NoError(t, f.AttachReceipt(receipt()))

	done := make(chan error, 1)

	go func() {
		_, err := f.Submit(context.Background(), sub)
		done <- err
	}()

	require.Eventually(t, func() bool { return len(sub.submissions()) == 1 }, time.Second, time.Millisecond)

	_, err := f.Submit(context.Background(), sub)
	require.ErrorIs(t, err, checkout.ErrSubmissionInProgress)
	require.ErrorIs(t, f.Back(), checkout.ErrWrongStep)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Len(t, sub.submissions(), 1)
}
