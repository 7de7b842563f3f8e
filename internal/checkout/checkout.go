// Package checkout models the two-step booking flow a customer walks through
// before a booking exists on the server.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
)

const defaultGuests = 2

type Step int

const (
	StepCollectingDetails Step = iota
	StepAwaitingPayment
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepCollectingDetails:
		return "collecting-details"
	case StepAwaitingPayment:
		return "awaiting-payment"
	case StepConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrWrongStep            = errors.New("action is not allowed at this step")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrReceiptRequired      = errors.New("payment receipt is required")
)

type Details struct {
	FullName string
	Email    string
	Phone    string
	Date     string
	Guests   int
}

type Receipt struct {
	Filename string
	Data     []byte
}

// Submission is what goes over the wire when the customer confirms.
type Submission struct {
	FullName       string
	Email          string
	Phone          string
	Date           string
	Guests         int
	TourID         string
	TotalPrice     float64
	Receipt        Receipt
	IdempotencyKey string
}

type Confirmation struct {
	BookingID  string
	Reference  string
	TourTitle  string
	Date       string
	Guests     int
	FullName   string
	Email      string
	Phone      string
	TotalPrice float64
	Status     booking.Status
}

type Submitter interface {
	CreateBooking(ctx context.Context, s *Submission) (*booking.Booking, error)
}

type Flow struct {
	mu sync.Mutex

	tour           *catalog.Tour
	step           Step
	details        Details
	receipt        *Receipt
	processing     bool
	attempted      bool
	idempotencyKey string
	confirmation   *Confirmation
}

func New(tour *catalog.Tour) *Flow {
	//nolint:exhaustruct
	return &Flow{
		tour:           tour,
		step:           StepCollectingDetails,
		details:        Details{Guests: defaultGuests},
		idempotencyKey: uuid.NewString(),
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.step
}

func (f *Flow) Guests() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.details.Guests
}

// SetGuests clamps n to at least one guest. There is no upper bound.
func (f *Flow) SetGuests(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.details.Guests = max(n, 1)
}

func (f *Flow) IncrementGuests() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.details.Guests++
}

func (f *Flow) DecrementGuests() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.details.Guests = max(f.details.Guests-1, 1)
}

func (f *Flow) TotalPrice() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return booking.TotalFor(f.tour.Price, f.details.Guests)
}

// IdempotencyKey stays the same across retries. It changes only when the
// details are edited after a submission attempt.
func (f *Flow) IdempotencyKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.idempotencyKey
}

func (d *Details) validate() error {
	inputErr := apperr.NewInputError()

	if strings.TrimSpace(d.FullName) == "" {
		inputErr.Add("fullName", "provide full name")
	}

	if strings.TrimSpace(d.Email) == "" {
		inputErr.Add("email", "provide email")
	}

	if strings.TrimSpace(d.Phone) == "" {
		inputErr.Add("phone", "provide phone number")
	}

	if strings.TrimSpace(d.Date) == "" {
		inputErr.Add("date", "provide travel date")
	}

	return inputErr.OrNil()
}

// SubmitDetails stores the contact details and moves on to payment.
func (f *Flow) SubmitDetails(d Details) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepCollectingDetails {
		return fmt.Errorf("submit details at %s: %w", f.step, ErrWrongStep)
	}

	if err := d.validate(); err != nil {
		return err
	}

	d.Guests = max(d.Guests, 1)

	if f.attempted && d != f.details {
		f.idempotencyKey = uuid.NewString()
		f.attempted = false
	}

	f.details = d
	f.step = StepAwaitingPayment

	return nil
}

func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepAwaitingPayment || f.processing {
		return fmt.Errorf("back at %s: %w", f.step, ErrWrongStep)
	}

	f.step = StepCollectingDetails

	return nil
}

// AttachReceipt replaces any previously attached receipt.
func (f *Flow) AttachReceipt(r Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepAwaitingPayment {
		return fmt.Errorf("attach receipt at %s: %w", f.step, ErrWrongStep)
	}

	f.receipt = &r

	return nil
}

func (f *Flow) begin() (*Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepAwaitingPayment {
		return nil, fmt.Errorf("submit at %s: %w", f.step, ErrWrongStep)
	}

	if f.processing {
		return nil, ErrSubmissionInProgress
	}

	if f.receipt == nil || len(f.receipt.Data) == 0 {
		return nil, ErrReceiptRequired
	}

	f.processing = true
	f.attempted = true

	return &Submission{
		FullName:       f.details.FullName,
		Email:          f.details.Email,
		Phone:          f.details.Phone,
		Date:           f.details.Date,
		Guests:         f.details.Guests,
		TourID:         f.tour.ID,
		TotalPrice:     booking.TotalFor(f.tour.Price, f.details.Guests),
		Receipt:        *f.receipt,
		IdempotencyKey: f.idempotencyKey,
	}, nil
}

// Submit sends the booking. On failure the flow stays at the payment step
// and can be resubmitted with the same idempotency key.
func (f *Flow) Submit(ctx context.Context, submitter Submitter) (*Confirmation, error) {
	sub, err := f.begin()
	if err != nil {
		return nil, err
	}

	b, err := submitter.CreateBooking(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.processing = false

	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	f.confirmation = &Confirmation{
		BookingID:  b.ID,
		Reference:  b.Reference,
		TourTitle:  f.tour.Title,
		Date:       b.Date,
		Guests:     b.Guests,
		FullName:   b.FullName,
		Email:      b.Email,
		Phone:      b.Phone,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
	}
	f.step = StepConfirmed

	return f.confirmation, nil
}

func (f *Flow) Confirmation() *Confirmation {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.confirmation
}
