package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/catalog"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/storage"
)

// priceTolerance is half a cent.
const priceTolerance = 0.005

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
	GetReference(ctx context.Context) (string, error)
}

type receiptStore interface {
	Save(ctx context.Context, filename string, body io.Reader) (string, error)
	Remove(ctx context.Context, servedPath string) error
}

type storageReader interface {
	GetTour(ctx context.Context, id string) (*catalog.Tour, error)
	GetBooking(ctx context.Context, id string) (*Booking, error)
	GetBookingByIdempotencyKey(ctx context.Context, key string) (*Booking, error)
	ListBookings(ctx context.Context, filter ListFilter) ([]*Booking, error)
}

type storageWriter interface {
	storage.Transactor
	SaveBooking(ctx context.Context, booking *Booking) error
	UpdateBookingStatus(ctx context.Context, id string, from, to Status, at time.Time) error
	SaveEvent(ctx context.Context, event *Event) error
}

type store interface {
	storageReader
	storageWriter
}

type Manager struct {
	l           *logger.Logger
	storage     store
	idGenerator idGenerator
	receipts    receiptStore
	now         func() time.Time
}

type Option func(m *Manager)

// WithClock overrides time.Now, used to pin "today" for date validation.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func New(l *logger.Logger, storage store, idGenerator idGenerator, receipts receiptStore, opts ...Option) *Manager {
	m := &Manager{
		l:           l,
		storage:     storage,
		idGenerator: idGenerator,
		receipts:    receipts,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) validate(input *CreateInput) error {
	inputErr := apperr.NewInputError()

	if strings.TrimSpace(input.FullName) == "" {
		inputErr.Add("fullName", "provide full name")
	}

	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != strings.TrimSpace(input.Email) {
		inputErr.Add("email", "provide valid email")
	}

	if !phonePattern.MatchString(strings.TrimSpace(input.Phone)) {
		inputErr.Add("phone", "provide valid phone number")
	}

	date, err := time.Parse(DateLayout, input.Date)
	if err != nil {
		inputErr.Add("date", "date must be formatted as YYYY-MM-DD")
	} else if date.Before(m.now().UTC().Truncate(24 * time.Hour)) { //nolint:gomnd
		inputErr.Add("date", "date must not be in the past")
	}

	if input.Guests < 1 {
		inputErr.Add("guests", "at least one guest is required")
	}

	if strings.TrimSpace(input.TourID) == "" {
		inputErr.Add("tourId", "provide tourId")
	}

	if input.TotalPrice != nil && (math.IsNaN(*input.TotalPrice) || *input.TotalPrice < 0) {
		inputErr.Add("totalPrice", "totalPrice must be a non-negative number")
	}

	return inputErr.OrNil()
}

// TotalFor multiplies the tour price by guests and rounds to cents.
func TotalFor(price float64, guests int) float64 {
	return math.Round(price*float64(guests)*100) / 100 //nolint:gomnd
}

func (m *Manager) priceTour(ctx context.Context, input *CreateInput) (*catalog.Tour, float64, error) {
	tour, err := m.storage.GetTour(ctx, input.TourID)
	if errors.Is(err, apperr.ErrNotFound) {
		inputErr := apperr.NewInputError()
		inputErr.Add("tourId", "tour does not exist")

		return nil, 0, inputErr
	}

	if err != nil {
		return nil, 0, fmt.Errorf("get tour %s: %w", input.TourID, err)
	}

	total := TotalFor(tour.Price, input.Guests)

	if input.TotalPrice != nil && math.Abs(*input.TotalPrice-total) > priceTolerance {
		inputErr := apperr.NewInputError()
		inputErr.Add("totalPrice", fmt.Sprintf("totalPrice does not match tour price, expected %.2f", total))

		return nil, 0, inputErr
	}

	return tour, total, nil
}

func (m *Manager) buildBooking(ctx context.Context, input *CreateInput, total float64) (*Booking, error) {
	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next booking id: %w", err)
	}

	reference, err := m.idGenerator.GetReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("get booking reference: %w", err)
	}

	now := m.now().UTC()

	//nolint:exhaustruct
	return &Booking{
		ID:             id,
		Reference:      reference,
		FullName:       strings.TrimSpace(input.FullName),
		Email:          strings.TrimSpace(input.Email),
		Phone:          strings.TrimSpace(input.Phone),
		Date:           input.Date,
		Guests:         input.Guests,
		TourID:         input.TourID,
		TotalPrice:     total,
		Status:         StatusPending,
		IdempotencyKey: IdempotencyKeyFromContext(ctx),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (m *Manager) buildEvent(ctx context.Context, eventType EventType, b *Booking, prev Status) (*Event, error) {
	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next event id: %w", err)
	}

	payload, err := json.Marshal(EventPayload{
		BookingID:  b.ID,
		Reference:  b.Reference,
		TourID:     b.TourID,
		Email:      b.Email,
		Status:     b.Status,
		PrevStatus: prev,
		TotalPrice: b.TotalPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	//nolint:exhaustruct
	return &Event{
		ID:        id,
		BookingID: b.ID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: m.now().UTC(),
	}, nil
}

func (m *Manager) findByIdempotencyKey(ctx context.Context) (*Booking, error) {
	key := IdempotencyKeyFromContext(ctx)
	if key == "" {
		return nil, apperr.ErrNotFound
	}

	b, err := m.storage.GetBookingByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get booking by idempotency key: %w", err)
	}

	return b, nil
}

// sameRequest reports whether input describes the booking b was created from.
func (b *Booking) sameRequest(input *CreateInput) bool {
	return b.TourID == input.TourID &&
		b.Guests == input.Guests &&
		b.Date == input.Date &&
		b.FullName == strings.TrimSpace(input.FullName) &&
		b.Email == strings.TrimSpace(input.Email) &&
		b.Phone == strings.TrimSpace(input.Phone)
}

// CreateBooking stores a PENDING booking priced from the catalog. A request
// repeating an idempotency key gets the booking of the first request back,
// or a conflict when its details differ from that booking.
//
//nolint:funlen,cyclop // it's linear simple code
func (m *Manager) CreateBooking(ctx context.Context, input *CreateInput) (_ *Booking, err error) {
	if err := m.validate(input); err != nil {
		return nil, err
	}

	existing, err := m.findByIdempotencyKey(ctx)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if !existing.sameRequest(input) {
			return nil, apperr.Conflictf("idempotency key was already used for different booking details")
		}

		m.l.LogInfo("Booking %s returned for repeated idempotency key", existing.ID)

		return existing, nil
	}

	tour, total, err := m.priceTour(ctx, input)
	if err != nil {
		return nil, err
	}

	b, err := m.buildBooking(ctx, input, total)
	if err != nil {
		return nil, fmt.Errorf("build booking: %w", err)
	}

	event, err := m.buildEvent(ctx, EventBookingCreated, b, "")
	if err != nil {
		return nil, fmt.Errorf("build event for booking %s: %w", b.ID, err)
	}

	if input.Receipt != nil {
		path, saveErr := m.receipts.Save(ctx, input.Receipt.Filename, input.Receipt.Body)
		if saveErr != nil {
			return nil, fmt.Errorf("save receipt: %w", saveErr)
		}

		b.ReceiptImage = &path

		defer func() {
			if err == nil {
				return
			}

			if rmErr := m.receipts.Remove(context.WithoutCancel(ctx), path); rmErr != nil {
				m.l.LogErrorf("Could not remove orphan receipt %s: %v", path, rmErr)
			}
		}()
	}

	err = storage.WithinTransaction(ctx, m.storage, m.l, "create booking", func(ctx context.Context) error {
		if err := m.storage.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("save booking to storage: %w", err)
		}

		if err := m.storage.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("save event to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	b.Tour = &TourSummary{Title: tour.Title}

	m.l.LogInfo("Booking %s (%s) has been created for tour %s", b.ID, b.Reference, b.TourID)

	return b, nil
}

// UpdateStatus moves a booking along the status table. Repeating the current
// status is a no-op and writes no event.
func (m *Manager) UpdateStatus(ctx context.Context, id, status string) (*Booking, error) {
	to, err := ParseStatus(status)
	if err != nil {
		inputErr := apperr.NewInputError()
		inputErr.Add("status", fmt.Sprintf("status must be one of %s, %s, %s", StatusPending, StatusConfirmed, StatusCancelled))

		return nil, inputErr
	}

	var out *Booking

	err = storage.WithinTransaction(ctx, m.storage, m.l, "update booking status", func(ctx context.Context) error {
		b, err := m.storage.GetBooking(ctx, id)
		if err != nil {
			return fmt.Errorf("get booking %s: %w", id, err)
		}

		out = b

		if b.Status == to {
			return nil
		}

		if !CanTransition(b.Status, to) {
			return fmt.Errorf("booking %s from %s to %s: %w", id, b.Status, to, ErrInvalidTransition)
		}

		now := m.now().UTC()
		if err := m.storage.UpdateBookingStatus(ctx, id, b.Status, to, now); err != nil {
			return fmt.Errorf("update booking %s status: %w", id, err)
		}

		prev := b.Status
		b.Status = to
		b.UpdatedAt = now

		event, err := m.buildEvent(ctx, EventBookingStatusChanged, b, prev)
		if err != nil {
			return fmt.Errorf("build event for booking %s: %w", id, err)
		}

		if err := m.storage.SaveEvent(ctx, event); err != nil {
			return fmt.Errorf("save event to storage: %w", err)
		}

		m.l.LogInfo("Booking %s moved from %s to %s", id, prev, to)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Booking, error) {
	b, err := m.storage.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s from storage: %w", id, err)
	}

	return b, nil
}

// List returns bookings newest first, optionally narrowed to one status.
func (m *Manager) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	if filter.Status != "" {
		if _, err := ParseStatus(string(filter.Status)); err != nil {
			inputErr := apperr.NewInputError()
			inputErr.Add("status", "unknown status filter")

			return nil, inputErr
		}
	}

	bookings, err := m.storage.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings from storage: %w", err)
	}

	return bookings, nil
}
