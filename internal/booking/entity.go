package booking

import (
	"encoding/json"
	"io"
	"time"
)

const DateLayout = "2006-01-02"

type Booking struct {
	ID             string       `json:"id"`
	Reference      string       `json:"reference"`
	FullName       string       `json:"fullName"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Date           string       `json:"date"`
	Guests         int          `json:"guests"`
	TourID         string       `json:"tourId"`
	TotalPrice     float64      `json:"totalPrice"`
	ReceiptImage   *string      `json:"receiptImage"`
	Status         Status       `json:"status"`
	IdempotencyKey string       `json:"-"`
	Tour           *TourSummary `json:"tour,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type TourSummary struct {
	Title string `json:"title"`
}

// Receipt is the uploaded payment proof. Body is read once.
type Receipt struct {
	Filename string
	Body     io.Reader
}

type CreateInput struct {
	FullName string
	Email    string
	Phone    string
	Date     string
	Guests   int
	TourID   string
	// TotalPrice is what the client displayed. Nil means not submitted.
	TotalPrice *float64
	Receipt    *Receipt
}

type ListFilter struct {
	Status Status
}

type EventType string

const (
	EventBookingCreated       EventType = "BookingCreated"
	EventBookingStatusChanged EventType = "BookingStatusChanged"
)

// Event is an outbox record written in the same transaction as the booking change.
type Event struct {
	ID          string
	BookingID   string
	Type        EventType
	Payload     json.RawMessage
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type EventPayload struct {
	BookingID  string  `json:"bookingId"`
	Reference  string  `json:"reference"`
	TourID     string  `json:"tourId"`
	Email      string  `json:"email"`
	Status     Status  `json:"status"`
	PrevStatus Status  `json:"previousStatus,omitempty"`
	TotalPrice float64 `json:"totalPrice"`
}
