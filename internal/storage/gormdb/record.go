package gormdb

import (
	"time"

	"gorm.io/datatypes"

	"github.com/avstrong/discovertours/internal/auth"
	"github.com/avstrong/discovertours/internal/booking"
	"github.com/avstrong/discovertours/internal/catalog"
)

type destinationRecord struct {
	ID          string         `gorm:"primaryKey;size:64"`
	Slug        string         `gorm:"size:128;not null;uniqueIndex"`
	Name        string         `gorm:"size:255;not null"`
	Description string         `gorm:"type:text"`
	Image       string         `gorm:"size:1024"`
	HeaderImage *string        `gorm:"size:1024"`
	Content     *string        `gorm:"type:text"`
	Tours       []tourRecord   `gorm:"foreignKey:DestinationID;constraint:OnDelete:SET NULL"`
	TourCount   int            `gorm:"->;-:migration"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (destinationRecord) TableName() string { return "destinations" }

type tourRecord struct {
	ID            string                      `gorm:"primaryKey;size:64"`
	Title         string                      `gorm:"size:255;not null"`
	Description   string                      `gorm:"type:text"`
	Price         float64                     `gorm:"type:decimal(10,2);not null"`
	Duration      string                      `gorm:"size:64"`
	Image         string                      `gorm:"size:1024"`
	Category      string                      `gorm:"size:32;not null;index"`
	Rating        float64                     `gorm:"not null;default:0"`
	Reviews       int                         `gorm:"not null;default:0"`
	Tags          datatypes.JSONSlice[string] `gorm:"not null"`
	DestinationID *string                     `gorm:"size:64;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (tourRecord) TableName() string { return "tours" }

type bookingRecord struct {
	ID             string      `gorm:"primaryKey;size:64"`
	Reference      string      `gorm:"size:16;not null;uniqueIndex"`
	FullName       string      `gorm:"size:255;not null"`
	Email          string      `gorm:"size:255;not null"`
	Phone          string      `gorm:"size:32;not null"`
	Date           string      `gorm:"size:10;not null"`
	Guests         int         `gorm:"not null"`
	TourID         string      `gorm:"size:64;not null;index"`
	Tour           *tourRecord `gorm:"foreignKey:TourID;constraint:OnDelete:RESTRICT"`
	TotalPrice     float64     `gorm:"type:decimal(10,2);not null"`
	ReceiptImage   *string     `gorm:"size:1024"`
	Status         string      `gorm:"size:16;not null;index"`
	IdempotencyKey *string     `gorm:"size:128;uniqueIndex"`
	CreatedAt      time.Time   `gorm:"index"`
	UpdatedAt      time.Time
}

func (bookingRecord) TableName() string { return "bookings" }

type eventRecord struct {
	ID          string         `gorm:"primaryKey;size:64"`
	BookingID   string         `gorm:"size:64;not null;index"`
	Type        string         `gorm:"size:64;not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time
	PublishedAt *time.Time `gorm:"index"`
}

func (eventRecord) TableName() string { return "booking_events" }

type settingRecord struct {
	Key       string `gorm:"primaryKey;size:100"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (settingRecord) TableName() string { return "settings" }

type userRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

func tourFromDomain(t *catalog.Tour) *tourRecord {
	tags := datatypes.JSONSlice[string]{}
	if t.Tags != nil {
		tags = append(tags, t.Tags...)
	}

	//nolint:exhaustruct
	return &tourRecord{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Price:         t.Price,
		Duration:      t.Duration,
		Image:         t.Image,
		Category:      string(t.Category),
		Rating:        t.Rating,
		Reviews:       t.Reviews,
		Tags:          tags,
		DestinationID: t.DestinationID,
	}
}

func (r *tourRecord) toDomain() *catalog.Tour {
	tags := make([]string, 0, len(r.Tags))
	tags = append(tags, r.Tags...)

	return &catalog.Tour{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		Duration:      r.Duration,
		Image:         r.Image,
		Category:      catalog.Category(r.Category),
		Rating:        r.Rating,
		Reviews:       r.Reviews,
		Tags:          tags,
		DestinationID: r.DestinationID,
	}
}

func destinationFromDomain(d *catalog.Destination) *destinationRecord {
	//nolint:exhaustruct
	return &destinationRecord{
		ID:          d.ID,
		Slug:        d.Slug,
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		HeaderImage: d.HeaderImage,
		Content:     d.Content,
	}
}

func (r *destinationRecord) toDomain() *catalog.Destination {
	//nolint:exhaustruct
	d := &catalog.Destination{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		HeaderImage: r.HeaderImage,
		Content:     r.Content,
		TourCount:   r.TourCount,
	}

	if r.Tours != nil {
		d.Tours = make([]*catalog.Tour, 0, len(r.Tours))
		for i := range r.Tours {
			d.Tours = append(d.Tours, r.Tours[i].toDomain())
		}

		d.TourCount = len(d.Tours)
	}

	return d
}

func bookingFromDomain(b *booking.Booking) *bookingRecord {
	var key *string
	if b.IdempotencyKey != "" {
		k := b.IdempotencyKey
		key = &k
	}

	//nolint:exhaustruct
	return &bookingRecord{
		ID:             b.ID,
		Reference:      b.Reference,
		FullName:       b.FullName,
		Email:          b.Email,
		Phone:          b.Phone,
		Date:           b.Date,
		Guests:         b.Guests,
		TourID:         b.TourID,
		TotalPrice:     b.TotalPrice,
		ReceiptImage:   b.ReceiptImage,
		Status:         string(b.Status),
		IdempotencyKey: key,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (r *bookingRecord) toDomain() *booking.Booking {
	//nolint:exhaustruct
	b := &booking.Booking{
		ID:           r.ID,
		Reference:    r.Reference,
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		Date:         r.Date,
		Guests:       r.Guests,
		TourID:       r.TourID,
		TotalPrice:   r.TotalPrice,
		ReceiptImage: r.ReceiptImage,
		Status:       booking.Status(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}

	if r.IdempotencyKey != nil {
		b.IdempotencyKey = *r.IdempotencyKey
	}

	if r.Tour != nil {
		b.Tour = &booking.TourSummary{Title: r.Tour.Title}
	}

	return b
}

func (r *eventRecord) toDomain() *booking.Event {
	return &booking.Event{
		ID:          r.ID,
		BookingID:   r.BookingID,
		Type:        booking.EventType(r.Type),
		Payload:     []byte(r.Payload),
		CreatedAt:   r.CreatedAt.UTC(),
		PublishedAt: r.PublishedAt,
	}
}

func userFromDomain(u *auth.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRecord) toDomain() *auth.User {
	return &auth.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         auth.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}
