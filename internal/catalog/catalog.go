package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/storage"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storageReader interface {
	ListTours(ctx context.Context, filter TourFilter) ([]*Tour, error)
	GetTour(ctx context.Context, id string) (*Tour, error)
	CountBookingsForTour(ctx context.Context, tourID string) (int, error)
	ListDestinations(ctx context.Context) ([]*Destination, error)
	GetDestination(ctx context.Context, idOrSlug string) (*Destination, error)
	DestinationSlugTaken(ctx context.Context, slug, exceptID string) (bool, error)
}

type storageWriter interface {
	storage.Transactor
	InsertTour(ctx context.Context, tour *Tour) error
	UpdateTour(ctx context.Context, tour *Tour) error
	DeleteTour(ctx context.Context, id string) error
	InsertDestination(ctx context.Context, destination *Destination) error
	UpdateDestination(ctx context.Context, destination *Destination) error
	DeleteDestination(ctx context.Context, id string) error
}

type store interface {
	storageReader
	storageWriter
}

type Manager struct {
	l           *logger.Logger
	storage     store
	idGenerator idGenerator
}

func New(l *logger.Logger, storage store, idGenerator idGenerator) *Manager {
	return &Manager{
		l:           l,
		storage:     storage,
		idGenerator: idGenerator,
	}
}

func (in *TourInput) validate() error {
	inputErr := apperr.NewInputError()

	if strings.TrimSpace(in.Title) == "" {
		inputErr.Add("title", "provide title")
	}

	if in.Price <= 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		inputErr.Add("price", "price must be a positive number")
	}

	if !in.Category.Valid() {
		inputErr.Add("category", fmt.Sprintf("unknown category %q", in.Category))
	}

	if in.Rating < 0 || in.Rating > 5 {
		inputErr.Add("rating", "rating must be between 0 and 5")
	}

	if in.Reviews < 0 {
		inputErr.Add("reviews", "reviews must not be negative")
	}

	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			inputErr.Add("tags", "tags must not be blank")

			break
		}
	}

	return inputErr.OrNil()
}

func (in *TourInput) toTour(id string) *Tour {
	tags := make([]string, len(in.Tags))
	copy(tags, in.Tags)

	return &Tour{
		ID:            id,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         in.Price,
		Duration:      in.Duration,
		Image:         in.Image,
		Category:      in.Category,
		Rating:        in.Rating,
		Reviews:       in.Reviews,
		Tags:          tags,
		DestinationID: in.DestinationID,
	}
}

func (in *DestinationInput) validate() error {
	inputErr := apperr.NewInputError()

	if !slugPattern.MatchString(in.Slug) {
		inputErr.Add("slug", "slug must be lowercase letters, digits and dashes")
	}

	if strings.TrimSpace(in.Name) == "" {
		inputErr.Add("name", "provide name")
	}

	return inputErr.OrNil()
}

func (in *DestinationInput) toDestination(id string) *Destination {
	//nolint:exhaustruct
	return &Destination{
		ID:          id,
		Slug:        in.Slug,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		HeaderImage: in.HeaderImage,
		Content:     in.Content,
	}
}

func (m *Manager) ListTours(ctx context.Context, filter TourFilter) ([]*Tour, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		inputErr := apperr.NewInputError()
		inputErr.Add("category", fmt.Sprintf("unknown category %q", filter.Category))

		return nil, inputErr
	}

	tours, err := m.storage.ListTours(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tours from storage: %w", err)
	}

	return tours, nil
}

func (m *Manager) GetTour(ctx context.Context, id string) (*Tour, error) {
	tour, err := m.storage.GetTour(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tour %s from storage: %w", id, err)
	}

	return tour, nil
}

func (m *Manager) CreateTour(ctx context.Context, input *TourInput) (*Tour, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := m.checkDestination(ctx, input.DestinationID); err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		var err error

		if id, err = m.idGenerator.GetID(ctx); err != nil {
			return nil, fmt.Errorf("get next tour id: %w", err)
		}
	}

	tour := input.toTour(id)

	if err := m.storage.InsertTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("insert tour %s: %w", id, err)
	}

	m.l.LogInfo("Tour %s has been created", id)

	return tour, nil
}

func (m *Manager) UpdateTour(ctx context.Context, id string, input *TourInput) (*Tour, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := m.checkDestination(ctx, input.DestinationID); err != nil {
		return nil, err
	}

	tour := input.toTour(id)

	if err := m.storage.UpdateTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("update tour %s: %w", id, err)
	}

	return tour, nil
}

// DeleteTour refuses to remove a tour that bookings still point at.
func (m *Manager) DeleteTour(ctx context.Context, id string) error {
	return storage.WithinTransaction(ctx, m.storage, m.l, "delete tour", func(ctx context.Context) error {
		if _, err := m.storage.GetTour(ctx, id); err != nil {
			return fmt.Errorf("get tour %s: %w", id, err)
		}

		n, err := m.storage.CountBookingsForTour(ctx, id)
		if err != nil {
			return fmt.Errorf("count bookings for tour %s: %w", id, err)
		}

		if n > 0 {
			return apperr.Conflictf("tour %s has %d bookings", id, n)
		}

		if err := m.storage.DeleteTour(ctx, id); err != nil {
			return fmt.Errorf("delete tour %s: %w", id, err)
		}

		return nil
	})
}

func (m *Manager) checkDestination(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}

	if _, err := m.storage.GetDestination(ctx, *id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			inputErr := apperr.NewInputError()
			inputErr.Add("destinationId", "destination does not exist")

			return inputErr
		}

		return fmt.Errorf("get destination %s: %w", *id, err)
	}

	return nil
}

func (m *Manager) ListDestinations(ctx context.Context) ([]*Destination, error) {
	destinations, err := m.storage.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destinations from storage: %w", err)
	}

	return destinations, nil
}

// GetDestination resolves either the id or the slug and embeds the tours.
func (m *Manager) GetDestination(ctx context.Context, idOrSlug string) (*Destination, error) {
	destination, err := m.storage.GetDestination(ctx, idOrSlug)
	if err != nil {
		return nil, fmt.Errorf("get destination %s from storage: %w", idOrSlug, err)
	}

	return destination, nil
}

func (m *Manager) CreateDestination(ctx context.Context, input *DestinationInput) (*Destination, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		var err error

		if id, err = m.idGenerator.GetID(ctx); err != nil {
			return nil, fmt.Errorf("get next destination id: %w", err)
		}
	}

	destination := input.toDestination(id)

	err := storage.WithinTransaction(ctx, m.storage, m.l, "create destination", func(ctx context.Context) error {
		if err := m.ensureSlugFree(ctx, input.Slug, ""); err != nil {
			return err
		}

		return m.storage.InsertDestination(ctx, destination)
	})
	if err != nil {
		return nil, fmt.Errorf("insert destination %s: %w", input.Slug, err)
	}

	return destination, nil
}

func (m *Manager) UpdateDestination(ctx context.Context, id string, input *DestinationInput) (*Destination, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	destination := input.toDestination(id)

	err := storage.WithinTransaction(ctx, m.storage, m.l, "update destination", func(ctx context.Context) error {
		if err := m.ensureSlugFree(ctx, input.Slug, id); err != nil {
			return err
		}

		return m.storage.UpdateDestination(ctx, destination)
	})
	if err != nil {
		return nil, fmt.Errorf("update destination %s: %w", id, err)
	}

	return destination, nil
}

func (m *Manager) DeleteDestination(ctx context.Context, id string) error {
	if err := m.storage.DeleteDestination(ctx, id); err != nil {
		return fmt.Errorf("delete destination %s: %w", id, err)
	}

	return nil
}

func (m *Manager) ensureSlugFree(ctx context.Context, slug, ownerID string) error {
	taken, err := m.storage.DestinationSlugTaken(ctx, slug, ownerID)
	if err != nil {
		return fmt.Errorf("check destination slug %s: %w", slug, err)
	}

	if taken {
		return apperr.Conflictf("slug %q is taken", slug)
	}

	return nil
}
