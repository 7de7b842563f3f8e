package memory

import (
	"context"
	"sort"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/catalog"
)

func copyTour(t *catalog.Tour) *catalog.Tour {
	out := *t
	out.Tags = append([]string{}, t.Tags...)

	if t.DestinationID != nil {
		id := *t.DestinationID
		out.DestinationID = &id
	}

	return &out
}

func (db *DB) sortedTours(match func(t *catalog.Tour) bool) []*catalog.Tour {
	rows := make([]*tourRow, 0, len(db.tours))

	for _, row := range db.tours {
		if match(row.tour) {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]*catalog.Tour, 0, len(rows))
	for _, row := range rows {
		out = append(out, copyTour(row.tour))
	}

	return out
}

func (db *DB) ListTours(_ context.Context, filter catalog.TourFilter) ([]*catalog.Tour, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.sortedTours(func(t *catalog.Tour) bool {
		return filter.Category == "" || t.Category == filter.Category
	}), nil
}

func (db *DB) GetTour(_ context.Context, id string) (*catalog.Tour, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row, ok := db.tours[id]
	if !ok {
		return nil, apperr.NotFoundf("tour %s", id)
	}

	return copyTour(row.tour), nil
}

func (db *DB) CountBookingsForTour(_ context.Context, tourID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int

	for _, b := range db.bookings {
		if b.TourID == tourID {
			n++
		}
	}

	return n, nil
}

func (db *DB) InsertTour(ctx context.Context, tour *catalog.Tour) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tours[tour.ID]; ok {
		return apperr.Conflictf("tour %s already exists", tour.ID)
	}

	t := copyTour(tour)

	return db.apply(ctx, func() {
		db.tours[t.ID] = &tourRow{seq: db.nextSeq(), tour: t}
	})
}

func (db *DB) UpdateTour(ctx context.Context, tour *catalog.Tour) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	row, ok := db.tours[tour.ID]
	if !ok {
		return apperr.NotFoundf("tour %s", tour.ID)
	}

	t := copyTour(tour)

	return db.apply(ctx, func() {
		db.tours[t.ID] = &tourRow{seq: row.seq, tour: t}
	})
}

func (db *DB) DeleteTour(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tours[id]; !ok {
		return apperr.NotFoundf("tour %s", id)
	}

	return db.apply(ctx, func() {
		delete(db.tours, id)
	})
}

func (db *DB) destinationByIDOrSlug(idOrSlug string) (*catalog.Destination, bool) {
	if d, ok := db.destinations[idOrSlug]; ok {
		return d, true
	}

	for _, d := range db.destinations {
		if d.Slug == idOrSlug {
			return d, true
		}
	}

	return nil, false
}

func (db *DB) toursOf(destinationID string) []*catalog.Tour {
	return db.sortedTours(func(t *catalog.Tour) bool {
		return t.DestinationID != nil && *t.DestinationID == destinationID
	})
}

func copyDestination(d *catalog.Destination) *catalog.Destination {
	out := *d
	out.Tours = nil

	return &out
}

func (db *DB) ListDestinations(_ context.Context) ([]*catalog.Destination, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]*catalog.Destination, 0, len(db.destinations))

	for _, d := range db.destinations {
		c := copyDestination(d)
		c.TourCount = len(db.toursOf(d.ID))
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (db *DB) GetDestination(_ context.Context, idOrSlug string) (*catalog.Destination, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	d, ok := db.destinationByIDOrSlug(idOrSlug)
	if !ok {
		return nil, apperr.NotFoundf("destination %s", idOrSlug)
	}

	c := copyDestination(d)
	c.Tours = db.toursOf(d.ID)
	c.TourCount = len(c.Tours)

	return c, nil
}

func (db *DB) DestinationSlugTaken(_ context.Context, slug, exceptID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.slugTaken(slug, exceptID), nil
}

func (db *DB) slugTaken(slug, exceptID string) bool {
	for _, d := range db.destinations {
		if d.Slug == slug && d.ID != exceptID {
			return true
		}
	}

	return false
}

func (db *DB) InsertDestination(ctx context.Context, destination *catalog.Destination) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.destinations[destination.ID]; ok {
		return apperr.Conflictf("destination %s already exists", destination.ID)
	}

	if db.slugTaken(destination.Slug, "") {
		return apperr.Conflictf("slug %q is taken", destination.Slug)
	}

	d := copyDestination(destination)

	return db.apply(ctx, func() {
		db.destinations[d.ID] = d
	})
}

func (db *DB) UpdateDestination(ctx context.Context, destination *catalog.Destination) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.destinations[destination.ID]; !ok {
		return apperr.NotFoundf("destination %s", destination.ID)
	}

	if db.slugTaken(destination.Slug, destination.ID) {
		return apperr.Conflictf("slug %q is taken", destination.Slug)
	}

	d := copyDestination(destination)

	return db.apply(ctx, func() {
		db.destinations[d.ID] = d
	})
}

// DeleteDestination detaches the destination's tours before removing it.
func (db *DB) DeleteDestination(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.destinations[id]; !ok {
		return apperr.NotFoundf("destination %s", id)
	}

	return db.apply(ctx, func() {
		for _, row := range db.tours {
			if row.tour.DestinationID != nil && *row.tour.DestinationID == id {
				row.tour.DestinationID = nil
			}
		}

		delete(db.destinations, id)
	})
}
