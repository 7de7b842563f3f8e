package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/logger"
	"github.com/avstrong/discovertours/internal/storage"
)

const (
	maxKeyLen      = 100
	defaultSiteTTL = 30 * time.Second
)

type store interface {
	storage.Transactor
	GetSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

type Manager struct {
	l       *logger.Logger
	storage store

	siteTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	site     *Site
	siteRead time.Time
}

type Option func(m *Manager)

// WithSiteTTL bounds how long a parsed Site is served before settings are
// read again. Other replicas only see an Upsert after this interval.
func WithSiteTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.siteTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func New(l *logger.Logger, storage store, opts ...Option) *Manager {
	//nolint:exhaustruct
	m := &Manager{
		l:       l,
		storage: storage,
		siteTTL: defaultSiteTTL,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ValuesFromJSON flattens a request body into stored strings. JSON strings
// are unquoted, anything else is kept as its JSON text.
func ValuesFromJSON(raw map[string]json.RawMessage) map[string]string {
	values := make(map[string]string, len(raw))

	for key, msg := range raw {
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			values[key] = s

			continue
		}

		var buf bytes.Buffer
		if err := json.Compact(&buf, msg); err != nil {
			values[key] = string(msg)

			continue
		}

		values[key] = buf.String()
	}

	return values
}

func validate(values map[string]string) error {
	inputErr := apperr.NewInputError()

	if len(values) == 0 {
		inputErr.Add("settings", "provide at least one setting")
	}

	for key, value := range values {
		switch {
		case strings.TrimSpace(key) == "":
			inputErr.Add("key", "setting key must not be blank")
		case len(key) > maxKeyLen:
			inputErr.Add(key, fmt.Sprintf("setting key must be at most %d characters", maxKeyLen))
		case key == KeyTestimonials:
			if _, err := parseTestimonials(value); err != nil {
				inputErr.Add(key, err.Error())
			}
		case key == KeyPopularDestinations:
			if _, err := parsePopularDestinations(value); err != nil {
				inputErr.Add(key, err.Error())
			}
		}
	}

	return inputErr.OrNil()
}

func parseTestimonials(value string) ([]Testimonial, error) {
	var out []Testimonial
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("must be a JSON list of testimonials: %w", err)
	}

	// Older entries carry neither id nor rating.
	for i := range out {
		if out[i].ID == 0 {
			out[i].ID = i + 1
		}

		if out[i].Rating == 0 {
			out[i].Rating = 5
		}

		if out[i].Rating < 1 || out[i].Rating > 5 {
			return nil, fmt.Errorf("testimonial %d rating must be between 1 and 5", i+1) //nolint:err113
		}
	}

	return out, nil
}

func parsePopularDestinations(value string) ([]PopularDestination, error) {
	var out []PopularDestination
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("must be a JSON list of destinations: %w", err)
	}

	return out, nil
}

func (m *Manager) Get(ctx context.Context) (map[string]string, error) {
	values, err := m.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings from storage: %w", err)
	}

	return values, nil
}

// Upsert writes every pair or none of them and returns the refreshed map.
func (m *Manager) Upsert(ctx context.Context, values map[string]string) (map[string]string, error) {
	if err := validate(values); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	err := storage.WithinTransaction(ctx, m.storage, m.l, "upsert settings", func(ctx context.Context) error {
		for _, k := range keys {
			if err := m.storage.UpsertSetting(ctx, k, values[k]); err != nil {
				return fmt.Errorf("upsert setting %s: %w", k, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.site = nil
	m.mu.Unlock()

	return m.Get(ctx)
}

// Site parses the settings and caches the result until the next Upsert or
// until the TTL passes. Callers get their own copy.
func (m *Manager) Site(ctx context.Context) (*Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.site != nil && m.now().Sub(m.siteRead) < m.siteTTL {
		return m.site.clone(), nil
	}

	values, err := m.storage.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings from storage: %w", err)
	}

	site := &Site{
		Hero: Hero{
			Title:    values[KeyHeroTitle],
			Subtitle: values[KeyHeroSubtitle],
			Image:    values[KeyHeroImage],
		},
		Contact: Contact{
			Address: values[KeyAddress],
			Phone:   values[KeyPhone],
			Email:   values[KeyEmail],
		},
		Testimonials:        []Testimonial{},
		PopularDestinations: []PopularDestination{},
		Pages: Pages{
			About:   values[KeyPageAbout],
			FAQ:     values[KeyPageFAQ],
			Privacy: values[KeyPagePrivacy],
			Terms:   values[KeyPageTerms],
		},
	}

	if v, ok := values[KeyTestimonials]; ok && v != "" {
		if site.Testimonials, err = parseTestimonials(v); err != nil {
			m.l.LogWarnf("Stored %s setting is malformed: %v", KeyTestimonials, err)

			site.Testimonials = []Testimonial{}
		}
	}

	if v, ok := values[KeyPopularDestinations]; ok && v != "" {
		if site.PopularDestinations, err = parsePopularDestinations(v); err != nil {
			m.l.LogWarnf("Stored %s setting is malformed: %v", KeyPopularDestinations, err)

			site.PopularDestinations = []PopularDestination{}
		}
	}

	m.site = site
	m.siteRead = m.now()

	return site.clone(), nil
}

func (s *Site) clone() *Site {
	c := *s
	c.Testimonials = append([]Testimonial{}, s.Testimonials...)
	c.PopularDestinations = append([]PopularDestination{}, s.PopularDestinations...)

	return &c
}
