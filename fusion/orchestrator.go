package fusion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/fusionapi/cache"
	"github.com/jonwraymond/fusionapi/catalog"
	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/store"
	"github.com/jonwraymond/fusionapi/weather"
)

// Cache key tags.
const (
	TagCharacter = "CHARACTER"
	TagList      = "LIST"
	TagCustom    = "CUSTOM"
)

// DefaultConcurrency bounds concurrent homeworld lookups on the list path.
const DefaultConcurrency = 10

const unknown = "Unknown"

// CatalogClient fetches characters and planets. *catalog.Client
// implements it.
type CatalogClient interface {
	Character(ctx context.Context, id string) (catalog.Character, error)
	Planet(ctx context.Context, id string) (catalog.Planet, error)
	Characters(ctx context.Context, page int) (catalog.CharacterPage, error)
}

// AuxiliaryClient looks up current weather. *weather.Client implements it.
type AuxiliaryClient interface {
	Lookup(ctx context.Context, city, country string) (weather.Conditions, error)
}

var (
	_ CatalogClient   = (*catalog.Client)(nil)
	_ AuxiliaryClient = (*weather.Client)(nil)
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPolicy sets cache lifetimes. Default cache.DefaultPolicy().
func WithPolicy(p cache.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithLogger sets the logger for degraded lookups and best-effort writes.
func WithLogger(l observe.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMiddleware wraps every operation with tracing, metrics and logging.
func WithMiddleware(m *observe.Middleware) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.mw = m
		}
	}
}

// WithClock overrides the clock used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithConcurrency bounds concurrent homeworld lookups on the list path.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithIDGenerator overrides the custom data id source. Default uuid.NewString.
func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// Orchestrator fuses catalog and weather data behind a cache.
//
// Contract:
//   - Concurrency: safe for concurrent use; the store is the only shared state.
//   - Errors: only invalid input and primary catalog failures are returned
//     from the fusion paths. Homeworld, weather and cache write failures
//     degrade the result and are logged.
type Orchestrator struct {
	store   store.Store
	cache   *cache.Layer
	catalog CatalogClient
	weather AuxiliaryClient

	policy      cache.Policy
	logger      observe.Logger
	mw          *observe.Middleware
	now         func() time.Time
	concurrency int
	newID       func() string
}

// New creates an Orchestrator over s.
func New(s store.Store, cat CatalogClient, wx AuxiliaryClient, opts ...Option) (*Orchestrator, error) {
	if cat == nil || wx == nil {
		return nil, errors.New("fusion: catalog and weather clients are required")
	}
	o := &Orchestrator{
		store:       s,
		catalog:     cat,
		weather:     wx,
		policy:      cache.DefaultPolicy(),
		logger:      observe.NopLogger(),
		mw:          observe.NopMiddleware(),
		now:         time.Now,
		concurrency: DefaultConcurrency,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	layer, err := cache.NewLayer(s, o.policy,
		cache.WithLogger(o.logger),
		cache.WithRecorder(o.mw.Metrics()),
		cache.WithClock(o.now),
	)
	if err != nil {
		return nil, err
	}
	o.cache = layer
	return o, nil
}

// Cache returns the orchestrator's cache layer.
func (o *Orchestrator) Cache() *cache.Layer { return o.cache }

// GetFusedData returns the fused character for id, or the first page of
// characters when id is empty.
func (o *Orchestrator) GetFusedData(ctx context.Context, id string) (Payload, error) {
	if id == "" {
		list, err := o.Characters(ctx, 1)
		if err != nil {
			return nil, err
		}
		return list, nil
	}
	fused, err := o.Character(ctx, id)
	if err != nil {
		return nil, err
	}
	return fused, nil
}

// ParseID validates a character id: a positive base-10 integer without
// sign or surrounding space. It returns the canonical form.
func ParseID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: character id is required", ErrInvalidInput)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: character id %q must be a positive integer", ErrInvalidInput, id)
		}
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: character id %q must be a positive integer", ErrInvalidInput, id)
	}
	return strconv.Itoa(n), nil
}

func (o *Orchestrator) timestamp() string {
	return store.FormatTime(o.now())
}

// primaryError classifies a failed primary catalog fetch.
func primaryError(what string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, what, err)
}
