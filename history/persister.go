// Package history keeps a capped, deduplicated list of past queries in a
// durable key-value store.
//
// History is best effort: storage failures are logged and never returned to
// the caller, so a broken store degrades to an in-memory list instead of
// blocking search.
package history

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/seekr/storage"
)

const (
	// StorageKey is the single key holding the JSON encoded history.
	StorageKey = "search-history"

	// DefaultMaxItems caps the history when no limit is configured.
	DefaultMaxItems = 10
)

var (
	// ErrStoreRequired is returned when no key-value store is provided.
	ErrStoreRequired = errors.New("key-value store required")

	// ErrInvalidMaxItems is returned when a cap below one is requested.
	ErrInvalidMaxItems = errors.New("history size must be at least 1")
)

// Persister records queries newest first.
type Persister struct {
	mu       sync.Mutex
	store    storage.KVStore
	items    []string
	maxItems int
	logger   *slog.Logger
}

// Option configures a Persister.
type Option func(*Persister) error

// WithMaxItems caps the number of remembered queries.
// Default is DefaultMaxItems.
func WithMaxItems(n int) Option {
	return func(p *Persister) error {
		if n < 1 {
			return ErrInvalidMaxItems
		}
		p.maxItems = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Persister) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPersister creates a persister with an empty in-memory list.
// Call Load to populate it from the store.
func NewPersister(store storage.KVStore, opts ...Option) (*Persister, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	p := &Persister{
		store:    store,
		maxItems: DefaultMaxItems,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "history")
	return p, nil
}

// Load reads the persisted history, replacing the in-memory list.
// Any read or decode failure yields an empty history.
func (p *Persister) Load(ctx context.Context) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = nil
	data, err := p.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn("error reading search history", "err", err)
		}
		return []string{}
	}

	var stored []string
	if err := storage.UnmarshalJSON(data, &stored); err != nil {
		p.logger.Warn("discarding unreadable search history", "err", err)
		return []string{}
	}

	// Stored data may predate the current cap or contain duplicates.
	items := make([]string, 0, len(stored))
	for _, q := range stored {
		if strings.TrimSpace(q) == "" || slices.Contains(items, q) {
			continue
		}
		items = append(items, q)
	}
	if len(items) > p.maxItems {
		items = items[:p.maxItems]
	}
	p.items = items
	return slices.Clone(items)
}

// Record moves query to the front of the history and persists the result.
// Blank queries are ignored. Matching is case-sensitive.
func (p *Persister) Record(ctx context.Context, query string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return slices.Clone(p.items)
	}

	items := make([]string, 0, len(p.items)+1)
	items = append(items, query)
	for _, q := range p.items {
		if q != query {
			items = append(items, q)
		}
	}
	if len(items) > p.maxItems {
		items = items[:p.maxItems]
	}
	p.items = items
	p.persist(ctx)
	return slices.Clone(items)
}

// Clear empties both the in-memory and persisted history.
func (p *Persister) Clear(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = nil
	p.persist(ctx)
}

// Items returns the current history, newest first.
func (p *Persister) Items() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.items)
}

// Latest returns the most recently recorded query.
func (p *Persister) Latest() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return "", false
	}
	return p.items[0], true
}

func (p *Persister) persist(ctx context.Context) {
	items := p.items
	if items == nil {
		items = []string{}
	}
	data, err := storage.MarshalJSON(items)
	if err != nil {
		p.logger.Warn("error encoding search history", "err", err)
		return
	}
	if err := p.store.Set(ctx, StorageKey, data); err != nil {
		p.logger.Warn("error writing search history", "err", err)
	}
}
