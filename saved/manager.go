// Package saved manages named, user-curated snapshots of a query and its
// filters. Unlike cached results they are never evicted: a saved search
// lives until it is explicitly deleted.
package saved

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/seekr/core"
	"github.com/poiesic/seekr/storage"
)

// KeyPrefix namespaces saved searches in the key-value store.
const KeyPrefix = "saved:"

// Manager persists saved searches, one key per search.
type Manager struct {
	store  storage.KVStore
	owner  string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithOwner stamps CreatedBy on searches saved without one.
func WithOwner(owner string) Option {
	return func(m *Manager) error {
		m.owner = owner
		return nil
	}
}

// WithClock overrides the time source used for CreatedAt and LastUsed.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) error {
		if now == nil {
			now = time.Now
		}
		m.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a saved search manager backed by store.
func NewManager(store storage.KVStore, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "saved")
	return m, nil
}

// Save stores a new saved search. A missing ID is generated, and zero
// CreatedAt and LastUsed are set to the current time.
func (m *Manager) Save(ctx context.Context, s core.SavedSearch) (core.SavedSearch, error) {
	s = s.Clone()
	s.Name = strings.TrimSpace(s.Name)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedBy == "" {
		s.CreatedBy = m.owner
	}
	now := m.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastUsed.IsZero() {
		s.LastUsed = s.CreatedAt
	}
	if err := m.put(ctx, &s); err != nil {
		return core.SavedSearch{}, err
	}
	m.logger.Debug("saved search", "id", s.ID, "name", s.Name)
	return s, nil
}

// Get returns the saved search with the given ID.
func (m *Manager) Get(ctx context.Context, id string) (core.SavedSearch, error) {
	if id == "" {
		return core.SavedSearch{}, fmt.Errorf("%w: %w", ErrNotFound, core.ErrEmptyID)
	}
	data, err := m.store.Get(ctx, KeyPrefix+id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.SavedSearch{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return core.SavedSearch{}, err
	}
	var s core.SavedSearch
	if err := storage.UnmarshalJSON(data, &s); err != nil {
		return core.SavedSearch{}, err
	}
	return s, nil
}

// List returns every saved search, oldest first. Entries that fail to
// decode are logged and skipped.
func (m *Manager) List(ctx context.Context) ([]core.SavedSearch, error) {
	var out []core.SavedSearch
	err := m.store.Scan(ctx, KeyPrefix, func(key string, value []byte) error {
		var s core.SavedSearch
		if err := storage.UnmarshalJSON(value, &s); err != nil {
			m.logger.Warn("skipping unreadable saved search", "key", key, "err", err)
			return nil
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b core.SavedSearch) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Update applies fn to the stored search and writes it back.
// The ID and CreatedAt fields cannot be changed.
func (m *Manager) Update(ctx context.Context, id string, fn func(*core.SavedSearch)) (core.SavedSearch, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return core.SavedSearch{}, err
	}
	createdAt := s.CreatedAt
	fn(&s)
	s.ID = id
	s.CreatedAt = createdAt
	s.Name = strings.TrimSpace(s.Name)
	if err := m.put(ctx, &s); err != nil {
		return core.SavedSearch{}, err
	}
	return s, nil
}

// Touch records that the saved search was just used.
func (m *Manager) Touch(ctx context.Context, id string) (core.SavedSearch, error) {
	return m.Update(ctx, id, func(s *core.SavedSearch) {
		s.LastUsed = m.now().UTC()
	})
}

// Delete removes the saved search with the given ID.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, KeyPrefix+id); err != nil {
		return err
	}
	m.logger.Debug("deleted saved search", "id", id)
	return nil
}

func (m *Manager) put(ctx context.Context, s *core.SavedSearch) error {
	if err := core.ValidateSavedSearch(s); err != nil {
		return err
	}
	data, err := storage.MarshalJSON(s)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, KeyPrefix+s.ID, data)
}
