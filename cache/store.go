// Package cache holds resolved search results keyed by request parameters.
//
// The store is bounded and evicts strictly in insertion order (FIFO). Reading
// an entry never changes its position, so an entry that is hit often is still
// evicted once enough newer keys have been inserted.
package cache

import (
	"container/list"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/seekr/core"
)

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 50

// ErrInvalidCapacity is returned when a capacity below one is requested.
var ErrInvalidCapacity = errors.New("cache capacity must be at least 1")

// Entry is a cached result set and the time it was stored.
type Entry struct {
	Results  *core.ResultSet
	StoredAt time.Time
}

type slot struct {
	entry Entry
	elem  *list.Element // position in Store.order, value is the key
}

// Store is a bounded key -> result map with FIFO eviction.
// A Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*slot
	order    *list.List
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store) error

// WithCapacity sets the maximum number of entries.
// Default is DefaultCapacity.
func WithCapacity(capacity int) Option {
	return func(s *Store) error {
		if capacity < 1 {
			return ErrInvalidCapacity
		}
		s.capacity = capacity
		return nil
	}
}

// New creates an empty store.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		capacity: DefaultCapacity,
		entries:  make(map[string]*slot),
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns the results stored under key. Lookups do not affect eviction
// order.
func (s *Store) Get(key string) (*core.ResultSet, bool) {
	entry, ok := s.Entry(key)
	if !ok {
		return nil, false
	}
	return entry.Results, true
}

// Entry returns the full entry stored under key.
func (s *Store) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return sl.entry, true
}

// Put stores results under key. Overwriting an existing key keeps its
// original insertion position. When the store grows past capacity the
// earliest inserted key is evicted.
func (s *Store) Put(key string, results *core.ResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{Results: results, StoredAt: s.now()}
	if sl, ok := s.entries[key]; ok {
		sl.entry = entry
		return
	}

	s.entries[key] = &slot{entry: entry, elem: s.order.PushBack(key)}
	for s.order.Len() > s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(string))
	}
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*slot)
	s.order.Init()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Capacity returns the maximum number of entries.
func (s *Store) Capacity() int {
	return s.capacity
}

// Keys returns the stored keys, oldest first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, s.order.Len())
	for e := s.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(string))
	}
	return keys
}

type keyMaterial struct {
	Query   string           `json:"q"`
	Filters json.RawMessage  `json:"f"`
	Sort    core.SortOptions `json:"s"`
}

// Key derives the cache key for a request. Logically identical requests
// produce identical keys regardless of filter property or list order.
func Key(query string, filters core.SearchFilters, sort core.SortOptions) string {
	bs, _ := json.Marshal(keyMaterial{
		Query:   strings.TrimSpace(query),
		Filters: filters.Canonical(),
		Sort:    sort,
	})
	return core.Digest(bs)
}
