package suggest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/seekr/backend"
	"github.com/poiesic/seekr/core"
)

const (
	// DefaultMinQueryLength is the shortest trimmed input that triggers a lookup.
	DefaultMinQueryLength = 2

	// DefaultMaxSuggestions caps the suggestions kept from one lookup.
	DefaultMaxSuggestions = 5

	// DefaultPoolSize is the number of lookups allowed in flight at once.
	DefaultPoolSize = 4
)

// Response is the outcome of one suggestion lookup.
// Seq identifies the Fetch call that issued it.
type Response struct {
	Seq         uint64
	Query       string
	Suggestions []core.Suggestion
	Err         error
}

// Coordinator issues suggestion lookups independently of the primary search.
// Every Fetch gets a fresh sequence number; only the response carrying the
// newest number is accepted.
type Coordinator struct {
	backend        backend.Backend
	pool           *ants.Pool
	poolSize       int
	minQueryLength int
	maxSuggestions int
	enabled        bool
	includePopular bool
	includeRecent  bool
	logger         *slog.Logger

	mu       sync.Mutex
	seq      uint64
	inFlight bool
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithMinQueryLength sets the shortest input that triggers a lookup.
// Default is 2.
func WithMinQueryLength(n int) Option {
	return func(c *Coordinator) error {
		if n < 0 {
			return ErrInvalidMinQueryLength
		}
		c.minQueryLength = n
		return nil
	}
}

// WithMaxSuggestions caps the number of suggestions applied per lookup.
// Default is 5.
func WithMaxSuggestions(n int) Option {
	return func(c *Coordinator) error {
		if n < 1 {
			return ErrInvalidMaxSuggestions
		}
		c.maxSuggestions = n
		return nil
	}
}

// WithEnabled turns lookups on or off. A disabled coordinator never calls
// the backend.
func WithEnabled(enabled bool) Option {
	return func(c *Coordinator) error {
		c.enabled = enabled
		return nil
	}
}

// WithIncludePopular asks the backend to mix in popular queries.
func WithIncludePopular(include bool) Option {
	return func(c *Coordinator) error {
		c.includePopular = include
		return nil
	}
}

// WithIncludeRecent asks the backend to mix in recent queries.
func WithIncludeRecent(include bool) Option {
	return func(c *Coordinator) error {
		c.includeRecent = include
		return nil
	}
}

// WithPoolSize sets the worker pool size for lookups.
// Values below 1 are raised to 1.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		c.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a suggestion coordinator over b.
func NewCoordinator(b backend.Backend, opts ...Option) (*Coordinator, error) {
	if b == nil {
		return nil, ErrBackendRequired
	}

	c := &Coordinator{
		backend:        b,
		poolSize:       DefaultPoolSize,
		minQueryLength: DefaultMinQueryLength,
		maxSuggestions: DefaultMaxSuggestions,
		enabled:        true,
		includePopular: true,
		includeRecent:  true,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "suggest")

	// Lookups are never queued: a saturated pool means the newest keystroke
	// is already outdated by the ones still running.
	pool, err := ants.NewPool(c.poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	c.pool = pool
	return c, nil
}

// Fetch starts a lookup for query. It returns the sequence number assigned
// to the call and whether a request was issued. deliver is called exactly
// once from a worker goroutine with the outcome; pass the Response to Accept
// before applying it.
//
// When no request is issued the coordinator is disabled, the trimmed query
// is shorter than the minimum, or the pool is saturated. Any earlier lookup
// is invalidated and the caller should show no suggestions.
func (c *Coordinator) Fetch(ctx context.Context, query string, deliver func(Response)) (uint64, bool) {
	trimmed := strings.TrimSpace(query)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if !c.enabled || utf8.RuneCountInString(trimmed) < c.minQueryLength {
		c.inFlight = false
		c.mu.Unlock()
		return seq, false
	}
	c.inFlight = true
	c.mu.Unlock()

	req := core.SuggestRequest{
		Query:          trimmed,
		MaxSuggestions: c.maxSuggestions,
		IncludePopular: c.includePopular,
		IncludeRecent:  c.includeRecent,
	}

	err := c.pool.Submit(func() {
		suggestions, err := c.backend.Suggest(ctx, req)
		if len(suggestions) > c.maxSuggestions {
			suggestions = suggestions[:c.maxSuggestions]
		}
		deliver(Response{Seq: seq, Query: query, Suggestions: suggestions, Err: err})
	})
	if err != nil {
		c.logger.Warn("suggestion lookup dropped", "query", trimmed, "err", err)
		c.mu.Lock()
		if c.seq == seq {
			c.inFlight = false
		}
		c.mu.Unlock()
		return seq, false
	}
	return seq, true
}

// Accept reports whether resp answers the most recent Fetch. Superseded
// responses must be discarded. Failed lookups are accepted with no
// suggestions so the caller can clear its list.
func (c *Coordinator) Accept(resp *Response) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if resp.Seq != c.seq {
		return false
	}
	c.inFlight = false
	if resp.Err != nil {
		c.logger.Debug("suggestion lookup failed", "query", resp.Query, "err", resp.Err)
		resp.Suggestions = nil
	}
	return true
}

// Invalidate discards every lookup currently in flight.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.inFlight = false
}

// InFlight reports whether the newest lookup is still outstanding.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Release stops the worker pool. Fetch must not be called afterwards.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}
