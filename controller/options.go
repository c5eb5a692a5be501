package controller

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/seekr/cache"
	"github.com/poiesic/seekr/history"
	"github.com/poiesic/seekr/saved"
	"github.com/poiesic/seekr/suggest"
)

const (
	// DefaultDebounceDelay is how long input must be quiet before a search.
	DefaultDebounceDelay = 300 * time.Millisecond

	// DefaultPageSize is the number of results requested per search.
	DefaultPageSize = 20

	// DefaultPoolSize bounds concurrent backend searches.
	DefaultPoolSize = 8

	// DefaultSemanticThreshold is the similarity cutoff sent with semantic searches.
	DefaultSemanticThreshold float32 = 0.6
)

// Option configures a Controller.
type Option func(*Controller) error

// WithDebounceDelay sets the quiet period before a typed query is searched.
// Default is 300ms.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Controller) error {
		if d < 0 {
			return fmt.Errorf("%w: negative debounce delay", ErrInvalidOption)
		}
		c.delay = d
		return nil
	}
}

// WithCache injects the result cache. By default each controller creates
// its own cache of cache.DefaultCapacity entries.
func WithCache(store *cache.Store) Option {
	return func(c *Controller) error {
		c.cache = store
		return nil
	}
}

// WithHistory enables search history. Without it RecentSearches stays empty.
func WithHistory(p *history.Persister) Option {
	return func(c *Controller) error {
		c.history = p
		return nil
	}
}

// WithSavedSearches enables saved search operations.
func WithSavedSearches(m *saved.Manager) Option {
	return func(c *Controller) error {
		c.saved = m
		return nil
	}
}

// WithSuggestions injects the suggestion coordinator. The caller keeps
// ownership and must release it. By default the controller creates one over
// its own backend.
func WithSuggestions(s *suggest.Coordinator) Option {
	return func(c *Controller) error {
		c.suggest = s
		return nil
	}
}

// WithSuggestOptions configures the coordinator the controller creates when
// none is injected with WithSuggestions.
func WithSuggestOptions(opts ...suggest.Option) Option {
	return func(c *Controller) error {
		c.suggestOpts = append(c.suggestOpts, opts...)
		return nil
	}
}

// WithPageSize sets the number of results requested per search.
// Default is 20.
func WithPageSize(n int) Option {
	return func(c *Controller) error {
		if n < 1 {
			return fmt.Errorf("%w: page size must be positive", ErrInvalidOption)
		}
		c.pageSize = n
		return nil
	}
}

// WithPoolSize bounds the number of backend searches in flight.
// Values below 1 are raised to 1.
func WithPoolSize(size int) Option {
	return func(c *Controller) error {
		c.poolSize = max(size, 1)
		return nil
	}
}

// WithHighlighting asks the backend to highlight matches.
func WithHighlighting(enabled bool) Option {
	return func(c *Controller) error {
		c.highlight = enabled
		return nil
	}
}

// WithIncludeMetadata asks the backend to return asset metadata.
func WithIncludeMetadata(enabled bool) Option {
	return func(c *Controller) error {
		c.includeMetadata = enabled
		return nil
	}
}

// WithSemanticThreshold sets the similarity cutoff for semantic searches.
func WithSemanticThreshold(threshold float32) Option {
	return func(c *Controller) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: semantic threshold must be within [0, 1]", ErrInvalidOption)
		}
		c.threshold = threshold
		return nil
	}
}

// WithMonitor installs observation hooks.
func WithMonitor(m Monitor) Option {
	return func(c *Controller) error {
		if m == nil {
			m = &noopMonitor{}
		}
		c.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}
