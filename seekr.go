// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package seekr

import (
	"errors"
	"log/slog"

	"github.com/poiesic/seekr/ai"
	"github.com/poiesic/seekr/ai/openai"
	"github.com/poiesic/seekr/backend"
	"github.com/poiesic/seekr/backend/memory"
	"github.com/poiesic/seekr/backend/remote"
	"github.com/poiesic/seekr/cache"
	"github.com/poiesic/seekr/config"
	"github.com/poiesic/seekr/controller"
	"github.com/poiesic/seekr/history"
	"github.com/poiesic/seekr/saved"
	"github.com/poiesic/seekr/storage"
	"github.com/poiesic/seekr/storage/badger"
	"github.com/poiesic/seekr/suggest"
)

// Seekr bundles the storage, backend and AI provider a controller needs.
type Seekr struct {
	cfg      *config.Config
	store    storage.KVStore
	backend  backend.Backend
	provider ai.AIProvider
	history  *history.Persister
	saved    *saved.Manager
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	backend  backend.Backend
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithBackend uses b instead of the backend selected by the configuration.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithProvider uses p instead of creating an OpenAI-compatible provider.
// The caller keeps ownership of p.
func WithProvider(p ai.AIProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open creates the components described by cfg. A nil cfg uses an
// in-memory store and the bundled sample catalog.
func Open(cfg *config.Config, opts ...Option) (*Seekr, error) {
	if cfg == nil {
		cfg = &config.Config{
			Timeout:           remote.DefaultTimeout,
			DebounceDelay:     controller.DefaultDebounceDelay,
			CacheSize:         cache.DefaultCapacity,
			HistorySize:       history.DefaultMaxItems,
			PageSize:          controller.DefaultPageSize,
			SemanticThreshold: controller.DefaultSemanticThreshold,
			Suggestions:       true,
			MinSuggestLength:  suggest.DefaultMinQueryLength,
			MaxSuggestions:    suggest.DefaultMaxSuggestions,
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	s := &Seekr{cfg: cfg, logger: o.logger}
	if err := s.open(o); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Seekr) open(o *options) error {
	var err error
	if s.cfg.DBPath == "" {
		s.store, err = badger.NewMemoryStore()
	} else {
		s.store, err = badger.NewStore(s.cfg.DBPath)
	}
	if err != nil {
		return err
	}

	provider := o.provider
	if provider == nil && s.cfg.HasAI() {
		if s.provider, err = openai.NewProvider(s.cfg.AIConfig(), openai.WithLogger(s.logger)); err != nil {
			return err
		}
		provider = s.provider
	}

	s.backend = o.backend
	if s.backend == nil {
		if s.backend, err = s.newBackend(provider); err != nil {
			return err
		}
	}

	if s.history, err = history.NewPersister(s.store,
		history.WithMaxItems(s.cfg.HistorySize),
		history.WithLogger(s.logger),
	); err != nil {
		return err
	}

	s.saved, err = saved.NewManager(s.store,
		saved.WithOwner(s.cfg.Owner),
		saved.WithLogger(s.logger),
	)
	return err
}

func (s *Seekr) newBackend(provider ai.AIProvider) (backend.Backend, error) {
	if s.cfg.HasRemoteBackend() {
		opts := []remote.Option{
			remote.WithAPIKey(s.cfg.APIKey),
			remote.WithTimeout(s.cfg.Timeout),
			remote.WithLogger(s.logger),
		}
		if provider != nil {
			opts = append(opts, remote.WithEmbedder(provider.Embedder()))
		}
		return remote.NewClient(s.cfg.BackendURL, opts...)
	}

	assets := memory.SampleCatalog()
	if s.cfg.Catalog != "" {
		var err error
		if assets, err = memory.LoadCatalog(s.cfg.Catalog); err != nil {
			return nil, err
		}
	}
	opts := []memory.Option{memory.WithLogger(s.logger)}
	if provider != nil {
		opts = append(opts, memory.WithProvider(provider))
	}
	return memory.NewEngine(assets, opts...)
}

// NewController creates a controller over the configured backend with
// persistent history and saved searches. opts are applied after the
// configured defaults.
func (s *Seekr) NewController(opts ...controller.Option) (*controller.Controller, error) {
	store, err := cache.New(cache.WithCapacity(s.cfg.CacheSize))
	if err != nil {
		return nil, err
	}
	base := []controller.Option{
		controller.WithCache(store),
		controller.WithHistory(s.history),
		controller.WithSavedSearches(s.saved),
		controller.WithDebounceDelay(s.cfg.DebounceDelay),
		controller.WithPageSize(s.cfg.PageSize),
		controller.WithSemanticThreshold(s.cfg.SemanticThreshold),
		controller.WithLogger(s.logger),
		controller.WithSuggestOptions(
			suggest.WithEnabled(s.cfg.Suggestions),
			suggest.WithMinQueryLength(s.cfg.MinSuggestLength),
			suggest.WithMaxSuggestions(s.cfg.MaxSuggestions),
		),
	}
	return controller.New(s.backend, append(base, opts...)...)
}

// Backend returns the search backend.
func (s *Seekr) Backend() backend.Backend {
	return s.backend
}

// History returns the search history persister.
func (s *Seekr) History() *history.Persister {
	return s.history
}

// SavedSearches returns the saved search manager.
func (s *Seekr) SavedSearches() *saved.Manager {
	return s.saved
}

// Close releases the AI provider and the store.
func (s *Seekr) Close() error {
	var errs []error
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("error closing store", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
