package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/seekr/backend"
	"github.com/poiesic/seekr/cache"
	"github.com/poiesic/seekr/core"
	"github.com/poiesic/seekr/debounce"
	"github.com/poiesic/seekr/history"
	"github.com/poiesic/seekr/saved"
	"github.com/poiesic/seekr/suggest"
)

const mailboxSize = 64

// call is a single backend round trip.
type call func(ctx context.Context) (*core.SearchResponse, error)

type listener struct {
	id uint64
	fn func(core.SearchState)
}

// Controller turns user input into debounced, cached backend searches and
// keeps a consolidated SearchState.
//
// Every state transition runs on a single goroutine. Public methods post a
// closure to its mailbox and wait for it to run; timer fires and backend
// completions are posted the same way. Backend calls run on a bounded pool
// and are tagged with a per-channel sequence number so that late responses
// can be recognized and discarded.
type Controller struct {
	backend     backend.Backend
	cache       *cache.Store
	history     *history.Persister
	saved       *saved.Manager
	suggest     *suggest.Coordinator
	ownsSuggest bool
	suggestOpts []suggest.Option
	debounce    *debounce.Scheduler
	pool        *ants.Pool
	monitor     Monitor
	logger      *slog.Logger

	delay           time.Duration
	pageSize        int
	poolSize        int
	highlight       bool
	includeMetadata bool
	threshold       float32

	ctx       context.Context
	cancel    context.CancelFunc
	mailbox   chan func()
	done      chan struct{}
	closeOnce sync.Once
	snapshot  atomic.Pointer[core.SearchState]

	// Owned by the loop goroutine.
	state            core.SearchState
	primarySeq       uint64
	semanticSeq      uint64
	primaryInFlight  bool
	semanticInFlight bool
	debounceGen      uint64
	listeners        []listener
	nextListener     uint64
}

// New creates a controller over b and starts its loop. Persisted history
// and saved searches are loaded before New returns. Call Close to stop it.
func New(b backend.Backend, opts ...Option) (*Controller, error) {
	if b == nil {
		return nil, ErrBackendRequired
	}

	c := &Controller{
		backend:   b,
		debounce:  debounce.New(),
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
		delay:     DefaultDebounceDelay,
		pageSize:  DefaultPageSize,
		poolSize:  DefaultPoolSize,
		threshold: DefaultSemanticThreshold,
		mailbox:   make(chan func(), mailboxSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "controller")

	if c.cache == nil {
		store, err := cache.New()
		if err != nil {
			return nil, err
		}
		c.cache = store
	}

	pool, err := ants.NewPool(c.poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("creating search pool: %w", err)
	}
	c.pool = pool

	if c.suggest == nil {
		suggestOpts := append([]suggest.Option{suggest.WithLogger(c.logger)}, c.suggestOpts...)
		coord, err := suggest.NewCoordinator(b, suggestOpts...)
		if err != nil {
			pool.Release()
			return nil, err
		}
		c.suggest = coord
		c.ownsSuggest = true
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.state.RecentSearches = []string{}
	if c.history != nil {
		c.state.RecentSearches = c.history.Load(c.ctx)
	}
	if c.saved != nil {
		list, err := c.saved.List(c.ctx)
		if err != nil {
			c.logger.Warn("error loading saved searches", "err", err)
		}
		c.state.SavedSearches = list
	}
	c.publish()

	go c.run()
	return c, nil
}

// State returns a snapshot of the current search state.
func (c *Controller) State() core.SearchState {
	return c.snapshot.Load().Clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the controller goroutine: it must return quickly and must not
// call back into the Controller. The returned function unregisters fn.
func (c *Controller) Subscribe(fn func(core.SearchState)) func() {
	var id uint64
	if err := c.do(func() {
		c.nextListener++
		id = c.nextListener
		c.listeners = append(c.listeners, listener{id: id, fn: fn})
	}); err != nil {
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = c.do(func() {
				for i, l := range c.listeners {
					if l.id == id {
						c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
						break
					}
				}
			})
		})
	}
}

// UpdateQuery records keystroke input. The query is set immediately,
// suggestions are fetched immediately and a search is scheduled once input
// has been quiet for the debounce delay. Blank text clears the query.
func (c *Controller) UpdateQuery(text string) error {
	return c.do(func() {
		if core.IsBlank(text) {
			c.clearQuery()
			return
		}
		c.state.Query = text
		c.fetchSuggestions(text)
		c.scheduleSearch()
		c.notify()
	})
}

// Search runs query immediately, cancelling any scheduled search. A cached
// result is applied without a backend call. Otherwise Search waits until the
// response has been applied or discarded; ctx bounds only the wait.
//
// A failed search returns an error wrapping ErrSearchFailed. A response that
// arrived after a newer request returns ErrSuperseded. Blank queries are
// ignored.
func (c *Controller) Search(ctx context.Context, query string) error {
	var wait <-chan error
	if err := c.do(func() {
		if core.IsBlank(query) {
			return
		}
		c.cancelDebounce()
		wait = c.search(query)
	}); err != nil {
		return err
	}
	return c.await(ctx, wait)
}

// ClearQuery resets the query, results, suggestions and error, cancels the
// scheduled search and invalidates requests in flight. Cache and history are
// kept.
func (c *Controller) ClearQuery() error {
	return c.do(c.clearQuery)
}

// UpdateFilters merges opts into the current filters. Any change clears the
// result cache and, if a search has completed, searches again immediately.
func (c *Controller) UpdateFilters(ctx context.Context, opts ...core.FilterOption) error {
	var (
		wait    <-chan error
		invalid error
	)
	if err := c.do(func() {
		next := c.state.Filters.Apply(opts...)
		if invalid = core.ValidateFilters(next); invalid != nil {
			return
		}
		wait = c.setFilters(next)
	}); err != nil {
		return err
	}
	if invalid != nil {
		return invalid
	}
	return c.await(ctx, wait)
}

// ResetFilters removes every filter, with the same effects as UpdateFilters.
func (c *Controller) ResetFilters(ctx context.Context) error {
	var wait <-chan error
	if err := c.do(func() {
		wait = c.setFilters(core.SearchFilters{})
	}); err != nil {
		return err
	}
	return c.await(ctx, wait)
}

// UpdateSort changes the result ordering. Sort options are part of the cache
// key, so the cache is kept. If a search has completed it is repeated with
// the new ordering.
func (c *Controller) UpdateSort(ctx context.Context, sort core.SortOptions) error {
	if err := core.ValidateSort(sort); err != nil {
		return err
	}
	var wait <-chan error
	if err := c.do(func() {
		if sort == c.state.Sort {
			return
		}
		c.state.Sort = sort
		c.notify()
		wait = c.research()
	}); err != nil {
		return err
	}
	return c.await(ctx, wait)
}

// NaturalLanguageSearch lets the backend interpret free-form text.
// Results are not cached.
func (c *Controller) NaturalLanguageSearch(ctx context.Context, text string) error {
	return c.alternate(ctx, text, ChannelPrimary, func() call {
		req := core.NaturalLanguageRequest{
			Query:      text,
			Filters:    c.state.Filters.Clone(),
			Pagination: c.pagination(),
		}
		return func(ctx context.Context) (*core.SearchResponse, error) {
			return c.backend.NaturalLanguageSearch(ctx, req)
		}
	})
}

// SemanticSearch ranks results by embedding similarity. It has its own
// request sequence, independent of keyword searches. Results are not cached.
func (c *Controller) SemanticSearch(ctx context.Context, text string) error {
	return c.alternate(ctx, text, ChannelSemantic, func() call {
		req := core.SemanticRequest{
			Query:      text,
			Threshold:  c.threshold,
			Filters:    c.state.Filters.Clone(),
			Pagination: c.pagination(),
		}
		return func(ctx context.Context) (*core.SearchResponse, error) {
			return c.backend.SemanticSearch(ctx, req)
		}
	})
}

// FacetedSearch searches text and asks the backend for the named facets.
// Results are not cached.
func (c *Controller) FacetedSearch(ctx context.Context, text string, fields ...string) error {
	return c.alternate(ctx, text, ChannelPrimary, func() call {
		req := core.FacetedRequest{
			SearchRequest: c.request(text),
			FacetFields:   append([]string(nil), fields...),
		}
		return func(ctx context.Context) (*core.SearchResponse, error) {
			return c.backend.FacetedSearch(ctx, req)
		}
	})
}

// ClearHistory empties the persisted search history.
func (c *Controller) ClearHistory(ctx context.Context) error {
	return c.do(func() {
		if c.history != nil {
			c.history.Clear(ctx)
		}
		c.state.RecentSearches = []string{}
		c.notify()
	})
}

// ShareSearch encodes the current query and filters for sharing.
// See DecodeShare.
func (c *Controller) ShareSearch() string {
	s := c.snapshot.Load()
	return EncodeShare(s.Query, s.Filters)
}

// ApplyShare loads the query and filters from a shared string and searches.
func (c *Controller) ApplyShare(ctx context.Context, encoded string) error {
	query, filters, err := DecodeShare(encoded)
	if err != nil {
		return err
	}
	var wait <-chan error
	if err := c.do(func() {
		wait = c.load(query, filters)
	}); err != nil {
		return err
	}
	return c.await(ctx, wait)
}

// Close stops the controller. Scheduled searches are cancelled and responses
// still in flight are dropped. Close is idempotent.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.debounce.Cancel()
		c.cancel()
		<-c.done
		c.pool.Release()
		if c.ownsSuggest {
			c.suggest.Release()
		}
	})
	return nil
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case fn := <-c.mailbox:
			fn()
		}
	}
}

// post queues fn for the loop. It reports false once the loop has stopped.
func (c *Controller) post(fn func()) bool {
	select {
	case c.mailbox <- fn:
		return true
	case <-c.done:
		return false
	}
}

// do runs fn on the loop and waits for it to finish.
func (c *Controller) do(fn func()) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	ran := make(chan struct{})
	if !c.post(func() {
		fn()
		close(ran)
	}) {
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-c.done:
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

func (c *Controller) await(ctx context.Context, wait <-chan error) error {
	if wait == nil {
		return nil
	}
	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// The methods below run on the loop goroutine.

func (c *Controller) search(query string) <-chan error {
	c.state.Query = query
	key := cache.Key(query, c.state.Filters, c.state.Sort)
	if hit, ok := c.cache.Get(key); ok {
		c.monitor.CacheHit(key, query)
		// A cached answer supersedes whatever is still in flight.
		c.primarySeq++
		c.primaryInFlight = false
		c.applyResults(hit.Clone())
		c.notify()
		return nil
	}
	c.monitor.CacheMiss(key, query)

	req := c.request(query)
	return c.dispatch(ChannelPrimary, query, key, func(ctx context.Context) (*core.SearchResponse, error) {
		return c.backend.Search(ctx, req)
	})
}

func (c *Controller) alternate(ctx context.Context, text string, ch Channel, build func() call) error {
	var wait <-chan error
	if err := c.do(func() {
		if core.IsBlank(text) {
			return
		}
		c.cancelDebounce()
		c.state.Query = text
		wait = c.dispatch(ch, text, "", build())
	}); err != nil {
		return err
	}
	return c.await(ctx, wait)
}

// dispatch issues fn on channel ch. Responses are cached under key unless
// key is empty. The returned channel receives the outcome once.
func (c *Controller) dispatch(ch Channel, query, key string, fn call) <-chan error {
	seq := c.issue(ch)
	result := make(chan error, 1)
	c.state.Error = ""
	c.monitor.RequestIssued(ch, seq, query)
	c.notify()

	started := time.Now()
	err := c.pool.Submit(func() {
		resp, err := invoke(c.ctx, fn)
		elapsed := time.Since(started)
		c.post(func() {
			c.complete(ch, seq, query, key, resp, elapsed, err, result)
		})
	})
	if err != nil {
		c.complete(ch, seq, query, key, nil, 0, fmt.Errorf("scheduling request: %w", err), result)
	}
	return result
}

func (c *Controller) complete(ch Channel, seq uint64, query, key string, resp *core.SearchResponse, elapsed time.Duration, err error, result chan<- error) {
	if !c.current(ch, seq) {
		c.logger.Debug("discarding superseded response", "channel", ch, "seq", seq, "query", query)
		c.monitor.ResponseDiscarded(ch, seq)
		result <- ErrSuperseded
		return
	}
	c.settle(ch)

	if err != nil {
		failure := fmt.Errorf("%w: %w", ErrSearchFailed, err)
		c.logger.Warn("search failed", "channel", ch, "query", query, "err", err)
		c.state.Error = failure.Error()
		c.state.HasSearched = true
		c.monitor.SearchFailed(ch, seq, err)
		c.notify()
		result <- failure
		return
	}

	results := core.NewResultSet(resp, elapsed)
	if key != "" {
		c.cache.Put(key, results.Clone())
	}
	c.applyResults(results)
	c.recordHistory(query)
	c.monitor.ResponseApplied(ch, seq)
	c.notify()
	result <- nil
}

func (c *Controller) issue(ch Channel) uint64 {
	defer c.refreshSearching()
	if ch == ChannelSemantic {
		c.semanticSeq++
		c.semanticInFlight = true
		return c.semanticSeq
	}
	c.primarySeq++
	c.primaryInFlight = true
	return c.primarySeq
}

func (c *Controller) current(ch Channel, seq uint64) bool {
	if ch == ChannelSemantic {
		return seq == c.semanticSeq
	}
	return seq == c.primarySeq
}

func (c *Controller) settle(ch Channel) {
	if ch == ChannelSemantic {
		c.semanticInFlight = false
	} else {
		c.primaryInFlight = false
	}
	c.refreshSearching()
}

func (c *Controller) refreshSearching() {
	c.state.IsSearching = c.primaryInFlight || c.semanticInFlight
}

func (c *Controller) applyResults(results *core.ResultSet) {
	c.state.Results = results
	c.state.TotalResults = results.Total
	c.state.Facets = results.Facets
	c.state.ExecutionTime = results.ExecutionTime
	c.state.SearchID = results.SearchID
	c.state.HasSearched = true
	c.state.Error = ""
	c.refreshSearching()
}

func (c *Controller) recordHistory(query string) {
	if c.history == nil {
		return
	}
	if latest, ok := c.history.Latest(); ok && latest == query {
		return
	}
	c.state.RecentSearches = c.history.Record(c.ctx, query)
}

func (c *Controller) fetchSuggestions(text string) {
	seq, issued := c.suggest.Fetch(c.ctx, text, func(resp suggest.Response) {
		c.post(func() { c.applySuggestions(resp) })
	})
	c.state.IsSuggestionsLoading = issued
	if !issued {
		c.state.Suggestions = nil
		return
	}
	c.monitor.RequestIssued(ChannelSuggestions, seq, text)
}

func (c *Controller) applySuggestions(resp suggest.Response) {
	if !c.suggest.Accept(&resp) {
		c.monitor.ResponseDiscarded(ChannelSuggestions, resp.Seq)
		return
	}
	c.state.Suggestions = resp.Suggestions
	c.state.IsSuggestionsLoading = false
	c.monitor.ResponseApplied(ChannelSuggestions, resp.Seq)
	c.notify()
}

func (c *Controller) scheduleSearch() {
	c.debounceGen++
	gen := c.debounceGen
	c.debounce.Schedule(func() {
		c.post(func() {
			if gen != c.debounceGen || core.IsBlank(c.state.Query) {
				return
			}
			c.search(c.state.Query)
		})
	}, c.delay)
}

// cancelDebounce drops the scheduled search, including one whose timer has
// already fired but whose closure is still queued.
func (c *Controller) cancelDebounce() {
	c.debounceGen++
	c.debounce.Cancel()
}

func (c *Controller) clearQuery() {
	c.cancelDebounce()
	c.primarySeq++
	c.semanticSeq++
	c.primaryInFlight = false
	c.semanticInFlight = false
	c.suggest.Invalidate()

	c.state.Query = ""
	c.state.Results = nil
	c.state.TotalResults = 0
	c.state.Suggestions = nil
	c.state.Facets = nil
	c.state.IsSearching = false
	c.state.IsSuggestionsLoading = false
	c.state.Error = ""
	c.state.HasSearched = false
	c.state.ExecutionTime = 0
	c.state.SearchID = ""
	c.notify()
}

func (c *Controller) setFilters(next core.SearchFilters) <-chan error {
	if next.Equal(c.state.Filters) {
		return nil
	}
	c.state.Filters = next
	c.cache.Clear()
	c.notify()
	return c.research()
}

// research repeats the current query if a search has completed.
func (c *Controller) research() <-chan error {
	if !c.state.HasSearched || core.IsBlank(c.state.Query) {
		return nil
	}
	c.cancelDebounce()
	return c.search(c.state.Query)
}

// load replaces query and filters, then searches.
func (c *Controller) load(query string, filters core.SearchFilters) <-chan error {
	c.cancelDebounce()
	if !filters.Equal(c.state.Filters) {
		c.state.Filters = filters.Clone()
		c.cache.Clear()
	}
	if core.IsBlank(query) {
		c.state.Query = query
		c.notify()
		return nil
	}
	return c.search(query)
}

func (c *Controller) request(query string) core.SearchRequest {
	return core.SearchRequest{
		Query:            query,
		Filters:          c.state.Filters.Clone(),
		Pagination:       c.pagination(),
		Sort:             c.state.Sort,
		IncludeMetadata:  c.includeMetadata,
		HighlightResults: c.highlight,
	}
}

func (c *Controller) pagination() core.Pagination {
	return core.Pagination{Page: 1, PageSize: c.pageSize}
}

// notify publishes the state and calls listeners.
func (c *Controller) notify() {
	snap := c.publish()
	for _, l := range c.listeners {
		l.fn(snap.Clone())
	}
}

func (c *Controller) publish() core.SearchState {
	snap := c.state.Clone()
	c.snapshot.Store(&snap)
	return snap
}

func invoke(ctx context.Context, fn call) (resp *core.SearchResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return fn(ctx)
}
