package controller

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/seekr/backend/mock"
	"github.com/poiesic/seekr/cache"
	"github.com/poiesic/seekr/core"
	"github.com/poiesic/seekr/history"
	"github.com/poiesic/seekr/saved"
	"github.com/poiesic/seekr/storage"
	"github.com/poiesic/seekr/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDelay = 30 * time.Millisecond
	waitFor   = 2 * time.Second
	tick      = 5 * time.Millisecond
)

func newTestController(t *testing.T, b *mock.MockBackend, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithDebounceDelay(testDelay)}, opts...)
	c, err := New(b, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestStore(t *testing.T) storage.KVStore {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// gate holds backend calls for a query until released.
type gate struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGate(queries ...string) *gate {
	g := &gate{gates: make(map[string]chan struct{})}
	for _, q := range queries {
		g.gates[q] = make(chan struct{})
	}
	return g
}

func (g *gate) wait(query string) {
	g.mu.Lock()
	ch, ok := g.gates[query]
	g.mu.Unlock()
	if ok {
		<-ch
	}
}

func (g *gate) release(query string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[query])
}

// recordingMonitor counts monitor events.
type recordingMonitor struct {
	mu        sync.Mutex
	hits      int
	misses    int
	issued    map[Channel]int
	applied   map[Channel]int
	discarded map[Channel]int
	failed    map[Channel]int
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{
		issued:    make(map[Channel]int),
		applied:   make(map[Channel]int),
		discarded: make(map[Channel]int),
		failed:    make(map[Channel]int),
	}
}

func (m *recordingMonitor) CacheHit(_, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMonitor) CacheMiss(_, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *recordingMonitor) RequestIssued(ch Channel, _ uint64, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued[ch]++
}

func (m *recordingMonitor) ResponseApplied(ch Channel, _ uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied[ch]++
}

func (m *recordingMonitor) ResponseDiscarded(ch Channel, _ uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded[ch]++
}

func (m *recordingMonitor) SearchFailed(ch Channel, _ uint64, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[ch]++
}

func (m *recordingMonitor) counts() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func (m *recordingMonitor) discards(ch Channel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discarded[ch]
}

func TestNew(t *testing.T) {
	t.Run("requires backend", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrBackendRequired)
	})

	t.Run("invalid options", func(t *testing.T) {
		b := mock.NewMockBackend()
		for _, opt := range []Option{
			WithDebounceDelay(-time.Second),
			WithPageSize(0),
			WithSemanticThreshold(1.5),
		} {
			_, err := New(b, opt)
			assert.ErrorIs(t, err, ErrInvalidOption)
		}
	})

	t.Run("initial state", func(t *testing.T) {
		c := newTestController(t, mock.NewMockBackend())
		state := c.State()
		assert.Empty(t, state.Query)
		assert.Nil(t, state.Results)
		assert.False(t, state.HasSearched)
		assert.False(t, state.IsSearching)
		assert.Equal(t, []string{}, state.RecentSearches)
	})
}

func TestController_CustomerScenario(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	mon := newRecordingMonitor()
	c := newTestController(t, b, WithMonitor(mon))

	require.NoError(t, c.Search(ctx, "customer"))
	state := c.State()
	assert.Equal(t, "s1", state.SearchID)
	assert.True(t, state.HasSearched)
	assert.False(t, state.IsSearching)
	assert.Empty(t, state.Error)
	assert.Equal(t, 1, state.TotalResults)
	assert.Equal(t, 1, b.CallCount("Search"))

	// Identical request is served from the cache.
	require.NoError(t, c.Search(ctx, "customer"))
	assert.Equal(t, "s1", c.State().SearchID)
	assert.Equal(t, 1, b.CallCount("Search"))
	hits, misses := mon.counts()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	// A filter change clears the cache and searches again.
	require.NoError(t, c.UpdateFilters(ctx, core.WithTags("pii")))
	assert.Equal(t, 2, b.CallCount("Search"))
	assert.Equal(t, "s2", c.State().SearchID)

	requests := b.SearchRequests()
	require.Len(t, requests, 2)
	assert.Equal(t, []string{"pii"}, requests[1].Filters.Tags)
	assert.Equal(t, core.Pagination{Page: 1, PageSize: DefaultPageSize}, requests[1].Pagination)
}

func TestController_FilterChangeInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	c := newTestController(t, b)

	require.NoError(t, c.Search(ctx, "a"))
	require.NoError(t, c.Search(ctx, "b"))
	require.Equal(t, 2, b.CallCount("Search"))

	require.NoError(t, c.UpdateFilters(ctx, core.WithOwners("data-eng")))
	assert.Equal(t, 3, b.CallCount("Search"), "re-search of current query")

	require.NoError(t, c.ResetFilters(ctx))
	assert.Equal(t, 4, b.CallCount("Search"))

	// "a" was cached under the same filters before the changes.
	require.NoError(t, c.Search(ctx, "a"))
	assert.Equal(t, 5, b.CallCount("Search"))
}

func TestController_UpdateFilters(t *testing.T) {
	ctx := context.Background()

	t.Run("no change keeps cache", func(t *testing.T) {
		b := mock.NewMockBackend()
		store, err := cache.New()
		require.NoError(t, err)
		c := newTestController(t, b, WithCache(store))

		require.NoError(t, c.Search(ctx, "a"))
		require.NoError(t, c.UpdateFilters(ctx, core.WithTags()))
		assert.Equal(t, 1, store.Len())
		assert.Equal(t, 1, b.CallCount("Search"))
	})

	t.Run("before any search only updates filters", func(t *testing.T) {
		b := mock.NewMockBackend()
		c := newTestController(t, b)

		require.NoError(t, c.UpdateFilters(ctx, core.WithAssetTypes("table")))
		assert.Equal(t, 0, b.CallCount("Search"))
		assert.Equal(t, []string{"table"}, c.State().Filters.AssetTypes)
	})

	t.Run("invalid filters rejected", func(t *testing.T) {
		b := mock.NewMockBackend()
		c := newTestController(t, b)

		err := c.UpdateFilters(ctx, core.WithQualityRange(0.9, 0.1))
		assert.ErrorIs(t, err, core.ErrInvalidFilters)
		assert.Nil(t, c.State().Filters.Quality)
	})
}

func TestController_CacheBound(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	store, err := cache.New(cache.WithCapacity(2))
	require.NoError(t, err)
	c := newTestController(t, b, WithCache(store))

	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, c.Search(ctx, q))
	}
	assert.Equal(t, 2, store.Len())

	require.NoError(t, c.Search(ctx, "c"))
	assert.Equal(t, 3, b.CallCount("Search"), "c is cached")

	require.NoError(t, c.Search(ctx, "a"))
	assert.Equal(t, 4, b.CallCount("Search"), "a was evicted first")
}

func TestController_UpdateSort(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	c := newTestController(t, b)

	// Sorting before a search only records the option.
	byName := core.SortOptions{Field: "name", Direction: core.SortAscending}
	require.NoError(t, c.UpdateSort(ctx, byName))
	assert.Equal(t, 0, b.CallCount("Search"))
	require.NoError(t, c.UpdateSort(ctx, core.SortOptions{}))

	require.NoError(t, c.Search(ctx, "orders"))
	require.NoError(t, c.UpdateSort(ctx, byName))
	assert.Equal(t, 2, b.CallCount("Search"))
	assert.Equal(t, byName, b.SearchRequests()[1].Sort)
	assert.Equal(t, "s2", c.State().SearchID)

	// Sort is part of the cache key, so switching back is a hit.
	require.NoError(t, c.UpdateSort(ctx, core.SortOptions{}))
	assert.Equal(t, 2, b.CallCount("Search"))
	assert.Equal(t, "s1", c.State().SearchID)

	err := c.UpdateSort(ctx, core.SortOptions{Field: "name", Direction: "sideways"})
	assert.ErrorIs(t, err, core.ErrInvalidSortDirection)
}

func TestController_DebounceCoalescesInput(t *testing.T) {
	b := mock.NewMockBackend()
	c := newTestController(t, b)

	for _, text := range []string{"c", "cu", "cus", "cust", "custo"} {
		require.NoError(t, c.UpdateQuery(text))
	}
	assert.Equal(t, "custo", c.State().Query, "query is set immediately")

	require.Eventually(t, func() bool {
		return b.CallCount("Search") == 1
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		return c.State().SearchID == "s1"
	}, waitFor, tick)

	time.Sleep(3 * testDelay)
	assert.Equal(t, 1, b.CallCount("Search"))
	assert.Equal(t, "custo", b.SearchRequests()[0].Query)
}

func TestController_ExplicitSearchCancelsDebounce(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	c := newTestController(t, b)

	require.NoError(t, c.UpdateQuery("draft"))
	require.NoError(t, c.Search(ctx, "final"))

	time.Sleep(3 * testDelay)
	assert.Equal(t, 1, b.CallCount("Search"))
	assert.Equal(t, "final", b.SearchRequests()[0].Query)
}

func TestController_BlankInput(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	c := newTestController(t, b)

	require.NoError(t, c.Search(ctx, "   "))
	assert.Equal(t, 0, b.CallCount("Search"))

	require.NoError(t, c.Search(ctx, "orders"))
	require.NoError(t, c.UpdateQuery("ord"))
	require.NoError(t, c.UpdateQuery(" \t"))

	state := c.State()
	assert.Empty(t, state.Query)
	assert.Nil(t, state.Results)
	assert.Nil(t, state.Suggestions)
	assert.False(t, state.HasSearched)
	assert.Empty(t, state.SearchID)

	time.Sleep(3 * testDelay)
	assert.Equal(t, 1, b.CallCount("Search"), "pending search was cancelled")
}

func TestController_Suggestions(t *testing.T) {
	b := mock.NewMockBackend()
	c := newTestController(t, b, WithDebounceDelay(time.Hour))

	require.NoError(t, c.UpdateQuery("c"))
	assert.Nil(t, c.State().Suggestions)
	assert.False(t, c.State().IsSuggestionsLoading)
	assert.Equal(t, 0, b.CallCount("Suggest"))

	require.NoError(t, c.UpdateQuery("cu"))
	require.Eventually(t, func() bool {
		s := c.State()
		return !s.IsSuggestionsLoading && len(s.Suggestions) == 1
	}, waitFor, tick)
	assert.Equal(t, "cus", c.State().Suggestions[0].Text)

	t.Run("errors clear suggestions", func(t *testing.T) {
		b := mock.NewMockBackend()
		b.SuggestFunc = func(_ context.Context, _ core.SuggestRequest) ([]core.Suggestion, error) {
			return nil, errors.New("unavailable")
		}
		c := newTestController(t, b, WithDebounceDelay(time.Hour))

		require.NoError(t, c.UpdateQuery("cu"))
		require.Eventually(t, func() bool {
			return !c.State().IsSuggestionsLoading
		}, waitFor, tick)
		state := c.State()
		assert.Nil(t, state.Suggestions)
		assert.Empty(t, state.Error)
	})
}

func TestController_OutOfOrderPrimary(t *testing.T) {
	ctx := context.Background()
	g := newGate("a", "b")
	b := mock.NewMockBackend()
	b.SearchFunc = func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
		g.wait(req.Query)
		return &core.SearchResponse{SearchID: "id-" + req.Query, Total: 1}, nil
	}
	mon := newRecordingMonitor()
	c := newTestController(t, b, WithMonitor(mon))

	errA := make(chan error, 1)
	go func() { errA <- c.Search(ctx, "a") }()
	require.Eventually(t, func() bool { return b.CallCount("Search") == 1 }, waitFor, tick)
	assert.True(t, c.State().IsSearching)

	errB := make(chan error, 1)
	go func() { errB <- c.Search(ctx, "b") }()
	require.Eventually(t, func() bool { return b.CallCount("Search") == 2 }, waitFor, tick)

	g.release("b")
	require.NoError(t, <-errB)
	assert.Equal(t, "id-b", c.State().SearchID)

	g.release("a")
	assert.ErrorIs(t, <-errA, ErrSuperseded)

	state := c.State()
	assert.Equal(t, "id-b", state.SearchID)
	assert.Equal(t, "b", state.Query)
	assert.False(t, state.IsSearching)
	assert.Equal(t, 1, mon.discards(ChannelPrimary))
}

func TestController_OutOfOrderSemantic(t *testing.T) {
	ctx := context.Background()
	g := newGate("first", "second")
	b := mock.NewMockBackend()
	b.SemanticSearchFunc = func(_ context.Context, req core.SemanticRequest) (*core.SearchResponse, error) {
		g.wait(req.Query)
		return &core.SearchResponse{SearchID: "sem-" + req.Query}, nil
	}
	mon := newRecordingMonitor()
	c := newTestController(t, b, WithMonitor(mon))

	errFirst := make(chan error, 1)
	go func() { errFirst <- c.SemanticSearch(ctx, "first") }()
	require.Eventually(t, func() bool { return b.CallCount("SemanticSearch") == 1 }, waitFor, tick)

	errSecond := make(chan error, 1)
	go func() { errSecond <- c.SemanticSearch(ctx, "second") }()
	require.Eventually(t, func() bool { return b.CallCount("SemanticSearch") == 2 }, waitFor, tick)

	g.release("second")
	require.NoError(t, <-errSecond)
	g.release("first")
	assert.ErrorIs(t, <-errFirst, ErrSuperseded)

	assert.Equal(t, "sem-second", c.State().SearchID)
	assert.Equal(t, 1, mon.discards(ChannelSemantic))
}

func TestController_OutOfOrderSuggestions(t *testing.T) {
	g := newGate("ab", "abc")
	b := mock.NewMockBackend()
	b.SuggestFunc = func(_ context.Context, req core.SuggestRequest) ([]core.Suggestion, error) {
		g.wait(req.Query)
		return []core.Suggestion{{Text: req.Query + "-done", Source: core.SuggestionSourceQuery}}, nil
	}
	mon := newRecordingMonitor()
	c := newTestController(t, b, WithDebounceDelay(time.Hour), WithMonitor(mon))

	require.NoError(t, c.UpdateQuery("ab"))
	require.NoError(t, c.UpdateQuery("abc"))
	assert.True(t, c.State().IsSuggestionsLoading)

	g.release("abc")
	require.Eventually(t, func() bool {
		s := c.State()
		return len(s.Suggestions) == 1 && s.Suggestions[0].Text == "abc-done"
	}, waitFor, tick)

	g.release("ab")
	require.Eventually(t, func() bool {
		return mon.discards(ChannelSuggestions) == 1
	}, waitFor, tick)

	state := c.State()
	require.Len(t, state.Suggestions, 1)
	assert.Equal(t, "abc-done", state.Suggestions[0].Text)
	assert.False(t, state.IsSuggestionsLoading)
}

func TestController_CacheHitSupersedesInFlight(t *testing.T) {
	ctx := context.Background()
	g := newGate("slow")
	b := mock.NewMockBackend()
	b.SearchFunc = func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
		g.wait(req.Query)
		return &core.SearchResponse{SearchID: "id-" + req.Query}, nil
	}
	c := newTestController(t, b)

	require.NoError(t, c.Search(ctx, "fast"))

	errSlow := make(chan error, 1)
	go func() { errSlow <- c.Search(ctx, "slow") }()
	require.Eventually(t, func() bool { return b.CallCount("Search") == 2 }, waitFor, tick)

	require.NoError(t, c.Search(ctx, "fast"))
	assert.False(t, c.State().IsSearching)

	g.release("slow")
	assert.ErrorIs(t, <-errSlow, ErrSuperseded)
	assert.Equal(t, "id-fast", c.State().SearchID)
}

// searchingRecorder collects every published snapshot's IsSearching flag.
type searchingRecorder struct {
	mu    sync.Mutex
	flags []bool
}

func (r *searchingRecorder) record(s core.SearchState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = append(r.flags, s.IsSearching)
}

func (r *searchingRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.flags)
}

func TestController_CacheHitNeverShowsSearching(t *testing.T) {
	t.Run("idle controller", func(t *testing.T) {
		ctx := context.Background()
		b := mock.NewMockBackend()
		c := newTestController(t, b)
		require.NoError(t, c.Search(ctx, "customer"))

		rec := &searchingRecorder{}
		defer c.Subscribe(rec.record)()

		require.NoError(t, c.Search(ctx, "customer"))
		require.Equal(t, 1, b.CallCount("Search"), "second search is a cache hit")

		flags := rec.snapshot()
		require.NotEmpty(t, flags)
		assert.NotContains(t, flags, true)
	})

	t.Run("while a miss is in flight", func(t *testing.T) {
		ctx := context.Background()
		g := newGate("slow")
		b := mock.NewMockBackend()
		b.SearchFunc = func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
			g.wait(req.Query)
			return &core.SearchResponse{SearchID: "id-" + req.Query}, nil
		}
		c := newTestController(t, b)
		require.NoError(t, c.Search(ctx, "fast"))

		errSlow := make(chan error, 1)
		go func() { errSlow <- c.Search(ctx, "slow") }()
		require.Eventually(t, func() bool { return c.State().IsSearching }, waitFor, tick)

		rec := &searchingRecorder{}
		defer c.Subscribe(rec.record)()

		require.NoError(t, c.Search(ctx, "fast"))
		g.release("slow")
		assert.ErrorIs(t, <-errSlow, ErrSuperseded)

		flags := rec.snapshot()
		require.NotEmpty(t, flags)
		assert.NotContains(t, flags, true)
	})
}

func TestController_RejectsNonFiniteFilters(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	c := newTestController(t, b)
	require.NoError(t, c.Search(ctx, "customer"))

	err := c.UpdateFilters(ctx, core.WithQualityRange(math.NaN(), 1))
	assert.ErrorIs(t, err, core.ErrInvalidRange)
	assert.ErrorIs(t, c.UpdateFilters(ctx, core.WithQualityRange(math.Inf(-1), math.Inf(1))), core.ErrInvalidRange)

	for _, shared := range []string{
		"q=x&quality_min=NaN&quality_max=NaN",
		"q=x&quality_min=-Inf&quality_max=Inf",
		"q=x&created_from=10000-01-01T00:00:00Z",
	} {
		assert.ErrorIs(t, c.ApplyShare(ctx, shared), ErrInvalidShare, shared)
	}

	state := c.State()
	assert.Equal(t, "customer", state.Query)
	assert.Nil(t, state.Filters.Quality)

	// The loop is still serving requests.
	require.NoError(t, c.UpdateFilters(ctx, core.WithQualityRange(0.5, 1)))
	assert.Equal(t, 2, b.CallCount("Search"))
}

func TestController_StaleWhileError(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	b.SearchFunc = func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
		if req.Query == "broken" {
			return nil, errors.New("service unavailable")
		}
		return &core.SearchResponse{SearchID: "id-" + req.Query, Total: 3}, nil
	}
	c := newTestController(t, b)

	require.NoError(t, c.Search(ctx, "good"))
	before := c.State().Results

	err := c.Search(ctx, "broken")
	require.ErrorIs(t, err, ErrSearchFailed)

	state := c.State()
	assert.Equal(t, before, state.Results)
	assert.Equal(t, 3, state.TotalResults)
	assert.Equal(t, "search failed: service unavailable", state.Error)
	assert.True(t, state.HasSearched)
	assert.False(t, state.IsSearching)

	// The next success clears the error.
	require.NoError(t, c.Search(ctx, "good again"))
	assert.Empty(t, c.State().Error)
}

func TestController_BackendPanicIsFailure(t *testing.T) {
	b := mock.NewMockBackend()
	b.SearchFunc = func(_ context.Context, _ core.SearchRequest) (*core.SearchResponse, error) {
		panic("boom")
	}
	c := newTestController(t, b)

	err := c.Search(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.Contains(t, c.State().Error, "boom")
}

func TestController_ClearQueryInvalidatesInFlight(t *testing.T) {
	ctx := context.Background()
	g := newGate("a")
	b := mock.NewMockBackend()
	b.SearchFunc = func(_ context.Context, req core.SearchRequest) (*core.SearchResponse, error) {
		g.wait(req.Query)
		return &core.SearchResponse{SearchID: "id-" + req.Query}, nil
	}
	store, err := cache.New()
	require.NoError(t, err)
	c := newTestController(t, b, WithCache(store))

	require.NoError(t, c.Search(ctx, "cached"))

	errA := make(chan error, 1)
	go func() { errA <- c.Search(ctx, "a") }()
	require.Eventually(t, func() bool { return b.CallCount("Search") == 2 }, waitFor, tick)

	require.NoError(t, c.ClearQuery())
	g.release("a")
	assert.ErrorIs(t, <-errA, ErrSuperseded)

	state := c.State()
	assert.Empty(t, state.Query)
	assert.Nil(t, state.Results)
	assert.False(t, state.HasSearched)
	assert.False(t, state.IsSearching)
	assert.Equal(t, 1, store.Len(), "cache survives clear")
}

func TestController_History(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)
	hist, err := history.NewPersister(kv)
	require.NoError(t, err)

	b := mock.NewMockBackend()
	c := newTestController(t, b, WithHistory(hist))

	require.NoError(t, c.Search(ctx, "x"))
	require.NoError(t, c.Search(ctx, "y"))
	assert.Equal(t, []string{"y", "x"}, c.State().RecentSearches)

	// Cache hits do not touch history.
	require.NoError(t, c.Search(ctx, "x"))
	assert.Equal(t, []string{"y", "x"}, c.State().RecentSearches)

	// A network search of an older entry moves it to the front.
	require.NoError(t, c.UpdateFilters(ctx, core.WithTags("pii")))
	assert.Equal(t, []string{"x", "y"}, c.State().RecentSearches)

	// History is reloaded by a new controller over the same store.
	reloaded, err := history.NewPersister(kv)
	require.NoError(t, err)
	c2 := newTestController(t, b, WithHistory(reloaded))
	assert.Equal(t, []string{"x", "y"}, c2.State().RecentSearches)

	require.NoError(t, c2.ClearHistory(ctx))
	assert.Empty(t, c2.State().RecentSearches)
	fresh, err := history.NewPersister(kv)
	require.NoError(t, err)
	assert.Empty(t, fresh.Load(ctx))
}

func TestController_AlternateModes(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	var semantic core.SemanticRequest
	b.SemanticSearchFunc = func(_ context.Context, req core.SemanticRequest) (*core.SearchResponse, error) {
		semantic = req
		return &core.SearchResponse{SearchID: "sem"}, nil
	}
	store, err := cache.New()
	require.NoError(t, err)
	c := newTestController(t, b, WithCache(store), WithSemanticThreshold(0.75), WithPageSize(5))

	require.NoError(t, c.NaturalLanguageSearch(ctx, "tables owned by finance"))
	state := c.State()
	assert.Equal(t, "nl1", state.SearchID)
	assert.Equal(t, "tables owned by finance", state.Query)
	assert.True(t, state.HasSearched)

	require.NoError(t, c.FacetedSearch(ctx, "orders", "assetType", "owner"))
	state = c.State()
	assert.Equal(t, "f1", state.SearchID)
	require.Len(t, state.Facets, 2)
	assert.Equal(t, "assetType", state.Facets[0].Field)

	require.NoError(t, c.SemanticSearch(ctx, "churn"))
	assert.Equal(t, "sem", c.State().SearchID)
	assert.InDelta(t, 0.75, semantic.Threshold, 1e-6)
	assert.Equal(t, 5, semantic.Pagination.PageSize)

	assert.Equal(t, 0, store.Len(), "alternate modes are not cached")
	assert.Equal(t, 0, b.CallCount("Search"))

	require.NoError(t, c.NaturalLanguageSearch(ctx, "  "))
	assert.Equal(t, 1, b.CallCount("NaturalLanguageSearch"))
}

func TestController_SavedSearches(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		c := newTestController(t, mock.NewMockBackend())
		_, err := c.SaveSearch(ctx, "mine")
		assert.ErrorIs(t, err, ErrSavedSearchesDisabled)
		assert.ErrorIs(t, c.LoadSavedSearch(ctx, "x"), ErrSavedSearchesDisabled)
		assert.ErrorIs(t, c.DeleteSavedSearch(ctx, "x"), ErrSavedSearchesDisabled)
	})

	kv := newTestStore(t)
	mgr, err := saved.NewManager(kv, saved.WithOwner("alice"))
	require.NoError(t, err)
	b := mock.NewMockBackend()
	c := newTestController(t, b, WithSavedSearches(mgr))

	require.NoError(t, c.UpdateFilters(ctx, core.WithTags("pii")))
	require.NoError(t, c.Search(ctx, "customers"))
	s, err := c.SaveSearch(ctx, "  PII customers ")
	require.NoError(t, err)
	assert.Equal(t, "PII customers", s.Name)
	assert.Equal(t, "customers", s.Query)
	assert.Equal(t, "alice", s.CreatedBy)
	require.Len(t, c.State().SavedSearches, 1)

	_, err = c.SaveSearch(ctx, " ")
	assert.ErrorIs(t, err, core.ErrInvalidSavedSearch)

	require.NoError(t, c.ClearQuery())
	require.NoError(t, c.ResetFilters(ctx))
	calls := b.CallCount("Search")

	require.NoError(t, c.LoadSavedSearch(ctx, s.ID))
	state := c.State()
	assert.Equal(t, "customers", state.Query)
	assert.Equal(t, []string{"pii"}, state.Filters.Tags)
	assert.Equal(t, calls+1, b.CallCount("Search"), "filters changed so the cache was cleared")
	assert.False(t, state.SavedSearches[0].LastUsed.Before(s.LastUsed))

	updated, err := c.UpdateSavedSearch(ctx, s.ID, func(s *core.SavedSearch) {
		s.Name = "renamed"
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "renamed", c.State().SavedSearches[0].Name)

	// Saved searches are loaded on start.
	c2 := newTestController(t, b, WithSavedSearches(mgr))
	require.Len(t, c2.State().SavedSearches, 1)

	require.NoError(t, c.DeleteSavedSearch(ctx, s.ID))
	assert.Empty(t, c.State().SavedSearches)
	assert.ErrorIs(t, c.DeleteSavedSearch(ctx, s.ID), saved.ErrNotFound)
	assert.ErrorIs(t, c.LoadSavedSearch(ctx, s.ID), saved.ErrNotFound)
}

func TestController_ShareSearch(t *testing.T) {
	ctx := context.Background()
	b := mock.NewMockBackend()
	c := newTestController(t, b)

	require.NoError(t, c.UpdateFilters(ctx, core.WithTags("pii"), core.WithQualityRange(0.5, 1)))
	require.NoError(t, c.Search(ctx, "customer"))
	shared := c.ShareSearch()

	other := newTestController(t, mock.NewMockBackend())
	require.NoError(t, other.ApplyShare(ctx, shared))
	state := other.State()
	assert.Equal(t, "customer", state.Query)
	assert.True(t, state.Filters.Equal(c.State().Filters))
	assert.True(t, state.HasSearched)

	assert.ErrorIs(t, other.ApplyShare(ctx, "quality_min=bad"), ErrInvalidShare)
}

func TestController_Subscribe(t *testing.T) {
	ctx := context.Background()
	c := newTestController(t, mock.NewMockBackend())

	var (
		mu     sync.Mutex
		states []core.SearchState
	)
	unsubscribe := c.Subscribe(func(s core.SearchState) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})

	require.NoError(t, c.Search(ctx, "orders"))

	mu.Lock()
	require.GreaterOrEqual(t, len(states), 2)
	assert.True(t, states[0].IsSearching)
	last := states[len(states)-1]
	mu.Unlock()
	assert.Equal(t, "s1", last.SearchID)
	assert.False(t, last.IsSearching)

	unsubscribe()
	unsubscribe()
	mu.Lock()
	n := len(states)
	mu.Unlock()

	require.NoError(t, c.ClearQuery())
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, states, n)
}

func TestController_Close(t *testing.T) {
	b := mock.NewMockBackend()
	c, err := New(b, WithDebounceDelay(testDelay))
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuery("pending"))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	time.Sleep(3 * testDelay)
	assert.Equal(t, 0, b.CallCount("Search"))

	ctx := context.Background()
	assert.ErrorIs(t, c.Search(ctx, "x"), ErrClosed)
	assert.ErrorIs(t, c.UpdateQuery("x"), ErrClosed)
	assert.ErrorIs(t, c.ClearQuery(), ErrClosed)
	assert.ErrorIs(t, c.UpdateFilters(ctx, core.WithTags("a")), ErrClosed)
	assert.Equal(t, "pending", c.State().Query, "last snapshot stays readable")
}
