package cache

import (
	"fmt"
	"testing"

	"github.com/poiesic/seekr/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results(id string) *core.ResultSet {
	return &core.ResultSet{SearchID: id}
}

func TestNew(t *testing.T) {
	t.Run("default capacity", func(t *testing.T) {
		s, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultCapacity, s.Capacity())
		assert.Equal(t, 0, s.Len())
	})

	t.Run("custom capacity", func(t *testing.T) {
		s, err := New(WithCapacity(3))
		require.NoError(t, err)
		assert.Equal(t, 3, s.Capacity())
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := New(WithCapacity(0))
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})
}

func TestStore_GetPut(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Put("k1", results("s1"))
	got, ok := s.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "s1", got.SearchID)

	entry, ok := s.Entry("k1")
	require.True(t, ok)
	assert.False(t, entry.StoredAt.IsZero())
}

func TestStore_BoundEvictsEarliestInserted(t *testing.T) {
	const k = 7
	s, err := New()
	require.NoError(t, err)

	for i := 0; i < DefaultCapacity+k; i++ {
		s.Put(fmt.Sprintf("key-%d", i), results(fmt.Sprint(i)))
	}

	assert.Equal(t, DefaultCapacity, s.Len())
	for i := 0; i < k; i++ {
		_, ok := s.Get(fmt.Sprintf("key-%d", i))
		assert.False(t, ok, "key-%d should have been evicted", i)
	}
	for i := k; i < DefaultCapacity+k; i++ {
		_, ok := s.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok, "key-%d should be present", i)
	}
}

func TestStore_ReadsDoNotPromote(t *testing.T) {
	s, err := New(WithCapacity(2))
	require.NoError(t, err)

	s.Put("a", results("a"))
	s.Put("b", results("b"))

	// Touching "a" must not save it from eviction
	_, ok := s.Get("a")
	require.True(t, ok)

	s.Put("c", results("c"))
	_, ok = s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b", "c"}, s.Keys())
}

func TestStore_OverwriteKeepsPosition(t *testing.T) {
	s, err := New(WithCapacity(2))
	require.NoError(t, err)

	s.Put("a", results("a1"))
	s.Put("b", results("b"))
	s.Put("a", results("a2"))
	assert.Equal(t, 2, s.Len())

	got, _ := s.Get("a")
	assert.Equal(t, "a2", got.SearchID)

	s.Put("c", results("c"))
	_, ok := s.Get("a")
	assert.False(t, ok, "overwritten key keeps its original insertion slot")
	assert.Equal(t, []string{"b", "c"}, s.Keys())
}

func TestStore_Clear(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.Put("a", results("a"))
	s.Put("b", results("b"))

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())

	s.Put("c", results("c"))
	assert.Equal(t, []string{"c"}, s.Keys())
}

func TestKey(t *testing.T) {
	filters := core.SearchFilters{Tags: []string{"pii", "finance"}, Custom: map[string]string{"x": "1", "y": "2"}}
	reordered := core.SearchFilters{Custom: map[string]string{"y": "2", "x": "1"}, Tags: []string{"finance", "pii"}}
	sort := core.SortOptions{Field: "name", Direction: core.SortAscending}

	t.Run("stable and order independent", func(t *testing.T) {
		assert.Equal(t, Key("customer", filters, sort), Key("customer", reordered, sort))
	})

	t.Run("surrounding whitespace ignored", func(t *testing.T) {
		assert.Equal(t, Key("customer", filters, sort), Key("  customer ", filters, sort))
	})

	t.Run("each component participates", func(t *testing.T) {
		base := Key("customer", filters, sort)
		assert.NotEqual(t, base, Key("Customer", filters, sort))
		assert.NotEqual(t, base, Key("customer", filters.Apply(core.WithTags("pii")), sort))
		assert.NotEqual(t, base, Key("customer", filters, core.SortOptions{Field: "name", Direction: core.SortDescending}))
	})
}
