package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPlugin struct {
	name string
	ids  []int
}

func (p *testPlugin) String() string { return p.name }

func newTestRegistry(opts ...Option) *Registry[int, *testPlugin] {
	return New(
		func(id int) string { return fmt.Sprintf("id-%02d", id) },
		func(p *testPlugin) []int { return p.ids },
		opts...,
	)
}

func TestRegistry_RegisterLookup(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	p := &testPlugin{name: "multi", ids: []int{1, 2, 3}}
	r.Register(p)

	for _, id := range p.ids {
		got, err := r.Lookup(id)
		require.NoError(t, err)
		assert.Same(t, p, got)
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"id-01", "id-02", "id-03"}, r.Keys())
}

func TestRegistry_LookupMissing(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.Register(&testPlugin{name: "a", ids: []int{2, 1}})

	got, err := r.Lookup(9)
	assert.Nil(t, got)
	require.ErrorIs(t, err, ErrNotRegistered)

	var nrErr *NotRegisteredError
	require.ErrorAs(t, err, &nrErr)
	assert.Equal(t, "id-09", nrErr.Key)
	assert.Equal(t, []string{"id-01", "id-02"}, nrErr.Known)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := newTestRegistry(WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	first := &testPlugin{name: "first", ids: []int{1, 2}}
	second := &testPlugin{name: "second", ids: []int{2}}
	r.Register(first)
	r.Register(second)

	got, err := r.Lookup(1)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = r.Lookup(2)
	require.NoError(t, err)
	assert.Same(t, second, got)

	assert.Contains(t, logs.String(), "plugin replaced")
	assert.Contains(t, logs.String(), "previous=first")
}

func TestRegistry_Set(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	p := &testPlugin{name: "p", ids: []int{1, 2}}
	r.Set(5, p)

	got, err := r.Lookup(5)
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = r.Lookup(1)
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegistry_UnregisterClear(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	r.Register(&testPlugin{name: "p", ids: []int{1, 2, 3}})

	assert.True(t, r.Unregister(2))
	assert.False(t, r.Unregister(2))
	_, err := r.Lookup(2)
	require.ErrorIs(t, err, ErrNotRegistered)
	assert.Equal(t, 2, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Entries())
	_, err = r.Lookup(1)
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegistry_Entries(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	a := &testPlugin{name: "a", ids: []int{3}}
	b := &testPlugin{name: "b", ids: []int{1}}
	r.Register(a)
	r.Register(b)

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "id-01", entries[0].Key)
	assert.Equal(t, 1, entries[0].Entity)
	assert.Same(t, b, entries[0].Plugin)
	assert.Equal(t, "id-03", entries[1].Key)
	assert.Same(t, a, entries[1].Plugin)
}

type failingSource struct{}

func (failingSource) Plugins(string) ([]*testPlugin, error) {
	return nil, errors.New("boom")
}

func TestRegistry_Load(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	n, err := r.Load(StaticSource[*testPlugin]{
		{name: "a", ids: []int{1}},
		{name: "b", ids: []int{2, 3}},
	}, "any")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, r.Len())

	n, err = r.Load(failingSource{}, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
	assert.Zero(t, n)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	t.Parallel()

	r := newTestRegistry()
	p := &testPlugin{name: "p", ids: []int{1, 2, 3, 4}}
	r.Register(p)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Lookup(i%4 + 1)
			assert.NoError(t, err)
			assert.Same(t, p, got)
		}()
	}
	wg.Wait()
}
