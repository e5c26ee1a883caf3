package cache_test

import (
	"context"
	"testing"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubError struct{ severity failure.Severity }

func (e *stubError) Error() string              { return "network unreachable" }
func (e *stubError) Severity() failure.Severity { return e.severity }

func TestGetOrFetch_SecondCallIsServedFromCache(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	sink := &recordingSink{}
	c := cache.Open(ctx, store, sink)

	calls := 0
	fetch := func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		calls++
		if calls > 1 {
			return cache.Entry{}, &stubError{failure.SeverityFatal}
		}
		return cache.NewEntry("text/html", []byte("<html>wyoming</html>")), nil
	}

	params := cache.Params{"origin": "82190"}
	first, err := c.GetOrFetch(ctx, "https://www.nps.gov/state/wy/index.htm", params, fetch)
	require.Nil(t, err)

	second, err := c.GetOrFetch(ctx, "https://www.nps.gov/state/wy/index.htm", params, fetch)
	require.Nil(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "<html>wyoming</html>", second.Body)

	require.Len(t, sink.caches, 2)
	assert.False(t, sink.caches[0].hit)
	assert.True(t, sink.caches[1].hit)
}

func TestGetOrFetch_PersistsOnMiss(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	c := cache.Open(ctx, store, &metadata.NoopSink{})

	_, err := c.GetOrFetch(ctx, "e", cache.Params{"a": "1"}, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		return cache.Entry{ContentType: "application/json", Body: `{"ok":true}`}, nil
	})
	require.Nil(t, err)

	assert.Equal(t, 1, store.Saves())
	persisted := store.Load(ctx)
	assert.Contains(t, persisted, cache.KeyFor("e", cache.Params{"a": "1"}))

	// a reopened cache over the same store serves the entry without fetching
	reopened := cache.Open(ctx, store, &metadata.NoopSink{})
	entry, err := reopened.GetOrFetch(ctx, "e", cache.Params{"a": "1"}, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		t.Fatal("fetch must not be called on a persisted key")
		return cache.Entry{}, nil
	})
	require.Nil(t, err)
	assert.Equal(t, `{"ok":true}`, entry.Body)
}

func TestGetOrFetch_FailedFetchStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	c := cache.Open(ctx, store, &metadata.NoopSink{})

	_, err := c.GetOrFetch(ctx, "e", nil, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		return cache.Entry{}, &stubError{failure.SeverityRecoverable}
	})
	require.NotNil(t, err)

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, store.Saves())

	entry, err := c.GetOrFetch(ctx, "e", nil, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		return cache.Entry{Body: "recovered"}, nil
	})
	require.Nil(t, err)
	assert.Equal(t, "recovered", entry.Body)
}

func TestRequestCache_KeysAndLookup(t *testing.T) {
	ctx := context.Background()
	c := cache.Open(ctx, cache.NewMemoryStore(), &metadata.NoopSink{})

	for _, endpoint := range []string{"b", "a", "c"} {
		_, err := c.GetOrFetch(ctx, endpoint, nil, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
			return cache.Entry{Body: endpoint}, nil
		})
		require.Nil(t, err)
	}

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())

	entry, ok := c.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "b", entry.Body)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}
