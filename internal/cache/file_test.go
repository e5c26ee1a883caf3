package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	sink := &recordingSink{}
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "nps_cache.json"), sink)

	mapping := store.Load(context.Background())

	assert.NotNil(t, mapping)
	assert.Empty(t, mapping)
	assert.Empty(t, sink.errors)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nps_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	sink := &recordingSink{}
	store := cache.NewFileStore(path, sink)

	mapping := store.Load(context.Background())

	assert.NotNil(t, mapping)
	assert.Empty(t, mapping)
	require.Len(t, sink.errors, 1)
	assert.Equal(t, "cache", sink.errors[0].packageName)
	assert.Equal(t, metadata.CauseStorageFailure, sink.errors[0].cause)
}

func TestFileStore_LoadUnreadablePath(t *testing.T) {
	// a directory in place of the file
	dir := t.TempDir()
	sink := &recordingSink{}
	store := cache.NewFileStore(dir, sink)

	mapping := store.Load(context.Background())

	assert.Empty(t, mapping)
	assert.Len(t, sink.errors, 1)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "nps_cache.json")
	sink := &recordingSink{}
	store := cache.NewFileStore(path, sink)

	mapping := cache.Mapping{
		"https://www.nps.gov": {ContentType: "text/html", Body: "<html></html>"},
		"radius_origin_82190": {ContentType: "application/json", Body: `{"searchResults":[]}`},
	}
	require.Nil(t, store.Save(ctx, mapping))

	assert.Equal(t, mapping, store.Load(ctx))
	assert.Equal(t, []string{path}, sink.artifacts)
}

func TestFileStore_SaveOverwritesWholeFile(t *testing.T) {
	ctx := context.Background()
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "nps_cache.json"), &metadata.NoopSink{})

	require.Nil(t, store.Save(ctx, cache.Mapping{"old": {Body: "1"}}))
	require.Nil(t, store.Save(ctx, cache.Mapping{"new": {Body: "2"}}))

	loaded := store.Load(ctx)
	assert.NotContains(t, loaded, "old")
	assert.Contains(t, loaded, "new")
}

func TestFileStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	sink := &recordingSink{}
	store := cache.NewFileStore(filepath.Join(blocker, "nps_cache.json"), sink)

	err := store.Save(context.Background(), cache.Mapping{"k": {Body: "v"}})
	require.NotNil(t, err)

	var cacheErr *cache.CacheError
	require.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, cache.ErrCauseWriteFailure, cacheErr.Cause)
	assert.Equal(t, failure.SeverityFatal, err.Severity())
	assert.Len(t, sink.errors, 1)
}

func TestFileStore_LoadLegacyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nps_cache.json")
	legacy := `{
		"https://www.nps.gov/state/wy/index.htm": "<html><body>wy</body></html>",
		"http://www.mapquestapi.com/search/v2/radius_origin_82190": {"searchResults": [{"fields": {"name": "Cafe"}}]},
		"current": {"content_type": "text/html", "body": "<p>x</p>"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	mapping := cache.NewFileStore(path, &metadata.NoopSink{}).Load(context.Background())
	require.Len(t, mapping, 3)

	page := mapping["https://www.nps.gov/state/wy/index.htm"]
	assert.Equal(t, "text/html", page.ContentType)
	assert.Equal(t, "<html><body>wy</body></html>", page.Body)

	api := mapping["http://www.mapquestapi.com/search/v2/radius_origin_82190"]
	assert.Equal(t, "application/json", api.ContentType)
	assert.JSONEq(t, `{"searchResults": [{"fields": {"name": "Cafe"}}]}`, api.Body)

	assert.Equal(t, cache.Entry{ContentType: "text/html", Body: "<p>x</p>"}, mapping["current"])
}

func TestOpen_OverCorruptFileStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nps_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	c := cache.Open(ctx, cache.NewFileStore(path, &metadata.NoopSink{}), &metadata.NoopSink{})
	assert.Equal(t, 0, c.Len())

	_, err := c.GetOrFetch(ctx, "e", nil, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		return cache.Entry{Body: "fresh"}, nil
	})
	require.Nil(t, err)

	// the corrupt file has been replaced by a valid one
	reloaded := cache.NewFileStore(path, &metadata.NoopSink{}).Load(ctx)
	assert.Equal(t, "fresh", reloaded["e"].Body)
}

func TestGetOrFetch_SaveFailureKeepsNothing(t *testing.T) {
	ctx := context.Background()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := cache.NewFileStore(filepath.Join(blocker, "nps_cache.json"), &metadata.NoopSink{})
	c := cache.Open(ctx, store, &metadata.NoopSink{})

	fetches := 0
	fetch := func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		fetches++
		return cache.Entry{ContentType: "text/html", Body: "b"}, nil
	}

	_, err := c.GetOrFetch(ctx, "e", cache.Params{"p": "1"}, fetch)
	require.NotNil(t, err)
	assert.Equal(t, 0, c.Len())

	// the unsaved response is fetched again instead of being served from memory
	_, err = c.GetOrFetch(ctx, "e", cache.Params{"p": "1"}, fetch)
	require.NotNil(t, err)
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 0, c.Len())
}
