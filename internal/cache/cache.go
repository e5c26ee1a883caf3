package cache

import (
	"context"
	"sync"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

/*
Responsibilities

- Answer a request from the cache when its key is already known
- Call the fetch function exactly once per unknown key
- Persist the whole mapping after every new entry

Cache Semantics

- Entries are never evicted, expired or invalidated
- A failing fetch stores nothing
- A failing save keeps nothing in memory
- Keys depend on endpoint and parameters only, never on parameter order
*/

// FetchFunc performs the network request behind a cache miss.
type FetchFunc func(ctx context.Context) (Entry, failure.ClassifiedError)

type RequestCache struct {
	mu           sync.Mutex
	store        Store
	entries      Mapping
	metadataSink metadata.MetadataSink
}

// Open loads the persisted mapping from store. Load problems leave the
// cache empty; they are only visible through the metadata sink.
func Open(ctx context.Context, store Store, metadataSink metadata.MetadataSink) *RequestCache {
	entries := store.Load(ctx)
	if entries == nil {
		entries = make(Mapping)
	}
	return &RequestCache{
		store:        store,
		entries:      entries,
		metadataSink: metadataSink,
	}
}

// GetOrFetch returns the cached entry for (endpoint, params) or, on a miss,
// calls fetch, stores its result and persists the mapping.
//
// The lock is held across fetch so a key is never fetched twice.
func (c *RequestCache) GetOrFetch(
	ctx context.Context,
	endpoint string,
	params Params,
	fetch FetchFunc,
) (Entry, failure.ClassifiedError) {
	key := KeyFor(endpoint, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.metadataSink.RecordCache(key, true)
		return entry, nil
	}
	c.metadataSink.RecordCache(key, false)

	entry, err := fetch(ctx)
	if err != nil {
		return Entry{}, err
	}

	c.entries[key] = entry
	if saveErr := c.store.Save(ctx, c.entries.Clone()); saveErr != nil {
		// an entry that never reached the store is not served either
		delete(c.entries, key)
		return Entry{}, saveErr
	}
	return entry, nil
}

// Lookup returns the entry stored under an already computed key.
func (c *RequestCache) Lookup(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	return entry, ok
}

func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Keys returns every cached key in lexicographic order.
func (c *RequestCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.SortedKeys()
}
