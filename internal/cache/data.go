package cache

import (
	"maps"
	"slices"
)

// Entry is one cached response. Body holds the raw response text, HTML or
// JSON, exactly as it was received.
type Entry struct {
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

func NewEntry(contentType string, body []byte) Entry {
	return Entry{
		ContentType: contentType,
		Body:        string(body),
	}
}

// Mapping is the whole persisted cache: request key to entry.
type Mapping map[string]Entry

// Clone returns a shallow copy safe to hand to a Store.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	maps.Copy(out, m)
	return out
}

// SortedKeys returns the keys in lexicographic order.
func (m Mapping) SortedKeys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Params are the query parameters that take part in a request key.
type Params map[string]string
