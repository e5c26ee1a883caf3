package cache

import (
	"context"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// Store is the persistence port of the request cache. Adapters always move
// the whole mapping: there is no per-key read or write.
type Store interface {
	// Load returns the persisted mapping. A missing or unreadable backing
	// store yields an empty mapping, never an error.
	Load(ctx context.Context) Mapping

	// Save replaces the persisted mapping with m.
	Save(ctx context.Context, m Mapping) failure.ClassifiedError
}
