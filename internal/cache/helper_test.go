package cache_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
)

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

type cacheEvent struct {
	key string
	hit bool
}

// recordingSink is a test double for metadata.MetadataSink
type recordingSink struct {
	mu        sync.Mutex
	errors    []errorEvent
	caches    []cacheEvent
	artifacts []string
}

func (s *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errorEvent{packageName, action, cause, details})
}

func (s *recordingSink) RecordFetch(string, int, time.Duration, string, uint64, int) {}

func (s *recordingSink) RecordCache(key string, hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caches = append(s.caches, cacheEvent{key, hit})
}

func (s *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, path)
}
