package metadata

import (
	"io"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

/*
Metadata Collected
- Fetch timestamps, durations and HTTP status codes
- Request cache hits and misses
- Artifacts written (cache file, reports)
- Classified errors

Metadata is write-only.
No component may read metadata to influence control flow.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		sizeByte uint64,
		retryCount int,
	)
	RecordCache(key string, hit bool)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// Recorder writes every event as one logfmt line.
type Recorder struct {
	mu       sync.Mutex
	workerId string
	enc      *logfmt.Encoder
	now      func() time.Time
}

func NewRecorder(workerId string, out io.Writer) *Recorder {
	return &Recorder{
		workerId: workerId,
		enc:      logfmt.NewEncoder(out),
		now:      time.Now,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	keyvals := []interface{}{
		"package", packageName,
		"action", action,
		"cause", cause.String(),
		"error", details,
	}
	r.emitAt(observedAt, "error", append(keyvals, flatten(attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte uint64,
	retryCount int,
) {
	r.emitAt(r.now(), "fetch",
		"url", fetchUrl,
		"status", httpStatus,
		"duration_ms", duration.Milliseconds(),
		"content_type", contentType,
		"size_bytes", sizeByte,
		"retries", retryCount,
	)
}

func (r *Recorder) RecordCache(key string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.emitAt(r.now(), "cache", "outcome", outcome, "key", key)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	keyvals := []interface{}{"kind", string(kind), "path", path}
	r.emitAt(r.now(), "artifact", append(keyvals, flatten(attrs)...)...)
}

func (r *Recorder) emitAt(at time.Time, event string, keyvals ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// encoding errors are dropped: metadata never fails the caller
	_ = r.enc.EncodeKeyval("ts", at.UTC().Format(time.RFC3339))
	_ = r.enc.EncodeKeyval("worker", r.workerId)
	_ = r.enc.EncodeKeyval("event", event)
	for i := 0; i+1 < len(keyvals); i += 2 {
		_ = r.enc.EncodeKeyval(keyvals[i], keyvals[i+1])
	}
	_ = r.enc.EndRecord()
}

func flatten(attrs []Attribute) []interface{} {
	out := make([]interface{}, 0, len(attrs)*2)
	for _, attr := range attrs {
		out = append(out, string(attr.Key), attr.Value)
	}
	return out
}

// NoopSink implements MetadataSink but does nothing.
// Callers (or tests) decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte uint64,
	retryCount int,
) {
}

func (n *NoopSink) RecordCache(key string, hit bool) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
