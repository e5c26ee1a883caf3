package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/fileutil"
)

// FileStore persists the mapping as a single JSON object in one file.
// Every Save rewrites the file entirely. There is no locking: two processes
// writing the same file will lose each other's entries.
type FileStore struct {
	path         string
	metadataSink metadata.MetadataSink
}

func NewFileStore(path string, metadataSink metadata.MetadataSink) *FileStore {
	return &FileStore{
		path:         path,
		metadataSink: metadataSink,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) Mapping {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.recordLoadFailure(err.Error())
		}
		return make(Mapping)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.recordLoadFailure(fmt.Sprintf("corrupt cache file: %v", err))
		return make(Mapping)
	}

	mapping := make(Mapping, len(raw))
	for key, value := range raw {
		mapping[key] = decodeEntry(value)
	}
	return mapping
}

func (s *FileStore) Save(ctx context.Context, m Mapping) failure.ClassifiedError {
	data, err := json.Marshal(m)
	if err != nil {
		cacheErr := &CacheError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
		}
		s.recordSaveError(cacheErr)
		return cacheErr
	}

	if writeErr := fileutil.WriteFile(s.path, data); writeErr != nil {
		cacheErr := &CacheError{
			Message: writeErr.Error(),
			Cause:   ErrCauseWriteFailure,
		}
		s.recordSaveError(cacheErr)
		return cacheErr
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactCacheFile,
		s.path,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrMessage, fmt.Sprintf("%d entries", len(m))),
		},
	)
	return nil
}

func (s *FileStore) recordLoadFailure(details string) {
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		"FileStore.Load",
		metadata.CauseStorageFailure,
		details,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrPath, s.path),
		},
	)
}

func (s *FileStore) recordSaveError(err *CacheError) {
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		"FileStore.Save",
		mapCacheErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, s.path),
		},
	)
}

// decodeEntry accepts the current {content_type, body} shape as well as
// older files that stored an HTML page as a plain string or an API
// response as a parsed JSON object.
func decodeEntry(raw json.RawMessage) Entry {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Entry{}
	}

	switch trimmed[0] {
	case '"':
		var body string
		if err := json.Unmarshal(trimmed, &body); err != nil {
			return Entry{Body: string(trimmed)}
		}
		return Entry{ContentType: sniffContentType(body), Body: body}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			if entry, ok := entryFromFields(fields); ok {
				return entry
			}
		}
	}
	return Entry{ContentType: "application/json", Body: string(trimmed)}
}

func entryFromFields(fields map[string]json.RawMessage) (Entry, bool) {
	if len(fields) != 2 {
		return Entry{}, false
	}
	rawBody, hasBody := fields["body"]
	rawType, hasType := fields["content_type"]
	if !hasBody || !hasType {
		return Entry{}, false
	}
	var entry Entry
	if json.Unmarshal(rawBody, &entry.Body) != nil || json.Unmarshal(rawType, &entry.ContentType) != nil {
		return Entry{}, false
	}
	return entry, true
}

func sniffContentType(body string) string {
	if strings.HasPrefix(strings.TrimSpace(body), "<") {
		return "text/html"
	}
	return "text/plain"
}
