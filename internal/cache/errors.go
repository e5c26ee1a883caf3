package cache

import (
	"fmt"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseEncodeFailure  CacheErrorCause = "failed to encode mapping"
	ErrCauseWriteFailure   CacheErrorCause = "failed to write mapping"
	ErrCauseBackendFailure CacheErrorCause = "backend unavailable"
)

type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapCacheErrorToMetadataCause maps cache-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseEncodeFailure, ErrCauseWriteFailure, ErrCauseBackendFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
