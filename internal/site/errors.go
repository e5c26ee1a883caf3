package site

import (
	"fmt"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

type SiteErrorCause string

const (
	ErrCauseNotHTML      SiteErrorCause = "not HTML"
	ErrCauseInvalidHref  SiteErrorCause = "invalid href"
	ErrCauseUnknownState SiteErrorCause = "unknown state"
)

type SiteError struct {
	Message   string
	Retryable bool
	Cause     SiteErrorCause
}

func (e *SiteError) Error() string {
	return fmt.Sprintf("site error: %s: %s", e.Cause, e.Message)
}

func (e *SiteError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapSiteErrorToMetadataCause maps site-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapSiteErrorToMetadataCause(err *SiteError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseInvalidHref:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
