package places

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// ErrNoResults is matched with errors.Is when a search found nothing.
var ErrNoResults = errors.New("no nearby places found")

type PlacesErrorCause string

const (
	ErrCauseNoResults     PlacesErrorCause = "empty result set"
	ErrCauseDecodeFailure PlacesErrorCause = "undecodable response"
	ErrCauseAPIStatus     PlacesErrorCause = "api reported failure"
	ErrCauseNoCredentials PlacesErrorCause = "missing credentials"
)

type PlacesError struct {
	Message   string
	Retryable bool
	Cause     PlacesErrorCause
	Err       error
}

func (e *PlacesError) Error() string {
	return fmt.Sprintf("places error: %s: %s", e.Cause, e.Message)
}

func (e *PlacesError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *PlacesError) Unwrap() error {
	return e.Err
}

// mapPlacesErrorToMetadataCause maps places-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapPlacesErrorToMetadataCause(err *PlacesError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDecodeFailure:
		return metadata.CauseContentInvalid
	case ErrCauseAPIStatus, ErrCauseNoCredentials:
		return metadata.CauseRequestRejected
	default:
		return metadata.CauseUnknown
	}
}
