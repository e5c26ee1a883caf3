package pipeline

import (
	"fmt"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

type PipelineErrorCause string

const (
	ErrCauseIndexOutOfRange PipelineErrorCause = "site number out of range"
	ErrCauseNoZipCode       PipelineErrorCause = "site has no zip code"
)

type PipelineError struct {
	Message string
	Cause   PipelineErrorCause
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error: %s: %s", e.Cause, e.Message)
}

func (e *PipelineError) Severity() failure.Severity {
	return failure.SeverityFatal
}
