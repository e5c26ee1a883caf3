package dispatcher

import (
	"fmt"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

type DispatchErrorCause string

const (
	ErrCauseInvalidEndpoint DispatchErrorCause = "invalid endpoint"
)

type DispatchError struct {
	Message string
	Cause   DispatchErrorCause
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatcher error: %s: %s", e.Cause, e.Message)
}

func (e *DispatchError) Severity() failure.Severity {
	return failure.SeverityFatal
}
