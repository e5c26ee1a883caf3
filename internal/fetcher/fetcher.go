package fetcher

import (
	"context"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/retry"
)

// Fetcher performs one logical GET, retrying transient failures as
// retryParam allows. Pages and API responses both go through it; the
// FetchParam kind decides which content types are accepted.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
