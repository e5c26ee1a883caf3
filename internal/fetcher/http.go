package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/limiter"
	"github.com/rohmanhakim/nps-crawler/pkg/retry"
)

/*
Responsibilities

- Perform HTTP GET requests
- Apply headers, timeouts and per-host pacing
- Retry transient failures
- Classify responses

Fetch Semantics

- Only 2xx responses of the expected content kind are returned
- 5xx, 429 and transport failures are retried with backoff
- Every other failure is final
- Every fetch is recorded with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

const maxBodyBytes = 16 << 20

type HttpFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
}

// NewHttpFetcher wraps httpClient. The client carries the request timeout
// and, for signed APIs, the signing transport.
func NewHttpFetcher(
	metadataSink metadata.MetadataSink,
	httpClient *http.Client,
	rateLimiter limiter.RateLimiter,
) *HttpFetcher {
	if rateLimiter == nil {
		rateLimiter = limiter.NoopLimiter{}
	}
	return &HttpFetcher{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		rateLimiter:  rateLimiter,
	}
}

func (h *HttpFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HttpFetcher.Fetch"
	startTime := time.Now()

	attempts := 0
	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		attempts++
		return h.performFetch(ctx, fetchParam)
	}
	result, err := retry.Retry(ctx, retryParam, fetchTask)

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	var sizeByte uint64
	if err == nil {
		statusCode = result.Code()
		contentType = result.ContentType()
		sizeByte = result.SizeByte()
	} else {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			statusCode = fetchErr.StatusCode
		}
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		sizeByte,
		attempts,
	)

	if err != nil {
		h.recordError(callerMethod, fetchParam.fetchUrl, err)
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HttpFetcher) recordError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
		metadata.NewAttr(metadata.AttrHost, fetchUrl.Host),
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		cause = mapFetchErrorToMetadataCause(fetchErr)
		if fetchErr.StatusCode != 0 {
			attrs = append(attrs, metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchErr.StatusCode)))
		}
	}

	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		attrs,
	)
}

func (h *HttpFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	fetchUrl := fetchParam.fetchUrl

	if err := h.rateLimiter.Wait(ctx, fetchUrl.Host); err != nil {
		return FetchResult{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseRateLimitWait,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseRequestBuildFailure,
		}
	}

	for key, value := range requestHeaders(fetchParam.userAgent, fetchParam.kind) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		// a canceled caller is final, everything else on the transport is transient
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		// drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return FetchResult{}, statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !fetchParam.kind.Matches(contentType) {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("expected %s content, got %q", fetchParam.kind, contentType),
			Retryable:  false,
			Cause:      ErrCauseContentTypeInvalid,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	result := FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
		},
	}

	return result, nil
}

// classifyStatus returns nil for 2xx codes.
func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusUnauthorized:
		return &FetchError{
			Message:    "credentials rejected (401)",
			Retryable:  false,
			Cause:      ErrCauseRequestUnauthorized,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusForbidden:
		return &FetchError{
			Message:    "access forbidden (403)",
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: statusCode,
		}

	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: statusCode,
		}

	case statusCode >= 300:
		// http.Client follows redirects itself; reaching here means it gave up
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}

	case statusCode < 200:
		return &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: statusCode,
		}
	}
	return nil
}

// Accept-Encoding is left to the transport so gzip stays transparent.
func requestHeaders(userAgent string, kind ContentKind) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          kind.Accept(),
		"Accept-Language": "en-US,en;q=0.5",
	}
}
