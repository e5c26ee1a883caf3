package dispatcher

import (
	"context"
	"fmt"
	"maps"
	"net/url"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/fetcher"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/retry"
)

// Request is one logical GET. Params take part in the cache key; Unkeyed
// params are sent on the wire only, which keeps credentials out of keys.
type Request struct {
	Endpoint string
	Params   cache.Params
	Unkeyed  map[string]string
	Kind     fetcher.ContentKind

	// BeforeFetch runs on a cache miss only, before the network is touched.
	// An error aborts the request. A cache hit never calls it.
	BeforeFetch func() failure.ClassifiedError
	// Accept inspects a freshly fetched entry. A rejected entry is returned
	// as the error and never stored.
	Accept func(cache.Entry) failure.ClassifiedError
}

// Dispatcher answers requests from the request cache and falls back to the
// network on a miss.
type Dispatcher struct {
	cache      *cache.RequestCache
	fetcher    fetcher.Fetcher
	retryParam retry.RetryParam
	userAgent  string
}

func NewDispatcher(
	requestCache *cache.RequestCache,
	f fetcher.Fetcher,
	retryParam retry.RetryParam,
	userAgent string,
) *Dispatcher {
	return &Dispatcher{
		cache:      requestCache,
		fetcher:    f,
		retryParam: retryParam,
		userAgent:  userAgent,
	}
}

// WithFetcher returns a dispatcher sharing the same cache but sending
// misses through f.
func (d *Dispatcher) WithFetcher(f fetcher.Fetcher) *Dispatcher {
	clone := *d
	clone.fetcher = f
	return &clone
}

func (d *Dispatcher) Get(ctx context.Context, req Request) (cache.Entry, failure.ClassifiedError) {
	return d.cache.GetOrFetch(ctx, req.Endpoint, req.Params, func(ctx context.Context) (cache.Entry, failure.ClassifiedError) {
		if req.BeforeFetch != nil {
			if err := req.BeforeFetch(); err != nil {
				return cache.Entry{}, err
			}
		}

		target, err := BuildURL(req)
		if err != nil {
			return cache.Entry{}, &DispatchError{
				Message: err.Error(),
				Cause:   ErrCauseInvalidEndpoint,
			}
		}

		result, fetchErr := d.fetcher.Fetch(ctx, fetcher.NewFetchParam(target, d.userAgent, req.Kind), d.retryParam)
		if fetchErr != nil {
			return cache.Entry{}, fetchErr
		}
		entry := cache.NewEntry(result.ContentType(), result.Body())
		if req.Accept != nil {
			if err := req.Accept(entry); err != nil {
				return cache.Entry{}, err
			}
		}
		return entry, nil
	})
}

// BuildURL joins the endpoint with both keyed and unkeyed params. Query
// values already present on the endpoint are kept.
func BuildURL(req Request) (url.URL, error) {
	target, err := url.Parse(req.Endpoint)
	if err != nil {
		return url.URL{}, err
	}
	if !target.IsAbs() || target.Host == "" {
		return url.URL{}, fmt.Errorf("endpoint %q is not an absolute URL", req.Endpoint)
	}

	query := target.Query()
	all := make(map[string]string, len(req.Params)+len(req.Unkeyed))
	maps.Copy(all, req.Params)
	maps.Copy(all, req.Unkeyed)
	for name, value := range all {
		query.Set(name, value)
	}
	target.RawQuery = query.Encode()
	return *target, nil
}
