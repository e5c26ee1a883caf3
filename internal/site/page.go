package site

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/dispatcher"
	"github.com/rohmanhakim/nps-crawler/internal/fetcher"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// PageGetter serves requests through the request cache.
type PageGetter interface {
	Get(ctx context.Context, req dispatcher.Request) (cache.Entry, failure.ClassifiedError)
}

func getPage(ctx context.Context, getter PageGetter, pageURL url.URL) ([]byte, failure.ClassifiedError) {
	entry, err := getter.Get(ctx, dispatcher.Request{
		Endpoint: pageURL.String(),
		Kind:     fetcher.ContentHTML,
	})
	if err != nil {
		return nil, err
	}
	return []byte(entry.Body), nil
}
