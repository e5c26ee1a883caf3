package site

import (
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/urlutil"
)

// ListFetcher reads the detail-page links of a state page.
type ListFetcher struct {
	getter       PageGetter
	baseURL      url.URL
	metadataSink metadata.MetadataSink
}

func NewListFetcher(getter PageGetter, baseURL url.URL, metadataSink metadata.MetadataSink) *ListFetcher {
	return &ListFetcher{
		getter:       getter,
		baseURL:      baseURL,
		metadataSink: metadataSink,
	}
}

// SiteURLs returns the detail page of every site listed on stateURL, in
// document order. A page without the expected structure yields no URLs.
func (l *ListFetcher) SiteURLs(ctx context.Context, stateURL url.URL) ([]url.URL, failure.ClassifiedError) {
	body, err := getPage(ctx, l.getter, stateURL)
	if err != nil {
		return nil, err
	}

	urls, skipped, parseErr := ParseSiteList(l.baseURL, body)
	if parseErr != nil {
		l.recordError(stateURL, parseErr)
		return nil, parseErr
	}
	for _, bad := range skipped {
		l.recordError(stateURL, bad)
	}
	return urls, nil
}

func (l *ListFetcher) recordError(stateURL url.URL, err *SiteError) {
	l.metadataSink.RecordError(
		time.Now(),
		"site",
		"ListFetcher.SiteURLs",
		mapSiteErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, stateURL.String()),
		},
	)
}

// ParseSiteList extracts detail-page URLs from a state page. Each list cell
// contributes its first link; "/yell/" becomes <base>/yell/index.htm.
// Links that cannot be resolved are returned as skipped errors.
func ParseSiteList(baseURL url.URL, body []byte) ([]url.URL, []*SiteError, *SiteError) {
	doc, err := parseDocument(body)
	if err != nil {
		return nil, nil, &SiteError{Message: err.Error(), Cause: ErrCauseNotHTML}
	}

	var urls []url.URL
	var skipped []*SiteError
	doc.Find(siteCellSelector).Each(func(_ int, cell *goquery.Selection) {
		href, ok := cell.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}
		u, err := urlutil.Resolve(baseURL, href)
		if err != nil {
			skipped = append(skipped, &SiteError{Message: err.Error(), Cause: ErrCauseInvalidHref})
			return
		}
		urls = append(urls, urlutil.WithIndexPage(u))
	})
	return urls, skipped, nil
}
