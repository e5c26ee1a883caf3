package fetcher

import (
	"net/url"
	"strings"
)

// HTTP boundary

// ContentKind is the kind of body a caller is prepared to parse.
type ContentKind int

const (
	ContentHTML ContentKind = iota
	ContentJSON
)

func (k ContentKind) String() string {
	switch k {
	case ContentJSON:
		return "json"
	default:
		return "html"
	}
}

// Accept is the Accept header sent for this kind.
func (k ContentKind) Accept() string {
	switch k {
	case ContentJSON:
		return "application/json"
	default:
		return "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
}

// Matches reports whether a response Content-Type carries this kind.
func (k ContentKind) Matches(contentType string) bool {
	contentType = strings.ToLower(contentType)
	switch k {
	case ContentJSON:
		return strings.Contains(contentType, "json") ||
			strings.Contains(contentType, "javascript")
	default:
		return strings.Contains(contentType, "text/html") ||
			strings.Contains(contentType, "application/xhtml")
	}
}

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
	kind      ContentKind
}

func NewFetchParam(fetchUrl url.URL, userAgent string, kind ContentKind) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
		kind:      kind,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) Kind() ContentKind {
	return p.kind
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

type ResponseMeta struct {
	statusCode          int
	contentType         string
	transferredSizeByte uint64
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
		},
	}
}
