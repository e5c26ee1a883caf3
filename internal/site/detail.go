package site

import (
	"context"
	"net/url"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// DetailFetcher builds a NationalSite from a site's detail page.
type DetailFetcher struct {
	getter       PageGetter
	metadataSink metadata.MetadataSink
}

func NewDetailFetcher(getter PageGetter, metadataSink metadata.MetadataSink) *DetailFetcher {
	return &DetailFetcher{
		getter:       getter,
		metadataSink: metadataSink,
	}
}

func (d *DetailFetcher) Site(ctx context.Context, siteURL url.URL) (NationalSite, failure.ClassifiedError) {
	body, err := getPage(ctx, d.getter, siteURL)
	if err != nil {
		return NationalSite{}, err
	}

	detail, parseErr := ParseDetail(body)
	if parseErr != nil {
		d.metadataSink.RecordError(
			time.Now(),
			"site",
			"DetailFetcher.Site",
			mapSiteErrorToMetadataCause(parseErr),
			parseErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, siteURL.String()),
			},
		)
		return NationalSite{}, parseErr
	}

	// absent elements fall back to placeholders; each one is still reported
	for _, field := range detail.Missing() {
		d.metadataSink.RecordError(
			time.Now(),
			"site",
			"DetailFetcher.Site",
			metadata.CauseContentInvalid,
			"element missing, placeholder used",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, siteURL.String()),
				metadata.NewAttr(metadata.AttrField, string(field)),
			},
		)
	}
	return detail.Site(siteURL), nil
}

// ParseDetail looks every field up independently; one missing element
// never affects the others.
func ParseDetail(body []byte) (Detail, *SiteError) {
	doc, err := parseDocument(body)
	if err != nil {
		return Detail{}, &SiteError{Message: err.Error(), Cause: ErrCauseNotHTML}
	}

	detail := Detail{Values: make(map[Field]string, len(detailFields))}
	for _, df := range detailFields {
		if text, ok := lookupText(doc, df.selector); ok {
			detail.Values[df.field] = text
		}
	}
	return detail, nil
}
