package site

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

// Scraper walks a state page down to its site records.
type Scraper struct {
	list   *ListFetcher
	detail *DetailFetcher
}

func NewScraper(list *ListFetcher, detail *DetailFetcher) *Scraper {
	return &Scraper{
		list:   list,
		detail: detail,
	}
}

// SitesForState returns one record per site listed on stateURL, in
// document order. The first failing detail page aborts the walk.
func (s *Scraper) SitesForState(ctx context.Context, stateURL url.URL) ([]NationalSite, failure.ClassifiedError) {
	siteURLs, err := s.list.SiteURLs(ctx, stateURL)
	if err != nil {
		return nil, err
	}

	sites := make([]NationalSite, 0, len(siteURLs))
	for _, siteURL := range siteURLs {
		nationalSite, err := s.detail.Site(ctx, siteURL)
		if err != nil {
			return nil, err
		}
		sites = append(sites, nationalSite)
	}
	return sites, nil
}
