package pipeline

import (
	"net/url"

	"github.com/rohmanhakim/nps-crawler/internal/site"
)

// NoNearbyLine stands in for a site whose zip code found no places.
const NoNearbyLine = "- no nearby places"

type SiteResult struct {
	Site site.NationalSite
	// Nearby is the formatted first nearby place, NoNearbyLine when the
	// search found nothing, or empty when the site has no zip code.
	Nearby string
}

type Result struct {
	State    string
	StateURL url.URL
	Sites    []SiteResult
}

// Lines renders one numbered Info line per site, followed by its nearby
// line when there is one.
func (r Result) Lines() []string {
	var lines []string
	for i, s := range r.Sites {
		lines = append(lines, formatIndexed(i+1, s.Site.Info()))
		if s.Nearby != "" {
			lines = append(lines, "    "+s.Nearby)
		}
	}
	return lines
}
