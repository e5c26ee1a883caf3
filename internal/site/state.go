package site

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/rohmanhakim/nps-crawler/pkg/urlutil"
)

// StateIndex maps a lowercase state name to its state page, e.g.
// "wyoming" to https://www.nps.gov/state/wy/index.htm.
type StateIndex struct {
	getter       PageGetter
	baseURL      url.URL
	metadataSink metadata.MetadataSink
	states       map[string]url.URL
	names        []string
}

func NewStateIndex(getter PageGetter, baseURL url.URL, metadataSink metadata.MetadataSink) *StateIndex {
	return &StateIndex{
		getter:       getter,
		baseURL:      baseURL,
		metadataSink: metadataSink,
		states:       make(map[string]url.URL),
	}
}

// Build fetches the home page and reads the state dropdown.
func (s *StateIndex) Build(ctx context.Context) failure.ClassifiedError {
	body, err := getPage(ctx, s.getter, s.baseURL)
	if err != nil {
		return err
	}

	states, names, parseErr := ParseStateIndex(s.baseURL, body)
	if parseErr != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"site",
			"StateIndex.Build",
			mapSiteErrorToMetadataCause(parseErr),
			parseErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, s.baseURL.String()),
			},
		)
		return parseErr
	}

	s.states = states
	s.names = names
	return nil
}

// Lookup is case-insensitive and ignores surrounding spaces.
func (s *StateIndex) Lookup(name string) (url.URL, bool) {
	u, ok := s.states[strings.ToLower(strings.TrimSpace(name))]
	return u, ok
}

// MustLookup is Lookup returning a classified error for unknown names.
func (s *StateIndex) MustLookup(name string) (url.URL, failure.ClassifiedError) {
	u, ok := s.Lookup(name)
	if !ok {
		return url.URL{}, &SiteError{
			Message: fmt.Sprintf("%q is not a state listed on %s", name, s.baseURL.Host),
			Cause:   ErrCauseUnknownState,
		}
	}
	return u, nil
}

// Names returns the state names in home page order.
func (s *StateIndex) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *StateIndex) Len() int {
	return len(s.states)
}

// ParseStateIndex reads the state dropdown of a home page. Links whose href
// cannot be resolved are skipped.
func ParseStateIndex(baseURL url.URL, body []byte) (map[string]url.URL, []string, *SiteError) {
	doc, err := parseDocument(body)
	if err != nil {
		return nil, nil, &SiteError{Message: err.Error(), Cause: ErrCauseNotHTML}
	}

	states := make(map[string]url.URL)
	var names []string
	doc.Find(stateLinkSelector).Each(func(_ int, a *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(nodeText(a.Nodes[0])))
		href, ok := a.Attr("href")
		if name == "" || !ok {
			return
		}
		u, err := urlutil.Resolve(baseURL, href)
		if err != nil {
			return
		}
		if _, seen := states[name]; !seen {
			names = append(names, name)
		}
		states[name] = u
	})
	return states, names, nil
}
