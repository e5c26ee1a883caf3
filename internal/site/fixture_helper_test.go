package site_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/dispatcher"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
	"github.com/stretchr/testify/require"
)

const homePageFixture = `<!DOCTYPE html>
<html><body>
<div id="HERO">
  <ul class="dropdown-menu SearchBar-keywordSearch">
    <li><a href="/state/mi/index.htm">Michigan</a></li>
    <li><a href="/state/wy/index.htm"> Wyoming </a></li>
    <li><a href="/state/dc/index.htm">District of Columbia</a></li>
  </ul>
</div>
<ul class="dropdown-menu SearchBar-keywordSearch">
  <li><a href="/state/zz/index.htm">Outside Hero</a></li>
</ul>
</body></html>`

const stateListFixture = `<!DOCTYPE html>
<html><body>
<ul id="list_parks">
  <li class="clearfix">
    <div class="col-md-9 col-sm-9 col-xs-12 table-cell list_left">
      <h2>National Park</h2>
      <h3><a href="/yell/">Yellowstone</a></h3>
      <p><a href="/yell/planyourvisit/">Plan</a></p>
    </div>
  </li>
  <li class="clearfix">
    <div class="col-md-9 col-sm-9 col-xs-12 table-cell list_left">
      <h2>National Monument</h2>
      <h3><a href="/deto/">Devils Tower</a></h3>
    </div>
  </li>
  <li class="clearfix">
    <div class="col-md-9 col-sm-9 col-xs-12 table-cell list_left">
      <h2>National Historic Site</h2>
      <h3><a href="/fola/">Fort Laramie</a></h3>
    </div>
  </li>
  <li class="clearfix">
    <div class="col-md-3 col-sm-3 col-xs-12 table-cell list_right">
      <a href="/not-a-site/">Ignored</a>
    </div>
  </li>
</ul>
</body></html>`

func detailFixture(name, category, locality, state, zip, phone string) string {
	return `<!DOCTYPE html>
<html><body>
<div class="Hero-titleContainer">
  <a href="/" class="Hero-title">` + name + `</a>
  <span class="Hero-designation">` + category + `</span>
</div>
<div class="vcard">
  <p class="adr" itemprop="address">
    <span itemprop="addressLocality">` + locality + `</span>,
    <span class="region" itemprop="addressRegion">` + state + `</span>
    <span class="postal-code" itemprop="postalCode">` + zip + `</span>
  </p>
  <span class="tel" itemprop="telephone">` + phone + `</span>
</div>
</body></html>`
}

const detailWithoutPhoneFixture = `<!DOCTYPE html>
<html><body>
<a href="/" class="Hero-title">Isle Royale</a>
<span class="Hero-designation">National Park</span>
<span itemprop="addressLocality">Houghton</span>
<span class="region">MI</span>
<span class="postal-code">49931</span>
</body></html>`

// pageStub is a PageGetter answering from a fixed URL to body table.
type pageStub struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []string
}

func (p *pageStub) Get(ctx context.Context, req dispatcher.Request) (cache.Entry, failure.ClassifiedError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req.Endpoint)

	body, ok := p.pages[req.Endpoint]
	if !ok {
		return cache.Entry{}, &stubFailure{}
	}
	return cache.Entry{ContentType: "text/html", Body: body}, nil
}

type stubFailure struct{}

func (e *stubFailure) Error() string              { return "page not found" }
func (e *stubFailure) Severity() failure.Severity { return failure.SeverityFatal }

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

// errorSink keeps the attributes of every recorded error.
type errorSink struct {
	metadata.NoopSink
	errors [][]metadata.Attribute
}

func (s *errorSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.errors = append(s.errors, attrs)
}

func (s *errorSink) fields() []string {
	var out []string
	for _, attrs := range s.errors {
		for _, attr := range attrs {
			if attr.Key == metadata.AttrField {
				out = append(out, attr.Value)
			}
		}
	}
	return out
}
