package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/internal/places"
	"github.com/rohmanhakim/nps-crawler/internal/site"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

/*
Runner drives one sequential pass:

	state name -> state page -> site URLs -> site records -> nearby line

Every network call goes through the request cache, so a second pass over
the same state is served without touching the network.
*/

type StateResolver interface {
	Build(ctx context.Context) failure.ClassifiedError
	Len() int
	Names() []string
	MustLookup(name string) (url.URL, failure.ClassifiedError)
}

type SiteLister interface {
	SitesForState(ctx context.Context, stateURL url.URL) ([]site.NationalSite, failure.ClassifiedError)
}

type NearbyFinder interface {
	Nearby(ctx context.Context, zip string) (string, failure.ClassifiedError)
	SearchNearby(ctx context.Context, zip string) ([]places.Place, failure.ClassifiedError)
}

type Runner struct {
	states       StateResolver
	sites        SiteLister
	nearby       NearbyFinder
	metadataSink metadata.MetadataSink
}

func NewRunner(
	states StateResolver,
	sites SiteLister,
	nearby NearbyFinder,
	metadataSink metadata.MetadataSink,
) *Runner {
	return &Runner{
		states:       states,
		sites:        sites,
		nearby:       nearby,
		metadataSink: metadataSink,
	}
}

// States returns every state name known to the home page.
func (r *Runner) States(ctx context.Context) ([]string, failure.ClassifiedError) {
	if err := r.ensureStates(ctx); err != nil {
		return nil, err
	}
	return r.states.Names(), nil
}

// Sites resolves state and returns its site records without nearby lines.
func (r *Runner) Sites(ctx context.Context, state string) (Result, failure.ClassifiedError) {
	if err := r.ensureStates(ctx); err != nil {
		return Result{}, err
	}
	stateURL, err := r.states.MustLookup(state)
	if err != nil {
		return Result{}, err
	}

	nationalSites, err := r.sites.SitesForState(ctx, stateURL)
	if err != nil {
		return Result{}, err
	}

	result := Result{State: state, StateURL: stateURL}
	for _, s := range nationalSites {
		result.Sites = append(result.Sites, SiteResult{Site: s})
	}
	return result, nil
}

// Run is Sites plus the first nearby place of every site.
func (r *Runner) Run(ctx context.Context, state string) (Result, failure.ClassifiedError) {
	result, err := r.Sites(ctx, state)
	if err != nil {
		return Result{}, err
	}

	for i := range result.Sites {
		line, err := r.nearbyLine(ctx, result.Sites[i].Site)
		if err != nil {
			return Result{}, err
		}
		result.Sites[i].Nearby = line
	}
	return result, nil
}

// NearbyForSite returns the site numbered n (1-based, as listed by Sites)
// together with every place near it.
func (r *Runner) NearbyForSite(ctx context.Context, state string, n int) (site.NationalSite, []places.Place, failure.ClassifiedError) {
	result, err := r.Sites(ctx, state)
	if err != nil {
		return site.NationalSite{}, nil, err
	}
	if n < 1 || n > len(result.Sites) {
		return site.NationalSite{}, nil, &PipelineError{
			Message: fmt.Sprintf("%s lists %d sites, got %d", state, len(result.Sites), n),
			Cause:   ErrCauseIndexOutOfRange,
		}
	}

	chosen := result.Sites[n-1].Site
	if !hasZipCode(chosen) {
		return chosen, nil, &PipelineError{
			Message: fmt.Sprintf("%s has no zip code", chosen.Name),
			Cause:   ErrCauseNoZipCode,
		}
	}

	found, err := r.nearby.SearchNearby(ctx, chosen.ZipCode)
	if err != nil {
		return chosen, nil, err
	}
	return chosen, found, nil
}

func (r *Runner) nearbyLine(ctx context.Context, s site.NationalSite) (string, failure.ClassifiedError) {
	if !hasZipCode(s) {
		r.metadataSink.RecordError(
			time.Now(),
			"pipeline",
			"Runner.Run",
			metadata.CauseContentInvalid,
			"site has no zip code, nearby search skipped",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, s.URL.String()),
			},
		)
		return "", nil
	}

	line, err := r.nearby.Nearby(ctx, s.ZipCode)
	if err != nil {
		if errors.Is(err, places.ErrNoResults) {
			return NoNearbyLine, nil
		}
		return "", err
	}
	return line, nil
}

func (r *Runner) ensureStates(ctx context.Context) failure.ClassifiedError {
	if r.states.Len() > 0 {
		return nil
	}
	return r.states.Build(ctx)
}

func hasZipCode(s site.NationalSite) bool {
	return s.ZipCode != "" && s.ZipCode != site.NoZipcode
}

func formatIndexed(n int, line string) string {
	return fmt.Sprintf("[%d] %s", n, line)
}
