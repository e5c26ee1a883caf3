package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/config"
	"github.com/rohmanhakim/nps-crawler/internal/dispatcher"
	"github.com/rohmanhakim/nps-crawler/internal/fetcher"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/internal/pipeline"
	"github.com/rohmanhakim/nps-crawler/internal/places"
	"github.com/rohmanhakim/nps-crawler/internal/report"
	"github.com/rohmanhakim/nps-crawler/internal/site"
	"github.com/rohmanhakim/nps-crawler/pkg/limiter"
	"github.com/rohmanhakim/nps-crawler/pkg/retry"
	"github.com/rohmanhakim/nps-crawler/pkg/timeutil"
)

// app holds the wired components one command invocation works with.
type app struct {
	cfg          config.Config
	metadataSink metadata.MetadataSink
	cache        *cache.RequestCache
	runner       *pipeline.Runner
	reports      *report.LocalSink
	closers      []func()
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		closeFn()
	}
}

func newMetadataSink(cfg config.Config, errOut io.Writer) metadata.MetadataSink {
	if !cfg.Verbose() {
		return &metadata.NoopSink{}
	}
	return metadata.NewRecorder("nps-crawler", errOut)
}

// openStore picks the cache backend named in cfg. The returned func
// releases whatever the backend holds open.
func openStore(ctx context.Context, cfg config.Config, metadataSink metadata.MetadataSink) (cache.Store, func(), error) {
	switch cfg.CacheBackend() {
	case config.CacheBackendRedis:
		client, err := cache.ConnectRedis(ctx, cfg.RedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr(), err)
		}
		return cache.NewRedisStore(client, cfg.RedisKey(), metadataSink), func() { client.Close() }, nil
	case config.CacheBackendMemory:
		return cache.NewMemoryStore(), func() {}, nil
	default:
		return cache.NewFileStore(cfg.CachePath(), metadataSink), func() {}, nil
	}
}

func newApp(ctx context.Context, cfg config.Config, errOut io.Writer) (*app, error) {
	metadataSink := newMetadataSink(cfg, errOut)

	store, closeStore, err := openStore(ctx, cfg, metadataSink)
	if err != nil {
		return nil, err
	}
	requestCache := cache.Open(ctx, store, metadataSink)

	rateLimiter := limiter.NewHostRateLimiter(cfg.BaseDelay(), cfg.Jitter(), cfg.RandomSeed())
	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)

	httpClient := &http.Client{Timeout: cfg.Timeout()}
	htmlFetcher := fetcher.NewHttpFetcher(metadataSink, httpClient, rateLimiter)
	pages := dispatcher.NewDispatcher(requestCache, htmlFetcher, retryParam, cfg.UserAgent())

	signedClient := places.NewSignedHTTPClient(cfg.Credentials(), cfg.Timeout(), httpClient)
	placesRequests := pages.WithFetcher(fetcher.NewHttpFetcher(metadataSink, signedClient, rateLimiter))

	siteBase := cfg.SiteBaseURL()
	states := site.NewStateIndex(pages, siteBase, metadataSink)
	scraper := site.NewScraper(
		site.NewListFetcher(pages, siteBase, metadataSink),
		site.NewDetailFetcher(pages, metadataSink),
	)
	nearby := places.NewClient(
		placesRequests,
		cfg.PlacesBaseURL(),
		cfg.Credentials(),
		cfg.NearbyRadius(),
		cfg.NearbyMaxMatches(),
		metadataSink,
	)

	return &app{
		cfg:          cfg,
		metadataSink: metadataSink,
		cache:        requestCache,
		runner:       pipeline.NewRunner(states, scraper, nearby, metadataSink),
		reports:      report.NewLocalSink(metadataSink),
		closers:      []func(){closeStore},
	}, nil
}
