package cmd

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	siteBaseURL   string
	placesBaseURL string
	cacheBackend  string
	cachePath     string
	redisAddr     string
	redisKey      string
	userAgent     string
	timeout       time.Duration
	baseDelay     time.Duration
	jitter        time.Duration
	randomSeed    int64
	maxAttempt    int
	reportDir     string
	reportFormat  string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nps-crawler",
	Short: "Browse National Park Service sites and what is near them.",
	Long: `nps-crawler scrapes nps.gov for the sites of a state, reads each site's
detail page and looks up nearby places through the MapQuest radius search.

Every HTTP response is kept in a local request cache, so asking the same
question twice never hits the network twice.

MapQuest credentials are read from MAPQUEST_API_KEY and MAPQUEST_API_SECRET
or from the "mapquest" section of the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// ExecuteForTest runs the root command with args, writing to out and errOut.
func ExecuteForTest(args []string, out io.Writer, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/nps.yaml)")
	rootCmd.PersistentFlags().StringVar(&siteBaseURL, "site-base-url", "", "root of the parks website (default "+config.DefaultSiteBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&placesBaseURL, "places-base-url", "", "root of the MapQuest API (default "+config.DefaultPlacesBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache-backend", "", "request cache backend: file, redis or memory (default file)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache-path", "", "request cache file (default $XDG_CACHE_HOME/nps-crawler/nps_cache.json)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "redis address for the redis cache backend")
	rootCmd.PersistentFlags().StringVar(&redisKey, "redis-key", "", "redis hash holding the request cache")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests (default 10s)")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "minimum delay between HTTP requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to the base delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for jitter and backoff (0 for current time)")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "attempts per request on transient failures (default 3)")
	rootCmd.PersistentFlags().StringVar(&reportDir, "report-dir", "", "directory for generated reports (default report)")
	rootCmd.PersistentFlags().StringVar(&reportFormat, "report-format", "", "report format: markdown or html")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write structured events to stderr")
}

// InitConfigWithError reads the config file when given, otherwise builds the
// config from defaults and flags. Credentials always fall back to the
// environment.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if siteBaseURL != "" {
		u, err := parseBaseURL(siteBaseURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithSiteBaseURL(u)
	}

	if placesBaseURL != "" {
		u, err := parseBaseURL(placesBaseURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithPlacesBaseURL(u)
	}

	if cacheBackend != "" {
		configBuilder = configBuilder.WithCacheBackend(config.CacheBackend(cacheBackend))
	}

	if cachePath != "" {
		configBuilder = configBuilder.WithCachePath(cachePath)
	}

	if redisAddr != "" {
		configBuilder = configBuilder.WithRedisAddr(redisAddr)
	}

	if redisKey != "" {
		configBuilder = configBuilder.WithRedisKey(redisKey)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if reportDir != "" {
		configBuilder = configBuilder.WithReportDir(reportDir)
	}

	if reportFormat != "" {
		configBuilder = configBuilder.WithReportFormat(config.ReportFormat(reportFormat))
	}

	if verbose {
		configBuilder = configBuilder.WithVerbose(verbose)
	}

	return configBuilder.Build()
}

func parseBaseURL(raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: error parsing base URL %s: %s", config.ErrInvalidConfig, raw, err.Error())
	}
	return *u, nil
}

func ResetFlags() {
	cfgFile = ""
	siteBaseURL = ""
	placesBaseURL = ""
	cacheBackend = ""
	cachePath = ""
	redisAddr = ""
	redisKey = ""
	userAgent = ""
	timeout = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	maxAttempt = 0
	reportDir = ""
	reportFormat = ""
	verbose = false
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSiteBaseURLForTest(raw string) {
	siteBaseURL = raw
}

func SetPlacesBaseURLForTest(raw string) {
	placesBaseURL = raw
}

func SetCacheBackendForTest(backend string) {
	cacheBackend = backend
}

func SetCachePathForTest(path string) {
	cachePath = path
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetReportDirForTest(dir string) {
	reportDir = dir
}

func SetReportFormatForTest(format string) {
	reportFormat = format
}

func SetBaseDelayForTest(d time.Duration) {
	baseDelay = d
}
