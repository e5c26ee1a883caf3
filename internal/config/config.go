package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rohmanhakim/nps-crawler/internal/build"
	"github.com/spf13/viper"
)

type CacheBackend string

const (
	CacheBackendFile   CacheBackend = "file"
	CacheBackendRedis  CacheBackend = "redis"
	CacheBackendMemory CacheBackend = "memory"
)

type ReportFormat string

const (
	ReportFormatMarkdown ReportFormat = "markdown"
	ReportFormatHTML     ReportFormat = "html"
)

const (
	DefaultSiteBaseURL   = "https://www.nps.gov"
	DefaultPlacesBaseURL = "http://www.mapquestapi.com"
)

type Config struct {
	//===============
	// Remote endpoints
	//===============
	// Root of the parks website; state and site pages are resolved against it
	siteBaseURL url.URL
	// Root of the MapQuest API
	placesBaseURL url.URL

	//===============
	// Request cache
	//===============
	// Where cached responses live: a JSON file, a redis hash, or process memory
	cacheBackend CacheBackend
	// Path of the JSON cache file (file backend)
	cachePath string
	// Address and hash key of the redis backend
	redisAddr string
	redisKey  string

	//===============
	// Fetch
	//===============
	// Maximum time of a single HTTP request
	timeout time.Duration
	// User agent that will be used in the request header
	userAgent string
	// Minimum spacing between two network requests to the same host
	baseDelay time.Duration
	// Randomized variation added on top of the base delay
	jitter time.Duration
	// Seeds jitter and retry backoff
	randomSeed int64
	// maximum attempts for a retryable request failure
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff
	backoffMaxDuration time.Duration

	//===============
	// Nearby places
	//===============
	nearbyRadius     int
	nearbyMaxMatches int
	credentials      Credentials

	//===============
	// Output
	//===============
	reportDir    string
	reportFormat ReportFormat
	verbose      bool
}

type mapquestDTO struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type configDTO struct {
	SiteBaseURL            string        `mapstructure:"site_base_url"`
	PlacesBaseURL          string        `mapstructure:"places_base_url"`
	CacheBackend           string        `mapstructure:"cache_backend"`
	CachePath              string        `mapstructure:"cache_path"`
	RedisAddr              string        `mapstructure:"redis_addr"`
	RedisKey               string        `mapstructure:"redis_key"`
	Timeout                time.Duration `mapstructure:"timeout"`
	UserAgent              string        `mapstructure:"user_agent"`
	BaseDelay              time.Duration `mapstructure:"base_delay"`
	Jitter                 time.Duration `mapstructure:"jitter"`
	RandomSeed             int64         `mapstructure:"random_seed"`
	MaxAttempt             int           `mapstructure:"max_attempt"`
	BackoffInitialDuration time.Duration `mapstructure:"backoff_initial_duration"`
	BackoffMultiplier      float64       `mapstructure:"backoff_multiplier"`
	BackoffMaxDuration     time.Duration `mapstructure:"backoff_max_duration"`
	NearbyRadius           int           `mapstructure:"nearby_radius"`
	NearbyMaxMatches       int           `mapstructure:"nearby_max_matches"`
	ReportDir              string        `mapstructure:"report_dir"`
	ReportFormat           string        `mapstructure:"report_format"`
	Verbose                bool          `mapstructure:"verbose"`
	Mapquest               mapquestDTO   `mapstructure:"mapquest"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	builder := WithDefault()

	if dto.SiteBaseURL != "" {
		u, err := url.Parse(dto.SiteBaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: site_base_url: %s", ErrInvalidConfig, err.Error())
		}
		builder = builder.WithSiteBaseURL(*u)
	}
	if dto.PlacesBaseURL != "" {
		u, err := url.Parse(dto.PlacesBaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: places_base_url: %s", ErrInvalidConfig, err.Error())
		}
		builder = builder.WithPlacesBaseURL(*u)
	}
	if dto.CacheBackend != "" {
		builder = builder.WithCacheBackend(CacheBackend(dto.CacheBackend))
	}
	if dto.CachePath != "" {
		builder = builder.WithCachePath(dto.CachePath)
	}
	if dto.RedisAddr != "" {
		builder = builder.WithRedisAddr(dto.RedisAddr)
	}
	if dto.RedisKey != "" {
		builder = builder.WithRedisKey(dto.RedisKey)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	// zero is a valid base delay and jitter, so both are applied as-is
	builder = builder.WithBaseDelay(dto.BaseDelay).WithJitter(dto.Jitter)
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder = builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialDuration != 0 {
		builder = builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder = builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder = builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.NearbyRadius != 0 {
		builder = builder.WithNearbyRadius(dto.NearbyRadius)
	}
	if dto.NearbyMaxMatches != 0 {
		builder = builder.WithNearbyMaxMatches(dto.NearbyMaxMatches)
	}
	if dto.ReportDir != "" {
		builder = builder.WithReportDir(dto.ReportDir)
	}
	if dto.ReportFormat != "" {
		builder = builder.WithReportFormat(ReportFormat(dto.ReportFormat))
	}
	builder = builder.WithVerbose(dto.Verbose)
	builder = builder.WithCredentials(Credentials{
		APIKey:    dto.Mapquest.APIKey,
		APISecret: dto.Mapquest.APISecret,
	})

	return builder.Build()
}

// WithConfigFile loads a JSON, YAML or TOML config file. Keys that are absent
// keep their default value.
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("base_delay", defaultBaseDelay)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto configDTO
	if err := v.Unmarshal(&dto); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(dto)
}

const defaultBaseDelay = 250 * time.Millisecond

// DefaultCachePath is the cache file location under the XDG cache home.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, "nps-crawler", "nps_cache.json")
}

// WithDefault creates a new Config builder with default values for all fields.
func WithDefault() *Config {
	siteBaseURL, _ := url.Parse(DefaultSiteBaseURL)
	placesBaseURL, _ := url.Parse(DefaultPlacesBaseURL)
	defaultConfig := Config{
		siteBaseURL:            *siteBaseURL,
		placesBaseURL:          *placesBaseURL,
		cacheBackend:           CacheBackendFile,
		cachePath:              DefaultCachePath(),
		redisAddr:              "",
		redisKey:               "nps-crawler:cache",
		timeout:                10 * time.Second,
		userAgent:              build.UserAgent(),
		baseDelay:              defaultBaseDelay,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 200 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     5 * time.Second,
		nearbyRadius:           10,
		nearbyMaxMatches:       10,
		reportDir:              "report",
		reportFormat:           ReportFormatMarkdown,
		verbose:                false,
	}
	return &defaultConfig
}

func (c *Config) WithSiteBaseURL(u url.URL) *Config {
	c.siteBaseURL = u
	return c
}

func (c *Config) WithPlacesBaseURL(u url.URL) *Config {
	c.placesBaseURL = u
	return c
}

func (c *Config) WithCacheBackend(backend CacheBackend) *Config {
	c.cacheBackend = backend
	return c
}

func (c *Config) WithCachePath(path string) *Config {
	c.cachePath = path
	return c
}

func (c *Config) WithRedisAddr(addr string) *Config {
	c.redisAddr = addr
	return c
}

func (c *Config) WithRedisKey(key string) *Config {
	c.redisKey = key
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithNearbyRadius(radius int) *Config {
	c.nearbyRadius = radius
	return c
}

func (c *Config) WithNearbyMaxMatches(matches int) *Config {
	c.nearbyMaxMatches = matches
	return c
}

func (c *Config) WithReportDir(dir string) *Config {
	c.reportDir = dir
	return c
}

func (c *Config) WithReportFormat(format ReportFormat) *Config {
	c.reportFormat = format
	return c
}

func (c *Config) WithVerbose(verbose bool) *Config {
	c.verbose = verbose
	return c
}

// WithCredentials sets the MapQuest key pair. Blank fields are filled from
// the environment at Build time.
func (c *Config) WithCredentials(credentials Credentials) *Config {
	c.credentials = credentials
	return c
}

func (c *Config) Build() (Config, error) {
	if c.siteBaseURL.Scheme == "" || c.siteBaseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: site base URL must be absolute, got %q", ErrInvalidConfig, c.siteBaseURL.String())
	}
	if c.placesBaseURL.Scheme == "" || c.placesBaseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: places base URL must be absolute, got %q", ErrInvalidConfig, c.placesBaseURL.String())
	}

	switch c.cacheBackend {
	case CacheBackendFile:
		if c.cachePath == "" {
			return Config{}, fmt.Errorf("%w: cache path is required for the file backend", ErrInvalidConfig)
		}
	case CacheBackendRedis:
		if c.redisAddr == "" {
			return Config{}, fmt.Errorf("%w: redis address is required for the redis backend", ErrInvalidConfig)
		}
	case CacheBackendMemory:
	default:
		return Config{}, fmt.Errorf("%w: cache backend must be 'file', 'redis' or 'memory', got %q", ErrInvalidConfig, c.cacheBackend)
	}

	switch c.reportFormat {
	case ReportFormatMarkdown, ReportFormatHTML:
	default:
		return Config{}, fmt.Errorf("%w: report format must be 'markdown' or 'html', got %q", ErrInvalidConfig, c.reportFormat)
	}

	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: max attempt must be at least 1", ErrInvalidConfig)
	}
	if c.baseDelay < 0 || c.jitter < 0 {
		return Config{}, fmt.Errorf("%w: base delay and jitter cannot be negative", ErrInvalidConfig)
	}
	if c.nearbyRadius <= 0 || c.nearbyMaxMatches <= 0 {
		return Config{}, fmt.Errorf("%w: nearby radius and max matches must be positive", ErrInvalidConfig)
	}

	c.credentials = CredentialsFromEnv().merge(c.credentials)

	return *c, nil
}

func (c Config) SiteBaseURL() url.URL {
	return c.siteBaseURL
}

func (c Config) PlacesBaseURL() url.URL {
	return c.placesBaseURL
}

func (c Config) CacheBackend() CacheBackend {
	return c.cacheBackend
}

func (c Config) CachePath() string {
	return c.cachePath
}

func (c Config) RedisAddr() string {
	return c.redisAddr
}

func (c Config) RedisKey() string {
	return c.redisKey
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) NearbyRadius() int {
	return c.nearbyRadius
}

func (c Config) NearbyMaxMatches() int {
	return c.nearbyMaxMatches
}

func (c Config) Credentials() Credentials {
	return c.credentials
}

func (c Config) ReportDir() string {
	return c.reportDir
}

func (c Config) ReportFormat() ReportFormat {
	return c.reportFormat
}

func (c Config) Verbose() bool {
	return c.verbose
}
