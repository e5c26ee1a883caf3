package places_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/config"
	"github.com/rohmanhakim/nps-crawler/internal/dispatcher"
	"github.com/rohmanhakim/nps-crawler/internal/fetcher"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/internal/places"
	"github.com/rohmanhakim/nps-crawler/pkg/retry"
	"github.com/rohmanhakim/nps-crawler/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyCategoryFixture = `{
  "info": {"statuscode": 0, "messages": []},
  "searchResults": [
    {"fields": {"name": "Old Faithful Inn", "group_sic_code_name_ext": "", "address": "", "city": ""}}
  ]
}`

const twoResultsFixture = `{
  "searchResults": [
    {"fields": {"name": "Canyon Lodge", "group_sic_code_name_ext": "Hotels & Motels", "address": "41 Clear Lake Trail", "city": "Yellowstone"}},
    {"fields": {"name": "Lake Store", "group_sic_code_name_ext": "General Merchandise", "address": "1 Lake Rd", "city": "Yellowstone"}}
  ]
}`

var testCredentials = config.Credentials{APIKey: "consumer-key", APISecret: "consumer-secret"}

type apiServer struct {
	*httptest.Server
	requests      atomic.Int32
	authorization atomic.Value
	query         atomic.Value
}

func newAPIServer(t *testing.T, body string) *apiServer {
	t.Helper()
	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.authorization.Store(r.Header.Get("Authorization"))
		s.query.Store(r.URL.Query())
		if r.URL.Path != "/search/v2/radius" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func newSignedClient(t *testing.T, server *apiServer, credentials config.Credentials) (*places.Client, *cache.RequestCache) {
	t.Helper()
	requestCache := cache.Open(context.Background(), cache.NewMemoryStore(), &metadata.NoopSink{})
	return newSignedClientOnCache(t, server, requestCache, credentials), requestCache
}

func newSignedClientOnCache(t *testing.T, server *apiServer, requestCache *cache.RequestCache, credentials config.Credentials) *places.Client {
	t.Helper()
	signed := places.NewSignedHTTPClient(credentials, 2*time.Second, server.Client())
	d := dispatcher.NewDispatcher(
		requestCache,
		fetcher.NewHttpFetcher(&metadata.NoopSink{}, signed, nil),
		retry.NewRetryParam(0, 1, 1, timeutil.NewBackoffParam(0, 1, 0)),
		"nps-crawler/test",
	)
	base, err := url.Parse(server.URL)
	require.NoError(t, err)
	return places.NewClient(d, *base, credentials, 10, 10, &metadata.NoopSink{})
}

func TestPlace_Format(t *testing.T) {
	withCategory := places.Place{Name: "Canyon Lodge", Category: "Hotels & Motels", Address: "41 Clear Lake Trail", City: "Yellowstone"}
	assert.Equal(t, "- Canyon Lodge (Hotels & Motels): 41 Clear Lake Trail, Yellowstone", withCategory.Format())

	noCategory := places.Place{Name: "Old Faithful Inn", Address: "ignored", City: "ignored"}
	assert.Equal(t, "- Old Faithful Inn (no category): no address, no city", noCategory.Format())
}

func TestFirst(t *testing.T) {
	_, ok := places.First(nil)
	assert.False(t, ok)

	p, ok := places.First([]places.Place{{Name: "a"}, {Name: "b"}})
	assert.True(t, ok)
	assert.Equal(t, "a", p.Name)
}

func TestClient_Nearby_EmptyCategory(t *testing.T) {
	server := newAPIServer(t, emptyCategoryFixture)
	client, _ := newSignedClient(t, server, testCredentials)

	line, err := client.Nearby(context.Background(), "82190")
	require.Nil(t, err)
	assert.Equal(t, "- Old Faithful Inn (no category): no address, no city", line)
}

func TestClient_Nearby_SelectsFirstResult(t *testing.T) {
	server := newAPIServer(t, twoResultsFixture)
	client, _ := newSignedClient(t, server, testCredentials)

	line, err := client.Nearby(context.Background(), "82190")
	require.Nil(t, err)
	assert.Equal(t, "- Canyon Lodge (Hotels & Motels): 41 Clear Lake Trail, Yellowstone", line)
}

func TestClient_Nearby_EmptyResultSet(t *testing.T) {
	server := newAPIServer(t, `{"searchResults": []}`)
	client, _ := newSignedClient(t, server, testCredentials)

	_, err := client.Nearby(context.Background(), "00000")
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, places.ErrNoResults))
}

func TestClient_Nearby_MissingResultKey(t *testing.T) {
	server := newAPIServer(t, `{"info": {"statuscode": 0}}`)
	client, _ := newSignedClient(t, server, testCredentials)

	_, err := client.Nearby(context.Background(), "00000")
	assert.True(t, errors.Is(err, places.ErrNoResults))
}

func TestClient_SearchNearby_RequestShape(t *testing.T) {
	server := newAPIServer(t, twoResultsFixture)
	client, requestCache := newSignedClient(t, server, testCredentials)

	found, err := client.SearchNearby(context.Background(), "82190-0168")
	require.Nil(t, err)
	require.Len(t, found, 2)

	query := server.query.Load().(url.Values)
	assert.Equal(t, "consumer-key", query.Get("key"))
	assert.Equal(t, "82190-0168", query.Get("origin"))
	assert.Equal(t, "10", query.Get("radius"))
	assert.Equal(t, "10", query.Get("maxMatches"))
	assert.Equal(t, "ignore", query.Get("ambiguities"))
	assert.Equal(t, "json", query.Get("outFormat"))

	authorization := server.authorization.Load().(string)
	assert.True(t, strings.HasPrefix(authorization, "OAuth "), "got %q", authorization)
	assert.Contains(t, authorization, `oauth_consumer_key="consumer-key"`)
	assert.Contains(t, authorization, "oauth_signature=")

	for _, key := range requestCache.Keys() {
		assert.NotContains(t, key, "consumer-key")
	}
}

func TestClient_SearchNearby_CachedAcrossCalls(t *testing.T) {
	server := newAPIServer(t, twoResultsFixture)
	client, _ := newSignedClient(t, server, testCredentials)

	for i := 0; i < 3; i++ {
		_, err := client.SearchNearby(context.Background(), "82190")
		require.Nil(t, err)
	}
	assert.Equal(t, int32(1), server.requests.Load())
}

func TestClient_SearchNearby_APIStatus(t *testing.T) {
	server := newAPIServer(t, `{"info": {"statuscode": 403, "messages": ["This key is not authorized"]}, "searchResults": []}`)
	client, _ := newSignedClient(t, server, testCredentials)

	_, err := client.SearchNearby(context.Background(), "82190")
	require.NotNil(t, err)

	var placesErr *places.PlacesError
	require.ErrorAs(t, err, &placesErr)
	assert.Equal(t, places.ErrCauseAPIStatus, placesErr.Cause)
	assert.Contains(t, placesErr.Message, "not authorized")
}

func TestClient_SearchNearby_APIStatusIsNotCached(t *testing.T) {
	server := newAPIServer(t, `{"info": {"statuscode": 403, "messages": ["This key is not authorized"]}, "searchResults": []}`)
	client, requestCache := newSignedClient(t, server, testCredentials)

	for i := 0; i < 2; i++ {
		_, err := client.SearchNearby(context.Background(), "82190")
		require.NotNil(t, err)
	}
	assert.Equal(t, 0, requestCache.Len())
	assert.Equal(t, int32(2), server.requests.Load())
}

func TestClient_Nearby_CachedAnswerNeedsNoCredentials(t *testing.T) {
	server := newAPIServer(t, emptyCategoryFixture)
	withKey, requestCache := newSignedClient(t, server, testCredentials)

	line, err := withKey.Nearby(context.Background(), "82190")
	require.Nil(t, err)
	require.Equal(t, 1, requestCache.Len())

	withoutKey := newSignedClientOnCache(t, server, requestCache, config.Credentials{})
	cached, err := withoutKey.Nearby(context.Background(), "82190")
	require.Nil(t, err)
	assert.Equal(t, line, cached)
	assert.Equal(t, int32(1), server.requests.Load())

	// a different origin is a miss and still needs the key
	_, err = withoutKey.Nearby(context.Background(), "49931")
	assert.True(t, errors.Is(err, config.ErrMissingCredentials))
	assert.Equal(t, int32(1), server.requests.Load())
}

func TestClient_SearchNearby_UndecodableBody(t *testing.T) {
	server := newAPIServer(t, `{"searchResults": [`)
	client, _ := newSignedClient(t, server, testCredentials)

	_, err := client.SearchNearby(context.Background(), "82190")

	var placesErr *places.PlacesError
	require.ErrorAs(t, err, &placesErr)
	assert.Equal(t, places.ErrCauseDecodeFailure, placesErr.Cause)
}

func TestClient_SearchNearby_MissingCredentials(t *testing.T) {
	server := newAPIServer(t, twoResultsFixture)
	client, _ := newSignedClient(t, server, config.Credentials{})

	_, err := client.SearchNearby(context.Background(), "82190")

	var placesErr *places.PlacesError
	require.ErrorAs(t, err, &placesErr)
	assert.Equal(t, places.ErrCauseNoCredentials, placesErr.Cause)
	assert.True(t, errors.Is(err, config.ErrMissingCredentials))
	assert.Equal(t, int32(0), server.requests.Load())
}

func TestNewClient_Endpoint(t *testing.T) {
	base, _ := url.Parse("http://www.mapquestapi.com/")
	client := places.NewClient(nil, *base, testCredentials, 10, 10, &metadata.NoopSink{})
	assert.Equal(t, "http://www.mapquestapi.com/search/v2/radius", client.Endpoint())
}
