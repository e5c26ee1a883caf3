package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/rohmanhakim/nps-crawler/internal/cache"
	"github.com/rohmanhakim/nps-crawler/internal/config"
	"github.com/rohmanhakim/nps-crawler/internal/dispatcher"
	"github.com/rohmanhakim/nps-crawler/internal/fetcher"
	"github.com/rohmanhakim/nps-crawler/internal/metadata"
	"github.com/rohmanhakim/nps-crawler/pkg/failure"
)

const radiusSearchPath = "/search/v2/radius"

// Getter serves requests through the request cache.
type Getter interface {
	Get(ctx context.Context, req dispatcher.Request) (cache.Entry, failure.ClassifiedError)
}

// Client queries the MapQuest radius search. The API key travels as the
// "key" query parameter and is never part of the cache key.
type Client struct {
	getter       Getter
	endpoint     string
	credentials  config.Credentials
	radius       int
	maxMatches   int
	metadataSink metadata.MetadataSink
}

func NewClient(
	getter Getter,
	baseURL url.URL,
	credentials config.Credentials,
	radius int,
	maxMatches int,
	metadataSink metadata.MetadataSink,
) *Client {
	endpoint := baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + radiusSearchPath
	endpoint.RawQuery = ""
	return &Client{
		getter:       getter,
		endpoint:     endpoint.String(),
		credentials:  credentials,
		radius:       radius,
		maxMatches:   maxMatches,
		metadataSink: metadataSink,
	}
}

// NewSignedHTTPClient returns an http.Client that signs every request with
// the consumer key pair (two-legged OAuth1). base supplies the transport;
// nil means http.DefaultTransport.
func NewSignedHTTPClient(credentials config.Credentials, timeout time.Duration, base *http.Client) *http.Client {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, base)
	}
	oauthConfig := oauth1.NewConfig(credentials.APIKey, credentials.APISecret)
	client := oauthConfig.Client(ctx, oauth1.NewToken("", ""))
	client.Timeout = timeout
	return client
}

// Endpoint is the radius search URL without query.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SearchNearby returns the places within the configured radius of zip, in
// API order. A cached answer is served without credentials; only a miss
// needs them. Responses the API marks as failed are never cached.
func (c *Client) SearchNearby(ctx context.Context, zip string) ([]Place, failure.ClassifiedError) {
	entry, err := c.getter.Get(ctx, dispatcher.Request{
		Endpoint:    c.endpoint,
		Params:      c.searchParams(zip),
		Unkeyed:     map[string]string{"key": c.credentials.APIKey},
		Kind:        fetcher.ContentJSON,
		BeforeFetch: c.checkCredentials,
		Accept: func(entry cache.Entry) failure.ClassifiedError {
			if _, err := decodeSearch(entry); err != nil {
				return err
			}
			return nil
		},
	})
	if err != nil {
		var placesErr *PlacesError
		if errors.As(err, &placesErr) {
			c.recordError("Client.SearchNearby", zip, placesErr)
		}
		return nil, err
	}

	found, placesErr := decodeSearch(entry)
	if placesErr != nil {
		c.recordError("Client.SearchNearby", zip, placesErr)
		return nil, placesErr
	}
	return found, nil
}

func (c *Client) checkCredentials() failure.ClassifiedError {
	if err := c.credentials.Validate(); err != nil {
		return &PlacesError{
			Message: err.Error(),
			Cause:   ErrCauseNoCredentials,
			Err:     err,
		}
	}
	return nil
}

// decodeSearch turns a radius search body into places. A body the API
// flags with a non-zero status code is an error.
func decodeSearch(entry cache.Entry) ([]Place, *PlacesError) {
	var resp searchResponse
	if err := json.Unmarshal([]byte(entry.Body), &resp); err != nil {
		return nil, &PlacesError{
			Message: err.Error(),
			Cause:   ErrCauseDecodeFailure,
			Err:     err,
		}
	}

	if resp.Info.StatusCode != 0 {
		return nil, &PlacesError{
			Message: fmt.Sprintf("status %d: %s", resp.Info.StatusCode, strings.Join(resp.Info.Messages, "; ")),
			Cause:   ErrCauseAPIStatus,
		}
	}
	return resp.places(), nil
}

// Nearby returns the formatted line of the first place near zip.
// An empty result set is reported as ErrNoResults.
func (c *Client) Nearby(ctx context.Context, zip string) (string, failure.ClassifiedError) {
	found, err := c.SearchNearby(ctx, zip)
	if err != nil {
		return "", err
	}

	first, ok := First(found)
	if !ok {
		return "", &PlacesError{
			Message: fmt.Sprintf("origin %s", zip),
			Cause:   ErrCauseNoResults,
			Err:     ErrNoResults,
		}
	}
	return first.Format(), nil
}

func (c *Client) searchParams(zip string) cache.Params {
	return cache.Params{
		"origin":      zip,
		"radius":      strconv.Itoa(c.radius),
		"maxMatches":  strconv.Itoa(c.maxMatches),
		"ambiguities": "ignore",
		"outFormat":   "json",
	}
}

func (c *Client) recordError(callerMethod string, zip string, err *PlacesError) {
	c.metadataSink.RecordError(
		time.Now(),
		"places",
		callerMethod,
		mapPlacesErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, c.endpoint),
			metadata.NewAttr(metadata.AttrField, zip),
		},
	)
}
