// Package client contains the concrete implementation of the finch.Client
// interface.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/finchdesk/finch/internal/auth"
	"github.com/finchdesk/finch/internal/constants"
	finchhttp "github.com/finchdesk/finch/internal/http"
	"github.com/finchdesk/finch/internal/stream"
	"github.com/finchdesk/finch/pkg/finch"
)

// Client is the concrete implementation of finch.Client.
type Client struct {
	config   *finch.Config
	executor *finchhttp.Client
	cache    finch.Cache
	cacheTTL time.Duration
	logger   finch.Logger

	// mu guards the auth state, which UpdateCredentials replaces wholesale.
	mu      sync.RWMutex
	builder *finchhttp.Builder
	tokens  auth.TokenManager

	statuses *StatusesClient
	search   *SearchClient
	users    *UsersClient
	media    *MediaClient
}

// New creates a client from a validated configuration.
func New(config *finch.Config) (*Client, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	cache, err := finch.NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating response cache: %w", err)
	}

	cacheTTL := constants.DefaultCacheTTL
	if config.Cache != nil && config.Cache.TTL > 0 {
		cacheTTL = config.Cache.TTL
	}

	c := &Client{
		config:   config,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   config.Logger,
	}

	c.executor = finchhttp.NewClient(
		finchhttp.WithTimeout(config.Timeout),
		finchhttp.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax),
		finchhttp.WithLogger(config.Logger),
		finchhttp.WithDebug(config.Debug),
		finchhttp.WithUserAgent(config.UserAgent),
		finchhttp.WithPinnedFingerprints(config.TrustedCertFingerprints),
	)

	c.builder, c.tokens = buildAuth(config, config.Credentials)

	c.statuses = &StatusesClient{client: c}
	c.search = &SearchClient{client: c}
	c.users = &UsersClient{client: c}
	c.media = &MediaClient{client: c}

	return c, nil
}

// buildAuth assembles the request builder for a credential set. App-only
// credentials get a token manager (static when the token is pre-issued),
// user credentials get a signer.
func buildAuth(config *finch.Config, creds finch.Credentials) (*finchhttp.Builder, auth.TokenManager) {
	endpoints := finchhttp.Endpoints{
		API:        defaultEndpoint(config.APIEndpoint, finch.DefaultAPIEndpoint),
		Upload:     defaultEndpoint(config.UploadEndpoint, finch.DefaultUploadEndpoint),
		Stream:     defaultEndpoint(config.StreamEndpoint, finch.DefaultStreamEndpoint),
		UserStream: defaultEndpoint(config.UserStreamEndpoint, finch.DefaultUserStreamEndpoint),
		SiteStream: defaultEndpoint(config.SiteStreamEndpoint, finch.DefaultSiteStreamEndpoint),
	}

	if !creds.AppOnlyAuth {
		signer := auth.NewOAuth1Signer(auth.OAuth1Credentials{
			ConsumerKey:       creds.ConsumerKey,
			ConsumerSecret:    creds.ConsumerSecret,
			AccessToken:       creds.AccessToken,
			AccessTokenSecret: creds.AccessTokenSecret,
		})

		return finchhttp.NewBuilder(endpoints, signer, nil), nil
	}

	var tokens auth.TokenManager
	if creds.BearerToken != "" {
		tokens = auth.NewStaticTokenManager(creds.BearerToken)
	} else {
		tokens = auth.NewBearerTokenManager(&auth.BearerConfig{
			TokenURL:       defaultEndpoint(config.TokenURL, finch.DefaultTokenURL),
			ConsumerKey:    creds.ConsumerKey,
			ConsumerSecret: creds.ConsumerSecret,
		}, nil)
	}

	return finchhttp.NewBuilder(endpoints, nil, tokens), tokens
}

func defaultEndpoint(override, fallback string) string {
	if override != "" {
		return strings.TrimSuffix(override, "/")
	}

	return fallback
}

// currentBuilder snapshots the auth state for one call.
func (c *Client) currentBuilder() *finchhttp.Builder {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.builder
}

// Get performs a GET against a logical resource path. Cached responses are
// served for repeat reads within the cache TTL unless the call opts out.
func (c *Client) Get(ctx context.Context, path string, params finch.Params, opts *finch.CallOptions) (*finch.Result, error) {
	desc, err := c.currentBuilder().Build(ctx, &finchhttp.Request{
		Method: http.MethodGet,
		Path:   path,
		Params: params,
	})
	if err != nil {
		return nil, err
	}

	useCache := c.cache != nil && (opts == nil || !opts.NoCache)
	cacheKey := finch.CacheKey(desc.URL)

	if useCache {
		if entry, cacheErr := c.cache.Get(ctx, cacheKey); cacheErr == nil {
			if c.logger != nil {
				c.logger.Debug("cache hit", map[string]interface{}{"path": path})
			}

			return &finch.Result{
				StatusCode: http.StatusOK,
				RawBody:    entry.Value,
			}, nil
		}
	}

	resp, err := c.executor.Do(ctx, desc, opts)
	if err != nil {
		return nil, err
	}

	if useCache && resp.StatusCode == http.StatusOK && len(resp.Body) > 0 {
		cacheErr := c.cache.Set(ctx, cacheKey, resp.Body, c.cacheTTL)
		if cacheErr != nil && c.logger != nil {
			c.logger.Warn("caching response failed", map[string]interface{}{
				"path":  path,
				"error": cacheErr.Error(),
			})
		}
	}

	return &finch.Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Headers,
		RawBody:    resp.Body,
	}, nil
}

// Post performs a POST against a logical resource path. Never cached.
func (c *Client) Post(ctx context.Context, path string, params finch.Params, opts *finch.CallOptions) (*finch.Result, error) {
	desc, err := c.currentBuilder().Build(ctx, &finchhttp.Request{
		Method: http.MethodPost,
		Path:   path,
		Params: params,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.executor.Do(ctx, desc, opts)
	if err != nil {
		return nil, err
	}

	return &finch.Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Headers,
		RawBody:    resp.Body,
	}, nil
}

// Stream opens a streaming connection. The returned handle is usable
// immediately; connection setup, including any bearer token resolution, runs
// in the background and reports on the handle's error channel.
func (c *Client) Stream(path string, params finch.Params) finch.StreamHandle {
	descriptor := func(ctx context.Context) (*finchhttp.RequestDescriptor, error) {
		return c.currentBuilder().Build(ctx, &finchhttp.Request{
			Method:    http.MethodGet,
			Path:      path,
			Params:    params,
			Streaming: true,
		})
	}

	return stream.New(c.executor, descriptor, c.logger)
}

// RateLimitStatus reports the caller's current rate limit windows, optionally
// narrowed to the named resource families.
func (c *Client) RateLimitStatus(ctx context.Context, resources []string) (*finch.RateLimitStatus, error) {
	params := finch.Params{}
	if len(resources) > 0 {
		params["resources"] = resources
	}

	result, err := c.Get(ctx, "application/rate_limit_status", params, &finch.CallOptions{NoCache: true})
	if err != nil {
		return nil, err
	}

	var status finch.RateLimitStatus

	err = result.Decode(&status)
	if err != nil {
		return nil, fmt.Errorf("decoding rate limit status: %w", err)
	}

	return &status, nil
}

// UpdateCredentials swaps the credential material. The new credentials are
// validated first; on failure the client keeps its current auth state. Any
// cached bearer token is dropped.
func (c *Client) UpdateCredentials(creds finch.Credentials) error {
	err := creds.Validate()
	if err != nil {
		return err
	}

	builder, tokens := buildAuth(c.config, creds)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens != nil {
		c.tokens.InvalidateToken()
	}

	c.builder = builder
	c.tokens = tokens
	c.config.Credentials = creds

	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}

	return nil
}

// Statuses implements finch.ResourceClients.
func (c *Client) Statuses() finch.StatusesClient {
	return c.statuses
}

// Search implements finch.ResourceClients.
func (c *Client) Search() finch.SearchClient {
	return c.search
}

// Users implements finch.ResourceClients.
func (c *Client) Users() finch.UsersClient {
	return c.users
}

// Media implements finch.ResourceClients.
func (c *Client) Media() finch.MediaClient {
	return c.media
}
