package finch

import (
	"time"
)

// Default endpoints for the hosted Finch platform. Every one of them can be
// overridden in Config, which the test suite and self-hosted deployments
// rely on.
const (
	DefaultAPIEndpoint        = "https://api.finch.social/1.1"
	DefaultUploadEndpoint     = "https://upload.finch.social/1.1"
	DefaultStreamEndpoint     = "https://stream.finch.social/1.1"
	DefaultUserStreamEndpoint = "https://userstream.finch.social/1.1"
	DefaultSiteStreamEndpoint = "https://sitestream.finch.social/1.1"
	DefaultTokenURL           = "https://api.finch.social/oauth2/token"
)

// Credentials holds the credential material for one auth mode.
//
// With AppOnlyAuth, requests carry a bearer token: either BearerToken when
// pre-issued, or one obtained by a lazy credential exchange from the
// consumer pair. Otherwise all four OAuth fields are required and each
// request is signed with the user's token.
type Credentials struct {
	ConsumerKey       string `yaml:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret"`
	AccessToken       string `yaml:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret"`
	AppOnlyAuth       bool   `yaml:"app_only_auth"`
	BearerToken       string `yaml:"bearer_token"`
}

// Validate checks that the credential fields required by the selected auth
// mode are present. Valid input passes through unchanged.
func (c Credentials) Validate() error {
	if c.AppOnlyAuth {
		if c.BearerToken != "" {
			return nil
		}

		if c.ConsumerKey == "" || c.ConsumerSecret == "" {
			return ErrMissingConsumerCredentials
		}

		return nil
	}

	if c.ConsumerKey == "" || c.ConsumerSecret == "" || c.AccessToken == "" || c.AccessTokenSecret == "" {
		return ErrMissingUserCredentials
	}

	return nil
}

// Config represents client configuration for building a finch.Client.
type Config struct {
	// Credentials selects the auth mode and supplies its material.
	Credentials Credentials

	// Timeout is the per-request timeout. Zero means the default; contexts
	// passed to client methods still apply on top.
	Timeout time.Duration

	// TrustedCertFingerprints, when non-empty, pins TLS connections: the
	// hex-encoded SHA-256 fingerprint of the peer's leaf certificate must
	// appear in this set or the call fails before any body is read.
	TrustedCertFingerprints []string

	// Endpoint overrides. Empty fields fall back to the hosted defaults.
	APIEndpoint        string
	UploadEndpoint     string
	StreamEndpoint     string
	UserStreamEndpoint string
	SiteStreamEndpoint string
	TokenURL           string

	// RetryMax caps retries for calls that opt in via CallOptions. If 0, a
	// default cap is used; retries are never unbounded.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables verbose HTTP request/response logging when a Logger is set.
	Debug bool
	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger

	// Cache optionally enables response caching for timeline reads.
	Cache *CacheConfig
}

// Validate checks the configuration. It is called at construction and again
// whenever credentials are replaced.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	return c.Credentials.Validate()
}
