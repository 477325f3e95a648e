package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for REST requests.
	DefaultHTTPTimeout = 30 * time.Second

	// TokenExchangeTimeout bounds the app-only bearer token exchange.
	TokenExchangeTimeout = 15 * time.Second

	// StreamReadTimeout is how long a streaming connection may stay silent
	// before the read loop treats it as stalled and reconnects.
	StreamReadTimeout = 90 * time.Second
)

// Retry limits and backoff.
const (
	// DefaultRetryMax caps retries for a single call that opted in.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum backoff between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// StreamBackoffMin is the initial reconnect delay for streams.
	StreamBackoffMin = 250 * time.Millisecond

	// StreamBackoffMax caps the reconnect delay for streams.
	StreamBackoffMax = 16 * time.Second
)

// Chunked media upload limits.
const (
	// UploadChunkSize is the size of a single APPEND segment.
	UploadChunkSize = 1024 * 1024

	// UploadMaxBytes is the largest media file the uploader accepts.
	UploadMaxBytes = 512 * 1024 * 1024
)

// Token handling.
const (
	// BearerTokenType is the token_type expected from the exchange endpoint.
	BearerTokenType = "bearer"
)

// Pagination and display limits.
const (
	// DefaultTimelineCount is the default number of statuses per timeline page.
	DefaultTimelineCount = 20

	// MaxTimelineCount is the API's per-request ceiling for timeline pages.
	MaxTimelineCount = 200
)

// Cache sizing.
const (
	// DefaultCacheSize is the default entry limit for the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 2 * time.Minute

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)
