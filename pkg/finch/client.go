package finch

import (
	"context"
	"encoding/json"
	"net/http"
)

// Params is a per-call parameter mapping. Values may be strings, numbers,
// booleans, or slices of those; slice values are joined with commas before
// hitting the wire. The client never mutates a caller's map.
type Params map[string]interface{}

// CallOptions carries per-call behavior flags, independent of Config.
type CallOptions struct {
	// Retry opts this call into the transport retry policy. Retries are
	// bounded by Config.RetryMax.
	Retry bool

	// NoCache bypasses the response cache for this call even when one is
	// configured.
	NoCache bool
}

// Result is the outcome of a successful HTTP exchange.
type Result struct {
	StatusCode int
	Header     http.Header
	RawBody    []byte
}

// Decode unmarshals the response body into v.
func (r *Result) Decode(v interface{}) error {
	return json.Unmarshal(r.RawBody, v)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// StreamHandle is the consumer view of a long-lived streaming connection.
//
// The handle is returned before its connection is configured, so consumers
// can register on Messages and Errs immediately and never miss a setup
// failure. A setup failure arrives on Errs as a single terminal error.
type StreamHandle interface {
	// Messages delivers decoded stream events. Closed when the stream ends.
	Messages() <-chan json.RawMessage

	// Errs delivers connection and setup errors. Fatal setup errors close
	// Messages shortly after.
	Errs() <-chan error

	// Stop tears the connection down and releases the handle's resources.
	Stop()
}

// TimelineParams narrows Params for the timeline operations.
type TimelineParams struct {
	Count      int
	SinceID    int64
	MaxID      int64
	ScreenName string // user timeline only
}

// StatusesClient provides access to status resources.
type StatusesClient interface {
	HomeTimeline(ctx context.Context, params *TimelineParams) ([]Status, error)
	MentionsTimeline(ctx context.Context, params *TimelineParams) ([]Status, error)
	UserTimeline(ctx context.Context, params *TimelineParams) ([]Status, error)
	Show(ctx context.Context, id int64) (*Status, error)
	Update(ctx context.Context, text string, params Params) (*Status, error)
	Destroy(ctx context.Context, id int64) (*Status, error)
	Retweet(ctx context.Context, id int64) (*Status, error)
}

// SearchClient provides access to the search resource.
type SearchClient interface {
	Statuses(ctx context.Context, query string, params Params) (*SearchResult, error)
}

// UsersClient provides access to user and account resources.
type UsersClient interface {
	Show(ctx context.Context, screenName string) (*User, error)
	Lookup(ctx context.Context, screenNames []string) ([]User, error)
	UpdateProfileImage(ctx context.Context, imageBase64 string) (*User, error)
}

// MediaClient provides access to media uploads.
type MediaClient interface {
	Upload(ctx context.Context, mediaBase64 string) (*MediaUploadResult, error)
	UploadChunked(ctx context.Context, filePath, mediaType string) (*MediaUploadResult, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Statuses() StatusesClient
	Search() SearchClient
	Users() UsersClient
	Media() MediaClient
}

// Client is the full client surface.
//
// Get and Post take a logical resource path such as "statuses/home_timeline"
// or "statuses/show/:id"; :name placeholders are substituted from params.
// Absolute URLs pass through untouched.
type Client interface {
	ResourceClients

	Get(ctx context.Context, path string, params Params, opts *CallOptions) (*Result, error)
	Post(ctx context.Context, path string, params Params, opts *CallOptions) (*Result, error)

	// Stream returns a handle immediately and completes its configuration
	// asynchronously, including any bearer token resolution.
	Stream(path string, params Params) StreamHandle

	// RateLimitStatus reports the caller's current rate limit windows.
	RateLimitStatus(ctx context.Context, resources []string) (*RateLimitStatus, error)

	// UpdateCredentials swaps the credential material, re-validating it and
	// dropping any cached bearer token.
	UpdateCredentials(creds Credentials) error
}
