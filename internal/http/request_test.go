package http

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdesk/finch/internal/auth"
	"github.com/finchdesk/finch/pkg/finch"
)

type staticTokenManager struct {
	token string
	err   error
}

func (m *staticTokenManager) GetToken(_ context.Context) (string, error) {
	return m.token, m.err
}

func (m *staticTokenManager) InvalidateToken() {}

func testEndpoints() Endpoints {
	return Endpoints{
		API:        "https://api.example.com/1.1",
		Upload:     "https://upload.example.com/1.1",
		Stream:     "https://stream.example.com/1.1",
		UserStream: "https://userstream.example.com/1.1",
		SiteStream: "https://sitestream.example.com/1.1",
	}
}

func bearerBuilder(t *testing.T) *Builder {
	t.Helper()

	return NewBuilder(testEndpoints(), nil, &staticTokenManager{token: "test-token"})
}

func TestBuildRoutesRESTPath(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)

	desc, err := builder.Build(context.Background(), &Request{
		Method: "get",
		Path:   "statuses/home_timeline",
	})
	require.NoError(t, err)

	assert.Equal(t, "GET", desc.Method)
	assert.Equal(t, "https://api.example.com/1.1/statuses/home_timeline.json", desc.URL)
	assert.Equal(t, "Bearer test-token", desc.Header.Get("Authorization"))
	assert.Equal(t, "application/json", desc.Header.Get("Accept"))
	assert.False(t, desc.Multipart)
}

func TestBuildEncodesParamsInQuery(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)

	desc, err := builder.Build(context.Background(), &Request{
		Method: "GET",
		Path:   "search/tweets",
		Params: finch.Params{
			"q":           "golang",
			"count":       50,
			"include_rts": true,
			"ids":         []int64{1, 2, 3},
		},
	})
	require.NoError(t, err)

	parsed, err := url.Parse(desc.URL)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "golang", query.Get("q"))
	assert.Equal(t, "50", query.Get("count"))
	assert.Equal(t, "true", query.Get("include_rts"))
	assert.Equal(t, "1,2,3", query.Get("ids"))
}

func TestBuildSubstitutesPathParams(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)

	desc, err := builder.Build(context.Background(), &Request{
		Method: "POST",
		Path:   "statuses/retweet/:id",
		Params: finch.Params{"id": "12345", "trim_user": true},
	})
	require.NoError(t, err)

	parsed, err := url.Parse(desc.URL)
	require.NoError(t, err)

	assert.Equal(t, "/1.1/statuses/retweet/12345.json", parsed.Path)

	// The consumed placeholder must not leak into the query string.
	query := parsed.Query()
	assert.False(t, query.Has("id"))
	assert.Equal(t, "true", query.Get("trim_user"))
}

func TestBuildMissingPathParam(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)

	_, err := builder.Build(context.Background(), &Request{
		Method: "POST",
		Path:   "statuses/destroy/:id",
		Params: finch.Params{"trim_user": true},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrMissingPathParam)
	assert.Contains(t, err.Error(), "id")
}

func TestBuildDoesNotMutateCallerParams(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)
	params := finch.Params{"id": "99", "trim_user": true}

	_, err := builder.Build(context.Background(), &Request{
		Method: "POST",
		Path:   "statuses/show/:id",
		Params: params,
	})
	require.NoError(t, err)

	assert.Equal(t, finch.Params{"id": "99", "trim_user": true}, params)
}

func TestBuildMultipartPath(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)

	desc, err := builder.Build(context.Background(), &Request{
		Method: "POST",
		Path:   "media/upload",
		Params: finch.Params{"media_data": "aGVsbG8="},
	})
	require.NoError(t, err)

	assert.True(t, desc.Multipart)
	assert.Equal(t, "https://upload.example.com/1.1/media/upload.json", desc.URL)
	assert.Equal(t, "aGVsbG8=", desc.Form.Get("media_data"))

	// Multipart params ride the form body, never the query string.
	parsed, err := url.Parse(desc.URL)
	require.NoError(t, err)
	assert.Empty(t, parsed.RawQuery)

	// The executor sets the boundary content type when it encodes the body.
	assert.Empty(t, desc.Header.Get("Content-Type"))
}

func TestBuildStreamRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "public stream",
			path:     "statuses/filter",
			expected: "https://stream.example.com/1.1/statuses/filter.json",
		},
		{
			name:     "user stream",
			path:     "user",
			expected: "https://userstream.example.com/1.1/user.json",
		},
		{
			name:     "site stream",
			path:     "site",
			expected: "https://sitestream.example.com/1.1/site.json",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			builder := bearerBuilder(t)

			desc, err := builder.Build(context.Background(), &Request{
				Method:    "GET",
				Path:      tt.path,
				Streaming: true,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, desc.URL)
			assert.True(t, desc.Streaming)
		})
	}
}

func TestBuildAbsoluteURLPassesThrough(t *testing.T) {
	t.Parallel()

	builder := bearerBuilder(t)

	desc, err := builder.Build(context.Background(), &Request{
		Method: "GET",
		Path:   "https://other.example.com/custom/endpoint.json",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://other.example.com/custom/endpoint.json", desc.URL)
}

func TestBuildSignsWithUserCredentials(t *testing.T) {
	t.Parallel()

	signer := auth.NewOAuth1Signer(auth.OAuth1Credentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	})
	builder := NewBuilder(testEndpoints(), signer, nil)

	desc, err := builder.Build(context.Background(), &Request{
		Method: "GET",
		Path:   "account/verify_credentials",
	})
	require.NoError(t, err)

	header := desc.Header.Get("Authorization")
	assert.True(t, len(header) > 0)
	assert.Contains(t, header, "OAuth ")
	assert.Contains(t, header, `oauth_consumer_key="ck"`)
	assert.Contains(t, header, "oauth_signature=")
}

func TestBuildTokenResolutionFailure(t *testing.T) {
	t.Parallel()

	wantErr := finch.NewAuthError(403, errors.New("forbidden"))
	builder := NewBuilder(testEndpoints(), nil, &staticTokenManager{err: wantErr})

	_, err := builder.Build(context.Background(), &Request{
		Method: "GET",
		Path:   "statuses/home_timeline",
	})
	require.Error(t, err)
	assert.True(t, finch.IsAuthResolution(err))
}

func TestStringifyParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{name: "string", value: "hello", expected: "hello"},
		{name: "bool", value: false, expected: "false"},
		{name: "int", value: 42, expected: "42"},
		{name: "int64", value: int64(9007199254740993), expected: "9007199254740993"},
		{name: "float", value: 1.5, expected: "1.5"},
		{name: "string slice", value: []string{"a", "b"}, expected: "a,b"},
		{name: "interface slice", value: []interface{}{"a", 2}, expected: "a,2"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, stringifyParam(tt.value))
		})
	}
}
