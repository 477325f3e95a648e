package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdesk/finch/pkg/finch"
)

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(&finch.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrMissingUserCredentials)
}

func TestNewRejectsNilConfig(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrConfigRequired)
}

func TestGetSignsWithUserAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(header, "OAuth "))
		assert.Contains(t, header, `oauth_consumer_key="test-consumer-key"`)
		assert.Contains(t, header, `oauth_token="test-access-token"`)

		_, _ = w.Write([]byte(`[{"id": 1, "text": "hello"}]`))
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	result, err := c.Get(context.Background(), "statuses/home_timeline", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestGetUsesBearerWithAppOnlyAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-bearer-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, err := New(appOnlyConfig(server.URL))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "search/tweets", finch.Params{"q": "golang"}, nil)
	require.NoError(t, err)
}

func TestGetServesRepeatReadsFromCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[{"id": 1, "text": "cached"}]`))
	}))
	defer server.Close()

	logger := &mockLogger{}
	config := testConfig(server.URL)
	config.Cache = &finch.CacheConfig{Type: finch.CacheTypeMemory, MaxSize: 10}
	config.Logger = logger

	c, err := New(config)
	require.NoError(t, err)

	params := finch.Params{"count": 10}

	first, err := c.Get(context.Background(), "statuses/home_timeline", params, nil)
	require.NoError(t, err)

	second, err := c.Get(context.Background(), "statuses/home_timeline", params, nil)
	require.NoError(t, err)

	assert.Equal(t, first.RawBody, second.RawBody)
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, logger.hasMessage("cache hit"))
}

func TestGetNoCacheOptionBypassesCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.Cache = &finch.CacheConfig{Type: finch.CacheTypeMemory, MaxSize: 10}

	c, err := New(config)
	require.NoError(t, err)

	opts := &finch.CallOptions{NoCache: true}

	_, err = c.Get(context.Background(), "statuses/home_timeline", nil, opts)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "statuses/home_timeline", nil, opts)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestPostIsNeverCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"id": 1}`))
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.Cache = &finch.CacheConfig{Type: finch.CacheTypeMemory, MaxSize: 10}

	c, err := New(config)
	require.NoError(t, err)

	_, err = c.Post(context.Background(), "statuses/update", finch.Params{"status": "hi"}, nil)
	require.NoError(t, err)

	_, err = c.Post(context.Background(), "statuses/update", finch.Params{"status": "hi"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestGetPropagatesApplicationError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors": [{"code": 144, "message": "No status found with that ID."}]}`))
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "statuses/show/:id", finch.Params{"id": "404"}, nil)
	require.Error(t, err)
	assert.True(t, finch.IsApplication(err))
}

func TestRateLimitStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/application/rate_limit_status.json", r.URL.Path)
		assert.Equal(t, "statuses,search", r.URL.Query().Get("resources"))

		_, _ = w.Write([]byte(`{
			"rate_limit_context": {"access_token": "test-access-token"},
			"resources": {
				"statuses": {
					"/statuses/home_timeline": {"limit": 15, "remaining": 14, "reset": 1700000900}
				}
			}
		}`))
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	status, err := c.RateLimitStatus(context.Background(), []string{"statuses", "search"})
	require.NoError(t, err)

	entry := status.Resources["statuses"]["/statuses/home_timeline"]
	assert.Equal(t, 15, entry.Limit)
	assert.Equal(t, 14, entry.Remaining)
	assert.Equal(t, int64(1700000900), entry.Reset)
}

func TestUpdateCredentialsSwitchesAuthMode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))

		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			assert.Equal(t, "Bearer swapped-token", header)
		}
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "statuses/home_timeline", nil, nil)
	require.NoError(t, err)

	err = c.UpdateCredentials(finch.Credentials{
		AppOnlyAuth: true,
		BearerToken: "swapped-token",
	})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "statuses/home_timeline", nil, nil)
	require.NoError(t, err)
}

func TestUpdateCredentialsRejectsInvalid(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	err = c.UpdateCredentials(finch.Credentials{ConsumerKey: "only-key"})
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrMissingUserCredentials)

	// The previous credentials keep working.
	_, err = c.Get(context.Background(), "statuses/home_timeline", nil, nil)
	require.NoError(t, err)
}

func TestStreamThroughClient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statuses/filter.json", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("track"))

		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("{\"id\": 42, \"text\": \"streamed\"}\r\n"))
		flusher.Flush()

		<-r.Context().Done()
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	handle := c.Stream("statuses/filter", finch.Params{"track": "golang"})
	defer handle.Stop()

	select {
	case msg := <-handle.Messages():
		assert.JSONEq(t, `{"id": 42, "text": "streamed"}`, string(msg))
	case streamErr := <-handle.Errs():
		t.Fatalf("unexpected stream error: %v", streamErr)
	}
}
