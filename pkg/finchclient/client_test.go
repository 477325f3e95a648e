package finchclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdesk/finch/pkg/finch"
	"github.com/finchdesk/finch/pkg/finchclient"
)

func TestNewRejectsNilConfig(t *testing.T) {
	t.Parallel()

	_, err := finchclient.New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrConfigRequired)
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	_, err := finchclient.New(&finch.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrMissingUserCredentials)

	_, err = finchclient.New(&finch.Config{
		Credentials: finch.Credentials{AppOnlyAuth: true},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, finch.ErrMissingConsumerCredentials)
}

func TestNewWithUserAuth(t *testing.T) {
	t.Parallel()

	cli, err := finchclient.NewWithUserAuth("ck", "cs", "at", "ats")
	require.NoError(t, err)
	require.NotNil(t, cli)
	assert.NotNil(t, cli.Statuses())
	assert.NotNil(t, cli.Search())
	assert.NotNil(t, cli.Users())
	assert.NotNil(t, cli.Media())
}

func TestNewNormalizesEndpoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/statuses/home_timeline.json", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	// Trailing slash and missing scheme both normalize away.
	bare := strings.TrimPrefix(server.URL, "http://")

	cli, err := finchclient.New(&finch.Config{
		Credentials: finch.Credentials{
			AppOnlyAuth: true,
			BearerToken: "token",
		},
		APIEndpoint: "http://" + bare + "/",
	})
	require.NoError(t, err)

	_, err = cli.Get(context.Background(), "statuses/home_timeline", nil, nil)
	require.NoError(t, err)
}

func TestNewWithBearerTokenSkipsExchange(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No exchange request must ever arrive here.
		require.NotEqual(t, "/oauth2/token", r.URL.Path)
		assert.Equal(t, "Bearer pre-issued", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cli, err := finchclient.New(&finch.Config{
		Credentials: finch.Credentials{
			AppOnlyAuth: true,
			BearerToken: "pre-issued",
		},
		APIEndpoint: server.URL,
		TokenURL:    server.URL + "/oauth2/token",
	})
	require.NoError(t, err)

	_, err = cli.Get(context.Background(), "statuses/home_timeline", nil, nil)
	require.NoError(t, err)
}

func TestLazyBearerExchangeOnFirstRequest(t *testing.T) {
	t.Parallel()

	var exchanged bool

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		exchanged = true
		_, _ = w.Write([]byte(`{"token_type": "bearer", "access_token": "lazy-token"}`))
	})
	mux.HandleFunc("/search/tweets.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer lazy-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"statuses": [], "search_metadata": {}}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	cli, err := finchclient.New(&finch.Config{
		Credentials: finch.Credentials{
			ConsumerKey:    "ck",
			ConsumerSecret: "cs",
			AppOnlyAuth:    true,
		},
		APIEndpoint: server.URL,
		TokenURL:    server.URL + "/oauth2/token",
	})
	require.NoError(t, err)

	// Construction alone performs no exchange.
	assert.False(t, exchanged)

	result, err := cli.Search().Statuses(context.Background(), "finch", nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, exchanged)
}
