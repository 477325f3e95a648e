// Package finchclient provides the main entry point for creating Finch API
// clients.
package finchclient

import (
	"fmt"
	"strings"

	"github.com/finchdesk/finch/internal/client"
	"github.com/finchdesk/finch/pkg/finch"
)

// New creates a Finch API client from a configuration. The configuration is
// validated eagerly so a misconfigured client is never handed out.
func New(config *finch.Config) (finch.Client, error) {
	if config == nil {
		return nil, finch.ErrConfigRequired
	}

	normalizeEndpoints(config)

	c, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithUserAuth creates a client that signs every request with the user's
// token.
func NewWithUserAuth(consumerKey, consumerSecret, accessToken, accessTokenSecret string) (finch.Client, error) {
	return New(&finch.Config{
		Credentials: finch.Credentials{
			ConsumerKey:       consumerKey,
			ConsumerSecret:    consumerSecret,
			AccessToken:       accessToken,
			AccessTokenSecret: accessTokenSecret,
		},
	})
}

// NewWithAppAuth creates an app-only client. The bearer token is obtained
// lazily on the first request and cached for the client's lifetime.
func NewWithAppAuth(consumerKey, consumerSecret string) (finch.Client, error) {
	return New(&finch.Config{
		Credentials: finch.Credentials{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
			AppOnlyAuth:    true,
		},
	})
}

// NewWithBearerToken creates an app-only client around a pre-issued bearer
// token. No credential exchange ever happens.
func NewWithBearerToken(token string) (finch.Client, error) {
	return New(&finch.Config{
		Credentials: finch.Credentials{
			AppOnlyAuth: true,
			BearerToken: token,
		},
	})
}

// normalizeEndpoints trims trailing slashes and adds a scheme where one is
// missing, so endpoint overrides compose cleanly with logical paths.
func normalizeEndpoints(config *finch.Config) {
	for _, endpoint := range []*string{
		&config.APIEndpoint,
		&config.UploadEndpoint,
		&config.StreamEndpoint,
		&config.UserStreamEndpoint,
		&config.SiteStreamEndpoint,
		&config.TokenURL,
	} {
		if *endpoint == "" {
			continue
		}

		normalized := strings.TrimSuffix(*endpoint, "/")
		if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
			normalized = "https://" + normalized
		}

		*endpoint = normalized
	}
}
