//go:build integration
// +build integration

package integration

import (
	"os"
	"testing"

	"github.com/finchdesk/finch/pkg/finch"
	"github.com/finchdesk/finch/pkg/finchclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint    string
	StreamEndpoint string
	Credentials    finch.Credentials
	Verbose        bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:    os.Getenv("FINCH_API_ENDPOINT"),
		StreamEndpoint: os.Getenv("FINCH_STREAM_ENDPOINT"),
		Credentials: finch.Credentials{
			ConsumerKey:       os.Getenv("FINCH_CONSUMER_KEY"),
			ConsumerSecret:    os.Getenv("FINCH_CONSUMER_SECRET"),
			AccessToken:       os.Getenv("FINCH_ACCESS_TOKEN"),
			AccessTokenSecret: os.Getenv("FINCH_ACCESS_TOKEN_SECRET"),
		},
		Verbose: os.Getenv("FINCH_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test when required credentials are absent.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	if config.Credentials.Validate() != nil {
		t.Skip("FINCH_* credentials not set, skipping integration test")
	}
}

// NewClient builds a client for the configured deployment.
func (config *TestConfig) NewClient(t *testing.T) finch.Client {
	cfg := &finch.Config{
		Credentials:    config.Credentials,
		APIEndpoint:    config.APIEndpoint,
		StreamEndpoint: config.StreamEndpoint,
	}

	client, err := finchclient.New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}
