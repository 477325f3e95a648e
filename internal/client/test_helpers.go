package client

import (
	"sync"

	"github.com/finchdesk/finch/pkg/finch"
)

// mockLogger captures log calls for assertions.
type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *mockLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *mockLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *mockLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *mockLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *mockLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func (l *mockLogger) hasMessage(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.msg == msg {
			return true
		}
	}

	return false
}

// testConfig returns a user-auth configuration pointing every endpoint at
// the given test server, with caching off.
func testConfig(serverURL string) *finch.Config {
	return &finch.Config{
		Credentials: finch.Credentials{
			ConsumerKey:       "test-consumer-key",
			ConsumerSecret:    "test-consumer-secret",
			AccessToken:       "test-access-token",
			AccessTokenSecret: "test-access-token-secret",
		},
		APIEndpoint:        serverURL,
		UploadEndpoint:     serverURL,
		StreamEndpoint:     serverURL,
		UserStreamEndpoint: serverURL,
		SiteStreamEndpoint: serverURL,
		TokenURL:           serverURL + "/oauth2/token",
		Cache:              &finch.CacheConfig{Type: finch.CacheTypeNone},
	}
}

// appOnlyConfig returns an app-only configuration with a pre-issued bearer
// token so tests need no exchange round trip.
func appOnlyConfig(serverURL string) *finch.Config {
	config := testConfig(serverURL)
	config.Credentials = finch.Credentials{
		AppOnlyAuth: true,
		BearerToken: "test-bearer-token",
	}

	return config
}
