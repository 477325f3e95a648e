package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/finchdesk/finch/internal/constants"
	"github.com/finchdesk/finch/pkg/finch"
)

// BearerConfig configures the app-only credential exchange.
type BearerConfig struct {
	// TokenURL is the credential exchange endpoint.
	TokenURL string

	// ConsumerKey and ConsumerSecret authenticate the application.
	ConsumerKey    string
	ConsumerSecret string
}

// BearerTokenManager lazily exchanges consumer credentials for a bearer
// token and caches it for the life of the client. Concurrent first-time
// resolutions share a single in-flight exchange; a failed exchange caches
// nothing, so the next call retries.
type BearerTokenManager struct {
	config     *BearerConfig
	httpClient *http.Client
	store      *TokenStore
	group      singleflight.Group
}

// NewBearerTokenManager creates a bearer token manager. httpClient may be
// nil, in which case a default client with the exchange timeout is used.
func NewBearerTokenManager(config *BearerConfig, httpClient *http.Client) *BearerTokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.TokenExchangeTimeout}
	}

	return &BearerTokenManager{
		config:     config,
		httpClient: httpClient,
		store:      NewTokenStore(),
	}
}

// GetToken implements TokenManager.GetToken.
func (m *BearerTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	value, err, _ := m.group.Do("bearer", func() (interface{}, error) {
		// A waiter may arrive after the winner already cached the token.
		if token := m.store.Get(); token.Valid() {
			return token.AccessToken, nil
		}

		token, err := m.exchange(ctx)
		if err != nil {
			return nil, err
		}

		m.store.Set(token)

		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	accessToken, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token exchange result type %T", value)
	}

	return accessToken, nil
}

// InvalidateToken implements TokenManager.InvalidateToken.
func (m *BearerTokenManager) InvalidateToken() {
	m.store.Clear()
}

// exchange performs the client_credentials grant against the token URL.
func (m *BearerTokenManager) exchange(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, finch.NewAuthError(0, fmt.Errorf("creating token request: %w", err))
	}

	// The exchange endpoint expects the consumer pair RFC 1738 encoded
	// before base64, which only matters for keys with reserved characters.
	req.SetBasicAuth(url.QueryEscape(m.config.ConsumerKey), url.QueryEscape(m.config.ConsumerSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, finch.NewAuthError(0, fmt.Errorf("token exchange request: %w", err))
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, finch.NewAuthError(resp.StatusCode, fmt.Errorf("reading token response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		if apiErrors := finch.ParseAPIErrors(body); len(apiErrors) > 0 {
			return nil, finch.NewAuthError(resp.StatusCode, &apiErrors[0])
		}

		return nil, finch.NewAuthError(resp.StatusCode, fmt.Errorf("token endpoint returned %s", resp.Status))
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, finch.NewAuthError(resp.StatusCode, fmt.Errorf("parsing token response: %w", err))
	}

	if !strings.EqualFold(token.TokenType, constants.BearerTokenType) {
		return nil, finch.NewAuthError(resp.StatusCode, fmt.Errorf("%w: %q", finch.ErrUnexpectedTokenType, token.TokenType))
	}

	if token.AccessToken == "" {
		return nil, finch.NewAuthError(resp.StatusCode, finch.ErrEmptyBearerToken)
	}

	return &token, nil
}
