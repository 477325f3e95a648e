package auth

import (
	"context"
	"sync"
)

// TokenManager resolves the credential attached to app-only requests.
type TokenManager interface {
	// GetToken returns a valid bearer token, performing the credential
	// exchange on first use.
	GetToken(ctx context.Context) (string, error)

	// InvalidateToken drops any cached token so the next call re-exchanges.
	InvalidateToken()
}

// Token is a bearer token obtained from the credential exchange endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Valid reports whether the token can be attached to a request.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// TokenStore is a thread-safe holder for the client's cached bearer token.
// It is the one piece of mutable state shared across calls on a client.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set stores a token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
