package auth

import (
	"context"
	"errors"
)

// ErrNoStaticToken reports a static manager constructed without a token.
var ErrNoStaticToken = errors.New("no bearer token configured")

// StaticTokenManager serves a pre-issued bearer token. Used when the
// application already holds a token and no credential exchange should ever
// happen.
type StaticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a manager around a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken implements TokenManager.GetToken.
func (m *StaticTokenManager) GetToken(_ context.Context) (string, error) {
	if m.token == "" {
		return "", ErrNoStaticToken
	}

	return m.token, nil
}

// InvalidateToken implements TokenManager.InvalidateToken. There is nothing
// to re-exchange, so it is a no-op.
func (m *StaticTokenManager) InvalidateToken() {}
