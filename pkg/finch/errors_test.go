package finch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdesk/finch/pkg/finch"
)

func TestResponseErrorMessages(t *testing.T) {
	t.Parallel()

	single := finch.NewApplicationError(404, []finch.APIError{
		{Code: 144, Message: "No status found with that ID."},
	}, nil)
	assert.Equal(t, "application error: No status found with that ID. (code: 144)", single.Error())

	multiple := finch.NewApplicationError(403, []finch.APIError{
		{Code: 1, Message: "first"},
		{Code: 2, Message: "second"},
	}, nil)
	assert.Contains(t, multiple.Error(), "multiple errors")

	decode := finch.NewDecodeError(502, []byte("<html>"), errors.New("invalid character '<'"))
	assert.Contains(t, decode.Error(), "decode error")
}

func TestErrorKindHelpers(t *testing.T) {
	t.Parallel()

	transport := finch.NewTransportError(errors.New("connection refused"))
	trust := finch.NewTrustError("deadbeef")
	decode := finch.NewDecodeError(500, nil, errors.New("bad json"))
	application := finch.NewApplicationError(404, nil, nil)

	assert.True(t, finch.IsTransport(transport))
	assert.False(t, finch.IsTransport(application))

	assert.True(t, finch.IsTrust(trust))
	assert.ErrorIs(t, trust, finch.ErrUntrustedCertificate)

	assert.True(t, finch.IsDecode(decode))
	assert.True(t, finch.IsApplication(application))
}

func TestErrorKindHelpersSeeThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("media upload INIT: %w", finch.NewApplicationError(400, []finch.APIError{
		{Code: 214, Message: "Bad request"},
	}, nil))

	assert.True(t, finch.IsApplication(wrapped))

	respErr := &finch.ResponseError{}
	require.ErrorAs(t, wrapped, &respErr)
	assert.Equal(t, 400, respErr.StatusCode)
}

func TestIsRateLimited(t *testing.T) {
	t.Parallel()

	byCode := finch.NewApplicationError(403, []finch.APIError{
		{Code: finch.ErrorCodeRateLimitExceeded, Message: "Rate limit exceeded"},
	}, nil)
	assert.True(t, finch.IsRateLimited(byCode))

	byStatus := finch.NewApplicationError(429, []finch.APIError{
		{Code: 1, Message: "slow down"},
	}, nil)
	assert.True(t, finch.IsRateLimited(byStatus))

	other := finch.NewApplicationError(404, []finch.APIError{
		{Code: finch.ErrorCodeNoStatusFound, Message: "No status found"},
	}, nil)
	assert.False(t, finch.IsRateLimited(other))

	assert.False(t, finch.IsRateLimited(errors.New("plain")))
}

func TestIsAuthResolution(t *testing.T) {
	t.Parallel()

	authErr := finch.NewAuthError(403, errors.New("forbidden"))
	assert.True(t, finch.IsAuthResolution(authErr))
	assert.Contains(t, authErr.Error(), "HTTP 403")

	wrapped := fmt.Errorf("building request: %w", authErr)
	assert.True(t, finch.IsAuthResolution(wrapped))

	assert.False(t, finch.IsAuthResolution(finch.NewTransportError(errors.New("nope"))))
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	withEntries := finch.NewApplicationError(403, []finch.APIError{
		{Code: 1, Message: "first"},
		{Code: 2, Message: "second"},
	}, nil)

	first := withEntries.FirstError()
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Code)

	empty := finch.NewDecodeError(500, nil, errors.New("x"))
	assert.Nil(t, empty.FirstError())
}

func TestParseAPIErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		expected []finch.APIError
	}{
		{
			name: "coded error list",
			body: `{"errors": [{"code": 88, "message": "Rate limit exceeded"}]}`,
			expected: []finch.APIError{
				{Code: 88, Message: "Rate limit exceeded"},
			},
		},
		{
			name: "bare error string",
			body: `{"error": "Invalid or expired token"}`,
			expected: []finch.APIError{
				{Message: "Invalid or expired token"},
			},
		},
		{
			name:     "no error fields",
			body:     `{"statuses": []}`,
			expected: nil,
		},
		{
			name:     "not json",
			body:     `<html>`,
			expected: nil,
		},
		{
			name:     "error list wins over both shapes",
			body:     `{"errors": [{"code": 1, "message": "listed"}], "error": "bare"}`,
			expected: []finch.APIError{{Code: 1, Message: "listed"}},
		},
		{
			name:     "object-valued error still counts",
			body:     `{"error": {"code": 88, "message": "Rate limit exceeded"}}`,
			expected: []finch.APIError{{Message: `{"code": 88, "message": "Rate limit exceeded"}`}},
		},
		{
			name:     "numeric error still counts",
			body:     `{"error": 88}`,
			expected: []finch.APIError{{Message: "88"}},
		},
		{
			name:     "malformed error list still counts",
			body:     `{"errors": "broken"}`,
			expected: []finch.APIError{{Message: `"broken"`}},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, finch.ParseAPIErrors([]byte(tt.body)))
		})
	}
}
