package finch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies which layer of a call failed.
type ErrorKind string

const (
	// ErrorKindTransport marks socket/connection failures with no usable
	// HTTP response.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindTrust marks certificate pinning failures.
	ErrorKindTrust ErrorKind = "trust"

	// ErrorKindDecode marks responses whose body was received but is not
	// valid JSON.
	ErrorKindDecode ErrorKind = "decode"

	// ErrorKindApplication marks well-formed HTTP exchanges where the API
	// reported a logical error in the body.
	ErrorKindApplication ErrorKind = "application"
)

// APIError is a single application-level error entry from the API.
type APIError struct {
	Code    int    `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// ResponseError represents a failed call. It carries the failure layer, the
// HTTP status when one was received, the ordered API error entries when the
// body contained any, and the raw body. It is immutable once returned.
type ResponseError struct {
	Kind       ErrorKind  `json:"kind"                  yaml:"kind"`
	StatusCode int        `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Errors     []APIError `json:"errors,omitempty"      yaml:"errors,omitempty"`
	RawBody    []byte     `json:"-"                     yaml:"-"`

	cause error
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	switch {
	case len(e.Errors) == 1:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Errors[0].Error())
	case len(e.Errors) > 1:
		return fmt.Sprintf("%s error: multiple errors: %v", e.Kind, e.Errors)
	case e.cause != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error: HTTP %d", e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *ResponseError) Unwrap() error {
	return e.cause
}

// FirstError returns the first API error entry or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// NewTransportError wraps a socket/connection failure. The status code is
// deliberately left clear: there was no usable HTTP response.
func NewTransportError(cause error) *ResponseError {
	return &ResponseError{
		Kind:   ErrorKindTransport,
		Errors: []APIError{{Message: cause.Error()}},
		cause:  cause,
	}
}

// NewTrustError reports a peer certificate outside the trusted set.
func NewTrustError(fingerprint string) *ResponseError {
	return &ResponseError{
		Kind:  ErrorKindTrust,
		cause: fmt.Errorf("%w: %s", ErrUntrustedCertificate, fingerprint),
	}
}

// NewDecodeError reports a body that was received but is not valid JSON.
func NewDecodeError(statusCode int, rawBody []byte, cause error) *ResponseError {
	return &ResponseError{
		Kind:       ErrorKindDecode,
		StatusCode: statusCode,
		RawBody:    rawBody,
		cause:      cause,
	}
}

// NewApplicationError reports a logical failure carried in a well-formed
// HTTP response body.
func NewApplicationError(statusCode int, apiErrors []APIError, rawBody []byte) *ResponseError {
	return &ResponseError{
		Kind:       ErrorKindApplication,
		StatusCode: statusCode,
		Errors:     apiErrors,
		RawBody:    rawBody,
	}
}

// AuthError reports a failed bearer token exchange.
type AuthError struct {
	StatusCode int
	cause      error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bearer token exchange failed (HTTP %d): %v", e.StatusCode, e.cause)
	}

	return fmt.Sprintf("bearer token exchange failed: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.cause
}

// NewAuthError wraps a token exchange failure.
func NewAuthError(statusCode int, cause error) *AuthError {
	return &AuthError{StatusCode: statusCode, cause: cause}
}

// Common API error codes.
const (
	ErrorCodeRateLimitExceeded     = 88
	ErrorCodeInvalidOrExpiredToken = 89
	ErrorCodeUnableToVerify        = 99
	ErrorCodeOverCapacity          = 130
	ErrorCodeInternalError         = 131
	ErrorCodeNoStatusFound         = 144
	ErrorCodeNotAuthorized         = 179
	ErrorCodeDuplicateStatus       = 187
)

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired             = errors.New("config is required")
	ErrMissingConsumerCredentials = errors.New("consumer_key and consumer_secret are required")
	ErrMissingUserCredentials     = errors.New("consumer_key, consumer_secret, access_token and access_token_secret are required")
	ErrInvalidTimeout             = errors.New("timeout must not be negative")
	ErrMissingPathParam           = errors.New("no value provided for path parameter")
	ErrUntrustedCertificate       = errors.New("peer certificate fingerprint not in trusted set")
	ErrNoPeerCertificate          = errors.New("connection presented no peer certificate")
	ErrUnexpectedTokenType        = errors.New("token exchange returned an unexpected token type")
	ErrEmptyBearerToken           = errors.New("token exchange returned an empty access token")
	ErrStreamStopped              = errors.New("stream stopped")
	ErrMediaFileTooLarge          = errors.New("media file exceeds the upload size limit")
	ErrMediaFileRequired          = errors.New("media file path is required")
)

// kindOf extracts the ErrorKind from err, or "".
func kindOf(err error) ErrorKind {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.Kind
	}

	return ""
}

// IsTransport checks whether err is a transport-layer failure.
func IsTransport(err error) bool {
	return kindOf(err) == ErrorKindTransport
}

// IsTrust checks whether err is a certificate pinning failure.
func IsTrust(err error) bool {
	return kindOf(err) == ErrorKindTrust
}

// IsDecode checks whether err is a body decode failure.
func IsDecode(err error) bool {
	return kindOf(err) == ErrorKindDecode
}

// IsApplication checks whether err is an application-level API error.
func IsApplication(err error) bool {
	return kindOf(err) == ErrorKindApplication
}

// IsAuthResolution checks whether err is a bearer token exchange failure.
func IsAuthResolution(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsRateLimited checks whether err is the API's rate limit error.
func IsRateLimited(err error) bool {
	respErr := &ResponseError{}
	if !errors.As(err, &respErr) {
		return false
	}

	if respErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	first := respErr.FirstError()

	return first != nil && first.Code == ErrorCodeRateLimitExceeded
}

// ParseAPIErrors extracts application-level error entries from a decoded
// response body. It returns nil when the body carries no error field.
//
// Presence of an "error" or "errors" key marks the body as an error even
// when the value has an unexpected shape; extraction of coded entries is
// best-effort on top of that.
func ParseAPIErrors(data []byte) []APIError {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(data, &fields)
	if err != nil {
		return nil
	}

	if raw, ok := fields["errors"]; ok {
		var entries []APIError
		if json.Unmarshal(raw, &entries) == nil && len(entries) > 0 {
			return entries
		}

		return []APIError{{Message: string(raw)}}
	}

	if raw, ok := fields["error"]; ok {
		var message string
		if json.Unmarshal(raw, &message) == nil && message != "" {
			return []APIError{{Message: message}}
		}

		return []APIError{{Message: string(raw)}}
	}

	return nil
}
