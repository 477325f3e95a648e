package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is what the signing protocol specifies
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OAuth1Credentials is the signing material attached to user-auth requests.
// Attaching it requires no network round trip.
type OAuth1Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// OAuth1Signer produces Authorization headers for the HMAC-SHA1 request
// signing scheme.
type OAuth1Signer struct {
	creds OAuth1Credentials

	// Overridable for deterministic tests.
	nonce func() (string, error)
	now   func() time.Time
}

// NewOAuth1Signer creates a signer for the given credentials.
func NewOAuth1Signer(creds OAuth1Credentials) *OAuth1Signer {
	return &OAuth1Signer{
		creds: creds,
		nonce: randomNonce,
		now:   time.Now,
	}
}

// AuthorizationHeader signs one request and returns the OAuth header value.
// rawURL must include any query string. form carries body parameters that
// participate in the signature; pass nil for multipart bodies, which are
// excluded from signing by the protocol.
func (s *OAuth1Signer) AuthorizationHeader(method, rawURL string, form url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing request URL: %w", err)
	}

	nonce, err := s.nonce()
	if err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	signature := s.sign(method, parsed, form, oauthParams)
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, percentEncode(key)+`="`+percentEncode(oauthParams[key])+`"`)
	}

	return "OAuth " + strings.Join(pairs, ", "), nil
}

// sign computes the HMAC-SHA1 signature over the canonical base string.
func (s *OAuth1Signer) sign(method string, parsed *url.URL, form url.Values, oauthParams map[string]string) string {
	// All parameters participate: query string, form body, and the oauth_*
	// set, percent-encoded and sorted as one list.
	encoded := make([]string, 0, len(form)+len(oauthParams)+4)

	for key, values := range parsed.Query() {
		for _, value := range values {
			encoded = append(encoded, percentEncode(key)+"="+percentEncode(value))
		}
	}

	for key, values := range form {
		for _, value := range values {
			encoded = append(encoded, percentEncode(key)+"="+percentEncode(value))
		}
	}

	for key, value := range oauthParams {
		encoded = append(encoded, percentEncode(key)+"="+percentEncode(value))
	}

	sort.Strings(encoded)

	baseURL := parsed.Scheme + "://" + parsed.Host + parsed.Path
	baseString := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(encoded, "&"))
	signingKey := percentEncode(s.creds.ConsumerSecret) + "&" + percentEncode(s.creds.AccessTokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode applies RFC 3986 encoding, which differs from
// url.QueryEscape in its treatment of spaces and tildes.
func percentEncode(input string) string {
	var builder strings.Builder

	for _, b := range []byte(input) {
		if isUnreserved(b) {
			builder.WriteByte(b)
		} else {
			builder.WriteString(fmt.Sprintf("%%%02X", b))
		}
	}

	return builder.String()
}

func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	default:
		return false
	}
}

// randomNonce returns 32 hex characters from a CSPRNG.
func randomNonce() (string, error) {
	buf := make([]byte, 16)

	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
