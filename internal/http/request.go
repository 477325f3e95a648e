package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/finchdesk/finch/internal/auth"
	"github.com/finchdesk/finch/pkg/finch"
)

// Logical paths that must be sent as multipart form bodies. For these the
// full parameter set becomes the form body and the query string stays empty.
var multipartPaths = map[string]bool{
	"media/upload":                            true,
	"account/update_profile_image":            true,
	"account/update_profile_background_image": true,
}

// Logical stream names with dedicated endpoints. Anything else rides the
// public stream endpoint.
const (
	streamNameUser = "user"
	streamNameSite = "site"
)

// Request is a logical API call before descriptor construction.
type Request struct {
	Method    string
	Path      string
	Params    finch.Params
	Streaming bool
}

// RequestDescriptor is a fully resolved request: URL with query, headers
// including auth, and the form body for multipart calls. It is built fresh
// per call, never shared, and needs no further enrichment before execution.
type RequestDescriptor struct {
	Method    string
	URL       string
	Header    http.Header
	Form      url.Values
	Multipart bool
	Streaming bool
}

// Endpoints holds the endpoint roots the builder routes against.
type Endpoints struct {
	API        string
	Upload     string
	Stream     string
	UserStream string
	SiteStream string
}

// Builder turns logical requests into self-contained descriptors: parameter
// normalization, path templating, endpoint routing, content-type selection,
// and auth attachment.
//
// Exactly one of signer/tokens is set: signer for user auth (no network
// round trip), tokens for app-only auth (may block on the lazy bearer
// exchange).
type Builder struct {
	endpoints Endpoints
	signer    *auth.OAuth1Signer
	tokens    auth.TokenManager
}

// NewBuilder creates a request builder.
func NewBuilder(endpoints Endpoints, signer *auth.OAuth1Signer, tokens auth.TokenManager) *Builder {
	return &Builder{
		endpoints: endpoints,
		signer:    signer,
		tokens:    tokens,
	}
}

// Build produces a descriptor or fails. The caller's parameter map is never
// mutated, even partially, on any path through this method.
func (b *Builder) Build(ctx context.Context, req *Request) (*RequestDescriptor, error) {
	params := normalizeParams(req.Params)

	path, err := substitutePathParams(req.Path, params)
	if err != nil {
		return nil, err
	}

	rawURL := b.routeURL(path, req.Streaming)

	desc := &RequestDescriptor{
		Method:    strings.ToUpper(req.Method),
		Header:    make(http.Header),
		Streaming: req.Streaming,
	}

	if multipartPaths[path] {
		desc.Multipart = true
		desc.Form = params
		desc.URL = rawURL
	} else {
		desc.Header.Set("Content-Type", "application/json")

		if len(params) > 0 {
			rawURL += "?" + params.Encode()
		}

		desc.URL = rawURL
	}

	desc.Header.Set("Accept", "application/json")

	err = b.attachAuth(ctx, desc)
	if err != nil {
		return nil, err
	}

	return desc, nil
}

// attachAuth signs the request or resolves and attaches a bearer token.
func (b *Builder) attachAuth(ctx context.Context, desc *RequestDescriptor) error {
	if b.signer != nil {
		// Multipart bodies are excluded from the signature base string.
		header, err := b.signer.AuthorizationHeader(desc.Method, desc.URL, nil)
		if err != nil {
			return fmt.Errorf("signing request: %w", err)
		}

		desc.Header.Set("Authorization", header)

		return nil
	}

	token, err := b.tokens.GetToken(ctx)
	if err != nil {
		return err
	}

	desc.Header.Set("Authorization", "Bearer "+token)

	return nil
}

// routeURL selects the endpoint for a templated logical path.
func (b *Builder) routeURL(path string, streaming bool) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if streaming {
		switch path {
		case streamNameUser:
			return b.endpoints.UserStream + "/" + path + ".json"
		case streamNameSite:
			return b.endpoints.SiteStream + "/" + path + ".json"
		default:
			return b.endpoints.Stream + "/" + path + ".json"
		}
	}

	if path == "media/upload" {
		return b.endpoints.Upload + "/" + path + ".json"
	}

	return b.endpoints.API + "/" + path + ".json"
}

// normalizeParams clones the caller's parameter map into wire form: slices
// are joined with commas, scalars stringified, nil maps become empty.
func normalizeParams(params finch.Params) url.Values {
	values := url.Values{}

	for key, value := range params {
		values.Set(key, stringifyParam(value))
	}

	return values
}

// stringifyParam renders one parameter value for the wire.
func stringifyParam(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ",")
	case []int64:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.FormatInt(n, 10)
		}

		return strings.Join(parts, ",")
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringifyParam(item)
		}

		return strings.Join(parts, ",")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// substitutePathParams replaces :name segments in a path template with the
// matching parameter values, deleting each consumed key. A placeholder with
// no value fails the build.
func substitutePathParams(path string, params url.Values) (string, error) {
	if !strings.Contains(path, ":") {
		return path, nil
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, ":") || len(segment) < 2 {
			continue
		}

		name := segment[1:]
		if !params.Has(name) {
			return "", fmt.Errorf("%w: %q", finch.ErrMissingPathParam, name)
		}

		segments[i] = url.PathEscape(params.Get(name))
		params.Del(name)
	}

	return strings.Join(segments, "/"), nil
}

// SortedFormKeys returns the multipart form's keys in a stable order.
func (d *RequestDescriptor) SortedFormKeys() []string {
	keys := make([]string, 0, len(d.Form))
	for key := range d.Form {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
