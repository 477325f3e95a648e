// Package finch provides types, interfaces, and helpers for working with the
// Finch social-media REST and streaming API.
//
// # Overview
//
// The finch package defines the domain types (Status, User, SearchResult,
// MediaUploadResult), the Config carrying credentials and policy, the error
// taxonomy, and the Client interface with its resource-oriented sub-clients
// (StatusesClient, SearchClient, UsersClient, MediaClient). A concrete
// implementation is provided by the finchclient package, which wires
// configuration, transport, authentication, and streaming. Most consumers
// should import finchclient to construct a client and then interact with the
// interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/finchdesk/finch/pkg/finch"
//	  "github.com/finchdesk/finch/pkg/finchclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := finchclient.New(&finch.Config{Credentials: finch.Credentials{
//	    ConsumerKey:       "ck",
//	    ConsumerSecret:    "cs",
//	    AccessToken:       "at",
//	    AccessTokenSecret: "ats",
//	  }})
//	  if err != nil { log.Fatal(err) }
//
//	  home, err := cli.Statuses().HomeTimeline(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = home
//	}
//
// # Auth modes
//
// With the default user auth, every request is signed with the caller's
// access token material and no network round trip is needed for auth. With
// Credentials.AppOnlyAuth, the client lazily exchanges the consumer
// credentials for a bearer token on first use and caches it for the life of
// the client (or until UpdateCredentials replaces the material).
//
// # Errors
//
// Failures are classified by layer: config and path-template errors are
// static sentinels, bearer exchange failures are AuthError, and everything
// after the request leaves the client is a ResponseError whose Kind reports
// transport, trust (certificate pinning), decode, or application. Helpers
// such as IsTransport, IsApplication, and IsRateLimited make it easy to
// branch on the common cases.
//
// # Streaming
//
// Client.Stream returns a StreamHandle synchronously and finishes connection
// setup in the background, so consumers can subscribe to Messages and Errs
// before any I/O happens and never miss a setup failure.
//
// # Interceptors and caching
//
// The package includes request/response interceptors (logging, extra
// headers, client-side rate limiting) and a pluggable Cache abstraction with
// memory and NATS JetStream KV backends, used for timeline response caching.
package finch
