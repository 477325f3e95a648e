// Package finchclient provides the primary entry point for constructing a
// Finch API client that implements the finch.Client interface.
//
// It layers configuration, HTTP transport, authentication, and response
// caching on top of the resource interfaces and types defined in the finch
// package. Most applications should import finchclient to build a client,
// then use the returned finch.Client to access resource-specific clients,
// for example Statuses(), Search(), Users(), Media().
//
// Quick start
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
//
//	  // User auth: every request is signed with the user's token.
//	  cli, err := finchclient.New(&finch.Config{
//	    Credentials: finch.Credentials{
//	      ConsumerKey:       "...",
//	      ConsumerSecret:    "...",
//	      AccessToken:       "...",
//	      AccessTokenSecret: "...",
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or app-only auth: a bearer token is exchanged lazily on first use.
//	  cli, err = finchclient.New(&finch.Config{
//	    Credentials: finch.Credentials{
//	      ConsumerKey:    "...",
//	      ConsumerSecret: "...",
//	      AppOnlyAuth:    true,
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the finch.Client interface
//	  statuses, err := cli.Statuses().HomeTimeline(ctx, &finch.TimelineParams{Count: 20})
//	  if err != nil { log.Fatal(err) }
//	  _ = statuses
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithUserAuth,
// NewWithAppAuth, and NewWithBearerToken that wrap New with the appropriate
// configuration.
package finchclient
