// Package sdp provides types, interfaces, and helpers for working with the
// ManageEngine ServiceDesk Plus Cloud V3 API.
//
// # Overview
//
// The sdp package defines the domain types (e.g., Request, Note, Task,
// Technician) and the interfaces for resource-oriented clients (e.g.,
// RequestsClient, TechniciansClient). A concrete implementation of these
// clients is provided by the sdpclient package, which wires configuration,
// transport, and Zoho OAuth2 token lifecycle management. Most consumers
// should import sdpclient to construct a client and then interact with the
// resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/sdp-client/pkg/sdp"
//	  "github.com/fivetwenty-io/sdp-client/pkg/sdpclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := sdpclient.New(ctx, &sdp.Config{
//	    PortalURL:    "https://sdpondemand.manageengine.com/app/itdesk",
//	    ClientID:     "1000.XXXX",
//	    ClientSecret: "secret",
//	    RefreshToken: "1000.refresh.token",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of requests
//	  requests, err := cli.Requests().List(ctx, sdp.NewListInfo())
//	  if err != nil { log.Fatal(err) }
//	  _ = requests
//	}
//
// # Searches and pagination
//
// Use ListInfo to express the provider's list_info envelope (row_count,
// start_index, get_total_count, search_criteria, fields_required). The
// package also provides helpers for iterating or collecting paginated
// results:
//
//	it := sdp.NewRowIterator(ctx, cli.Requests().List, sdp.NewListInfo())
//	for it.HasNext() {
//	  request, err := it.Next()
//	  if err != nil { break }
//	  _ = request
//	}
//
// or fetch all rows at once:
//
//	all, err := sdp.FetchAllRows(ctx, cli.Requests().List, nil, sdp.DefaultPaginationOptions())
//	if err != nil { /* handle error */ }
//	_ = all
//
// # Projections
//
// ProjectRequests reshapes a raw decoded response into caller-selected
// fields using the canonical allow-list (Id, Subject, Requester, Status,
// ...), following nested paths such as requester.email_id. Unknown field
// names are absent from the output rather than errors.
//
// # Errors
//
// Local input problems are ValidationError, credential exchange failures are
// AuthError, and non-2xx API responses are APIError. Helpers such as
// IsNotFound, IsUnauthorized, and IsRateLimited make it easy to branch on
// common cases.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, extra headers, metrics, rate limiting, circuit
// breaking) and a simple pluggable Cache abstraction with in-memory and NATS
// JetStream KV backends. Applications with advanced needs can use these
// primitives directly.
package sdp
