// Package sdpclient provides the primary entry point for constructing a
// ServiceDesk Plus Cloud API client that implements the sdp.Client interface.
//
// It layers endpoint normalization, data center resolution, authentication,
// and HTTP transport on top of the resource interfaces and types defined in
// the sdp package. Most applications should import sdpclient to build a
// client, then use the returned sdp.Client to access resource-specific
// clients, for example Requests() and Technicians().
//
// Quick start
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
//
//	  // With an access token you already have:
//	  cli, err := sdpclient.NewWithToken(ctx,
//	    "https://sdpondemand.manageengine.com/app/itdesk", "1000.abcd....")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with OAuth2 refresh-token credentials. Access tokens are minted
//	  // and renewed automatically against the portal's Zoho accounts host.
//	  cli, err = sdpclient.New(ctx, &sdp.Config{
//	    PortalURL:    "https://sdpondemand.manageengine.com/app/itdesk",
//	    ClientID:     "1000.XXXX",
//	    ClientSecret: "secret",
//	    RefreshToken: "1000.refresh....",
//	    DataCenter:   "us",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the sdp.Client interface
//	  page, err := cli.Requests().List(ctx, sdp.NewListInfo().WithRowCount(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// # Data centers
//
// Token exchanges go to the Zoho accounts host of the portal's data center.
// Set Config.DataCenter ("us", "eu", "in", "au", "jp", "cn", "uk", "ca",
// "sa") to pick it, or set Config.AccountsURL to override the mapping
// entirely. An empty data center means "us".
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken,
// NewWithRefreshToken, and NewWithGrantFile that wrap New with the
// appropriate configuration, and exposes NormalizePortalURL and
// AccountsURLForDataCenter for tooling that needs the same resolution rules.
package sdpclient
