// Package integrations provides the HTTP client shared by upstream API clients.
//
// # Overview
//
// The gateway talks to a single upstream, the GitLab API, through the
// [gitlab] subpackage. This package holds what any such client needs:
//
//   - [Client]: JSON POST with default headers, status mapping and
//     per-host circuit breaking
//   - [Cached]: read-through caching on a [cache.Cache]
//
// # Client Pattern
//
// Clients are cheap to derive. A long-lived base client is created once at
// startup and a per-request copy carries the caller's credentials:
//
//	base := integrations.NewClient(httputil.NewHTTPClient(0), nil)
//	perRequest := base.WithHeaders(map[string]string{
//	    "Authorization": r.Header.Get("Authorization"),
//	    "Private-Token": r.Header.Get("Private-Token"),
//	})
//
// Failures are returned as coded errors from pkg/errors. Transport failures
// and 5xx responses additionally wrap [ErrNetwork]; 404 responses wrap
// [ErrNotFound]. No request is ever retried.
//
// [gitlab]: github.com/matzehuels/composer-gateway/pkg/integrations/gitlab
// [cache.Cache]: github.com/matzehuels/composer-gateway/pkg/cache.Cache
package integrations
