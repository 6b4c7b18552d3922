// Package httputil provides the HTTP plumbing used to reach the GitLab API.
//
// # Overview
//
// This package provides infrastructure shared by upstream API clients:
//
//   - [NewHTTPClient]: an http.Client with a request timeout and a
//     DNS-caching dialer
//   - [Breakers]: per-host circuit breakers that fail fast while an
//     upstream is down
//   - [TransientError]: marks failures that count against a breaker
//
// # Timeouts
//
// Every upstream call is bounded by the client timeout (30 seconds unless
// configured otherwise) and by the incoming request's context.
//
// # Circuit breaking
//
// A breaker trips after a number of consecutive transient failures
// (network errors and 5xx responses) and rejects calls with
// [ErrCircuitOpen] until its exponential backoff elapses. GraphQL errors,
// 4xx responses and other non-transient failures pass through without
// affecting the breaker. Breakers never retry a call.
//
//	breakers := httputil.NewBreakers(5)
//	err := breakers.Do("gitlab.com", func() error {
//	    return doRequest()
//	})
//	if errors.Is(err, httputil.ErrCircuitOpen) {
//	    // upstream considered down
//	}
package httputil
