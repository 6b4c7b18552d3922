// Package server serves Composer repository documents over HTTP.
//
// Routes:
//
//	GET /packages[.json]                          every project visible to the caller
//	GET /{path}/packages[.json]                   a namespace, or a single project
//	GET /{path}/p2/{vendor}/{package}[.json]      the same, filtered to one package
//	GET /healthz                                  liveness and circuit breaker states
//
// When {path} has more than one segment, its last segment names the project
// and the rest the namespace. A single segment names a namespace.
//
// The caller's Authorization and Private-Token headers are forwarded to
// GitLab on every upstream request, as empty values when absent.
package server
