package integrations

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrNotFound is returned when a resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NormalizeBaseURL trims whitespace and trailing slashes from an instance URL
// so that paths can be appended with a single "/".
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// Host returns the host part of rawURL, or rawURL itself when it cannot be
// parsed. It is used to select a circuit breaker.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
