package httputil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

// DefaultTimeout bounds a single upstream request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const dnsRefreshInterval = 5 * time.Minute

var (
	resolver     = &dnscache.Resolver{}
	resolverOnce sync.Once
)

// sharedResolver returns the process-wide DNS cache, starting its refresh
// loop on first use.
func sharedResolver() *dnscache.Resolver {
	resolverOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(dnsRefreshInterval)
			defer ticker.Stop()
			for range ticker.C {
				resolver.Refresh(true)
			}
		}()
	})
	return resolver
}

// NewHTTPClient creates an HTTP client for upstream API requests.
// A timeout of 0 selects DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(),
	}
}

// NewTransport returns an http.Transport whose dialer resolves hosts through
// a shared DNS cache and tries each resolved address in turn.
func NewTransport() *http.Transport {
	r := sharedResolver()
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := r.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var lastErr error
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			if lastErr == nil {
				lastErr = fmt.Errorf("no addresses for %s", host)
			}
			return nil, lastErr
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
