package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/composer-gateway/pkg/buildinfo"
	"github.com/matzehuels/composer-gateway/pkg/cache"
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/httputil"
	"github.com/matzehuels/composer-gateway/pkg/observability"
)

// maxErrorBody limits how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client provides shared HTTP functionality for upstream API clients.
// It handles default headers, status mapping and circuit breaking.
//
// A Client is immutable after construction; derive copies with
// [Client.WithHeaders] and [Client.WithBreakers]. It is safe for
// concurrent use.
type Client struct {
	http     *http.Client
	headers  map[string]string
	breakers *httputil.Breakers
}

// NewClient creates a Client with the given HTTP client and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(httpClient *http.Client, headers map[string]string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewHTTPClient(0)
	}
	return &Client{
		http:    httpClient,
		headers: headers,
	}
}

// WithHeaders returns a copy of c whose default headers are merged with h.
// Values in h override existing defaults for the same key. Empty values are
// kept and sent as empty headers.
func (c *Client) WithHeaders(h map[string]string) *Client {
	merged := make(map[string]string, len(c.headers)+len(h))
	maps.Copy(merged, c.headers)
	maps.Copy(merged, h)
	cp := *c
	cp.headers = merged
	return &cp
}

// WithBreakers returns a copy of c that runs requests under b.
func (c *Client) WithBreakers(b *httputil.Breakers) *Client {
	cp := *c
	cp.breakers = b
	return &cp
}

// Cached retrieves key from backend into v, or calls fetch and stores v
// under key with no expiry. The keyType labels observability events.
// It reports whether the value came from the cache.
//
// A failing cache read is treated as a miss and a failing write is
// ignored; only fetch errors are returned.
func Cached(ctx context.Context, backend cache.Cache, keyType, key string, v any, fetch func() error) (bool, error) {
	hooks := observability.Cache()
	if data, ok, err := backend.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(data, v); err == nil {
			hooks.OnCacheHit(ctx, keyType)
			return true, nil
		}
	}
	hooks.OnCacheMiss(ctx, keyType)

	if err := fetch(); err != nil {
		return false, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return false, nil
	}
	if err := backend.Set(ctx, key, data, 0); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return false, nil
}

// PostJSON JSON-encodes body, POSTs it to url and decodes the response into v.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return gwerrors.Wrap(gwerrors.ErrCodeInternal, err, "encode request body")
	}
	return c.do(ctx, http.MethodPost, url, payload, v)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, v any) error {
	call := func() error {
		body, err := c.doRequest(ctx, method, url, payload)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return gwerrors.Wrap(gwerrors.ErrCodeUpstream, err, "decode response from %s", url)
		}
		return nil
	}
	if c.breakers == nil {
		return call()
	}

	host := Host(url)
	err := c.breakers.Do(host, call)
	if errors.Is(err, httputil.ErrCircuitOpen) {
		return gwerrors.Wrap(gwerrors.ErrCodeUpstreamUnavailable, err, "upstream %s is unavailable", host)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte) (io.ReadCloser, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, gwerrors.Wrap(gwerrors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		// The caller gave up; this says nothing about the upstream's health.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, gwerrors.Wrap(gwerrors.ErrCodeTimeout, ctxErr, "%s %s aborted", method, url)
		}
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, httputil.Transient(gwerrors.Wrap(gwerrors.ErrCodeTimeout, fmt.Errorf("%w: %v", ErrNetwork, err), "%s %s timed out", method, url))
		}
		return nil, httputil.Transient(gwerrors.Wrap(gwerrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "%s %s failed", method, url))
	}
	hooks.OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Sprintf("status %d", code)
	if len(bytes.TrimSpace(snippet)) > 0 {
		detail += ": " + string(bytes.TrimSpace(snippet))
	}

	switch {
	case code == http.StatusUnauthorized:
		return gwerrors.New(gwerrors.ErrCodeUnauthorized, "upstream rejected credentials (%s)", detail)
	case code == http.StatusForbidden:
		return gwerrors.New(gwerrors.ErrCodeForbidden, "upstream denied access (%s)", detail)
	case code == http.StatusNotFound:
		return gwerrors.Wrap(gwerrors.ErrCodeNotFound, ErrNotFound, "%s", detail)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &gwerrors.RateLimitedError{RetryAfter: retryAfter, Message: detail}
	case code >= 500:
		return httputil.Transient(gwerrors.Wrap(gwerrors.ErrCodeNetwork, fmt.Errorf("%w: %s", ErrNetwork, detail), "upstream server error"))
	default:
		return gwerrors.Wrap(gwerrors.ErrCodeUpstream, fmt.Errorf("%w: %s", ErrNetwork, detail), "unexpected upstream response")
	}
}
