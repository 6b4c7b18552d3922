package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/composer-gateway/pkg/cache"
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(nil, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() should default the http client")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestWithHeadersDoesNotMutateParent(t *testing.T) {
	base := NewClient(nil, map[string]string{"X-Default": "a"})
	derived := base.WithHeaders(map[string]string{"X-Default": "b", "Private-Token": ""})

	if base.headers["X-Default"] != "a" {
		t.Error("WithHeaders() mutated the parent client")
	}
	if derived.headers["X-Default"] != "b" {
		t.Error("WithHeaders() should override defaults")
	}
	if v, ok := derived.headers["Private-Token"]; !ok || v != "" {
		t.Error("WithHeaders() should keep empty values")
	}
}

func TestClientPostJSON(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotToken []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		gotAuth = r.Header.Values("Authorization")
		gotToken = r.Header.Values("Private-Token")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
	}))
	defer server.Close()

	client := NewClient(server.Client(), nil).WithHeaders(map[string]string{
		"Authorization": "Bearer abc",
		"Private-Token": "",
	})

	var resp struct {
		Message string `json:"message"`
	}
	if err := client.PostJSON(context.Background(), server.URL, map[string]string{"query": "{ id }"}, &resp); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("message = %q, want hello", resp.Message)
	}
	if gotBody["query"] != "{ id }" {
		t.Errorf("body = %v", gotBody)
	}
	if len(gotAuth) != 1 || gotAuth[0] != "Bearer abc" {
		t.Errorf("Authorization = %v", gotAuth)
	}
	if len(gotToken) != 1 || gotToken[0] != "" {
		t.Errorf("Private-Token should be sent empty, got %v", gotToken)
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      gwerrors.Code
		transient bool
	}{
		{"unauthorized", http.StatusUnauthorized, gwerrors.ErrCodeUnauthorized, false},
		{"forbidden", http.StatusForbidden, gwerrors.ErrCodeForbidden, false},
		{"not found", http.StatusNotFound, gwerrors.ErrCodeNotFound, false},
		{"rate limited", http.StatusTooManyRequests, gwerrors.ErrCodeRateLimited, false},
		{"server error", http.StatusInternalServerError, gwerrors.ErrCodeNetwork, true},
		{"bad gateway", http.StatusBadGateway, gwerrors.ErrCodeNetwork, true},
		{"teapot", http.StatusTeapot, gwerrors.ErrCodeUpstream, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"message":"nope"}`)
			}))
			defer server.Close()

			client := NewClient(server.Client(), nil)
			err := client.PostJSON(context.Background(), server.URL, map[string]string{}, &map[string]any{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := gwerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err %v)", got, tt.code, err)
			}
			if httputil.IsTransient(err) != tt.transient {
				t.Errorf("transient = %v, want %v", httputil.IsTransient(err), tt.transient)
			}
		})
	}
}

func TestClientNotFoundWrapsSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var resp map[string]string
	err := NewClient(server.Client(), nil).PostJSON(context.Background(), server.URL, nil, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("PostJSON() error = %v, want ErrNotFound", err)
	}
}

func TestClientRateLimitedRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := NewClient(server.Client(), nil).PostJSON(context.Background(), server.URL, nil, &map[string]any{})
	var rl *gwerrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("error = %T, want RateLimitedError", err)
	}
	if rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %d, want 30", rl.RetryAfter)
	}
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewClient(nil, nil).PostJSON(context.Background(), url, nil, &map[string]any{})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if !httputil.IsTransient(err) {
		t.Error("connection failures should be transient")
	}
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(httputil.NewHTTPClient(20*time.Millisecond), nil)
	err := client.PostJSON(context.Background(), server.URL, nil, &map[string]any{})
	if !gwerrors.Is(err, gwerrors.ErrCodeTimeout) {
		t.Errorf("error = %v, want TIMEOUT", err)
	}
}

func TestClientBreakerOpens(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), nil).WithBreakers(httputil.NewBreakers(2))
	for i := 0; i < 2; i++ {
		_ = client.PostJSON(context.Background(), server.URL, nil, &map[string]any{})
	}

	err := client.PostJSON(context.Background(), server.URL, nil, &map[string]any{})
	if !gwerrors.Is(err, gwerrors.ErrCodeUpstreamUnavailable) {
		t.Errorf("error = %v, want UPSTREAM_UNAVAILABLE", err)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2", calls)
	}
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()

	type manifest struct {
		License string `json:"license"`
	}

	fetchCount := 0
	fetch := func(v *manifest) func() error {
		return func() error {
			fetchCount++
			*v = manifest{License: "MIT"}
			return nil
		}
	}

	var first manifest
	hit, err := Cached(ctx, backend, "manifest", "k", &first, fetch(&first))
	if err != nil || hit {
		t.Fatalf("first call: hit %v, err %v", hit, err)
	}

	var second manifest
	hit, err = Cached(ctx, backend, "manifest", "k", &second, fetch(&second))
	if err != nil || !hit {
		t.Fatalf("second call: hit %v, err %v", hit, err)
	}
	if second.License != "MIT" {
		t.Errorf("cached value = %+v", second)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
}

func TestCachedFetchErrorIsNotStored(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()

	var v string
	_, err := Cached(ctx, backend, "manifest", "k", &v, func() error { return ErrNetwork })
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if backend.Len() != 0 {
		t.Error("failed fetch should not populate the cache")
	}
}

func TestCachedNullValue(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()

	var m map[string]any
	_, _ = Cached(ctx, backend, "manifest", "k", &m, func() error { m = nil; return nil })

	data, ok, _ := backend.Get(ctx, "k")
	if !ok || string(data) != "null" {
		t.Fatalf("stored %q (hit %v), want null", data, ok)
	}

	calls := 0
	var again map[string]any
	hit, _ := Cached(ctx, backend, "manifest", "k", &again, func() error { calls++; return nil })
	if !hit || again != nil || calls != 0 {
		t.Errorf("null entry should be a hit: hit %v, value %v, calls %d", hit, again, calls)
	}
}
