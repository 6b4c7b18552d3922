package httputil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHTTPClientDefaults(t *testing.T) {
	c := NewHTTPClient(0)
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if NewHTTPClient(5*time.Second).Timeout != 5*time.Second {
		t.Error("explicit timeout should be kept")
	}
}

func TestTransportDialsThroughResolver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	resp, err := NewHTTPClient(5 * time.Second).Get(server.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}
