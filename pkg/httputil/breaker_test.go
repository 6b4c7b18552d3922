package httputil

import (
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"
)

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should return nil")
	}

	base := errors.New("connection refused")
	err := Transient(base)
	if !IsTransient(err) {
		t.Error("IsTransient should return true for wrapped error")
	}
	if !errors.Is(err, base) {
		t.Error("Transient should preserve the cause")
	}
	if err.Error() != base.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsTransient(base) {
		t.Error("IsTransient should return false for unwrapped error")
	}
}

func TestBreakersTripOnTransientFailures(t *testing.T) {
	b := NewBreakers(3)
	calls := 0
	failing := func() error {
		calls++
		return Transient(errors.New("status 502"))
	}

	for i := 0; i < 3; i++ {
		if err := b.Do("gitlab.com", failing); !IsTransient(err) {
			t.Fatalf("call %d: err = %v, want transient error", i, err)
		}
	}

	err := b.Do("gitlab.com", failing)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if calls != 3 {
		t.Errorf("open breaker should not call fn, calls = %d", calls)
	}
	if got := b.States()["gitlab.com"]; got != "open" {
		t.Errorf("state = %q, want open", got)
	}
}

func TestBreakersIgnoreNonTransientErrors(t *testing.T) {
	b := NewBreakers(2)
	denied := errors.New("401 unauthorized")

	for i := 0; i < 5; i++ {
		if err := b.Do("gitlab.com", func() error { return denied }); err != denied {
			t.Fatalf("call %d: err = %v, want passthrough", i, err)
		}
	}
	if got := b.States()["gitlab.com"]; got != "closed" {
		t.Errorf("state = %q, want closed", got)
	}
}

func TestBreakersArePerHost(t *testing.T) {
	b := NewBreakers(1)
	_ = b.Do("down.example", func() error { return Transient(errors.New("timeout")) })

	if err := b.Do("down.example", func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("down.example err = %v, want ErrCircuitOpen", err)
	}
	if err := b.Do("up.example", func() error { return nil }); err != nil {
		t.Errorf("up.example err = %v, want nil", err)
	}
}

func TestNewBreakersDefaultThreshold(t *testing.T) {
	if b := NewBreakers(0); b.threshold != DefaultBreakerThreshold {
		t.Errorf("threshold = %d, want %d", b.threshold, DefaultBreakerThreshold)
	}
}

func TestBreakersRecoverAfterLongOutage(t *testing.T) {
	b := NewBreakers(1)
	mock := clock.NewMock()
	b.clock = mock

	const host = "gitlab.example.com"
	for i := 0; i < 10; i++ {
		_ = b.Do(host, func() error { return Transient(errors.New("status 503")) })
		mock.Add(3 * time.Minute)
	}
	if got := b.States()[host]; got != "open" {
		t.Fatalf("state during outage = %q, want open", got)
	}

	mock.Add(time.Hour)
	calls := 0
	if err := b.Do(host, func() error { calls++; return nil }); err != nil {
		t.Fatalf("after recovery: err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := b.States()[host]; got != "closed" {
		t.Errorf("state after recovery = %q, want closed", got)
	}
	if err := b.Do(host, func() error { return nil }); err != nil {
		t.Errorf("closed breaker: err = %v", err)
	}
}

func TestBreakersHalfOpenLetsOneCallThrough(t *testing.T) {
	b := NewBreakers(1)
	mock := clock.NewMock()
	b.clock = mock

	_ = b.Do("h", func() error { return Transient(errors.New("timeout")) })
	if err := b.Do("h", func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen before backoff elapses", err)
	}

	mock.Add(time.Minute)
	calls := 0
	if err := b.Do("h", func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Fatalf("half-open call: err = %v, calls = %d", err, calls)
	}
}
