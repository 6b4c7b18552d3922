package httputil

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/facebookgo/clock"
	circuit "github.com/rubyist/circuitbreaker"
)

// ErrCircuitOpen is returned by [Breakers.Do] while a host's breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// DefaultBreakerThreshold is the number of consecutive transient failures
// that trips a breaker.
const DefaultBreakerThreshold = 5

// TransientError wraps an error to indicate the upstream itself is failing
// (network error, timeout, 5xx). Only transient errors trip a breaker.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. It returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is wrapped with TransientError.
func IsTransient(err error) bool {
	return errors.As(err, new(*TransientError))
}

// Breakers holds one circuit breaker per upstream host.
// All methods are safe for concurrent use.
type Breakers struct {
	threshold int64
	clock     clock.Clock
	mu        sync.RWMutex
	breakers  map[string]*circuit.Breaker
}

// NewBreakers creates breakers that trip after threshold consecutive
// transient failures. A threshold <= 0 selects DefaultBreakerThreshold.
func NewBreakers(threshold int) *Breakers {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	return &Breakers{
		threshold: int64(threshold),
		clock:     clock.New(),
		breakers:  make(map[string]*circuit.Breaker),
	}
}

func (b *Breakers) get(host string) *circuit.Breaker {
	b.mu.RLock()
	breaker, ok := b.breakers[host]
	b.mu.RUnlock()
	if ok {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if breaker, ok := b.breakers[host]; ok {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 10 * time.Second
	expBackoff.MaxInterval = 2 * time.Minute
	expBackoff.Multiplier = 2.0
	// Keep probing an upstream that stays down; a Stop backoff never half-opens.
	expBackoff.MaxElapsedTime = 0
	expBackoff.Clock = b.clock
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		Clock:      b.clock,
		ShouldTrip: circuit.ConsecutiveTripFunc(b.threshold),
	})
	b.breakers[host] = breaker
	return breaker
}

// Do runs fn under the breaker for host. Transient errors returned by fn
// count as failures; any other error is returned as-is and counts as a
// successful round trip. Once the backoff elapses an open breaker lets one
// call through; its success closes the breaker.
func (b *Breakers) Do(host string, fn func() error) error {
	breaker := b.get(host)

	var passthrough error
	err := breaker.Call(func() error {
		err := fn()
		if err != nil && !IsTransient(err) {
			passthrough = err
			return nil
		}
		return err
	}, 0)
	if passthrough != nil {
		return passthrough
	}
	if errors.Is(err, circuit.ErrBreakerOpen) {
		return fmt.Errorf("%w for %s", ErrCircuitOpen, host)
	}
	return err
}

// States reports "open" or "closed" for every host seen so far.
func (b *Breakers) States() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string, len(b.breakers))
	for host, breaker := range b.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
