package store

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Operation names a store operation that goes through a backend.
type Operation string

const (
	OpFetch    Operation = "fetch"
	OpCreate   Operation = "create"
	OpComment  Operation = "comment"
	OpDelete   Operation = "delete"
	OpShare    Operation = "share"
	OpLogin    Operation = "login"
	OpRegister Operation = "register"
	OpRestore  Operation = "restore"
	OpProfile  Operation = "profile"
)

// Latency simulates the round trip of a remote service.
type Latency interface {
	Wait(ctx context.Context, op Operation) error
}

// NoLatency returns immediately.
type NoLatency struct{}

// Wait implements Latency.
func (NoLatency) Wait(context.Context, Operation) error { return nil }

// FixedLatency waits a fixed duration per operation. Missing operations do not wait.
type FixedLatency map[Operation]time.Duration

// Wait implements Latency.
func (l FixedLatency) Wait(ctx context.Context, op Operation) error {
	d := l[op]
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FailurePolicy decides whether a simulated backend call fails.
type FailurePolicy interface {
	Fail(op Operation) error
}

// FailureFunc adapts a function to FailurePolicy.
type FailureFunc func(op Operation) error

// Fail implements FailurePolicy.
func (f FailureFunc) Fail(op Operation) error { return f(op) }

// NeverFail is the default policy.
var NeverFail FailurePolicy = FailureFunc(func(Operation) error { return nil })

// FailureRate fails each call with a fixed probability.
type FailureRate struct {
	rate float64
	mu   sync.Mutex
	rnd  *rand.Rand
}

// NewFailureRate returns a policy failing with probability rate in [0, 1].
func NewFailureRate(rate float64, seed int64) *FailureRate {
	return &FailureRate{rate: rate, rnd: rand.New(rand.NewSource(seed))}
}

// Fail implements FailurePolicy.
func (f *FailureRate) Fail(op Operation) error {
	if f.rate <= 0 {
		return nil
	}
	f.mu.Lock()
	roll := f.rnd.Float64()
	f.mu.Unlock()
	if roll < f.rate {
		return ErrSimulatedFailure
	}
	return nil
}

func simulate(ctx context.Context, latency Latency, failures FailurePolicy, op Operation) error {
	if err := latency.Wait(ctx, op); err != nil {
		return err
	}
	return failures.Fail(op)
}
