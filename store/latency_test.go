package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFixedLatencyHonoursContext(t *testing.T) {
	l := FixedLatency{OpFetch: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, OpFetch); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if err := l.Wait(context.Background(), OpShare); err != nil {
		t.Fatalf("missing operation should not wait: %v", err)
	}
}

func TestFailureRateBounds(t *testing.T) {
	never := NewFailureRate(0, 1)
	always := NewFailureRate(1, 1)
	for i := 0; i < 50; i++ {
		if err := never.Fail(OpCreate); err != nil {
			t.Fatalf("rate 0 failed: %v", err)
		}
		if err := always.Fail(OpCreate); !errors.Is(err, ErrSimulatedFailure) {
			t.Fatalf("rate 1 did not fail: %v", err)
		}
	}
}

func TestSimulateStopsOnLatencyError(t *testing.T) {
	calls := 0
	failures := FailureFunc(func(Operation) error { calls++; return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := simulate(ctx, FixedLatency{OpDelete: time.Second}, failures, OpDelete); err == nil {
		t.Fatal("expected error")
	}
	if calls != 0 {
		t.Fatal("failure policy consulted after cancelled wait")
	}
}
