package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

func retryAll(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	e := NewExecutor(fastConfig())
	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryAll)

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteStopsOnNonRetryable(t *testing.T) {
	e := NewExecutor(fastConfig())
	permanent := errors.New("permanent")
	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return permanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("Execute() error = %v, want permanent", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestExecuteReturnsLastErrorAfterMaxAttempts(t *testing.T) {
	e := NewExecutor(fastConfig())
	transient := errors.New("transient")
	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return transient
	}, retryAll)

	if !errors.Is(err, transient) {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteRespectsContextCancellation(t *testing.T) {
	e := NewExecutor(fastConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Execute(ctx, "op", func(context.Context) error {
		t.Fatal("callback must not run on a cancelled context")
		return nil
	}, retryAll)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecuteOpensBreakerAfterRepeatedFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	e := NewExecutor(cfg)

	failing := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 2; i++ {
		if err := e.Execute(context.Background(), "op", failing, retryAll); err == nil {
			t.Fatal("expected failure")
		}
	}

	err := e.Execute(context.Background(), "op", func(context.Context) error { return nil }, retryAll)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerOpenTimeout = time.Minute
	e := NewExecutor(cfg)

	failing := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 2; i++ {
		_ = e.Execute(context.Background(), "vision.extract", failing, retryAll)
	}

	if err := e.Execute(context.Background(), "queue.publish", func(context.Context) error { return nil }, retryAll); err != nil {
		t.Fatalf("unrelated operation tripped: %v", err)
	}
}

func TestNilCallbackRejected(t *testing.T) {
	e := NewExecutor(fastConfig())
	if err := e.Execute(context.Background(), "op", nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
