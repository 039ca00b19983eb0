package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 5}.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("purge: %w", domain.ErrRateLimited)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsAtAttempts(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 3}.Do(context.Background(), func(context.Context) error {
		calls++
		return timeoutError{}
	})
	if !errors.As(err, new(timeoutError)) {
		t.Fatalf("err = %v, want the last timeout", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Policy{Attempts: 3}.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("err = %v after %d calls, want boom after 1", err, calls)
	}
}

func TestDo_CustomPredicate(t *testing.T) {
	busy := errors.New("database is locked")
	calls := 0
	p := Policy{Attempts: 4, Retryable: func(err error) bool { return errors.Is(err, busy) }}
	_ = p.Do(context.Background(), func(context.Context) error {
		calls++
		return busy
	})
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return timeoutError{}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := Policy{Attempts: 3}.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}

func TestDo_CancelDuringBackoffKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Attempts: 3, Base: time.Hour}
	err := p.Do(ctx, func(context.Context) error {
		cancel()
		return timeoutError{}
	})
	if !errors.As(err, new(timeoutError)) {
		t.Errorf("err = %v, want the timeout", err)
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{context.Canceled, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("cf: %w", domain.ErrRateLimited), true},
		{timeoutError{}, true},
		{domain.ErrUnauthorized, false},
	}
	for _, tt := range tests {
		if got := Transient(tt.err); got != tt.want {
			t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestBackoff_Bounds(t *testing.T) {
	if got := Backoff(0, time.Second, 3); got != 0 {
		t.Errorf("zero base = %v", got)
	}
	for attempt := 1; attempt <= 10; attempt++ {
		got := Backoff(10*time.Millisecond, 50*time.Millisecond, attempt)
		if got < 0 || got > 50*time.Millisecond {
			t.Errorf("attempt %d: backoff %v out of range", attempt, got)
		}
	}
	for range 20 {
		if got := Backoff(10*time.Millisecond, 0, 1); got > 10*time.Millisecond {
			t.Errorf("first backoff %v exceeds base", got)
		}
	}
}
