package retry

import (
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	var slept []time.Duration
	p := Policy{Attempts: 3, BaseDelay: 10 * time.Millisecond, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := p.Do("flaky op", func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(slept) != 2 {
		t.Fatalf("expected a sleep between each attempt, got %d", len(slept))
	}
}

func TestDo_ExhaustionWrapsLastError(t *testing.T) {
	sentinel := errors.New("disk full")
	p := Policy{Attempts: 3, BaseDelay: time.Millisecond, Sleep: func(time.Duration) {}}

	calls := 0
	err := p.Do("doomed op", func() error {
		calls++
		return sentinel
	})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("wrapped error must preserve the cause, got %v", err)
	}
	want := "doomed op failed after 3 attempts: disk full"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestDo_NoRetryAfterSuccess(t *testing.T) {
	p := Policy{Attempts: 5, Sleep: func(time.Duration) { t.Fatalf("must not sleep on first-try success") }}
	calls := 0
	if err := p.Do("ok op", func() error { calls++; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestDo_ZeroAttemptsStillRunsOnce(t *testing.T) {
	p := Policy{Sleep: func(time.Duration) {}}
	calls := 0
	if err := p.Do("op", func() error { calls++; return errors.New("nope") }); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestDelay_BackoffGrowsAndCaps(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}
	for attempt := 1; attempt <= 6; attempt++ {
		d := p.delay(attempt)
		min := p.BaseDelay << uint(attempt-1)
		if min > p.MaxDelay {
			min = p.MaxDelay
		}
		if d < min || d > p.MaxDelay {
			t.Fatalf("attempt %d: delay %v outside [%v, %v]", attempt, d, min, p.MaxDelay)
		}
	}
}
