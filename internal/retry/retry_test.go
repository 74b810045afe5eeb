package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func deterministic(p *Policy, slept *[]time.Duration) {
	p.Jitter = func() time.Duration { return 0 }
	p.Sleep = func(d time.Duration) { *slept = append(*slept, d) }
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}
	deterministic(&p, &slept)

	calls := 0
	err := p.Do(context.Background(), "test.op", func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if len(slept) != 0 {
		t.Errorf("Expected no sleeps, got %v", slept)
	}
}

func TestDo_RetriesWithExponentialBackoff(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	deterministic(&p, &slept)

	calls := 0
	err := p.Do(context.Background(), "test.op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}

	expected := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(slept) != len(expected) {
		t.Fatalf("Expected %d sleeps, got %d", len(expected), len(slept))
	}
	for i, d := range expected {
		if slept[i] != d {
			t.Errorf("Sleep %d: expected %v, got %v", i, d, slept[i])
		}
	}
}

func TestDo_ReturnsLastErrorAfterExhaustion(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond}
	deterministic(&p, &slept)

	lastErr := errors.New("still failing")
	calls := 0
	err := p.Do(context.Background(), "test.op", func() error {
		calls++
		return lastErr
	})

	if !errors.Is(err, lastErr) {
		t.Errorf("Expected last error to be returned, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestDo_BackoffCappedAtMaxDelay(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 150 * time.Millisecond}
	deterministic(&p, &slept)

	_ = p.Do(context.Background(), "test.op", func() error {
		return errors.New("fail")
	})

	for i, d := range slept {
		if d > 150*time.Millisecond {
			t.Errorf("Sleep %d exceeds max delay: %v", i, d)
		}
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 0, BaseDelay: 10 * time.Millisecond}
	deterministic(&p, &slept)

	calls := 0
	_ = p.Do(context.Background(), "test.op", func() error {
		calls++
		return errors.New("fail")
	})

	if calls != 1 {
		t.Errorf("Expected exactly 1 call, got %d", calls)
	}
}

func TestDoValue_ReturnsResult(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 2, BaseDelay: 10 * time.Millisecond}
	deterministic(&p, &slept)

	calls := 0
	got, err := Do(context.Background(), p, "test.op", func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
}

func TestDoValue_ZeroValueOnFailure(t *testing.T) {
	var slept []time.Duration
	p := Policy{MaxAttempts: 1}
	deterministic(&p, &slept)

	got, err := Do(context.Background(), p, "test.op", func() (string, error) {
		return "partial", errors.New("fail")
	})

	if err == nil {
		t.Fatal("Expected error")
	}
	if got != "" {
		t.Errorf("Expected zero value on failure, got %q", got)
	}
}

func TestDefaultPolicies(t *testing.T) {
	if got := InitPolicy().MaxAttempts; got != 3 {
		t.Errorf("Expected init policy to allow 3 attempts, got %d", got)
	}
	if got := EmbedPolicy().MaxAttempts; got != 2 {
		t.Errorf("Expected embed policy to allow 2 attempts, got %d", got)
	}
	if got := LandmarkPolicy().MaxAttempts; got != 2 {
		t.Errorf("Expected landmark policy to allow 2 attempts, got %d", got)
	}
}
