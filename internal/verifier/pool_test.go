package verifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func buildTestEngine() (*Engine, error) {
	return newTestEngine(&fakeEmbedder{}, &fakeLandmarks{}), nil
}

func TestPool_AcquireRelease(t *testing.T) {
	pool, err := NewPool(2, buildTestEngine)
	if err != nil {
		t.Fatalf("Failed to build pool: %v", err)
	}
	defer pool.Close()

	e1, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}
	e2, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Second acquire failed: %v", err)
	}
	if e1 == e2 {
		t.Error("Expected distinct engines from a pool of two")
	}

	pool.Release(e1)
	e3, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	if e3 != e1 {
		t.Error("Expected the released engine to be checked out again")
	}
	pool.Release(e2)
	pool.Release(e3)
}

func TestPool_AcquireRespectsContext(t *testing.T) {
	pool, err := NewPool(1, buildTestEngine)
	if err != nil {
		t.Fatalf("Failed to build pool: %v", err)
	}
	defer pool.Close()

	engine, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer pool.Release(engine)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded on an exhausted pool, got %v", err)
	}
}

func TestPool_BuildFailurePropagates(t *testing.T) {
	buildErr := errors.New("models directory missing")
	if _, err := NewPool(2, func() (*Engine, error) { return nil, buildErr }); !errors.Is(err, buildErr) {
		t.Errorf("Expected build error to propagate, got %v", err)
	}
}

func TestPool_MinimumSizeOfOne(t *testing.T) {
	pool, err := NewPool(0, buildTestEngine)
	if err != nil {
		t.Fatalf("Failed to build pool: %v", err)
	}
	defer pool.Close()

	engine, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	pool.Release(engine)
}

func TestPool_ConcurrentCheckouts(t *testing.T) {
	pool, err := NewPool(3, buildTestEngine)
	if err != nil {
		t.Fatalf("Failed to build pool: %v", err)
	}
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine, err := pool.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			time.Sleep(time.Millisecond)
			pool.Release(engine)
		}()
	}
	wg.Wait()
}
