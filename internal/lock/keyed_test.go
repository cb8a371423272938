package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scrimforge/roster/internal/roster"
)

func TestKeyedMutexExcludes(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	release, err := k.Acquire(ctx, 1, time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	// second acquire on the same team must time out
	if _, err := k.Acquire(ctx, 1, 50*time.Millisecond); !errors.Is(err, roster.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	// a different team is independent
	r2, err := k.Acquire(ctx, 2, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("other team acquire: %v", err)
	}
	r2()

	release()
	r3, err := k.Acquire(ctx, 1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
	r3()
}

func TestKeyedMutexContextCancel(t *testing.T) {
	k := NewKeyedMutex()
	release, err := k.Acquire(context.Background(), 7, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := k.Acquire(ctx, 7, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestKeyedMutexSerializesCounter(t *testing.T) {
	k := NewKeyedMutex()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Acquire(context.Background(), 9, 5*time.Second)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()
			counter++
		}()
	}
	wg.Wait()
	if counter != 32 {
		t.Fatalf("counter = %d, want 32", counter)
	}
}
