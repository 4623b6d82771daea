package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestWarningsAdd(t *testing.T) {
	var w Warnings
	w.Add(nil)
	if len(w) != 0 || w.Err() != nil {
		t.Fatalf("nil error recorded: %v", w)
	}

	w.Add(errors.New("activity lost"))
	w.Add(errors.Join(errors.New("notify a"), nil, fmt.Errorf("wrapped: %w", errors.New("notify b"))))
	want := []string{"activity lost", "notify a", "wrapped: notify b"}
	if len(w) != len(want) {
		t.Fatalf("warnings = %v", w)
	}
	for i := range want {
		if w[i] != want[i] {
			t.Fatalf("warning[%d] = %q, want %q", i, w[i], want[i])
		}
	}
	if w.Err() == nil {
		t.Fatalf("Err() = nil with %d warnings", len(w))
	}
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	release, ok, err := l.TryLock(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("first lock = %v, %v", ok, err)
	}
	if _, ok, _ := l.TryLock(ctx, "t1"); ok {
		t.Fatalf("second lock on held task succeeded")
	}
	other, ok, _ := l.TryLock(ctx, "t2")
	if !ok {
		t.Fatalf("lock on another task refused")
	}
	other()

	release()
	release()
	again, ok, _ := l.TryLock(ctx, "t1")
	if !ok {
		t.Fatalf("lock not reacquired after release")
	}
	again()
}

func TestLocalLockerSingleWinner(t *testing.T) {
	l := NewLocalLocker()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := l.TryLock(context.Background(), "hot"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	if wins != 1 {
		t.Fatalf("winners = %d, want 1", wins)
	}
}
