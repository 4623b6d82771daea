package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"postgres", "redis", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	m.Register("ignored", nil)

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	want := []string{"http", "redis", "postgres"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	order = nil
	if err := m.Shutdown(context.Background()); err != nil || len(order) != 0 {
		t.Fatalf("second shutdown reran hooks: %v %v", order, err)
	}
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	errA, errB := errors.New("a failed"), errors.New("b failed")
	ran := false
	m.Register("a", func(context.Context) error { return errA })
	m.Register("ok", func(context.Context) error { ran = true; return nil })
	m.Register("b", func(context.Context) error { return errB })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("err = %v", err)
	}
	if !ran {
		t.Fatalf("hook after a failure was skipped")
	}
}

func TestShutdownAppliesTimeout(t *testing.T) {
	m := New(20*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if err := m.Shutdown(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestGoFailureCancelsContext(t *testing.T) {
	m := New(time.Second, nil)
	ctx := m.Listen(context.Background())
	boom := errors.New("listen tcp :8080: address already in use")

	m.Go("http_server", func() error { return nil })
	m.Go("broken", func() error { return boom })

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("context not cancelled by failing component")
	}
	if !errors.Is(m.Err(), boom) {
		t.Fatalf("Err() = %v", m.Err())
	}
}

func TestListenFollowsParent(t *testing.T) {
	m := New(time.Second, nil)
	parent, cancel := context.WithCancel(context.Background())
	ctx := m.Listen(parent)
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("parent cancellation not propagated")
	}
	if m.Err() != nil {
		t.Fatalf("Err() = %v", m.Err())
	}
}
