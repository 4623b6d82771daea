package usecase

import (
	"context"
	"sync"
)

// TaskLocker serializes mutations of a single task across requests.
// TryLock never blocks: ok is false when another holder owns the lock.
type TaskLocker interface {
	TryLock(ctx context.Context, taskID string) (release func(), ok bool, err error)
}

// LocalLocker is an in-process TaskLocker for single-instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) TryLock(_ context.Context, taskID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[taskID]; busy {
		return nil, false, nil
	}
	l.held[taskID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, taskID)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}

var _ TaskLocker = (*LocalLocker)(nil)
