package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskpulse/usecase"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redislib.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type taskLocker struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewTaskLocker returns a TaskLocker backed by Redis SET NX PX.
func NewTaskLocker(client *redislib.Client, ttl time.Duration) usecase.TaskLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &taskLocker{
		client: client,
		prefix: "lock:task:",
		ttl:    ttl,
	}
}

func (l *taskLocker) TryLock(ctx context.Context, taskID string) (func(), bool, error) {
	key := l.prefix + taskID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire task lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// A fresh context keeps release working after the request context is cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}
