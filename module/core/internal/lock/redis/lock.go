// Package redis provides a Redis-backed lock that keeps alert passes from
// overlapping across ticks and replicas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultKey = "carecircle:wandering-alert:run-lock"

var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RunLock struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRunLock(client *goredis.Client, key string, ttl time.Duration, logger *zap.Logger) *RunLock {
	if key == "" {
		key = DefaultKey
	}
	return &RunLock{client: client, key: key, ttl: ttl, logger: logger}
}

// TryAcquire takes the lock if nobody holds it. The returned release func is
// only non-nil when acquired is true; it never deletes a lock taken over by
// another holder after the TTL expired.
func (l *RunLock) TryAcquire(ctx context.Context) (release func(), acquired bool, err error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		// The pass context may already be cancelled; release on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			l.logger.Warn("Failed to release run lock", zap.String("key", l.key), zap.Error(err))
			return
		}
		if n == 0 {
			l.logger.Warn("Run lock expired before release", zap.String("key", l.key), zap.Duration("ttl", l.ttl))
		}
	}
	return release, true, nil
}
