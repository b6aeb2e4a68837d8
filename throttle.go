package goVerify

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	errThrottleLimited     = errors.New("operation throttled")
	errThrottleUnavailable = errors.New("throttle redis unavailable")
)

type opThrottle struct {
	redis  *redis.Client
	config ThrottleConfig
	prefix string
}

func newOpThrottle(redisClient *redis.Client, cfg ThrottleConfig, prefix string) *opThrottle {
	return &opThrottle{
		redis:  redisClient,
		config: cfg,
		prefix: prefix,
	}
}

// Check enforces the per-IP fixed window for the named operation. A missing
// client IP is not throttled.
func (t *opThrottle) Check(ctx context.Context, tenantID, op, ip string) error {
	if !t.config.EnableIPThrottle || ip == "" {
		return nil
	}
	return t.enforceFixedWindow(ctx, t.prefix+":"+tenantID+":thr:"+op+":"+ip)
}

func (t *opThrottle) enforceFixedWindow(ctx context.Context, key string) error {
	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errThrottleUnavailable, err)
	}

	if count == 1 {
		if err := t.redis.Expire(ctx, key, t.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", errThrottleUnavailable, err)
		}
	}

	if count > int64(t.config.MaxOps) {
		return errThrottleLimited
	}

	return nil
}
