// Package ratelimit throttles credential checks per submitted login to slow
// down online password guessing.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var loginAttemptScript = redis.NewScript(`
-- KEYS[1] = attempt counter key
-- ARGV[1] = max attempts per window (int)
-- ARGV[2] = window_ms (int)
--
-- Returns:
--  1 if the attempt is allowed
--  0 if the login is throttled
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
else
  -- Ensure TTL exists even if key already existed without TTL
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
  end
end

if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

// LoginLimiter is a fixed-window counter keyed by login. The window is not
// reset on success; a burst of correct and incorrect attempts counts the same.
type LoginLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

func NewLoginLimiter(rdb *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, max: max, window: window}
}

// Allow reports whether another credential check for login may proceed.
//
// Atomic via Lua; the TTL guarantees counters expire even if the process
// dies mid-window.
func (l *LoginLimiter) Allow(ctx context.Context, login string) (bool, error) {
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if login == "" {
		return false, fmt.Errorf("login is required")
	}
	if l.max <= 0 {
		return false, fmt.Errorf("max attempts must be > 0")
	}
	if l.window <= 0 {
		return false, fmt.Errorf("window must be > 0")
	}

	key := "login_attempts:" + login
	res, err := loginAttemptScript.Run(ctx, l.rdb, []string{key}, l.max, l.window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
