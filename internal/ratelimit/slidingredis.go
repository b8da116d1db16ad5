package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow prunes attempts older than the window and records a new one
// only while the key is under its limit, so rejected attempts do not extend
// the lockout. It returns {allowed, count, oldest score}.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[4]) then
  redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', KEYS[1], ARGV[5])
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
return {allowed, count, oldest[2] or ARGV[2]}
`)

// SlidingRedis is a sliding window limiter over Redis sorted sets. Every API
// replica sees the same coupon attempt history.
type SlidingRedis struct {
	Client *redis.Client
	Prefix string
}

// Allow records an attempt for key when it fits into the window. reset is the
// moment the oldest attempt in the window ages out.
func (l SlidingRedis) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	now := time.Now()
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}
	nowMs := now.UnixMilli()
	member := key + ":" + uuid.NewString()

	res, err := slidingWindow.Run(ctx, l.Client, []string{l.Prefix + key},
		nowMs-windowMs, nowMs, member, max, windowMs).Slice()
	if err != nil {
		return false, 0, now.Add(window), err
	}
	if len(res) != 3 {
		return false, 0, now.Add(window), fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	flag, _ := res[0].(int64)
	count, _ := res[1].(int64)
	oldestMs := nowMs
	if raw, ok := res[2].(string); ok {
		if f, perr := strconv.ParseFloat(raw, 64); perr == nil {
			oldestMs = int64(f)
		}
	}

	remaining = max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return flag == 1, remaining, time.UnixMilli(oldestMs).Add(window), nil
}
