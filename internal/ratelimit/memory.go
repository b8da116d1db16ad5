package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Memory is an in-process fixed window limiter for single-replica deployments
// without Redis.
type Memory struct {
	store limiter.Store

	mu       sync.Mutex
	limiters map[limiter.Rate]*limiter.Limiter
}

// NewMemory builds a limiter whose counters live in this process.
func NewMemory(prefix string) *Memory {
	return &Memory{
		store:    memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix, CleanUpInterval: limiter.DefaultCleanUpInterval}),
		limiters: make(map[limiter.Rate]*limiter.Limiter),
	}
}

// Allow counts one event for key against max per window.
func (m *Memory) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	lctx, err := m.limiterFor(rate).Get(ctx, fmt.Sprintf("%d:%d:%s", max, window.Milliseconds(), key))
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	return !lctx.Reached, int(lctx.Remaining), time.Unix(lctx.Reset, 0), nil
}

func (m *Memory) limiterFor(rate limiter.Rate) *limiter.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.limiters[rate]; ok {
		return l
	}
	l := limiter.New(m.store, rate)
	m.limiters[rate] = l
	return l
}
