package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultRedisKey is the hash holding code -> amount pairs.
const DefaultRedisKey = "coupon:codes"

// RedisResolver resolves codes against a Redis hash so the table can change
// without a redeploy.
type RedisResolver struct {
	Client *redis.Client
	Key    string
}

// NewRedisResolver constructs a resolver reading from key (DefaultRedisKey when blank).
func NewRedisResolver(client *redis.Client, key string) *RedisResolver {
	return &RedisResolver{Client: client, Key: key}
}

// Resolve looks up code in the hash. A missing field is a rejection; a Redis
// failure is reported as ErrUnavailable.
func (r *RedisResolver) Resolve(ctx context.Context, code string) (decimal.Decimal, error) {
	if r == nil || r.Client == nil {
		return decimal.Zero, fmt.Errorf("%w: redis client not configured", ErrUnavailable)
	}
	raw, err := r.Client.HGet(ctx, r.key(), code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, rejected(code)
		}
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coupon %q: stored amount %q: %w", code, raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: coupon %q stored as %s", ErrInvalidAmount, code, raw)
	}
	return amount, nil
}

// Seed writes table into the hash, replacing amounts for codes already present.
func (r *RedisResolver) Seed(ctx context.Context, table map[string]decimal.Decimal) error {
	if len(table) == 0 {
		return nil
	}
	values := make(map[string]any, len(table))
	for code, amount := range table {
		values[code] = amount.String()
	}
	return r.Client.HSet(ctx, r.key(), values).Err()
}

// Ping reports whether Redis answers within timeout (no extra bound when zero).
func (r *RedisResolver) Ping(ctx context.Context, timeout time.Duration) error {
	if r == nil || r.Client == nil {
		return errors.New("redis not configured")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Client.Ping(ctx).Err()
}

func (r *RedisResolver) key() string {
	if r.Key == "" {
		return DefaultRedisKey
	}
	return r.Key
}
