package app

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-invoice/internal/config"
	"github.com/noah-isme/backend-invoice/internal/coupon"
	"github.com/noah-isme/backend-invoice/internal/health"
	"github.com/noah-isme/backend-invoice/internal/ratelimit"
	"github.com/noah-isme/backend-invoice/internal/resilience"
)

// NewResolver picks the coupon resolver named by cfg.CouponResolver and
// returns the readiness probes it depends on.
func NewResolver(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) (coupon.Resolver, map[string]health.Probe, error) {
	probes := map[string]health.Probe{}
	switch cfg.CouponResolver {
	case config.ResolverStatic, "":
		table := coupon.DefaultTable()
		if len(cfg.CouponCodes) > 0 {
			parsed, err := coupon.ParseTable(cfg.CouponCodes)
			if err != nil {
				return nil, nil, err
			}
			table = parsed
		}
		return coupon.NewStaticResolver(table), probes, nil
	case config.ResolverRedis:
		if rdb == nil {
			return nil, nil, errors.New("redis coupon resolver needs a redis client")
		}
		r := coupon.NewRedisResolver(rdb, cfg.CouponRedisKey)
		probes["coupon_redis"] = func(ctx context.Context) error {
			return r.Ping(ctx, cfg.Obs.ReadyRedisTimeout)
		}
		return r, probes, nil
	case config.ResolverRemote:
		r := coupon.NewRemoteResolver(coupon.RemoteConfig{
			BaseURL:     cfg.CouponRemoteURL,
			Timeout:     cfg.CouponRemoteTimeout,
			MaxAttempts: cfg.CouponRemoteAttempts,
			Logger:      logger,
		})
		probes["coupon_remote"] = func(context.Context) error {
			if r.Client.Breaker.State() == resilience.Open {
				return resilience.ErrOpenCircuit
			}
			return nil
		}
		return r, probes, nil
	default:
		return nil, nil, fmt.Errorf("unknown coupon resolver %q", cfg.CouponResolver)
	}
}

// NewCouponLimiter shares coupon attempt counters through Redis when a client
// is available and falls back to process memory otherwise.
func NewCouponLimiter(rdb *redis.Client) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.SlidingRedis{Client: rdb, Prefix: "ratelimit:"}
	}
	return ratelimit.NewMemory("ratelimit")
}
