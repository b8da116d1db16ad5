package coupon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-invoice/internal/resilience"
)

// RemoteResolver asks a coupon validation service for the discount of a code:
//
//	GET {BaseURL}/coupons/{code}
//	200 {"amount": "100"}   accepted (amount required, never negative)
//	404, 422                rejected
//	anything else           unavailable
type RemoteResolver struct {
	BaseURL string
	Client  resilience.HTTPClient
}

// RemoteConfig configures NewRemoteResolver.
type RemoteConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	Logger      zerolog.Logger
}

type remoteCoupon struct {
	Amount *decimal.Decimal `json:"amount"`
}

// NewRemoteResolver builds a resolver with a traced HTTP client, retries and a
// breaker labelled "coupon_resolver".
func NewRemoteResolver(cfg RemoteConfig) *RemoteResolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "coupon_resolver",
		MinRequests:  5,
		FailureRatio: 0.5,
		OpenFor:      30 * time.Second,
	}).WithLogger(cfg.Logger)
	return &RemoteResolver{
		BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		Client: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker:     breaker,
			BaseBackoff: 100 * time.Millisecond,
			MaxAttempts: attempts,
			Jitter:      0.2,
			Timeout:     timeout,
		},
	}
}

// Resolve queries the remote service for code.
func (r *RemoteResolver) Resolve(ctx context.Context, code string) (decimal.Decimal, error) {
	if strings.TrimSpace(code) == "" {
		return decimal.Zero, rejected(code)
	}
	endpoint := r.BaseURL + "/coupons/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return decimal.Zero, err
		}
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var body remoteCoupon
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return decimal.Zero, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
		if body.Amount == nil {
			return decimal.Zero, fmt.Errorf("%w: response has no amount", ErrUnavailable)
		}
		if body.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: coupon %q resolved to %s", ErrInvalidAmount, code, body.Amount)
		}
		return *body.Amount, nil
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return decimal.Zero, rejected(code)
	default:
		return decimal.Zero, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}
}
