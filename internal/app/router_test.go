package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-invoice/internal/common"
	"github.com/noah-isme/backend-invoice/internal/config"
	"github.com/noah-isme/backend-invoice/internal/coupon"
	"github.com/noah-isme/backend-invoice/internal/export"
	"github.com/noah-isme/backend-invoice/internal/health"
	"github.com/noah-isme/backend-invoice/internal/invoice"
	"github.com/noah-isme/backend-invoice/internal/obs"
	"github.com/noah-isme/backend-invoice/internal/ratelimit"
)

func newTestServer(t *testing.T, resolver coupon.Resolver, rateMax int) *httptest.Server {
	t.Helper()
	registry := prometheus.NewRegistry()
	svc := &invoice.Service{Resolver: resolver, Logger: zerolog.Nop()}
	validate := common.NewValidator()
	handler := NewRouter(Deps{
		Logger:             zerolog.Nop(),
		Invoices:           &invoice.Handler{Svc: svc, Validate: validate},
		Exports:            &export.Handler{Svc: svc, Validate: validate},
		Health:             health.Handler{},
		CouponLimiter:      ratelimit.NewMemory("test"),
		CouponRateMax:      rateMax,
		CouponRateWindow:   time.Minute,
		HTTPMetrics:        obs.NewHTTPMetrics("invoice_test", nil, registry),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		BodyLimitBytes:     4096,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouterDraftFlow(t *testing.T) {
	srv := newTestServer(t, coupon.NewStaticResolver(coupon.DefaultTable()), 5)

	resp, err := http.Get(srv.URL + "/api/v1/invoices/draft")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	draft := `{"draft":{"items":[{"description":"Design","quantity":"1","price":"1000","tax":"10"}],"discount":"5"}}`
	resp = post(t, srv.URL+"/api/v1/invoices/totals", draft)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env struct {
		Data invoice.DraftView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Data.Totals.Total.Equal(decimal.NewFromInt(1050)), env.Data.Totals.Total.String())

	resp = post(t, srv.URL+"/api/v1/coupons/apply", `{"code":"DISCOUNT100"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, srv.URL+"/api/v1/invoices/pdf", draft)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get("X-Document-Id"))
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = metrics.Body.Close() }()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `route="/api/v1/invoices/totals"`)
}

func TestRouterCouponRateLimit(t *testing.T) {
	srv := newTestServer(t, coupon.NewStaticResolver(coupon.DefaultTable()), 2)

	require.Equal(t, http.StatusUnprocessableEntity, post(t, srv.URL+"/api/v1/coupons/apply", `{"code":"NOPE"}`).StatusCode)
	require.Equal(t, http.StatusUnprocessableEntity, post(t, srv.URL+"/api/v1/coupons/apply", `{"code":"NOPE"}`).StatusCode)
	resp := post(t, srv.URL+"/api/v1/coupons/apply", `{"code":"DISCOUNT100"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))

	// other endpoints are not limited
	require.Equal(t, http.StatusOK, post(t, srv.URL+"/api/v1/invoices/totals", `{"draft":{}}`).StatusCode)
}

func TestRouterBodyLimit(t *testing.T) {
	srv := newTestServer(t, nil, 5)
	big := `{"draft":{"recipient":"` + strings.Repeat("x", 8192) + `"}}`
	resp := post(t, srv.URL+"/api/v1/invoices/totals", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRouterCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil, 5)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/invoices/items/0", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNewResolverSelection(t *testing.T) {
	logger := zerolog.Nop()

	r, probes, err := NewResolver(&config.Config{CouponResolver: config.ResolverStatic, CouponCodes: []string{"SPRING=15"}}, nil, logger)
	require.NoError(t, err)
	require.Empty(t, probes)
	amount, err := r.Resolve(context.Background(), "SPRING")
	require.NoError(t, err)
	require.True(t, amount.Equal(decimal.NewFromInt(15)))

	_, _, err = NewResolver(&config.Config{CouponResolver: config.ResolverStatic, CouponCodes: []string{"BROKEN"}}, nil, logger)
	require.Error(t, err)

	_, _, err = NewResolver(&config.Config{CouponResolver: config.ResolverRedis}, nil, logger)
	require.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.HSet("coupon:codes", "DISCOUNT100", "100")

	r, probes, err = NewResolver(&config.Config{CouponResolver: config.ResolverRedis, CouponRedisKey: "coupon:codes"}, rdb, logger)
	require.NoError(t, err)
	require.NoError(t, probes["coupon_redis"](context.Background()))
	amount, err = r.Resolve(context.Background(), "DISCOUNT100")
	require.NoError(t, err)
	require.True(t, amount.Equal(decimal.NewFromInt(100)))

	r, probes, err = NewResolver(&config.Config{CouponResolver: config.ResolverRemote, CouponRemoteURL: "http://127.0.0.1:1"}, nil, logger)
	require.NoError(t, err)
	require.IsType(t, &coupon.RemoteResolver{}, r)
	require.NoError(t, probes["coupon_remote"](context.Background()))

	_, _, err = NewResolver(&config.Config{CouponResolver: "ldap"}, nil, logger)
	require.Error(t, err)
}

func TestNewCouponLimiter(t *testing.T) {
	require.IsType(t, &ratelimit.Memory{}, NewCouponLimiter(nil))
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rdb.Close() })
	require.IsType(t, ratelimit.SlidingRedis{}, NewCouponLimiter(rdb))
}
