package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-invoice/internal/export"
	"github.com/noah-isme/backend-invoice/internal/health"
	"github.com/noah-isme/backend-invoice/internal/invoice"
	"github.com/noah-isme/backend-invoice/internal/obs"
	"github.com/noah-isme/backend-invoice/internal/ratelimit"
	"github.com/noah-isme/backend-invoice/internal/security"
)

// Deps are the collaborators NewRouter mounts.
type Deps struct {
	Logger   zerolog.Logger
	Invoices *invoice.Handler
	Exports  *export.Handler
	Health   health.Handler

	CouponLimiter    ratelimit.Limiter
	CouponRateMax    int
	CouponRateWindow time.Duration

	HTTPMetrics    *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool

	CORSAllowedOrigins []string
	BodyLimitBytes     int64
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(d.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Document-Id", "X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: true}.Middleware)

	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	couponLimit := ratelimit.Handler{
		Limiter: d.CouponLimiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("coupon:"),
			Window: d.CouponRateWindow,
			Max:    d.CouponRateMax,
		},
		OnError: func(err error) {
			d.Logger.Warn().Err(err).Msg("coupon_rate_limit_unavailable")
		},
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: d.BodyLimitBytes}.Middleware)

		v.Get("/invoices/draft", d.Invoices.NewDraft)
		v.Post("/invoices/totals", d.Invoices.Totals)
		v.Post("/invoices/items", d.Invoices.AddItem)
		v.Delete("/invoices/items/{index}", d.Invoices.RemoveItem)
		v.Patch("/invoices/items/{index}", d.Invoices.UpdateItem)
		v.Post("/invoices/preview", d.Exports.Preview)
		v.Post("/invoices/pdf", d.Exports.PDF)

		v.With(couponLimit.Middleware).Post("/coupons/apply", d.Invoices.ApplyCoupon)
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
