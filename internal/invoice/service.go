package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-invoice/internal/coupon"
	"github.com/noah-isme/backend-invoice/internal/obs"
)

// Coupon outcome labels used in logs and metrics.
const (
	couponAccepted    = "accepted"
	couponRejected    = "rejected"
	couponUnavailable = "unavailable"
	couponError       = "error"
)

// Service binds the calculator to a coupon resolver and records what happens.
type Service struct {
	Resolver coupon.Resolver
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Totals computes the totals of d with the coupon in state applied.
func (s *Service) Totals(_ context.Context, d Draft, state coupon.State) Totals {
	obs.RecordTotalsComputed()
	return ComputeTotals(d, state.Discount)
}

// AddItem returns the next revision of d with a blank item appended.
func (s *Service) AddItem(_ context.Context, d Draft) Draft {
	obs.RecordItemEdit("add", "ok")
	return d.AddItem()
}

// RemoveItem returns the next revision of d without the item at index.
func (s *Service) RemoveItem(ctx context.Context, d Draft, index int) (Draft, error) {
	next, err := d.RemoveItem(index)
	s.recordEdit(ctx, "remove", err)
	return next, err
}

// UpdateItem returns the next revision of d with field of the item at index set to value.
func (s *Service) UpdateItem(ctx context.Context, d Draft, index int, fieldName, value string) (Draft, error) {
	field, err := ParseField(fieldName)
	if err != nil {
		s.recordEdit(ctx, "update", err)
		return d, err
	}
	next, err := d.UpdateItem(index, field, value)
	s.recordEdit(ctx, "update", err)
	return next, err
}

// ApplyCoupon resolves code against the configured resolver. On failure the
// previous state is returned with the error.
func (s *Service) ApplyCoupon(ctx context.Context, prev coupon.State, code string) (coupon.State, error) {
	ctx, span := otel.Tracer("invoice.Service").Start(ctx, "InvoiceService.ApplyCoupon")
	defer span.End()

	start := s.now()
	next, err := coupon.Apply(ctx, s.Resolver, prev, code)
	result := classifyCoupon(err)
	elapsed := s.now().Sub(start)
	obs.RecordCouponApply(result, obs.DurationMillis(elapsed))
	span.SetAttributes(attribute.String("coupon.result", result))

	log := s.loggerFor(ctx)
	switch result {
	case couponAccepted:
		log.Info().Str("code", code).Str("discount", next.Discount.String()).Msg("coupon_applied")
	case couponRejected:
		log.Info().Str("code", code).Msg("coupon_rejected")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("code", code).Str("result", result).Dur("elapsed", elapsed).Msg("coupon_resolve_failed")
	}
	return next, err
}

func classifyCoupon(err error) string {
	switch {
	case err == nil:
		return couponAccepted
	case errors.Is(err, coupon.ErrRejected):
		return couponRejected
	case errors.Is(err, coupon.ErrUnavailable):
		return couponUnavailable
	default:
		return couponError
	}
}

func (s *Service) recordEdit(ctx context.Context, op string, err error) {
	if err == nil {
		obs.RecordItemEdit(op, "ok")
		return
	}
	obs.RecordItemEdit(op, "invalid")
	s.loggerFor(ctx).Debug().Err(err).Str("op", op).Msg("item_edit_rejected")
}

func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
