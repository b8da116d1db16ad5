package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoiceTotalsComputed counts totals computations served.
	InvoiceTotalsComputed prometheus.Counter
	// InvoiceItemEditsTotal counts line item edits by operation and result.
	InvoiceItemEditsTotal *prometheus.CounterVec
	// CouponApplyTotal counts coupon application outcomes (accepted, rejected, unavailable, error).
	CouponApplyTotal *prometheus.CounterVec
	// CouponResolveLatency records resolver latency in milliseconds.
	CouponResolveLatency *prometheus.HistogramVec
	// InvoiceExportTotal counts preview and PDF renders by format and result.
	InvoiceExportTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers invoice Prometheus collectors.
// Until it is called the collectors are nil and recording helpers are no-ops.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceTotalsComputed = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_totals_computed_total",
			Help:      "Number of invoice totals computations.",
		})
		InvoiceItemEditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_item_edits_total",
			Help:      "Count of line item edits by operation and result.",
		}, []string{"op", "result"})
		CouponApplyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_coupon_apply_total",
			Help:      "Count of coupon application outcomes.",
		}, []string{"result"})
		CouponResolveLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_coupon_resolve_duration_ms",
			Help:      "Coupon resolver latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"result"})
		InvoiceExportTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_export_total",
			Help:      "Count of invoice exports by format and result.",
		}, []string{"format", "result"})

		mustRegisterCollector(reg, InvoiceTotalsComputed, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				InvoiceTotalsComputed = v
			}
		})
		mustRegisterCollector(reg, InvoiceItemEditsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoiceItemEditsTotal = v
			}
		})
		mustRegisterCollector(reg, CouponApplyTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CouponApplyTotal = v
			}
		})
		mustRegisterCollector(reg, CouponResolveLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				CouponResolveLatency = v
			}
		})
		mustRegisterCollector(reg, InvoiceExportTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoiceExportTotal = v
			}
		})
	})
}

// RecordTotalsComputed increments InvoiceTotalsComputed when registered.
func RecordTotalsComputed() {
	if InvoiceTotalsComputed != nil {
		InvoiceTotalsComputed.Inc()
	}
}

// RecordItemEdit increments InvoiceItemEditsTotal when registered.
func RecordItemEdit(op, result string) {
	if InvoiceItemEditsTotal != nil {
		InvoiceItemEditsTotal.WithLabelValues(op, result).Inc()
	}
}

// RecordCouponApply records a coupon outcome and the resolver latency.
func RecordCouponApply(result string, latencyMs float64) {
	if CouponApplyTotal != nil {
		CouponApplyTotal.WithLabelValues(result).Inc()
	}
	if CouponResolveLatency != nil {
		CouponResolveLatency.WithLabelValues(result).Observe(latencyMs)
	}
}

// RecordExport increments InvoiceExportTotal when registered.
func RecordExport(format, result string) {
	if InvoiceExportTotal != nil {
		InvoiceExportTotal.WithLabelValues(format, result).Inc()
	}
}
