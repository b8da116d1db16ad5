package invoice

import "github.com/shopspring/decimal"

// Totals aggregates the amounts derived from a draft. It is recomputed on every
// read and never stored.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalTax       decimal.Decimal `json:"totalTax"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalDiscount  decimal.Decimal `json:"totalDiscount"`
	Total          decimal.Decimal `json:"total"`
}

// LineValue returns quantity × price.
func (it LineItem) LineValue() decimal.Decimal {
	return ParseNumericOrZero(it.Quantity).Mul(ParseNumericOrZero(it.Price))
}

// LineTax returns the tax owed on the line at its own rate.
func (it LineItem) LineTax() decimal.Decimal {
	return percentOf(it.LineValue(), ParseNumericOrZero(it.Tax))
}

// ComputeTotals calculates draft totals given the flat coupon discount currently
// applied. Percentages are not bounded and the total is not clamped at zero.
func ComputeTotals(d Draft, couponDiscount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, it := range d.Items {
		subtotal = subtotal.Add(it.LineValue())
		tax = tax.Add(it.LineTax())
	}
	discount := percentOf(subtotal, ParseNumericOrZero(d.DiscountPercent))
	totalDiscount := discount.Add(couponDiscount)
	return Totals{
		Subtotal:       subtotal,
		TotalTax:       tax,
		DiscountAmount: discount,
		TotalDiscount:  totalDiscount,
		Total:          subtotal.Add(tax).Sub(totalDiscount),
	}
}

// percentOf scales by 10^-2 instead of dividing so the result stays exact.
func percentOf(value, pct decimal.Decimal) decimal.Decimal {
	return value.Mul(pct).Shift(-2)
}
