package invoice

import "github.com/shopspring/decimal"

// DisplayTotals is Totals rendered for a reader: two decimals and the currency label.
type DisplayTotals struct {
	Currency       string `json:"currency"`
	Subtotal       string `json:"subtotal"`
	TotalTax       string `json:"totalTax"`
	DiscountAmount string `json:"discountAmount"`
	TotalDiscount  string `json:"totalDiscount"`
	Total          string `json:"total"`
}

// FormatAmount renders v with two decimals followed by currency, e.g. "1200.00 INR".
func FormatAmount(v decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return v.StringFixed(2) + " " + currency
}

// Display formats t for the given currency.
func (t Totals) Display(currency string) DisplayTotals {
	if currency == "" {
		currency = DefaultCurrency
	}
	return DisplayTotals{
		Currency:       currency,
		Subtotal:       FormatAmount(t.Subtotal, currency),
		TotalTax:       FormatAmount(t.TotalTax, currency),
		DiscountAmount: FormatAmount(t.DiscountAmount, currency),
		TotalDiscount:  FormatAmount(t.TotalDiscount, currency),
		Total:          FormatAmount(t.Total, currency),
	}
}
