package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got.String())
}

func scenarioDraft(discount string) Draft {
	d := NewDraft()
	d.Items = []LineItem{{Description: "Widget", Quantity: "2", Price: "50", Tax: "10"}}
	d.DiscountPercent = discount
	return d
}

func TestComputeTotalsSingleItem(t *testing.T) {
	totals := ComputeTotals(scenarioDraft("0"), decimal.Zero)
	requireAmount(t, "100", totals.Subtotal)
	requireAmount(t, "10", totals.TotalTax)
	requireAmount(t, "0", totals.DiscountAmount)
	requireAmount(t, "0", totals.TotalDiscount)
	requireAmount(t, "110", totals.Total)
}

func TestComputeTotalsPercentDiscount(t *testing.T) {
	totals := ComputeTotals(scenarioDraft("10"), decimal.Zero)
	requireAmount(t, "10", totals.DiscountAmount)
	requireAmount(t, "10", totals.TotalDiscount)
	requireAmount(t, "100", totals.Total)
}

func TestComputeTotalsWithCouponDiscount(t *testing.T) {
	totals := ComputeTotals(scenarioDraft("10"), decimal.NewFromInt(100))
	requireAmount(t, "10", totals.DiscountAmount)
	requireAmount(t, "110", totals.TotalDiscount)
	requireAmount(t, "0", totals.Total)
}

func TestComputeTotalsBlankQuantityContributesZero(t *testing.T) {
	d := NewDraft()
	d.Items = []LineItem{
		{Description: "blank qty", Quantity: "", Price: "20", Tax: "0"},
		{Description: "real", Quantity: "1", Price: "5", Tax: "0"},
	}
	totals := ComputeTotals(d, decimal.Zero)
	requireAmount(t, "5", totals.Subtotal)
	requireAmount(t, "0", totals.TotalTax)
	requireAmount(t, "5", totals.Total)
}

func TestComputeTotalsAllowsNegativeTotal(t *testing.T) {
	d := NewDraft()
	d.Items = []LineItem{{Quantity: "1", Price: "30", Tax: "0"}}
	totals := ComputeTotals(d, decimal.NewFromInt(100))
	requireAmount(t, "-70", totals.Total)
}

func TestComputeTotalsAcceptsOutOfRangeValues(t *testing.T) {
	d := NewDraft()
	d.Items = []LineItem{{Quantity: "-2", Price: "10", Tax: "150"}}
	d.DiscountPercent = "-10"
	totals := ComputeTotals(d, decimal.Zero)
	requireAmount(t, "-20", totals.Subtotal)
	requireAmount(t, "-30", totals.TotalTax)
	requireAmount(t, "2", totals.DiscountAmount)
	requireAmount(t, "-52", totals.Total)
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	d := NewDraft()
	d.Items = []LineItem{
		{Quantity: "3", Price: "19.99", Tax: "18"},
		{Quantity: "0.5", Price: "7.25", Tax: "5"},
	}
	d.DiscountPercent = "12.5"
	coupon := decimal.RequireFromString("3.33")

	first := ComputeTotals(d, coupon)
	second := ComputeTotals(d, coupon)
	require.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	require.Equal(t, first.TotalTax.String(), second.TotalTax.String())
	require.Equal(t, first.DiscountAmount.String(), second.DiscountAmount.String())
	require.Equal(t, first.TotalDiscount.String(), second.TotalDiscount.String())
	require.Equal(t, first.Total.String(), second.Total.String())
}

func TestComputeTotalsBalances(t *testing.T) {
	cases := []struct {
		name     string
		items    []LineItem
		discount string
		coupon   string
	}{
		{"empty", nil, "0", "0"},
		{"fractional", []LineItem{{Quantity: "1.5", Price: "0.1", Tax: "7.5"}}, "3", "0"},
		{"many", []LineItem{
			{Quantity: "4", Price: "12.75", Tax: "12"},
			{Quantity: "abc", Price: "99", Tax: "5"},
			{Quantity: "10", Price: "0.01", Tax: ""},
		}, "15", "100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDraft()
			d.Items = tc.items
			d.DiscountPercent = tc.discount
			coupon := decimal.RequireFromString(tc.coupon)
			totals := ComputeTotals(d, coupon)

			want := decimal.Zero
			for _, it := range tc.items {
				want = want.Add(ParseNumericOrZero(it.Quantity).Mul(ParseNumericOrZero(it.Price)))
			}
			require.True(t, want.Equal(totals.Subtotal))
			expectTotal := totals.Subtotal.Add(totals.TotalTax).Sub(totals.DiscountAmount).Sub(coupon)
			require.True(t, expectTotal.Equal(totals.Total))
		})
	}
}

func TestComputeTotalsDoesNotMutateDraft(t *testing.T) {
	d := scenarioDraft("5")
	before := d.Clone()
	_ = ComputeTotals(d, decimal.NewFromInt(1))
	require.Equal(t, before, d)
}
