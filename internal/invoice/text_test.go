package invoice

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDraftAcceptsNumberLiterals(t *testing.T) {
	var d Draft
	payload := `{"recipient":"Asha","items":[{"description":"Widget","quantity":2,"price":50,"tax":10}],"discount":0}`
	require.NoError(t, json.Unmarshal([]byte(payload), &d))

	require.Equal(t, "Asha", d.Recipient)
	require.Equal(t, []LineItem{{Description: "Widget", Quantity: "2", Price: "50", Tax: "10"}}, d.Items)
	require.Equal(t, "0", d.DiscountPercent)

	totals := ComputeTotals(d, decimal.Zero)
	require.True(t, totals.Total.Equal(decimal.NewFromInt(110)), totals.Total.String())
}

func TestDraftKeepsEnteredText(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "string", raw: `"12abc"`, want: "12abc"},
		{name: "padded string", raw: `"  7 "`, want: "  7 "},
		{name: "exponent literal", raw: `1e3`, want: "1e3"},
		{name: "fraction literal", raw: `-0.50`, want: "-0.50"},
		{name: "null", raw: `null`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var it LineItem
			require.NoError(t, json.Unmarshal([]byte(`{"quantity":`+tc.raw+`}`), &it))
			require.Equal(t, tc.want, it.Quantity)
		})
	}

	var it LineItem
	require.NoError(t, json.Unmarshal([]byte(`{"description":"x"}`), &it))
	require.Equal(t, LineItem{Description: "x"}, it)
}

func TestDraftRejectsNonScalarNumbers(t *testing.T) {
	var it LineItem
	require.Error(t, json.Unmarshal([]byte(`{"price":true}`), &it))
	require.Error(t, json.Unmarshal([]byte(`{"tax":[1]}`), &it))

	var d Draft
	require.Error(t, json.Unmarshal([]byte(`{"discount":{"pct":5}}`), &d))
}

func TestDraftRoundTripsAsText(t *testing.T) {
	d := NewDraft()
	d.Items[0] = LineItem{Description: "Hosting", Quantity: "12", Price: "10", Tax: "18"}
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back Draft
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, d, back)
}
