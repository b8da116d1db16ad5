package export

import (
	"fmt"

	"github.com/noah-isme/backend-invoice/internal/invoice"
)

// Row is a labelled value in a preview section.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Preview is the rendered, read-only form of a draft shown before export.
// Amounts are already formatted; consumers never see decimals.
type Preview struct {
	Greeting string   `json:"greeting"`
	Intro    string   `json:"intro"`
	Details  []Row    `json:"details"`
	Items    []string `json:"items"`
	Amounts  []Row    `json:"amounts"`
}

// BuildPreview renders d and its totals. The discount row shows the combined
// percentage and coupon discount.
func BuildPreview(d invoice.Draft, t invoice.Totals) Preview {
	d = d.Normalize()
	cur := d.Currency

	items := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, fmt.Sprintf("%s - %s x %s %s", it.Description, it.Quantity, it.Price, cur))
	}
	return Preview{
		Greeting: fmt.Sprintf("Hi %s,", d.Recipient),
		Intro:    fmt.Sprintf("Your order %s was just dropped off. Check it out below:", d.Subject),
		Details: []Row{
			{Label: "Due Date", Value: d.DueDate},
			{Label: "Bill to", Value: d.Email},
			{Label: "Subject", Value: d.Subject},
			{Label: "Currency", Value: cur},
		},
		Items: items,
		Amounts: []Row{
			{Label: "Subtotal", Value: invoice.FormatAmount(t.Subtotal, cur)},
			{Label: "Discount", Value: invoice.FormatAmount(t.TotalDiscount, cur)},
			{Label: "Tax", Value: invoice.FormatAmount(t.TotalTax, cur)},
			{Label: "Total", Value: invoice.FormatAmount(t.Total, cur)},
		},
	}
}

// Lines flattens the preview into plain text lines.
func (p Preview) Lines() []string {
	lines := make([]string, 0, 4+len(p.Details)+len(p.Items)+len(p.Amounts))
	lines = append(lines, p.Greeting, p.Intro, "Your Order")
	for _, row := range p.Details {
		lines = append(lines, row.Label+": "+row.Value)
	}
	lines = append(lines, p.Items...)
	lines = append(lines, "Amount")
	for _, row := range p.Amounts {
		lines = append(lines, row.Label+": "+row.Value)
	}
	return lines
}
