package invoice

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidIndex is returned when an item edit targets a position outside the item list.
	ErrInvalidIndex = errors.New("invoice: item index out of range")
	// ErrUnknownField is returned when an item edit names a column the form does not have.
	ErrUnknownField = errors.New("invoice: unknown item field")
)

// DefaultCurrency is the currency label applied to drafts that do not carry one.
const DefaultCurrency = "INR"

// SupportedCurrencies lists the codes a draft may be labelled with. Amounts are never converted.
var SupportedCurrencies = []string{DefaultCurrency}

// Field names an editable line item column.
type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldPrice       Field = "price"
	FieldTax         Field = "tax"
)

// ParseField maps a form column name onto a Field.
func ParseField(name string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(name))) {
	case FieldDescription:
		return FieldDescription, nil
	case FieldQuantity:
		return FieldQuantity, nil
	case FieldPrice:
		return FieldPrice, nil
	case FieldTax:
		return FieldTax, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// LineItem is one billable row. Numeric columns hold the text as entered and are
// only interpreted when totals are computed.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Tax         string `json:"tax"`
}

// Draft is a single revision of an invoice being edited. Edits never mutate a
// draft in place; they return the next revision.
type Draft struct {
	Revision        int        `json:"revision"`
	Recipient       string     `json:"recipient"`
	Email           string     `json:"email"`
	Subject         string     `json:"subject"`
	DueDate         string     `json:"dueDate"`
	Currency        string     `json:"currency" validate:"omitempty,oneof=INR"`
	Items           []LineItem `json:"items"`
	DiscountPercent string     `json:"discount"`
}

// NewDraft returns the initial draft: one blank item and no discount.
func NewDraft() Draft {
	return Draft{
		Currency:        DefaultCurrency,
		Items:           []LineItem{{}},
		DiscountPercent: "0",
	}
}

// IsSupportedCurrency reports whether code is one of SupportedCurrencies.
func IsSupportedCurrency(code string) bool {
	return slices.Contains(SupportedCurrencies, code)
}

// Clone returns a copy that shares no item storage with d.
func (d Draft) Clone() Draft {
	next := d
	next.Items = slices.Clone(d.Items)
	if next.Items == nil {
		next.Items = []LineItem{}
	}
	return next
}

// Normalize fills in the currency label when the client left it blank.
func (d Draft) Normalize() Draft {
	next := d.Clone()
	if strings.TrimSpace(next.Currency) == "" {
		next.Currency = DefaultCurrency
	}
	return next
}

// WithItems returns the next revision carrying items.
func (d Draft) WithItems(items []LineItem) Draft {
	next := d.Clone()
	next.Items = slices.Clone(items)
	if next.Items == nil {
		next.Items = []LineItem{}
	}
	next.Revision++
	return next
}

// AddItem returns the next revision with a blank item appended.
func (d Draft) AddItem() Draft {
	return d.WithItems(AddItem(d.Items))
}

// RemoveItem returns the next revision without the item at index.
func (d Draft) RemoveItem(index int) (Draft, error) {
	items, err := RemoveItem(d.Items, index)
	if err != nil {
		return d, err
	}
	return d.WithItems(items), nil
}

// UpdateItem returns the next revision with one column of one item replaced.
func (d Draft) UpdateItem(index int, field Field, value string) (Draft, error) {
	items, err := UpdateItemField(d.Items, index, field, value)
	if err != nil {
		return d, err
	}
	return d.WithItems(items), nil
}
