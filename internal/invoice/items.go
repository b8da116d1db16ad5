package invoice

import (
	"fmt"
	"slices"
)

// AddItem returns a new item list with one blank item appended.
func AddItem(items []LineItem) []LineItem {
	next := make([]LineItem, 0, len(items)+1)
	next = append(next, items...)
	return append(next, LineItem{})
}

// RemoveItem returns a new item list without the element at index. The input is left untouched.
func RemoveItem(items []LineItem, index int) ([]LineItem, error) {
	if err := checkIndex(items, index); err != nil {
		return nil, err
	}
	next := slices.Clone(items)
	return slices.Delete(next, index, index+1), nil
}

// UpdateItemField returns a new item list where only field of the item at index
// holds value. The value is stored verbatim.
func UpdateItemField(items []LineItem, index int, field Field, value string) ([]LineItem, error) {
	if err := checkIndex(items, index); err != nil {
		return nil, err
	}
	next := slices.Clone(items)
	it := &next[index]
	switch field {
	case FieldDescription:
		it.Description = value
	case FieldQuantity:
		it.Quantity = value
	case FieldPrice:
		it.Price = value
	case FieldTax:
		it.Tax = value
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return next, nil
}

func checkIndex(items []LineItem, index int) error {
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: index %d with %d items", ErrInvalidIndex, index, len(items))
	}
	return nil
}
