package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON accepts numeric columns as JSON strings or number literals.
// Numbers keep their literal text, so {"quantity": 2} stores "2".
func (it *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Description string          `json:"description"`
		Quantity    json.RawMessage `json:"quantity"`
		Price       json.RawMessage `json:"price"`
		Tax         json.RawMessage `json:"tax"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	next := LineItem{Description: raw.Description}
	var err error
	if next.Quantity, err = enteredText("quantity", raw.Quantity); err != nil {
		return err
	}
	if next.Price, err = enteredText("price", raw.Price); err != nil {
		return err
	}
	if next.Tax, err = enteredText("tax", raw.Tax); err != nil {
		return err
	}
	*it = next
	return nil
}

// UnmarshalJSON accepts the discount as a JSON string or number literal.
func (d *Draft) UnmarshalJSON(data []byte) error {
	type plain Draft
	var aux struct {
		plain
		DiscountPercent json.RawMessage `json:"discount"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	discount, err := enteredText("discount", aux.DiscountPercent)
	if err != nil {
		return err
	}
	*d = Draft(aux.plain)
	d.DiscountPercent = discount
	return nil
}

// enteredText returns a JSON string as is and a JSON number as its literal.
// Absent and null values become blank text.
func enteredText(field string, raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("%s: %w", field, err)
		}
		return s, nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", fmt.Errorf("%s: %w", field, err)
		}
		return n.String(), nil
	default:
		return "", fmt.Errorf("%s: expected text or number, got %s", field, trimmed)
	}
}
