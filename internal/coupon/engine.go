package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrRejected is returned when a code is not recognised by the resolver.
	ErrRejected = errors.New("coupon rejected")
	// ErrUnavailable indicates the resolver could not be reached, so no verdict was made.
	ErrUnavailable = errors.New("coupon resolver unavailable")
	// ErrInvalidAmount is returned when a resolver yields a negative discount.
	ErrInvalidAmount = errors.New("coupon amount must not be negative")
)

// DefaultCode is the single code accepted by the built-in table.
const DefaultCode = "DISCOUNT100"

// Resolver maps a coupon code to a flat discount amount in the invoice currency.
type Resolver interface {
	Resolve(ctx context.Context, code string) (decimal.Decimal, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, code string) (decimal.Decimal, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, code string) (decimal.Decimal, error) {
	return f(ctx, code)
}

// State is the coupon currently applied to a draft.
type State struct {
	Code     string          `json:"code,omitempty"`
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
}

// Reset returns the state with no coupon applied.
func (s State) Reset() State {
	return State{Discount: decimal.Zero}
}

// Apply resolves code and returns the resulting state. On any failure the
// previous state is returned untouched alongside the error.
func Apply(ctx context.Context, r Resolver, prev State, code string) (State, error) {
	if r == nil {
		return prev, fmt.Errorf("%w: no resolver configured", ErrUnavailable)
	}
	amount, err := r.Resolve(ctx, code)
	if err != nil {
		return prev, err
	}
	if amount.IsNegative() {
		return prev, fmt.Errorf("%w: %q resolved to %s", ErrInvalidAmount, code, amount)
	}
	return State{Code: code, Discount: amount}, nil
}

// StaticResolver looks codes up in a fixed in-memory table.
type StaticResolver struct {
	table map[string]decimal.Decimal
}

// NewStaticResolver copies table into a resolver.
func NewStaticResolver(table map[string]decimal.Decimal) StaticResolver {
	copied := make(map[string]decimal.Decimal, len(table))
	for code, amount := range table {
		copied[code] = amount
	}
	return StaticResolver{table: copied}
}

// DefaultTable returns the built-in coupon table.
func DefaultTable() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{DefaultCode: decimal.NewFromInt(100)}
}

// Resolve performs an exact, case-sensitive lookup.
func (r StaticResolver) Resolve(_ context.Context, code string) (decimal.Decimal, error) {
	amount, ok := r.table[code]
	if !ok {
		return decimal.Zero, rejected(code)
	}
	return amount, nil
}

// ParseTable parses CODE=AMOUNT entries.
func ParseTable(entries []string) (map[string]decimal.Decimal, error) {
	table := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		code, raw, ok := strings.Cut(trimmed, "=")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, fmt.Errorf("coupon table entry %q: expected CODE=AMOUNT", entry)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("coupon table entry %q: %w", entry, err)
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("coupon table entry %q: amount must not be negative", entry)
		}
		table[code] = amount
	}
	return table, nil
}

func rejected(code string) error {
	return fmt.Errorf("%w: %q", ErrRejected, code)
}
