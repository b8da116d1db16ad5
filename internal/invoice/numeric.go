package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var numericPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// ParseNumericOrZero interprets form text as a number.
//
// Surrounding whitespace is ignored. A plain decimal literal with an optional
// sign and exponent ("7", " 7 ", "-1.5", ".5", "1e3") yields its value. Blank
// text, trailing garbage ("12abc"), hex, Infinity, NaN and values that overflow
// a float64 all yield zero.
func ParseNumericOrZero(text string) decimal.Decimal {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || !numericPattern.MatchString(trimmed) {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || f == 0 {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(canonicalLiteral(trimmed))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// canonicalLiteral drops a leading plus and completes a bare trailing point ("5." -> "5.0").
func canonicalLiteral(s string) string {
	s = strings.TrimPrefix(s, "+")
	mantissa, exponent := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exponent = s[:i], s[i:]
	}
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}
	return mantissa + exponent
}
