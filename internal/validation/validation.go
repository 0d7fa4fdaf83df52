// Package validation contains functions for validating and coercing input data.
package validation

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length for registration.
const MinPasswordLength = 6

// ErrNotNumeric is returned when a price value cannot be parsed as a number.
var ErrNotNumeric = errors.New("value is not numeric")

// ParsePrice coerces a decoded JSON value into a non-negative price rounded
// to two decimals. Numeric strings are accepted; anything else is rejected.
func ParsePrice(v any) (float64, error) {
	f, ok := asFloat(v)
	if !ok {
		return 0, ErrNotNumeric
	}
	if f < 0 {
		return 0, errors.New("price must not be negative")
	}
	return Round2(f), nil
}

// ParseAmount coerces a decoded JSON value into an amount rounded to two
// decimals. Missing or malformed values default to 0, never an error.
func ParseAmount(v any) float64 {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	return Round2(f)
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// IsOrderNumber reports whether s matches the synthesized order number
// format: "DD" followed by exactly 8 digits.
func IsOrderNumber(s string) bool {
	if len(s) != 10 || !strings.HasPrefix(s, "DD") {
		return false
	}
	for _, ch := range s[2:] {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

// ValidCredentials reports whether a username/password pair is acceptable
// for registration.
func ValidCredentials(username, password string) bool {
	return strings.TrimSpace(username) != "" && len(password) >= MinPasswordLength
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
