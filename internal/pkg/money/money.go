// Package money represents prices in integer minor units (cents) so that
// totals never accumulate floating point error.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Amount is a price in minor units.
type Amount int64

// ErrOverflow is returned when arithmetic leaves the int64 range.
var ErrOverflow = errors.New("amount out of range")

// FromMajor converts a major-unit value (e.g. 120.5) to an Amount, rounding
// half away from zero to two decimal places.
func FromMajor(v float64) (Amount, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %v", v)
	}
	cents := math.Round(v * 100)
	if cents >= math.MaxInt64 || cents < math.MinInt64 {
		return 0, fmt.Errorf("amount %v out of range", v)
	}
	return Amount(cents), nil
}

// Major returns the amount in major units.
func (a Amount) Major() float64 {
	return float64(a) / 100
}

// Times multiplies the amount by a non-negative whole quantity.
func (a Amount) Times(n int64) (Amount, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative quantity %d", n)
	}
	if n == 0 || a == 0 {
		return 0, nil
	}
	if (a > 0 && a > math.MaxInt64/Amount(n)) || (a < 0 && a < math.MinInt64/Amount(n)) {
		return 0, ErrOverflow
	}
	return a * Amount(n), nil
}

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits a JSON number with exactly two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number in major units.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	v, err := FromMajor(f)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
