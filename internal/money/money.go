/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates input that is not a valid monetary amount:
// non-numeric, or carrying more than two fractional digits.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is an exact fixed-point monetary value with at most two fractional
// digits. The zero value is 0.00. Money is never constructed from a float;
// all values enter through Parse (or FromMinorUnits) so precision is checked
// once at the boundary and never silently rounded.
type Money struct {
	dec decimal.Decimal
}

// Zero returns 0.00.
func Zero() Money {
	return Money{}
}

// Parse converts a decimal string into Money. It rejects non-numeric input
// and any value with more than two fractional digits. Sign is preserved;
// positivity requirements are enforced by the operations that need them.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	return Money{dec: d}, nil
}

// MustParse is Parse for compile-time constants; it panics on bad input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMinorUnits builds Money from an integer count of cents.
func FromMinorUnits(cents int64) Money {
	return Money{dec: decimal.New(cents, -2)}
}

func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

// Cmp returns -1, 0 or 1 comparing m to o.
func (m Money) Cmp(o Money) int {
	return m.dec.Cmp(o.dec)
}

func (m Money) Equal(o Money) bool {
	return m.dec.Equal(o.dec)
}

func (m Money) IsPositive() bool {
	return m.dec.IsPositive()
}

func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

// HasAtMostTwoFractionalDigits reports whether the value is representable
// with two decimal places. Values parsed through Parse always satisfy this;
// the check exists so operations can guard values assembled by arithmetic.
func (m Money) HasAtMostTwoFractionalDigits() bool {
	return m.dec.Exponent() >= -2
}

// String renders the exact value with two decimal places, e.g. "1234.50".
// This is the canonical persisted form, not a display format.
func (m Money) String() string {
	return m.dec.StringFixed(2)
}

// Decimal exposes the underlying decimal for display-boundary code.
func (m Money) Decimal() decimal.Decimal {
	return m.dec
}

// MarshalJSON serializes as an exact decimal string, never a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: monetary value must be a decimal string, got %s", ErrInvalidAmount, data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
