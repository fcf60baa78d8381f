// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Format renders an integer amount with the given number of decimals,
// e.g. Format(1.5e18, 18) == "1.5".
func Format(x *big.Int, decimals int32) string {
	if x == nil {
		return "<nil>"
	}
	return decimal.NewFromBigInt(x, -decimals).String()
}

// FormatWAD renders an 18-decimal fixed point value.
func FormatWAD(x *big.Int) string {
	return Format(x, 18)
}

// ParseDecimal parses a human decimal string into an integer amount with
// the given number of decimals. Inputs with more fractional digits than
// decimals are rejected rather than truncated.
func ParseDecimal(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimals", s, decimals)
	}
	return shifted.BigInt(), nil
}
