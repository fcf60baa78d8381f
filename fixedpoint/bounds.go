// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MaxUint256 is 2^256 - 1.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(one, 256), one)

// CheckUint256 reports whether x is representable as an on-chain uint256
// word. Amounts that cannot be are rejected before any math runs.
func CheckUint256(x *big.Int) error {
	if x == nil {
		return fmt.Errorf("%w: nil value", ErrMathOverflow)
	}
	if x.Sign() < 0 {
		return fmt.Errorf("%w: negative value %s", ErrMathOverflow, x)
	}
	if _, overflow := uint256.FromBig(x); overflow {
		return fmt.Errorf("%w: %s exceeds uint256", ErrMathOverflow, x)
	}
	return nil
}

// CheckAllUint256 applies CheckUint256 to every element of xs.
func CheckAllUint256(xs []*big.Int) error {
	for i, x := range xs {
		if err := CheckUint256(x); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}
