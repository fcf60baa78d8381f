// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import "math/big"

// Sqrt returns floor(sqrt(a)) for a >= 0, following the OpenZeppelin
// Math.sqrt estimate-and-refine scheme so results match on-chain values.
func Sqrt(a *big.Int) *big.Int {
	if a.Cmp(one) <= 0 {
		return new(big.Int).Set(a)
	}

	aa := new(big.Int).Set(a)
	xn := big.NewInt(1)
	for _, shift := range []uint{128, 64, 32, 16, 8, 4} {
		if aa.Cmp(new(big.Int).Lsh(one, shift)) >= 0 {
			aa.Rsh(aa, shift)
			xn.Lsh(xn, shift/2)
		}
	}
	if aa.Cmp(big.NewInt(4)) >= 0 {
		xn.Lsh(xn, 1)
	}

	xn.Mul(xn, big.NewInt(3))
	xn.Rsh(xn, 1)

	for i := 0; i < 5; i++ {
		q := new(big.Int).Quo(a, xn)
		xn.Add(xn, q)
		xn.Rsh(xn, 1)
	}

	if xn.Cmp(new(big.Int).Quo(a, xn)) > 0 {
		return xn.Sub(xn, one)
	}
	return xn
}
