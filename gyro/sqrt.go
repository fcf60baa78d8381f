// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

var ErrSqrtFailed = pool.NewError(pool.KindPoolUnsafe, "_sqrt FAILED")

// Initial guesses for inputs below 1.0, indexed by decade.
var sqrtGuesses = []struct {
	limit int64
	guess *big.Int
}{
	{10, big.NewInt(3162277660)},
	{100, big.NewInt(1e10)},
	{1000, big.NewInt(31622776601)},
	{10000, big.NewInt(1e11)},
	{100000, big.NewInt(316227766016)},
	{1000000, big.NewInt(1e12)},
	{10000000, big.NewInt(3162277660168)},
	{100000000, big.NewInt(1e13)},
	{1000000000, big.NewInt(31622776601683)},
	{10000000000, big.NewInt(1e14)},
	{100000000000, big.NewInt(316227766016837)},
	{1000000000000, big.NewInt(1e15)},
	{10000000000000, big.NewInt(3162277660168379)},
	{100000000000000, big.NewInt(1e16)},
	{1000000000000000, big.NewInt(31622776601683793)},
	{10000000000000000, big.NewInt(1e17)},
	{100000000000000000, big.NewInt(316227766016837933)},
}

// Sqrt returns the 18-decimal square root of x by Newton iteration and
// verifies that the squared result is within tolerance of x.
func Sqrt(x, tolerance *big.Int) (*big.Int, error) {
	if x.Sign() == 0 {
		return new(big.Int), nil
	}
	if x.Sign() < 0 {
		return nil, ErrSqrtFailed
	}

	guess := initialGuess(x)
	xWad := new(big.Int).Mul(x, fixedpoint.WAD)
	for i := 0; i < 7; i++ {
		q := new(big.Int).Quo(xWad, guess)
		guess.Add(guess, q)
		guess.Rsh(guess, 1)
	}

	sq := fixedpoint.MulDown(guess, guess)
	tol := fixedpoint.MulUp(guess, tolerance)
	if sq.Cmp(fixedpoint.Add(x, tol)) > 0 || sq.Cmp(fixedpoint.Sub(x, tol)) < 0 {
		return nil, ErrSqrtFailed
	}
	return guess, nil
}

func initialGuess(x *big.Int) *big.Int {
	if x.Cmp(fixedpoint.WAD) >= 0 {
		n := intLog2Halved(new(big.Int).Quo(x, fixedpoint.WAD))
		g := new(big.Int).Lsh(big.NewInt(1), n)
		return g.Mul(g, fixedpoint.WAD)
	}
	for _, g := range sqrtGuesses {
		if x.Cmp(big.NewInt(g.limit)) <= 0 {
			return new(big.Int).Set(g.guess)
		}
	}
	return new(big.Int).Set(x)
}

func intLog2Halved(x *big.Int) uint {
	x = new(big.Int).Set(x)
	var n uint
	for _, shift := range []uint{128, 64, 32, 16, 8, 4, 2} {
		if x.Cmp(new(big.Int).Lsh(big.NewInt(1), shift)) >= 0 {
			x.Rsh(x, shift)
			n += shift / 2
		}
	}
	return n
}
