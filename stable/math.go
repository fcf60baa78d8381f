// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stable

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// AmpPrecision is the fixed scale of the amplification parameter.
const AmpPrecision = 1000

const maxIterations = 255

var (
	MinInvariantRatio = big.NewInt(6e17)
	MaxInvariantRatio = big.NewInt(5e18)

	ampPrecision = big.NewInt(AmpPrecision)
)

var (
	ErrInvariantDidntConverge = pool.NewError(pool.KindPoolUnsafe, "StableInvariantDidntConverge")
	ErrBalanceDidntConverge   = pool.NewError(pool.KindPoolUnsafe, "StableGetBalanceDidntConverge")
	ErrInvalidAmp             = pool.NewError(pool.KindCallerError, "invalid amplification parameter")
)

// ComputeInvariant solves the StableSwap invariant D by Newton iteration.
// amp is already multiplied by AmpPrecision. The result rounds down.
func ComputeInvariant(amp *big.Int, balances []*big.Int) (*big.Int, error) {
	sum := new(big.Int)
	for _, b := range balances {
		sum.Add(sum, b)
	}
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}

	n := big.NewInt(int64(len(balances)))
	nPlusOne := big.NewInt(int64(len(balances) + 1))
	ampTotal := new(big.Int).Mul(amp, n)
	ampTotalMinusPrecision := new(big.Int).Sub(ampTotal, ampPrecision)

	inv := new(big.Int).Set(sum)
	for i := 0; i < maxIterations; i++ {
		dP := new(big.Int).Set(inv)
		for _, b := range balances {
			den := new(big.Int).Mul(b, n)
			if den.Sign() == 0 {
				return nil, fixedpoint.ErrZeroDivision
			}
			dP.Mul(dP, inv)
			dP.Quo(dP, den)
		}

		prev := inv

		num := new(big.Int).Mul(ampTotal, sum)
		num.Quo(num, ampPrecision)
		num.Add(num, new(big.Int).Mul(dP, n))
		num.Mul(num, prev)

		den := new(big.Int).Mul(ampTotalMinusPrecision, prev)
		den.Quo(den, ampPrecision)
		den.Add(den, new(big.Int).Mul(nPlusOne, dP))

		inv = num.Quo(num, den)
		if withinOne(inv, prev) {
			return inv, nil
		}
	}
	return nil, ErrInvariantDidntConverge
}

// ComputeBalance solves for balances[tokenIndex] given the invariant,
// rounding up.
func ComputeBalance(amp *big.Int, balances []*big.Int, invariant *big.Int, tokenIndex int) (*big.Int, error) {
	if invariant.Sign() == 0 {
		return nil, fixedpoint.ErrZeroDivision
	}
	n := big.NewInt(int64(len(balances)))
	ampTotal := new(big.Int).Mul(amp, n)

	sum := new(big.Int).Set(balances[0])
	pD := new(big.Int).Mul(balances[0], n)
	for _, b := range balances[1:] {
		pD.Mul(pD, b)
		pD.Mul(pD, n)
		pD.Quo(pD, invariant)
		sum.Add(sum, b)
	}
	sum.Sub(sum, balances[tokenIndex])

	inv2 := new(big.Int).Mul(invariant, invariant)
	c, err := fixedpoint.DivUpRaw(
		new(big.Int).Mul(inv2, ampPrecision),
		new(big.Int).Mul(ampTotal, pD),
	)
	if err != nil {
		return nil, err
	}
	c.Mul(c, balances[tokenIndex])

	b := new(big.Int).Mul(invariant, ampPrecision)
	b.Quo(b, ampTotal)
	b.Add(b, sum)

	y, err := fixedpoint.DivUpRaw(fixedpoint.Add(inv2, c), fixedpoint.Add(invariant, b))
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxIterations; i++ {
		prev := y

		num := new(big.Int).Mul(y, y)
		num.Add(num, c)
		den := new(big.Int).Lsh(y, 1)
		den.Add(den, b)
		den.Sub(den, invariant)

		y, err = fixedpoint.DivUpRaw(num, den)
		if err != nil {
			return nil, err
		}
		if withinOne(y, prev) {
			return y, nil
		}
	}
	return nil, ErrBalanceDidntConverge
}

// ComputeOutGivenExactIn returns the amount out for amountIn, one unit
// below the exact solution.
func ComputeOutGivenExactIn(amp *big.Int, balances []*big.Int, indexIn, indexOut int, amountIn, invariant *big.Int) (*big.Int, error) {
	nb := fixedpoint.CopyAll(balances)
	nb[indexIn].Add(nb[indexIn], amountIn)

	finalOut, err := ComputeBalance(amp, nb, invariant, indexOut)
	if err != nil {
		return nil, err
	}
	out := fixedpoint.Sub(nb[indexOut], finalOut)
	return out.Sub(out, big.NewInt(1)), nil
}

// ComputeInGivenExactOut returns the amount in for amountOut, one unit
// above the exact solution.
func ComputeInGivenExactOut(amp *big.Int, balances []*big.Int, indexIn, indexOut int, amountOut, invariant *big.Int) (*big.Int, error) {
	nb := fixedpoint.CopyAll(balances)
	nb[indexOut].Sub(nb[indexOut], amountOut)

	finalIn, err := ComputeBalance(amp, nb, invariant, indexIn)
	if err != nil {
		return nil, err
	}
	in := fixedpoint.Sub(finalIn, nb[indexIn])
	return in.Add(in, big.NewInt(1)), nil
}

func withinOne(a, b *big.Int) bool {
	d := new(big.Int).Sub(a, b)
	return d.CmpAbs(big.NewInt(1)) <= 0
}
