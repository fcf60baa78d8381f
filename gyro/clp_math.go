// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

var ErrAssetBoundsExceeded = pool.NewError(pool.KindPoolUnsafe, "AssetBoundsExceeded")

type rounder struct {
	mul    func(a, b *big.Int) *big.Int
	mulOpp func(a, b *big.Int) *big.Int
	div    func(a, b *big.Int) (*big.Int, error)
}

func rounderFor(r pool.Rounding) rounder {
	if r == pool.RoundDown {
		return rounder{mul: fixedpoint.MulDown, mulOpp: fixedpoint.MulUp, div: fixedpoint.DivDown}
	}
	return rounder{mul: fixedpoint.MulUp, mulOpp: fixedpoint.MulDown, div: fixedpoint.DivUp}
}

// CalculateCLPInvariant returns L solving (x + L/sqrt(beta)) (y + L sqrt(alpha)) = L^2.
func CalculateCLPInvariant(balances []*big.Int, sqrtAlpha, sqrtBeta *big.Int, rounding pool.Rounding) (*big.Int, error) {
	a, mb, bSquare, mc, err := quadraticTerms(balances, sqrtAlpha, sqrtBeta, rounding)
	if err != nil {
		return nil, err
	}
	return solveQuadratic(a, mb, bSquare, mc)
}

// quadraticTerms returns a, -b, b^2 and -c of a L^2 + b L + c = 0, with
// b^2 expanded for precision.
func quadraticTerms(balances []*big.Int, sqrtAlpha, sqrtBeta *big.Int, rounding pool.Rounding) (a, mb, bSquare, mc *big.Int, err error) {
	r := rounderFor(rounding)
	x, y := balances[0], balances[1]

	ratio, err := r.div(sqrtAlpha, sqrtBeta)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	a = fixedpoint.Sub(fixedpoint.WAD, ratio)

	bterm0, err := r.div(y, sqrtBeta)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mb = fixedpoint.Add(bterm0, r.mul(x, sqrtAlpha))
	mc = r.mul(x, y)

	bSquare = r.mul(r.mul(r.mul(x, x), sqrtAlpha), sqrtAlpha)
	bSq2, err := r.div(mulInt(r.mul(r.mul(x, y), sqrtAlpha), 2), sqrtBeta)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	bSq3, err := r.div(r.mul(y, y), r.mulOpp(sqrtBeta, sqrtBeta))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	bSquare.Add(bSquare, bSq2)
	bSquare.Add(bSquare, bSq3)
	return a, mb, bSquare, mc, nil
}

// solveQuadratic returns (mb + sqrt(b^2 + 4 a mc)) / 2a, underestimating
// the root.
func solveQuadratic(a, mb, bSquare, mc *big.Int) (*big.Int, error) {
	denominator := fixedpoint.MulUp(a, fixedpoint.TwoWAD)
	addTerm := fixedpoint.MulDown(fixedpoint.MulDown(mc, fixedpoint.FourWAD), a)
	root, err := Sqrt(fixedpoint.Add(bSquare, addTerm), big.NewInt(5))
	if err != nil {
		return nil, err
	}
	return fixedpoint.DivDown(fixedpoint.Add(mb, root), denominator)
}

// CLPOutGivenIn returns the amount out for amountIn against offset
// balances. The input offset is nudged up and the output offset down.
func CLPOutGivenIn(balanceIn, balanceOut, amountIn, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	virtInOver := fixedpoint.Add(balanceIn, fixedpoint.MulUp(virtualIn, addInt(fixedpoint.WAD, 2)))
	virtOutUnder := fixedpoint.Add(balanceOut, fixedpoint.MulDown(virtualOut, addInt(fixedpoint.WAD, -1)))

	out, err := fixedpoint.DivDown(fixedpoint.MulDown(virtOutUnder, amountIn), fixedpoint.Add(virtInOver, amountIn))
	if err != nil {
		return nil, err
	}
	if out.Cmp(balanceOut) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	return out, nil
}

// CLPInGivenOut returns the amount in required for amountOut.
func CLPInGivenOut(balanceIn, balanceOut, amountOut, virtualIn, virtualOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balanceOut) > 0 {
		return nil, ErrAssetBoundsExceeded
	}
	virtInOver := fixedpoint.Add(balanceIn, fixedpoint.MulUp(virtualIn, addInt(fixedpoint.WAD, 2)))
	virtOutUnder := fixedpoint.Add(balanceOut, fixedpoint.MulDown(virtualOut, addInt(fixedpoint.WAD, -1)))

	return fixedpoint.DivUp(fixedpoint.MulUp(virtInOver, amountOut), fixedpoint.Sub(virtOutUnder, amountOut))
}

// VirtualParameter0 returns L / sqrt(beta).
func VirtualParameter0(invariant, sqrtBeta *big.Int, rounding pool.Rounding) (*big.Int, error) {
	if rounding == pool.RoundDown {
		return fixedpoint.DivDown(invariant, sqrtBeta)
	}
	return fixedpoint.DivUp(invariant, sqrtBeta)
}

// VirtualParameter1 returns L * sqrt(alpha).
func VirtualParameter1(invariant, sqrtAlpha *big.Int, rounding pool.Rounding) *big.Int {
	if rounding == pool.RoundDown {
		return fixedpoint.MulDown(invariant, sqrtAlpha)
	}
	return fixedpoint.MulUp(invariant, sqrtAlpha)
}
