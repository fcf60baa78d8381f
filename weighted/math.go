// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weighted

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

var (
	MinWeight         = big.NewInt(1e16)
	MaxInRatio        = big.NewInt(3e17)
	MaxOutRatio       = big.NewInt(3e17)
	MaxInvariantRatio = big.NewInt(3e18)
	MinInvariantRatio = big.NewInt(7e17)
)

var (
	ErrZeroInvariant  = pool.NewError(pool.KindPoolUnsafe, "ZeroInvariant")
	ErrMaxInRatio     = pool.NewError(pool.KindCallerError, "MaxInRatio")
	ErrMaxOutRatio    = pool.NewError(pool.KindCallerError, "MaxOutRatio")
	ErrInvalidWeights = pool.NewError(pool.KindCallerError, "invalid normalized weights")
)

// ComputeInvariantDown returns prod(balance_i ^ weight_i) rounded down.
func ComputeInvariantDown(weights, balances []*big.Int) (*big.Int, error) {
	inv := new(big.Int).Set(fixedpoint.WAD)
	for i, w := range weights {
		p, err := fixedpoint.PowDown(balances[i], w)
		if err != nil {
			return nil, err
		}
		inv = fixedpoint.MulDown(inv, p)
	}
	if inv.Sign() == 0 {
		return nil, ErrZeroInvariant
	}
	return inv, nil
}

// ComputeInvariantUp returns prod(balance_i ^ weight_i) rounded up.
func ComputeInvariantUp(weights, balances []*big.Int) (*big.Int, error) {
	inv := new(big.Int).Set(fixedpoint.WAD)
	for i, w := range weights {
		p, err := fixedpoint.PowUp(balances[i], w)
		if err != nil {
			return nil, err
		}
		inv = fixedpoint.MulUp(inv, p)
	}
	if inv.Sign() == 0 {
		return nil, ErrZeroInvariant
	}
	return inv, nil
}

// ComputeOutGivenExactIn returns
//
//	bOut * (1 - (bIn / (bIn + aIn)) ^ (wIn / wOut))
//
// The power is rounded up so the amount out rounds down.
func ComputeOutGivenExactIn(balanceIn, weightIn, balanceOut, weightOut, amountIn *big.Int) (*big.Int, error) {
	if amountIn.Cmp(fixedpoint.MulDown(balanceIn, MaxInRatio)) > 0 {
		return nil, ErrMaxInRatio
	}

	base, err := fixedpoint.DivUp(balanceIn, fixedpoint.Add(balanceIn, amountIn))
	if err != nil {
		return nil, err
	}
	exponent, err := fixedpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDown(balanceOut, fixedpoint.Complement(power)), nil
}

// ComputeInGivenExactOut returns
//
//	bIn * ((bOut / (bOut - aOut)) ^ (wOut / wIn) - 1)
//
// rounded up.
func ComputeInGivenExactOut(balanceIn, weightIn, balanceOut, weightOut, amountOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(fixedpoint.MulDown(balanceOut, MaxOutRatio)) > 0 {
		return nil, ErrMaxOutRatio
	}

	base, err := fixedpoint.DivUp(balanceOut, fixedpoint.Sub(balanceOut, amountOut))
	if err != nil {
		return nil, err
	}
	exponent, err := fixedpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return nil, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulUp(balanceIn, power.Sub(power, fixedpoint.WAD)), nil
}

// ComputeBalanceOutGivenInvariant returns balance * ratio^(1/weight),
// rounded up.
func ComputeBalanceOutGivenInvariant(balance, weight, invariantRatio *big.Int) (*big.Int, error) {
	exponent, err := fixedpoint.DivUp(fixedpoint.WAD, weight)
	if err != nil {
		return nil, err
	}
	ratio, err := fixedpoint.PowUp(invariantRatio, exponent)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulUp(balance, ratio), nil
}
