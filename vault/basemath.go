// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// Liquidity math shared by every pool curve. Balances and amounts are
// live scaled18 values; BPT amounts are 18-decimal raw values.

type addUnbalancedResult struct {
	bptAmountOut   *big.Int
	swapFeeAmounts []*big.Int
}

// computeAddLiquidityUnbalanced mints BPT for exact amounts in. Only the
// part of each deposit above its proportional share is charged the swap
// fee.
//
//	bptOut = supply * (invariantWithFees - currentInvariant) / currentInvariant
func computeAddLiquidityUnbalanced(
	curve pool.Invariant,
	balances []*big.Int,
	exactAmounts []*big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
) (*addUnbalancedResult, error) {
	n := len(balances)
	newBalances := make([]*big.Int, n)
	swapFeeAmounts := zeros(n)
	for i := range balances {
		// Minus one guards the invariant against rounding in the curve.
		newBalances[i] = new(big.Int).Add(balances[i], exactAmounts[i])
		newBalances[i].Sub(newBalances[i], big.NewInt(1))
	}

	currentInvariant, err := curve.ComputeInvariant(balances, pool.RoundUp)
	if err != nil {
		return nil, err
	}
	newInvariant, err := curve.ComputeInvariant(newBalances, pool.RoundDown)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.DivDown(newInvariant, currentInvariant)
	if err != nil {
		return nil, err
	}
	if err := ensureInvariantRatioBelowMax(curve, invariantRatio); err != nil {
		return nil, err
	}

	for i := range balances {
		proportional := fixedpoint.MulDown(invariantRatio, balances[i])
		if newBalances[i].Cmp(proportional) > 0 {
			fee := fixedpoint.MulUp(fixedpoint.Sub(newBalances[i], proportional), swapFeePercentage)
			swapFeeAmounts[i] = fee
			newBalances[i].Sub(newBalances[i], fee)
		}
	}

	invariantWithFees, err := curve.ComputeInvariant(newBalances, pool.RoundDown)
	if err != nil {
		return nil, err
	}
	growth := fixedpoint.Sub(invariantWithFees, currentInvariant)
	if growth.Sign() < 0 {
		growth.SetInt64(0)
	}
	bptOut, err := fixedpoint.MulDivDown(totalSupply, growth, currentInvariant)
	if err != nil {
		return nil, err
	}
	return &addUnbalancedResult{bptAmountOut: bptOut, swapFeeAmounts: swapFeeAmounts}, nil
}

type singleTokenResult struct {
	// amount is the amount in with fee for adds and the amount out net of
	// fee for removes.
	amount         *big.Int
	swapFeeAmounts []*big.Int
}

// computeAddLiquiditySingleTokenExactOut solves the single token deposit
// that mints exactBptAmountOut. The fee grosses up the taxable part so
// that amount / (1 - fee) is charged.
func computeAddLiquiditySingleTokenExactOut(
	curve pool.Invariant,
	balances []*big.Int,
	tokenInIndex int,
	exactBptAmountOut *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
) (*singleTokenResult, error) {
	newSupply := fixedpoint.Add(exactBptAmountOut, totalSupply)
	invariantRatio, err := fixedpoint.DivUp(newSupply, totalSupply)
	if err != nil {
		return nil, err
	}
	if err := ensureInvariantRatioBelowMax(curve, invariantRatio); err != nil {
		return nil, err
	}

	newBalance, err := curve.ComputeBalance(balances, tokenInIndex, invariantRatio)
	if err != nil {
		return nil, err
	}
	amountIn := fixedpoint.Sub(newBalance, balances[tokenInIndex])

	nonTaxable, err := fixedpoint.DivDown(fixedpoint.MulDown(newSupply, balances[tokenInIndex]), totalSupply)
	if err != nil {
		return nil, err
	}
	taxable := fixedpoint.Sub(newBalance, nonTaxable)
	grossed, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFeePercentage))
	if err != nil {
		return nil, err
	}
	fee := grossed.Sub(grossed, taxable)

	swapFeeAmounts := zeros(len(balances))
	swapFeeAmounts[tokenInIndex] = fee
	return &singleTokenResult{amount: amountIn.Add(amountIn, fee), swapFeeAmounts: swapFeeAmounts}, nil
}

// computeProportionalAmountsOut returns floor(balance * bptIn / supply)
// for every token.
func computeProportionalAmountsOut(balances []*big.Int, totalSupply, bptAmountIn *big.Int) ([]*big.Int, error) {
	out := make([]*big.Int, len(balances))
	for i, b := range balances {
		v, err := fixedpoint.MulDivDown(b, bptAmountIn, totalSupply)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// computeProportionalAmountsIn returns ceil(balance * bptOut / supply) for
// every token.
func computeProportionalAmountsIn(balances []*big.Int, totalSupply, bptAmountOut *big.Int) ([]*big.Int, error) {
	in := make([]*big.Int, len(balances))
	for i, b := range balances {
		v, err := fixedpoint.MulDivUp(b, bptAmountOut, totalSupply)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}
	return in, nil
}

// computeRemoveLiquiditySingleTokenExactIn returns the amount of one
// token paid out for burning exactBptAmountIn, net of the fee on the part
// above the proportional withdrawal.
func computeRemoveLiquiditySingleTokenExactIn(
	curve pool.Invariant,
	balances []*big.Int,
	tokenOutIndex int,
	exactBptAmountIn *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
) (*singleTokenResult, error) {
	newSupply := fixedpoint.Sub(totalSupply, exactBptAmountIn)
	invariantRatio, err := fixedpoint.DivUp(newSupply, totalSupply)
	if err != nil {
		return nil, err
	}
	if err := ensureInvariantRatioAboveMin(curve, invariantRatio); err != nil {
		return nil, err
	}

	newBalance, err := curve.ComputeBalance(balances, tokenOutIndex, invariantRatio)
	if err != nil {
		return nil, err
	}
	amountOut := fixedpoint.Sub(balances[tokenOutIndex], newBalance)

	newBalanceBeforeTax, err := fixedpoint.MulDivUp(newSupply, balances[tokenOutIndex], totalSupply)
	if err != nil {
		return nil, err
	}
	taxable := fixedpoint.Sub(newBalanceBeforeTax, newBalance)
	fee := fixedpoint.MulUp(taxable, swapFeePercentage)

	swapFeeAmounts := zeros(len(balances))
	swapFeeAmounts[tokenOutIndex] = fee
	return &singleTokenResult{amount: amountOut.Sub(amountOut, fee), swapFeeAmounts: swapFeeAmounts}, nil
}

type removeExactOutResult struct {
	bptAmountIn    *big.Int
	swapFeeAmounts []*big.Int
}

// computeRemoveLiquiditySingleTokenExactOut returns the BPT burned to
// withdraw exactAmountOut of one token.
func computeRemoveLiquiditySingleTokenExactOut(
	curve pool.Invariant,
	balances []*big.Int,
	tokenOutIndex int,
	exactAmountOut *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
) (*removeExactOutResult, error) {
	n := len(balances)
	newBalances := make([]*big.Int, n)
	for i := range balances {
		newBalances[i] = new(big.Int).Sub(balances[i], big.NewInt(1))
	}
	newBalances[tokenOutIndex].Sub(newBalances[tokenOutIndex], exactAmountOut)

	currentInvariant, err := curve.ComputeInvariant(balances, pool.RoundUp)
	if err != nil {
		return nil, err
	}
	newInvariant, err := curve.ComputeInvariant(newBalances, pool.RoundUp)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.DivUp(newInvariant, currentInvariant)
	if err != nil {
		return nil, err
	}
	if err := ensureInvariantRatioAboveMin(curve, invariantRatio); err != nil {
		return nil, err
	}

	taxable := fixedpoint.Sub(fixedpoint.MulUp(invariantRatio, balances[tokenOutIndex]), newBalances[tokenOutIndex])
	grossed, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFeePercentage))
	if err != nil {
		return nil, err
	}
	fee := grossed.Sub(grossed, taxable)
	newBalances[tokenOutIndex].Sub(newBalances[tokenOutIndex], fee)

	invariantWithFees, err := curve.ComputeInvariant(newBalances, pool.RoundDown)
	if err != nil {
		return nil, err
	}
	bptIn, err := fixedpoint.MulDivUp(totalSupply, fixedpoint.Sub(currentInvariant, invariantWithFees), currentInvariant)
	if err != nil {
		return nil, err
	}

	swapFeeAmounts := zeros(n)
	swapFeeAmounts[tokenOutIndex] = fee
	return &removeExactOutResult{bptAmountIn: bptIn, swapFeeAmounts: swapFeeAmounts}, nil
}

func ensureInvariantRatioBelowMax(curve pool.Invariant, ratio *big.Int) error {
	if ratio.Cmp(curve.MaximumInvariantRatio()) > 0 {
		return ErrInvariantRatioAboveMax
	}
	return nil
}

func ensureInvariantRatioAboveMin(curve pool.Invariant, ratio *big.Int) error {
	if ratio.Cmp(curve.MinimumInvariantRatio()) < 0 {
		return ErrInvariantRatioBelowMin
	}
	return nil
}

func zeros(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
	}
	return out
}
