// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"math/big"

	"github.com/luxfi/amm/buffer"
	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/hooks"
	"github.com/luxfi/amm/pool"
)

// AddLiquidity quotes a deposit into s.
func (v *Vault) AddLiquidity(in *AddLiquidityInput, s pool.State, hookState any) (*AddResult, error) {
	base := s.PoolBase()
	v.log.Debug("add liquidity",
		"pool", base.PoolAddress,
		"poolType", base.PoolType,
		"kind", in.Kind,
	)
	res, err := v.addLiquidity(in, s, hookState)
	if err != nil {
		v.log.Debug("add liquidity failed",
			"pool", base.PoolAddress,
			"kind", pool.KindOf(err),
			"err", err,
		)
		return nil, err
	}
	v.log.Debug("add liquidity computed",
		"pool", base.PoolAddress,
		"bptAmountOut", res.BptAmountOut,
	)
	return res, nil
}

func (v *Vault) addLiquidity(in *AddLiquidityInput, s pool.State, hookState any) (*AddResult, error) {
	if _, ok := s.(*buffer.State); ok {
		return nil, buffer.ErrLiquidityNotAllowed
	}
	base := s.PoolBase()
	switch in.Kind {
	case pool.AddProportional:
	case pool.AddUnbalanced, pool.AddSingleTokenExactOut:
		if !base.SupportsUnbalancedLiquidity {
			return nil, ErrUnbalancedLiquidityNotSupported
		}
	default:
		return nil, ErrUnsupportedAddKind
	}

	base, curve, hook, err := v.resolve(s, hookState)
	if err != nil {
		return nil, err
	}
	n := len(base.Tokens)
	if err := checkAmounts(n, in.MaxAmountsInRaw); err != nil {
		return nil, err
	}
	if err := checkAmount(in.MinBptAmountOut); err != nil {
		return nil, err
	}
	flags := hook.Flags()

	// Amounts entering pool math round down.
	maxAmountsInScaled18 := pool.ToScaled18RoundDownAll(in.MaxAmountsInRaw, base.ScalingFactors, base.TokenRates)
	balances := fixedpoint.CopyAll(base.BalancesLiveScaled18)

	if flags.Has(hooks.ShouldCallBeforeAddLiquidity) {
		res, err := hook.OnBeforeAddLiquidity(&hooks.BeforeAddLiquidityParams{
			Kind:                 in.Kind,
			MaxAmountsInScaled18: fixedpoint.CopyAll(maxAmountsInScaled18),
			MinBptAmountOut:      fixedpoint.Copy(in.MinBptAmountOut),
			BalancesScaled18:     fixedpoint.CopyAll(balances),
		})
		if err != nil {
			return nil, err
		}
		if balances, err = replaceBalances(balances, res, ErrBeforeAddLiquidityHookFailed); err != nil {
			return nil, err
		}
	}

	var (
		amountsInScaled18 []*big.Int
		bptAmountOut      *big.Int
		swapFeeAmounts    []*big.Int
	)
	switch in.Kind {
	case pool.AddUnbalanced:
		amountsInScaled18 = fixedpoint.CopyAll(maxAmountsInScaled18)
		r, err := computeAddLiquidityUnbalanced(curve, balances, amountsInScaled18, base.TotalSupply, base.SwapFee)
		if err != nil {
			return nil, err
		}
		bptAmountOut, swapFeeAmounts = r.bptAmountOut, r.swapFeeAmounts
	case pool.AddSingleTokenExactOut:
		index, err := singleInputIndex(maxAmountsInScaled18)
		if err != nil {
			return nil, err
		}
		bptAmountOut = fixedpoint.Copy(in.MinBptAmountOut)
		r, err := computeAddLiquiditySingleTokenExactOut(curve, balances, index, bptAmountOut, base.TotalSupply, base.SwapFee)
		if err != nil {
			return nil, err
		}
		amountsInScaled18 = zeros(n)
		amountsInScaled18[index] = r.amount
		swapFeeAmounts = r.swapFeeAmounts
	case pool.AddProportional:
		bptAmountOut = fixedpoint.Copy(in.MinBptAmountOut)
		amountsInScaled18, err = computeProportionalAmountsIn(balances, base.TotalSupply, bptAmountOut)
		if err != nil {
			return nil, err
		}
		swapFeeAmounts = zeros(n)
	}
	if bptAmountOut.Cmp(in.MinBptAmountOut) < 0 {
		return nil, ErrBptAmountOutBelowMin
	}

	amountsInRaw := make([]*big.Int, n)
	for i := range amountsInRaw {
		// Entering the pool: round up.
		amountsInRaw[i], err = pool.ToRawRoundUp(amountsInScaled18[i], base.ScalingFactors[i], base.TokenRates[i])
		if err != nil {
			return nil, err
		}
		if amountsInRaw[i].Cmp(in.MaxAmountsInRaw[i]) > 0 {
			return nil, ErrAmountInAboveMax
		}
		agg := aggregateFee(swapFeeAmounts[i], base.AggregateSwapFee)
		balances[i].Add(balances[i], amountsInScaled18[i])
		balances[i].Sub(balances[i], agg)
	}

	if flags.Has(hooks.ShouldCallAfterAddLiquidity) {
		res, err := hook.OnAfterAddLiquidity(&hooks.AfterAddLiquidityParams{
			Kind:              in.Kind,
			AmountsInScaled18: fixedpoint.CopyAll(amountsInScaled18),
			AmountsInRaw:      fixedpoint.CopyAll(amountsInRaw),
			BptAmountOut:      fixedpoint.Copy(bptAmountOut),
			BalancesScaled18:  fixedpoint.CopyAll(balances),
		})
		if err != nil {
			return nil, err
		}
		if !res.Success || len(res.AmountsInRaw) != n {
			return nil, ErrAfterAddLiquidityHookFailed
		}
		if flags.Has(hooks.EnableHookAdjustedAmounts) {
			if err := checkAmounts(n, res.AmountsInRaw); err != nil {
				return nil, ErrAfterAddLiquidityHookFailed
			}
			amountsInRaw = fixedpoint.CopyAll(res.AmountsInRaw)
		}
	}

	return &AddResult{
		BptAmountOut:     bptAmountOut,
		AmountsInRaw:     amountsInRaw,
		BalancesScaled18: balances,
	}, nil
}

// RemoveLiquidity quotes a withdrawal from s.
func (v *Vault) RemoveLiquidity(in *RemoveLiquidityInput, s pool.State, hookState any) (*RemoveResult, error) {
	base := s.PoolBase()
	v.log.Debug("remove liquidity",
		"pool", base.PoolAddress,
		"poolType", base.PoolType,
		"kind", in.Kind,
	)
	res, err := v.removeLiquidity(in, s, hookState)
	if err != nil {
		v.log.Debug("remove liquidity failed",
			"pool", base.PoolAddress,
			"kind", pool.KindOf(err),
			"err", err,
		)
		return nil, err
	}
	v.log.Debug("remove liquidity computed",
		"pool", base.PoolAddress,
		"bptAmountIn", res.BptAmountIn,
	)
	return res, nil
}

func (v *Vault) removeLiquidity(in *RemoveLiquidityInput, s pool.State, hookState any) (*RemoveResult, error) {
	if _, ok := s.(*buffer.State); ok {
		return nil, buffer.ErrLiquidityNotAllowed
	}
	base := s.PoolBase()
	switch in.Kind {
	case pool.RemoveProportional:
	case pool.RemoveSingleTokenExactIn, pool.RemoveSingleTokenExactOut:
		if !base.SupportsUnbalancedLiquidity {
			return nil, ErrUnbalancedLiquidityNotSupported
		}
	default:
		return nil, ErrUnsupportedRemoveKind
	}

	base, curve, hook, err := v.resolve(s, hookState)
	if err != nil {
		return nil, err
	}
	n := len(base.Tokens)
	if err := checkAmounts(n, in.MinAmountsOutRaw); err != nil {
		return nil, err
	}
	if err := checkAmount(in.MaxBptAmountIn); err != nil {
		return nil, err
	}
	flags := hook.Flags()

	// Larger amounts out burn more BPT, so limits round up.
	minAmountsOutScaled18 := pool.ToScaled18RoundUpAll(in.MinAmountsOutRaw, base.ScalingFactors, base.TokenRates)
	balances := fixedpoint.CopyAll(base.BalancesLiveScaled18)

	if flags.Has(hooks.ShouldCallBeforeRemoveLiquidity) {
		res, err := hook.OnBeforeRemoveLiquidity(&hooks.BeforeRemoveLiquidityParams{
			Kind:                  in.Kind,
			MaxBptAmountIn:        fixedpoint.Copy(in.MaxBptAmountIn),
			MinAmountsOutScaled18: fixedpoint.CopyAll(minAmountsOutScaled18),
			BalancesScaled18:      fixedpoint.CopyAll(balances),
		})
		if err != nil {
			return nil, err
		}
		if balances, err = replaceBalances(balances, res, ErrBeforeRemoveLiquidityHookFailed); err != nil {
			return nil, err
		}
	}

	var (
		bptAmountIn        *big.Int
		amountsOutScaled18 []*big.Int
		swapFeeAmounts     []*big.Int
	)
	switch in.Kind {
	case pool.RemoveProportional:
		bptAmountIn = fixedpoint.Copy(in.MaxBptAmountIn)
		amountsOutScaled18, err = computeProportionalAmountsOut(balances, base.TotalSupply, bptAmountIn)
		if err != nil {
			return nil, err
		}
		swapFeeAmounts = zeros(n)
	case pool.RemoveSingleTokenExactIn:
		index, err := singleInputIndex(in.MinAmountsOutRaw)
		if err != nil {
			return nil, err
		}
		bptAmountIn = fixedpoint.Copy(in.MaxBptAmountIn)
		r, err := computeRemoveLiquiditySingleTokenExactIn(curve, balances, index, bptAmountIn, base.TotalSupply, base.SwapFee)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = zeros(n)
		amountsOutScaled18[index] = r.amount
		swapFeeAmounts = r.swapFeeAmounts
	case pool.RemoveSingleTokenExactOut:
		index, err := singleInputIndex(in.MinAmountsOutRaw)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = fixedpoint.CopyAll(minAmountsOutScaled18)
		r, err := computeRemoveLiquiditySingleTokenExactOut(curve, balances, index, amountsOutScaled18[index], base.TotalSupply, base.SwapFee)
		if err != nil {
			return nil, err
		}
		bptAmountIn, swapFeeAmounts = r.bptAmountIn, r.swapFeeAmounts
	}
	if bptAmountIn.Cmp(in.MaxBptAmountIn) > 0 {
		return nil, ErrBptAmountInAboveMax
	}
	if bptAmountIn.Cmp(base.TotalSupply) > 0 {
		return nil, ErrInvalidInput
	}

	amountsOutRaw := make([]*big.Int, n)
	for i := range amountsOutRaw {
		// Leaving the pool: round down, with the rate rounded up.
		rate := pool.ComputeRateRoundUp(base.TokenRates[i])
		amountsOutRaw[i], err = pool.ToRawRoundDown(amountsOutScaled18[i], base.ScalingFactors[i], rate)
		if err != nil {
			return nil, err
		}
		if amountsOutRaw[i].Cmp(in.MinAmountsOutRaw[i]) < 0 {
			return nil, ErrAmountOutBelowMin
		}
		agg := aggregateFee(swapFeeAmounts[i], base.AggregateSwapFee)
		balances[i].Sub(balances[i], fixedpoint.Add(amountsOutScaled18[i], agg))
		if balances[i].Sign() < 0 {
			return nil, ErrBalanceUnderflow
		}
	}

	if flags.Has(hooks.ShouldCallAfterRemoveLiquidity) {
		res, err := hook.OnAfterRemoveLiquidity(&hooks.AfterRemoveLiquidityParams{
			Kind:               in.Kind,
			BptAmountIn:        fixedpoint.Copy(bptAmountIn),
			AmountsOutScaled18: fixedpoint.CopyAll(amountsOutScaled18),
			AmountsOutRaw:      fixedpoint.CopyAll(amountsOutRaw),
			BalancesScaled18:   fixedpoint.CopyAll(balances),
		})
		if err != nil {
			return nil, err
		}
		if !res.Success || len(res.AmountsOutRaw) != n {
			return nil, ErrAfterRemoveLiquidityHookFailed
		}
		if flags.Has(hooks.EnableHookAdjustedAmounts) {
			if err := checkAmounts(n, res.AmountsOutRaw); err != nil {
				return nil, ErrAfterRemoveLiquidityHookFailed
			}
			amountsOutRaw = fixedpoint.CopyAll(res.AmountsOutRaw)
		}
	}

	return &RemoveResult{
		BptAmountIn:      bptAmountIn,
		AmountsOutRaw:    amountsOutRaw,
		BalancesScaled18: balances,
	}, nil
}
