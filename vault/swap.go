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

// Swap quotes in against s. A *buffer.State is routed to the ERC-4626
// wrap/unwrap math. hookState is handed to the resolver when s names a
// hook.
func (v *Vault) Swap(in *SwapInput, s pool.State, hookState any) (*SwapResult, error) {
	base := s.PoolBase()
	v.log.Debug("swap",
		"pool", base.PoolAddress,
		"poolType", base.PoolType,
		"kind", in.Kind,
		"amountRaw", in.AmountRaw,
	)
	res, err := v.swap(in, s, hookState)
	if err != nil {
		v.log.Debug("swap failed",
			"pool", base.PoolAddress,
			"kind", pool.KindOf(err),
			"err", err,
		)
		return nil, err
	}
	v.log.Debug("swap computed",
		"pool", base.PoolAddress,
		"amountCalculatedRaw", res.AmountCalculatedRaw,
		"swapFee", res.SwapFeeAmountScaled18,
	)
	return res, nil
}

func (v *Vault) swap(in *SwapInput, s pool.State, hookState any) (*SwapResult, error) {
	if err := checkAmount(in.AmountRaw); err != nil {
		return nil, err
	}
	if in.AmountRaw.Sign() == 0 {
		return &SwapResult{
			AmountCalculatedRaw:      new(big.Int),
			AmountCalculatedScaled18: new(big.Int),
			SwapFeeAmountScaled18:    new(big.Int),
			AggregateFeeScaled18:     new(big.Int),
			BalancesScaled18:         fixedpoint.CopyAll(s.PoolBase().BalancesLiveScaled18),
		}, nil
	}
	if b, ok := s.(*buffer.State); ok {
		return swapBuffer(in, b)
	}

	base, curve, hook, err := v.resolve(s, hookState)
	if err != nil {
		return nil, err
	}
	flags := hook.Flags()

	indexIn := pool.IndexOf(base.Tokens, in.TokenIn)
	if indexIn < 0 {
		return nil, ErrInputTokenNotFound
	}
	indexOut := pool.IndexOf(base.Tokens, in.TokenOut)
	if indexOut < 0 {
		return nil, ErrOutputTokenNotFound
	}
	if indexIn == indexOut {
		return nil, pool.ErrSameToken
	}

	// Exact in enters the pool math, so a smaller apparent amount favors
	// the pool. Exact out is rounded up for the same reason.
	var amountGivenScaled18 *big.Int
	if in.Kind == pool.GivenIn {
		amountGivenScaled18 = pool.ToScaled18RoundDown(in.AmountRaw, base.ScalingFactors[indexIn], base.TokenRates[indexIn])
	} else {
		amountGivenScaled18 = pool.ToScaled18RoundUp(in.AmountRaw, base.ScalingFactors[indexOut], base.TokenRates[indexOut])
	}

	balances := fixedpoint.CopyAll(base.BalancesLiveScaled18)

	if flags.Has(hooks.ShouldCallBeforeSwap) {
		res, err := hook.OnBeforeSwap(&hooks.BeforeSwapParams{
			Kind:                 in.Kind,
			TokenIn:              in.TokenIn,
			TokenOut:             in.TokenOut,
			AmountGivenRaw:       fixedpoint.Copy(in.AmountRaw),
			BalancesLiveScaled18: fixedpoint.CopyAll(balances),
		})
		if err != nil {
			return nil, err
		}
		if balances, err = replaceBalances(balances, res, ErrBeforeSwapHookFailed); err != nil {
			return nil, err
		}
	}

	params := &pool.SwapParams{
		Kind:                 in.Kind,
		AmountGivenScaled18:  amountGivenScaled18,
		BalancesLiveScaled18: balances,
		IndexIn:              indexIn,
		IndexOut:             indexOut,
	}

	swapFee := fixedpoint.Copy(base.SwapFee)
	if flags.Has(hooks.ShouldCallComputeDynamicSwapFee) {
		res, err := hook.OnComputeDynamicSwapFee(&hooks.DynamicFeeParams{
			Swap: &pool.SwapParams{
				Kind:                 in.Kind,
				AmountGivenScaled18:  fixedpoint.Copy(amountGivenScaled18),
				BalancesLiveScaled18: fixedpoint.CopyAll(balances),
				IndexIn:              indexIn,
				IndexOut:             indexOut,
			},
			Pool:                    base.PoolAddress,
			TokenIn:                 in.TokenIn,
			TokenOut:                in.TokenOut,
			StaticSwapFeePercentage: fixedpoint.Copy(base.SwapFee),
		})
		if err != nil {
			return nil, err
		}
		if res.Success && res.SwapFeePercentage != nil {
			swapFee = fixedpoint.Copy(res.SwapFeePercentage)
		}
	}

	if err := ensureValidTradeAmount(amountGivenScaled18); err != nil {
		return nil, err
	}
	amountCalculatedScaled18, err := curve.OnSwap(params)
	if err != nil {
		return nil, err
	}
	if err := ensureValidTradeAmount(amountCalculatedScaled18); err != nil {
		return nil, err
	}

	// The fee is a percentage of the calculated amount, rounded up. Exact
	// in pays it out of the amount out. Exact out grosses up the amount in
	// so that amountIn * (1 - fee) covers the curve.
	var (
		swapFeeAmountScaled18 *big.Int
		amountCalculatedRaw   *big.Int
	)
	if in.Kind == pool.GivenIn {
		swapFeeAmountScaled18 = fixedpoint.MulUp(amountCalculatedScaled18, swapFee)
		amountCalculatedScaled18 = fixedpoint.Sub(amountCalculatedScaled18, swapFeeAmountScaled18)
		if amountCalculatedScaled18.Sign() < 0 {
			return nil, ErrBalanceUnderflow
		}
		// Leaving the vault: round down, with the rate rounded up.
		rate := pool.ComputeRateRoundUp(base.TokenRates[indexOut])
		amountCalculatedRaw, err = pool.ToRawRoundDown(amountCalculatedScaled18, base.ScalingFactors[indexOut], rate)
	} else {
		swapFeeAmountScaled18, err = fixedpoint.MulDivUp(amountCalculatedScaled18, swapFee, fixedpoint.Complement(swapFee))
		if err != nil {
			return nil, err
		}
		amountCalculatedScaled18 = fixedpoint.Add(amountCalculatedScaled18, swapFeeAmountScaled18)
		// Entering the vault: round up.
		amountCalculatedRaw, err = pool.ToRawRoundUp(amountCalculatedScaled18, base.ScalingFactors[indexIn], base.TokenRates[indexIn])
	}
	if err != nil {
		return nil, err
	}

	aggregateFeeScaled18 := aggregateFee(swapFeeAmountScaled18, base.AggregateSwapFee)

	var amountInScaled18, amountOutScaled18 *big.Int
	if in.Kind == pool.GivenIn {
		amountInScaled18, amountOutScaled18 = amountGivenScaled18, amountCalculatedScaled18
		balances[indexIn].Add(balances[indexIn], amountGivenScaled18)
		balances[indexOut].Sub(balances[indexOut], fixedpoint.Add(amountCalculatedScaled18, aggregateFeeScaled18))
	} else {
		amountInScaled18, amountOutScaled18 = amountCalculatedScaled18, amountGivenScaled18
		balances[indexIn].Add(balances[indexIn], fixedpoint.Sub(amountCalculatedScaled18, aggregateFeeScaled18))
		balances[indexOut].Sub(balances[indexOut], amountGivenScaled18)
	}
	if balances[indexOut].Sign() < 0 {
		return nil, ErrBalanceUnderflow
	}

	if flags.Has(hooks.ShouldCallAfterSwap) {
		res, err := hook.OnAfterSwap(&hooks.AfterSwapParams{
			Kind:                     in.Kind,
			TokenIn:                  in.TokenIn,
			TokenOut:                 in.TokenOut,
			AmountInScaled18:         fixedpoint.Copy(amountInScaled18),
			AmountOutScaled18:        fixedpoint.Copy(amountOutScaled18),
			TokenInBalanceScaled18:   fixedpoint.Copy(balances[indexIn]),
			TokenOutBalanceScaled18:  fixedpoint.Copy(balances[indexOut]),
			AmountCalculatedScaled18: fixedpoint.Copy(amountCalculatedScaled18),
			AmountCalculatedRaw:      fixedpoint.Copy(amountCalculatedRaw),
		})
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return nil, ErrAfterSwapHookFailed
		}
		if flags.Has(hooks.EnableHookAdjustedAmounts) {
			if res.AmountCalculatedRaw == nil || res.AmountCalculatedRaw.Sign() < 0 {
				return nil, ErrAfterSwapHookFailed
			}
			amountCalculatedRaw = fixedpoint.Copy(res.AmountCalculatedRaw)
		}
	}

	return &SwapResult{
		AmountCalculatedRaw:      amountCalculatedRaw,
		AmountCalculatedScaled18: amountCalculatedScaled18,
		SwapFeeAmountScaled18:    swapFeeAmountScaled18,
		AggregateFeeScaled18:     aggregateFeeScaled18,
		BalancesScaled18:         balances,
	}, nil
}

// swapBuffer has no fee, hook or balance bookkeeping.
func swapBuffer(in *SwapInput, b *buffer.State) (*SwapResult, error) {
	amount, err := buffer.WrapOrUnwrap(b, in.TokenIn, in.Kind, in.AmountRaw)
	if err != nil {
		return nil, err
	}
	return &SwapResult{
		AmountCalculatedRaw:      amount,
		AmountCalculatedScaled18: fixedpoint.Copy(amount),
		SwapFeeAmountScaled18:    new(big.Int),
		AggregateFeeScaled18:     new(big.Int),
	}, nil
}
