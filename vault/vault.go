// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault settles swaps and liquidity operations against a pool
// snapshot. Every operation is a pure function of its inputs: the snapshot
// is never modified and the post-operation balances are returned.
package vault

import (
	"fmt"
	"math/big"

	log "github.com/luxfi/log"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/hooks"
	"github.com/luxfi/amm/pool"
)

// MinimumTradeAmount is the smallest non-zero scaled18 amount a swap may
// give or compute.
var MinimumTradeAmount = big.NewInt(1_000_000)

// Resolver builds the curve of a pool snapshot and the hook named by its
// HookType.
type Resolver interface {
	Invariant(s pool.State) (pool.Invariant, error)
	Hook(hookType string, hookState any) (hooks.Hook, error)
}

// Vault runs the swap and liquidity pipelines. It holds no pool state and
// is safe for concurrent use.
type Vault struct {
	resolver Resolver
	log      log.Logger
}

// New returns a vault that resolves curves and hooks through resolver.
func New(resolver Resolver, logger log.Logger) *Vault {
	return &Vault{
		resolver: resolver,
		log:      logger,
	}
}

// SwapInput is a swap request in raw token units.
type SwapInput struct {
	Kind      pool.SwapKind
	TokenIn   string
	TokenOut  string
	AmountRaw *big.Int
}

// SwapResult is the outcome of a swap. AmountCalculatedRaw is the amount
// out for GivenIn and the amount in for GivenOut, after fees and hooks.
type SwapResult struct {
	AmountCalculatedRaw      *big.Int
	AmountCalculatedScaled18 *big.Int
	SwapFeeAmountScaled18    *big.Int
	AggregateFeeScaled18     *big.Int
	BalancesScaled18         []*big.Int
}

// AddLiquidityInput is an add-liquidity request. For AddSingleTokenExactOut
// and AddProportional MinBptAmountOut is the exact amount minted.
type AddLiquidityInput struct {
	Kind            pool.AddLiquidityKind
	MaxAmountsInRaw []*big.Int
	MinBptAmountOut *big.Int
}

// AddResult is the outcome of an add.
type AddResult struct {
	BptAmountOut     *big.Int
	AmountsInRaw     []*big.Int
	BalancesScaled18 []*big.Int
}

// RemoveLiquidityInput is a remove-liquidity request. For
// RemoveSingleTokenExactOut MinAmountsOutRaw holds the exact amount out.
type RemoveLiquidityInput struct {
	Kind             pool.RemoveLiquidityKind
	MaxBptAmountIn   *big.Int
	MinAmountsOutRaw []*big.Int
}

// RemoveResult is the outcome of a remove.
type RemoveResult struct {
	BptAmountIn      *big.Int
	AmountsOutRaw    []*big.Int
	BalancesScaled18 []*big.Int
}

// resolve validates the snapshot and looks up its curve and hook.
func (v *Vault) resolve(s pool.State, hookState any) (*pool.Base, pool.Invariant, hooks.Hook, error) {
	base := s.PoolBase()
	if err := base.Validate(); err != nil {
		return nil, nil, nil, err
	}
	curve, err := v.resolver.Invariant(s)
	if err != nil {
		return nil, nil, nil, err
	}
	if base.HookType == "" {
		return base, curve, hooks.Default{}, nil
	}
	hook, err := v.resolver.Hook(base.HookType, hookState)
	if err != nil {
		return nil, nil, nil, err
	}
	return base, curve, hook, nil
}

// aggregateFee is the share of a swap fee kept by the protocol and pool
// creator. It never enters the pool balance.
func aggregateFee(swapFeeAmount, aggregatePercentage *big.Int) *big.Int {
	if swapFeeAmount.Sign() <= 0 || aggregatePercentage.Sign() <= 0 {
		return new(big.Int)
	}
	return fixedpoint.MulUp(swapFeeAmount, aggregatePercentage)
}

// singleInputIndex returns the index of the only non-zero amount.
func singleInputIndex(amounts []*big.Int) (int, error) {
	index := -1
	for i, a := range amounts {
		if a.Sign() == 0 {
			continue
		}
		if index >= 0 {
			return 0, ErrMultipleInputs
		}
		index = i
	}
	if index < 0 {
		return 0, ErrAllZeroInputs
	}
	return index, nil
}

func checkAmounts(n int, amounts []*big.Int) error {
	if len(amounts) != n {
		return fmt.Errorf("%w: %d amounts for %d tokens", ErrInvalidInput, len(amounts), n)
	}
	for i, a := range amounts {
		if err := checkAmount(a); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func checkAmount(a *big.Int) error {
	if a == nil {
		return ErrInvalidInput
	}
	if err := fixedpoint.CheckUint256(a); err != nil {
		return fmt.Errorf("%w: %w", ErrAmountOverflow, err)
	}
	return nil
}

func ensureValidTradeAmount(amount *big.Int) error {
	if amount.Sign() != 0 && amount.Cmp(MinimumTradeAmount) < 0 {
		return ErrTradeAmountTooSmall
	}
	return nil
}

// replaceBalances applies before-hook balances to the working set.
func replaceBalances(current []*big.Int, res hooks.BalancesResult, veto error) ([]*big.Int, error) {
	if !res.Success || len(res.BalancesScaled18) != len(current) {
		return nil, veto
	}
	for _, b := range res.BalancesScaled18 {
		if b == nil || b.Sign() < 0 {
			return nil, veto
		}
	}
	return fixedpoint.CopyAll(res.BalancesScaled18), nil
}
