// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hooks defines the per-pool extension points the vault invokes
// around swaps and liquidity operations, and the built-in hooks.
package hooks

import (
	"math/big"

	"github.com/luxfi/amm/pool"
)

// Flags is a bitmap of the call sites a hook subscribes to.
type Flags uint16

const (
	ShouldCallComputeDynamicSwapFee Flags = 1 << iota
	ShouldCallBeforeSwap
	ShouldCallAfterSwap
	ShouldCallBeforeAddLiquidity
	ShouldCallAfterAddLiquidity
	ShouldCallBeforeRemoveLiquidity
	ShouldCallAfterRemoveLiquidity
	// EnableHookAdjustedAmounts lets after-callbacks replace the raw
	// amounts returned to the caller.
	EnableHookAdjustedAmounts
)

// Has reports whether every bit of flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Permissions is the decoded form of Flags.
type Permissions struct {
	ComputeDynamicSwapFee     bool
	BeforeSwap                bool
	AfterSwap                 bool
	BeforeAddLiquidity        bool
	AfterAddLiquidity         bool
	BeforeRemoveLiquidity     bool
	AfterRemoveLiquidity      bool
	EnableHookAdjustedAmounts bool
}

// Permissions decodes f.
func (f Flags) Permissions() Permissions {
	return Permissions{
		ComputeDynamicSwapFee:     f.Has(ShouldCallComputeDynamicSwapFee),
		BeforeSwap:                f.Has(ShouldCallBeforeSwap),
		AfterSwap:                 f.Has(ShouldCallAfterSwap),
		BeforeAddLiquidity:        f.Has(ShouldCallBeforeAddLiquidity),
		AfterAddLiquidity:         f.Has(ShouldCallAfterAddLiquidity),
		BeforeRemoveLiquidity:     f.Has(ShouldCallBeforeRemoveLiquidity),
		AfterRemoveLiquidity:      f.Has(ShouldCallAfterRemoveLiquidity),
		EnableHookAdjustedAmounts: f.Has(EnableHookAdjustedAmounts),
	}
}

// Encode packs p into a Flags bitmap.
func (p Permissions) Encode() Flags {
	var f Flags
	set := func(on bool, flag Flags) {
		if on {
			f |= flag
		}
	}
	set(p.ComputeDynamicSwapFee, ShouldCallComputeDynamicSwapFee)
	set(p.BeforeSwap, ShouldCallBeforeSwap)
	set(p.AfterSwap, ShouldCallAfterSwap)
	set(p.BeforeAddLiquidity, ShouldCallBeforeAddLiquidity)
	set(p.AfterAddLiquidity, ShouldCallAfterAddLiquidity)
	set(p.BeforeRemoveLiquidity, ShouldCallBeforeRemoveLiquidity)
	set(p.AfterRemoveLiquidity, ShouldCallAfterRemoveLiquidity)
	set(p.EnableHookAdjustedAmounts, EnableHookAdjustedAmounts)
	return f
}

// =========================================================================
// Call-site payloads
// =========================================================================

// BeforeSwapParams describes the request before any pool math runs.
type BeforeSwapParams struct {
	Kind                 pool.SwapKind
	TokenIn              string
	TokenOut             string
	AmountGivenRaw       *big.Int
	BalancesLiveScaled18 []*big.Int
}

// DynamicFeeParams is passed to OnComputeDynamicSwapFee.
type DynamicFeeParams struct {
	Swap                    *pool.SwapParams
	Pool                    string
	TokenIn                 string
	TokenOut                string
	StaticSwapFeePercentage *big.Int
}

// AfterSwapParams carries the result of the swap together with the
// updated balances of both tokens.
type AfterSwapParams struct {
	Kind                     pool.SwapKind
	TokenIn                  string
	TokenOut                 string
	AmountInScaled18         *big.Int
	AmountOutScaled18        *big.Int
	TokenInBalanceScaled18   *big.Int
	TokenOutBalanceScaled18  *big.Int
	AmountCalculatedScaled18 *big.Int
	AmountCalculatedRaw      *big.Int
}

type BeforeAddLiquidityParams struct {
	Kind                 pool.AddLiquidityKind
	MaxAmountsInScaled18 []*big.Int
	MinBptAmountOut      *big.Int
	BalancesScaled18     []*big.Int
}

type AfterAddLiquidityParams struct {
	Kind              pool.AddLiquidityKind
	AmountsInScaled18 []*big.Int
	AmountsInRaw      []*big.Int
	BptAmountOut      *big.Int
	BalancesScaled18  []*big.Int
}

type BeforeRemoveLiquidityParams struct {
	Kind                  pool.RemoveLiquidityKind
	MaxBptAmountIn        *big.Int
	MinAmountsOutScaled18 []*big.Int
	BalancesScaled18      []*big.Int
}

type AfterRemoveLiquidityParams struct {
	Kind               pool.RemoveLiquidityKind
	BptAmountIn        *big.Int
	AmountsOutScaled18 []*big.Int
	AmountsOutRaw      []*big.Int
	BalancesScaled18   []*big.Int
}

// =========================================================================
// Call-site results
// =========================================================================

// BalancesResult is returned by the before-callbacks. On success the
// balances replace the vault's working balances for the rest of the call.
type BalancesResult struct {
	Success          bool
	BalancesScaled18 []*big.Int
}

type DynamicFeeResult struct {
	Success           bool
	SwapFeePercentage *big.Int
}

type AfterSwapResult struct {
	Success             bool
	AmountCalculatedRaw *big.Int
}

type AfterAddLiquidityResult struct {
	Success      bool
	AmountsInRaw []*big.Int
}

type AfterRemoveLiquidityResult struct {
	Success       bool
	AmountsOutRaw []*big.Int
}

// Hook is a per-pool extension. Flags is static for a hook value; the vault
// reads it once per operation and calls only the subscribed sites. A
// result with Success false vetoes the operation. A returned error aborts
// it with that error.
type Hook interface {
	Flags() Flags

	OnBeforeSwap(p *BeforeSwapParams) (BalancesResult, error)
	OnComputeDynamicSwapFee(p *DynamicFeeParams) (DynamicFeeResult, error)
	OnAfterSwap(p *AfterSwapParams) (AfterSwapResult, error)

	OnBeforeAddLiquidity(p *BeforeAddLiquidityParams) (BalancesResult, error)
	OnAfterAddLiquidity(p *AfterAddLiquidityParams) (AfterAddLiquidityResult, error)

	OnBeforeRemoveLiquidity(p *BeforeRemoveLiquidityParams) (BalancesResult, error)
	OnAfterRemoveLiquidity(p *AfterRemoveLiquidityParams) (AfterRemoveLiquidityResult, error)
}

// Default subscribes to nothing and fails every callback. Embed it and
// override the sites a hook needs.
type Default struct{}

var _ Hook = Default{}

func (Default) Flags() Flags { return 0 }

func (Default) OnBeforeSwap(*BeforeSwapParams) (BalancesResult, error) {
	return BalancesResult{}, nil
}

func (Default) OnComputeDynamicSwapFee(*DynamicFeeParams) (DynamicFeeResult, error) {
	return DynamicFeeResult{}, nil
}

func (Default) OnAfterSwap(*AfterSwapParams) (AfterSwapResult, error) {
	return AfterSwapResult{}, nil
}

func (Default) OnBeforeAddLiquidity(*BeforeAddLiquidityParams) (BalancesResult, error) {
	return BalancesResult{}, nil
}

func (Default) OnAfterAddLiquidity(*AfterAddLiquidityParams) (AfterAddLiquidityResult, error) {
	return AfterAddLiquidityResult{}, nil
}

func (Default) OnBeforeRemoveLiquidity(*BeforeRemoveLiquidityParams) (BalancesResult, error) {
	return BalancesResult{}, nil
}

func (Default) OnAfterRemoveLiquidity(*AfterRemoveLiquidityParams) (AfterRemoveLiquidityResult, error) {
	return AfterRemoveLiquidityResult{}, nil
}
