// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool defines the contract shared by every pool variant and the
// per-call state snapshot the vault operates on.
package pool

import (
	"fmt"
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
)

// Rounding selects the rounding direction of an invariant computation.
type Rounding uint8

const (
	RoundDown Rounding = iota
	RoundUp
)

func (r Rounding) String() string {
	if r == RoundUp {
		return "RoundUp"
	}
	return "RoundDown"
}

// SwapKind is the swap direction: exact in or exact out.
type SwapKind uint8

const (
	GivenIn SwapKind = iota
	GivenOut
)

func (k SwapKind) String() string {
	if k == GivenOut {
		return "GivenOut"
	}
	return "GivenIn"
}

// AddLiquidityKind enumerates supported deposit shapes.
type AddLiquidityKind uint8

const (
	AddUnbalanced AddLiquidityKind = iota
	AddSingleTokenExactOut
	AddProportional
)

func (k AddLiquidityKind) String() string {
	switch k {
	case AddUnbalanced:
		return "Unbalanced"
	case AddSingleTokenExactOut:
		return "SingleTokenExactOut"
	case AddProportional:
		return "Proportional"
	default:
		return "Unknown"
	}
}

// RemoveLiquidityKind enumerates supported withdrawal shapes.
type RemoveLiquidityKind uint8

const (
	RemoveProportional RemoveLiquidityKind = iota
	RemoveSingleTokenExactIn
	RemoveSingleTokenExactOut
)

func (k RemoveLiquidityKind) String() string {
	switch k {
	case RemoveProportional:
		return "Proportional"
	case RemoveSingleTokenExactIn:
		return "SingleTokenExactIn"
	case RemoveSingleTokenExactOut:
		return "SingleTokenExactOut"
	default:
		return "Unknown"
	}
}

// SwapParams is the input of Invariant.OnSwap. All amounts are live
// scaled18 values.
type SwapParams struct {
	Kind                 SwapKind
	AmountGivenScaled18  *big.Int
	BalancesLiveScaled18 []*big.Int
	IndexIn              int
	IndexOut             int
}

// Validate checks the token indices against the balances.
func (p *SwapParams) Validate() error {
	n := len(p.BalancesLiveScaled18)
	if p.IndexIn < 0 || p.IndexIn >= n || p.IndexOut < 0 || p.IndexOut >= n {
		return ErrInvalidTokenIndex
	}
	if p.IndexIn == p.IndexOut {
		return ErrSameToken
	}
	return nil
}

// Invariant is implemented by every pool curve. Implementations are pure:
// they never modify the balances passed in.
type Invariant interface {
	// OnSwap returns the amount out for GivenIn and the amount in for
	// GivenOut, before fees.
	OnSwap(p *SwapParams) (*big.Int, error)

	// ComputeInvariant returns the pool invariant for balances.
	ComputeInvariant(balancesLiveScaled18 []*big.Int, rounding Rounding) (*big.Int, error)

	// ComputeBalance solves for the balance of tokenIndex that moves the
	// invariant by invariantRatio holding every other balance fixed.
	ComputeBalance(balancesLiveScaled18 []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error)

	MinimumInvariantRatio() *big.Int
	MaximumInvariantRatio() *big.Int
}

// MaxSwapParams describes the swap a size limit is computed for. Balances
// are live scaled18; factors and rates convert the limit to raw units.
type MaxSwapParams struct {
	Kind                 SwapKind
	BalancesLiveScaled18 []*big.Int
	ScalingFactors       []*big.Int
	TokenRates           []*big.Int
	IndexIn              int
	IndexOut             int
}

// Validate checks the token indices against every per-token array.
func (p *MaxSwapParams) Validate() error {
	n := len(p.BalancesLiveScaled18)
	if len(p.ScalingFactors) != n || len(p.TokenRates) != n {
		return ErrInvalidTokenIndex
	}
	return (&SwapParams{BalancesLiveScaled18: p.BalancesLiveScaled18, IndexIn: p.IndexIn, IndexOut: p.IndexOut}).Validate()
}

// MaxSingleTokenRemoveParams describes a single token withdrawal. The
// pool's BPT supply stands in for the input balance.
type MaxSingleTokenRemoveParams struct {
	ExactIn               bool
	TotalSupply           *big.Int
	TokenOutBalance       *big.Int
	TokenOutScalingFactor *big.Int
	TokenOutRate          *big.Int
}

// SwapParams maps the withdrawal onto a swap of BPT (index 0) for the
// token out (index 1).
func (p *MaxSingleTokenRemoveParams) SwapParams() *MaxSwapParams {
	kind := GivenOut
	if p.ExactIn {
		kind = GivenIn
	}
	return &MaxSwapParams{
		Kind:                 kind,
		BalancesLiveScaled18: []*big.Int{p.TotalSupply, p.TokenOutBalance},
		ScalingFactors:       []*big.Int{big.NewInt(1), p.TokenOutScalingFactor},
		TokenRates:           []*big.Int{fixedpoint.Copy(fixedpoint.WAD), p.TokenOutRate},
		IndexIn:              0,
		IndexOut:             1,
	}
}

// TradeLimits is implemented by curves that bound the size of a single
// swap or single token liquidity change. Limits are raw token units:
// the amount in for GivenIn and the amount out for GivenOut.
type TradeLimits interface {
	MaxSwapAmount(p *MaxSwapParams) (*big.Int, error)
	MaxSingleTokenAddAmount() *big.Int
	MaxSingleTokenRemoveAmount(p *MaxSingleTokenRemoveParams) (*big.Int, error)
}

// Base holds the fields common to every pool snapshot.
type Base struct {
	PoolAddress                 string     `json:"poolAddress"`
	PoolType                    string     `json:"poolType"`
	Tokens                      []string   `json:"tokens"`
	ScalingFactors              []*big.Int `json:"scalingFactors"`
	TokenRates                  []*big.Int `json:"tokenRates"`
	BalancesLiveScaled18        []*big.Int `json:"balancesLiveScaled18"`
	SwapFee                     *big.Int   `json:"swapFee"`
	AggregateSwapFee            *big.Int   `json:"aggregateSwapFee"`
	TotalSupply                 *big.Int   `json:"totalSupply"`
	SupportsUnbalancedLiquidity bool       `json:"supportsUnbalancedLiquidity"`
	HookType                    string     `json:"hookType,omitempty"`
}

// PoolBase returns b. Variant states embed Base and inherit it.
func (b *Base) PoolBase() *Base {
	return b
}

// Validate checks that the per-token arrays agree in length and that every
// value fits an on-chain word.
func (b *Base) Validate() error {
	n := len(b.Tokens)
	if n < 2 {
		return ErrInvalidPoolState
	}
	if len(b.ScalingFactors) != n || len(b.TokenRates) != n || len(b.BalancesLiveScaled18) != n {
		return ErrInvalidPoolState
	}
	if b.SwapFee == nil || b.AggregateSwapFee == nil || b.TotalSupply == nil {
		return ErrInvalidPoolState
	}
	for _, vs := range [][]*big.Int{b.ScalingFactors, b.TokenRates, b.BalancesLiveScaled18} {
		if err := fixedpoint.CheckAllUint256(vs); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPoolState, err)
		}
	}
	return nil
}

// State is a pool snapshot: Base plus variant parameters.
type State interface {
	PoolBase() *Base
}
