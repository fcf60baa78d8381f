// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stable implements the StableSwap curve.
package stable

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// PoolType is the registry tag of stable pools.
const PoolType = "STABLE"

// State is a stable pool snapshot. Amp includes AmpPrecision.
type State struct {
	pool.Base
	Amp *big.Int `json:"amp"`
}

// Pool is the StableSwap curve for a fixed amplification.
type Pool struct {
	amp *big.Int
}

var (
	_ pool.Invariant   = (*Pool)(nil)
	_ pool.TradeLimits = (*Pool)(nil)
)

// NewPool returns the curve for s.
func NewPool(s *State) (*Pool, error) {
	return NewPoolWithAmp(s.Amp)
}

// NewPoolWithAmp returns the curve for amp, which includes AmpPrecision.
func NewPoolWithAmp(amp *big.Int) (*Pool, error) {
	if amp == nil || amp.Cmp(ampPrecision) < 0 {
		return nil, ErrInvalidAmp
	}
	return &Pool{amp: new(big.Int).Set(amp)}, nil
}

// Amp returns the amplification parameter.
func (p *Pool) Amp() *big.Int {
	return new(big.Int).Set(p.amp)
}

func (p *Pool) OnSwap(params *pool.SwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	inv, err := ComputeInvariant(p.amp, params.BalancesLiveScaled18)
	if err != nil {
		return nil, err
	}
	if params.Kind == pool.GivenIn {
		return ComputeOutGivenExactIn(p.amp, params.BalancesLiveScaled18, params.IndexIn, params.IndexOut, params.AmountGivenScaled18, inv)
	}
	return ComputeInGivenExactOut(p.amp, params.BalancesLiveScaled18, params.IndexIn, params.IndexOut, params.AmountGivenScaled18, inv)
}

func (p *Pool) ComputeInvariant(balances []*big.Int, rounding pool.Rounding) (*big.Int, error) {
	inv, err := ComputeInvariant(p.amp, balances)
	if err != nil {
		return nil, err
	}
	if rounding == pool.RoundUp && inv.Sign() > 0 {
		inv.Add(inv, big.NewInt(1))
	}
	return inv, nil
}

func (p *Pool) ComputeBalance(balances []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if tokenIndex < 0 || tokenIndex >= len(balances) {
		return nil, pool.ErrInvalidTokenIndex
	}
	inv, err := p.ComputeInvariant(balances, pool.RoundUp)
	if err != nil {
		return nil, err
	}
	return ComputeBalance(p.amp, balances, fixedpoint.MulDown(inv, invariantRatio), tokenIndex)
}

func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int).Set(MinInvariantRatio) }

func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(MaxInvariantRatio) }

// MaxSwapAmount bounds both kinds by the output balance, in raw units of
// the token given.
func (p *Pool) MaxSwapAmount(params *pool.MaxSwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	i := params.IndexIn
	if params.Kind == pool.GivenOut {
		i = params.IndexOut
	}
	return pool.ToRawRoundDown(params.BalancesLiveScaled18[params.IndexOut], params.ScalingFactors[i], params.TokenRates[i])
}

func (p *Pool) MaxSingleTokenAddAmount() *big.Int { return fixedpoint.Copy(fixedpoint.MaxUint256) }

func (p *Pool) MaxSingleTokenRemoveAmount(params *pool.MaxSingleTokenRemoveParams) (*big.Int, error) {
	return p.MaxSwapAmount(params.SwapParams())
}
