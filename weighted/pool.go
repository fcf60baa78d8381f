// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package weighted implements the weighted constant-product curve.
package weighted

import (
	"fmt"
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// PoolType is the registry tag of weighted pools.
const PoolType = "WEIGHTED"

// State is a weighted pool snapshot.
type State struct {
	pool.Base
	Weights []*big.Int `json:"weights"`
}

// Pool is a weighted curve bound to its normalized weights.
type Pool struct {
	weights []*big.Int
}

var (
	_ pool.Invariant   = (*Pool)(nil)
	_ pool.TradeLimits = (*Pool)(nil)
)

// NewPool validates the weights in s and returns the curve.
func NewPool(s *State) (*Pool, error) {
	if len(s.Weights) < 2 || len(s.Weights) != len(s.Tokens) {
		return nil, fmt.Errorf("%w: %d weights for %d tokens", ErrInvalidWeights, len(s.Weights), len(s.Tokens))
	}
	sum := new(big.Int)
	for i, w := range s.Weights {
		if w == nil || w.Cmp(MinWeight) < 0 {
			return nil, fmt.Errorf("%w: weight %d below minimum", ErrInvalidWeights, i)
		}
		sum.Add(sum, w)
	}
	if sum.Cmp(fixedpoint.WAD) != 0 {
		return nil, fmt.Errorf("%w: weights sum to %s", ErrInvalidWeights, sum)
	}
	return &Pool{weights: fixedpoint.CopyAll(s.Weights)}, nil
}

func (p *Pool) OnSwap(params *pool.SwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.IndexIn >= len(p.weights) || params.IndexOut >= len(p.weights) {
		return nil, pool.ErrInvalidTokenIndex
	}

	bIn := params.BalancesLiveScaled18[params.IndexIn]
	bOut := params.BalancesLiveScaled18[params.IndexOut]
	wIn := p.weights[params.IndexIn]
	wOut := p.weights[params.IndexOut]

	if params.Kind == pool.GivenIn {
		return ComputeOutGivenExactIn(bIn, wIn, bOut, wOut, params.AmountGivenScaled18)
	}
	return ComputeInGivenExactOut(bIn, wIn, bOut, wOut, params.AmountGivenScaled18)
}

func (p *Pool) ComputeInvariant(balances []*big.Int, rounding pool.Rounding) (*big.Int, error) {
	if len(balances) != len(p.weights) {
		return nil, pool.ErrInvalidTokenIndex
	}
	if rounding == pool.RoundUp {
		return ComputeInvariantUp(p.weights, balances)
	}
	return ComputeInvariantDown(p.weights, balances)
}

func (p *Pool) ComputeBalance(balances []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if tokenIndex < 0 || tokenIndex >= len(balances) || tokenIndex >= len(p.weights) {
		return nil, pool.ErrInvalidTokenIndex
	}
	return ComputeBalanceOutGivenInvariant(balances[tokenIndex], p.weights[tokenIndex], invariantRatio)
}

func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int).Set(MinInvariantRatio) }

func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(MaxInvariantRatio) }

// MaxSwapAmount is the in or out ratio limit of the given side.
func (p *Pool) MaxSwapAmount(params *pool.MaxSwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	i, ratio := params.IndexIn, MaxInRatio
	if params.Kind == pool.GivenOut {
		i, ratio = params.IndexOut, MaxOutRatio
	}
	limit := fixedpoint.MulDown(params.BalancesLiveScaled18[i], ratio)
	return pool.ToRawRoundDown(limit, params.ScalingFactors[i], params.TokenRates[i])
}

func (p *Pool) MaxSingleTokenAddAmount() *big.Int { return fixedpoint.Copy(fixedpoint.MaxUint256) }

func (p *Pool) MaxSingleTokenRemoveAmount(params *pool.MaxSingleTokenRemoveParams) (*big.Int, error) {
	return p.MaxSwapAmount(params.SwapParams())
}
