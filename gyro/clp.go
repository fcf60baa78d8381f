// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// CLPPoolType is the registry tag of 2-CLP pools.
const CLPPoolType = "GYRO"

var ErrSqrtParamsWrong = pool.NewError(pool.KindCallerError, "SqrtParamsWrong")

// CLPState is a 2-CLP pool snapshot.
type CLPState struct {
	pool.Base
	SqrtAlpha *big.Int `json:"sqrtAlpha"`
	SqrtBeta  *big.Int `json:"sqrtBeta"`
}

// CLPPool is the two-asset concentrated liquidity curve on the price range
// [alpha, beta].
type CLPPool struct {
	sqrtAlpha *big.Int
	sqrtBeta  *big.Int
}

var _ pool.Invariant = (*CLPPool)(nil)

// NewCLPPool returns the curve for s.
func NewCLPPool(s *CLPState) (*CLPPool, error) {
	if s.SqrtAlpha == nil || s.SqrtBeta == nil || s.SqrtAlpha.Sign() <= 0 || s.SqrtAlpha.Cmp(s.SqrtBeta) >= 0 {
		return nil, ErrSqrtParamsWrong
	}
	return &CLPPool{
		sqrtAlpha: new(big.Int).Set(s.SqrtAlpha),
		sqrtBeta:  new(big.Int).Set(s.SqrtBeta),
	}, nil
}

func (p *CLPPool) OnSwap(params *pool.SwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(params.BalancesLiveScaled18) != 2 {
		return nil, pool.ErrInvalidTokenIndex
	}
	bIn := params.BalancesLiveScaled18[params.IndexIn]
	bOut := params.BalancesLiveScaled18[params.IndexOut]

	vIn, vOut, err := p.virtualOffsets(bIn, bOut, params.IndexIn == 0)
	if err != nil {
		return nil, err
	}
	if params.Kind == pool.GivenIn {
		return CLPOutGivenIn(bIn, bOut, params.AmountGivenScaled18, vIn, vOut)
	}
	return CLPInGivenOut(bIn, bOut, params.AmountGivenScaled18, vIn, vOut)
}

// virtualOffsets rounds the input offset up and the output offset down.
func (p *CLPPool) virtualOffsets(bIn, bOut *big.Int, tokenInIsToken0 bool) (vIn, vOut *big.Int, err error) {
	balances := []*big.Int{bIn, bOut}
	if !tokenInIsToken0 {
		balances = []*big.Int{bOut, bIn}
	}
	inv, err := CalculateCLPInvariant(balances, p.sqrtAlpha, p.sqrtBeta, pool.RoundDown)
	if err != nil {
		return nil, nil, err
	}

	if tokenInIsToken0 {
		vIn, err = VirtualParameter0(inv, p.sqrtBeta, pool.RoundUp)
		if err != nil {
			return nil, nil, err
		}
		return vIn, VirtualParameter1(inv, p.sqrtAlpha, pool.RoundDown), nil
	}
	vOut, err = VirtualParameter0(inv, p.sqrtBeta, pool.RoundDown)
	if err != nil {
		return nil, nil, err
	}
	return VirtualParameter1(inv, p.sqrtAlpha, pool.RoundUp), vOut, nil
}

func (p *CLPPool) ComputeInvariant(balances []*big.Int, rounding pool.Rounding) (*big.Int, error) {
	if len(balances) != 2 {
		return nil, pool.ErrInvalidTokenIndex
	}
	return CalculateCLPInvariant(balances, p.sqrtAlpha, p.sqrtBeta, rounding)
}

func (p *CLPPool) ComputeBalance(balances []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if len(balances) != 2 || tokenIndex < 0 || tokenIndex > 1 {
		return nil, pool.ErrInvalidTokenIndex
	}
	inv, err := CalculateCLPInvariant(balances, p.sqrtAlpha, p.sqrtBeta, pool.RoundUp)
	if err != nil {
		return nil, err
	}
	inv = fixedpoint.MulUp(inv, invariantRatio)
	square := fixedpoint.Mul(inv, inv)
	a, err := fixedpoint.DivDown(inv, p.sqrtBeta)
	if err != nil {
		return nil, err
	}
	b := fixedpoint.MulDown(inv, p.sqrtAlpha)

	if tokenIndex == 0 {
		nb, err := fixedpoint.DivUpRaw(square, fixedpoint.Add(balances[1], b))
		if err != nil {
			return nil, err
		}
		return nb.Sub(nb, a), nil
	}
	nb, err := fixedpoint.DivUpRaw(square, fixedpoint.Add(balances[0], a))
	if err != nil {
		return nil, err
	}
	return nb.Sub(nb, b), nil
}

// The curve accepts any invariant ratio.
func (p *CLPPool) MinimumInvariantRatio() *big.Int { return new(big.Int) }

func (p *CLPPool) MaximumInvariantRatio() *big.Int { return new(big.Int).Set(fixedpoint.MaxUint256) }
