// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reclamm implements the readjusting concentrated liquidity pool:
// a constant product over real plus virtual balances whose price range
// drifts toward the market while the pool is off center.
package reclamm

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// PoolType is the registry tag of ReClamm pools.
const PoolType = "RECLAMM"

var (
	// MinTokenBalanceScaled18 is the smallest real balance a swap may
	// leave behind.
	MinTokenBalanceScaled18 = big.NewInt(1e12)
	// MinPoolCenteredness is the smallest centeredness a swap may leave
	// behind.
	MinPoolCenteredness = big.NewInt(1e3)
)

// State is a ReClamm pool snapshot. CurrentTimestamp is the time the
// snapshot is evaluated at; the stored virtual balances are as of
// LastTimestamp.
type State struct {
	pool.Base
	LastVirtualBalances []*big.Int `json:"lastVirtualBalances"`
	DailyPriceShiftBase *big.Int   `json:"dailyPriceShiftBase"`
	CenterednessMargin  *big.Int   `json:"centerednessMargin"`
	LastTimestamp       uint64     `json:"lastTimestamp"`
	CurrentTimestamp    uint64     `json:"currentTimestamp"`
	PriceRatioState
}

// Pool is a ReClamm curve evaluated at the snapshot time.
type Pool struct {
	in VirtualBalanceInputs
}

var (
	_ pool.Invariant   = (*Pool)(nil)
	_ pool.TradeLimits = (*Pool)(nil)
)

// NewPool returns the curve for s.
func NewPool(s *State) (*Pool, error) {
	if len(s.LastVirtualBalances) != 2 || len(s.Tokens) != 2 {
		return nil, pool.ErrInvalidPoolState
	}
	for _, v := range []*big.Int{
		s.LastVirtualBalances[0], s.LastVirtualBalances[1],
		s.DailyPriceShiftBase, s.CenterednessMargin,
		s.StartFourthRootPriceRatio, s.EndFourthRootPriceRatio,
	} {
		if v == nil {
			return nil, pool.ErrInvalidPoolState
		}
	}
	if s.DailyPriceShiftBase.Sign() <= 0 || s.DailyPriceShiftBase.Cmp(fixedpoint.WAD) > 0 {
		return nil, pool.ErrInvalidPoolState
	}
	return &Pool{in: VirtualBalanceInputs{
		Now:                 s.CurrentTimestamp,
		LastTimestamp:       s.LastTimestamp,
		LastVirtualBalanceA: fixedpoint.Copy(s.LastVirtualBalances[0]),
		LastVirtualBalanceB: fixedpoint.Copy(s.LastVirtualBalances[1]),
		DailyPriceShiftBase: fixedpoint.Copy(s.DailyPriceShiftBase),
		CenterednessMargin:  fixedpoint.Copy(s.CenterednessMargin),
		PriceRatio: PriceRatioState{
			UpdateStartTime:           s.UpdateStartTime,
			UpdateEndTime:             s.UpdateEndTime,
			StartFourthRootPriceRatio: fixedpoint.Copy(s.StartFourthRootPriceRatio),
			EndFourthRootPriceRatio:   fixedpoint.Copy(s.EndFourthRootPriceRatio),
		},
	}}, nil
}

// CurrentVirtualBalances returns the virtual balances at the snapshot time
// for balancesScaled18.
func (p *Pool) CurrentVirtualBalances(balancesScaled18 []*big.Int) (*VirtualBalances, error) {
	return ComputeCurrentVirtualBalances(balancesScaled18, &p.in)
}

func (p *Pool) OnSwap(params *pool.SwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	balances := params.BalancesLiveScaled18
	if len(balances) != 2 {
		return nil, pool.ErrInvalidTokenIndex
	}
	vb, err := p.CurrentVirtualBalances(balances)
	if err != nil {
		return nil, err
	}

	if params.Kind == pool.GivenIn {
		out, err := ComputeOutGivenIn(balances, vb.A, vb.B, params.IndexIn, params.IndexOut, params.AmountGivenScaled18)
		if err != nil {
			return nil, err
		}
		if err := ensureValidStateAfterSwap(balances, vb, params.AmountGivenScaled18, out, params.IndexIn, params.IndexOut); err != nil {
			return nil, err
		}
		return out, nil
	}

	in, err := ComputeInGivenOut(balances, vb.A, vb.B, params.IndexIn, params.IndexOut, params.AmountGivenScaled18)
	if err != nil {
		return nil, err
	}
	if err := ensureValidStateAfterSwap(balances, vb, in, params.AmountGivenScaled18, params.IndexIn, params.IndexOut); err != nil {
		return nil, err
	}
	return in, nil
}

func ensureValidStateAfterSwap(balances []*big.Int, vb *VirtualBalances, amountIn, amountOut *big.Int, indexIn, indexOut int) error {
	updated := fixedpoint.CopyAll(balances)
	updated[indexIn].Add(updated[indexIn], amountIn)
	updated[indexOut].Sub(updated[indexOut], amountOut)

	if updated[indexOut].Cmp(MinTokenBalanceScaled18) < 0 {
		return ErrTokenBalanceTooLow
	}
	c, err := ComputeCenteredness(updated, vb.A, vb.B)
	if err != nil {
		return err
	}
	if c.Cmp(MinPoolCenteredness) < 0 {
		return ErrPoolCenterednessTooLow
	}
	return nil
}

// MaxSwapAmount returns the largest amount in (GivenIn) or out (GivenOut)
// that leaves the minimum balance of the output token in the pool.
func (p *Pool) MaxSwapAmount(params *pool.MaxSwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	balances := params.BalancesLiveScaled18
	if len(balances) != 2 {
		return nil, pool.ErrInvalidTokenIndex
	}
	in, out := params.IndexIn, params.IndexOut
	maxOut := fixedpoint.Sub(balances[out], MinTokenBalanceScaled18)
	if maxOut.Sign() <= 0 {
		return new(big.Int), nil
	}
	if params.Kind == pool.GivenOut {
		return pool.ToRawRoundDown(maxOut, params.ScalingFactors[out], params.TokenRates[out])
	}
	vb, err := p.CurrentVirtualBalances(balances)
	if err != nil {
		return nil, err
	}
	maxIn, err := ComputeInGivenOut(balances, vb.A, vb.B, in, out, maxOut)
	if err != nil {
		return nil, err
	}
	maxIn.Sub(maxIn, big.NewInt(1))
	return pool.ToRawRoundDown(maxIn, params.ScalingFactors[in], params.TokenRates[in])
}

// Single token liquidity is not supported; both limits are zero.
func (p *Pool) MaxSingleTokenAddAmount() *big.Int { return new(big.Int) }

func (p *Pool) MaxSingleTokenRemoveAmount(*pool.MaxSingleTokenRemoveParams) (*big.Int, error) {
	return new(big.Int), nil
}

// Liquidity is only added or removed proportionally, which needs neither
// the invariant nor a balance solve. Both return 0.
func (p *Pool) ComputeInvariant([]*big.Int, pool.Rounding) (*big.Int, error) {
	return new(big.Int), nil
}

func (p *Pool) ComputeBalance([]*big.Int, int, *big.Int) (*big.Int, error) {
	return new(big.Int), nil
}

func (p *Pool) MinimumInvariantRatio() *big.Int { return new(big.Int) }

func (p *Pool) MaximumInvariantRatio() *big.Int { return new(big.Int) }
