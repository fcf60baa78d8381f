// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"
	"slices"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/stable"
)

// StableSurgeState configures the surge fee of a stable pool.
type StableSurgeState struct {
	Amp                      *big.Int `json:"amp"`
	SurgeThresholdPercentage *big.Int `json:"surgeThresholdPercentage"`
	MaxSurgeFeePercentage    *big.Int `json:"maxSurgeFeePercentage"`
}

// StableSurge raises the swap fee of a stable pool linearly from the
// static fee to a maximum when a swap pushes the pool's imbalance past a
// threshold. Unbalanced deposits and withdrawals that do the same are
// rejected.
type StableSurge struct {
	Default
	curve     *stable.Pool
	threshold *big.Int
	maxFee    *big.Int
}

var _ Hook = (*StableSurge)(nil)

// NewStableSurge returns the hook for s.
func NewStableSurge(s *StableSurgeState) (*StableSurge, error) {
	if s == nil || s.SurgeThresholdPercentage == nil || s.MaxSurgeFeePercentage == nil {
		return nil, ErrInvalidHookState
	}
	if s.SurgeThresholdPercentage.Sign() < 0 || s.SurgeThresholdPercentage.Cmp(fixedpoint.WAD) > 0 {
		return nil, ErrInvalidHookState
	}
	if s.MaxSurgeFeePercentage.Sign() < 0 || s.MaxSurgeFeePercentage.Cmp(fixedpoint.WAD) > 0 {
		return nil, ErrInvalidHookState
	}
	curve, err := stable.NewPoolWithAmp(s.Amp)
	if err != nil {
		return nil, err
	}
	return &StableSurge{
		curve:     curve,
		threshold: new(big.Int).Set(s.SurgeThresholdPercentage),
		maxFee:    new(big.Int).Set(s.MaxSurgeFeePercentage),
	}, nil
}

func (*StableSurge) Flags() Flags {
	return ShouldCallComputeDynamicSwapFee | ShouldCallAfterAddLiquidity | ShouldCallAfterRemoveLiquidity
}

// OnComputeDynamicSwapFee reports failure when the curve cannot quote the
// swap, leaving the static fee in place.
func (h *StableSurge) OnComputeDynamicSwapFee(p *DynamicFeeParams) (DynamicFeeResult, error) {
	fee, err := h.surgeFeePercentage(p.Swap, p.StaticSwapFeePercentage)
	if err != nil {
		return DynamicFeeResult{}, nil
	}
	return DynamicFeeResult{Success: true, SwapFeePercentage: fee}, nil
}

// OnAfterAddLiquidity blocks a deposit that leaves the pool surging.
func (h *StableSurge) OnAfterAddLiquidity(p *AfterAddLiquidityParams) (AfterAddLiquidityResult, error) {
	if len(p.AmountsInScaled18) != len(p.BalancesScaled18) {
		return AfterAddLiquidityResult{}, nil
	}
	old := make([]*big.Int, len(p.BalancesScaled18))
	for i, b := range p.BalancesScaled18 {
		old[i] = fixedpoint.Sub(b, p.AmountsInScaled18[i])
	}
	surging, err := h.isSurging(old, p.BalancesScaled18)
	if err != nil || surging {
		return AfterAddLiquidityResult{}, nil
	}
	return AfterAddLiquidityResult{Success: true, AmountsInRaw: fixedpoint.CopyAll(p.AmountsInRaw)}, nil
}

// OnAfterRemoveLiquidity blocks a single token withdrawal that leaves the
// pool surging. Proportional withdrawals keep the imbalance and always
// pass.
func (h *StableSurge) OnAfterRemoveLiquidity(p *AfterRemoveLiquidityParams) (AfterRemoveLiquidityResult, error) {
	ok := AfterRemoveLiquidityResult{Success: true, AmountsOutRaw: fixedpoint.CopyAll(p.AmountsOutRaw)}
	if p.Kind == pool.RemoveProportional {
		return ok, nil
	}
	if len(p.AmountsOutScaled18) != len(p.BalancesScaled18) {
		return AfterRemoveLiquidityResult{}, nil
	}
	old := make([]*big.Int, len(p.BalancesScaled18))
	for i, b := range p.BalancesScaled18 {
		old[i] = fixedpoint.Add(b, p.AmountsOutScaled18[i])
	}
	surging, err := h.isSurging(old, p.BalancesScaled18)
	if err != nil || surging {
		return AfterRemoveLiquidityResult{}, nil
	}
	return ok, nil
}

// isSurging reports whether moving from oldBalances to newBalances grows
// the imbalance past the threshold.
func (h *StableSurge) isSurging(oldBalances, newBalances []*big.Int) (bool, error) {
	newImbalance, err := Imbalance(newBalances)
	if err != nil {
		return false, err
	}
	return h.surging(oldBalances, newImbalance)
}

func (h *StableSurge) surging(oldBalances []*big.Int, newImbalance *big.Int) (bool, error) {
	// Balanced pools never surge.
	if newImbalance.Sign() == 0 {
		return false, nil
	}
	oldImbalance, err := Imbalance(oldBalances)
	if err != nil {
		return false, err
	}
	return newImbalance.Cmp(oldImbalance) > 0 && newImbalance.Cmp(h.threshold) > 0, nil
}

func (h *StableSurge) surgeFeePercentage(p *pool.SwapParams, staticFee *big.Int) (*big.Int, error) {
	calculated, err := h.curve.OnSwap(p)
	if err != nil {
		return nil, err
	}
	newBalances := fixedpoint.CopyAll(p.BalancesLiveScaled18)
	if p.Kind == pool.GivenIn {
		newBalances[p.IndexIn].Add(newBalances[p.IndexIn], p.AmountGivenScaled18)
		newBalances[p.IndexOut].Sub(newBalances[p.IndexOut], calculated)
	} else {
		newBalances[p.IndexIn].Add(newBalances[p.IndexIn], calculated)
		newBalances[p.IndexOut].Sub(newBalances[p.IndexOut], p.AmountGivenScaled18)
	}

	newImbalance, err := Imbalance(newBalances)
	if err != nil {
		return nil, err
	}
	surging, err := h.surging(p.BalancesLiveScaled18, newImbalance)
	if err != nil {
		return nil, err
	}
	if !surging {
		return fixedpoint.Copy(staticFee), nil
	}

	// static + (max - static) * (imbalance - threshold) / (1 - threshold)
	ratio, err := fixedpoint.DivDown(fixedpoint.Sub(newImbalance, h.threshold), fixedpoint.Complement(h.threshold))
	if err != nil {
		return nil, err
	}
	surge := fixedpoint.MulDown(fixedpoint.Sub(h.maxFee, staticFee), ratio)
	return surge.Add(surge, staticFee), nil
}

// Imbalance returns sum(|b - median|) / sum(b) as an 18-decimal fraction.
func Imbalance(balances []*big.Int) (*big.Int, error) {
	median := median(balances)
	total := new(big.Int)
	diff := new(big.Int)
	for _, b := range balances {
		total.Add(total, b)
		d := new(big.Int).Sub(b, median)
		diff.Add(diff, d.Abs(d))
	}
	return fixedpoint.DivDown(diff, total)
}

// median averages the middle pair for an even count. balances is not
// modified.
func median(balances []*big.Int) *big.Int {
	sorted := slices.Clone(balances)
	slices.SortFunc(sorted, func(a, b *big.Int) int { return a.Cmp(b) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		m := new(big.Int).Add(sorted[mid-1], sorted[mid])
		return m.Quo(m, big.NewInt(2))
	}
	return new(big.Int).Set(sorted[mid])
}
