// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// DirectionalFeeState optionally lists the pool tokens the hook resolves
// swaps against. Without tokens the swap's own indices are used.
type DirectionalFeeState struct {
	Tokens []string `json:"tokens,omitempty"`
}

// DirectionalFee charges a fee proportional to how far a swap leaves the
// two traded balances apart, never less than the static fee. Swaps that
// leave the input side smaller than the output side pay the static fee.
type DirectionalFee struct {
	Default
	tokens []string
}

var _ Hook = (*DirectionalFee)(nil)

// NewDirectionalFee returns the hook for s.
func NewDirectionalFee(s *DirectionalFeeState) (*DirectionalFee, error) {
	if s == nil || len(s.Tokens) == 0 {
		return &DirectionalFee{}, nil
	}
	if len(s.Tokens) < 2 {
		return nil, ErrInvalidHookState
	}
	return &DirectionalFee{tokens: append([]string(nil), s.Tokens...)}, nil
}

func (*DirectionalFee) Flags() Flags {
	return ShouldCallComputeDynamicSwapFee
}

func (h *DirectionalFee) OnComputeDynamicSwapFee(p *DynamicFeeParams) (DynamicFeeResult, error) {
	in, out := p.Swap.IndexIn, p.Swap.IndexOut
	if len(h.tokens) > 0 {
		in = pool.IndexOf(h.tokens, p.TokenIn)
		out = pool.IndexOf(h.tokens, p.TokenOut)
		if in < 0 || out < 0 {
			return DynamicFeeResult{}, pool.ErrTokenNotFound
		}
	}
	balances := p.Swap.BalancesLiveScaled18
	if in < 0 || out < 0 || in >= len(balances) || out >= len(balances) {
		return DynamicFeeResult{}, pool.ErrInvalidTokenIndex
	}
	fee, err := expectedSwapFeePercentage(balances[in], balances[out], p.Swap.AmountGivenScaled18)
	if err != nil {
		return DynamicFeeResult{}, err
	}
	return DynamicFeeResult{Success: true, SwapFeePercentage: fixedpoint.Max(fee, p.StaticSwapFeePercentage)}, nil
}

// expectedSwapFeePercentage is (in' - out') / (in' + out') when the swap
// leaves in' = in + amount above out' = out - amount, else zero.
func expectedSwapFeePercentage(balanceIn, balanceOut, amount *big.Int) (*big.Int, error) {
	finalIn := fixedpoint.Add(balanceIn, amount)
	finalOut := fixedpoint.Sub(balanceOut, amount)
	if finalIn.Cmp(finalOut) <= 0 {
		return new(big.Int), nil
	}
	return fixedpoint.DivDown(fixedpoint.Sub(finalIn, finalOut), fixedpoint.Add(finalIn, finalOut))
}
