// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// Registry tags of the built-in hooks.
const (
	ExitFeeType        = "ExitFee"
	StableSurgeType    = "StableSurge"
	DirectionalFeeType = "DirectionalFee"
)

var (
	ErrInvalidHookState      = pool.NewError(pool.KindCallerError, "invalid hook state")
	ErrUnsupportedRemoveKind = pool.NewError(pool.KindUnsupported, "ExitFeeHook: Unsupported RemoveLiquidityKind")
)

// ExitFeeState configures the exit fee hook.
type ExitFeeState struct {
	Tokens                           []string `json:"tokens"`
	RemoveLiquidityHookFeePercentage *big.Int `json:"removeLiquidityHookFeePercentage"`
}

// ExitFee withholds a percentage of every token paid out by a
// proportional remove. Withheld amounts stay in the pool.
type ExitFee struct {
	Default
	feePercentage *big.Int
	numTokens     int
}

var _ Hook = (*ExitFee)(nil)

// NewExitFee returns the hook for s.
func NewExitFee(s *ExitFeeState) (*ExitFee, error) {
	if s == nil || s.RemoveLiquidityHookFeePercentage == nil {
		return nil, ErrInvalidHookState
	}
	if s.RemoveLiquidityHookFeePercentage.Sign() < 0 || s.RemoveLiquidityHookFeePercentage.Cmp(fixedpoint.WAD) > 0 {
		return nil, ErrInvalidHookState
	}
	return &ExitFee{
		feePercentage: new(big.Int).Set(s.RemoveLiquidityHookFeePercentage),
		numTokens:     len(s.Tokens),
	}, nil
}

func (*ExitFee) Flags() Flags {
	return ShouldCallAfterRemoveLiquidity | EnableHookAdjustedAmounts
}

// OnAfterRemoveLiquidity only supports proportional removes: a fee on an
// exact amount out would have to be charged in BPT.
func (h *ExitFee) OnAfterRemoveLiquidity(p *AfterRemoveLiquidityParams) (AfterRemoveLiquidityResult, error) {
	if p.Kind != pool.RemoveProportional {
		return AfterRemoveLiquidityResult{}, ErrUnsupportedRemoveKind
	}
	if h.numTokens != 0 && h.numTokens != len(p.AmountsOutRaw) {
		return AfterRemoveLiquidityResult{}, ErrInvalidHookState
	}
	adjusted := fixedpoint.CopyAll(p.AmountsOutRaw)
	if h.feePercentage.Sign() > 0 {
		for i, out := range p.AmountsOutRaw {
			adjusted[i].Sub(adjusted[i], fixedpoint.MulDown(out, h.feePercentage))
		}
	}
	return AfterRemoveLiquidityResult{Success: true, AmountsOutRaw: adjusted}, nil
}
