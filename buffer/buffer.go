// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package buffer converts between an ERC-4626 vault token and its
// underlying asset at a fixed 18-decimal rate.
package buffer

import (
	"fmt"
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// PoolType is the registry tag of buffers.
const PoolType = "Buffer"

// MinimumWrapAmount is the smallest raw amount a buffer accepts. Smaller
// amounts round in the user's favor.
var MinimumWrapAmount = big.NewInt(1000)

var (
	ErrWrapAmountTooSmall  = pool.NewError(pool.KindCallerError, "wrapAmountTooSmall")
	ErrExceededMaxDeposit  = pool.NewError(pool.KindCallerError, "ERC4626ExceededMaxDeposit")
	ErrExceededMaxMint     = pool.NewError(pool.KindCallerError, "ERC4626ExceededMaxMint")
	ErrInvalidBufferState  = pool.NewError(pool.KindCallerError, "invalid buffer state")
	ErrLiquidityNotAllowed = pool.NewError(pool.KindUnsupported, "liquidity operations are not supported by buffers")
)

// Direction of a buffer swap.
type Direction uint8

const (
	// Wrap takes the underlying asset in and returns shares.
	Wrap Direction = iota
	// Unwrap takes shares in and returns the underlying asset.
	Unwrap
)

func (d Direction) String() string {
	if d == Unwrap {
		return "unwrap"
	}
	return "wrap"
}

// State is a buffer snapshot. The pool address is the wrapped token.
// MaxDeposit and MaxMint are unlimited when nil.
type State struct {
	pool.Base
	Rate       *big.Int `json:"rate"`
	MaxDeposit *big.Int `json:"maxDeposit,omitempty"`
	MaxMint    *big.Int `json:"maxMint,omitempty"`
}

// Validate checks the fields a buffer needs.
func (s *State) Validate() error {
	if s.PoolAddress == "" || s.Rate == nil || s.Rate.Sign() <= 0 {
		return ErrInvalidBufferState
	}
	return fixedpoint.CheckUint256(s.Rate)
}

// DirectionOf returns Unwrap when tokenIn is the wrapped token.
func (s *State) DirectionOf(tokenIn string) Direction {
	if pool.SameAddress(tokenIn, s.PoolAddress) {
		return Unwrap
	}
	return Wrap
}

// WrapOrUnwrap returns the calculated raw amount of a buffer swap: the
// amount out for GivenIn and the amount in for GivenOut.
func WrapOrUnwrap(s *State, tokenIn string, kind pool.SwapKind, amountRaw *big.Int) (*big.Int, error) {
	if amountRaw.Cmp(MinimumWrapAmount) < 0 {
		return nil, ErrWrapAmountTooSmall
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return CalculateAmounts(s.DirectionOf(tokenIn), kind, amountRaw, s.Rate, s.MaxDeposit, s.MaxMint)
}

// CalculateAmounts applies the preview functions of ERC-4626. Every path
// rounds in favor of the vault.
func CalculateAmounts(d Direction, kind pool.SwapKind, amountRaw, rate, maxDeposit, maxMint *big.Int) (*big.Int, error) {
	switch {
	case d == Wrap && kind == pool.GivenIn:
		if maxDeposit != nil && amountRaw.Cmp(maxDeposit) > 0 {
			return nil, fmt.Errorf("%w: %s > %s", ErrExceededMaxDeposit, amountRaw, maxDeposit)
		}
		return fixedpoint.DivDown(amountRaw, rate)
	case d == Wrap:
		if maxMint != nil && amountRaw.Cmp(maxMint) > 0 {
			return nil, fmt.Errorf("%w: %s > %s", ErrExceededMaxMint, amountRaw, maxMint)
		}
		return fixedpoint.MulUp(amountRaw, rate), nil
	case kind == pool.GivenIn:
		return fixedpoint.MulDown(amountRaw, rate), nil
	default:
		return fixedpoint.DivUp(amountRaw, rate)
	}
}
