// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

var (
	// MaxPoolBalance is the largest scaled18 balance a Gyro pool can hold.
	MaxPoolBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	// maxOutFraction is the share of the output balance one swap may take.
	maxOutFraction = big.NewInt(99e16)
)

var (
	_ pool.TradeLimits = (*CLPPool)(nil)
	_ pool.TradeLimits = (*ECLPPool)(nil)
)

// maxSwapAmount is the headroom below MaxPoolBalance for GivenIn and 99%
// of the output balance for GivenOut.
func maxSwapAmount(params *pool.MaxSwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Kind == pool.GivenIn {
		i := params.IndexIn
		room := fixedpoint.Sub(MaxPoolBalance, params.BalancesLiveScaled18[i])
		if room.Sign() < 0 {
			return new(big.Int), nil
		}
		return pool.ToRawRoundDown(room, params.ScalingFactors[i], params.TokenRates[i])
	}
	i := params.IndexOut
	limit := fixedpoint.MulDown(maxOutFraction, params.BalancesLiveScaled18[i])
	return pool.ToRawRoundDown(limit, params.ScalingFactors[i], params.TokenRates[i])
}

func (p *CLPPool) MaxSwapAmount(params *pool.MaxSwapParams) (*big.Int, error) {
	return maxSwapAmount(params)
}

func (p *CLPPool) MaxSingleTokenAddAmount() *big.Int { return fixedpoint.Copy(fixedpoint.MaxUint256) }

func (p *CLPPool) MaxSingleTokenRemoveAmount(params *pool.MaxSingleTokenRemoveParams) (*big.Int, error) {
	return maxSwapAmount(params.SwapParams())
}

func (p *ECLPPool) MaxSwapAmount(params *pool.MaxSwapParams) (*big.Int, error) {
	return maxSwapAmount(params)
}

func (p *ECLPPool) MaxSingleTokenAddAmount() *big.Int { return fixedpoint.Copy(fixedpoint.MaxUint256) }

func (p *ECLPPool) MaxSingleTokenRemoveAmount(params *pool.MaxSingleTokenRemoveParams) (*big.Int, error) {
	return maxSwapAmount(params.SwapParams())
}
