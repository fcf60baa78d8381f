// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/fixedpoint"
)

func TestSameAddress(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", true},
		{"0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", "0x0000000000000000000000000000000000000001", false},
		{"WETH", "weth", true},
		{"WETH", "USDC", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			require.Equal(t, tt.want, SameAddress(tt.a, tt.b))
		})
	}

	tokens := []string{"0xAAAA000000000000000000000000000000000001", "0xbbbb000000000000000000000000000000000002"}
	require.Equal(t, 1, IndexOf(tokens, "0xBBBB000000000000000000000000000000000002"))
	require.Equal(t, -1, IndexOf(tokens, "0xcccc000000000000000000000000000000000003"))
}

func TestScaling(t *testing.T) {
	// 6-decimal token with a 1.5 rate.
	sf := fixedpoint.Pow10(12)
	rate := big.NewInt(15e17)

	down := ToScaled18RoundDown(big.NewInt(1_000_001), sf, rate)
	require.Equal(t, "1500001500000000000", down.String())

	raw, err := ToRawRoundDown(down, sf, rate)
	require.NoError(t, err)
	require.Equal(t, "1000001", raw.String())

	up, err := ToRawRoundUp(big.NewInt(1), sf, rate)
	require.NoError(t, err)
	require.Equal(t, "1", up.String())

	zero, err := ToRawRoundDown(big.NewInt(1), sf, rate)
	require.NoError(t, err)
	require.Zero(t, zero.Sign())
}

func TestComputeRateRoundUp(t *testing.T) {
	require.Equal(t, "2000000000000000000", ComputeRateRoundUp(big.NewInt(2e18)).String())
	require.Equal(t, "1500000000000000001", ComputeRateRoundUp(big.NewInt(15e17)).String())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("%w: index 3", ErrInvalidTokenIndex)
	require.ErrorIs(t, wrapped, ErrInvalidTokenIndex)
	require.Equal(t, KindCallerError, KindOf(wrapped))
	require.Equal(t, KindLookup, KindOf(ErrTokenNotFound))
	require.Equal(t, KindPoolUnsafe, KindOf(fixedpoint.ErrZeroDivision))
	require.Equal(t, KindUnknown, KindOf(errors.New("other")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestSwapParamsValidate(t *testing.T) {
	balances := []*big.Int{big.NewInt(1), big.NewInt(2)}
	p := &SwapParams{BalancesLiveScaled18: balances, IndexIn: 0, IndexOut: 1}
	require.NoError(t, p.Validate())

	p.IndexOut = 0
	require.ErrorIs(t, p.Validate(), ErrSameToken)

	p.IndexOut = 2
	require.ErrorIs(t, p.Validate(), ErrInvalidTokenIndex)
}

func TestBaseValidate(t *testing.T) {
	b := &Base{
		Tokens:               []string{"a", "b"},
		ScalingFactors:       []*big.Int{big.NewInt(1), big.NewInt(1)},
		TokenRates:           []*big.Int{fixedpoint.WAD, fixedpoint.WAD},
		BalancesLiveScaled18: []*big.Int{big.NewInt(1), big.NewInt(1)},
		SwapFee:              big.NewInt(0),
		AggregateSwapFee:     big.NewInt(0),
		TotalSupply:          big.NewInt(1),
	}
	require.NoError(t, b.Validate())

	b.BalancesLiveScaled18[1] = big.NewInt(-1)
	require.ErrorIs(t, b.Validate(), ErrInvalidPoolState)

	b.BalancesLiveScaled18 = b.BalancesLiveScaled18[:1]
	require.ErrorIs(t, b.Validate(), ErrInvalidPoolState)
}
