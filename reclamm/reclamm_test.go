// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reclamm

import (
	"math/big"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

func wad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixedpoint.WAD)
}

func testState() *State {
	return &State{
		Base: pool.Base{
			PoolType: PoolType,
			Tokens:   []string{"0xa", "0xb"},
		},
		LastVirtualBalances: []*big.Int{wad(100), wad(100)},
		DailyPriceShiftBase: big.NewInt(999988425925925926),
		CenterednessMargin:  big.NewInt(2e17),
		LastTimestamp:       1000,
		CurrentTimestamp:    1000,
		PriceRatioState: PriceRatioState{
			StartFourthRootPriceRatio: big.NewInt(1189207115002721066),
			EndFourthRootPriceRatio:   big.NewInt(1189207115002721066),
		},
	}
}

func newTestPool(t *testing.T, s *State) *Pool {
	p, err := NewPool(s)
	require.NoError(t, err)
	return p
}

func TestComputeCenteredness(t *testing.T) {
	tests := []struct {
		name     string
		balances []*big.Int
		want     string
	}{
		{"centered", []*big.Int{wad(50), wad(50)}, "1000000000000000000"},
		{"above", []*big.Int{wad(60), wad(40)}, "666666666666666667"},
		{"skewed", []*big.Int{wad(90), wad(5)}, "55555555555555556"},
		{"empty side", []*big.Int{wad(90), big.NewInt(0)}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ComputeCenteredness(tt.balances, wad(100), wad(100))
			require.NoError(t, err)
			require.Equal(t, tt.want, c.String())
		})
	}
}

func TestComputeFourthRootPriceRatio(t *testing.T) {
	s := &PriceRatioState{
		UpdateStartTime:           500,
		UpdateEndTime:             1500,
		StartFourthRootPriceRatio: big.NewInt(11e17),
		EndFourthRootPriceRatio:   big.NewInt(12e17),
	}
	tests := []struct {
		now  uint64
		want string
	}{
		{400, "1100000000000000000"},
		{500, "1100000000000000000"},
		{1000, "1148912529307605733"},
		{1500, "1200000000000000000"},
		{2000, "1200000000000000000"},
	}
	for _, tt := range tests {
		got, err := ComputeFourthRootPriceRatio(tt.now, s)
		require.NoError(t, err)
		require.Equal(t, tt.want, got.String(), "now=%d", tt.now)
	}
}

func TestCurrentVirtualBalances(t *testing.T) {
	t.Run("same timestamp", func(t *testing.T) {
		s := testState()
		s.CurrentTimestamp = s.LastTimestamp
		vb, err := newTestPool(t, s).CurrentVirtualBalances([]*big.Int{wad(90), wad(5)})
		require.NoError(t, err)
		require.False(t, vb.Changed)
		require.Equal(t, "100000000000000000000", vb.A.String())
		require.Equal(t, "100000000000000000000", vb.B.String())
	})

	t.Run("centered pool does not move", func(t *testing.T) {
		s := testState()
		s.CurrentTimestamp = 4600
		vb, err := newTestPool(t, s).CurrentVirtualBalances([]*big.Int{wad(50), wad(50)})
		require.NoError(t, err)
		require.False(t, vb.Changed)
	})

	t.Run("off center decays toward market", func(t *testing.T) {
		s := testState()
		s.CurrentTimestamp = 4600
		vb, err := newTestPool(t, s).CurrentVirtualBalances([]*big.Int{wad(90), wad(5)})
		require.NoError(t, err)
		require.True(t, vb.Changed)
		require.Equal(t, "261516348914193079150", vb.A.String())
		require.Equal(t, "95918922582134362300", vb.B.String())
	})

	t.Run("price ratio update keeps centeredness", func(t *testing.T) {
		s := testState()
		s.LastTimestamp = 600
		s.CurrentTimestamp = 1000
		s.PriceRatioState = PriceRatioState{
			UpdateStartTime:           500,
			UpdateEndTime:             1500,
			StartFourthRootPriceRatio: big.NewInt(11e17),
			EndFourthRootPriceRatio:   big.NewInt(12e17),
		}
		balances := []*big.Int{wad(60), wad(40)}
		vb, err := newTestPool(t, s).CurrentVirtualBalances(balances)
		require.NoError(t, err)
		require.True(t, vb.Changed)
		require.Equal(t, "223263382732970431531", vb.A.String())
		require.Equal(t, "223263382732970431418", vb.B.String())

		c, err := ComputeCenteredness(balances, vb.A, vb.B)
		require.NoError(t, err)
		require.Equal(t, "666666666666666668", c.String())
	})

	t.Run("inputs not mutated", func(t *testing.T) {
		s := testState()
		s.CurrentTimestamp = 4600
		_, err := newTestPool(t, s).CurrentVirtualBalances([]*big.Int{wad(90), wad(5)})
		require.NoError(t, err)
		require.Equal(t, "100000000000000000000", s.LastVirtualBalances[0].String())
	})
}

func TestSwap(t *testing.T) {
	p := newTestPool(t, testState())
	balances := []*big.Int{wad(50), wad(50)}

	out, err := p.OnSwap(&pool.SwapParams{
		Kind:                 pool.GivenIn,
		AmountGivenScaled18:  wad(1),
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)
	require.Equal(t, "993377483443708609", out.String())

	in, err := p.OnSwap(&pool.SwapParams{
		Kind:                 pool.GivenOut,
		AmountGivenScaled18:  wad(1),
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)
	require.Equal(t, "1006711409395973155", in.String())
}

func TestSwapBelowMinimumBalance(t *testing.T) {
	p := newTestPool(t, testState())
	balances := []*big.Int{wad(50), wad(50)}

	amountOut := new(big.Int).Sub(wad(50), big.NewInt(1e11))
	_, err := p.OnSwap(&pool.SwapParams{
		Kind:                 pool.GivenOut,
		AmountGivenScaled18:  amountOut,
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.ErrorIs(t, err, ErrTokenBalanceTooLow)
	require.Equal(t, pool.KindPoolUnsafe, pool.KindOf(err))
	require.Equal(t, "50000000000000000000", balances[0].String())
	require.Equal(t, "50000000000000000000", balances[1].String())

	_, err = p.OnSwap(&pool.SwapParams{
		Kind:                 pool.GivenOut,
		AmountGivenScaled18:  wad(51),
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.ErrorIs(t, err, ErrAmountOutGreaterThanBalance)
}

func TestMaxSwapAmount(t *testing.T) {
	p := newTestPool(t, testState())
	balances := []*big.Int{wad(50), wad(50)}

	params := func(kind pool.SwapKind, scalingFactors []*big.Int) *pool.MaxSwapParams {
		return &pool.MaxSwapParams{
			Kind:                 kind,
			BalancesLiveScaled18: balances,
			ScalingFactors:       scalingFactors,
			TokenRates:           []*big.Int{wad(1), wad(1)},
			IndexIn:              0,
			IndexOut:             1,
		}
	}
	ones := []*big.Int{big.NewInt(1), big.NewInt(1)}

	maxOut, err := p.MaxSwapAmount(params(pool.GivenOut, ones))
	require.NoError(t, err)
	require.Equal(t, "49999999000000000000", maxOut.String())

	maxIn, err := p.MaxSwapAmount(params(pool.GivenIn, ones))
	require.NoError(t, err)
	require.Equal(t, "74999997750000022499", maxIn.String())

	// a 6 decimal token out
	maxOut, err = p.MaxSwapAmount(params(pool.GivenOut, []*big.Int{big.NewInt(1), big.NewInt(1e12)}))
	require.NoError(t, err)
	require.Equal(t, "49999999", maxOut.String())

	_, err = p.MaxSwapAmount(&pool.MaxSwapParams{BalancesLiveScaled18: balances, IndexIn: 0, IndexOut: 1})
	require.ErrorIs(t, err, pool.ErrInvalidTokenIndex)

	require.Zero(t, p.MaxSingleTokenAddAmount().Sign())
	maxRemove, err := p.MaxSingleTokenRemoveAmount(&pool.MaxSingleTokenRemoveParams{TotalSupply: wad(100), TokenOutBalance: wad(50)})
	require.NoError(t, err)
	require.Zero(t, maxRemove.Sign())
}

func TestProportionalOnly(t *testing.T) {
	p := newTestPool(t, testState())
	inv, err := p.ComputeInvariant([]*big.Int{wad(1), wad(1)}, pool.RoundDown)
	require.NoError(t, err)
	require.Zero(t, inv.Sign())
	require.Zero(t, p.MaximumInvariantRatio().Sign())
}

func TestNewPoolValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"one virtual balance", func(s *State) { s.LastVirtualBalances = s.LastVirtualBalances[:1] }},
		{"missing shift base", func(s *State) { s.DailyPriceShiftBase = nil }},
		{"zero shift base", func(s *State) { s.DailyPriceShiftBase = new(big.Int) }},
		{"shift base above one", func(s *State) { s.DailyPriceShiftBase = new(big.Int).Add(fixedpoint.WAD, big.NewInt(1)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testState()
			tt.mutate(s)
			_, err := NewPool(s)
			require.ErrorIs(t, err, pool.ErrInvalidPoolState)
		})
	}

	s := testState()
	s.DailyPriceShiftBase = fixedpoint.Copy(fixedpoint.WAD)
	_, err := NewPool(s)
	require.NoError(t, err)
}

func TestStateDecodesShiftBase(t *testing.T) {
	var s State
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(`{"dailyPriceShiftBase":999999197747274347}`), &s))
	require.Equal(t, "999999197747274347", s.DailyPriceShiftBase.String())
}
