// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault_test

import (
	"math/big"
	"testing"

	log "github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/buffer"
	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/hooks"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/registry"
	"github.com/luxfi/amm/stable"
	"github.com/luxfi/amm/vault"
	"github.com/luxfi/amm/weighted"
)

const (
	tokenA = "0x0000000000000000000000000000000000000001"
	tokenB = "0x0000000000000000000000000000000000000002"
	tokenC = "0x0000000000000000000000000000000000000003"
)

func wad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixedpoint.WAD)
}

func strs(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func base(poolType string, balances []*big.Int, supply, swapFee *big.Int) pool.Base {
	return pool.Base{
		PoolAddress:                 "0x00000000000000000000000000000000000000aa",
		PoolType:                    poolType,
		Tokens:                      []string{tokenA, tokenB},
		ScalingFactors:              []*big.Int{big.NewInt(1), big.NewInt(1)},
		TokenRates:                  []*big.Int{wad(1), wad(1)},
		BalancesLiveScaled18:        balances,
		SwapFee:                     swapFee,
		AggregateSwapFee:            new(big.Int),
		TotalSupply:                 supply,
		SupportsUnbalancedLiquidity: true,
	}
}

func weightedPool() *weighted.State {
	return &weighted.State{
		Base:    base(weighted.PoolType, []*big.Int{wad(1), wad(1)}, wad(2), new(big.Int)),
		Weights: []*big.Int{big.NewInt(5e17), big.NewInt(5e17)},
	}
}

// stablePool holds 1000 of each token at amp 1000 and a 1% fee.
func stablePool() *stable.State {
	return &stable.State{
		Base: base(stable.PoolType, []*big.Int{wad(1000), wad(1000)}, wad(2000), big.NewInt(1e16)),
		Amp:  big.NewInt(1000 * stable.AmpPrecision),
	}
}

func newVault(r vault.Resolver) *vault.Vault {
	return vault.New(r, log.NewTestLogger(log.InfoLevel))
}

func TestSwapWeighted(t *testing.T) {
	v := newVault(registry.Default())
	s := weightedPool()

	res, err := v.Swap(&vault.SwapInput{
		Kind:      pool.GivenIn,
		TokenIn:   tokenA,
		TokenOut:  tokenB,
		AmountRaw: big.NewInt(1e17),
	}, s, nil)
	require.NoError(t, err)

	// 1 * (1 - 1/1.1) with no fee.
	require.Positive(t, res.AmountCalculatedRaw.Cmp(big.NewInt(9e16)))
	require.Negative(t, res.AmountCalculatedRaw.Cmp(big.NewInt(90909090909090910)))
	require.Zero(t, res.SwapFeeAmountScaled18.Sign())
	require.Equal(t, "1100000000000000000", res.BalancesScaled18[0].String())
	require.Equal(t, new(big.Int).Sub(wad(1), res.AmountCalculatedRaw).String(), res.BalancesScaled18[1].String())

	// The snapshot is untouched.
	require.Equal(t, []string{"1000000000000000000", "1000000000000000000"}, strs(s.BalancesLiveScaled18))
}

func TestSwapStable(t *testing.T) {
	tests := []struct {
		name         string
		kind         pool.SwapKind
		aggregateFee *big.Int
		wantRaw      string
		wantFee      string
		wantBalances []string
	}{
		{
			name:         "exact in",
			kind:         pool.GivenIn,
			aggregateFee: new(big.Int),
			wantRaw:      "989999010989011976",
			wantFee:      "9999990009990020",
			wantBalances: []string{"1001000000000000000000", "999010000989010988024"},
		},
		{
			name:         "exact in with aggregate fee",
			kind:         pool.GivenIn,
			aggregateFee: big.NewInt(5e17),
			wantRaw:      "989999010989011976",
			wantFee:      "9999990009990020",
			wantBalances: []string{"1001000000000000000000", "999005000994005993014"},
		},
		{
			name:         "exact out",
			kind:         pool.GivenOut,
			aggregateFee: new(big.Int),
			wantRaw:      "1010102019194943452",
			wantFee:      "10101020191949435",
			wantBalances: []string{"1001010102019194943452", "999000000000000000000"},
		},
	}
	v := newVault(registry.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stablePool()
			s.AggregateSwapFee = tt.aggregateFee
			res, err := v.Swap(&vault.SwapInput{
				Kind:      tt.kind,
				TokenIn:   tokenA,
				TokenOut:  tokenB,
				AmountRaw: wad(1),
			}, s, nil)
			require.NoError(t, err)
			require.Equal(t, tt.wantRaw, res.AmountCalculatedRaw.String())
			require.Equal(t, tt.wantFee, res.SwapFeeAmountScaled18.String())
			require.Equal(t, tt.wantBalances, strs(res.BalancesScaled18))
		})
	}
}

func TestSwapStableMatchesSolver(t *testing.T) {
	s := &stable.State{
		Base: base(stable.PoolType, []*big.Int{big.NewInt(13e17), big.NewInt(13e17)}, big.NewInt(26e17), big.NewInt(4e14)),
		Amp:  big.NewInt(1e6),
	}
	res, err := newVault(registry.Default()).Swap(&vault.SwapInput{
		Kind:      pool.GivenIn,
		TokenIn:   tokenA,
		TokenOut:  tokenB,
		AmountRaw: big.NewInt(1e17),
	}, s, nil)
	require.NoError(t, err)
	// Curve output 99992270328362696 less a 0.04% fee.
	require.Equal(t, "39996908131346", res.SwapFeeAmountScaled18.String())
	require.Equal(t, "99952273420231350", res.AmountCalculatedRaw.String())
}

func TestSwapEdgeCases(t *testing.T) {
	v := newVault(registry.Default())

	res, err := v.Swap(&vault.SwapInput{Kind: pool.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: new(big.Int)}, weightedPool(), nil)
	require.NoError(t, err)
	require.Zero(t, res.AmountCalculatedRaw.Sign())
	require.Len(t, res.BalancesScaled18, 2)

	tests := []struct {
		name     string
		in       *vault.SwapInput
		wantErr  error
		wantKind pool.Kind
	}{
		{"input token missing", &vault.SwapInput{TokenIn: tokenC, TokenOut: tokenB, AmountRaw: wad(1)}, vault.ErrInputTokenNotFound, pool.KindLookup},
		{"output token missing", &vault.SwapInput{TokenIn: tokenA, TokenOut: tokenC, AmountRaw: wad(1)}, vault.ErrOutputTokenNotFound, pool.KindLookup},
		{"same token", &vault.SwapInput{TokenIn: tokenA, TokenOut: tokenA, AmountRaw: wad(1)}, pool.ErrSameToken, pool.KindCallerError},
		{"below minimum", &vault.SwapInput{TokenIn: tokenA, TokenOut: tokenB, AmountRaw: big.NewInt(1e5)}, vault.ErrTradeAmountTooSmall, pool.KindCallerError},
		{"nil amount", &vault.SwapInput{TokenIn: tokenA, TokenOut: tokenB}, vault.ErrInvalidInput, pool.KindCallerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Swap(tt.in, weightedPool(), nil)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantKind, pool.KindOf(err))
		})
	}
}

func TestSwapBuffer(t *testing.T) {
	v := newVault(registry.Default())
	b := &buffer.State{
		Base: pool.Base{
			PoolAddress: tokenA,
			PoolType:    buffer.PoolType,
			Tokens:      []string{tokenA, tokenB},
		},
		Rate: big.NewInt(1_100000000000000000),
	}

	// tokenB is the underlying asset, so this is a wrap.
	res, err := v.Swap(&vault.SwapInput{Kind: pool.GivenIn, TokenIn: tokenB, TokenOut: tokenA, AmountRaw: wad(1)}, b, nil)
	require.NoError(t, err)
	require.Equal(t, "909090909090909090", res.AmountCalculatedRaw.String())
	require.Zero(t, res.SwapFeeAmountScaled18.Sign())

	_, err = v.AddLiquidity(&vault.AddLiquidityInput{Kind: pool.AddProportional}, b, nil)
	require.ErrorIs(t, err, buffer.ErrLiquidityNotAllowed)
	require.Equal(t, pool.KindUnsupported, pool.KindOf(err))

	_, err = v.RemoveLiquidity(&vault.RemoveLiquidityInput{Kind: pool.RemoveProportional}, b, nil)
	require.ErrorIs(t, err, buffer.ErrLiquidityNotAllowed)
}

func TestAddLiquidity(t *testing.T) {
	v := newVault(registry.Default())

	t.Run("proportional", func(t *testing.T) {
		res, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddProportional,
			MaxAmountsInRaw: []*big.Int{wad(100), wad(100)},
			MinBptAmountOut: wad(200),
		}, stablePool(), nil)
		require.NoError(t, err)
		require.Equal(t, []string{"100000000000000000000", "100000000000000000000"}, strs(res.AmountsInRaw))
		require.Equal(t, []string{"1100000000000000000000", "1100000000000000000000"}, strs(res.BalancesScaled18))
		require.Equal(t, wad(200).String(), res.BptAmountOut.String())
	})

	t.Run("proportional above max", func(t *testing.T) {
		_, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddProportional,
			MaxAmountsInRaw: []*big.Int{wad(99), wad(100)},
			MinBptAmountOut: wad(200),
		}, stablePool(), nil)
		require.ErrorIs(t, err, vault.ErrAmountInAboveMax)
	})

	t.Run("unbalanced", func(t *testing.T) {
		res, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddUnbalanced,
			MaxAmountsInRaw: []*big.Int{big.NewInt(1e17), new(big.Int)},
			MinBptAmountOut: new(big.Int),
		}, weightedPool(), nil)
		require.NoError(t, err)
		// 2 * (sqrt(1.1) - 1)
		require.Positive(t, res.BptAmountOut.Cmp(big.NewInt(976e14)))
		require.Negative(t, res.BptAmountOut.Cmp(big.NewInt(9762e13)))
		require.Equal(t, []string{"100000000000000000", "0"}, strs(res.AmountsInRaw))
	})

	t.Run("unbalanced below min bpt", func(t *testing.T) {
		_, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddUnbalanced,
			MaxAmountsInRaw: []*big.Int{big.NewInt(1e17), new(big.Int)},
			MinBptAmountOut: big.NewInt(1e17),
		}, weightedPool(), nil)
		require.ErrorIs(t, err, vault.ErrBptAmountOutBelowMin)
	})

	t.Run("unbalanced not supported", func(t *testing.T) {
		s := stablePool()
		s.SupportsUnbalancedLiquidity = false
		_, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddUnbalanced,
			MaxAmountsInRaw: []*big.Int{wad(1), wad(1)},
			MinBptAmountOut: new(big.Int),
		}, s, nil)
		require.ErrorIs(t, err, vault.ErrUnbalancedLiquidityNotSupported)
		require.Equal(t, pool.KindUnsupported, pool.KindOf(err))
	})

	t.Run("single token inputs", func(t *testing.T) {
		for _, tc := range []struct {
			amounts []*big.Int
			wantErr error
		}{
			{[]*big.Int{wad(1), wad(1)}, vault.ErrMultipleInputs},
			{[]*big.Int{new(big.Int), new(big.Int)}, vault.ErrAllZeroInputs},
		} {
			_, err := v.AddLiquidity(&vault.AddLiquidityInput{
				Kind:            pool.AddSingleTokenExactOut,
				MaxAmountsInRaw: tc.amounts,
				MinBptAmountOut: wad(1),
			}, stablePool(), nil)
			require.ErrorIs(t, err, tc.wantErr)
		}
	})

	t.Run("single token exact out", func(t *testing.T) {
		res, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddSingleTokenExactOut,
			MaxAmountsInRaw: []*big.Int{wad(10), new(big.Int)},
			MinBptAmountOut: wad(2),
		}, stablePool(), nil)
		require.NoError(t, err)
		// Slightly more than the proportional 1 + 1 on a flat curve.
		require.Positive(t, res.AmountsInRaw[0].Cmp(wad(2)))
		require.Negative(t, res.AmountsInRaw[0].Cmp(big.NewInt(203e16)))
		require.Zero(t, res.AmountsInRaw[1].Sign())
	})

	t.Run("wrong amount count", func(t *testing.T) {
		_, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddProportional,
			MaxAmountsInRaw: []*big.Int{wad(1)},
			MinBptAmountOut: wad(1),
		}, stablePool(), nil)
		require.ErrorIs(t, err, vault.ErrInvalidInput)
	})
}

func TestRemoveLiquidity(t *testing.T) {
	v := newVault(registry.Default())

	t.Run("proportional", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveProportional,
			MaxBptAmountIn:   wad(200),
			MinAmountsOutRaw: []*big.Int{new(big.Int), new(big.Int)},
		}, stablePool(), nil)
		require.NoError(t, err)
		require.Equal(t, []string{"100000000000000000000", "100000000000000000000"}, strs(res.AmountsOutRaw))
		require.Equal(t, []string{"900000000000000000000", "900000000000000000000"}, strs(res.BalancesScaled18))
	})

	t.Run("below min out", func(t *testing.T) {
		_, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveProportional,
			MaxBptAmountIn:   wad(200),
			MinAmountsOutRaw: []*big.Int{wad(101), new(big.Int)},
		}, stablePool(), nil)
		require.ErrorIs(t, err, vault.ErrAmountOutBelowMin)
	})

	t.Run("more than supply", func(t *testing.T) {
		_, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveProportional,
			MaxBptAmountIn:   wad(2001),
			MinAmountsOutRaw: []*big.Int{new(big.Int), new(big.Int)},
		}, stablePool(), nil)
		require.ErrorIs(t, err, vault.ErrInvalidInput)
	})

	t.Run("single token exact in", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveSingleTokenExactIn,
			MaxBptAmountIn:   wad(2),
			MinAmountsOutRaw: []*big.Int{big.NewInt(1), new(big.Int)},
		}, stablePool(), nil)
		require.NoError(t, err)
		// Slightly less than the proportional 1 + 1 after the fee.
		require.Negative(t, res.AmountsOutRaw[0].Cmp(wad(2)))
		require.Positive(t, res.AmountsOutRaw[0].Cmp(big.NewInt(197e16)))
		require.Zero(t, res.AmountsOutRaw[1].Sign())
	})

	t.Run("single token exact out", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveSingleTokenExactOut,
			MaxBptAmountIn:   wad(3),
			MinAmountsOutRaw: []*big.Int{wad(2), new(big.Int)},
		}, stablePool(), nil)
		require.NoError(t, err)
		require.Positive(t, res.BptAmountIn.Cmp(wad(2)))
		require.Equal(t, wad(2).String(), res.AmountsOutRaw[0].String())
	})

	t.Run("single token exact out above max bpt", func(t *testing.T) {
		_, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveSingleTokenExactOut,
			MaxBptAmountIn:   wad(2),
			MinAmountsOutRaw: []*big.Int{wad(2), new(big.Int)},
		}, stablePool(), nil)
		require.ErrorIs(t, err, vault.ErrBptAmountInAboveMax)
	})
}

func TestExitFeeHook(t *testing.T) {
	v := newVault(registry.Default())
	s := stablePool()
	s.HookType = hooks.ExitFeeType
	state := &hooks.ExitFeeState{RemoveLiquidityHookFeePercentage: big.NewInt(5e16)}

	res, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
		Kind:             pool.RemoveProportional,
		MaxBptAmountIn:   wad(200),
		MinAmountsOutRaw: []*big.Int{new(big.Int), new(big.Int)},
	}, s, state)
	require.NoError(t, err)
	require.Equal(t, []string{"95000000000000000000", "95000000000000000000"}, strs(res.AmountsOutRaw))
	// The withheld fee stays out of the returned balances.
	require.Equal(t, []string{"900000000000000000000", "900000000000000000000"}, strs(res.BalancesScaled18))

	_, err = v.RemoveLiquidity(&vault.RemoveLiquidityInput{
		Kind:             pool.RemoveSingleTokenExactIn,
		MaxBptAmountIn:   wad(2),
		MinAmountsOutRaw: []*big.Int{big.NewInt(1), new(big.Int)},
	}, s, state)
	require.ErrorIs(t, err, hooks.ErrUnsupportedRemoveKind)

	// Naming a hook without its state fails the lookup.
	_, err = v.RemoveLiquidity(&vault.RemoveLiquidityInput{
		Kind:             pool.RemoveProportional,
		MaxBptAmountIn:   wad(200),
		MinAmountsOutRaw: []*big.Int{new(big.Int), new(big.Int)},
	}, s, nil)
	require.ErrorIs(t, err, registry.ErrNoHookState)
}

func TestDirectionalFeeHook(t *testing.T) {
	v := newVault(registry.Default())
	s := stablePool()
	s.SwapFee = new(big.Int)
	s.HookType = hooks.DirectionalFeeType
	state := &hooks.DirectionalFeeState{Tokens: []string{tokenA, tokenB}}

	res, err := v.Swap(&vault.SwapInput{Kind: pool.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: wad(10)}, s, state)
	require.NoError(t, err)
	require.Positive(t, res.SwapFeeAmountScaled18.Sign())
}

func TestDirectionalFeeHookWithoutTokens(t *testing.T) {
	v := newVault(registry.Default())
	s := stablePool()
	s.SwapFee = new(big.Int)
	s.HookType = hooks.DirectionalFeeType

	res, err := v.Swap(&vault.SwapInput{Kind: pool.GivenIn, TokenIn: tokenB, TokenOut: tokenA, AmountRaw: wad(10)}, s, &hooks.DirectionalFeeState{})
	require.NoError(t, err)
	require.Positive(t, res.SwapFeeAmountScaled18.Sign())
}

func TestStableSurgeHook(t *testing.T) {
	v := newVault(registry.Default())
	state := &hooks.StableSurgeState{
		Amp:                      big.NewInt(1_000_000),
		SurgeThresholdPercentage: big.NewInt(3e17),
		MaxSurgeFeePercentage:    big.NewInt(95e16),
	}
	surgePool := func() *stable.State {
		s := stablePool()
		s.HookType = hooks.StableSurgeType
		return s
	}
	add := func(amounts ...*big.Int) error {
		_, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddUnbalanced,
			MaxAmountsInRaw: amounts,
			MinBptAmountOut: new(big.Int),
		}, surgePool(), state)
		return err
	}

	t.Run("unbalanced add past threshold", func(t *testing.T) {
		// 1000 / 3000 after the deposit
		err := add(wad(1000), new(big.Int))
		require.ErrorIs(t, err, vault.ErrAfterAddLiquidityHookFailed)
		require.Equal(t, pool.KindHookVeto, pool.KindOf(err))
	})

	t.Run("unbalanced add below threshold", func(t *testing.T) {
		require.NoError(t, add(wad(1), new(big.Int)))
	})

	t.Run("single token remove past threshold", func(t *testing.T) {
		// 600 / 1400 after the withdrawal
		_, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveSingleTokenExactOut,
			MaxBptAmountIn:   wad(1500),
			MinAmountsOutRaw: []*big.Int{wad(600), new(big.Int)},
		}, surgePool(), state)
		require.ErrorIs(t, err, vault.ErrAfterRemoveLiquidityHookFailed)
	})

	t.Run("proportional remove", func(t *testing.T) {
		res, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveProportional,
			MaxBptAmountIn:   wad(200),
			MinAmountsOutRaw: []*big.Int{new(big.Int), new(big.Int)},
		}, surgePool(), state)
		require.NoError(t, err)
		require.Equal(t, []string{"100000000000000000000", "100000000000000000000"}, strs(res.AmountsOutRaw))
	})
}

// vetoHook refuses whichever callbacks its flags enable.
type vetoHook struct {
	hooks.Default
	flags hooks.Flags
}

func (h vetoHook) Flags() hooks.Flags { return h.flags }

// shortBalances returns a successful before-swap result with the wrong
// number of balances.
type shortBalances struct {
	hooks.Default
}

func (shortBalances) Flags() hooks.Flags { return hooks.ShouldCallBeforeSwap }

func (shortBalances) OnBeforeSwap(*hooks.BeforeSwapParams) (hooks.BalancesResult, error) {
	return hooks.BalancesResult{Success: true, BalancesScaled18: []*big.Int{wad(1)}}, nil
}

func TestHookVeto(t *testing.T) {
	r := registry.Default()
	require.NoError(t, r.RegisterHook(registry.HookFactory{
		Tag: "Veto",
		New: func(state any) (hooks.Hook, error) {
			return vetoHook{flags: state.(hooks.Flags)}, nil
		},
	}))
	require.NoError(t, r.RegisterHook(registry.HookFactory{
		Tag: "ShortBalances",
		New: func(any) (hooks.Hook, error) { return shortBalances{}, nil },
	}))
	v := newVault(r)

	swap := func(hookType string, state any) error {
		s := stablePool()
		s.HookType = hookType
		_, err := v.Swap(&vault.SwapInput{Kind: pool.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: wad(1)}, s, state)
		require.Equal(t, []string{"1000000000000000000000", "1000000000000000000000"}, strs(s.BalancesLiveScaled18))
		return err
	}
	add := func(flags hooks.Flags) error {
		s := stablePool()
		s.HookType = "Veto"
		_, err := v.AddLiquidity(&vault.AddLiquidityInput{
			Kind:            pool.AddProportional,
			MaxAmountsInRaw: []*big.Int{wad(100), wad(100)},
			MinBptAmountOut: wad(200),
		}, s, flags)
		return err
	}
	remove := func(flags hooks.Flags) error {
		s := stablePool()
		s.HookType = "Veto"
		_, err := v.RemoveLiquidity(&vault.RemoveLiquidityInput{
			Kind:             pool.RemoveProportional,
			MaxBptAmountIn:   wad(200),
			MinAmountsOutRaw: []*big.Int{new(big.Int), new(big.Int)},
		}, s, flags)
		return err
	}

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"before swap", func() error { return swap("Veto", hooks.ShouldCallBeforeSwap) }, vault.ErrBeforeSwapHookFailed},
		{"after swap", func() error { return swap("Veto", hooks.ShouldCallAfterSwap) }, vault.ErrAfterSwapHookFailed},
		{"short balances", func() error { return swap("ShortBalances", struct{}{}) }, vault.ErrBeforeSwapHookFailed},
		{"before add", func() error { return add(hooks.ShouldCallBeforeAddLiquidity) }, vault.ErrBeforeAddLiquidityHookFailed},
		{"after add", func() error { return add(hooks.ShouldCallAfterAddLiquidity) }, vault.ErrAfterAddLiquidityHookFailed},
		{"before remove", func() error { return remove(hooks.ShouldCallBeforeRemoveLiquidity) }, vault.ErrBeforeRemoveLiquidityHookFailed},
		{"after remove", func() error { return remove(hooks.ShouldCallAfterRemoveLiquidity) }, vault.ErrAfterRemoveLiquidityHookFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, pool.KindHookVeto, pool.KindOf(err))
		})
	}

	// A dynamic fee hook that reports failure leaves the static fee.
	s := stablePool()
	s.HookType = "Veto"
	res, err := v.Swap(&vault.SwapInput{Kind: pool.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: wad(1)}, s, hooks.ShouldCallComputeDynamicSwapFee)
	require.NoError(t, err)
	require.Equal(t, "9999990009990020", res.SwapFeeAmountScaled18.String())
}
