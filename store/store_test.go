// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"math/big"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/hooks"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/registry"
	"github.com/luxfi/amm/weighted"
)

const poolAddress = "0x00000000000000000000000000000000000000AA"

func wad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func weightedState() *weighted.State {
	return &weighted.State{
		Base: pool.Base{
			PoolAddress:          poolAddress,
			PoolType:             weighted.PoolType,
			Tokens:               []string{"0x01", "0x02"},
			ScalingFactors:       []*big.Int{big.NewInt(1), big.NewInt(1)},
			TokenRates:           []*big.Int{wad(1), wad(1)},
			BalancesLiveScaled18: []*big.Int{wad(100), wad(50)},
			SwapFee:              big.NewInt(1e16),
			AggregateSwapFee:     big.NewInt(0),
			TotalSupply:          wad(150),
			HookType:             hooks.ExitFeeType,
		},
		Weights: []*big.Int{big.NewInt(5e17), big.NewInt(5e17)},
	}
}

func TestSaveLoad(t *testing.T) {
	db := memdb.New()
	defer db.Close()

	s := New(db)
	snap, err := NewSnapshot(weightedState(), &hooks.ExitFeeState{RemoveLiquidityHookFeePercentage: big.NewInt(1e16)})
	require.NoError(t, err)
	require.Equal(t, weighted.PoolType, snap.PoolType)

	fp, err := s.Save(poolAddress, snap)
	require.NoError(t, err)
	require.Len(t, fp.String(), 64)

	ok, err := s.Has(poolAddress)
	require.NoError(t, err)
	require.True(t, ok)

	got, gotFp, err := s.LoadWithFingerprint(poolAddress)
	require.NoError(t, err)
	require.Equal(t, fp, gotFp)

	r := registry.Default()
	st, err := got.State(r)
	require.NoError(t, err)
	ws, ok := st.(*weighted.State)
	require.True(t, ok)
	require.Zero(t, wad(100).Cmp(ws.BalancesLiveScaled18[0]))
	require.Zero(t, big.NewInt(5e17).Cmp(ws.Weights[1]))

	h, err := r.Hook(ws.HookType, got.Hook())
	require.NoError(t, err)
	require.IsType(t, &hooks.ExitFee{}, h)
}

func TestKeyNormalisation(t *testing.T) {
	db := memdb.New()
	defer db.Close()

	s := New(db)
	snap, err := NewSnapshot(weightedState(), nil)
	require.NoError(t, err)
	require.Nil(t, snap.Hook())

	_, err = s.Save(poolAddress, snap)
	require.NoError(t, err)

	// Same address in lower case resolves to the same key.
	_, err = s.Load("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	_, err = s.Save("buffer-usdc", snap)
	require.NoError(t, err)

	addrs, err := s.List()
	require.NoError(t, err)
	require.Equal(t, []string{"0x00000000000000000000000000000000000000aa", "buffer-usdc"}, addrs)

	require.NoError(t, s.Delete(poolAddress))
	ok, err := s.Has(poolAddress)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	db := memdb.New()
	defer db.Close()

	s := New(db)
	_, err := s.Load(poolAddress)
	require.ErrorIs(t, err, ErrSnapshotNotFound)
	require.Equal(t, pool.KindLookup, pool.KindOf(err))

	require.NoError(t, db.Put(Key(poolAddress), []byte("not json")))
	_, err = s.Load(poolAddress)
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = s.Save(poolAddress, &Snapshot{})
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	db := memdb.New()
	defer db.Close()

	s := New(db)
	state := weightedState()
	snap, err := NewSnapshot(state, nil)
	require.NoError(t, err)
	fp1, err := s.Save(poolAddress, snap)
	require.NoError(t, err)

	state.BalancesLiveScaled18[0] = wad(101)
	snap, err = NewSnapshot(state, nil)
	require.NoError(t, err)
	fp2, err := s.Save(poolAddress, snap)
	require.NoError(t, err)

	require.NotEqual(t, fp1, fp2)
	require.Equal(t, FingerprintOf([]byte("x")), FingerprintOf([]byte("x")))
}
