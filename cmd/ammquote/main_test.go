// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	log "github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/reclamm"
	"github.com/luxfi/amm/registry"
	"github.com/luxfi/amm/vault"
	"github.com/luxfi/amm/weighted"
)

const bareWeighted = `{
	"poolAddress": "0x0000000000000000000000000000000000000a11",
	"poolType": "WEIGHTED",
	"tokens": ["0x0000000000000000000000000000000000000001", "0x0000000000000000000000000000000000000002"],
	"scalingFactors": [1, 1000000000000],
	"tokenRates": [1000000000000000000, 1000000000000000000],
	"balancesLiveScaled18": [1000000000000000000, 1000000000000000000],
	"swapFee": 0,
	"aggregateSwapFee": 0,
	"totalSupply": 2000000000000000000,
	"weights": [500000000000000000, 500000000000000000]
}`

// offCenterReClamm was last updated an hour before it is evaluated.
const offCenterReClamm = `{
	"poolAddress": "0x0000000000000000000000000000000000000c1a",
	"poolType": "RECLAMM",
	"tokens": ["0x0000000000000000000000000000000000000001", "0x0000000000000000000000000000000000000002"],
	"scalingFactors": [1, 1],
	"tokenRates": [1000000000000000000, 1000000000000000000],
	"balancesLiveScaled18": [90000000000000000000, 5000000000000000000],
	"swapFee": 0,
	"aggregateSwapFee": 0,
	"totalSupply": 1000000000000000000000,
	"lastVirtualBalances": [100000000000000000000, 100000000000000000000],
	"dailyPriceShiftBase": 999988425925925926,
	"centerednessMargin": 200000000000000000,
	"lastTimestamp": 1000,
	"currentTimestamp": 4600,
	"startFourthRootPriceRatio": 1189207115002721066,
	"endFourthRootPriceRatio": 1189207115002721066
}`

func TestParseSnapshot(t *testing.T) {
	snap, err := parseSnapshot([]byte(bareWeighted))
	require.NoError(t, err)
	require.Equal(t, weighted.PoolType, snap.PoolType)
	require.Nil(t, snap.Hook())

	envelope := `{"poolType":"WEIGHTED","pool":` + bareWeighted + `,"hookState":{"tokens":[]}}`
	snap, err = parseSnapshot([]byte(envelope))
	require.NoError(t, err)
	require.Equal(t, weighted.PoolType, snap.PoolType)
	require.NotNil(t, snap.Hook())

	_, err = parseSnapshot([]byte(`{"tokens":[]}`))
	require.ErrorIs(t, err, errNoPoolType)

	_, err = parseSnapshot([]byte(`[`))
	require.Error(t, err)
}

func TestTokenDecimals(t *testing.T) {
	snap, err := parseSnapshot([]byte(bareWeighted))
	require.NoError(t, err)
	s, err := snap.State(registry.Default())
	require.NoError(t, err)

	require.Equal(t, int32(18), tokenDecimals(s.PoolBase(), 0))
	require.Equal(t, int32(6), tokenDecimals(s.PoolBase(), 1))
	require.Equal(t, int32(18), tokenDecimals(s.PoolBase(), -1))
}

func TestRunWritesNextSnapshot(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "pool.json")
	out := filepath.Join(dir, "next.json")
	require.NoError(t, os.WriteFile(in, []byte(bareWeighted), 0o644))

	err := run(log.NewTestLogger(log.InfoLevel), in, out, &vault.SwapInput{
		Kind:      pool.GivenIn,
		TokenIn:   "0x0000000000000000000000000000000000000001",
		TokenOut:  "0x0000000000000000000000000000000000000002",
		AmountRaw: big.NewInt(1e17),
	})
	require.NoError(t, err)

	next, err := readSnapshot(out)
	require.NoError(t, err)
	s, err := next.State(registry.Default())
	require.NoError(t, err)
	require.Equal(t, "1100000000000000000", s.PoolBase().BalancesLiveScaled18[0].String())
	require.Negative(t, s.PoolBase().BalancesLiveScaled18[1].Cmp(big.NewInt(1e18)))
}

func TestRunPersistsVirtualBalances(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "pool.json")
	out := filepath.Join(dir, "next.json")
	require.NoError(t, os.WriteFile(in, []byte(offCenterReClamm), 0o644))

	err := run(log.NewTestLogger(log.InfoLevel), in, out, &vault.SwapInput{
		Kind:      pool.GivenIn,
		TokenIn:   "0x0000000000000000000000000000000000000002",
		TokenOut:  "0x0000000000000000000000000000000000000001",
		AmountRaw: big.NewInt(1e17),
	})
	require.NoError(t, err)

	next, err := readSnapshot(out)
	require.NoError(t, err)
	s, err := next.State(registry.Default())
	require.NoError(t, err)
	st, ok := s.(*reclamm.State)
	require.True(t, ok)
	require.Equal(t, uint64(4600), st.LastTimestamp)
	require.Equal(t, "261516348914193079150", st.LastVirtualBalances[0].String())
	require.Equal(t, "95918922582134362300", st.LastVirtualBalances[1].String())
	require.Equal(t, "5100000000000000000", st.BalancesLiveScaled18[1].String())
}
