// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNoPoolType = errors.New("snapshot has no poolType")

// readSnapshot accepts either a stored snapshot envelope or a bare pool
// state carrying its own poolType.
func readSnapshot(path string) (*store.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSnapshot(data)
}

func parseSnapshot(data []byte) (*store.Snapshot, error) {
	snap := new(store.Snapshot)
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Pool) == 0 {
		snap.Pool = append(jsoniter.RawMessage(nil), data...)
	}
	if snap.PoolType == "" {
		var head struct {
			PoolType string `json:"poolType"`
		}
		if err := json.Unmarshal(snap.Pool, &head); err != nil {
			return nil, fmt.Errorf("decode pool: %w", err)
		}
		snap.PoolType = head.PoolType
	}
	if snap.PoolType == "" {
		return nil, errNoPoolType
	}
	return snap, nil
}

func writeSnapshot(path string, snap *store.Snapshot) (store.Fingerprint, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return store.Fingerprint{}, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return store.Fingerprint{}, err
	}
	return store.FingerprintOf(data), nil
}

// tokenDecimals recovers a token's decimals from its scaling factor,
// 10^(18-decimals). Pools without factors are treated as 18 decimals.
func tokenDecimals(b *pool.Base, index int) int32 {
	if index < 0 || index >= len(b.ScalingFactors) || b.ScalingFactors[index] == nil {
		return 18
	}
	ten := big.NewInt(10)
	f := new(big.Int).Set(b.ScalingFactors[index])
	decimals := int32(18)
	for f.Cmp(ten) >= 0 && decimals > 0 {
		f.Quo(f, ten)
		decimals--
	}
	return decimals
}
