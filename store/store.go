// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store persists pool snapshots between operations. The engine
// never writes balances back; callers that want each operation to observe
// the previous one save the returned state here and sequence their own
// updates per pool.
package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/amm/pool"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var keyPrefix = []byte("pool/")

var (
	ErrSnapshotNotFound = pool.NewError(pool.KindLookup, "pool snapshot not found")
	ErrInvalidSnapshot  = errors.New("invalid pool snapshot")
)

// Snapshot is the stored form of a pool: its type tag, its JSON state and
// the JSON state of its hook, if any.
type Snapshot struct {
	PoolType  string              `json:"poolType"`
	Pool      jsoniter.RawMessage `json:"pool"`
	HookState jsoniter.RawMessage `json:"hookState,omitempty"`
}

// Decoder turns a stored pool blob back into a typed state.
type Decoder interface {
	DecodePool(tag string, data []byte) (pool.State, error)
}

// NewSnapshot encodes s and its hook state.
func NewSnapshot(s pool.State, hookState any) (*Snapshot, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{PoolType: s.PoolBase().PoolType, Pool: data}
	if hookState != nil {
		if snap.HookState, err = json.Marshal(hookState); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// State decodes the pool state with d.
func (s *Snapshot) State(d Decoder) (pool.State, error) {
	return d.DecodePool(s.PoolType, s.Pool)
}

// Hook returns the raw hook state, or nil when the pool has none.
func (s *Snapshot) Hook() any {
	if len(s.HookState) == 0 {
		return nil
	}
	return s.HookState
}

// Fingerprint identifies the content of an encoded snapshot.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FingerprintOf returns the blake3-256 digest of blob.
func FingerprintOf(blob []byte) Fingerprint {
	return blake3.Sum256(blob)
}

// Store keeps the latest snapshot of each pool in a key-value database.
type Store struct {
	db database.Database
	mu sync.Mutex
}

// New returns a store over db.
func New(db database.Database) *Store {
	return &Store{db: db}
}

// Key returns the database key of a pool address. Hex addresses are
// normalised so that differently cased inputs share a key.
func Key(address string) []byte {
	if common.IsHexAddress(address) {
		address = common.HexToAddress(address).Hex()
	}
	return append(append([]byte(nil), keyPrefix...), strings.ToLower(address)...)
}

// Save stores snap under address and returns the fingerprint of the
// stored bytes.
func (s *Store) Save(address string, snap *Snapshot) (Fingerprint, error) {
	if snap == nil || snap.PoolType == "" || len(snap.Pool) == 0 {
		return Fingerprint{}, ErrInvalidSnapshot
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return Fingerprint{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Put(Key(address), blob); err != nil {
		return Fingerprint{}, err
	}
	return FingerprintOf(blob), nil
}

// Load returns the snapshot stored under address.
func (s *Store) Load(address string) (*Snapshot, error) {
	snap, _, err := s.LoadWithFingerprint(address)
	return snap, err
}

// LoadWithFingerprint returns the snapshot stored under address together
// with the fingerprint Save returned for it.
func (s *Store) LoadWithFingerprint(address string) (*Snapshot, Fingerprint, error) {
	blob, err := s.db.Get(Key(address))
	if errors.Is(err, database.ErrNotFound) {
		return nil, Fingerprint{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, address)
	}
	if err != nil {
		return nil, Fingerprint{}, err
	}
	snap := new(Snapshot)
	if err := json.Unmarshal(blob, snap); err != nil {
		return nil, Fingerprint{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return snap, FingerprintOf(blob), nil
}

// Has reports whether a snapshot is stored under address.
func (s *Store) Has(address string) (bool, error) {
	return s.db.Has(Key(address))
}

// Delete removes the snapshot stored under address.
func (s *Store) Delete(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Delete(Key(address))
}

// List returns the stored pool addresses in key order.
func (s *Store) List() ([]string, error) {
	it := s.db.NewIteratorWithPrefix(keyPrefix)
	defer it.Release()

	var addresses []string
	for it.Next() {
		addresses = append(addresses, string(it.Key()[len(keyPrefix):]))
	}
	return addresses, it.Error()
}
