// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry maps pool-type and hook-type tags to constructors.
// It sits outside the settlement core: the vault only sees it through the
// vault.Resolver interface.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/luxfi/amm/hooks"
	"github.com/luxfi/amm/pool"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrUnsupportedPoolType = pool.NewError(pool.KindLookup, "Unsupported Pool Type")
	ErrUnsupportedHookType = pool.NewError(pool.KindLookup, "Unsupported Hook Type")
	ErrNoHookState         = pool.NewError(pool.KindLookup, "No state for Hook")
	ErrNoInvariant         = pool.NewError(pool.KindUnsupported, "pool type has no invariant")
	ErrStateMismatch       = pool.NewError(pool.KindCallerError, "state does not match its type tag")

	ErrEmptyTag     = errors.New("empty type tag")
	ErrAlreadyInUse = errors.New("type tag already registered")
)

// PoolFactory builds the curve of a pool type and decodes its snapshots.
// New is nil for types that are not invariant curves, such as buffers.
type PoolFactory struct {
	Tag    string
	New    func(s pool.State) (pool.Invariant, error)
	Decode func(data []byte) (pool.State, error)
}

// HookFactory builds a hook from its per-pool state. The state is either
// the hook's typed state value or its JSON encoding.
type HookFactory struct {
	Tag string
	New func(state any) (hooks.Hook, error)
}

// Registry holds pool and hook factories. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]PoolFactory
	hooks map[string]HookFactory
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		pools: make(map[string]PoolFactory),
		hooks: make(map[string]HookFactory),
	}
}

// RegisterPool adds f. A tag may be registered once.
func (r *Registry) RegisterPool(f PoolFactory) error {
	if f.Tag == "" {
		return ErrEmptyTag
	}
	if f.Decode == nil {
		return fmt.Errorf("pool type %s has no decoder", f.Tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[f.Tag]; ok {
		return fmt.Errorf("%w: pool type %s", ErrAlreadyInUse, f.Tag)
	}
	r.pools[f.Tag] = f
	return nil
}

// RegisterHook adds f. A tag may be registered once.
func (r *Registry) RegisterHook(f HookFactory) error {
	if f.Tag == "" {
		return ErrEmptyTag
	}
	if f.New == nil {
		return fmt.Errorf("hook type %s has no constructor", f.Tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hooks[f.Tag]; ok {
		return fmt.Errorf("%w: hook type %s", ErrAlreadyInUse, f.Tag)
	}
	r.hooks[f.Tag] = f
	return nil
}

func (r *Registry) poolFactory(tag string) (PoolFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.pools[tag]
	if !ok {
		return PoolFactory{}, fmt.Errorf("%w: %s", ErrUnsupportedPoolType, tag)
	}
	return f, nil
}

// Invariant builds the curve for s from its PoolType tag.
func (r *Registry) Invariant(s pool.State) (pool.Invariant, error) {
	tag := s.PoolBase().PoolType
	f, err := r.poolFactory(tag)
	if err != nil {
		return nil, err
	}
	if f.New == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoInvariant, tag)
	}
	return f.New(s)
}

// Hook builds the hook named hookType. A missing state is an error even
// for hooks that ignore it.
func (r *Registry) Hook(hookType string, hookState any) (hooks.Hook, error) {
	r.mu.RLock()
	f, ok := r.hooks[hookType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHookType, hookType)
	}
	if hookState == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoHookState, hookType)
	}
	return f.New(hookState)
}

// DecodePool decodes a JSON snapshot of pool type tag.
func (r *Registry) DecodePool(tag string, data []byte) (pool.State, error) {
	f, err := r.poolFactory(tag)
	if err != nil {
		return nil, err
	}
	s, err := f.Decode(data)
	if err != nil {
		return nil, err
	}
	if got := s.PoolBase().PoolType; got != "" && got != tag {
		return nil, fmt.Errorf("%w: %s tagged %s", ErrStateMismatch, got, tag)
	}
	s.PoolBase().PoolType = tag
	return s, nil
}

// PoolTypes returns the registered pool tags in sorted order.
func (r *Registry) PoolTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.pools))
	for tag := range r.pools {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HookTypes returns the registered hook tags in sorted order.
func (r *Registry) HookTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.hooks))
	for tag := range r.hooks {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
