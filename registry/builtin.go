// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/luxfi/amm/buffer"
	"github.com/luxfi/amm/gyro"
	"github.com/luxfi/amm/hooks"
	"github.com/luxfi/amm/pool"
	"github.com/luxfi/amm/reclamm"
	"github.com/luxfi/amm/stable"
	"github.com/luxfi/amm/weighted"
)

// Default returns a registry holding every built-in pool and hook type.
func Default() *Registry {
	r := New()
	for _, f := range builtinPools() {
		if err := r.RegisterPool(f); err != nil {
			panic(err)
		}
	}
	for _, f := range builtinHooks() {
		if err := r.RegisterHook(f); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinPools() []PoolFactory {
	return []PoolFactory{
		{Tag: weighted.PoolType, New: curve(weighted.NewPool), Decode: decoder[weighted.State]()},
		{Tag: stable.PoolType, New: curve(stable.NewPool), Decode: decoder[stable.State]()},
		{Tag: gyro.CLPPoolType, New: curve(gyro.NewCLPPool), Decode: decoder[gyro.CLPState]()},
		{Tag: gyro.ECLPPoolType, New: curve(gyro.NewECLPPool), Decode: decoder[gyro.ECLPState]()},
		{Tag: reclamm.PoolType, New: curve(reclamm.NewPool), Decode: decoder[reclamm.State]()},
		{Tag: buffer.PoolType, Decode: decoder[buffer.State]()},
	}
}

func builtinHooks() []HookFactory {
	return []HookFactory{
		{Tag: hooks.ExitFeeType, New: hookState(hooks.NewExitFee)},
		{Tag: hooks.StableSurgeType, New: hookState(hooks.NewStableSurge)},
		{Tag: hooks.DirectionalFeeType, New: hookState(hooks.NewDirectionalFee)},
	}
}

// curve adapts a typed constructor. The nil checks keep a typed nil
// pointer from escaping as a non-nil interface.
func curve[T pool.State, C pool.Invariant](build func(T) (C, error)) func(pool.State) (pool.Invariant, error) {
	return func(s pool.State) (pool.Invariant, error) {
		t, ok := s.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrStateMismatch, s)
		}
		c, err := build(t)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// decoder returns a JSON decoder for state struct S.
func decoder[S any, P interface {
	*S
	pool.State
}]() func([]byte) (pool.State, error) {
	return func(data []byte) (pool.State, error) {
		p := P(new(S))
		if err := json.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStateMismatch, err)
		}
		return p, nil
	}
}

// hookState accepts the typed state, a pointer to it, or its JSON.
func hookState[S any, H hooks.Hook](build func(*S) (H, error)) func(any) (hooks.Hook, error) {
	return func(state any) (hooks.Hook, error) {
		var s *S
		switch v := state.(type) {
		case *S:
			if v == nil {
				return nil, ErrNoHookState
			}
			s = v
		case S:
			s = &v
		case []byte:
			s = new(S)
			if err := json.Unmarshal(v, s); err != nil {
				return nil, fmt.Errorf("%w: %w", hooks.ErrInvalidHookState, err)
			}
		case jsoniter.RawMessage:
			s = new(S)
			if err := json.Unmarshal(v, s); err != nil {
				return nil, fmt.Errorf("%w: %w", hooks.ErrInvalidHookState, err)
			}
		default:
			return nil, fmt.Errorf("%w: %T", hooks.ErrInvalidHookState, state)
		}
		h, err := build(s)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}
