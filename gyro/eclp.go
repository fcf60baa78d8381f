// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

// ECLPPoolType is the registry tag of elliptic CLP pools.
const ECLPPoolType = "GYROE"

var ErrECLPParamsInvalid = pool.NewError(pool.KindCallerError, "ECLP params invalid")

// ECLPState is an elliptic CLP pool snapshot.
type ECLPState struct {
	pool.Base
	Params  ECLPParams        `json:"eclpParams"`
	Derived DerivedECLPParams `json:"derivedEclpParams"`
}

// ECLPPool is the two-asset curve obtained by rotating and stretching a
// circle onto the price range [alpha, beta].
type ECLPPool struct {
	params  ECLPParams
	derived DerivedECLPParams
}

var _ pool.Invariant = (*ECLPPool)(nil)

// NewECLPPool returns the curve for s.
func NewECLPPool(s *ECLPState) (*ECLPPool, error) {
	p, d := s.Params, s.Derived
	for _, v := range []*big.Int{
		p.Alpha, p.Beta, p.C, p.S, p.Lambda,
		d.TauAlpha.X, d.TauAlpha.Y, d.TauBeta.X, d.TauBeta.Y,
		d.U, d.V, d.W, d.Z, d.DSq,
	} {
		if v == nil {
			return nil, ErrECLPParamsInvalid
		}
	}
	if p.Alpha.Sign() <= 0 || p.Beta.Cmp(p.Alpha) <= 0 || p.Lambda.Cmp(one) < 0 || d.DSq.Sign() <= 0 {
		return nil, ErrECLPParamsInvalid
	}
	return &ECLPPool{
		params: ECLPParams{
			Alpha:  fixedpoint.Copy(p.Alpha),
			Beta:   fixedpoint.Copy(p.Beta),
			C:      fixedpoint.Copy(p.C),
			S:      fixedpoint.Copy(p.S),
			Lambda: fixedpoint.Copy(p.Lambda),
		},
		derived: DerivedECLPParams{
			TauAlpha: Vector2{X: fixedpoint.Copy(d.TauAlpha.X), Y: fixedpoint.Copy(d.TauAlpha.Y)},
			TauBeta:  Vector2{X: fixedpoint.Copy(d.TauBeta.X), Y: fixedpoint.Copy(d.TauBeta.Y)},
			U:        fixedpoint.Copy(d.U),
			V:        fixedpoint.Copy(d.V),
			W:        fixedpoint.Copy(d.W),
			Z:        fixedpoint.Copy(d.Z),
			DSq:      fixedpoint.Copy(d.DSq),
		},
	}, nil
}

func (p *ECLPPool) math() *eclpMath {
	return newECLPMath(&p.params, &p.derived)
}

// OnSwap prices against the invariant vector (inv + 2 err, inv), which
// overestimates the offsets.
func (p *ECLPPool) OnSwap(params *pool.SwapParams) (*big.Int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	balances := params.BalancesLiveScaled18
	if len(balances) != 2 {
		return nil, pool.ErrInvalidTokenIndex
	}

	m := p.math()
	inv, invErr, err := m.invariantWithError(balances)
	if err != nil {
		return nil, err
	}
	r := Vector2{X: add(inv, mulInt(invErr, 2)), Y: inv}

	tokenInIsToken0 := params.IndexIn == 0
	if params.Kind == pool.GivenIn {
		return m.calcOutGivenIn(balances, params.AmountGivenScaled18, tokenInIsToken0, r)
	}
	return m.calcInGivenOut(balances, params.AmountGivenScaled18, tokenInIsToken0, r)
}

func (p *ECLPPool) ComputeInvariant(balances []*big.Int, rounding pool.Rounding) (*big.Int, error) {
	if len(balances) != 2 {
		return nil, pool.ErrInvalidTokenIndex
	}
	inv, invErr, err := p.math().invariantWithError(balances)
	if err != nil {
		return nil, err
	}
	if rounding == pool.RoundDown {
		return inv.Sub(inv, invErr), nil
	}
	return inv.Add(inv, invErr), nil
}

func (p *ECLPPool) ComputeBalance(balances []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error) {
	if len(balances) != 2 || tokenIndex < 0 || tokenIndex > 1 {
		return nil, pool.ErrInvalidTokenIndex
	}
	m := p.math()
	inv, invErr, err := m.invariantWithError(balances)
	if err != nil {
		return nil, err
	}

	// Both roundings of the invariant feed the offsets so the result stays
	// conservative whatever the signs of tau.
	r := Vector2{
		X: fixedpoint.MulUp(add(inv, invErr), invariantRatio),
		Y: fixedpoint.MulUp(sub(inv, invErr), invariantRatio),
	}
	if r.X.Cmp(MaxInvariant) > 0 {
		return nil, ErrMaxInvariantExceeded
	}

	var nb *big.Int
	if tokenIndex == 0 {
		nb = m.calcXGivenY(balances[1], r)
	} else {
		nb = m.calcYGivenX(balances[0], r)
	}
	if m.err != nil {
		return nil, m.err
	}
	return nb, nil
}

func (p *ECLPPool) MinimumInvariantRatio() *big.Int { return fixedpoint.Copy(ECLPMinInvariantRatio) }

func (p *ECLPPool) MaximumInvariantRatio() *big.Int { return fixedpoint.Copy(ECLPMaxInvariantRatio) }
