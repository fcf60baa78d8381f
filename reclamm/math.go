// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reclamm

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

var (
	ErrNegativeAmountOut           = pool.NewError(pool.KindPoolUnsafe, "reClammMath: NegativeAmountOut")
	ErrAmountOutGreaterThanBalance = pool.NewError(pool.KindPoolUnsafe, "reClammMath: AmountOutGreaterThanBalance")
	ErrTokenBalanceTooLow          = pool.NewError(pool.KindPoolUnsafe, "reClammPool: TokenBalanceTooLow")
	ErrPoolCenterednessTooLow      = pool.NewError(pool.KindPoolUnsafe, "reClammPool: PoolCenterednessTooLow")
)

var ray = fixedpoint.Pow10(36)

// PriceRatioState describes a scheduled move of the fourth root of the
// price ratio between two timestamps.
type PriceRatioState struct {
	UpdateStartTime           uint64   `json:"priceRatioUpdateStartTime"`
	UpdateEndTime             uint64   `json:"priceRatioUpdateEndTime"`
	StartFourthRootPriceRatio *big.Int `json:"startFourthRootPriceRatio"`
	EndFourthRootPriceRatio   *big.Int `json:"endFourthRootPriceRatio"`
}

// VirtualBalances is the result of advancing the virtual balances to a
// point in time. Changed reports whether they differ from the last stored
// values; persisting them is up to the caller.
type VirtualBalances struct {
	A       *big.Int
	B       *big.Int
	Changed bool
}

// VirtualBalanceInputs are the stored values virtual balances are derived
// from.
type VirtualBalanceInputs struct {
	Now                 uint64
	LastTimestamp       uint64
	LastVirtualBalanceA *big.Int
	LastVirtualBalanceB *big.Int
	// DailyPriceShiftBase is the per-second decay factor of the
	// overvalued virtual balance while the pool is off center.
	DailyPriceShiftBase *big.Int
	CenterednessMargin  *big.Int
	PriceRatio          PriceRatioState
}

// ComputeCurrentVirtualBalances advances the virtual balances from
// LastTimestamp to Now. It is pure: nothing in in is modified.
func ComputeCurrentVirtualBalances(balancesScaled18 []*big.Int, in *VirtualBalanceInputs) (*VirtualBalances, error) {
	if in.LastTimestamp == in.Now {
		return &VirtualBalances{
			A: fixedpoint.Copy(in.LastVirtualBalanceA),
			B: fixedpoint.Copy(in.LastVirtualBalanceB),
		}, nil
	}

	vA, vB := fixedpoint.Copy(in.LastVirtualBalanceA), fixedpoint.Copy(in.LastVirtualBalanceB)
	fourthRoot, err := ComputeFourthRootPriceRatio(in.Now, &in.PriceRatio)
	if err != nil {
		return nil, err
	}
	aboveCenter, err := IsAboveCenter(balancesScaled18, vA, vB)
	if err != nil {
		return nil, err
	}

	var changed bool
	if in.Now > in.PriceRatio.UpdateStartTime && in.LastTimestamp < in.PriceRatio.UpdateEndTime {
		vA, vB, err = virtualBalancesUpdatingPriceRatio(fourthRoot, balancesScaled18, vA, vB, aboveCenter)
		if err != nil {
			return nil, err
		}
		changed = true
	}

	inRange, err := IsPoolWithinTargetRange(balancesScaled18, vA, vB, in.CenterednessMargin)
	if err != nil {
		return nil, err
	}
	if !inRange {
		vA, vB, err = virtualBalancesUpdatingPriceRange(fourthRoot, balancesScaled18, vA, vB, aboveCenter, in.DailyPriceShiftBase, in.Now-in.LastTimestamp)
		if err != nil {
			return nil, err
		}
		changed = true
	}
	return &VirtualBalances{A: vA, B: vB, Changed: changed}, nil
}

// IsPoolWithinTargetRange reports whether the centeredness is at least
// margin.
func IsPoolWithinTargetRange(balancesScaled18 []*big.Int, vA, vB, margin *big.Int) (bool, error) {
	c, err := ComputeCenteredness(balancesScaled18, vA, vB)
	if err != nil {
		return false, err
	}
	return c.Cmp(margin) >= 0, nil
}

// ComputeFourthRootPriceRatio interpolates geometrically between the start
// and end values of s.
func ComputeFourthRootPriceRatio(now uint64, s *PriceRatioState) (*big.Int, error) {
	if now >= s.UpdateEndTime {
		return fixedpoint.Copy(s.EndFourthRootPriceRatio), nil
	}
	if now <= s.UpdateStartTime {
		return fixedpoint.Copy(s.StartFourthRootPriceRatio), nil
	}

	elapsed := new(big.Int).SetUint64(now - s.UpdateStartTime)
	duration := new(big.Int).SetUint64(s.UpdateEndTime - s.UpdateStartTime)
	exponent, err := fixedpoint.DivDown(elapsed, duration)
	if err != nil {
		return nil, err
	}
	endPow, err := fixedpoint.Pow(s.EndFourthRootPriceRatio, exponent)
	if err != nil {
		return nil, err
	}
	startPow, err := fixedpoint.Pow(s.StartFourthRootPriceRatio, exponent)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Quo(fixedpoint.Mul(s.StartFourthRootPriceRatio, endPow), startPow)
}

// IsAboveCenter reports whether token A is the undervalued side, that is
// the real balance ratio exceeds the virtual one.
func IsAboveCenter(balancesScaled18 []*big.Int, vA, vB *big.Int) (bool, error) {
	if balancesScaled18[1].Sign() == 0 {
		return true, nil
	}
	realRatio, err := fixedpoint.DivDown(balancesScaled18[0], balancesScaled18[1])
	if err != nil {
		return false, err
	}
	virtual, err := fixedpoint.DivDown(vA, vB)
	if err != nil {
		return false, err
	}
	return realRatio.Cmp(virtual) > 0, nil
}

// ComputeCenteredness returns how close the pool is to its price center,
// 1e18 being centered. It rounds up.
func ComputeCenteredness(balancesScaled18 []*big.Int, vA, vB *big.Int) (*big.Int, error) {
	if balancesScaled18[0].Sign() == 0 || balancesScaled18[1].Sign() == 0 {
		return new(big.Int), nil
	}
	aboveCenter, err := IsAboveCenter(balancesScaled18, vA, vB)
	if err != nil {
		return nil, err
	}
	vUnder, vOver := vA, vB
	bUnder, bOver := balancesScaled18[0], balancesScaled18[1]
	if !aboveCenter {
		vUnder, vOver = vB, vA
		bUnder, bOver = balancesScaled18[1], balancesScaled18[0]
	}
	n, err := fixedpoint.Quo(fixedpoint.Mul(bOver, vUnder), bUnder)
	if err != nil {
		return nil, err
	}
	return fixedpoint.DivUp(n, vOver)
}

// virtualBalancesUpdatingPriceRatio keeps the centeredness constant while
// the price ratio moves.
func virtualBalancesUpdatingPriceRatio(fourthRoot *big.Int, balancesScaled18 []*big.Int, vA, vB *big.Int, aboveCenter bool) (*big.Int, *big.Int, error) {
	bUnder, bOver := balancesScaled18[0], balancesScaled18[1]
	if !aboveCenter {
		bUnder, bOver = balancesScaled18[1], balancesScaled18[0]
	}
	c, err := ComputeCenteredness(balancesScaled18, vA, vB)
	if err != nil {
		return nil, nil, err
	}

	// Vu = Ro (1 + C + sqrt(1 + C (C + 4 Q0 - 2))) / 2 (Q0 - 1), with the
	// square root taken over 36 decimals.
	sqrtPriceRatio := fixedpoint.MulUp(fourthRoot, fourthRoot)
	radicand := fixedpoint.Add(c, new(big.Int).Lsh(sqrtPriceRatio, 2))
	radicand.Sub(radicand, fixedpoint.TwoWAD)
	radicand.Mul(radicand, c)
	radicand.Add(radicand, ray)

	num := fixedpoint.Add(fixedpoint.WAD, c)
	num.Add(num, fixedpoint.Sqrt(radicand))
	num.Mul(num, bOver)
	den := new(big.Int).Lsh(fixedpoint.Sub(sqrtPriceRatio, fixedpoint.WAD), 1)
	vUnder, err := fixedpoint.Quo(num, den)
	if err != nil {
		return nil, nil, err
	}

	t, err := fixedpoint.Quo(fixedpoint.Mul(bOver, vUnder), bUnder)
	if err != nil {
		return nil, nil, err
	}
	vOver, err := fixedpoint.DivDown(t, c)
	if err != nil {
		return nil, nil, err
	}
	if aboveCenter {
		return vUnder, vOver, nil
	}
	return vOver, vUnder, nil
}

// virtualBalancesUpdatingPriceRange decays the overvalued virtual balance
// by shiftBase^elapsed and solves the undervalued one to match the price
// ratio.
func virtualBalancesUpdatingPriceRange(fourthRoot *big.Int, balancesScaled18 []*big.Int, vA, vB *big.Int, aboveCenter bool, shiftBase *big.Int, elapsed uint64) (*big.Int, *big.Int, error) {
	priceRatio := fixedpoint.MulUp(fourthRoot, fourthRoot)

	bUnder, bOver := balancesScaled18[0], balancesScaled18[1]
	vOver := vB
	if !aboveCenter {
		bUnder, bOver = balancesScaled18[1], balancesScaled18[0]
		vOver = vA
	}

	exponent := new(big.Int).Mul(new(big.Int).SetUint64(elapsed), fixedpoint.WAD)
	decay, err := fixedpoint.Pow(shiftBase, exponent)
	if err != nil {
		return nil, nil, err
	}
	vOver = fixedpoint.MulDown(vOver, decay)

	// Vu = Ru (Vo + Ro) / ((Q - 1) Vo - Ro)
	den := fixedpoint.MulDown(fixedpoint.Sub(priceRatio, fixedpoint.WAD), vOver)
	den.Sub(den, bOver)
	vUnder, err := fixedpoint.Quo(fixedpoint.Mul(bUnder, fixedpoint.Add(vOver, bOver)), den)
	if err != nil {
		return nil, nil, err
	}
	if aboveCenter {
		return vUnder, vOver, nil
	}
	return vOver, vUnder, nil
}

// ComputeInvariant returns (x + vA)(y + vB).
func ComputeInvariant(balancesScaled18 []*big.Int, vA, vB *big.Int, rounding pool.Rounding) *big.Int {
	mul := fixedpoint.MulUp
	if rounding == pool.RoundDown {
		mul = fixedpoint.MulDown
	}
	return mul(fixedpoint.Add(balancesScaled18[0], vA), fixedpoint.Add(balancesScaled18[1], vB))
}

func orient(vA, vB *big.Int, indexIn int) (vIn, vOut *big.Int) {
	if indexIn == 0 {
		return vA, vB
	}
	return vB, vA
}

// ComputeOutGivenIn swaps against the real plus virtual balances.
func ComputeOutGivenIn(balancesScaled18 []*big.Int, vA, vB *big.Int, indexIn, indexOut int, amountIn *big.Int) (*big.Int, error) {
	vIn, vOut := orient(vA, vB, indexIn)
	inv := ComputeInvariant(balancesScaled18, vA, vB, pool.RoundUp)

	newTotalOut, err := fixedpoint.DivUp(inv, fixedpoint.Add(fixedpoint.Add(balancesScaled18[indexIn], vIn), amountIn))
	if err != nil {
		return nil, err
	}
	totalOut := fixedpoint.Add(balancesScaled18[indexOut], vOut)
	if newTotalOut.Cmp(totalOut) > 0 {
		return nil, ErrNegativeAmountOut
	}
	out := totalOut.Sub(totalOut, newTotalOut)
	if out.Cmp(balancesScaled18[indexOut]) > 0 {
		return nil, ErrAmountOutGreaterThanBalance
	}
	return out, nil
}

// ComputeInGivenOut returns the amount in for an exact amount out.
func ComputeInGivenOut(balancesScaled18 []*big.Int, vA, vB *big.Int, indexIn, indexOut int, amountOut *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balancesScaled18[indexOut]) > 0 {
		return nil, ErrAmountOutGreaterThanBalance
	}
	inv := ComputeInvariant(balancesScaled18, vA, vB, pool.RoundUp)
	vIn, vOut := orient(vA, vB, indexIn)

	remaining := fixedpoint.Add(balancesScaled18[indexOut], vOut)
	remaining.Sub(remaining, amountOut)
	in, err := fixedpoint.DivUp(inv, remaining)
	if err != nil {
		return nil, err
	}
	in.Sub(in, balancesScaled18[indexIn])
	return in.Sub(in, vIn), nil
}
