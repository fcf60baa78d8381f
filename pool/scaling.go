// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
)

// A scaling factor is 10^(18-decimals), a plain integer. A token rate is
// 18-decimal fixed point. Scaled18 amounts are raw * factor * rate.

// ToScaled18RoundDown converts a raw amount to scaled18.
func ToScaled18RoundDown(amount, scalingFactor, rate *big.Int) *big.Int {
	return fixedpoint.MulDown(fixedpoint.Mul(amount, scalingFactor), rate)
}

// ToScaled18RoundUp converts a raw amount to scaled18.
func ToScaled18RoundUp(amount, scalingFactor, rate *big.Int) *big.Int {
	return fixedpoint.MulUp(fixedpoint.Mul(amount, scalingFactor), rate)
}

// ToRawRoundDown undoes scaling and rate. The divisor is a precise
// fixed point value so only the final division rounds.
func ToRawRoundDown(amount, scalingFactor, rate *big.Int) (*big.Int, error) {
	return fixedpoint.DivDown(amount, fixedpoint.Mul(scalingFactor, rate))
}

// ToRawRoundUp undoes scaling and rate.
func ToRawRoundUp(amount, scalingFactor, rate *big.Int) (*big.Int, error) {
	return fixedpoint.DivUp(amount, fixedpoint.Mul(scalingFactor, rate))
}

// ToScaled18RoundDownAll converts each amount with its token's factor and
// rate.
func ToScaled18RoundDownAll(amounts, scalingFactors, rates []*big.Int) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i := range amounts {
		out[i] = ToScaled18RoundDown(amounts[i], scalingFactors[i], rates[i])
	}
	return out
}

// ToScaled18RoundUpAll converts each amount with its token's factor and
// rate.
func ToScaled18RoundUpAll(amounts, scalingFactors, rates []*big.Int) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i := range amounts {
		out[i] = ToScaled18RoundUp(amounts[i], scalingFactors[i], rates[i])
	}
	return out
}

// ComputeRateRoundUp bumps a rate that carries sub-WAD precision by one
// unit, so amounts leaving the vault are never overstated.
func ComputeRateRoundUp(rate *big.Int) *big.Int {
	q := new(big.Int).Quo(rate, fixedpoint.WAD)
	q.Mul(q, fixedpoint.WAD)
	if q.Cmp(rate) == 0 {
		return new(big.Int).Set(rate)
	}
	return new(big.Int).Add(rate, big.NewInt(1))
}
