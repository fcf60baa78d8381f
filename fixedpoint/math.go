// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"errors"
	"math/big"
)

var (
	ErrZeroDivision = errors.New("zero division")
	ErrMathOverflow = errors.New("math overflow")
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)

	// WAD is 1.0 in 18-decimal fixed point.
	WAD = big.NewInt(1e18)
	// TwoWAD is 2.0.
	TwoWAD = big.NewInt(2e18)
	// FourWAD is 4.0.
	FourWAD = big.NewInt(4e18)

	// MaxPowRelativeError bounds the relative error of Pow (1e-14).
	MaxPowRelativeError = big.NewInt(10000)
)

// Int returns a new big.Int holding v.
func Int(v int64) *big.Int {
	return big.NewInt(v)
}

// MustInt parses a base-10 integer. It panics on malformed input and is
// meant for constants.
func MustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: invalid integer " + s)
	}
	return v
}

// Pow10 returns 10^n.
func Pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// Copy returns a copy of x.
func Copy(x *big.Int) *big.Int {
	return new(big.Int).Set(x)
}

// CopyAll returns a deep copy of xs.
func CopyAll(xs []*big.Int) []*big.Int {
	out := make([]*big.Int, len(xs))
	for i, x := range xs {
		out[i] = new(big.Int).Set(x)
	}
	return out
}

// Add returns a + b.
func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub returns a - b.
func Sub(a, b *big.Int) *big.Int {
	return new(big.Int).Sub(a, b)
}

// Mul returns a * b without rescaling.
func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// Quo returns a / b truncated toward zero, without rescaling.
func Quo(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	return new(big.Int).Quo(a, b), nil
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Max returns the larger of a and b.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// MulDown returns floor(a*b / WAD).
func MulDown(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, WAD)
}

// MulUp returns ceil(a*b / WAD), and 0 when the product is 0.
func MulUp(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	if p.Sign() == 0 {
		return p
	}
	p.Sub(p, one)
	p.Quo(p, WAD)
	return p.Add(p, one)
}

// DivDown returns floor(a*WAD / b), and 0 when a is 0.
func DivDown(a, b *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	n := new(big.Int).Mul(a, WAD)
	return n.Quo(n, b), nil
}

// DivUp returns ceil(a*WAD / b), and 0 when a is 0.
func DivUp(a, b *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	n := new(big.Int).Mul(a, WAD)
	n.Sub(n, one)
	n.Quo(n, b)
	return n.Add(n, one), nil
}

// DivUpRaw returns ceil(a / b) without fixed point scaling, and 0 when a
// is 0.
func DivUpRaw(a, b *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	n := new(big.Int).Sub(a, one)
	n.Quo(n, b)
	return n.Add(n, one), nil
}

// MulDivUp returns ceil(a*b / c) without fixed point scaling.
func MulDivUp(a, b, c *big.Int) (*big.Int, error) {
	if c.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	p := new(big.Int).Mul(a, b)
	if p.Sign() == 0 {
		return p, nil
	}
	p.Sub(p, one)
	p.Quo(p, c)
	return p.Add(p, one), nil
}

// MulDivDown returns floor(a*b / c) without fixed point scaling.
func MulDivDown(a, b, c *big.Int) (*big.Int, error) {
	if c.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, c), nil
}

// Complement returns WAD - x, floored at 0.
func Complement(x *big.Int) *big.Int {
	if x.Cmp(WAD) < 0 {
		return new(big.Int).Sub(WAD, x)
	}
	return new(big.Int)
}

// PowDown returns base^exp rounded down, compensating for the relative
// error of the log/exp approximation.
func PowDown(base, exp *big.Int) (*big.Int, error) {
	switch {
	case exp.Cmp(WAD) == 0:
		return new(big.Int).Set(base), nil
	case exp.Cmp(TwoWAD) == 0:
		return MulDown(base, base), nil
	case exp.Cmp(FourWAD) == 0:
		sq := MulDown(base, base)
		return MulDown(sq, sq), nil
	}

	raw, err := Pow(base, exp)
	if err != nil {
		return nil, err
	}
	maxErr := MulUp(raw, MaxPowRelativeError)
	maxErr.Add(maxErr, one)
	if raw.Cmp(maxErr) < 0 {
		return new(big.Int), nil
	}
	return raw.Sub(raw, maxErr), nil
}

// PowUp returns base^exp rounded up.
func PowUp(base, exp *big.Int) (*big.Int, error) {
	switch {
	case exp.Cmp(WAD) == 0:
		return new(big.Int).Set(base), nil
	case exp.Cmp(TwoWAD) == 0:
		return MulUp(base, base), nil
	case exp.Cmp(FourWAD) == 0:
		sq := MulUp(base, base)
		return MulUp(sq, sq), nil
	}

	raw, err := Pow(base, exp)
	if err != nil {
		return nil, err
	}
	maxErr := MulUp(raw, MaxPowRelativeError)
	maxErr.Add(maxErr, one)
	return raw.Add(raw, maxErr), nil
}
