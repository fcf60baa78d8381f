// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
)

// Signed fixed point at 18 decimals ("Np") and 38 decimals ("Xp").
// Divisions truncate toward zero; "Mag" variants round the magnitude.

var (
	one    = fixedpoint.WAD
	oneXp  = fixedpoint.Pow10(38)
	e19    = fixedpoint.Pow10(19)
	bigOne = big.NewInt(1)
)

func add(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }

func sub(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }

func neg(a *big.Int) *big.Int { return new(big.Int).Neg(a) }

func mulInt(a *big.Int, k int64) *big.Int { return new(big.Int).Mul(a, big.NewInt(k)) }

func addInt(a *big.Int, k int64) *big.Int { return new(big.Int).Add(a, big.NewInt(k)) }

func mulDownMagU(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, one)
}

func mulUpMagU(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	switch p.Sign() {
	case 1:
		p.Sub(p, bigOne)
		p.Quo(p, one)
		return p.Add(p, bigOne)
	case -1:
		p.Add(p, bigOne)
		p.Quo(p, one)
		return p.Sub(p, bigOne)
	}
	return p
}

func mulXpU(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, oneXp)
}

func mulDownXpToNpU(a, b *big.Int) *big.Int {
	b1, b2 := new(big.Int).QuoRem(b, e19, new(big.Int))
	prod1 := b1.Mul(a, b1)
	prod2 := b2.Mul(a, b2)
	nonNeg := prod1.Sign() >= 0 && prod2.Sign() >= 0

	r := prod1.Add(prod1, prod2.Quo(prod2, e19))
	if nonNeg {
		return r.Quo(r, e19)
	}
	r.Add(r, bigOne)
	r.Quo(r, e19)
	return r.Sub(r, bigOne)
}

func mulUpXpToNpU(a, b *big.Int) *big.Int {
	b1, b2 := new(big.Int).QuoRem(b, e19, new(big.Int))
	prod1 := b1.Mul(a, b1)
	prod2 := b2.Mul(a, b2)
	nonPos := prod1.Sign() <= 0 && prod2.Sign() <= 0

	r := prod1.Add(prod1, prod2.Quo(prod2, e19))
	if nonPos {
		return r.Quo(r, e19)
	}
	r.Sub(r, bigOne)
	r.Quo(r, e19)
	return r.Add(r, bigOne)
}

// calc carries the first error of a chain of divisions. Once set, every
// dividing method returns zero and the caller reports err.
type calc struct {
	err error
}

func (c *calc) fail(err error) *big.Int {
	if c.err == nil {
		c.err = err
	}
	return new(big.Int)
}

func (c *calc) divDownMagU(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		return c.fail(fixedpoint.ErrZeroDivision)
	}
	n := new(big.Int).Mul(a, one)
	return n.Quo(n, b)
}

func (c *calc) divUpMagU(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		return c.fail(fixedpoint.ErrZeroDivision)
	}
	if a.Sign() == 0 {
		return new(big.Int)
	}
	la, lb := a, b
	if b.Sign() < 0 {
		la, lb = neg(a), neg(b)
	}
	n := new(big.Int).Mul(la, one)
	if la.Sign() > 0 {
		n.Sub(n, bigOne)
		n.Quo(n, lb)
		return n.Add(n, bigOne)
	}
	n.Add(n, bigOne)
	n.Quo(n, lb)
	return n.Sub(n, bigOne)
}

func (c *calc) divXpU(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		return c.fail(fixedpoint.ErrZeroDivision)
	}
	n := new(big.Int).Mul(a, oneXp)
	return n.Quo(n, b)
}

func (c *calc) sqrt(x *big.Int, tolerance int64) *big.Int {
	if c.err != nil {
		return new(big.Int)
	}
	r, err := Sqrt(x, big.NewInt(tolerance))
	if err != nil {
		return c.fail(err)
	}
	return r
}
