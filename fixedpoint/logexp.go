// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import "math/big"

// Exponentiation and logarithm with integer-only arithmetic. Arguments and
// results are signed 18-decimal fixed point values; intermediate steps use
// 20 decimals (36 for ln36) to keep the error below 1e-18 relative.

var (
	maxNaturalExponent = MustInt("130000000000000000000")
	minNaturalExponent = MustInt("-41000000000000000000")

	ln36LowerBound = big.NewInt(900000000000000000)
	ln36UpperBound = MustInt("1100000000000000000")

	mildExponentBound = MustInt("289480223093290488558927462521719769633174961664101410098")
	maxPowBase        = new(big.Int).Lsh(one, 255)

	ray        = Pow10(36)
	hundredWAD = Pow10(20)
	hundred    = big.NewInt(100)

	x0 = MustInt("128000000000000000000")
	a0 = MustInt("38877084059945950922200000000000000000000000000000000000")
	x1 = MustInt("64000000000000000000")
	a1 = MustInt("6235149080811616882910000000")

	// 20-decimal stages, x2..x11 with a2..a11 = e^x.
	stages = []struct{ x, a *big.Int }{
		{MustInt("3200000000000000000000"), MustInt("7896296018268069516100000000000000")},
		{MustInt("1600000000000000000000"), MustInt("888611052050787263676000000")},
		{MustInt("800000000000000000000"), MustInt("298095798704172827474000")},
		{MustInt("400000000000000000000"), MustInt("5459815003314423907810")},
		{MustInt("200000000000000000000"), MustInt("738905609893065022723")},
		{MustInt("100000000000000000000"), MustInt("271828182845904523536")},
		{MustInt("50000000000000000000"), MustInt("164872127070012814685")},
		{MustInt("25000000000000000000"), MustInt("128402541668774148407")},
		{MustInt("12500000000000000000"), MustInt("113314845306682631683")},
		{MustInt("6250000000000000000"), MustInt("106449445891785942956")},
	}
)

// expStages is the number of stages exp consumes (x2..x9); ln uses all.
const expStages = 8

// Pow returns x^y for x, y in 18-decimal fixed point, computed as
// exp(y * ln(x)). x must be below 2^255.
func Pow(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return new(big.Int).Set(WAD), nil
	}
	if x.Sign() == 0 {
		return new(big.Int), nil
	}
	if x.Sign() < 0 || x.Cmp(maxPowBase) >= 0 {
		return nil, ErrMathOverflow
	}
	if y.Cmp(mildExponentBound) >= 0 {
		return nil, ErrMathOverflow
	}

	var logxTimesY *big.Int
	if x.Cmp(ln36LowerBound) > 0 && x.Cmp(ln36UpperBound) < 0 {
		l := ln36(x)
		q, r := new(big.Int).QuoRem(l, WAD, new(big.Int))
		q.Mul(q, y)
		r.Mul(r, y)
		r.Quo(r, WAD)
		logxTimesY = q.Add(q, r)
	} else {
		logxTimesY = ln(x)
		logxTimesY.Mul(logxTimesY, y)
	}
	logxTimesY.Quo(logxTimesY, WAD)

	if logxTimesY.Cmp(minNaturalExponent) < 0 || logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrMathOverflow
	}
	return Exp(logxTimesY)
}

// Exp returns e^x for x in [-41, 130].
func Exp(x *big.Int) (*big.Int, error) {
	if x.Cmp(minNaturalExponent) < 0 || x.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrMathOverflow
	}
	if x.Sign() < 0 {
		inv, err := Exp(new(big.Int).Neg(x))
		if err != nil {
			return nil, err
		}
		n := new(big.Int).Mul(WAD, WAD)
		return n.Quo(n, inv), nil
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	switch {
	case x.Cmp(x0) >= 0:
		x.Sub(x, x0)
		firstAN.Set(a0)
	case x.Cmp(x1) >= 0:
		x.Sub(x, x1)
		firstAN.Set(a1)
	}

	x.Mul(x, hundred)
	product := new(big.Int).Set(hundredWAD)
	for _, s := range stages[:expStages] {
		if x.Cmp(s.x) >= 0 {
			x.Sub(x, s.x)
			product.Mul(product, s.a)
			product.Quo(product, hundredWAD)
		}
	}

	// Taylor series to the 12th term.
	sum := new(big.Int).Add(hundredWAD, x)
	term := new(big.Int).Set(x)
	for n := int64(2); n <= 12; n++ {
		term.Mul(term, x)
		term.Quo(term, hundredWAD)
		term.Quo(term, big.NewInt(n))
		sum.Add(sum, term)
	}

	res := product.Mul(product, sum)
	res.Quo(res, hundredWAD)
	res.Mul(res, firstAN)
	return res.Quo(res, hundred), nil
}

// Ln returns the natural logarithm of a > 0.
func Ln(a *big.Int) (*big.Int, error) {
	if a.Sign() <= 0 {
		return nil, ErrMathOverflow
	}
	if a.Cmp(ln36LowerBound) > 0 && a.Cmp(ln36UpperBound) < 0 {
		return new(big.Int).Quo(ln36(a), WAD), nil
	}
	return ln(a), nil
}

func ln(x *big.Int) *big.Int {
	if x.Cmp(WAD) < 0 {
		inv := new(big.Int).Mul(WAD, WAD)
		inv.Quo(inv, x)
		return new(big.Int).Neg(ln(inv))
	}

	a := new(big.Int).Set(x)
	sum := new(big.Int)
	if a.Cmp(new(big.Int).Mul(a0, WAD)) >= 0 {
		a.Quo(a, a0)
		sum.Add(sum, x0)
	}
	if a.Cmp(new(big.Int).Mul(a1, WAD)) >= 0 {
		a.Quo(a, a1)
		sum.Add(sum, x1)
	}

	sum.Mul(sum, hundred)
	a.Mul(a, hundred)
	for _, s := range stages {
		if a.Cmp(s.a) >= 0 {
			a.Mul(a, hundredWAD)
			a.Quo(a, s.a)
			sum.Add(sum, s.x)
		}
	}

	series := oddSeries(a, hundredWAD, 11)
	sum.Add(sum, series)
	return sum.Quo(sum, hundred)
}

// ln36 returns ln(x) with 36 decimals for x close to 1.
func ln36(x *big.Int) *big.Int {
	return oddSeries(new(big.Int).Mul(x, WAD), ray, 15)
}

// oddSeries evaluates 2 * atanh((a-one)/(a+one)) at the given precision
// with odd terms up to maxTerm.
func oddSeries(a, unit *big.Int, maxTerm int64) *big.Int {
	z := new(big.Int).Sub(a, unit)
	z.Mul(z, unit)
	z.Quo(z, new(big.Int).Add(a, unit))

	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, unit)

	num := new(big.Int).Set(z)
	sum := new(big.Int).Set(z)
	for n := int64(3); n <= maxTerm; n += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, unit)
		sum.Add(sum, new(big.Int).Quo(num, big.NewInt(n)))
	}
	return sum.Mul(sum, two)
}
