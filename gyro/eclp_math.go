// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gyro

import (
	"math/big"

	"github.com/luxfi/amm/fixedpoint"
	"github.com/luxfi/amm/pool"
)

var (
	// MaxBalances bounds x + y (1e16 in normal precision).
	MaxBalances = fixedpoint.Pow10(34)
	// MaxInvariant bounds invariant + error (3e19 in normal precision).
	MaxInvariant = fixedpoint.MustInt("30000000000000000000000000000000000000")

	ECLPMinInvariantRatio = big.NewInt(6e17)
	ECLPMaxInvariantRatio = big.NewInt(5e18)

	lambdaSquaredScale = fixedpoint.Pow10(36)
	sqrtErrScale       = fixedpoint.Pow10(38)
)

var (
	ErrMaxAssetsExceeded    = pool.NewError(pool.KindPoolUnsafe, "Max assets exceeded")
	ErrMaxInvariantExceeded = pool.NewError(pool.KindPoolUnsafe, "Max invariant exceeded")
	ErrECLPBoundsExceeded   = pool.NewError(pool.KindPoolUnsafe, "Asset bounds exceeded")
)

// Vector2 is a point in 2-D. Components are signed.
type Vector2 struct {
	X *big.Int `json:"x"`
	Y *big.Int `json:"y"`
}

// ECLPParams are the curve parameters in 18 decimals: price bounds, the
// rotation (c, s) and the stretch lambda.
type ECLPParams struct {
	Alpha  *big.Int `json:"alpha"`
	Beta   *big.Int `json:"beta"`
	C      *big.Int `json:"c"`
	S      *big.Int `json:"s"`
	Lambda *big.Int `json:"lambda"`
}

// DerivedECLPParams are precomputed in 38 decimals.
type DerivedECLPParams struct {
	TauAlpha Vector2  `json:"tauAlpha"`
	TauBeta  Vector2  `json:"tauBeta"`
	U        *big.Int `json:"u"`
	V        *big.Int `json:"v"`
	W        *big.Int `json:"w"`
	Z        *big.Int `json:"z"`
	DSq      *big.Int `json:"dSq"`
}

// eclpMath evaluates the elliptic curve formulas for one parameter set.
type eclpMath struct {
	calc
	p *ECLPParams
	d *DerivedECLPParams
}

func newECLPMath(p *ECLPParams, d *DerivedECLPParams) *eclpMath {
	return &eclpMath{p: p, d: d}
}

func (m *eclpMath) virtualOffset0(r Vector2) *big.Int {
	p, d := m.p, m.d
	termXp := m.divXpU(d.TauBeta.X, d.DSq)

	var a *big.Int
	if d.TauBeta.X.Sign() > 0 {
		a = mulUpXpToNpU(mulUpMagU(mulUpMagU(r.X, p.Lambda), p.C), termXp)
	} else {
		a = mulUpXpToNpU(mulDownMagU(mulDownMagU(r.Y, p.Lambda), p.C), termXp)
	}
	return a.Add(a, mulUpXpToNpU(mulUpMagU(r.X, p.S), m.divXpU(d.TauBeta.Y, d.DSq)))
}

func (m *eclpMath) virtualOffset1(r Vector2) *big.Int {
	p, d := m.p, m.d
	termXp := m.divXpU(d.TauAlpha.X, d.DSq)

	var b *big.Int
	if d.TauAlpha.X.Sign() < 0 {
		b = mulUpXpToNpU(mulUpMagU(mulUpMagU(r.X, p.Lambda), p.S), neg(termXp))
	} else {
		b = mulUpXpToNpU(mulDownMagU(mulDownMagU(neg(r.Y), p.Lambda), p.S), termXp)
	}
	return b.Add(b, mulUpXpToNpU(mulUpMagU(r.X, p.C), m.divXpU(d.TauAlpha.Y, d.DSq)))
}

func (m *eclpMath) maxBalances0(r Vector2) *big.Int {
	p, d := m.p, m.d
	termXp1 := m.divXpU(sub(d.TauBeta.X, d.TauAlpha.X), d.DSq)
	termXp2 := m.divXpU(sub(d.TauBeta.Y, d.TauAlpha.Y), d.DSq)

	xp := mulDownXpToNpU(mulDownMagU(mulDownMagU(r.Y, p.Lambda), p.C), termXp1)

	var term2 *big.Int
	if termXp2.Sign() > 0 {
		term2 = mulDownMagU(r.Y, p.S)
	} else {
		term2 = mulUpMagU(r.X, p.S)
	}
	return xp.Add(xp, mulDownXpToNpU(term2, termXp2))
}

func (m *eclpMath) maxBalances1(r Vector2) *big.Int {
	p, d := m.p, m.d
	termXp1 := m.divXpU(sub(d.TauBeta.X, d.TauAlpha.X), d.DSq)
	termXp2 := m.divXpU(sub(d.TauAlpha.Y, d.TauBeta.Y), d.DSq)

	yp := mulDownXpToNpU(mulDownMagU(mulDownMagU(r.Y, p.Lambda), p.S), termXp1)

	var term2 *big.Int
	if termXp2.Sign() > 0 {
		term2 = mulDownMagU(r.Y, p.C)
	} else {
		term2 = mulUpMagU(r.X, p.C)
	}
	return yp.Add(yp, mulDownXpToNpU(term2, termXp2))
}

// calcAtAChi returns A t . A chi.
func (m *eclpMath) calcAtAChi(x, y *big.Int) *big.Int {
	p, d := m.p, m.d
	dSq2 := mulXpU(d.DSq, d.DSq)

	termXp := m.divXpU(m.divDownMagU(add(m.divDownMagU(d.W, p.Lambda), d.Z), p.Lambda), dSq2)
	val := mulDownXpToNpU(sub(mulDownMagU(x, p.C), mulDownMagU(y, p.S)), termXp)

	termNp1 := mulDownMagU(x, p.Lambda)
	termNp2 := mulDownMagU(y, p.Lambda)
	val.Add(val, mulDownXpToNpU(
		add(mulDownMagU(termNp1, p.S), mulDownMagU(termNp2, p.C)),
		m.divXpU(d.U, dSq2),
	))
	val.Add(val, mulDownXpToNpU(
		add(mulDownMagU(x, p.S), mulDownMagU(y, p.C)),
		m.divXpU(d.V, dSq2),
	))
	return val
}

// calcAChiAChiInXp returns A chi . A chi in 38 decimals, rounded up.
func (m *eclpMath) calcAChiAChiInXp() *big.Int {
	p, d := m.p, m.d
	dSq3 := mulXpU(mulXpU(d.DSq, d.DSq), d.DSq)

	val := mulUpMagU(p.Lambda, m.divXpU(mulXpU(mulInt(d.U, 2), d.V), dSq3))

	u1 := addInt(d.U, 1)
	val.Add(val, mulUpMagU(mulUpMagU(m.divXpU(mulXpU(u1, u1), dSq3), p.Lambda), p.Lambda))
	val.Add(val, m.divXpU(mulXpU(d.V, d.V), dSq3))

	termXp := add(m.divUpMagU(d.W, p.Lambda), d.Z)
	val.Add(val, m.divXpU(mulXpU(termXp, termXp), dSq3))
	return val
}

func (m *eclpMath) dSq4() *big.Int {
	d := m.d
	return mulXpU(mulXpU(mulXpU(d.DSq, d.DSq), d.DSq), d.DSq)
}

func (m *eclpMath) calcMinAtxAChiySqPlusAtxSq(x, y *big.Int) *big.Int {
	p, d := m.p, m.d
	termNp := add(
		mulUpMagU(mulUpMagU(mulUpMagU(x, x), p.C), p.C),
		mulUpMagU(mulUpMagU(mulUpMagU(y, y), p.S), p.S),
	)
	termNp.Sub(termNp, mulDownMagU(mulDownMagU(mulDownMagU(x, y), mulInt(p.C, 2)), p.S))

	termXp := mulXpU(d.U, d.U)
	termXp.Add(termXp, m.divDownMagU(mulXpU(mulInt(d.U, 2), d.V), p.Lambda))
	termXp.Add(termXp, m.divDownMagU(m.divDownMagU(mulXpU(d.V, d.V), p.Lambda), p.Lambda))
	termXp = m.divXpU(termXp, m.dSq4())

	val := mulDownXpToNpU(neg(termNp), termXp)
	val.Add(val, mulDownXpToNpU(
		m.divDownMagU(m.divDownMagU(addInt(termNp, -9), p.Lambda), p.Lambda),
		m.divXpU(oneXp, d.DSq),
	))
	return val
}

func (m *eclpMath) calc2AtxAtyAChixAChiy(x, y *big.Int) *big.Int {
	p, d := m.p, m.d
	termNp := mulDownMagU(mulDownMagU(sub(mulDownMagU(x, x), mulUpMagU(y, y)), mulInt(p.C, 2)), p.S)

	xy := mulDownMagU(y, mulInt(x, 2))
	termNp.Add(termNp, mulDownMagU(mulDownMagU(xy, p.C), p.C))
	termNp.Sub(termNp, mulDownMagU(mulDownMagU(xy, p.S), p.S))

	termXp := mulXpU(d.Z, d.U)
	termXp.Add(termXp, m.divDownMagU(m.divDownMagU(mulXpU(d.W, d.V), p.Lambda), p.Lambda))
	termXp.Add(termXp, m.divDownMagU(add(mulXpU(d.W, d.U), mulXpU(d.Z, d.V)), p.Lambda))
	termXp = m.divXpU(termXp, m.dSq4())

	return mulDownXpToNpU(termNp, termXp)
}

func (m *eclpMath) calcMinAtyAChixSqPlusAtySq(x, y *big.Int) *big.Int {
	p, d := m.p, m.d
	termNp := add(
		mulUpMagU(mulUpMagU(mulUpMagU(x, x), p.S), p.S),
		mulUpMagU(mulUpMagU(mulUpMagU(y, y), p.C), p.C),
	)
	termNp.Add(termNp, mulUpMagU(mulUpMagU(mulUpMagU(x, y), mulInt(p.S, 2)), p.C))

	termXp := mulXpU(d.Z, d.Z)
	termXp.Add(termXp, m.divDownMagU(m.divDownMagU(mulXpU(d.W, d.W), p.Lambda), p.Lambda))
	termXp.Add(termXp, m.divDownMagU(mulXpU(mulInt(d.Z, 2), d.W), p.Lambda))
	termXp = m.divXpU(termXp, m.dSq4())

	val := mulDownXpToNpU(neg(termNp), termXp)
	val.Add(val, mulDownXpToNpU(addInt(termNp, -9), m.divXpU(oneXp, d.DSq)))
	return val
}

// calcInvariantSqrt returns the square root term of the invariant and its
// error bound.
func (m *eclpMath) calcInvariantSqrt(x, y *big.Int) (val, sqrtErr *big.Int) {
	val = m.calcMinAtxAChiySqPlusAtxSq(x, y)
	val.Add(val, m.calc2AtxAtyAChixAChiy(x, y))
	val.Add(val, m.calcMinAtyAChixSqPlusAtySq(x, y))

	sqrtErr = add(mulUpMagU(x, x), mulUpMagU(y, y))
	sqrtErr.Quo(sqrtErr, sqrtErrScale)

	if val.Sign() > 0 {
		return m.sqrt(val, 5), sqrtErr
	}
	return new(big.Int), sqrtErr
}

// invariantWithError returns the invariant r and an upper bound on its
// error, so that r - err <= true invariant <= r + err.
func (m *eclpMath) invariantWithError(balances []*big.Int) (inv, invErr *big.Int, err error) {
	p := m.p
	x, y := balances[0], balances[1]
	sum := add(x, y)
	if sum.Cmp(MaxBalances) > 0 {
		return nil, nil, ErrMaxAssetsExceeded
	}

	atAChi := m.calcAtAChi(x, y)
	root, e := m.calcInvariantSqrt(x, y)
	// The smallest non-zero root is 1e-9, the root of the smallest input.
	if root.Sign() > 0 {
		e = m.divUpMagU(addInt(e, 1), mulInt(root, 2))
	} else if e.Sign() > 0 {
		e = m.sqrt(e, 5)
	} else {
		e = big.NewInt(1e9)
	}

	// Scale by 20 to cover every error term of the numerator.
	e = add(new(big.Int).Quo(mulUpMagU(p.Lambda, sum), oneXp), e)
	e.Add(e, bigOne)
	e.Mul(e, big.NewInt(20))

	achiachi := m.calcAChiAChiInXp()
	mulDenominator := m.divXpU(oneXp, sub(achiachi, oneXp))
	if m.err != nil {
		return nil, nil, m.err
	}

	numerator := add(atAChi, root)
	numerator.Sub(numerator, e)
	inv = mulDownXpToNpU(numerator, mulDenominator)

	// The invariant is numerator * (1 / denominator), so the error scales
	// with 1 / denominator, plus the relative error of the denominator.
	e = mulUpXpToNpU(e, mulDenominator)
	lambdaSq := new(big.Int).Mul(p.Lambda, p.Lambda)
	lambdaSq.Quo(lambdaSq, lambdaSquaredScale)
	rel := mulUpXpToNpU(inv, mulDenominator)
	rel.Mul(rel, lambdaSq)
	rel.Mul(rel, big.NewInt(40))
	rel.Quo(rel, oneXp)
	e.Add(e, rel)
	e.Add(e, bigOne)

	if add(inv, e).Cmp(MaxInvariant) > 0 {
		return nil, nil, ErrMaxInvariantExceeded
	}
	return inv, e, nil
}

func (m *eclpMath) calcXpXpDivLambdaLambda(x *big.Int, r Vector2, lambda, s, c *big.Int, tauBeta Vector2, dSq *big.Int) *big.Int {
	sqVarsX := mulXpU(dSq, dSq)
	sqVarsY := mulUpMagU(r.X, r.X)

	var qa *big.Int
	termXp := m.divXpU(mulXpU(tauBeta.X, tauBeta.Y), sqVarsX)
	if termXp.Sign() > 0 {
		qa = mulUpMagU(sqVarsY, mulInt(s, 2))
		qa = mulUpXpToNpU(mulUpMagU(qa, c), addInt(termXp, 7))
	} else {
		qa = mulDownMagU(r.Y, r.Y)
		qa = mulDownMagU(qa, mulInt(s, 2))
		qa = mulUpXpToNpU(mulDownMagU(qa, c), termXp)
	}

	var qb *big.Int
	if tauBeta.X.Sign() < 0 {
		qb = mulUpXpToNpU(
			mulUpMagU(mulUpMagU(r.X, x), mulInt(c, 2)),
			addInt(neg(m.divXpU(tauBeta.X, dSq)), 3),
		)
	} else {
		qb = mulUpXpToNpU(
			mulDownMagU(mulDownMagU(neg(r.Y), x), mulInt(c, 2)),
			m.divXpU(tauBeta.X, dSq),
		)
	}
	qa.Add(qa, qb)

	termXp2 := addInt(m.divXpU(mulXpU(tauBeta.Y, tauBeta.Y), sqVarsX), 7)

	qb = mulUpMagU(sqVarsY, s)
	qb = mulUpXpToNpU(mulUpMagU(qb, s), termXp2)

	qc := mulUpXpToNpU(
		mulDownMagU(mulDownMagU(neg(r.Y), x), mulInt(s, 2)),
		m.divXpU(tauBeta.Y, dSq),
	)

	qb.Add(qb, qc)
	qb.Add(qb, mulUpMagU(x, x))
	if qb.Sign() > 0 {
		qb = m.divUpMagU(qb, lambda)
	} else {
		qb = m.divDownMagU(qb, lambda)
	}

	qa.Add(qa, qb)
	if qa.Sign() > 0 {
		qa = m.divUpMagU(qa, lambda)
	} else {
		qa = m.divDownMagU(qa, lambda)
	}

	termXp3 := addInt(m.divXpU(mulXpU(tauBeta.X, tauBeta.X), sqVarsX), 7)
	val := mulUpMagU(mulUpMagU(sqVarsY, c), c)
	val = mulUpXpToNpU(val, termXp3)
	return val.Add(val, qa)
}

// solveQuadraticSwap returns the new balance of the opposite asset for a
// given balance x, rounding against the trader.
func (m *eclpMath) solveQuadraticSwap(lambda, x, s, c *big.Int, r, ab, tauBeta Vector2, dSq *big.Int) *big.Int {
	lamBarX := sub(oneXp, m.divDownMagU(m.divDownMagU(oneXp, lambda), lambda))
	lamBarY := sub(oneXp, m.divUpMagU(m.divUpMagU(oneXp, lambda), lambda))

	xp := sub(x, ab.X)
	var qb *big.Int
	if xp.Sign() > 0 {
		qb = mulUpXpToNpU(
			mulDownMagU(mulDownMagU(neg(xp), s), c),
			m.divXpU(lamBarY, dSq),
		)
	} else {
		qb = mulUpXpToNpU(
			mulUpMagU(mulUpMagU(neg(xp), s), c),
			addInt(m.divXpU(lamBarX, dSq), 1),
		)
	}

	sTermX := m.divXpU(mulDownMagU(mulDownMagU(lamBarY, s), s), dSq)
	sTermY := addInt(m.divXpU(mulUpMagU(mulUpMagU(lamBarX, s), s), addInt(dSq, 1)), 1)
	sTermX = sub(oneXp, sTermX)
	sTermY = sub(oneXp, sTermY)

	qc := neg(m.calcXpXpDivLambdaLambda(x, r, lambda, s, c, tauBeta, dSq))
	qc.Add(qc, mulDownXpToNpU(mulDownMagU(r.Y, r.Y), sTermY))
	if qc.Sign() > 0 {
		qc = m.sqrt(qc, 5)
	} else {
		qc = new(big.Int)
	}

	diff := sub(qb, qc)
	var qa *big.Int
	if diff.Sign() > 0 {
		qa = mulUpXpToNpU(diff, addInt(m.divXpU(oneXp, sTermY), 1))
	} else {
		qa = mulUpXpToNpU(diff, m.divXpU(oneXp, sTermX))
	}
	return qa.Add(qa, ab.Y)
}

func (m *eclpMath) calcYGivenX(x *big.Int, r Vector2) *big.Int {
	ab := Vector2{X: m.virtualOffset0(r), Y: m.virtualOffset1(r)}
	return m.solveQuadraticSwap(m.p.Lambda, x, m.p.S, m.p.C, r, ab, m.d.TauBeta, m.d.DSq)
}

func (m *eclpMath) calcXGivenY(y *big.Int, r Vector2) *big.Int {
	ba := Vector2{X: m.virtualOffset1(r), Y: m.virtualOffset0(r)}
	tau := Vector2{X: neg(m.d.TauAlpha.X), Y: m.d.TauAlpha.Y}
	return m.solveQuadraticSwap(m.p.Lambda, y, m.p.C, m.p.S, r, ba, tau, m.d.DSq)
}

func (m *eclpMath) checkAssetBounds(r Vector2, newBalance *big.Int, assetIndex int) error {
	var bound *big.Int
	if assetIndex == 0 {
		bound = m.maxBalances0(r)
	} else {
		bound = m.maxBalances1(r)
	}
	if m.err != nil {
		return m.err
	}
	if newBalance.Cmp(MaxBalances) > 0 || newBalance.Cmp(bound) > 0 {
		return ErrECLPBoundsExceeded
	}
	return nil
}

func (m *eclpMath) calcOutGivenIn(balances []*big.Int, amountIn *big.Int, tokenInIsToken0 bool, r Vector2) (*big.Int, error) {
	ixIn, ixOut := 1, 0
	calcGiven := m.calcXGivenY
	if tokenInIsToken0 {
		ixIn, ixOut = 0, 1
		calcGiven = m.calcYGivenX
	}

	balInNew := add(balances[ixIn], amountIn)
	if err := m.checkAssetBounds(r, balInNew, ixIn); err != nil {
		return nil, err
	}
	balOutNew := calcGiven(balInNew, r)
	if m.err != nil {
		return nil, m.err
	}
	return sub(balances[ixOut], balOutNew), nil
}

func (m *eclpMath) calcInGivenOut(balances []*big.Int, amountOut *big.Int, tokenInIsToken0 bool, r Vector2) (*big.Int, error) {
	ixIn, ixOut := 1, 0
	calcGiven := m.calcYGivenX
	if tokenInIsToken0 {
		ixIn, ixOut = 0, 1
		calcGiven = m.calcXGivenY
	}

	if amountOut.Cmp(balances[ixOut]) > 0 {
		return nil, ErrECLPBoundsExceeded
	}
	balOutNew := sub(balances[ixOut], amountOut)
	balInNew := calcGiven(balOutNew, r)
	if m.err != nil {
		return nil, m.err
	}
	if err := m.checkAssetBounds(r, balInNew, ixIn); err != nil {
		return nil, err
	}
	return sub(balInNew, balances[ixIn]), nil
}
