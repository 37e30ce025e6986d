package blackcore

import (
	"math"

	"github.com/optionkit/impliedvol/internal/specialfn"
)

// NormalisedBlack evaluates the normalised Black function b(h,t) (undiscounted,
// unit-forward, log-moneyness h = theta*x/s, half-vol t = s/2), partitioned
// into three numerically stable regions to avoid catastrophic cancellation
// for deep out-of-the-money and near-zero-vol inputs.
//
// halfThetaX must be negative (theta*x/2, where x = ln(F/K) and theta = ±1
// encodes call/put), t must be positive.
func NormalisedBlack(halfThetaX, h, t float64) float64 {
	switch {
	case isRegion1(h, t):
		return asymptoticExpansionOfScaledNormalisedBlack(h, t) * NormalisedVega(h, t)
	case isRegion2(h, t):
		return smallTExpansionOfScaledNormalisedBlack(h, t) * NormalisedVega(h, t)
	default:
		return normalisedBlackWithOptimalUseOfCodysFunctions(halfThetaX, h, t)
	}
}

const eta = -13.0

func isRegion1(h, t float64) bool {
	return h < eta && t+h < tau+0.5+eta
}

func isRegion2(h, t float64) bool {
	return h*(-0.5/eta)+(-tau+t) < 0.0
}

// ScaledNormalisedBlackAndLnVega returns (b(h,t)/vega(h,t), ln(vega(h,t))),
// used by the root finder to work in a well-conditioned objective near the
// extremes of the domain.
func ScaledNormalisedBlackAndLnVega(halfThetaX, h, t float64) (float64, float64) {
	lnVega := lnNormalisedVega(h, t)
	switch {
	case isRegion1(h, t):
		return asymptoticExpansionOfScaledNormalisedBlack(h, t), lnVega
	case isRegion2(h, t):
		return smallTExpansionOfScaledNormalisedBlack(h, t), lnVega
	default:
		return normalisedBlackWithOptimalUseOfCodysFunctions(halfThetaX, h, t) * math.Exp(-lnVega), lnVega
	}
}

// asymptoticExpansionOfScaledNormalisedBlack computes omega(h,t)*t/r, the
// Region I (deep OTM, small t) asymptotic series, via the 17 polynomials
// a0..a16 selected by how far |h+t| is from the tau threshold.
func asymptoticExpansionOfScaledNormalisedBlack(h, t float64) float64 {
	e := (t / h) * (t / h)
	r := (h + t) * (h - t)
	q := (h / r) * (h / r)

	thresholds := [12]float64{12.347, 12.958, 13.729, 14.718, 16.016, 17.769, 20.221, 23.816, 29.419, 38.93, 57.171, 99.347}
	idx := len(thresholds)
	for i, th := range thresholds {
		if -h-t+tau+0.5 < th {
			idx = i
			break
		}
	}

	// Horner evaluation of a0 + q*(a1 + q*(... + q*a(16-idx))): 17-idx terms,
	// from 17 next to the threshold down to 5 beyond the last entry.
	coeffs := [16]func(float64) float64{a1, a2, a3, a4, a5, a6, a7, a8, a9, a10, a11, a12, a13, a14, a15, a16}
	top := 15 - idx
	omega := coeffs[top](e)
	for j := top - 1; j >= 0; j-- {
		omega = omega*q + coeffs[j](e)
	}
	omega = omega*q + a0()
	return (t / r) * omega
}

func a0() float64 { return 2.0 }
func a1(e float64) float64 { return e*(-2.0) + (-6.0) }
func a2(e float64) float64 { x := e*6.0 + 60.0; return x*e + 30.0 }
func a3(e float64) float64 {
	x := e*(-30.0) + (-6.3e2)
	x = x*e + (-1.05e3)
	return x*e + (-2.1e2)
}
func a4(e float64) float64 {
	x := e*2.1e2 + 7.56e3
	x = x*e + 2.646e4
	x = x*e + 1.764e4
	return x*e + 1.89e3
}
func a5(e float64) float64 {
	x := e*(-1.89e3) + (-1.0395e5)
	x = x*e + (-6.237e5)
	x = x*e + (-8.7318e5)
	x = x*e + (-3.1185e5)
	return x*e + (-2.079e4)
}
func a6(e float64) float64 {
	x := e*2.079e4 + 1.62162e6
	x = x*e + 1.486485e7
	x = x*e + 3.567564e7
	x = x*e + 2.675673e7
	x = x*e + 5.94594e6
	return x*e + 2.7027e5
}
func a7(e float64) float64 {
	x := e*(-2.7027e5) + (-2.837835e7)
	x = x*e + (-3.6891855e8)
	x = x*e + (-1.35270135e9)
	x = x*e + (-1.73918745e9)
	x = x*e + (-8.1162081e8)
	x = x*e + (-1.2297285e8)
	return x*e + (-4.05405e6)
}
func a8(e float64) float64 {
	x := e*4.05405e6 + 5.513508e8
	x = x*e + 9.648639e9
	x = x*e + 5.01729228e10
	x = x*e + 9.85539555e10
	x = x*e + 7.88431644e10
	x = x*e + 2.50864614e10
	x = x*e + 2.756754e9
	return x*e + 6.891885e7
}
func a9(e float64) float64 {
	x := e*(-6.891885e7) + (-1.178512335e10)
	x = x*e + (-2.671294626e11)
	x = x*e + (-1.8699062382e12)
	x = x*e + (-5.2090245207e12)
	x = x*e + (-6.3665855253e12)
	x = x*e + (-3.4726830138e12)
	x = x*e + (-8.013883878e11)
	x = x*e + (-6.678236565e10)
	return x*e + (-1.30945815e9)
}
func a10(e float64) float64 {
	x := e*1.30945815e9 + 2.749862115e11
	x = x*e + 7.83710702775e12
	x = x*e + 7.10564370516e13
	x = x*e + 2.664616389435e14
	x = x*e + 4.618668408354e14
	x = x*e + 3.848890340295e14
	x = x*e + 1.52263793682e14
	x = x*e + 2.664616389435e13
	x = x*e + 1.7415793395e12
	return x*e + 2.749862115e10
}
func a11(e float64) float64 {
	x := e*(-2.749862115e10) + (-6.95715115095e12)
	x = x*e + (-2.4350029028325e14)
	x = x*e + (-2.77590330922905e15)
	x = x*e + (-1.34829589305411e16)
	x = x*e + (-3.14602375045959e16)
	x = x*e + (-3.71802806872497e16)
	x = x*e + (-2.24715982175685e16)
	x = x*e + (-6.74147946527055e15)
	x = x*e + (-9.2530110307635e14)
	x = x*e + (-4.870005805665e13)
	return x*e + (-6.3246828645e11)
}
func a12(e float64) float64 {
	x := e*6.3246828645e11 + 1.89740485935e14
	x = x*e + 8.0007238235925e15
	x = x*e + 1.12010133530295e17
	x = x*e + 6.840618869171588e17
	x = x*e + 2.067387036016302e18
	x = x*e + 3.289024830025935e18
	x = x*e + 2.81916414002223e18
	x = x*e + 1.2921168975101888e18
	x = x*e + 3.04027505296515e17
	x = x*e + 3.36030400590885e16
	x = x*e + 1.454677058835e15
	return x*e + 1.581170716125e13
}
func a13(e float64) float64 {
	x := e*(-1.581170716125e13) + (-5.54990921359875e15)
	x = x*e + (-2.774954606799375e17)
	x = x*e + (-4.680423436801613e18)
	x = x*e + (-3.5103175776012095e19)
	x = x*e + (-1.3339206794884596e20)
	x = x*e + (-2.7486850365216742e20)
	x = x*e + (-3.171559657525009e20)
	x = x*e + (-2.0615137773912556e20)
	x = x*e + (-7.410670441602553e19)
	x = x*e + (-1.4041270310404837e19)
	x = x*e + (-1.2764791191277125e18)
	x = x*e + (-4.624924344665625e16)
	return x*e + (-4.2691609335375e14)
}
func a14(e float64) float64 {
	x := e*4.2691609335375e14 + 1.733279339016225e17
	x = x*e + 1.0139684133244916e19
	x = x*e + 2.0279368266489833e20
	x = x*e + 1.8323857755078313e21
	x = x*e + 8.551133619036546e21
	x = x*e + 2.215520983114014e22
	x = x*e + 3.311108282456109e22
	x = x*e + 2.8972197471490954e22
	x = x*e + 1.477013988742676e22
	x = x*e + 4.275566809518273e21
	x = x*e + 6.66322100184666e20
	x = x*e + 5.069842066622458e19
	x = x*e + 1.5599514051146025e18
	return x*e + 1.238056670725875e16
}
func a15(e float64) float64 {
	x := e*(-1.238056670725875e16) + (-5.756963518875318e18)
	x = x*e + (-3.8955453144389655e20)
	x = x*e + (-9.11557603578718e21)
	x = x*e + (-9.766688609771979e22)
	x = x*e + (-5.4910493739384675e23)
	x = x*e + (-1.747152073525876e24)
	x = x*e + (-3.283109940361811e24)
	x = x*e + (-3.720857932410053e24)
	x = x*e + (-2.553529953614742e24)
	x = x*e + (-1.0482912441155257e24)
	x = x*e + (-2.4959315336083945e23)
	x = x*e + (-3.2555628699239928e22)
	x = x*e + (-2.1035944697970415e21)
	x = x*e + (-5.565064734912808e19)
	return x*e + (-3.8379756792502125e17)
}
func a16(e float64) float64 {
	x := e*3.8379756792502125e17 + 2.026451158644112e20
	x = x*e + 1.570499647949187e22
	x = x*e + 4.250819047115799e23
	x = x*e + 5.328705305491592e24
	x = x*e + 3.5524702036610607e25
	x = x*e + 1.36178024473674e26
	x = x*e + 3.142569795546323e26
	x = x*e + 4.478161958653511e26
	x = x*e + 3.9805884076920094e26
	x = x*e + 2.199798856882426e26
	x = x*e + 7.427892244018582e25
	x = x*e + 1.4801959181921086e25
	x = x*e + 1.6396016324589512e24
	x = x*e + 9.108897958105285e22
	x = x*e + 2.093999530598916e21
	return x*e + 1.26653197415257e19
}

// smallTExpansionOfScaledNormalisedBlack is the Region II small-t Taylor
// expansion omega(h,t)*t in powers of t^2, via seven polynomials b0..b6.
func smallTExpansionOfScaledNormalisedBlack(h, t float64) float64 {
	a := yPrime(h)
	h2 := h * h
	t2 := t * t

	r := b6(a, h2)*t2 + b5(a, h2)
	r = r*t2 + b4(a, h2)
	r = r*t2 + b3(a, h2)
	r = r*t2 + b2(a, h2)
	r = r*t2 + b1(a, h2)
	r = r*t2 + b0(a)
	return r * t
}

func b0(a float64) float64 { return 2.0 * a }
func b1(a, h2 float64) float64 { return (a*(3.0+h2) - 1.0) / 3.0 }
func b2(a, h2 float64) float64 {
	x := h2*(10.0+h2) + 15.0
	return (x*a - (7.0 + h2)) / 60.0
}
func b3(a, h2 float64) float64 {
	x := h2*(21.0+h2) + 105.0
	x = x*h2 + 105.0
	n := h2*(-18.0-h2) + (-57.0)
	return (x*a + n) / 2520.0
}
func b4(a, h2 float64) float64 {
	x := h2*(36.0+h2) + 378.0
	x = x*h2 + 1260.0
	x = x*h2 + 945.0
	n := h2*(-33.0-h2) + (-285.0)
	n = n*h2 + (-561.0)
	return (x*a + n) / 181440.0
}
func b5(a, h2 float64) float64 {
	x := h2*(55.0+h2) + 990.0
	x = x*h2 + 6930.0
	x = x*h2 + 17325.0
	x = x*h2 + 10395.0
	n := h2*(-52.0-h2) + (-840.0)
	n = n*h2 + (-4680.0)
	n = n*h2 + (-6555.0)
	return (x*a + n) / 19958400.0
}
func b6(a, h2 float64) float64 {
	x := h2*(78.0+h2) + 2145.0
	x = x*h2 + 25740.0
	x = x*h2 + 135135.0
	x = x*h2 + 270270.0
	x = x*h2 + 135135.0
	n := h2*(-75.0-h2) + (-1926.0)
	n = n*h2 + (-20370.0)
	n = n*h2 + (-82845.0)
	n = n*h2 + (-89055.0)
	return (x*a + n) / 3113510400.0
}

// yPrime computes Y'(h) = erfcx(-h/sqrt(2))*sqrt(pi/2)*h+1 across three
// regimes chosen to keep the rational approximations well conditioned.
func yPrime(h float64) float64 {
	switch {
	case h < -4.0:
		w := 1.0 / (h * h)
		return w * (1.0 + yPrimeTailExpansionRationalFunctionPart(w))
	case h <= -0.46875:
		num := -8.45924364065806e-10
		num = num*(-h) + 4.2766597835908714e-8
		num = num*(-h) + 3.0717392274913903e-4
		num = num*(-h) + 5.5455210077353795e-3
		num = num*(-h) + 4.565090035135299e-2
		num = num*(-h) + 2.2180844736576014e-1
		num = num*(-h) + 6.191144987969411e-1
		num = num*(-h) + 1.0000000000594318

		den := 3.0822020417927147e-4
		den = den*(-h) + 5.529045357693659e-3
		den = den*(-h) + 4.676254890319496e-2
		den = den*(-h) + 2.367770140309464e-1
		den = den*(-h) + 7.657648983658903e-1
		den = den*(-h) + 1.5685497236077652
		den = den*(-h) + 1.8724286369589163
		den = den*(-h) + 1.0
		return num / den
	default:
		return specialfn.Erfcx(-fracOneOverSqrt2*h)*(h*sqrtPiOverTwo) + 1.0
	}
}

func yPrimeTailExpansionRationalFunctionPart(w float64) float64 {
	num := -6.681824903261685e4
	num = num*w + -8.383602146074198e4
	num = num*w + -2.7805745693864308e4
	num = num*w + -3.4735035445495632e3
	num = num*w + -1.7556263323542206e2
	num = num*w + -2.999999999999466

	den := 6.928651867980375e4
	den = den*w + 1.2569970380923909e5
	den = den*w + 6.688679416565168e4
	den = den*w + 1.4562545638507034e4
	den = den*w + 1.4404389037604337e3
	den = den*w + 6.3520877744831736e1
	den = den*w + 1.0

	return (num * w) / den
}

// normalisedBlackWithOptimalUseOfCodysFunctions is the Region III direct
// evaluation via Cody's erfc/erfcx, switching between them per argument to
// avoid overflow/underflow on either side of the Cody threshold.
func normalisedBlackWithOptimalUseOfCodysFunctions(halfThetaX, h, t float64) float64 {
	const codysThreshold = 0.46875
	q1 := -fracOneOverSqrt2 * (h + t)
	q2 := -fracOneOverSqrt2 * (h - t)

	var twoB float64
	switch {
	case q1 < codysThreshold && q2 < codysThreshold:
		twoB = math.Exp(halfThetaX)*specialfn.Erfc(q1) - math.Exp(-halfThetaX)*specialfn.Erfc(q2)
	case q1 < codysThreshold:
		twoB = math.Exp(halfThetaX)*specialfn.Erfc(q1) - math.Exp(-0.5*(h*h+t*t))*specialfn.Erfcx(q2)
	case q2 < codysThreshold:
		twoB = math.Exp(-0.5*(h*h+t*t))*specialfn.Erfcx(q1) - math.Exp(-halfThetaX)*specialfn.Erfc(q2)
	default:
		twoB = math.Exp(-0.5*(h*h+t*t)) * (specialfn.Erfcx(q1) - specialfn.Erfcx(q2))
	}
	return math.Max(0.5*twoB, 0.0)
}

// NormalisedVega is the normalised Black vega, phi(h,t) in undiscounted,
// unit-forward coordinates.
func NormalisedVega(h, t float64) float64 {
	return fracOneOverSqrtTwoPi * math.Exp(-0.5*(h*h+t*t))
}

// InvNormalisedVega is 1/NormalisedVega(h,t).
func InvNormalisedVega(h, t float64) float64 {
	return sqrtTwoPi * math.Exp(0.5*(h*h+t*t))
}

func lnNormalisedVega(h, t float64) float64 {
	return -0.5*(h*h+t*t) - halfOfLnTwoPi
}

// ComplementaryNormalisedBlack returns bMax - b(h,t) computed directly
// without cancellation, as 0.5*(erfcx((t+h)/sqrt2)+erfcx((t-h)/sqrt2))*exp(-0.5*(t^2+h^2)).
func ComplementaryNormalisedBlack(h, t float64) float64 {
	return 0.5 * (specialfn.Erfcx((t+h)*fracOneOverSqrt2) + specialfn.Erfcx((t-h)*fracOneOverSqrt2)) * math.Exp(-0.5*(t*t+h*h))
}

// BlackUndiscounted returns the undiscounted Black price for forward f,
// strike k, volatility sigma, and maturity t, for a call when isCall is true.
func BlackUndiscounted(isCall bool, f, k, sigma, t float64) float64 {
	s := sigma * math.Sqrt(t)
	if k == f {
		return f * specialfn.Erf((0.5*fracOneOverSqrt2)*s)
	}
	intrinsic := k - f
	if isCall {
		intrinsic = f - k
	}
	if intrinsic < 0 {
		intrinsic = 0
	}
	if s <= 0.0 {
		return intrinsic
	}
	thetaX := -math.Abs(math.Log(f/k))
	return intrinsic + math.Sqrt(f)*math.Sqrt(k)*NormalisedBlack(0.5*thetaX, thetaX/s, 0.5*s)
}
