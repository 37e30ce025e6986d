package blackcore

import (
	"math"

	"github.com/optionkit/impliedvol/internal/rationalcubic"
	"github.com/optionkit/impliedvol/internal/specialfn"
)

// Sentinel volatility values signalling a price outside the model's
// attainable range, matching Jäckel's VOLATILITY_VALUE_TO_SIGNAL_* sentinels.
const (
	VolatilityBelowIntrinsic = -math.MaxFloat64
	VolatilityAboveMaximum   = math.MaxFloat64
)

func bUOverBMax(sc float64) float64 {
	if sc >= 2.449489742783178 {
		y := 1.0 / sc
		g := y*(-1.2291897122716544) + 6.589280957677407e2
		g = g*y + 6.16969283512917e2
		g = g*y + 2.983680162805663e2
		g = g*y + 8.488089220080239e1
		g = g*y + 1.4553198862493977e1
		g = g*y + 1.3751630820772591
		g = g*y + -4.605394817212609e-2

		den := y*5.206084752279256e2 + 8.881238333960678e2
		den = den*y + 8.698830313690185e2
		den = den*y + 5.079647179123228e2
		den = den*y + 2.0304204599521773e2
		den = den*y + 5.436378146588073e1
		den = den*y + 9.327034903790405
		den = den*y + 1.0

		g = g / den
		return (y*g + -1.2533141373155003) * (0.11398453194149906 * y) + 0.8949542972780313
	}
	num := sc*(-3.3867568170011765e-9) + -8.733991026156887e-4
	num = num*sc + -8.143812878548491e-3
	num = num*sc + -3.51213374104169e-2
	num = num*sc + -8.976383086137545e-2
	num = num*sc + -1.416368116424721e-1
	num = num*sc + -1.344864378589371e-1
	num = num*sc + -6.063099880334851e-2

	den := sc*1.4212067435291778e-2 + 1.324801623892073e-1
	den = den*sc + 5.959161649351221e-1
	den = den*sc + 1.6527347941968487
	den = den*sc + 3.0186389537663896
	den = den*sc + 3.6503350360158846
	den = den*sc + 2.7220033406555055
	den = den*sc + 1.0

	g := num / den
	return (sc*g + 6.146168058051474e-2) * (sc * sc) + 7.899085945560628e-1
}

func bLOverBMax(sc float64) float64 {
	switch {
	case sc < 0.7099295739719539:
		num := sc*4.5425102093616064e-7 + -6.40363993414798e-6
		num = num*sc + 5.971692845958919e-3
		num = num*sc + 3.9760631445677055e-2
		num = num*sc + 9.80789117863589e-2
		num = num*sc + 8.074107237288286e-2

		den := sc*6.125459704983172e-2 + 4.613270710865565e-1
		den = den*sc + 1.365880147571179
		den = den*sc + 1.8594977672287665
		den = den*sc + 1.0

		g := num / den
		return (sc * sc) * (sc*(sc*g+-9.672719281339437e-2) + 7.560996640296362e-2)
	case sc < 2.6267851073127395:
		num := sc*6.971140063983471e-4 + 6.584925270230231e-3
		num = num*sc + 2.9537058950963018e-2
		num = num*sc + 6.917130174466835e-2
		num = num*sc + 7.561014227254904e-2
		num = num*sc + -2.7081288564685587e-8
		num = num*sc + 1.979573792759858e-9

		den := sc*6.63619758278612e-3 + 7.171486244882935e-2
		den = den*sc + 3.783162225306046e-1
		den = den*sc + 1.1571483187179783
		den = den*sc + 2.129710354999518
		den = den*sc + 2.194144852558658
		den = den*sc + 1.0

		return num / den
	case sc < 7.348469228349534:
		num := sc*1.7012579407246055e-3 + 1.002291337825409e-2
		num = num*sc + 3.9225177407687606e-2
		num = num*sc + 7.403965818682282e-2
		num = num*sc + 7.411485544834501e-2
		num = num*sc + 5.311803397279465e-4
		num = num*sc + -9.332511535483788e-5

		den := sc*1.6195405895930937e-2 + 1.1744005919716101e-1
		den = den*sc + 5.323125844350184e-1
		den = den*sc + 1.391232364627114
		den = den*sc + 2.3441816707087404
		den = den*sc + 2.2217238132228134
		den = den*sc + 1.0

		return num / den
	default:
		num := sc*1.6930208078421475e-3 + 5.183252617163152e-3
		num = num*sc + 2.9342405658628445e-2
		num = num*sc + 3.9216108578204636e-2
		num = num*sc + 7.168217831093633e-2
		num = num*sc + -1.5116692485011196e-3
		num = num*sc + 1.4500072297240604e-3

		den := sc*1.6116992546788677e-2 + 7.126137099644303e-2
		den = den*sc + 3.754374213737579e-1
		den = den*sc + 8.487830756737222e-1
		den = den*sc + 1.6823159175281532
		den = den*sc + 1.6176313502305415
		den = den*sc + 1.0

		return num / den
	}
}

func computeFLowerMapAndFirstTwoDerivatives(thetaX, s float64) (f, df, d2f float64) {
	z := -oneOverSqrtThree * thetaX / s
	y := z * z
	s2 := s * s
	phiM := 0.5 * specialfn.Erfc(fracOneOverSqrt2*z)
	phi2 := phiM * phiM

	f = -twoPiOverSqrtTwentySeven * thetaX * (phi2 * phiM)
	df = 2 * math.Pi * y * phi2 * math.Exp(s2*0.125+y)
	d2f = (math.Pi / 6.0) * y / (s2 * s) * phiM *
		(-8.0*sqrtThree*s*thetaX + (3.0*s2*(s2-8.0) - 8.0*thetaX*thetaX)*phiM*specialfn.InvNormPDF(z)) *
		math.Exp(2.0*y + 0.25*s2)
	return
}

func inverseFLowerMap(x, f float64) float64 {
	return math.Abs(x * oneOverSqrtThree / specialfn.InverseNormCDF(sqrtThreeOverCubeRootTwoPi*math.Cbrt(f)/math.Cbrt(math.Abs(x))))
}

func computeFUpperMapAndFirstTwoDerivatives(x, s float64) (f, df, d2f float64) {
	w := (x / s) * (x / s)
	f = 0.5 * specialfn.Erfc((0.5*fracOneOverSqrt2)*s)
	df = -0.5 * math.Exp(0.5*w)
	d2f = sqrtPiOverTwo * math.Exp(0.125*s*s+w) * w / s
	return
}

func inverseFUpperMap(f float64) float64 {
	return -2.0 * specialfn.InverseNormCDF(f)
}

// ImpliedNormalisedVolatilityATM is the closed-form at-the-money shortcut,
// sigma*sqrt(t) = 2*sqrt(2)*erfinv(beta).
func ImpliedNormalisedVolatilityATM(beta float64) float64 {
	return 2.0 * math.Sqrt2 * specialfn.Erfinv(beta)
}

func lnInvNormalisedVega(h, t float64) float64 {
	return -lnNormalisedVega(h, t)
}

// LetsBeRational solves beta = b(theta_x, s) for s (the normalised total
// volatility sigma*sqrt(t)), where beta is the normalised option time value
// and thetaX = -|ln(F/K)| <= 0. Returns VolatilityBelowIntrinsic or
// VolatilityAboveMaximum if beta is outside the attainable range.
func LetsBeRational(beta, thetaX float64) float64 {
	if beta <= 0 {
		if beta == 0 {
			return 0
		}
		return VolatilityBelowIntrinsic
	}
	bMax := math.Exp(0.5 * thetaX)
	if beta >= bMax {
		return VolatilityAboveMaximum
	}
	if thetaX == 0 {
		return ImpliedNormalisedVolatilityATM(beta)
	}
	return letsBeRationalUnchecked(beta, thetaX, bMax)
}

func letsBeRationalUnchecked(beta, thetaX, bMax float64) float64 {
	var s float64
	sqrtAX := math.Sqrt(-thetaX)
	sc := math.Sqrt2 * sqrtAX
	ome := specialfn.OneMinusErfcx(sqrtAX)
	bc := 0.5 * bMax * ome

	if beta < bc {
		sl := sc - sqrtPiOverTwo*ome
		bl := bLOverBMax(sc) * bMax

		if beta < bl {
			return lowestBranch(beta, thetaX, bl, sl)
		}

		// Lower middle: sl <= s < sc
		invVl := InvNormalisedVega(thetaX/sl, 0.5*sl)
		invVc := sqrtTwoPi / bMax
		rlm := rationalcubic.ConvexControlParameterToFitSecondDerivativeAtRightSide(bl, bc, sl, sc, invVl, invVc, 0.0, false)
		s = rationalcubic.Interpolate(beta, bl, bc, sl, sc, invVl, invVc, rlm)
	} else {
		su := sc + sqrtPiOverTwo*(2.0-ome)
		bu := bUOverBMax(sc) * bMax

		if beta <= bu {
			// Upper middle: sc <= s <= su
			invVu := InvNormalisedVega(thetaX/su, 0.5*su)
			invVc := sqrtTwoPi / bMax
			rum := rationalcubic.ConvexControlParameterToFitSecondDerivativeAtLeftSide(bc, bu, sc, su, invVc, invVu, 0.0, false)
			s = rationalcubic.Interpolate(beta, bc, bu, sc, su, invVc, invVu, rum)
		} else {
			s = highestBranch(beta, thetaX, bMax, bu, su)
			if beta > 0.5*bMax {
				return highestBranchIteration(beta, thetaX, bMax, s)
			}
		}
	}

	return middleBranchIteration(beta, thetaX, s)
}

func lowestBranch(beta, thetaX, bl, sl float64) float64 {
	fLowerMapL, dFLowerMapL, d2FLowerMapL := computeFLowerMapAndFirstTwoDerivatives(thetaX, sl)
	rll := rationalcubic.ConvexControlParameterToFitSecondDerivativeAtRightSide(0.0, bl, 0.0, fLowerMapL, 1.0, dFLowerMapL, d2FLowerMapL, true)
	f := rationalcubic.Interpolate(beta, 0.0, bl, 0.0, fLowerMapL, 1.0, dFLowerMapL, rll)

	if !(f > 0.0) {
		t := beta / bl
		f = (fLowerMapL*t + bl*(1.0-t)) * t
	}

	s := inverseFLowerMap(thetaX, f)
	lnBeta := math.Log(beta)

	sLeft := math.SmallestNonzeroFloat64
	sRight := sl
	directionReversalCount := 0
	var dsPrevious, ds float64

	for i := 0; i < 2; i++ {
		if i > 0 {
			if ds*dsPrevious < 0.0 {
				directionReversalCount++
			}
			if directionReversalCount == 3 || !(s > sLeft && s < sRight) {
				s = 0.5 * (sLeft + sRight)
				if (sRight - sLeft) <= epsilon*s {
					return s
				}
				directionReversalCount = 0
				dsPrevious = 0.0
			} else {
				dsPrevious = ds
			}
		}

		h := thetaX / s
		t := 0.5 * s
		bx, lnVega := ScaledNormalisedBlackAndLnVega(0.5*thetaX, h, t)

		lnB := math.Log(bx) + lnVega
		b := math.Exp(lnB)
		bpob := 1.0 / bx
		bp := bpob * b

		if b > beta && s < sRight {
			sRight = s
		} else if b < beta && s > sLeft {
			sLeft = s
		}

		if !(b > 0.0 && bp > 0.0) {
			ds = 0.5*(sLeft+sRight) - s
		} else {
			x2OverS3 := h * h / s
			bH2 := -0.5*t + x2OverS3
			v := (lnBeta - lnB) * lnB / lnBeta * bx
			lambda := 1.0 / lnB
			otLambda := lambda + lambda + 1.0

			h2 := bH2 - otLambda*bpob
			c := 3.0 * (x2OverS3 / s)
			bH3 := bH2*bH2 - c - 0.25
			sqBpob := bpob * bpob
			bppobTriple := 3.0 * bH2 * bpob
			muPlus2 := (1.0+lambda)*(6.0*lambda) + 2.0
			h3 := sqBpob*muPlus2 + bH3 - bppobTriple*otLambda

			if thetaX < -190.0 {
				h4 := bH2*(bH3-0.5) - (bH2-2.0/s)*2.0*c -
					(4.0*bH3*bpob)*(-otLambda) -
					bpob*(sqBpob*(((24.0*lambda+36.0)*lambda+22.0)*lambda+6.0)-2.0*bppobTriple*muPlus2) -
					(-bppobTriple * otLambda)
				ds = v * householder4Factor(v, h2, h3, h4)
			} else {
				ds = v * householder3Factor(v, h2, h3)
			}
		}

		if math.Abs(ds) <= epsilon*s {
			return s
		}
		s += ds
	}
	return s
}

func highestBranch(beta, thetaX, bMax, bu, su float64) float64 {
	fUpperMapH, dFUpperMapH, d2FUpperMapH := computeFUpperMapAndFirstTwoDerivatives(thetaX, su)
	h := bMax - bu
	f := math.Inf(-1)
	if d2FUpperMapH > -sqrtDblMax && d2FUpperMapH < sqrtDblMax {
		ruu := rationalcubic.ConvexControlParameterToFitSecondDerivativeAtLeftSide(bu, bMax, fUpperMapH, 0.0, dFUpperMapH, -0.5, d2FUpperMapH, true)
		f = rationalcubic.Interpolate(beta, bu, bMax, fUpperMapH, 0.0, dFUpperMapH, -0.5, ruu)
	}
	if f <= 0.0 {
		t := (beta - bu) / h
		f = (fUpperMapH*(1.0-t) + 0.5*h*t) * (1.0 - t)
	}
	return inverseFUpperMap(f)
}

func highestBranchIteration(beta, thetaX, bMax, s float64) float64 {
	betaBar := bMax - beta
	for i := 0; i < 2; i++ {
		h := thetaX / s
		t := 0.5 * s
		gp := sqrtTwoOverPi / (specialfn.Erfcx((t+h)*fracOneOverSqrt2) + specialfn.Erfcx((t-h)*fracOneOverSqrt2))
		g := math.Log(betaBar*gp) + lnInvNormalisedVega(h, t)
		x2OverS3 := h * h / s
		bH2 := -0.5*t + x2OverS3
		c := 3.0 * x2OverS3 / s
		bH3 := bH2*bH2 - c - 0.25
		v := -g / gp
		h2 := bH2 + gp
		h3 := gp*(2.0*gp+3.0*bH2) + bH3

		var ds float64
		if thetaX < -580.0 {
			h4 := gp*(4.0*bH3+(6.0*gp)*(bH2*2.0+gp)+3.0*bH2*bH2) + (bH2*(bH3-0.5) - (bH2-2.0/s)*2.0*c)
			ds = v * householder4Factor(v, h2, h3, h4)
		} else {
			ds = v * householder3Factor(v, h2, h3)
		}

		if math.Abs(ds) <= epsilon*s {
			return s
		}
		s += ds
		_ = i
	}
	return s
}

func middleBranchIteration(beta, thetaX, s float64) float64 {
	for i := 0; i < 2; i++ {
		h := thetaX / s
		t := 0.5 * s
		b := NormalisedBlack(0.5*thetaX, h, t)
		bp := NormalisedVega(h, t)
		nu := (beta - b) / bp
		h2 := -0.5*t + h*h/s
		h3 := h2*h2 - 3.0*(h/s)*(h/s) - 0.25
		ds := nu * householder3Factor(nu, h2, h3)

		if math.Abs(ds) <= epsilon*s {
			return s
		}
		s += ds
		_ = i
	}
	return s
}

const epsilon = 2.220446049250313e-16

func householder3Factor(v, h2, h3 float64) float64 {
	return (v*(0.5*h2) + 1.0) / ((v*(h3/6.0)+h2)*v + 1.0)
}

func householder4Factor(v, h2, h3, h4 float64) float64 {
	return ((v*(h3/6.0)+h2)*v + 1.0) / (((v*(h4/24.0)+h2*(h2/4.0)+h3/3.0)*v+1.5*h2)*v + 1.0)
}

// ImpliedBlackVolatility solves for the volatility sigma given an
// undiscounted option price, forward f, strike k, and maturity t, for a call
// when isCall is true. Returns +Inf for a price exactly equal to the model's
// upper bound (f for a call, k for a put) and
// VolatilityBelowIntrinsic/VolatilityAboveMaximum sentinels outside the
// attainable range.
func ImpliedBlackVolatility(isCall bool, price, f, k, t float64) float64 {
	boundary := k
	if isCall {
		boundary = f
	}
	if price >= boundary {
		if price == boundary {
			return math.Inf(1)
		}
		return VolatilityAboveMaximum
	}
	intrinsic := k - f
	if isCall {
		intrinsic = f - k
	}
	normalisedTimeValue := price
	if intrinsic > 0 {
		normalisedTimeValue = price - intrinsic
	}
	normalisedTimeValue /= math.Sqrt(f) * math.Sqrt(k)
	if normalisedTimeValue <= math.SmallestNonzeroFloat64 {
		if normalisedTimeValue >= 0 {
			return 0
		}
		return VolatilityBelowIntrinsic
	}
	if f == k {
		return ImpliedNormalisedVolatilityATM(normalisedTimeValue) / math.Sqrt(t)
	}
	s := LetsBeRational(normalisedTimeValue, -math.Abs(math.Log(f)-math.Log(k)))
	if s == VolatilityBelowIntrinsic || s == VolatilityAboveMaximum {
		return s
	}
	return s / math.Sqrt(t)
}
