package specialfn

import "math"

const fracSqrt2Pi = 0.3989422804014327 // 1/sqrt(2*pi)
const fracInvSqrt2 = 0.70710678118654752440 // 1/sqrt(2)

// NormPDF is the standard normal density function.
func NormPDF(x float64) float64 {
	return fracSqrt2Pi * math.Exp(-0.5*x*x)
}

// InvNormPDF is 1/NormPDF(x), used where dividing by the density directly
// would be less accurate than multiplying by its reciprocal's closed form.
func InvNormPDF(x float64) float64 {
	return math.Sqrt(2*math.Pi) * math.Exp(0.5*x*x)
}

// NormCDF returns the standard normal cumulative distribution function at z,
// using the Abramowitz-Stegun 26.2.12 asymptotic series for z <= -10 and
// 0.5*erfc(-z/sqrt(2)) otherwise.
func NormCDF(z float64) float64 {
	const (
		firstThreshold  = -10.0
		secondThreshold = -67108864.0
	)
	if z <= firstThreshold {
		sum := 1.0
		if z >= secondThreshold {
			zsqr := z * z
			i := 4.0
			g := 1.0
			a := math.MaxFloat64
			for {
				lasta := a
				x := (i - 3.0) / zsqr
				y := x * ((i - 1.0) / zsqr)
				a = g * (x - y)
				sum -= a
				g *= y
				i += 4.0
				a = math.Abs(a)
				if !(lasta > a && a >= math.Abs(sum*2.220446049250313e-16)) {
					break
				}
			}
		}
		return -NormPDF(z) * sum / z
	}
	return 0.5 * Erfc(-z*fracInvSqrt2)
}

const uMax = 0.3413447460685429
const uMax2 = uMax * uMax

// inverseNormCDFMHalfForMidrangeProbabilities returns InverseNormCDF(0.5+u)-0
// via a rational approximation valid for |u| < uMax.
func inverseNormCDFMHalfForMidrangeProbabilities(u float64) float64 {
	s := uMax2 - u*u

	num := -7.5893988140125925
	num = num*s + 134.23324350265386
	num = num*s + 690.4892420614086
	num = num*s + 749.9778145665792
	num = num*s + 301.8705419229339
	num = num*s + 50.26057216730310
	num = num*s + 2.929589546983088

	den := 179.2270085081026
	den = den*s + 479.12391450975673
	den = den*s + 386.82120854041744
	den = den*s + 129.4041204487553
	den = den*s + 18.9185380745746
	den = den*s + 1.0

	return u * (num / den)
}

// inverseNormCDFForLowProbabilities returns InverseNormCDF(p) for small p,
// via five Remez-minimax rational branches in r = sqrt(-ln(p)).
func inverseNormCDFForLowProbabilities(p float64) float64 {
	r := math.Sqrt(-math.Log(p))

	var num, den float64
	switch {
	case r < 2.05:
		num = -13.054072340494093
		num = num*r + -83.38389400363697
		num = num*r + -74.59468772604593
		num = num*r + 65.45129211026145
		num = num*r + 47.17059060074069
		num = num*r + 3.691562302945566

		den = 0.0001829517485205353
		den = den*r + 9.221688797873743
		den = den*r + 59.270122556046076
		den = den*r + 71.81381218257926
		den = den*r + 20.837211328697755
		den = den*r + 1.0
	case r < 3.41:
		num = -1.2013147879435526
		num = num*r + -10.059163395686461
		num = num*r + -18.12544277917892
		num = num*r + 0.6839737025659153
		num = num*r + 14.49177828689122
		num = num*r + 3.234017911631797

		den = 0.000010957576098829594
		den = den*r + 0.8488489219914925
		den = den*r + 7.136981105610977
		den = den*r + 14.6563706651768
		den = den*r + 8.882093177330434
		den = den*r + 1.0
	case r < 6.7:
		num = -0.15414319494013598
		num = num*r + -2.8699061335882528
		num = num*r + -11.070534689309367
		num = num*r + -5.163392911552553
		num = num*r + 9.948372431703657
		num = num*r + 3.1252235780087583

		den = 1.3565983564441297e-7
		den = den*r + 0.10897972234131830
		den = den*r + 2.030707606430904
		den = den*r + 8.108634112236153
		den = den*r + 7.076769154309171
		den = den*r + 1.0
	case r < 12.9:
		num = -0.01612303318390145
		num = num*r + -0.47595169546783217
		num = num*r + -2.9644251353150604
		num = num*r + -0.06512759375378167
		num = num*r + -3.688196041019692
		num = num*r + 2.250881388987032
		num = num*r + 2.6161264950897283

		den = 0.0000000030848093570966786
		den = den*r + 0.011400087282177594
		den = den*r + 0.336637464056264
		den = den*r + 2.128203027215319
		den = den*r + 3.251745516903592
		den = den*r + 1.0
	default:
		num = -0.0010566357727202584
		num = num*r + -0.06512759375378167
		num = num*r + -0.8638518121921376
		num = num*r + -2.589445156846573
		num = num*r + -0.04279965073450209
		num = num*r + 2.32268490478723

		den = 0.000000000023135343206304888
		den = den*r + 0.0007471447992167226
		den = den*r + 0.04605497451247444
		den = den*r + 0.613208413291975
		den = den*r + 1.9361316119254413
		den = den*r + 1.0
	}
	return num / den
}

// InverseNormCDF returns the quantile function (inverse CDF) of the standard
// normal distribution at p in (0,1).
func InverseNormCDF(p float64) float64 {
	u := p - 0.5
	if math.Abs(u) < uMax {
		return inverseNormCDFMHalfForMidrangeProbabilities(u)
	}
	if u > 0 {
		return -inverseNormCDFForLowProbabilities(1.0 - p)
	}
	return inverseNormCDFForLowProbabilities(p)
}

// Erfinv returns the inverse error function of e, for e in (-1, 1).
func Erfinv(e float64) float64 {
	if math.Abs(e) < 2.0*uMax {
		return inverseNormCDFMHalfForMidrangeProbabilities(0.5*e) * fracInvSqrt2
	}
	if e < 0.0 {
		return inverseNormCDFForLowProbabilities(0.5*e+0.5) * fracInvSqrt2
	}
	return -inverseNormCDFForLowProbabilities(-0.5*e+0.5) * fracInvSqrt2
}
