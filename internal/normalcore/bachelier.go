// Package normalcore implements the Bachelier (normal) model's option
// pricing formula and its cancellation-free implied-volatility inversion,
// following the same "Let's Be Rational" numerical discipline as
// internal/blackcore but for additive rather than multiplicative moneyness.
package normalcore

import (
	"math"

	"github.com/optionkit/impliedvol/internal/specialfn"
)

const fracOneOverSqrtTwoPi = 0.3989422804014327
const sqrtTwoPi = 2.5066282746310002

func intrinsicValue(isCall bool, forward, strike float64) float64 {
	v := strike - forward
	if isCall {
		v = forward - strike
	}
	return math.Max(v, 0.0)
}

// phiTildeTimesX computes x*phiTilde(x) = x*Phi(x) + phi(x) without the
// cancellation a direct evaluation would suffer near x=0 and in the tails,
// via four Remez-minimax rational branches (|x|<=0.612, x>0 by reflection,
// -3.5<=x<-0.612, x<-3.5).
func phiTildeTimesX(x float64) float64 {
	if math.Abs(x) <= 0.6120031809624807 {
		h := (x*x - 1.8727394675409748e-1) * 5.33977105375508

		num := h*3.095828855856471e-5 + 2.9444812226268914e-3
		num = num*h + 1.9641549843774703e-1

		den := h*(-1.6711975835244205e-9) + 1.2901123765405732e-6
		den = den*h + 3.37354619118962e-4
		den = den*h + 3.0261016846592326e-2
		den = den*h + 1.0

		g := num / den
		return (x*g+0.5)*x + fracOneOverSqrtTwoPi
	}

	if x > 0.0 {
		return phiTildeTimesX(-x) + x
	}

	if x >= -3.5 {
		num := x*1.3291525220137583e-11 + 7.638739347414361e-10
		num = num*x + 1.9865267442385936e-5
		num = num*x + -4.444840548247636e-4
		num = num*x + 4.670481708734893e-3
		num = num*x + -2.9208930498324234e-2
		num = num*x + 1.1748934770055074e-1
		num = num*x + -2.88272501227164e-1
		num = num*x + 3.9894228040096175e-1

		den := x*4.974100533375869e-5 + -1.1151416365524861e-3
		den = den*x + 1.1843224303096223e-2
		den = den*x + -7.669740808821474e-2
		den = den*x + 3.2816118145388595e-1
		den = den*x + -9.435025002644624e-1
		den = den*x + 1.7709332198933625
		den = den*x + -1.9759061396728606
		den = den*x + 1.0

		g := num / den
		return math.Exp(-0.5*x*x) * g
	}

	w := 1.0 / (x * x)
	num := w*1.1867600400997691e4 + 1.1504988246344882e6
	num = num*w + 1.4345061123335662e6
	num = num*w + 5.516392059126862e5
	num = num*w + 8.969794159836079e4
	num = num*w + 6.812677344935879e3
	num = num*w + 2.365455662782315e2
	num = num*w + 2.999999999999991

	den := w*1.214566780409316e6 + 2.140981054061905e6
	den = den*w + 1.2329795958024322e6
	den = den*w + 3.1667374762993766e5
	den = den*w + 4.055529088467379e4
	den = den*w + 2.655135058780958e3
	den = den*w + 8.384852209273714e1
	den = den*w + 1.0

	g := num / den
	return fracOneOverSqrtTwoPi * math.Exp(-0.5*x*x) * w * (1.0 - w*g)
}

func phiTilde(x float64) float64 {
	return phiTildeTimesX(x) / x
}

// invPhiTilde inverts phiTilde via a rational initial guess (Jäckel's
// equations 2.1-2.5) followed by one Halley correction step (2.6-2.7).
func invPhiTilde(phiTildeStar float64) float64 {
	if phiTildeStar > 1.0 {
		return -invPhiTilde(1.0 - phiTildeStar)
	}

	var xBar float64
	if phiTildeStar < -0.00188203927 {
		g := 1.0 / (phiTildeStar - 0.5)
		g2 := g * g

		x1 := -9.6066952861e-5*g2 + 2.620733246e-3
		x2 := -g2*x1 + 1.6969777977e-2
		xiBarNum := -g2*x2 + 3.2114372355e-2

		d1 := g2*(-1.0472855461e-2) + 1.4528712196e-1
		d2 := -g2*d1 + 6.635646938e-1
		d3 := -g2*d2 + 1.0

		xiBar := xiBarNum / d3
		xBar = g * (xiBar*g2 + fracOneOverSqrtTwoPi)
	} else {
		h := math.Sqrt(-math.Log(-phiTildeStar))

		num := h*2.1464093351 + 5.8556997323e-1
		num = -h*num + 9.6320903635
		num = -h*num + 9.4883409779

		den := h*6.6437847132e-5 + 1.5120247828
		den = den*h + 6.5174820867e-1
		den = -h*den + 1.0

		xBar = num / den
	}

	q := (phiTilde(xBar) - phiTildeStar) * specialfn.InvNormPDF(xBar)
	x2 := xBar * xBar
	numTerm := 3.0 * q * x2 * (2.0 - q*xBar*(2.0+x2))
	denTerm := 6.0 - q*xBar*(12.0-xBar*(6.0*q+xBar*(q*xBar*(3.0+x2)-6.0)))
	return xBar + numTerm/denTerm
}

// Price returns the Bachelier model price for a call when isCall is true.
func Price(isCall bool, forward, strike, sigma, t float64) float64 {
	s := sigma * math.Sqrt(t)
	if s == 0.0 {
		return intrinsicValue(isCall, forward, strike)
	}
	moneyness := strike - forward
	if isCall {
		moneyness = forward - strike
	}
	x := moneyness / s
	return s * phiTildeTimesX(x)
}

// ImpliedVolatility solves for sigma such that Price(isCall,forward,strike,
// sigma,t) == price, returning false as the second result when price is
// below the model's intrinsic-value floor.
func ImpliedVolatility(isCall bool, price, forward, strike, t float64) (float64, bool) {
	intrinsic := intrinsicValue(isCall, forward, strike)
	switch {
	case price < intrinsic:
		return 0, false
	case price == intrinsic:
		return 0, true
	case forward == strike:
		return price * sqrtTwoPi / math.Sqrt(t), true
	default:
		absoluteMoneyness := math.Abs(forward - strike)
		phiTildeStar := (intrinsic - price) / absoluteMoneyness
		xStar := invPhiTilde(phiTildeStar)
		return absoluteMoneyness / math.Abs(xStar*math.Sqrt(t)), true
	}
}
