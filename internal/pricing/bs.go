// Package pricing exposes the external option-pricing and implied-volatility
// interface: undiscounted Black (lognormal) and Bachelier (normal) prices,
// their vegas, and full-precision implied volatility inversion. The
// numerical heavy lifting lives in internal/blackcore and
// internal/normalcore; this package validates inputs and adapts sentinel
// return values into idiomatic Go errors.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/optionkit/impliedvol/internal/blackcore"
	"github.com/optionkit/impliedvol/internal/normalcore"
)

var validate = validator.New()

// ErrPriceBelowIntrinsic is returned when a quoted price is below the
// model's no-arbitrage intrinsic-value floor.
var ErrPriceBelowIntrinsic = errors.New("pricing: price is below intrinsic value")

// ErrPriceAboveMaximum is returned when a quoted price exceeds the model's
// attainable supremum (undiscounted forward for a call, strike for a put).
var ErrPriceAboveMaximum = errors.New("pricing: price exceeds the model's maximum attainable value")

// BlackQuote describes a single European option quote under the lognormal
// (Black) model, expressed in undiscounted forward terms.
type BlackQuote struct {
	IsCall bool
	Price  float64 `validate:"gte=0"`
	Forward float64 `validate:"gt=0"`
	Strike  float64 `validate:"gt=0"`
	T       float64 `validate:"gt=0"`
}

func (q BlackQuote) validateSelf() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("pricing: invalid black quote: %w", err)
	}
	return nil
}

// Black returns the undiscounted Black/lognormal price of a European option.
func Black(isCall bool, forward, strike, sigma, t float64) (float64, error) {
	if forward <= 0 || strike <= 0 || t <= 0 || sigma < 0 {
		return 0, fmt.Errorf("pricing: invalid black inputs f=%v k=%v sigma=%v t=%v", forward, strike, sigma, t)
	}
	return blackcore.BlackUndiscounted(isCall, forward, strike, sigma, t), nil
}

// NormalisedBlack returns the normalised Black function b(h,t) directly, for
// callers already working in log-moneyness/half-vol coordinates.
func NormalisedBlack(halfThetaX, h, t float64) float64 {
	return blackcore.NormalisedBlack(halfThetaX, h, t)
}

// ComplementaryNormalisedBlack returns bMax(t) - b(h,t), evaluated without
// cancellation for deep in-the-money options.
func ComplementaryNormalisedBlack(h, t float64) float64 {
	return blackcore.ComplementaryNormalisedBlack(h, t)
}

// Vega returns the undiscounted Black vega dPrice/dSigma.
func Vega(forward, strike, sigma, t float64) float64 {
	s := sigma * math.Sqrt(t)
	thetaX := -math.Abs(math.Log(forward/strike))
	h := thetaX / s
	tt := 0.5 * s
	return math.Sqrt(forward) * math.Sqrt(strike) * blackcore.NormalisedVega(h, tt) * math.Sqrt(t)
}

// NormalisedVega returns the normalised Black vega in (h,t) coordinates.
func NormalisedVega(h, t float64) float64 { return blackcore.NormalisedVega(h, t) }

// Volga returns the undiscounted Black volga (vomma), d^2Price/dSigma^2.
// Computed by central finite difference on Vega with a bump of 1e-4 in sigma.
func Volga(forward, strike, sigma, t float64) float64 {
	const bump = 1e-4
	return (Vega(forward, strike, sigma+bump, t) - Vega(forward, strike, sigma-bump, t)) / (2 * bump)
}

// NormalisedVolga is the normalised-coordinates counterpart of Volga,
// d^2b/ds^2 = vega*(h^2-t^2)/s with s = 2t.
func NormalisedVolga(h, t float64) float64 {
	return blackcore.NormalisedVega(h, t) * (h*h - t*t) / (2 * t)
}

// ImpliedBlackVolatility inverts an undiscounted European option price into
// the lognormal (Black) implied volatility via "Let's Be Rational".
func ImpliedBlackVolatility(isCall bool, price, forward, strike, t float64) (float64, error) {
	q := BlackQuote{IsCall: isCall, Price: price, Forward: forward, Strike: strike, T: t}
	if err := q.validateSelf(); err != nil {
		return 0, err
	}
	sigma := blackcore.ImpliedBlackVolatility(isCall, price, forward, strike, t)
	switch sigma {
	case blackcore.VolatilityBelowIntrinsic:
		return 0, ErrPriceBelowIntrinsic
	case blackcore.VolatilityAboveMaximum:
		return 0, ErrPriceAboveMaximum
	}
	return sigma, nil
}

// NormalisedImpliedBlackVolatility inverts beta = b(theta_x, s) directly in
// normalised coordinates, returning s = sigma*sqrt(t).
func NormalisedImpliedBlackVolatility(beta, thetaX float64) (float64, error) {
	s := blackcore.LetsBeRational(beta, thetaX)
	switch s {
	case blackcore.VolatilityBelowIntrinsic:
		return 0, ErrPriceBelowIntrinsic
	case blackcore.VolatilityAboveMaximum:
		return 0, ErrPriceAboveMaximum
	}
	return s, nil
}

// Bachelier returns the undiscounted Bachelier/normal price of a European
// option on an additive (not log-) moneyness basis.
func Bachelier(isCall bool, forward, strike, sigma, t float64) (float64, error) {
	if t <= 0 || sigma < 0 {
		return 0, fmt.Errorf("pricing: invalid bachelier inputs sigma=%v t=%v", sigma, t)
	}
	return normalcore.Price(isCall, forward, strike, sigma, t), nil
}

// ImpliedNormalVolatility inverts an undiscounted Bachelier price into the
// normal-model implied volatility.
func ImpliedNormalVolatility(isCall bool, price, forward, strike, t float64) (float64, error) {
	if t <= 0 {
		return 0, fmt.Errorf("pricing: invalid expiry t=%v", t)
	}
	sigma, ok := normalcore.ImpliedVolatility(isCall, price, forward, strike, t)
	if !ok {
		return 0, ErrPriceBelowIntrinsic
	}
	return sigma, nil
}

// BlackAccuracyFactor returns the heuristic error scale 1+|thetaX|/8
// (exactly 1 when thetaX is 0). It depends on thetaX alone: beta is not
// used, and the result is not the ratio s*db/ds / b.
func BlackAccuracyFactor(beta, thetaX float64) float64 {
	if thetaX == 0 {
		return 1.0
	}
	return 1.0 + math.Abs(thetaX)/8.0
}

// ImpliedVolatilityAttainableAccuracy estimates the attainable relative
// accuracy of the implied volatility returned for a given (beta, thetaX)
// pair as 2*epsilon*BlackAccuracyFactor(beta, thetaX), used by test
// harnesses to set reconstruction tolerances rather than a single global
// epsilon. Like BlackAccuracyFactor, it does not depend on beta.
func ImpliedVolatilityAttainableAccuracy(beta, thetaX float64) float64 {
	const oneUlp = 2.220446049250313e-16
	return oneUlp * BlackAccuracyFactor(beta, thetaX) * 2.0
}
