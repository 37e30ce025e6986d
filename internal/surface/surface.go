// Package surface scans a set of option contracts against a data provider,
// computes each contract's implied volatility via internal/pricing, and
// applies an optional user-supplied filter expression over the results.
//
// Deterministic given provider behavior, informational-only logging, typed
// errors where useful.
package surface

import (
	"fmt"
	"math"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/optionkit/impliedvol/internal/data"
	"github.com/optionkit/impliedvol/internal/logger"
	"github.com/optionkit/impliedvol/internal/pricing"
)

// Result is one contract's resolved market data plus its implied volatility.
type Result struct {
	Underlying string    `json:"underlying"`
	Strike     float64   `json:"strike"`
	Forward    float64   `json:"forward"`
	Expiry     time.Time `json:"expiry"`
	T          float64   `json:"t"`
	IsCall     bool      `json:"is_call"`
	Price      float64   `json:"price"`
	IV         float64   `json:"iv"`
	Accuracy   float64   `json:"accuracy"`
	Err        string    `json:"error,omitempty"`
}

// variables exposed to a govaluate filter expression for each Result.
func (r Result) evalParameters() map[string]interface{} {
	return map[string]interface{}{
		"iv":     r.IV,
		"price":  r.Price,
		"strike": r.Strike,
		"dte":    time.Until(r.Expiry).Hours() / 24,
		"call":   r.IsCall,
	}
}

// Request describes one contract to scan: enough to source a quote from a
// Provider and then invert its price into an implied volatility.
type Request struct {
	Underlying string
	Strike     float64
	Forward    float64
	Expiry     time.Time
	AsOf       time.Time
	IsCall     bool
}

// Scan resolves a price for each request via p, inverts it into an implied
// volatility, and keeps only the results for which filterExpr evaluates
// true (an empty filterExpr keeps everything).
//
// filterExpr examples: "iv > 0.25 && dte < 30", "call && strike > 100".
func Scan(p data.Provider, requests []Request, filterExpr string) ([]Result, error) {
	var filter *govaluate.EvaluableExpression
	if filterExpr != "" {
		expr, err := govaluate.NewEvaluableExpression(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("surface: invalid filter expression %q: %w", filterExpr, err)
		}
		filter = expr
	}

	out := make([]Result, 0, len(requests))
	for _, req := range requests {
		t := req.Expiry.Sub(req.AsOf).Hours() / (24 * 365.25)
		price, err := p.GetOptionPrice(req.Underlying, req.Strike, req.Expiry, optType(req.IsCall), req.AsOf)
		if err != nil {
			logger.Errorf("surface: quote lookup failed for %s %.2f %s: %v", req.Underlying, req.Strike, req.Expiry, err)
			out = append(out, Result{Underlying: req.Underlying, Strike: req.Strike, Forward: req.Forward, Expiry: req.Expiry, T: t, IsCall: req.IsCall, Err: err.Error()})
			continue
		}

		result := Result{Underlying: req.Underlying, Strike: req.Strike, Forward: req.Forward, Expiry: req.Expiry, T: t, IsCall: req.IsCall, Price: price}
		sigma, err := pricing.ImpliedBlackVolatility(req.IsCall, price, req.Forward, req.Strike, t)
		if err != nil {
			logger.Debugf("surface: implied vol failed for %s %.2f: %v", req.Underlying, req.Strike, err)
			result.Err = err.Error()
		} else {
			result.IV = sigma
			thetaX := math.Log(req.Forward / req.Strike)
			result.Accuracy = pricing.ImpliedVolatilityAttainableAccuracy(price, thetaX)
		}

		if filter != nil {
			keep, err := filter.Evaluate(result.evalParameters())
			if err != nil {
				return nil, fmt.Errorf("surface: evaluating filter for %s %.2f: %w", req.Underlying, req.Strike, err)
			}
			if b, ok := keep.(bool); !ok || !b {
				continue
			}
		}

		out = append(out, result)
	}
	return out, nil
}

func optType(isCall bool) string {
	if isCall {
		return "call"
	}
	return "put"
}

