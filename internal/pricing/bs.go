package pricing

import (
	"math"
)

const sqrt2Pi = 2.5066282746310002

// Result holds the call and put prices derived from a single validated Request.
// Both legs are always computed together.
type Result struct {
	Call float64 `json:"call_price"`
	Put  float64 `json:"put_price"`
}

// Price validates req and computes the Black-Scholes price of a European call
// and a European put on the same inputs.
//
// Parameters:
//   - req: spot, strike, time to expiry (years), risk-free rate and volatility
//
// Returns:
//
//	Both prices, or an *InvalidInputError (matching ErrInvalidInput) when any
//	input is non-finite or S, K, T, sigma are not strictly positive. No partial
//	result is returned on error.
func Price(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	call, put := blackScholes(req.Spot, req.Strike, req.TimeToExpiry, req.RiskFreeRate, req.Volatility)
	return Result{Call: call, Put: put}, nil
}

// PriceKind validates req, computes both prices and returns the one selected by kind.
// An unrecognized kind is reported as an *InvalidInputError.
func PriceKind(req Request, kind OptionKind) (float64, error) {
	if !kind.Valid() {
		return 0, &InvalidInputError{Field: "kind", Value: string(kind), Reason: "must be call or put"}
	}

	res, err := Price(req)
	if err != nil {
		return 0, err
	}
	if kind == Call {
		return res.Call, nil
	}
	return res.Put, nil
}

// BlackScholesPrice calculates the price of a European option using the Black-Scholes model.
//
// Parameters:
//   - kind: Call or Put
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Only kind is checked: an unknown kind is an *InvalidInputError. The market
// inputs are not validated and nothing is clamped, so T or sigma at or near
// zero yield Inf or NaN. Use Price for checked inputs.
func BlackScholesPrice(
	kind OptionKind,
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
) (float64, error) {

	switch kind {
	case Call:
		call, _ := blackScholes(S, K, T, r, sigma)
		return call, nil
	case Put:
		_, put := blackScholes(S, K, T, r, sigma)
		return put, nil
	default:
		return 0, &InvalidInputError{Field: "kind", Value: string(kind), Reason: "must be call or put"}
	}
}

// blackScholes evaluates d1/d2 once and returns both legs.
func blackScholes(S, K, T, r, sigma float64) (call, put float64) {
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)
	discountedK := K * math.Exp(-r*T)

	call = S*normCDF(d1) - discountedK*normCDF(d2)
	put = discountedK*normCDF(-d2) - S*normCDF(-d1)
	return call, put
}

// BlackScholesVega calculates the vega of a European option using the Black-Scholes model.
// Vega is identical for calls and puts and is the raw sensitivity dPrice/dSigma
// (not scaled per 1% move). Inputs are not validated.
func BlackScholesVega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * normPDF(d1) * math.Sqrt(T)
}

// normPDF calculates the probability density function of the standard normal distribution.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF computes the cumulative distribution function of the standard normal distribution
// using the error function: Φ(x) = 0.5 * (1 + erf(x/√2)).
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
