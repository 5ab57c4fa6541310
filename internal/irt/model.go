package irt

import "math"

const (
	// D is the logistic scaling constant that approximates the normal ogive.
	D = 1.7

	// maxExponent bounds the logistic exponent so exp never overflows.
	maxExponent = 35.0
)

// ProbabilityCorrect returns the probability that a candidate with ability
// theta answers item correctly under the 3PL model:
//
//	p = c + (1-c) / (1 + exp(-D·a·(theta-b)))
//
// The exponent is clamped to ±35, so extreme ability/difficulty gaps saturate
// at c or 1 instead of producing NaN. A NaN theta fails with ErrInvalidTheta;
// ±Inf saturates like any other extreme.
func ProbabilityCorrect(theta float64, item Item) (float64, error) {
	if err := checkInputs(theta, item); err != nil {
		return 0, err
	}
	return probability(theta, item), nil
}

func checkInputs(theta float64, item Item) error {
	if math.IsNaN(theta) {
		return ErrInvalidTheta
	}
	return item.checkCurve()
}

// probability assumes the item has already passed checkCurve.
func probability(theta float64, item Item) float64 {
	z := -D * item.Discrimination * (theta - item.Difficulty)
	z = clamp(z, -maxExponent, maxExponent)
	c := item.Guessing
	return c + (1-c)/(1+math.Exp(z))
}

// Information returns the Fisher information of item at theta:
//
//	I = D²a² · (q/p) · ((p-c)/(1-c))²
func Information(theta float64, item Item) (float64, error) {
	if err := checkInputs(theta, item); err != nil {
		return 0, err
	}
	return information(theta, item), nil
}

func information(theta float64, item Item) float64 {
	p := probability(theta, item)
	c := item.Guessing
	if p <= 0 || c >= 1 {
		return 0
	}
	q := 1 - p
	r := (p - c) / (1 - c)
	da := D * item.Discrimination
	return da * da * (q / p) * r * r
}

// clamp passes NaN through; callers reject NaN inputs first.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
