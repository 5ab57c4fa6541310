// Package irt implements the three-parameter logistic (3PL) item response
// model used to score candidates: response probabilities, item information,
// and expected a posteriori ability estimates.
package irt

import (
	"errors"
	"fmt"
	"math"
)

// Parameter ranges for calibrated items supplied by the item bank.
const (
	MinTheta = -3.0
	MaxTheta = 3.0

	MaxDiscrimination = 2.5
	MaxGuessing       = 0.25
)

// ErrInvalidItemParameters is returned when an item's parameters cannot
// describe a response curve (non-positive discrimination).
var ErrInvalidItemParameters = errors.New("invalid item parameters")

// ErrInvalidTheta is returned when an ability value is NaN.
var ErrInvalidTheta = errors.New("invalid theta")

// ItemParamError describes which parameter of which item was rejected.
type ItemParamError struct {
	ItemID string
	Param  string
	Value  float64
	Reason string
}

func (e *ItemParamError) Error() string {
	return fmt.Sprintf("item %q: %s=%g: %s", e.ItemID, e.Param, e.Value, e.Reason)
}

func (e *ItemParamError) Unwrap() error { return ErrInvalidItemParameters }

// Item holds the pre-calibrated 3PL parameters of a single test item.
type Item struct {
	ID             string  `json:"id"`
	Difficulty     float64 `json:"difficulty"`     // b
	Discrimination float64 `json:"discrimination"` // a
	Guessing       float64 `json:"guessing"`       // c
}

// AbilityEstimate is a point estimate of latent ability with its standard error.
type AbilityEstimate struct {
	Theta         float64 `json:"theta"`
	StandardError float64 `json:"standard_error"`
}

// checkCurve rejects parameters that would produce a flat or undefined curve.
// It is the only check applied at scoring time.
func (it Item) checkCurve() error {
	if math.IsNaN(it.Discrimination) || it.Discrimination <= 0 {
		return &ItemParamError{ItemID: it.ID, Param: "discrimination", Value: it.Discrimination, Reason: "must be positive"}
	}
	if math.IsNaN(it.Difficulty) {
		return &ItemParamError{ItemID: it.ID, Param: "difficulty", Value: it.Difficulty, Reason: "must be a number"}
	}
	if math.IsNaN(it.Guessing) {
		return &ItemParamError{ItemID: it.ID, Param: "guessing", Value: it.Guessing, Reason: "must be a number"}
	}
	return nil
}

// Validate checks every parameter against the calibrated ranges.
// Loaders call this when an item bank is read; scoring only requires a > 0.
func (it Item) Validate() error {
	if err := it.checkCurve(); err != nil {
		return err
	}
	switch {
	case it.Discrimination > MaxDiscrimination:
		return &ItemParamError{ItemID: it.ID, Param: "discrimination", Value: it.Discrimination, Reason: fmt.Sprintf("exceeds %g", MaxDiscrimination)}
	case math.IsNaN(it.Difficulty) || it.Difficulty < MinTheta || it.Difficulty > MaxTheta:
		return &ItemParamError{ItemID: it.ID, Param: "difficulty", Value: it.Difficulty, Reason: fmt.Sprintf("outside [%g, %g]", MinTheta, MaxTheta)}
	case math.IsNaN(it.Guessing) || it.Guessing < 0 || it.Guessing > MaxGuessing:
		return &ItemParamError{ItemID: it.ID, Param: "guessing", Value: it.Guessing, Reason: fmt.Sprintf("outside [0, %g]", MaxGuessing)}
	}
	return nil
}
