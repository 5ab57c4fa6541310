package irt

import (
	"fmt"
	"math"
)

// Response is one scored answer to an item.
type Response struct {
	Item    Item
	Correct bool
}

// quadraturePoints is the number of evenly spaced nodes on [MinTheta, MaxTheta].
const quadraturePoints = 61

// PriorEstimate is returned when no responses have been observed:
// the mean and SD of the standard-normal prior.
var PriorEstimate = AbilityEstimate{Theta: 0, StandardError: 1}

// EstimateAbility computes the expected a posteriori (EAP) ability estimate
// from the responses observed so far, using a standard-normal prior over a
// fixed quadrature grid. The result is deterministic for a given response
// sequence. StandardError is the posterior standard deviation.
func EstimateAbility(responses []Response) (AbilityEstimate, error) {
	if len(responses) == 0 {
		return PriorEstimate, nil
	}
	for i, r := range responses {
		if err := r.Item.checkCurve(); err != nil {
			return AbilityEstimate{}, fmt.Errorf("response %d: %w", i, err)
		}
	}

	step := (MaxTheta - MinTheta) / float64(quadraturePoints-1)

	// Work in log space: a long run of unlikely answers underflows a product.
	logPost := make([]float64, quadraturePoints)
	maxLog := math.Inf(-1)
	for k := range quadraturePoints {
		theta := MinTheta + float64(k)*step
		lp := -0.5 * theta * theta
		for _, r := range responses {
			p := probability(theta, r.Item)
			if r.Correct {
				lp += math.Log(p)
			} else {
				lp += math.Log1p(-p)
			}
		}
		logPost[k] = lp
		if lp > maxLog {
			maxLog = lp
		}
	}

	var sumW, sumWT float64
	weights := make([]float64, quadraturePoints)
	for k, lp := range logPost {
		w := math.Exp(lp - maxLog)
		weights[k] = w
		sumW += w
		sumWT += w * (MinTheta + float64(k)*step)
	}
	if sumW == 0 || math.IsNaN(sumW) {
		return PriorEstimate, nil
	}
	mean := sumWT / sumW

	var sumVar float64
	for k, w := range weights {
		d := MinTheta + float64(k)*step - mean
		sumVar += w * d * d
	}

	return AbilityEstimate{
		Theta:         clamp(mean, MinTheta, MaxTheta),
		StandardError: math.Sqrt(sumVar / sumW),
	}, nil
}

// TestInformation sums item information at theta over a set of items.
func TestInformation(theta float64, items []Item) (float64, error) {
	var total float64
	for _, it := range items {
		info, err := Information(theta, it)
		if err != nil {
			return 0, err
		}
		total += info
	}
	return total, nil
}
