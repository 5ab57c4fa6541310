package irt

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func sampleItems() []Item {
	return []Item{
		{ID: "easy-lowdisc", Difficulty: -2.0, Discrimination: 0.5, Guessing: 0},
		{ID: "mid", Difficulty: 0.0, Discrimination: 1.2, Guessing: 0.2},
		{ID: "hard-sharp", Difficulty: 2.5, Discrimination: 2.5, Guessing: 0.25},
		{ID: "mc4", Difficulty: 1.0, Discrimination: 1.0, Guessing: 0.25},
	}
}

func TestProbabilityCorrect_AtDifficulty(t *testing.T) {
	// At theta == b the logistic term is exactly one half.
	item := Item{ID: "i1", Difficulty: 0.5, Discrimination: 1.3, Guessing: 0.2}
	p, err := ProbabilityCorrect(0.5, item)
	require.NoError(t, err)
	assert.InDelta(t, 0.2+0.8*0.5, p, epsilon)
}

func TestProbabilityCorrect_KnownValue(t *testing.T) {
	item := Item{ID: "i1", Difficulty: 0, Discrimination: 1, Guessing: 0}
	p, err := ProbabilityCorrect(1, item)
	require.NoError(t, err)
	want := 1 / (1 + math.Exp(-1.7))
	assert.InDelta(t, want, p, epsilon)
}

func TestProbabilityCorrect_StrictlyWithinBounds(t *testing.T) {
	for _, item := range sampleItems() {
		for theta := MinTheta; theta <= MaxTheta; theta += 0.25 {
			p, err := ProbabilityCorrect(theta, item)
			require.NoError(t, err)
			if p <= item.Guessing || p >= 1 {
				t.Errorf("item %s theta %.2f: p = %v, want in (%v, 1)", item.ID, theta, p, item.Guessing)
			}
		}
	}
}

func TestProbabilityCorrect_Monotonic(t *testing.T) {
	for _, item := range sampleItems() {
		prev := -1.0
		for theta := -10.0; theta <= 10.0; theta += 0.05 {
			p, err := ProbabilityCorrect(theta, item)
			require.NoError(t, err)
			if p < prev {
				t.Fatalf("item %s: p decreased at theta %.2f (%v < %v)", item.ID, theta, p, prev)
			}
			prev = p
		}
	}
}

func TestProbabilityCorrect_Saturation(t *testing.T) {
	for _, item := range sampleItems() {
		for _, theta := range []float64{-40, -1e6, math.Inf(-1)} {
			p, err := ProbabilityCorrect(theta, item)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(p))
			assert.InDelta(t, item.Guessing, p, 1e-6, "item %s theta %v", item.ID, theta)
		}
		for _, theta := range []float64{40, 1e6, math.Inf(1)} {
			p, err := ProbabilityCorrect(theta, item)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(p))
			assert.InDelta(t, 1.0, p, 1e-6, "item %s theta %v", item.ID, theta)
		}
	}
}

func TestProbabilityCorrect_InvalidDiscrimination(t *testing.T) {
	tests := []struct {
		name string
		a    float64
	}{
		{"zero", 0},
		{"negative", -0.8},
		{"nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProbabilityCorrect(0, Item{ID: "bad", Discrimination: tt.a})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidItemParameters))

			var pe *ItemParamError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "bad", pe.ItemID)
			assert.Equal(t, "discrimination", pe.Param)
		})
	}
}

func TestProbabilityCorrect_NaNInputs(t *testing.T) {
	item := Item{ID: "q", Difficulty: 0.5, Discrimination: 1.2, Guessing: 0.2}

	p, err := ProbabilityCorrect(math.NaN(), item)
	assert.ErrorIs(t, err, ErrInvalidTheta)
	assert.False(t, math.IsNaN(p))

	_, err = Information(math.NaN(), item)
	assert.ErrorIs(t, err, ErrInvalidTheta)

	p, err = ProbabilityCorrect(math.Inf(1), item)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, 1e-9)

	bad := item
	bad.Difficulty = math.NaN()
	_, err = ProbabilityCorrect(0, bad)
	assert.ErrorIs(t, err, ErrInvalidItemParameters)

	bad = item
	bad.Guessing = math.NaN()
	_, err = ProbabilityCorrect(0, bad)
	assert.ErrorIs(t, err, ErrInvalidItemParameters)
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"valid", Item{ID: "ok", Difficulty: 1, Discrimination: 1, Guessing: 0.2}, false},
		{"upper bounds", Item{ID: "ok", Difficulty: 3, Discrimination: 2.5, Guessing: 0.25}, false},
		{"discrimination too high", Item{ID: "x", Difficulty: 0, Discrimination: 3, Guessing: 0}, true},
		{"difficulty out of range", Item{ID: "x", Difficulty: -3.5, Discrimination: 1, Guessing: 0}, true},
		{"guessing too high", Item{ID: "x", Difficulty: 0, Discrimination: 1, Guessing: 0.3}, true},
		{"negative guessing", Item{ID: "x", Difficulty: 0, Discrimination: 1, Guessing: -0.1}, true},
		{"zero discrimination", Item{ID: "x", Difficulty: 0, Discrimination: 0, Guessing: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidItemParameters)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInformation_PeaksNearDifficulty(t *testing.T) {
	item := Item{ID: "i", Difficulty: 0.5, Discrimination: 1.5, Guessing: 0}
	atB, err := Information(0.5, item)
	require.NoError(t, err)
	far, err := Information(-2.5, item)
	require.NoError(t, err)
	assert.Greater(t, atB, far)

	// Without guessing, I(b) = (D·a)²/4.
	assert.InDelta(t, math.Pow(D*1.5, 2)/4, atB, 1e-9)
}

func TestInformation_InvalidItem(t *testing.T) {
	_, err := Information(0, Item{ID: "bad"})
	assert.ErrorIs(t, err, ErrInvalidItemParameters)
}
