package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSummary(t *testing.T) {
	stages := []StageResult{
		newStageResult(0, "r", 3, 4),
		newStageResult(1, "m", 1, 4),
	}
	s := BuildSummary(90*time.Second, stages)

	assert.Equal(t, 90*time.Second, s.Duration)
	assert.Equal(t, 8, s.TotalItems)
	assert.Equal(t, 4, s.TotalCorrect)
	assert.InDelta(t, 0.5, s.Accuracy, 1e-9)
	assert.InDelta(t, 0.75, s.StageResults[0].Accuracy, 1e-9)

	stages[0].BlockID = "mutated"
	assert.Equal(t, "r", s.StageResults[0].BlockID)
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(0, nil)
	assert.Zero(t, s.TotalItems)
	assert.Zero(t, s.Accuracy)
	assert.Zero(t, newStageResult(0, "x", 0, 0).Accuracy)
}
