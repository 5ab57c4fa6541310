package stage

import (
	"fmt"
	"log/slog"
	"math"
)

// Routing thresholds on the proportion of the stage's maximum score.
// These are fixed platform policy so scores stay comparable across candidates.
const (
	HardThreshold   = 0.75
	MediumThreshold = 0.40
)

// TargetFor returns the difficulty tier for a score proportion.
func TargetFor(pct float64) Difficulty {
	switch {
	case pct >= HardThreshold:
		return Hard
	case pct >= MediumThreshold:
		return Medium
	default:
		return Easy
	}
}

// Decide selects the next block without side effects. The first block whose
// target difficulty matches wins; if the tier is missing from the pool the
// first block is chosen and the decision is marked as a fallback.
func Decide(score, maxScore float64, blocks []Block) (Decision, error) {
	if math.IsNaN(maxScore) || maxScore <= 0 {
		return Decision{}, fmt.Errorf("%w: got %v", ErrInvalidScoreRange, maxScore)
	}
	if len(blocks) == 0 {
		return Decision{}, ErrNoBlocksAvailable
	}

	pct := score / maxScore
	target := TargetFor(pct)
	for _, b := range blocks {
		if b.TargetDifficulty == target {
			return Decision{BlockID: b.ID, Target: target, Pct: pct}, nil
		}
	}
	return Decision{BlockID: blocks[0].ID, Target: target, Pct: pct, Fallback: true}, nil
}

// RouteNextStage returns the id of the block the candidate takes next.
// A pool missing the target tier is routed to its first block and logged as
// a warning for post-test audit; the candidate never sees the anomaly.
func RouteNextStage(score, maxScore float64, blocks []Block) (string, error) {
	d, err := Decide(score, maxScore, blocks)
	if err != nil {
		return "", err
	}
	if d.Fallback {
		LogAnomaly(slog.Default(), d)
	}
	return d.BlockID, nil
}

// LogAnomaly writes a fallback decision to logger at warning level.
func LogAnomaly(logger *slog.Logger, d Decision) {
	logger.Warn("stage: target difficulty missing from pool, routed to first block",
		"target", string(d.Target),
		"pct", d.Pct,
		"block_id", d.BlockID,
	)
}
