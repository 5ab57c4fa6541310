// Package stage routes a candidate to the next block of a multi-stage
// adaptive test based on aggregate performance in the stage just completed.
package stage

import (
	"errors"
	"fmt"
)

// Difficulty is the target difficulty tier of a pre-assembled block.
type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// Difficulties lists the tiers from easiest to hardest.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Valid reports whether d is one of the three routing tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Block is a pre-assembled group of items at one difficulty tier.
type Block struct {
	ID               string     `json:"id"`
	TargetDifficulty Difficulty `json:"target_difficulty"`
	AssetURLs        []string   `json:"asset_urls"`
}

// Decision records how a route was chosen.
type Decision struct {
	BlockID string
	Target  Difficulty
	Pct     float64
	// Fallback is set when no block matched Target and the first block of
	// the pool was used instead.
	Fallback bool
}

var (
	// ErrInvalidScoreRange is returned when maxScore is not positive.
	ErrInvalidScoreRange = errors.New("invalid score range: maxScore must be positive")

	// ErrNoBlocksAvailable is returned when the routing pool is empty.
	ErrNoBlocksAvailable = errors.New("no blocks available for routing")
)

// PoolError describes an assembly defect in a block pool.
type PoolError struct {
	BlockID string
	Problem string
}

func (e *PoolError) Error() string {
	if e.BlockID == "" {
		return fmt.Sprintf("block pool: %s", e.Problem)
	}
	return fmt.Sprintf("block pool: block %q: %s", e.BlockID, e.Problem)
}
