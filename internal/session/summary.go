package session

import "time"

// StageResult is the raw outcome of one administered block.
type StageResult struct {
	Stage    int
	BlockID  string
	Correct  int
	Total    int
	Accuracy float64 // Correct / Total (computed)
}

// Summary holds the per-stage breakdown shown after a session.
type Summary struct {
	Duration     time.Duration
	TotalItems   int
	TotalCorrect int
	Accuracy     float64
	StageResults []StageResult
}

func newStageResult(stage int, blockID string, correct, total int) StageResult {
	var acc float64
	if total > 0 {
		acc = float64(correct) / float64(total)
	}
	return StageResult{Stage: stage, BlockID: blockID, Correct: correct, Total: total, Accuracy: acc}
}

// BuildSummary totals the stage results of a finished session.
func BuildSummary(elapsed time.Duration, stages []StageResult) Summary {
	s := Summary{
		Duration:     elapsed,
		StageResults: append([]StageResult(nil), stages...),
	}
	for _, r := range stages {
		s.TotalItems += r.Total
		s.TotalCorrect += r.Correct
	}
	if s.TotalItems > 0 {
		s.Accuracy = float64(s.TotalCorrect) / float64(s.TotalItems)
	}
	return s
}
