package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bandwise/internal/band"
	"github.com/abhisek/bandwise/internal/form"
	"github.com/abhisek/bandwise/internal/irt"
	"github.com/abhisek/bandwise/internal/prefetch"
	"github.com/abhisek/bandwise/internal/stage"
	"github.com/abhisek/bandwise/internal/store"
)

// DefaultPrefetchThreshold is the number of unanswered items left in a stage
// at which the next stage's candidate blocks are prefetched.
const DefaultPrefetchThreshold = 2

var (
	ErrUnknownItem     = errors.New("item is not in the current block")
	ErrAlreadyAnswered = errors.New("item already answered")
	ErrNoNextStage     = errors.New("no stage follows the current one")
	ErrSessionOver     = errors.New("session is finished")
)

// Deps are the collaborators a Session uses. All fields are optional except
// Fetcher and Opener, without which prefetching is disabled.
type Deps struct {
	Audit    store.AuditRepo
	Opener   prefetch.CacheOpener
	Fetcher  prefetch.Fetcher
	Prefetch prefetch.Config
	Logger   *slog.Logger

	// PrefetchThreshold overrides DefaultPrefetchThreshold when positive.
	PrefetchThreshold int
}

// Phase is the lifecycle phase of a Session.
type Phase int

const (
	PhaseActive   Phase = iota // Administering items
	PhaseFinished              // Scored; buffer cleared
	PhaseClosed                // Torn down
)

// Result is the final outcome of a session.
type Result struct {
	SessionID     string
	Estimate      irt.AbilityEstimate
	Band          band.Band
	Path          []string
	ItemsAnswered int
	Summary       Summary
}

// Session drives one candidate through a form: it tracks the raw score of
// the current stage, keeps a running ability estimate, warms the next
// stage's assets near the end of each stage, and routes at stage completion.
type Session struct {
	ID string

	form      *form.Form
	audit     store.AuditRepo
	buffer    *prefetch.Buffer
	logger    *slog.Logger
	threshold int

	mu         sync.Mutex
	phase      Phase
	stageIdx   int
	block      form.Block
	answered   map[string]bool
	stageScore float64
	responses  []irt.Response
	estimate   irt.AbilityEstimate
	path       []string
	results    []StageResult
	started    time.Time
	prefetched bool
}

// New starts a session on f. The session owns a prefetch buffer whose
// background work is cancelled when ctx is.
func New(ctx context.Context, f *form.Form, deps Deps) (*Session, error) {
	if f == nil || len(f.Stages) == 0 || len(f.Stages[0].Blocks) == 0 {
		return nil, fmt.Errorf("session: form has no routing block")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := deps.PrefetchThreshold
	if threshold <= 0 {
		threshold = DefaultPrefetchThreshold
	}
	pcfg := deps.Prefetch
	if pcfg.Logger == nil {
		pcfg.Logger = logger
	}

	id := uuid.NewString()
	s := &Session{
		ID:        id,
		form:      f,
		audit:     deps.Audit,
		logger:    logger.With("session_id", id),
		threshold: threshold,
		estimate:  irt.PriorEstimate,
		started:   time.Now(),
	}
	s.buffer = prefetch.New(ctx, deps.Opener, deps.Fetcher, pcfg)

	first := f.Stages[0].Blocks[0]
	s.enter(first)
	s.buffer.Prefetch(prefetch.Set{Track: first.ID, AssetURLs: first.AssetURLs})
	return s, nil
}

// enter makes b the current block. Callers hold mu or own s exclusively.
func (s *Session) enter(b form.Block) {
	s.block = b
	s.answered = make(map[string]bool, len(b.ItemIDs))
	s.stageScore = 0
	s.prefetched = false
	s.path = append(s.path, b.ID)
}

// Answer records a scored response to an item of the current block and
// returns the updated ability estimate.
func (s *Session) Answer(itemID string, correct bool) (irt.AbilityEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseActive {
		return s.estimate, ErrSessionOver
	}
	if !s.inBlock(itemID) {
		return s.estimate, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if s.answered[itemID] {
		return s.estimate, fmt.Errorf("%w: %q", ErrAlreadyAnswered, itemID)
	}

	item, _ := s.form.Item(itemID)
	responses := append(s.responses, irt.Response{Item: item, Correct: correct})
	est, err := irt.EstimateAbility(responses)
	if err != nil {
		return s.estimate, fmt.Errorf("estimate ability: %w", err)
	}

	s.responses = responses
	s.estimate = est
	s.answered[itemID] = true
	if correct {
		s.stageScore++
	}

	if !s.prefetched && s.remainingLocked() <= s.threshold {
		s.prefetchNextLocked()
	}
	return est, nil
}

func (s *Session) recordStageLocked() {
	s.results = append(s.results,
		newStageResult(s.stageIdx, s.block.ID, int(s.stageScore), len(s.block.ItemIDs)))
}

func (s *Session) inBlock(itemID string) bool {
	for _, id := range s.block.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (s *Session) remainingLocked() int {
	return len(s.block.ItemIDs) - len(s.answered)
}

// prefetchNextLocked warms every candidate block of the next stage.
func (s *Session) prefetchNextLocked() {
	s.prefetched = true
	next := s.stageIdx + 1
	if next >= len(s.form.Stages) {
		return
	}
	blocks := s.form.Stages[next].Blocks
	sets := make([]prefetch.Set, 0, len(blocks))
	for _, b := range blocks {
		sets = append(sets, prefetch.Set{Track: string(b.TargetDifficulty), AssetURLs: b.AssetURLs})
	}
	s.logger.Debug("session: prefetching next stage", "stage", next, "blocks", len(blocks))
	s.buffer.Prefetch(sets...)
}

// CompleteStage routes the candidate from the current block to a block of
// the next stage. Unanswered items count as incorrect. The routing event is
// recorded only once the session has moved to the chosen block.
func (s *Session) CompleteStage(ctx context.Context) (stage.Decision, error) {
	s.mu.Lock()
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return stage.Decision{}, ErrSessionOver
	}
	next := s.stageIdx + 1
	if next >= len(s.form.Stages) {
		s.mu.Unlock()
		return stage.Decision{}, ErrNoNextStage
	}
	if !s.prefetched {
		s.prefetchNextLocked()
	}

	maxScore := float64(len(s.block.ItemIDs))
	d, err := stage.Decide(s.stageScore, maxScore, s.form.Stages[next].Pool())
	if err != nil {
		s.mu.Unlock()
		return stage.Decision{}, fmt.Errorf("route stage %d: %w", next, err)
	}
	b, ok := s.form.Block(d.BlockID)
	if !ok {
		s.mu.Unlock()
		return stage.Decision{}, fmt.Errorf("route stage %d: block %q not in form", next, d.BlockID)
	}

	event := store.RoutingEventData{
		SessionID: s.ID,
		Stage:     next,
		Score:     s.stageScore,
		MaxScore:  maxScore,
		Pct:       d.Pct,
		Target:    string(d.Target),
		BlockID:   d.BlockID,
		Fallback:  d.Fallback,
	}
	s.recordStageLocked()
	s.stageIdx = next
	s.enter(b)
	s.mu.Unlock()

	if d.Fallback {
		stage.LogAnomaly(s.logger, d)
	}
	if s.audit != nil {
		if err := s.audit.AppendRouting(ctx, event); err != nil {
			s.logger.Warn("session: failed to record routing event", "error", err)
		}
	}
	s.logger.Info("session: routed", "stage", next, "block_id", d.BlockID, "pct", d.Pct)
	return d, nil
}

// Finish scores the session and clears buffered assets. The session accepts
// no further answers afterwards.
func (s *Session) Finish(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return Result{}, ErrSessionOver
	}
	s.phase = PhaseFinished
	s.recordStageLocked()
	res := Result{
		SessionID:     s.ID,
		Estimate:      s.estimate,
		Band:          band.ConvertThetaToBand(s.estimate.Theta),
		Path:          append([]string(nil), s.path...),
		ItemsAnswered: len(s.responses),
		Summary:       BuildSummary(time.Since(s.started), s.results),
	}
	s.mu.Unlock()

	s.buffer.Clear(ctx)

	if s.audit != nil {
		err := s.audit.AppendScore(ctx, store.ScoreEventData{
			SessionID:     res.SessionID,
			Theta:         res.Estimate.Theta,
			StandardError: res.Estimate.StandardError,
			Band:          float64(res.Band),
			ItemsAnswered: res.ItemsAnswered,
			Path:          res.Path,
		})
		if err != nil {
			s.logger.Warn("session: failed to record score event", "error", err)
		}
	}
	s.logger.Info("session: finished", "theta", res.Estimate.Theta, "band", res.Band.String())
	return res, nil
}

// Close tears the session down, evicting buffered assets. It is safe to call
// after Finish and more than once.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	s.phase = PhaseClosed
	s.mu.Unlock()
	s.buffer.Close(ctx)
}

// CurrentBlock returns the block being administered.
func (s *Session) CurrentBlock() form.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block
}

// Estimate returns the running ability estimate.
func (s *Session) Estimate() irt.AbilityEstimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estimate
}

// Remaining returns how many items of the current block are unanswered.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked()
}

// Stage returns the zero-based index of the current stage.
func (s *Session) Stage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageIdx
}

// HasNextStage reports whether CompleteStage can route further.
func (s *Session) HasNextStage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageIdx+1 < len(s.form.Stages)
}

// Phase returns the session's lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// PrefetchStats exposes the session buffer's counters for telemetry.
func (s *Session) PrefetchStats() prefetch.Stats {
	return s.buffer.Stats()
}
