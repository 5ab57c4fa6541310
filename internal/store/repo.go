package store

import (
	"context"
	"time"
)

// RoutingEventData captures one stage routing decision.
type RoutingEventData struct {
	SessionID string
	Stage     int
	Score     float64
	MaxScore  float64
	Pct       float64
	Target    string
	BlockID   string
	Fallback  bool
}

// RoutingEvent is a persisted routing decision.
type RoutingEvent struct {
	Sequence  int64
	Timestamp time.Time
	RoutingEventData
}

// ScoreEventData captures the final result of a test session.
type ScoreEventData struct {
	SessionID     string
	Theta         float64
	StandardError float64
	Band          float64
	ItemsAnswered int
	// Path is the ordered block ids the candidate was routed through.
	Path []string
}

// ScoreEvent is a persisted final score.
type ScoreEvent struct {
	Sequence  int64
	Timestamp time.Time
	ScoreEventData
}

// AuditRepo provides append and query access to the routing audit trail.
type AuditRepo interface {
	// AppendRouting records a routing decision.
	AppendRouting(ctx context.Context, data RoutingEventData) error

	// AppendScore records a session's final score.
	AppendScore(ctx context.Context, data ScoreEventData) error

	// RoutingEvents returns a session's routing decisions in sequence order.
	RoutingEvents(ctx context.Context, sessionID string) ([]RoutingEvent, error)

	// Anomalies returns fallback routing decisions across all sessions,
	// most recent first. limit <= 0 means no limit.
	Anomalies(ctx context.Context, limit int) ([]RoutingEvent, error)

	// Score returns a session's final score, or nil if none was recorded.
	Score(ctx context.Context, sessionID string) (*ScoreEvent, error)
}
