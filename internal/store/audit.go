package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	routingTable = "routing_events"
	scoreTable   = "score_events"

	// pathSep joins block ids in score_events.path. Block ids never contain it.
	pathSep = ","
)

var routingColumns = []string{
	"sequence", "timestamp", "session_id", "stage", "score",
	"max_score", "pct", "target", "block_id", "fallback",
}

var scoreColumns = []string{
	"sequence", "timestamp", "session_id", "theta", "standard_error",
	"band", "items_answered", "path",
}

type auditRepo struct {
	drv *entsql.Driver
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *auditRepo) AppendRouting(ctx context.Context, data RoutingEventData) error {
	err := appendEvent(ctx, r.drv, func(seq int64) *entsql.InsertBuilder {
		return builder().Insert(routingTable).
			Columns(routingColumns...).
			Values(
				seq, now(), data.SessionID, data.Stage, data.Score,
				data.MaxScore, data.Pct, data.Target, data.BlockID, data.Fallback,
			)
	})
	if err != nil {
		return fmt.Errorf("save routing event: %w", err)
	}
	return nil
}

func (r *auditRepo) AppendScore(ctx context.Context, data ScoreEventData) error {
	err := appendEvent(ctx, r.drv, func(seq int64) *entsql.InsertBuilder {
		return builder().Insert(scoreTable).
			Columns(scoreColumns...).
			Values(
				seq, now(), data.SessionID, data.Theta, data.StandardError,
				data.Band, data.ItemsAnswered, strings.Join(data.Path, pathSep),
			)
	})
	if err != nil {
		return fmt.Errorf("save score event: %w", err)
	}
	return nil
}

func (r *auditRepo) RoutingEvents(ctx context.Context, sessionID string) ([]RoutingEvent, error) {
	query, args := builder().Select(routingColumns...).
		From(entsql.Table(routingTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()
	return r.queryRouting(ctx, query, args)
}

func (r *auditRepo) Anomalies(ctx context.Context, limit int) ([]RoutingEvent, error) {
	sel := builder().Select(routingColumns...).
		From(entsql.Table(routingTable)).
		Where(entsql.EQ("fallback", true)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	return r.queryRouting(ctx, query, args)
}

func (r *auditRepo) queryRouting(ctx context.Context, query string, args []any) ([]RoutingEvent, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query routing events: %w", err)
	}
	defer rows.Close()

	var out []RoutingEvent
	for rows.Next() {
		var (
			ev RoutingEvent
			ts string
		)
		if err := rows.Scan(
			&ev.Sequence, &ts, &ev.SessionID, &ev.Stage, &ev.Score,
			&ev.MaxScore, &ev.Pct, &ev.Target, &ev.BlockID, &ev.Fallback,
		); err != nil {
			return nil, fmt.Errorf("scan routing event: %w", err)
		}
		ev.Timestamp = parseTime(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *auditRepo) Score(ctx context.Context, sessionID string) (*ScoreEvent, error) {
	query, args := builder().Select(scoreColumns...).
		From(entsql.Table(scoreTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query score event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		ev   ScoreEvent
		ts   string
		path string
	)
	if err := rows.Scan(
		&ev.Sequence, &ts, &ev.SessionID, &ev.Theta, &ev.StandardError,
		&ev.Band, &ev.ItemsAnswered, &path,
	); err != nil {
		return nil, fmt.Errorf("scan score event: %w", err)
	}
	ev.Timestamp = parseTime(ts)
	if path != "" {
		ev.Path = strings.Split(path, pathSep)
	}
	return &ev, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
