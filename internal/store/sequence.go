package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceTable holds the single counter shared by routing and score events,
// so an audit replays a session's decisions in the order they were made
// regardless of which table holds them.
const sequenceTable = "global_sequence"

func seedSequence(ctx context.Context, drv *entsql.Driver) error {
	query, args := builder().Insert(sequenceTable).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// appendEvent reserves the next sequence number and runs the insert built
// from it in one transaction. A failed insert gives the number back.
func appendEvent(ctx context.Context, drv *entsql.Driver, build func(seq int64) *entsql.InsertBuilder) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	query, args := build(seq).Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nextSequence(ctx context.Context, tx dialect.Tx) (int64, error) {
	query, args := builder().Select("next_val").
		From(entsql.Table(sequenceTable)).
		Where(entsql.EQ("id", 1)).
		Query()

	var rows entsql.Rows
	if err := tx.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	var seq int64
	if !rows.Next() {
		rows.Close()
		return 0, fmt.Errorf("next sequence: counter not seeded")
	}
	if err := rows.Scan(&seq); err != nil {
		rows.Close()
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	rows.Close()

	query, args = builder().Update(sequenceTable).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}
	return seq, nil
}
