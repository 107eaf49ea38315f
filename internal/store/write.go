package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
)

// WriteBatch journals a reconciled batch: one runs row, one results row per
// reconciled record and one skipped row per rejected record.
//
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same batch twice
// is silently ignored. All rows are written in a single transaction.
func (s *Store) WriteBatch(ctx context.Context, b *engine.Batch) error {
	if len(b.Records) != len(b.Results) {
		return fmt.Errorf("write batch: %d records but %d results", len(b.Records), len(b.Results))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, profile, record_count, matched_count, skipped_count, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		b.RunID,
		b.Seq,
		b.Profile,
		len(b.Records)+len(b.Skipped),
		b.Matched(),
		len(b.Skipped),
		ir.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write batch: insert run: %w", err)
	}

	for i, res := range b.Results {
		if err := writeResult(ctx, tx, b.RunID, b.Records[i], res); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	}

	for _, rerr := range b.Skipped {
		msg := ""
		if rerr.Err != nil {
			msg = rerr.Err.Error()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO skipped (run_id, idx, version, code, message)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, b.RunID, rerr.Index, rerr.Version, string(rerr.Code), msg)
		if err != nil {
			return fmt.Errorf("write batch: insert skipped %d: %w", rerr.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write batch: commit: %w", err)
	}
	return nil
}

func writeResult(ctx context.Context, tx *sql.Tx, runID string, rec ir.Record, res ir.Result) error {
	hypJSON, err := marshalHypothesis(res.Hypothesis)
	if err != nil {
		return err
	}
	compJSON, err := marshalComponents(rec.Components)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO results
		(run_id, idx, version, expected, calculated, matched, seed, strategy, tried, hypothesis, components)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		res.Index,
		string(res.Version),
		res.Expected,
		res.Calculated,
		res.Match,
		int64(res.Seed),
		string(res.Strategy),
		res.Tried,
		hypJSON,
		compJSON,
	)
	if err != nil {
		return fmt.Errorf("insert result %d: %w", res.Index, err)
	}
	return nil
}
