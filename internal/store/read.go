package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/fprecon/internal/ir"
)

// Run is a journaled batch summary.
type Run struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Profile       string `json:"profile"`
	RecordCount   int    `json:"record_count"`
	MatchedCount  int    `json:"matched_count"`
	SkippedCount  int    `json:"skipped_count"`
	EngineVersion string `json:"engine_version"`
}

// Entry is one journaled result with the record it was computed from.
type Entry struct {
	Record ir.Record
	Result ir.Result
}

// Skip is one journaled record that was rejected before reconciliation.
type Skip struct {
	Index   int    `json:"index"`
	Version string `json:"version"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LastSeq returns the highest run seq in the journal, or 0 when empty.
// The CLI resumes its clock from here so seq stays monotonic across runs.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// ListRuns returns all runs ordered by seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) when the journal is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, profile, record_count, matched_count, skipped_count, engine_version
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, profile, record_count, matched_count, skipped_count, engine_version
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// LatestRun returns the run with the highest seq.
// Returns sql.ErrNoRows if the journal is empty.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, profile, record_count, matched_count, skipped_count, engine_version
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)
	return scanRun(row)
}

// ReadResults returns the journaled results of a run ordered by index.
func (s *Store) ReadResults(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, version, expected, calculated, matched, seed, strategy, tried, hypothesis, components
		FROM results
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return entries, nil
}

// ReadSkipped returns the records a run rejected, ordered by index.
func (s *Store) ReadSkipped(ctx context.Context, runID string) ([]Skip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, version, code, message
		FROM skipped
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query skipped: %w", err)
	}
	defer rows.Close()

	skips := []Skip{}
	for rows.Next() {
		var sk Skip
		if err := rows.Scan(&sk.Index, &sk.Version, &sk.Code, &sk.Message); err != nil {
			return nil, fmt.Errorf("scan skipped: %w", err)
		}
		skips = append(skips, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skipped: %w", err)
	}
	return skips, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Profile,
		&run.RecordCount,
		&run.MatchedCount,
		&run.SkippedCount,
		&run.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

func scanEntry(row scanner) (Entry, error) {
	var (
		res      ir.Result
		version  string
		strategy string
		seed     int64
		hypJSON  sql.NullString
		compJSON string
	)
	err := row.Scan(
		&res.Index,
		&version,
		&res.Expected,
		&res.Calculated,
		&res.Match,
		&seed,
		&strategy,
		&res.Tried,
		&hypJSON,
		&compJSON,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("scan result: %w", err)
	}

	variant, ok := ir.ParseVariant(version)
	if !ok {
		return Entry{}, fmt.Errorf("result %d: unknown version %q", res.Index, version)
	}
	res.Version = variant
	res.Seed = uint32(seed)
	res.Strategy = ir.Strategy(strategy)

	res.Hypothesis, err = unmarshalHypothesis(hypJSON)
	if err != nil {
		return Entry{}, fmt.Errorf("result %d: %w", res.Index, err)
	}
	dict, err := unmarshalComponents(compJSON)
	if err != nil {
		return Entry{}, fmt.Errorf("result %d: %w", res.Index, err)
	}

	return Entry{
		Record: ir.Record{
			Index:      res.Index,
			Variant:    variant,
			Components: dict,
			Target:     res.Expected,
		},
		Result: res,
	}, nil
}
