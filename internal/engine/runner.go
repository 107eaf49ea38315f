package engine

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/fprecon/internal/ir"
)

// Runner reconciles a batch of records.
//
// Records are independent, so the runner fans them out over a bounded pool
// of goroutines. Results keep input order regardless of completion order.
// A record that cannot be decoded is skipped; it never fails the batch.
type Runner struct {
	searcher *Searcher
	workers  int
	ids      RunIDGenerator
	clock    *Clock
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecordWorkers sets how many records are reconciled concurrently.
// Default: runtime.GOMAXPROCS(0).
func WithRecordWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunIDs sets the run ID generator. Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) RunnerOption {
	return func(r *Runner) {
		if gen != nil {
			r.ids = gen
		}
	}
}

// WithClock sets the clock that stamps each batch. Default: a fresh clock.
func WithClock(c *Clock) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithRunLogger sets the logger for batch diagnostics.
func WithRunLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner that reconciles with searcher.
func NewRunner(searcher *Searcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		searcher: searcher,
		workers:  runtime.GOMAXPROCS(0),
		ids:      UUIDv7Generator{},
		clock:    NewClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Batch is the outcome of one run.
type Batch struct {
	RunID   string
	Seq     int64
	Profile string

	// Records are the decoded records, aligned with Results.
	Records []ir.Record
	Results []ir.Result

	// Skipped are the records that could not be reconciled, in input order.
	Skipped []*RecordError
}

// Matched counts results whose calculated hash equals the expected one.
func (b *Batch) Matched() int {
	n := 0
	for _, r := range b.Results {
		if r.Match {
			n++
		}
	}
	return n
}

// Unmatched counts results that did not match.
func (b *Batch) Unmatched() int {
	return len(b.Results) - b.Matched()
}

// Run decodes and reconciles raws.
//
// The only error is a cancelled context; per-record failures are collected
// in Batch.Skipped and logged at warn level.
func (r *Runner) Run(ctx context.Context, raws []ir.RawRecord) (*Batch, error) {
	records, skipped := Decode(raws)
	for _, rerr := range skipped {
		r.logger.Warn("skipping record",
			"index", rerr.Index,
			"version", rerr.Version,
			"reason", rerr.Code,
			"error", rerr.Err,
		)
	}

	results := make([]ir.Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.searcher.Reconcile(gctx, rec.Components, rec.Target, rec.Variant)
			if err != nil {
				return err
			}
			res.Index = rec.Index
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &Batch{
		RunID:   r.ids.Generate(),
		Seq:     r.clock.Next(),
		Profile: r.searcher.profile.Name,
		Records: records,
		Results: results,
		Skipped: skipped,
	}
	r.logger.Info("run complete",
		"run_id", batch.RunID,
		"seq", batch.Seq,
		"records", len(raws),
		"matched", batch.Matched(),
		"unmatched", batch.Unmatched(),
		"skipped", len(skipped),
	)
	return batch, nil
}

// Decode turns raw records into records, separating out the ones that
// declare an unknown variant or carry undecodable components.
func Decode(raws []ir.RawRecord) ([]ir.Record, []*RecordError) {
	records := make([]ir.Record, 0, len(raws))
	var skipped []*RecordError

	for _, raw := range raws {
		// Components are checked first: a record that is malformed and
		// mis-versioned reports as malformed.
		dict, err := ir.ParseObject(raw.Components)
		if err != nil {
			skipped = append(skipped, NewMalformedError(raw.Index, raw.Version, err))
			continue
		}
		variant, ok := ir.ParseVariant(raw.Version)
		if !ok {
			skipped = append(skipped, NewUnsupportedVariantError(raw.Index, raw.Version))
			continue
		}
		records = append(records, ir.Record{
			Index:      raw.Index,
			Variant:    variant,
			Components: dict,
			Target:     raw.Fingerprint,
		})
	}
	return records, skipped
}
