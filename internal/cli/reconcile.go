package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/store"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Profile     string
	ProfileName string
	Workers     int
	Database    string
	Strict      bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile <input>",
		Short: "Recompute fingerprint hashes and explain mismatches",
		Long: `Recompute the hash of every fingerprint in a batch document and, for
fingerprint-v2 records, search sentinel hypotheses until the stored hash is
reproduced.

<input> is a file path, "-" for stdin, or an inline JSON document:
  {"fingerprints": [{"components": {...}, "fingerprint": "...", "version": "fingerprint-v2"}]}

With --format json the result document is written to stdout unchanged.
With --db the run is appended to a SQLite journal for later replay.

Exit codes:
  0 - Batch reconciled
  1 - --strict and some records were unmatched or skipped
  2 - Command error (unreadable input, bad profile, database failure)

Examples:
  fprecon reconcile ./batch.json
  fprecon reconcile --format json --db ./runs.db ./batch.json
  cat batch.json | fprecon reconcile --profile ./profiles --profile-name fpjs_v3 -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE file or directory declaring search profiles (default: built-in)")
	cmd.Flags().StringVar(&opts.ProfileName, "profile-name", "", "profile to select when several are declared")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent workers (default: GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "append the run to this SQLite journal")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any record is unmatched or skipped")

	return cmd
}

func runReconcile(opts *ReconcileOptions, input string, cmd *cobra.Command) error {
	logger := opts.logger()
	out := opts.formatter(cmd)

	raws, err := loadInput(input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	profile, err := LoadProfile(orEnv(opts.Profile, opts.Env.Profile), orEnv(opts.ProfileName, opts.Env.ProfileName))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = opts.Env.Workers
	}

	searcher, err := engine.NewSearcher(profile, engine.WithWorkers(workers), engine.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid profile", err)
	}
	runnerOpts := []engine.RunnerOption{
		engine.WithRecordWorkers(workers),
		engine.WithRunLogger(logger),
		engine.WithRunIDs(opts.RunIDs),
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if db := orEnv(opts.Database, opts.Env.Database); db != "" {
		st, err = store.Open(db)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		// Resume the logical clock so seq keeps increasing across runs.
		seq, err := st.LastSeq(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		runnerOpts = append(runnerOpts, engine.WithClock(engine.NewClockAt(seq)))
	}

	logger.Debug("reconciling", "records", len(raws), "profile", profile.Name, "workers", workers)
	batch, err := engine.NewRunner(searcher, runnerOpts...).Run(ctx, raws)
	if err != nil {
		return WrapExitError(ExitCommandError, "reconcile interrupted", err)
	}

	if st != nil {
		if err := st.WriteBatch(ctx, batch); err != nil {
			return WrapExitError(ExitCommandError, "failed to write journal", err)
		}
		logger.Info("run journaled", "run_id", batch.RunID, "seq", batch.Seq)
	}

	if opts.Format == "json" {
		if err := out.Document(batch.Document()); err != nil {
			return err
		}
	} else {
		writeBatchText(cmd.OutOrStdout(), out.Printer(), batch, st != nil)
	}

	if opts.Strict && (batch.Unmatched() > 0 || len(batch.Skipped) > 0) {
		return NewExitError(ExitFailure, fmt.Sprintf("%d unmatched, %d skipped", batch.Unmatched(), len(batch.Skipped)))
	}
	return nil
}

// writeBatchText prints one line per record in index order, then a summary.
func writeBatchText(w io.Writer, p *message.Printer, batch *engine.Batch, journaled bool) {
	results, skipped := batch.Results, batch.Skipped
	for len(results) > 0 || len(skipped) > 0 {
		if len(skipped) == 0 || (len(results) > 0 && results[0].Index < skipped[0].Index) {
			writeResultLine(w, p, results[0])
			results = results[1:]
			continue
		}
		rerr := skipped[0]
		p.Fprintf(w, "#%d skipped  %s\n", rerr.Index, rerr.Error())
		skipped = skipped[1:]
	}

	p.Fprintf(w, "%d of %d records matched (%d unmatched, %d skipped)\n",
		batch.Matched(), len(batch.Results)+len(batch.Skipped), batch.Unmatched(), len(batch.Skipped))
	if journaled {
		p.Fprintf(w, "Run %s journaled at seq %d\n", batch.RunID, batch.Seq)
	}
}

func writeResultLine(w io.Writer, p *message.Printer, r ir.Result) {
	status := "match"
	if !r.Match {
		status = "MISMATCH"
	}
	p.Fprintf(w, "#%d %s  %s  %s", r.Index, r.Version, status, r.Calculated)
	if !r.Match {
		p.Fprintf(w, " (expected %s)", r.Expected)
	}
	if r.Strategy != "" {
		// Seeds are identifiers, not counts; keep them ungrouped.
		p.Fprintf(w, "  strategy=%s seed=%s tried=%d", r.Strategy, strconv.FormatUint(uint64(r.Seed), 10), r.Tried)
	}
	if h := r.Hypothesis; h != nil && !h.IsEmpty() {
		p.Fprintf(w, "  undefined=%v errors=%v", h.UndefinedKeys, h.ErrorKeys)
	}
	fmt.Fprintln(w)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
