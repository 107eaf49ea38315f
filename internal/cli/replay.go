package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database    string
	RunID       string // optional - latest run when empty
	Full        bool
	Profile     string
	ProfileName string
}

// ReplayResult holds the replay result for one run.
type ReplayResult struct {
	RunID         string   `json:"run_id"`
	Seq           int64    `json:"seq"`
	Profile       string   `json:"profile"`
	Mode          string   `json:"mode"` // "verify" | "full"
	Checked       int      `json:"checked"`
	Drift         []string `json:"drift"`
	Deterministic bool     `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a journaled run and verify determinism",
		Long: `Replay a run from the journal and check that every stored result
reproduces.

By default each record is re-serialized under its stored hypothesis and seed
and the stored calculated hash is compared. With --full the whole search is
repeated under the run's profile and every result field is compared,
including the number of hypotheses tried.

Exit codes:
  0 - Every result reproduced
  1 - Drift detected
  2 - Command error (journal not found, unknown run, profile mismatch)

Examples:
  fprecon replay --db ./runs.db
  fprecon replay --db ./runs.db --run 0191d4c2-...
  fprecon replay --db ./runs.db --full --profile ./profiles`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default: $FPRECON_DB)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay this run (default: latest)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "repeat the search instead of re-hashing the stored hypothesis")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "CUE profile source for --full (default: built-in)")
	cmd.Flags().StringVar(&opts.ProfileName, "profile-name", "", "profile for --full (default: the run's profile)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	st, err := openJournal(orEnv(opts.Database, opts.Env.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := selectRun(ctx, st, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		if opts.RunID != "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", opts.RunID))
		}
		if opts.Format == "json" {
			return opts.formatter(cmd).Success(map[string]any{"runs": 0})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in journal.")
		return nil
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	check, err := replayCheck(opts, run)
	if err != nil {
		return err
	}

	report, err := st.Replay(ctx, run.ID, check)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
	}

	result := ReplayResult{
		RunID:         run.ID,
		Seq:           run.Seq,
		Profile:       run.Profile,
		Mode:          "verify",
		Checked:       report.Checked,
		Drift:         make([]string, 0, len(report.Drift)),
		Deterministic: report.OK(),
	}
	if opts.Full {
		result.Mode = "full"
	}
	for _, d := range report.Drift {
		result.Drift = append(result.Drift, d.Error())
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, opts, result)
}

func selectRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	if id == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, id)
}

// replayCheck picks the per-record check. --full needs the profile the run
// was reconciled with; a different one would report drift on every record.
func replayCheck(opts *ReplayOptions, run store.Run) (store.CheckFunc, error) {
	if !opts.Full {
		return func(_ context.Context, rec ir.Record, res ir.Result) error {
			return engine.Verify(rec, res)
		}, nil
	}

	profile, err := LoadProfile(orEnv(opts.Profile, opts.Env.Profile), orEnv(opts.ProfileName, run.Profile))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load profile", err)
	}
	if profile.Name != run.Profile {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("run %s was reconciled with profile %q, not %q", run.ID, run.Profile, profile.Name))
	}
	searcher, err := engine.NewSearcher(profile, engine.WithLogger(opts.logger()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid profile", err)
	}
	return func(ctx context.Context, rec ir.Record, res ir.Result) error {
		return engine.Rerun(ctx, searcher, rec, res)
	}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.RunID,
	}
	if !result.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DRIFT",
			Message: fmt.Sprintf("%d record(s) did not reproduce", len(result.Drift)),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, opts *ReplayOptions, result ReplayResult) error {
	w := cmd.OutOrStdout()
	p := opts.formatter(cmd).Printer()

	p.Fprintf(w, "Run %s (seq %d, profile %s): %d records checked [%s]\n",
		result.RunID, result.Seq, result.Profile, result.Checked, result.Mode)
	for _, d := range result.Drift {
		fmt.Fprintf(w, "  ✗ %s\n", d)
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ All results reproduced")
	return nil
}
