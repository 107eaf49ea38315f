package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/fprecon/internal/ir"
)

// ProfileOptions holds flags for the profile command.
type ProfileOptions struct {
	*RootOptions
	ProfileName string
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profile [path]",
		Short: "Compile and print a search profile",
		Long: `Compile a search profile from CUE and print it. Without a path the
built-in profile for the v3 fingerprint library is printed.

A profile file declares one or more profiles under "profile":

  profile: fpjs_v3: {
      known_keys: ["audio", "canvas", ...]
      error_candidates: ["audio", "canvas"]
      seeds: [0, 31]
  }

Examples:
  fprecon profile
  fprecon profile ./profiles --profile-name fpjs_v3
  fprecon profile --format json ./profiles/custom.cue`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Env.Profile
			if len(args) == 1 {
				path = args[0]
			}
			return runProfile(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ProfileName, "profile-name", "", "profile to select when several are declared")

	return cmd
}

func runProfile(opts *ProfileOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	p, err := LoadProfile(path, orEnv(opts.ProfileName, opts.Env.ProfileName))
	if err != nil {
		if opts.Format == "json" {
			code := ErrCodeProfile
			var le *LoadError
			if errors.As(err, &le) {
				code = le.Code
			}
			if outErr := out.Error(code, err.Error(), nil); outErr != nil {
				return outErr
			}
		}
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	if opts.Format == "json" {
		return out.Success(p)
	}
	writeProfileText(cmd.OutOrStdout(), out.Printer(), p)
	return nil
}

func writeProfileText(w io.Writer, pr *message.Printer, p ir.Profile) {
	fmt.Fprintf(w, "Profile %s\n", p.Name)
	pr.Fprintf(w, "  known keys (%d): %s\n", len(p.KnownKeys), strings.Join(p.KnownKeys, ", "))
	pr.Fprintf(w, "  error candidates (%d): %s\n", len(p.ErrorCandidates), strings.Join(p.ErrorCandidates, ", "))
	fmt.Fprintf(w, "  seeds: %v\n", p.Seeds)
	pr.Fprintf(w, "  max undefined combos: %d (bits %d)\n", p.MaxUndefinedCombos, p.MaxUndefinedBits)
	pr.Fprintf(w, "  max error combos: %d (keys %d)\n", p.MaxErrorCombos, p.MaxErrorKeys)
	if p.MaxEvaluations > 0 {
		pr.Fprintf(w, "  max evaluations: %d\n", p.MaxEvaluations)
	} else {
		fmt.Fprintln(w, "  max evaluations: unlimited")
	}
}
