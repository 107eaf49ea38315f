package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/fprecon/internal/ir"
)

// HashOptions holds flags for the hash command.
type HashOptions struct {
	*RootOptions
	Seed uint32
}

// HashResult is the JSON payload of the hash command.
type HashResult struct {
	Hash string `json:"hash"`
	Seed uint32 `json:"seed"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HashOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hash <text>",
		Short: "Print the 128-bit MurmurHash3 of text",
		Long: `Print the MurmurHash3 x64-128 digest of the UTF-8 bytes of <text> as 32
lowercase hex characters. V1 fingerprints hash at seed 31, V2 at seed 0.

Examples:
  fprecon hash "hello"
  fprecon hash --seed 31 "Mozilla/5.0~~~en-US~~~..."`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := ir.HashString(args[0], opts.Seed)
			out := opts.formatter(cmd)
			if opts.Format == "json" {
				return out.Success(HashResult{Hash: h, Seed: opts.Seed})
			}
			return out.Success(h)
		},
	}

	cmd.Flags().Uint32Var(&opts.Seed, "seed", 0, "hash seed")

	return cmd
}
