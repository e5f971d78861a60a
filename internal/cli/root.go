package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Codex   string // codex directory; empty uses the built-in defaults
	Seed    uint64 // hint seed; 0 seeds randomly

	maxQueries int // default for reflect --quota
	envErr     error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the codex CLI.
// Flag defaults come from CODEX_* environment variables.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	env, err := config.Load()
	if err != nil {
		opts.envErr = err
		env = config.Config{Format: "text"}
	}
	opts.maxQueries = env.MaxQueries

	cmd := &cobra.Command{
		Use:   "codex",
		Short: "Mirror ritual codex",
		Long: `Drive the mirror ritual codex from the command line.

Dispatch content items through the denylist and ritual state machine,
attempt access unlocks, reflect queries, process ritual fragments, and
run codex scenarios.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envErr != nil {
				return NewExitError(ExitCommandError, opts.envErr.Error())
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("%s: invalid format %q: must be one of %v", ErrCodeInvalidFormat, opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", env.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", env.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Codex, "codex", env.Dir, "codex directory (default: built-in codex)")
	cmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", env.Seed, "hint seed (0 = random)")

	// Add subcommands
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDispatchCommand(opts))
	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewReflectCommand(opts))
	cmd.AddCommand(NewShardCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds an OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}
