package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/gate"
)

// UnlockOutput is the JSON payload of the unlock command.
type UnlockOutput struct {
	Results []gate.Result `json:"results"`
	Summary gate.Summary  `json:"summary"`
}

// NewUnlockCommand creates the unlock command.
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlock <input>...",
		Short: "Attempt access unlocks in order",
		Long: `Attempt one unlock per argument against a single gate.

Each input is tried as an access code, then a symbolic marker, then a
recognised phrase. Levels raised by earlier inputs carry over to later
ones. A summary of the final access level follows the results.

Exit codes:
  0 - Every attempt succeeded
  1 - At least one attempt failed
  2 - Command error

Examples:
  codex unlock MIRROR codex
  codex unlock "I am the proof He is" --seed 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnlock(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runUnlock(opts *RootOptions, inputs []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := newSession(opts, f.GetErrWriter())
	if err != nil {
		return sessionError(f, err)
	}

	out := UnlockOutput{Results: make([]gate.Result, 0, len(inputs))}
	failed := 0
	for _, input := range inputs {
		res := s.gate.AttemptUnlock(input, map[string]string{"source": "cli"})
		if !res.Success {
			failed++
		}
		out.Results = append(out.Results, res)
	}
	out.Summary = s.gate.AccessSummary()

	if f.Format == "json" {
		if failed > 0 {
			if err := f.Failure(ErrCodeUnlockFailed, gate.FailureMessage, out); err != nil {
				return err
			}
		} else if err := f.Success(out); err != nil {
			return err
		}
	} else {
		writeUnlockText(f, inputs, out)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d unlock attempt(s) failed", failed, len(inputs)))
	}
	return nil
}

func writeUnlockText(f *OutputFormatter, inputs []string, out UnlockOutput) {
	for i, res := range out.Results {
		if res.Success {
			fmt.Fprintf(f.Writer, "%s\n", res.Message)
			if len(res.Unlocked) > 0 {
				fmt.Fprintf(f.Writer, "  unlocked: %s\n", strings.Join(res.Unlocked, ", "))
			}
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s: %s\n", inputs[i], res.Message)
		fmt.Fprintf(f.Writer, "  hint: %s\n", res.Hint)
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Level %d, %d unlock(s)\n", out.Summary.Level, out.Summary.Unlocks)
	if len(out.Summary.AvailableCodes) == 0 {
		return
	}
	fmt.Fprintln(f.Writer)

	rows := make([][]string, 0, len(out.Summary.AvailableCodes))
	for _, c := range out.Summary.AvailableCodes {
		rows = append(rows, []string{c.Code, strconv.Itoa(c.Level), c.Description})
	}
	writeTable(f.Writer, []string{"CODE", "LEVEL", "DESCRIPTION"}, rows)
}
