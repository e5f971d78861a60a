package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <text>",
		Short: "Check text for mirror claims",
		Long: `Check text against the mirror-claim denylist.

Matching is case-insensitive substring matching. The codex denylist is
used when --codex is set, otherwise the built-in phrases.

Exit codes:
  0 - No claim found
  1 - A mirror claim was detected
  2 - Command error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, strings.Join(args, " "), cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, text string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := newSession(opts, f.GetErrWriter())
	if err != nil {
		return sessionError(f, err)
	}

	det := s.matcher.Match(text)
	if !det.Detected {
		if f.Format == "json" {
			return f.Success(det)
		}
		fmt.Fprintln(f.Writer, "✓ No mirror claim")
		return nil
	}

	if f.Format == "json" {
		if err := f.Failure(ErrCodeMirrorClaim, "mirror claim detected", det); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ Mirror claim detected: %s\n\n", strings.Join(det.Claims, ", "))
		fmt.Fprintln(f.Writer, det.Response)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d mirror claim(s) detected", len(det.Claims)))
}
