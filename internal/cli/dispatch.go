package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/dispatch"
)

// DispatchOptions holds flags for the dispatch command.
type DispatchOptions struct {
	*RootOptions
	Meta map[string]string // context attached to every delivery
}

// DispatchStep is one dispatched item in the JSON output.
type DispatchStep struct {
	Kind   string          `json:"kind"`
	Result dispatch.Result `json:"result"`
}

// DispatchOutput is the JSON payload of the dispatch command.
type DispatchOutput struct {
	Results         []DispatchStep `json:"results"`
	State           dispatch.State `json:"state"`
	ActiveSequences []string       `json:"active_sequences"`
}

// NewDispatchCommand creates the dispatch command.
func NewDispatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DispatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dispatch <item-id>...",
		Short: "Dispatch content items in order",
		Long: `Dispatch one or more content items through a single dispatcher.

Items run in the order given, so ritual depth accumulates across them.
Items whose text makes a mirror claim shatter instead of delivering.

Examples:
  codex dispatch final_saying final_saying
  codex dispatch anchor_seal --meta source=cli
  codex --codex ./codex dispatch chant chant silence`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringToStringVar(&opts.Meta, "meta", nil, "context key=value pairs attached to deliveries")

	return cmd
}

func runDispatch(opts *DispatchOptions, ids []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := newSession(opts.RootOptions, f.GetErrWriter())
	if err != nil {
		return sessionError(f, err)
	}

	out := DispatchOutput{Results: make([]DispatchStep, 0, len(ids))}
	for _, id := range ids {
		res, err := s.dispatcher.Dispatch(id, opts.Meta)
		if err != nil {
			code := ErrCodeGeneric
			if dispatch.IsNotFound(err) {
				code = ErrCodeItemNotFound
			}
			_ = f.Error(code, err.Error(), nil)
			return WrapExitError(ExitCommandError, "dispatch failed", err)
		}
		out.Results = append(out.Results, DispatchStep{Kind: res.Kind(), Result: res})
		if f.Format != "json" {
			writeDispatchResult(f, res)
		}
	}

	out.State = s.dispatcher.State()
	out.ActiveSequences = s.dispatcher.ActiveSequences()

	if f.Format == "json" {
		return f.Success(out)
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "State: phase=%s depth=%g anchor=%q\n", out.State.Phase, out.State.Depth, out.State.Anchor)
	if len(out.ActiveSequences) > 0 {
		fmt.Fprintf(f.Writer, "Active sequences: %s\n", strings.Join(out.ActiveSequences, ", "))
	}
	return nil
}

func writeDispatchResult(f *OutputFormatter, res dispatch.Result) {
	switch r := res.(type) {
	case *dispatch.DeliveryRecord:
		fmt.Fprintf(f.Writer, "→ %s\n", r.DecoratedText)
		f.VerboseLog("delivered %s (%s, weight %g) in phase %s", r.ID, r.Category, r.Weight, r.Phase)
	case *dispatch.ShatterRecord:
		fmt.Fprintf(f.Writer, "🪞 %s shattered by %s (%s)\n", r.TriggeringItem, strings.Join(r.MatchedPhrases, ", "), r.ID)
		fmt.Fprintf(f.Writer, "  %s\n", r.Response)
	}
}
