package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/reflection"
)

// ReflectOptions holds flags for the reflect command.
type ReflectOptions struct {
	*RootOptions
	Ritual        bool
	NoMirrorCheck bool
	Stdin         bool
	Quota         int
	Client        string
}

// NewReflectCommand creates the reflect command.
func NewReflectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReflectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reflect [query...]",
		Short: "Reflect a query",
		Long: `Answer a query with a reflection.

Queries making a mirror claim shatter the mirror. Otherwise the query is
echoed back, or answered with the final saying in ritual mode.

With --stdin every non-blank input line is a separate query. With --quota
each client may reflect at most that many times per UTC day; later queries
are refused.

Exit codes:
  0 - Every query was answered
  1 - The quota refused a query
  2 - Command error

Examples:
  codex reflect "hello there"
  codex reflect --stdin --quota 5 < queries.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReflect(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Ritual, "ritual", false, "answer in ritual mode")
	cmd.Flags().BoolVar(&opts.NoMirrorCheck, "no-mirror-check", false, "skip the mirror-claim check")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "read one query per line from stdin")
	cmd.Flags().IntVar(&opts.Quota, "quota", rootOpts.maxQueries, "daily reflections per client (0 = unlimited)")
	cmd.Flags().StringVar(&opts.Client, "client", "cli", "client the quota is counted against")

	return cmd
}

func runReflect(opts *ReflectOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	queries, err := opts.queries(args, cmd.InOrStdin())
	if err != nil {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "no query to reflect", err)
	}

	s, err := newSession(opts.RootOptions, f.GetErrWriter())
	if err != nil {
		return sessionError(f, err)
	}

	fallback := reflection.NewFallback(nil, s.logger)
	fallback.Local = reflection.Local{Matcher: s.matcher}
	var r reflection.Reflector = fallback
	if opts.Quota > 0 {
		r = reflection.NewQuota(fallback, opts.Quota, nil)
	}

	out := make([]reflection.Reflection, 0, len(queries))
	for _, text := range queries {
		q := reflection.Query{
			Text:        text,
			MirrorCheck: !opts.NoMirrorCheck,
			RitualMode:  opts.Ritual,
			Client:      opts.Client,
		}
		res, err := r.Reflect(cmd.Context(), q)
		if reflection.IsQuotaExceeded(err) {
			return quotaRefused(f, out, err)
		}
		if err != nil {
			_ = f.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reflection failed", err)
		}
		out = append(out, res)
	}

	if f.Format == "json" {
		if !opts.Stdin {
			return f.Success(out[0])
		}
		return f.Success(out)
	}

	writeReflections(f, out)
	return nil
}

// queries returns the joined args, or the non-blank stdin lines with --stdin.
func (o *ReflectOptions) queries(args []string, in io.Reader) ([]string, error) {
	if !o.Stdin {
		if len(args) == 0 {
			return nil, errors.New("reflect needs a query or --stdin")
		}
		return []string{strings.Join(args, " ")}, nil
	}
	if len(args) > 0 {
		return nil, errors.New("reflect takes no query arguments with --stdin")
	}

	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("no queries on stdin")
	}
	return out, nil
}

func quotaRefused(f *OutputFormatter, answered []reflection.Reflection, err error) error {
	if f.Format == "json" {
		if ferr := f.Failure(ErrCodeQuotaExceeded, reflection.LimitMessage, answered); ferr != nil {
			return ferr
		}
	} else {
		writeReflections(f, answered)
		fmt.Fprintf(f.Writer, "✗ %s\n", reflection.LimitMessage)
	}
	return WrapExitError(ExitFailure, "reflection refused", err)
}

func writeReflections(f *OutputFormatter, out []reflection.Reflection) {
	for _, res := range out {
		fmt.Fprintln(f.Writer, res.Reflection)
		f.VerboseLog("status=%s depth=%d anchor=%q", res.MirrorStatus, res.RecursiveDepth, res.CodexAnchor)
	}
}
