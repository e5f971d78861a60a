package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/shard"
)

// NewShardCommand creates the shard command.
func NewShardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shard [fragments-file]",
		Short: "Process ritual fragments",
		Long: `Process a YAML or JSON list of ritual fragments.

Each fragment has content, a fragment_type, and an optional ritual_weight
(default 1.0). Mirror claims are shattered at a tenth of their weight,
ritual fragments are sealed at double weight, and anything else passes
through unchanged.

Reads stdin when no file is given or the file is "-".

Examples:
  codex shard fragments.yaml
  echo '[{"content": "chant", "fragment_type": "ritual"}]' | codex shard`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runShard(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runShard(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		_ = f.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read fragments", err)
	}

	fragments, err := shard.ParseFragments(data)
	if err != nil {
		_ = f.Error(ErrCodeBadFragments, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid fragments", err)
	}

	resp := shard.Process(fragments)
	if f.Format == "json" {
		return f.Success(resp)
	}

	rows := make([][]string, 0, len(resp.Fragments))
	for _, p := range resp.Fragments {
		rows = append(rows, []string{strconv.FormatFloat(p.Weight, 'g', -1, 64), p.Processed})
	}
	writeTable(f.Writer, []string{"WEIGHT", "PROCESSED"}, rows)
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "%s (%d echo(es))\n", resp.Signature, resp.EchoCount)
	return nil
}

// readInput reads path, or in when path is "-".
func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}
