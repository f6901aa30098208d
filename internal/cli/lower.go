package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moonsmith/moonsmith/internal/pipeline"
)

// LowerOptions holds flags for the lower command.
type LowerOptions struct {
	*RootOptions
	Output string
	CFG    bool
	Dump   bool
}

// NewLowerCommand creates the lower command: parse, normalize and lower
// only, printing the canonical IR JSON (or a readable tree with --dump).
func NewLowerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LowerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "lower <source-file>",
		Short:         "Lower source to canonical IR JSON",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLower(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write IR JSON to this file")
	cmd.Flags().BoolVar(&opts.CFG, "cfg", false, "attach per-function control-flow graphs")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "print an indented node tree instead of JSON")

	return cmd
}

func runLower(opts *LowerOptions, sourcePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeRead, fmt.Sprintf("reading source: %v", err), nil)
	}

	doc, err := pipeline.ParseAndLower(string(src), pipeline.Options{
		SourcePath:    sourcePath,
		Toolchain:     cfg.Toolchain,
		SchemaVersion: cfg.SchemaVersion,
		FnMeta:        cfg.Functions,
		BuildCFG:      opts.CFG || cfg.CFG,
	})
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeCompile, err.Error(), nil)
	}

	if opts.Dump {
		tree, err := pipeline.DumpIR(doc)
		if err != nil {
			return fail(formatter, ExitFailure, ErrCodeEmit, err.Error(), nil)
		}
		fmt.Fprint(cmd.OutOrStdout(), tree)
		return nil
	}

	data, err := pipeline.EncodeIR(doc)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeEmit, err.Error(), nil)
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWrite, err.Error(), nil)
		}
		return formatter.Success(fmt.Sprintf("wrote %d nodes to %s", len(doc.Nodes), opts.Output))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
