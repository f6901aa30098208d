package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/pipeline"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	Output     string
	NoValidate bool
}

// NewEmitCommand creates the emit command: render an existing IR JSON
// document as Lua, without recompiling source.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "emit <ir-file>",
		Short:         "Emit Lua from a serialized IR document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write emitted Lua to this file")
	cmd.Flags().BoolVar(&opts.NoValidate, "no-validate", false, "skip validation before emitting")

	return cmd
}

func runEmit(opts *EmitOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeRead, fmt.Sprintf("reading input: %v", err), nil)
	}
	doc, err := ir.DecodeDocument(data)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeDecode, err.Error(), nil)
	}

	if !opts.NoValidate {
		if result := pipeline.ValidateIR(doc); !result.OK {
			return fail(formatter, ExitFailure, ErrCodeValidate,
				fmt.Sprintf("%d validation errors", len(result.Errors)), result.Errors)
		}
	}

	lua, err := pipeline.Emit(doc)
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeEmit, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(lua), 0o644); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWrite, err.Error(), nil)
		}
		return formatter.Success(fmt.Sprintf("wrote %d bytes to %s", len(lua), opts.Output))
	}
	fmt.Fprint(cmd.OutOrStdout(), lua)
	return nil
}
