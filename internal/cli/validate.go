package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/irschema"
	"github.com/moonsmith/moonsmith/internal/pipeline"
	"github.com/moonsmith/moonsmith/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	FromIR bool
	Schema bool
}

// ValidationReport is the success payload of the validate command.
type ValidationReport struct {
	OK     bool                       `json:"ok"`
	Errors []validate.ValidationError `json:"errors,omitempty"`
	Schema []string                   `json:"schemaErrors,omitempty"`
}

func (r ValidationReport) String() string {
	if r.OK {
		return "ok"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors\n", len(r.Errors)+len(r.Schema))
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  %s\n", e)
	}
	for _, m := range r.Schema {
		fmt.Fprintf(&b, "  [schema] %s\n", m)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewValidateCommand creates the validate command. It accepts either
// source text (compiled first) or, with --ir, a serialized document.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "validate <file>",
		Short:         "Validate a document, collecting every violation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FromIR, "ir", false, "input is IR JSON, not source text")
	cmd.Flags().BoolVar(&opts.Schema, "schema", false, "also check the serialized shape against the CUE schema")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeRead, fmt.Sprintf("reading input: %v", err), nil)
	}

	var doc *ir.Document
	var irJSON []byte
	if opts.FromIR {
		irJSON = data
		if doc, err = ir.DecodeDocument(data); err != nil {
			return fail(formatter, ExitFailure, ErrCodeDecode, err.Error(), nil)
		}
	} else {
		doc, err = pipeline.ParseAndLower(string(data), pipeline.Options{SourcePath: path})
		if err != nil {
			return fail(formatter, ExitFailure, ErrCodeCompile, err.Error(), nil)
		}
	}

	report := ValidationReport{}
	result := pipeline.ValidateIR(doc)
	report.OK = result.OK
	report.Errors = result.Errors

	if opts.Schema {
		if irJSON == nil {
			if irJSON, err = pipeline.EncodeIR(doc); err != nil {
				return fail(formatter, ExitFailure, ErrCodeEmit, err.Error(), nil)
			}
		}
		msgs, err := irschema.Check(irJSON)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeSchema, err.Error(), nil)
		}
		report.Schema = msgs
		if len(msgs) > 0 {
			report.OK = false
		}
	}

	if !report.OK {
		if err := formatter.Success(report); err != nil {
			return err
		}
		return &ExitError{Code: ExitFailure, Message: "validation failed"}
	}
	return formatter.Success(report)
}
