package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/pipeline"
	"github.com/moonsmith/moonsmith/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output     string
	IROutput   string
	CFG        bool
	NoValidate bool
	UseCache   bool
}

// BuildStats summarizes one build for the success payload.
type BuildStats struct {
	SourcePath string `json:"sourcePath"`
	SourceHash string `json:"sourceHash"`
	Nodes      int    `json:"nodes"`
	Graphs     int    `json:"graphs,omitempty"`
	LuaBytes   int    `json:"luaBytes"`
	FromCache  bool   `json:"fromCache,omitempty"`
}

func (s BuildStats) String() string {
	out := fmt.Sprintf("built %s: %d nodes, %d bytes of Lua (hash %.12s...)",
		s.SourcePath, s.Nodes, s.LuaBytes, s.SourceHash)
	if s.FromCache {
		out += " [cached]"
	}
	return out
}

// NewBuildCommand creates the build command: the full pipeline from
// source text to emitted Lua, with optional artifact caching.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "build <source-file>",
		Short:         "Compile source to Lua through the validated IR",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write emitted Lua to this file")
	cmd.Flags().StringVar(&opts.IROutput, "ir", "", "write canonical IR JSON to this file")
	cmd.Flags().BoolVar(&opts.CFG, "cfg", false, "attach per-function control-flow graphs")
	cmd.Flags().BoolVar(&opts.NoValidate, "no-validate", false, "skip the validator stage")
	cmd.Flags().BoolVar(&opts.UseCache, "cache", false, "reuse and populate the artifact cache")

	return cmd
}

func runBuild(opts *BuildOptions, sourcePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeRead, fmt.Sprintf("reading source: %v", err), nil)
	}
	hash := ir.SourceHash(string(src))

	var cache *store.Store
	if opts.UseCache {
		path := cfg.CacheDB
		if path == "" {
			path = "moonsmith.db"
		}
		if cache, err = store.Open(path); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
		}
		defer cache.Close()

		cached, err := cache.Get(cmd.Context(), hash)
		if err == nil {
			formatter.VerboseLog("cache hit for %s", hash)
			return finishBuild(formatter, opts, sourcePath, hash, cached.IRJSON, cached.Lua, true)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
		}
		formatter.VerboseLog("cache miss for %s", hash)
	}

	artifact, err := pipeline.Build(string(src), pipeline.Options{
		SourcePath:    sourcePath,
		Toolchain:     cfg.Toolchain,
		SchemaVersion: cfg.SchemaVersion,
		FnMeta:        cfg.Functions,
		BuildCFG:      opts.CFG || cfg.CFG,
		SkipValidate:  opts.NoValidate,
	})
	if err != nil {
		var vf *pipeline.ValidationFailed
		if errors.As(err, &vf) {
			return fail(formatter, ExitFailure, ErrCodeValidate,
				fmt.Sprintf("%d validation errors", len(vf.Result.Errors)), vf.Result.Errors)
		}
		return fail(formatter, ExitFailure, ErrCodeCompile, err.Error(), nil)
	}

	if cache != nil {
		err = cache.Put(cmd.Context(), store.Artifact{
			SourceHash:    hash,
			SourcePath:    sourcePath,
			SchemaVersion: artifact.Document.SchemaVersion,
			RunID:         runID(artifact.Document),
			IRJSON:        artifact.IRJSON,
			Lua:           artifact.Lua,
		})
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
		}
	}

	stats := finishStats(artifact.Document, sourcePath, hash, artifact.Lua, false)
	if err := writeOutputs(opts, artifact.IRJSON, artifact.Lua); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWrite, err.Error(), nil)
	}
	if opts.Output == "" && opts.Format == "text" {
		fmt.Fprint(cmd.OutOrStdout(), artifact.Lua)
		formatter.VerboseLog("%s", stats)
		return nil
	}
	return formatter.Success(stats)
}

// finishBuild reports a cache hit, honoring the same output flags as a
// fresh build.
func finishBuild(formatter *OutputFormatter, opts *BuildOptions, sourcePath, hash string, irJSON []byte, lua string, cached bool) error {
	doc, err := ir.DecodeDocument(irJSON)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeDecode,
			fmt.Sprintf("cached document: %v", err), nil)
	}
	if err := writeOutputs(opts, irJSON, lua); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeWrite, err.Error(), nil)
	}
	stats := finishStats(doc, sourcePath, hash, lua, cached)
	if opts.Output == "" && opts.Format == "text" {
		fmt.Fprint(formatter.Writer, lua)
		formatter.VerboseLog("%s", stats)
		return nil
	}
	return formatter.Success(stats)
}

func finishStats(doc *ir.Document, sourcePath, hash, lua string, cached bool) BuildStats {
	return BuildStats{
		SourcePath: sourcePath,
		SourceHash: hash,
		Nodes:      len(doc.Nodes),
		Graphs:     len(doc.Graphs),
		LuaBytes:   len(lua),
		FromCache:  cached,
	}
}

func writeOutputs(opts *BuildOptions, irJSON []byte, lua string) error {
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(lua), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.Output, err)
		}
	}
	if opts.IROutput != "" {
		if err := os.WriteFile(opts.IROutput, irJSON, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.IROutput, err)
		}
	}
	return nil
}

func runID(doc *ir.Document) string {
	if v := doc.Module.Metadata.Volatile; v != nil {
		return v.RunID
	}
	return ""
}

// fail emits the error through the formatter and returns the matching
// ExitError so main can set the process exit code.
func fail(formatter *OutputFormatter, exitCode int, errCode, message string, details any) error {
	if err := formatter.Error(errCode, message, details); err != nil {
		return err
	}
	return &ExitError{Code: exitCode, Message: message}
}
