package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moonsmith/moonsmith/internal/store"
)

// CacheOptions holds flags for the cache command group.
type CacheOptions struct {
	*RootOptions
	DB string
}

// NewCacheCommand creates the cache command group: ls, show, rm.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the artifact cache",
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "cache database path (default from config, then moonsmith.db)")

	cmd.AddCommand(newCacheLsCommand(opts))
	cmd.AddCommand(newCacheShowCommand(opts))
	cmd.AddCommand(newCacheRmCommand(opts))
	return cmd
}

func (opts *CacheOptions) open() (*store.Store, error) {
	path := opts.DB
	if path == "" {
		cfg, err := LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		path = cfg.CacheDB
	}
	if path == "" {
		path = "moonsmith.db"
	}
	return store.Open(path)
}

// cacheListing is the ls payload.
type cacheListing struct {
	Entries []store.Entry `json:"entries"`
}

func (l cacheListing) String() string {
	if len(l.Entries) == 0 {
		return "cache is empty"
	}
	var b strings.Builder
	for _, e := range l.Entries {
		fmt.Fprintf(&b, "%.12s  %-30s  %s\n", e.SourceHash, e.SourcePath, e.CreatedAt)
	}
	return strings.TrimRight(b.String(), "\n")
}

func newCacheLsCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ls",
		Short:         "List cached artifacts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			s, err := opts.open()
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
			}
			defer s.Close()

			entries, err := s.List(cmd.Context())
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
			}
			return formatter.Success(cacheListing{Entries: entries})
		},
	}
}

func newCacheShowCommand(opts *CacheOptions) *cobra.Command {
	var showIR bool
	cmd := &cobra.Command{
		Use:           "show <source-hash>",
		Short:         "Print a cached artifact's Lua (or IR with --ir)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			s, err := opts.open()
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
			}
			defer s.Close()

			a, err := s.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fail(formatter, ExitCommandError, ErrCodeCache,
					fmt.Sprintf("no artifact for hash %s", args[0]), nil)
			}
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
			}
			if showIR {
				fmt.Fprintln(cmd.OutOrStdout(), string(a.IRJSON))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), a.Lua)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIR, "ir", false, "print the canonical IR JSON instead of Lua")
	return cmd
}

func newCacheRmCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <source-hash>",
		Short:         "Remove a cached artifact",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			s, err := opts.open()
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return fail(formatter, ExitCommandError, ErrCodeCache, err.Error(), nil)
			}
			return formatter.Success(fmt.Sprintf("removed %s", args[0]))
		},
	}
}
