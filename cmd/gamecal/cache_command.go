package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gamecal/internal/pagecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openCache(ctx *commandContext) (*pagecache.Cache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return pagecache.Open(cfg)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show page cache size and age",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:   %s\n", stats.Path)
			fmt.Fprintf(out, "Pages:  %d\n", stats.Pages)
			fmt.Fprintf(out, "Bytes:  %d\n", stats.Bytes)
			if stats.Pages > 0 {
				fmt.Fprintf(out, "Oldest: %s\n", stats.Oldest.Format(time.RFC3339))
				fmt.Fprintf(out, "Newest: %s\n", stats.Newest.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached pages older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				olderThan = time.Duration(cfg.Fetch.CacheTTLHours) * time.Hour
			}
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			removed, err := cache.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d pages older than %s\n", removed, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age cutoff (defaults to fetch.cache_ttl_hours)")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if errors.Is(err, pagecache.ErrSchemaMismatch) {
				cfg, _ := ctx.ensureConfig()
				if err := pagecache.Remove(cfg.CachePath()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed incompatible cache %s\n", cfg.CachePath())
				return nil
			}
			if err != nil {
				return err
			}
			defer cache.Close()

			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d pages\n", removed)
			return nil
		},
	}
}
