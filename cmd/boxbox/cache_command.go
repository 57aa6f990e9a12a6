package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/boxbox/internal/fetchcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the provider fetch cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cached response counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = cache.Close() }()

			count, err := cache.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Path", "Cached responses"},
				[][]string{{cache.Path(), strconv.Itoa(count)}},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached response",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = cache.Close() }()

			if err := cache.Purge(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache purged")
			return nil
		},
	})

	return cacheCmd
}

func openCache(ctx *commandContext) (*fetchcache.Cache, error) {
	if ctx.cfg.CachePath == "" {
		return nil, fmt.Errorf("caching is disabled (cache_path is empty)")
	}
	return fetchcache.Open(ctx.cfg.CachePath)
}
