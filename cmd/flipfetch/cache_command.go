package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"flipfetch/internal/destring/artifactcache"
	"flipfetch/internal/logging"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the decoder artifact cache",
	}
	cacheCmd.AddCommand(newCachePathCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheClearCommand(cmdCtx))
	return cacheCmd
}

func newCachePathCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the cache directory and the artifact's cached location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			cache := artifactcache.New(cfg.Paths.CacheDir, http.DefaultClient, logging.NewNop())
			artifactPath := cache.Path(cfg.Decoder.ArtifactURL)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache directory: %s\n", cache.Dir())
			fmt.Fprintf(out, "Artifact: %s", artifactPath)
			if _, err := os.Stat(artifactPath); err != nil {
				fmt.Fprint(out, " (not fetched)")
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newCacheClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached decoder artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			cache := artifactcache.New(cfg.Paths.CacheDir, http.DefaultClient, logging.NewNop())
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Artifact cache cleared")
			return nil
		},
	}
}
