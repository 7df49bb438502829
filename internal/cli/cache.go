package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imagehub/pkg/cache"
	"github.com/matzehuels/imagehub/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the upstream response cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheOptions returns the cache backend of the configuration, or the
// default file cache when no valid configuration is available.
func (c *CLI) cacheOptions() cache.Options {
	cfg, err := c.loadConfig()
	if err != nil {
		c.Logger.Debug("using default cache location", "reason", err)
		return cache.Options{}
	}
	return cache.Options{RedisURL: cfg.Cache.RedisURL, Dir: cfg.Cache.Dir}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached image info and records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cacheOptions()
			backend, err := cache.Open(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer backend.Close()

			if err := backend.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared cache")
			printDetail("Location: %s", cacheLocation(opts))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(c.cacheOptions()))
			return nil
		},
	}
}

func cacheLocation(opts cache.Options) string {
	if opts.RedisURL != "" {
		return config.RedactURI(opts.RedisURL)
	}
	if opts.Dir != "" {
		return opts.Dir
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "(unavailable)"
	}
	return dir
}
