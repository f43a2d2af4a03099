package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached layouts", n)
			c.printCacheLocation()
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where layouts are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			switch cfg.Backend {
			case config.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d (prefix %q)\n", cfg.RedisAddr, cfg.RedisDB, cfg.RedisPrefix)
			case config.BackendNone:
				printInfo("Cache is disabled")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Dir)
			}
			return nil
		},
	}
}

func (c *CLI) printCacheLocation() {
	cfg := c.Config.Cache
	if cfg.Backend == config.BackendRedis {
		printDetail("Redis: %s", cfg.RedisAddr)
		return
	}
	printDetail("Directory: %s", cfg.Dir)
}
