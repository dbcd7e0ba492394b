package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/componentscope/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and result caches",
		Long: `Componentscope keeps two caches under ~/.cache/componentscope/:

  http/     design file responses, valid for figma.cache_ttl (default 24h)
  results/  analysis results keyed by document content and options

With cache.backend = "redis" analysis results live in Redis instead and
expire on their own.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached responses and results",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			dirs := []string{filepath.Join(base, responseCacheDir)}
			if c.Config.Cache.Backend == config.CacheFile {
				dirs = append(dirs, c.resultCacheDir(base))
			}

			p := newPrinter(cmd.OutOrStdout())
			total := 0
			for _, dir := range dirs {
				n, err := clearDir(dir)
				if err != nil {
					return err
				}
				total += n
				p.detail("Directory: %s", dir)
			}
			if total == 0 {
				p.info("Cache is empty")
				return nil
			}
			p.success("Cleared %d cached entries", total)
			if c.Config.Cache.Backend == config.CacheRedis {
				p.detail("Results cached in Redis expire on their own")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// resultCacheDir returns the directory of the file result cache.
func (c *CLI) resultCacheDir(base string) string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	return filepath.Join(base, resultCacheDir)
}

// clearDir removes every file below dir and then the emptied
// subdirectories. It returns the number of files removed.
func clearDir(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if !info.IsDir() {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if info.IsDir() {
			os.Remove(path)
		}
		return nil
	})
	return count, nil
}
