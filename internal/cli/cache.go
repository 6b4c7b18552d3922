package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-gateway/internal/config"
	"github.com/matzehuels/composer-gateway/pkg/cache"
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the manifest cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheForgetCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached manifest (file backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend != config.BackendFile {
				return gwerrors.New(gwerrors.ErrCodeInvalidInput,
					"cache clear only supports the file backend; use forget for %s", c.cfg.Cache.Backend)
			}

			fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache dir: %w", err)
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if count == 0 {
				printInfo(out, "Cache is empty")
				return nil
			}
			printSuccess(out, "Cleared %d cached manifests", count)
			printDetail(out, "Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where manifests are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Cache
			out := cmd.OutOrStdout()
			switch cfg.Backend {
			case config.BackendFile:
				fmt.Fprintln(out, cfg.Dir)
			case config.BackendRedis:
				fmt.Fprintln(out, cfg.RedisURL)
			case config.BackendMongo:
				fmt.Fprintf(out, "%s/%s.%s\n", cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
			default:
				fmt.Fprintln(out, cfg.Backend)
			}
			return nil
		},
	}
}

// cacheForgetCommand creates the "cache forget" subcommand.
func (c *CLI) cacheForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <project-path> <sha>",
		Short: "Drop the cached manifest of a project at a commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, sha := args[0], args[1]
			if err := gwerrors.ValidatePath(project); err != nil {
				return err
			}

			backend, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			key := cache.ManifestKey(project, sha)
			if err := backend.Delete(cmd.Context(), key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			printSuccess(cmd.OutOrStdout(), "Forgot %s", key)
			return nil
		},
	}
}
