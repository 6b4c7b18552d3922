package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/composer-gateway/internal/config"
	"github.com/matzehuels/composer-gateway/pkg/buildinfo"
)

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"instance-url": "instance_url",
	"listen":       "listen",
	"cache":        "cache.backend",
	"cache-dir":    "cache.dir",
	"timeout":      "upstream.timeout",
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Serve a Composer repository from GitLab's package registry",
		Long: `composer-gateway answers Composer repository requests (packages.json and p2 files)
by querying a GitLab instance's Composer package registry over GraphQL.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default ./composer-gateway.toml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("instance-url", "", "GitLab instance URL (default https://gitlab.com)")
	flags.String("cache", "", "manifest cache backend (file, memory, redis, mongo, none)")
	flags.String("cache-dir", "", "directory for the file cache backend")
	flags.Duration("timeout", 0, "timeout for each GitLab request (default 30s)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the configuration for the running command.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	cfg, err := config.Load(config.Options{File: c.configFile, Flags: flags})
	if err != nil {
		return err
	}
	c.cfg = cfg
	if err := c.applyLogLevel(); err != nil {
		return err
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
