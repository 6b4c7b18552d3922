package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-gateway/internal/server"
	"github.com/matzehuels/composer-gateway/pkg/httputil"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Composer repository server",
		Long: `Run an HTTP server that answers Composer repository requests.

Point Composer at it with a repository entry such as:

  {"type": "composer", "url": "http://localhost:8080/acme"}

Credentials sent by Composer in the Authorization or Private-Token header
are forwarded to GitLab.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			breakers := httputil.NewBreakers(c.cfg.Upstream.BreakerThreshold)
			installHooks(c.Logger)

			srv := server.New(server.Options{
				GitLab:   c.newGitLab(breakers),
				Cache:    backend,
				Breakers: breakers,
				Logger:   c.Logger,
			})
			return srv.Run(ctx, c.cfg.Listen)
		},
	}

	cmd.Flags().String("listen", "", "address to listen on (default :8080)")
	return cmd
}
