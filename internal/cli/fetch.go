package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/composer-gateway/pkg/composer"
	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

type fetchOptions struct {
	namespace string
	project   string
	pkg       string
	token     string
	output    string
}

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Build a repository document and print it",
		Long: `Build the repository document the server would return and print it as JSON.

Without --namespace every project visible to the token is scanned.`,
		Example: `  composer-gateway fetch --namespace acme --project widgets
  composer-gateway fetch --namespace acme --package acme/widgets -o packages.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "group or user namespace")
	cmd.Flags().StringVar(&opts.project, "project", "", "project within the namespace")
	cmd.Flags().StringVar(&opts.pkg, "package", "", "only include this vendor/package")
	cmd.Flags().StringVar(&opts.token, "token", os.Getenv("GITLAB_TOKEN"), "GitLab token sent as Private-Token (default $GITLAB_TOKEN)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, opts fetchOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	installHooks(logger)

	sel := gitlab.Selector{Namespace: opts.namespace, Project: opts.project, PackageName: opts.pkg}
	if err := sel.Validate(); err != nil {
		return err
	}
	if sel.Namespace != "" {
		if err := gwerrors.ValidatePath(sel.Namespace); err != nil {
			return err
		}
	}
	if sel.PackageName != "" {
		if err := gwerrors.ValidateComposerPackageName(sel.PackageName); err != nil {
			return err
		}
	}

	backend, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	client := c.newGitLab(nil).WithHeaders(map[string]string{
		"Authorization": "",
		"Private-Token": opts.token,
	})

	prog := newProgress(logger)
	repo, err := composer.NewFormatter(client, backend, logger).BuildPackages(ctx, sel)
	if err != nil {
		return err
	}
	prog.done("Built repository for " + sel.Scope())

	data, err := json.MarshalIndent(repo, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Wrote %s", opts.output)
	printStats(cmd.OutOrStdout(), len(repo.Packages), repo.Versions())
	return nil
}
