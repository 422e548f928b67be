package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Repos returns the command for creating the source repositories.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//
// Environment variables:
//
//	GITHUB_TOKEN: Source-control API token (required)
func Repos() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Create the source repositories",
		Long: `Create the platform source repositories under the git organization.

Repositories that already exist are skipped. No branch protection or
templates are applied.

Examples:
  democtl repos`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Repos(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")

	return cmd
}
