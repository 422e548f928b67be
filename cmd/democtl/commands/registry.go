package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Registry returns the command for setting up the container registry.
//
// This command creates the registry organization, its automation robot
// account, and one image repository per source repository with robot write
// access, then writes the robot credentials to quay-credentials.env.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//
// Environment variables:
//
//	QUAY_TOKEN: Registry API bearer token (required)
func Registry() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Set up the registry organization, robot and repositories",
		Long: `Set up the container registry for the demo platform.

Creates the organization, the automation robot account and the image
repositories, and grants the robot write access to each repository.
Everything already present is left in place, so re-running converges.

The issued robot credentials are written to quay-credentials.env (0600)
for sourcing into later steps and local tooling.

Examples:
  democtl registry`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Registry(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")

	return cmd
}
