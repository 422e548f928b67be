package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Init returns the command for creating an environment configuration.
//
// This command guides users through creating the democtl.yaml configuration
// file with an interactive wizard, or writes a fully defaulted file when
// --defaults is given (for CI and scripted use).
//
// Flags:
//
//	--output, -o: Path to output file (default "democtl.yaml")
//	--defaults: Skip the wizard and write a defaulted configuration
//	--sandbox-id, --registry-org, --git-org: Seed values for --defaults
func Init() *cobra.Command {
	var (
		outputPath  string
		useDefaults bool
		sandboxID   string
		registryOrg string
		gitOrg      string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create an environment configuration",
		Long: `Interactively create an environment configuration file.

This command guides you through describing your demo environment:

  - Sandbox identity (id and top-level domain)
  - AWS region
  - Registry and git organizations
  - Cluster set (single-node hub/dev, optional HA prod)

Use --defaults together with --sandbox-id, --registry-org and --git-org
to write a fully defaulted configuration without prompting, for example
in CI.

Examples:
  # Interactive wizard
  democtl init

  # Non-interactive, defaulted configuration
  democtl init --defaults --sandbox-id 1234 --registry-org demo --git-org demo`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, useDefaults, sandboxID, registryOrg, gitOrg)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "democtl.yaml", "Output file path")
	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "Write a defaulted configuration without prompting")
	cmd.Flags().StringVar(&sandboxID, "sandbox-id", "", "Sandbox id for --defaults")
	cmd.Flags().StringVar(&registryOrg, "registry-org", "", "Registry organization for --defaults")
	cmd.Flags().StringVar(&gitOrg, "git-org", "", "Git organization for --defaults")

	return cmd
}
