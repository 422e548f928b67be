package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Domain returns the command for delegating the cluster DNS zone.
//
// This command looks up the pre-existing sandbox parent zone, creates the
// child zone for cluster domains, and upserts the NS delegation record in
// the parent.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//	--output-file: Write a JSON summary of the delegation result
//
// Requires AWS credentials in the standard environment/profile chain.
func Domain() *cobra.Command {
	var configPath string
	var outputFile string

	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Delegate the cluster DNS zone from the sandbox zone",
		Long: `Delegate the cluster DNS zone from the sandbox parent zone.

Looks up the parent zone (sandbox<id>.<top domain>), which must already
exist, creates the child zone (ocp.<parent>) if absent, and upserts the NS
record delegating the child in the parent.

The command is idempotent: re-running converges on the same zones and
record without creating duplicates.

Examples:
  # Delegate using democtl.yaml in the current directory
  democtl domain

  # Record the resulting zone ids and name servers
  democtl domain --output-file delegation.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Domain(cmd.Context(), configPath, outputFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Write a JSON delegation summary to this file")

	return cmd
}
