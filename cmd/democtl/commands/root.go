// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the democtl CLI.
//
// The root command serves as the entry point and parent for all
// subcommands. It provides basic CLI metadata and organizes the command
// hierarchy.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "democtl",
		Short: "Provision demo platform sandboxes on AWS and OpenShift",
	}

	// Provisioning steps in dependency order
	cmd.AddCommand(Init())
	cmd.AddCommand(Domain())
	cmd.AddCommand(Cluster())
	cmd.AddCommand(Registry())
	cmd.AddCommand(Repos())
	cmd.AddCommand(Secrets())
	cmd.AddCommand(Webhooks())
	cmd.AddCommand(Up())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
