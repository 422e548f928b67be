package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Cluster returns the command for installing OpenShift clusters.
//
// This command renders an install-config.yaml from the cluster's sizing
// preset and runs the external openshift-install binary, streaming its
// output. Expect a single cluster install to take around 40 minutes.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//	--name: Install a single named cluster (default: all configured clusters)
//
// Environment variables:
//
//	PULL_SECRET: Image pull secret embedded into the install config (required)
//	SSH_PUBLIC_KEY: SSH public key for node access (required)
func Cluster() *cobra.Command {
	var configPath string
	var name string

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Install OpenShift clusters with openshift-install",
		Long: `Install OpenShift clusters using the external installer.

For each selected cluster this renders install-config.yaml from the
configured sizing preset (sno or ha), keeps a backup copy, and invokes
'openshift-install create cluster' with output streamed through.

The installer's artifacts (auth/kubeconfig, auth/kubeadmin-password,
metadata.json) land in the per-cluster directory under the artifacts dir.
A directory already holding cluster credentials is refused; remove it to
reinstall.

Examples:
  # Install every configured cluster
  democtl cluster

  # Install only the hub cluster
  democtl cluster --name hub`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cluster(cmd.Context(), configPath, name)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")
	cmd.Flags().StringVar(&name, "name", "", "Cluster to install (default: all configured clusters)")

	return cmd
}
