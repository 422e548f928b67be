package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Up returns the command for provisioning the complete environment.
//
// This command runs every provisioning step in dependency order: domain
// delegation, cluster installs, registry setup, source repositories,
// secret/IAM provisioning, and webhook registration. Results are threaded
// between steps in memory.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//	--kubeconfig: Kubeconfig for the secrets cluster (default: artifact bundle)
//
// Environment variables:
//
//	PULL_SECRET, SSH_PUBLIC_KEY: Installer inputs (required)
//	QUAY_TOKEN, GITHUB_TOKEN: API tokens (required)
func Up() *cobra.Command {
	var configPath string
	var kubeconfigPath string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the complete demo environment",
		Long: `Provision the complete demo environment in one run.

Runs all steps in dependency order:

  1. domain    - delegate the cluster DNS zone
  2. cluster   - install every configured cluster (already-installed
                 clusters are skipped, so re-runs converge)
  3. registry  - organization, robot and image repositories
  4. repos     - source repositories
  5. secrets   - secret bundles, IAM role, service account annotation
  6. webhooks  - CI webhooks on every repository

Every step is idempotent. If a step fails, fix the cause and re-run;
completed work is picked up, not repeated.

Examples:
  democtl up`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), configPath, kubeconfigPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Kubeconfig for the secrets cluster")

	return cmd
}
