package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Secrets returns the command for provisioning secrets and IAM bindings.
//
// This command stores the portal and CI secret bundles in AWS Secrets
// Manager, creates the IAM policy and OIDC-federated role granting the CI
// service account read access, and annotates the service account with the
// role ARN.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//	--kubeconfig: Kubeconfig for the secrets cluster (default: artifact bundle)
//	--backend-secret, --oauth-client-secret: Override generated portal values
//
// Environment variables:
//
//	GITHUB_TOKEN: Stored in the CI bundle for in-cluster use (required)
//	KUBECONFIG: Fallback kubeconfig when --kubeconfig is not given
func Secrets() *cobra.Command {
	var (
		configPath        string
		kubeconfigPath    string
		backendSecret     string
		oauthClientSecret string
	)

	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Provision secret bundles and workload identity",
		Long: `Provision the platform secret bundles and their IAM bindings.

Stores two bundles in AWS Secrets Manager: the portal bundle
(backend_secret, oauth_client_secret) and the CI bundle (webhook_secret
plus the registry robot and git credentials). Generated values survive
re-runs; only supplied credentials are overwritten.

Reads the cluster's service account issuer, resolves the matching IAM
OIDC provider, and creates or updates the policy and role granting the CI
service account read access to exactly the two bundles. The service
account is created if needed and annotated with the role ARN.

Requires a prior 'democtl registry' run (robot credentials) and an
installed secrets cluster.

Examples:
  democtl secrets

  # Use an explicit kubeconfig instead of the artifact bundle
  democtl secrets --kubeconfig ~/.kube/hub.kubeconfig`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Secrets(cmd.Context(), configPath, kubeconfigPath, backendSecret, oauthClientSecret)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Kubeconfig for the secrets cluster")
	cmd.Flags().StringVar(&backendSecret, "backend-secret", "", "Portal backend secret (default: generated)")
	cmd.Flags().StringVar(&oauthClientSecret, "oauth-client-secret", "", "Portal OAuth client secret (default: generated)")

	return cmd
}
