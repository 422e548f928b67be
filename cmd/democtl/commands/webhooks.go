package commands

import (
	"github.com/spf13/cobra"

	"github.com/demoplatform/democtl/cmd/democtl/handlers"
)

// Webhooks returns the command for registering CI webhooks.
//
// Optional flags:
//
//	--config, -c: Path to environment configuration (default: democtl.yaml)
//	--kubeconfig: Kubeconfig for the secrets cluster (default: artifact bundle)
//	--url: Webhook endpoint (default: resolved from the cluster route)
//
// Environment variables:
//
//	GITHUB_TOKEN: Source-control API token (required)
//	KUBECONFIG: Fallback kubeconfig when --kubeconfig is not given
func Webhooks() *cobra.Command {
	var (
		configPath     string
		kubeconfigPath string
		url            string
	)

	cmd := &cobra.Command{
		Use:   "webhooks",
		Short: "Register CI webhooks on the source repositories",
		Long: `Register the CI webhook on every source repository.

The endpoint is resolved from the cluster's webhook listener route unless
--url is given, and the shared secret comes from the stored CI bundle.
Hooks are matched by URL: an existing hook is updated in place, so
re-running never stacks duplicates. Events are push and pull_request with
SSL verification on.

Examples:
  democtl webhooks

  # Point the hooks at an explicit endpoint
  democtl webhooks --url https://listener.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Webhooks(cmd.Context(), configPath, kubeconfigPath, url)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: democtl.yaml)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Kubeconfig for the secrets cluster")
	cmd.Flags().StringVar(&url, "url", "", "Webhook endpoint (default: resolved from the cluster route)")

	return cmd
}
