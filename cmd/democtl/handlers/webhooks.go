package handlers

import (
	"context"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/provisioning"
)

// Webhooks registers the CI webhook on every source repository. The
// endpoint comes from --url or the cluster's webhook listener route, the
// shared secret from the stored CI bundle.
func Webhooks(ctx context.Context, configPath, kubeconfigPath, url string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}
	values, err := requireEnv(config.EnvGitHubToken)
	if err != nil {
		return err
	}

	awsCfg, _, err := awsClients(ctx, env)
	if err != nil {
		return err
	}

	clients := provisioning.Clients{
		Git:         newGitClient(env.Git.APIURL, values[config.EnvGitHubToken]),
		Secrets:     newSecretsClient(awsCfg),
		ClusterDial: dialCluster,
	}

	pctx := provisioning.NewContext(ctx, env, clients, log.Logger())
	pctx.State.KubeconfigPath = resolveKubeconfig(kubeconfigPath)
	pctx.State.WebhookURL = url

	if err := provisioning.NewPipeline(&provisioning.WebhooksPhase{}).Run(pctx); err != nil {
		return err
	}

	fmt.Printf("\nWebhooks registered!\n\n")
	fmt.Printf("  Endpoint: %s\n", pctx.State.WebhookURL)
	for _, repo := range env.Git.Repositories {
		fmt.Printf("  %s/%s\n", env.Git.Organization, repo)
	}
	return nil
}
