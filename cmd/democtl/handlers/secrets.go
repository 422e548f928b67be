package handlers

import (
	"context"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/provisioning"
	"github.com/demoplatform/democtl/internal/util/naming"
)

// Secrets provisions the secret bundles, the IAM policy and role bound to
// the cluster's workload identity, and the service account annotation.
//
// Robot credentials come from quay-credentials.env (written by the
// registry step); the git token from GITHUB_TOKEN. The recorded secret
// ARNs land in secrets.env; secret values never touch disk.
func Secrets(ctx context.Context, configPath, kubeconfigPath, backendSecret, oauthClientSecret string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}
	values, err := requireEnv(config.EnvGitHubToken)
	if err != nil {
		return err
	}
	robot, err := readEnvFile(naming.RegistryCredentialsFile)
	if err != nil {
		return err
	}

	awsCfg, identity, err := awsClients(ctx, env)
	if err != nil {
		return err
	}

	clients := provisioning.Clients{
		Secrets:     newSecretsClient(awsCfg),
		IAM:         newIAMClient(awsCfg, identity.Account),
		ClusterDial: dialCluster,
	}

	pctx := provisioning.NewContext(ctx, env, clients, log.Logger())
	pctx.State.RobotUser = robot[envKeyQuayUsername]
	pctx.State.RobotToken = robot[envKeyQuayPassword]
	pctx.State.GitToken = values[config.EnvGitHubToken]
	pctx.State.KubeconfigPath = resolveKubeconfig(kubeconfigPath)
	pctx.State.BackendSecret = backendSecret
	pctx.State.OAuthClientSecret = oauthClientSecret

	if err := provisioning.NewPipeline(&provisioning.SecretsPhase{}).Run(pctx); err != nil {
		return err
	}

	if err := writeSecretsEnv(env, pctx.State); err != nil {
		return err
	}

	printSecretsSuccess(env, pctx.State)
	return nil
}

// writeSecretsEnv records the provisioned secret ARNs and the CI bundle
// name. Values stay in the secret manager.
func writeSecretsEnv(env *config.Environment, state *provisioning.State) error {
	return writeEnvFile(naming.SecretsFile, []envPair{
		{Key: "PORTAL_SECRET_ARN", Value: state.PortalSecretARN},
		{Key: "CI_SECRET_ARN", Value: state.CISecretARN},
		{Key: "CI_SECRET_NAME", Value: naming.CISecret(env.Secrets.Prefix)},
		{Key: "PIPELINE_ROLE_ARN", Value: state.RoleARN},
	})
}

// printSecretsSuccess outputs the provisioning result for the operator.
func printSecretsSuccess(env *config.Environment, state *provisioning.State) {
	fmt.Printf("\nSecrets provisioned!\n\n")
	fmt.Printf("  Portal bundle: %s\n", state.PortalSecretARN)
	fmt.Printf("  CI bundle:     %s\n", state.CISecretARN)
	fmt.Printf("  Role:          %s\n", state.RoleARN)
	fmt.Printf("  Annotated:     %s/%s\n", env.Secrets.Namespace, env.Secrets.ServiceAccount)
	fmt.Printf("\nSecret ARNs saved to: %s\n", naming.SecretsFile)
}
