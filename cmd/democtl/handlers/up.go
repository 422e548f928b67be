// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/installer"
	"github.com/demoplatform/democtl/internal/k8s"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/platform/awsutil"
	"github.com/demoplatform/democtl/internal/platform/github"
	"github.com/demoplatform/democtl/internal/platform/iam"
	"github.com/demoplatform/democtl/internal/platform/quay"
	"github.com/demoplatform/democtl/internal/platform/route53"
	"github.com/demoplatform/democtl/internal/platform/secretsmanager"
	"github.com/demoplatform/democtl/internal/provisioning"
	"github.com/demoplatform/democtl/internal/util/naming"
	"github.com/demoplatform/democtl/internal/util/prerequisites"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadEnvironment loads and validates the environment configuration.
	loadEnvironment = config.Load

	// findConfigFile locates the default configuration file.
	findConfigFile = config.FindConfigFile

	// getenv reads process environment variables.
	getenv = os.Getenv

	// newAWSConfig loads the ambient AWS configuration for a region.
	newAWSConfig = awsutil.LoadConfig

	// verifyIdentity checks AWS credentials and returns the caller identity.
	verifyIdentity = awsutil.CallerIdentity

	// newDNSClient creates the hosted zone client.
	newDNSClient = func(cfg aws.Config) provisioning.DNSClient {
		return route53.NewClient(cfg)
	}

	// newSecretsClient creates the secret manager client.
	newSecretsClient = func(cfg aws.Config) provisioning.SecretsClient {
		return secretsmanager.NewClient(cfg)
	}

	// newIAMClient creates the IAM client bound to the caller's account.
	newIAMClient = func(cfg aws.Config, accountID string) provisioning.IAMClient {
		return iam.NewClient(cfg, accountID)
	}

	// newRegistryClient creates the container registry client.
	newRegistryClient = func(apiURL, token string) provisioning.RegistryClient {
		return quay.NewClient(apiURL, token)
	}

	// newGitClient creates the source-control client.
	newGitClient = func(apiURL, token string) provisioning.GitClient {
		return github.NewClient(apiURL, token)
	}

	// newInstallerRunner creates the external installer runner.
	newInstallerRunner = func() provisioning.InstallerRunner {
		return installer.NewRunner()
	}

	// dialCluster connects to a cluster API through its kubeconfig.
	dialCluster = func(kubeconfigPath string) (provisioning.ClusterClient, error) {
		return k8s.NewClient(kubeconfigPath)
	}

	// checkInstallerPrereqs verifies the installer binary is available.
	checkInstallerPrereqs = prerequisites.CheckInstaller

	// writeFile writes data to a file (for testing injection).
	writeFile = os.WriteFile
)

// Up provisions the complete demo environment.
//
// This function orchestrates the full workflow:
//  1. Loads and validates the environment configuration
//  2. Verifies the installer binary and required credentials up front
//  3. Runs the provisioning pipeline: delegation, clusters, registry,
//     source repositories, secrets/IAM, webhooks
//  4. Persists the robot credentials and secret ARN env files
//
// Already-installed clusters are skipped so an interrupted run converges
// on re-run instead of failing on the existing artifact directories.
func Up(ctx context.Context, configPath, kubeconfigPath string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}
	if err := checkPrerequisites(); err != nil {
		return err
	}
	values, err := requireEnv(config.EnvPullSecret, config.EnvSSHPublicKey, config.EnvQuayToken, config.EnvGitHubToken)
	if err != nil {
		return err
	}

	awsCfg, identity, err := awsClients(ctx, env)
	if err != nil {
		return err
	}

	clients := provisioning.Clients{
		DNS:         newDNSClient(awsCfg),
		Registry:    newRegistryClient(env.Registry.APIURL, values[config.EnvQuayToken]),
		Git:         newGitClient(env.Git.APIURL, values[config.EnvGitHubToken]),
		Secrets:     newSecretsClient(awsCfg),
		IAM:         newIAMClient(awsCfg, identity.Account),
		Installer:   newInstallerRunner(),
		ClusterDial: dialCluster,
	}

	pctx := provisioning.NewContext(ctx, env, clients, log.Logger())
	pctx.State.PullSecret = values[config.EnvPullSecret]
	pctx.State.SSHPublicKey = values[config.EnvSSHPublicKey]
	pctx.State.GitToken = values[config.EnvGitHubToken]
	pctx.State.KubeconfigPath = resolveKubeconfig(kubeconfigPath)

	pipeline := provisioning.NewPipeline(
		&provisioning.DelegationPhase{},
		&provisioning.ClusterPhase{SkipInstalled: true},
		&provisioning.RegistryPhase{},
		&provisioning.SourceReposPhase{},
		&provisioning.SecretsPhase{},
		&provisioning.WebhooksPhase{},
	)
	if err := pipeline.Run(pctx); err != nil {
		return err
	}

	if err := writeRegistryCredentials(pctx.State); err != nil {
		return err
	}
	if err := writeSecretsEnv(env, pctx.State); err != nil {
		return err
	}

	printUpSuccess(env, pctx.State)
	return nil
}

// resolveEnvironment loads the environment from the given path, falling
// back to config discovery when the path is empty.
func resolveEnvironment(configPath string) (*config.Environment, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'democtl init' to create one", err)
		}
		configPath = path
	}

	env, err := loadEnvironment(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return env, nil
}

// awsClients loads the AWS configuration for the environment's region and
// verifies credentials up front, before any remote resources are touched.
func awsClients(ctx context.Context, env *config.Environment) (aws.Config, awsutil.Identity, error) {
	cfg, err := newAWSConfig(ctx, env.Region)
	if err != nil {
		return aws.Config{}, awsutil.Identity{}, err
	}

	identity, err := verifyIdentity(ctx, cfg)
	if err != nil {
		return aws.Config{}, awsutil.Identity{}, err
	}

	log.Info("verified AWS credentials", "account", identity.Account, "region", env.Region)
	return cfg, identity, nil
}

// requireEnv reads the named environment variables, failing once with
// every missing name listed.
func requireEnv(names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		value := getenv(name)
		if value == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return values, nil
}

// resolveKubeconfig prefers the flag value, then the KUBECONFIG variable.
// Empty means the artifact bundle of the secrets cluster.
func resolveKubeconfig(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getenv(config.EnvKubeconfig)
}

// checkPrerequisites verifies the installer binary is reachable before any
// remote resources are touched.
func checkPrerequisites() error {
	results := checkInstallerPrereqs()

	for _, r := range results.Results {
		if r.Found {
			version := r.Version
			if version == "" {
				version = "unknown version"
			}
			log.Info("found required tool", "tool", r.Tool.Name, "version", version)
		}
	}

	if err := results.Error(); err != nil {
		return fmt.Errorf("prerequisites check failed: %w", err)
	}
	return nil
}

// printUpSuccess outputs the completion summary and where artifacts live.
func printUpSuccess(env *config.Environment, state *provisioning.State) {
	fmt.Printf("\nEnvironment ready!\n\n")
	fmt.Printf("  Cluster domain: %s\n", env.ChildZone())
	fmt.Printf("  Clusters:       %s\n", strings.Join(state.InstalledClusters, ", "))
	fmt.Printf("  Registry robot: %s\n", state.RobotUser)
	fmt.Printf("  Pipeline role:  %s\n", state.RoleARN)
	fmt.Printf("  Webhook URL:    %s\n", state.WebhookURL)
	fmt.Printf("\nRobot credentials saved to: %s\n", naming.RegistryCredentialsFile)
	fmt.Printf("Secret ARNs saved to:       %s\n", naming.SecretsFile)
	fmt.Printf("\nCluster credentials live under %s/<cluster>/auth/\n", env.ArtifactsDir)
}
