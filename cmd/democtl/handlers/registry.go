package handlers

import (
	"context"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/provisioning"
	"github.com/demoplatform/democtl/internal/util/naming"
)

// Env file keys for issued registry robot credentials.
const (
	envKeyQuayUsername = "QUAY_USERNAME"
	envKeyQuayPassword = "QUAY_PASSWORD"
)

// Registry provisions the registry organization, robot and repositories,
// then persists the issued robot credentials for later steps.
func Registry(ctx context.Context, configPath string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}
	values, err := requireEnv(config.EnvQuayToken)
	if err != nil {
		return err
	}

	clients := provisioning.Clients{Registry: newRegistryClient(env.Registry.APIURL, values[config.EnvQuayToken])}
	pctx := provisioning.NewContext(ctx, env, clients, log.Logger())
	if err := provisioning.NewPipeline(&provisioning.RegistryPhase{}).Run(pctx); err != nil {
		return err
	}

	if err := writeRegistryCredentials(pctx.State); err != nil {
		return err
	}

	printRegistrySuccess(env, pctx.State)
	return nil
}

// writeRegistryCredentials persists the issued robot credentials to
// quay-credentials.env for manual sourcing and for the secrets step.
func writeRegistryCredentials(state *provisioning.State) error {
	return writeEnvFile(naming.RegistryCredentialsFile, []envPair{
		{Key: envKeyQuayUsername, Value: state.RobotUser},
		{Key: envKeyQuayPassword, Value: state.RobotToken},
	})
}

// printRegistrySuccess outputs the registry result for the operator.
func printRegistrySuccess(env *config.Environment, state *provisioning.State) {
	fmt.Printf("\nRegistry ready!\n\n")
	fmt.Printf("  Organization: %s\n", env.Registry.Organization)
	fmt.Printf("  Robot:        %s\n", state.RobotUser)
	fmt.Printf("  Repositories: %d\n", len(env.Git.Repositories))
	fmt.Printf("\nRobot credentials saved to: %s\n", naming.RegistryCredentialsFile)
	fmt.Printf("Source them with:\n")
	fmt.Printf("  source %s\n", naming.RegistryCredentialsFile)
}
