package handlers

import (
	"context"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/provisioning"
)

// Repos creates the source repositories under the git organization.
// Existing repositories are left untouched.
func Repos(ctx context.Context, configPath string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}
	values, err := requireEnv(config.EnvGitHubToken)
	if err != nil {
		return err
	}

	clients := provisioning.Clients{Git: newGitClient(env.Git.APIURL, values[config.EnvGitHubToken])}
	pctx := provisioning.NewContext(ctx, env, clients, log.Logger())
	if err := provisioning.NewPipeline(&provisioning.SourceReposPhase{}).Run(pctx); err != nil {
		return err
	}

	fmt.Printf("\nSource repositories ready!\n\n")
	for _, repo := range env.Git.Repositories {
		fmt.Printf("  %s/%s\n", env.Git.Organization, repo)
	}
	return nil
}
