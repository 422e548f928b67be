package provisioning

import (
	"fmt"
)

// SourceReposPhase creates the source repositories under the git
// organization. Existing repositories are left untouched.
type SourceReposPhase struct{}

// Name implements Phase.
func (p *SourceReposPhase) Name() string { return "source-repositories" }

// Provision implements Phase.
func (p *SourceReposPhase) Provision(ctx *Context) error {
	git := ctx.Environment.Git

	for _, repo := range git.Repositories {
		if err := ctx.Clients.Git.EnsureRepository(ctx, git.Organization, repo); err != nil {
			return fmt.Errorf("repository %s: %w", repo, err)
		}
	}

	ctx.Log.Info("source repositories ready", "organization", git.Organization, "repositories", len(git.Repositories))
	return nil
}
