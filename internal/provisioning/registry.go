package provisioning

import (
	"fmt"
)

// repositoryDescription is attached to registry repositories at creation.
const repositoryDescription = "Built by the demo platform CI"

// RegistryPhase provisions the registry organization, its automation robot
// and one image repository per source repository, granting the robot write
// access to each.
type RegistryPhase struct{}

// Name implements Phase.
func (p *RegistryPhase) Name() string { return "registry-setup" }

// Provision implements Phase. The first repository failure aborts the
// phase; repositories already created stay in place and a re-run picks up
// where it stopped.
func (p *RegistryPhase) Provision(ctx *Context) error {
	reg := ctx.Environment.Registry

	if err := ctx.Clients.Registry.EnsureOrganization(ctx, reg.Organization, reg.Email); err != nil {
		return fmt.Errorf("organization %s: %w", reg.Organization, err)
	}

	robot, err := ctx.Clients.Registry.EnsureRobot(ctx, reg.Organization, reg.Robot)
	if err != nil {
		return fmt.Errorf("robot %s: %w", reg.Robot, err)
	}

	for _, repo := range ctx.Environment.Git.Repositories {
		if err := ctx.Clients.Registry.EnsureRepository(ctx, reg.Organization, repo, repositoryDescription); err != nil {
			return fmt.Errorf("repository %s: %w", repo, err)
		}
		if err := ctx.Clients.Registry.SetRepositoryWritePermission(ctx, reg.Organization, repo, robot.Name); err != nil {
			return fmt.Errorf("repository %s permissions: %w", repo, err)
		}
	}

	ctx.State.RobotUser = robot.Name
	ctx.State.RobotToken = robot.Token

	ctx.Log.Info("registry ready", "organization", reg.Organization, "robot", robot.Name, "repositories", len(ctx.Environment.Git.Repositories))
	return nil
}
