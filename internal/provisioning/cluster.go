package provisioning

import (
	"fmt"

	"github.com/demoplatform/democtl/internal/installer"
	"github.com/demoplatform/democtl/internal/util/naming"
)

// ClusterPhase renders install configurations and drives the external
// installer for the selected clusters.
type ClusterPhase struct {
	// Names selects which configured clusters to install. Empty means all
	// of them, in sorted order.
	Names []string

	// SkipInstalled passes over clusters whose artifact directory already
	// holds credentials instead of failing. The up pipeline sets this so
	// re-runs converge; the standalone command wants the refusal.
	SkipInstalled bool
}

// Name implements Phase.
func (p *ClusterPhase) Name() string { return "cluster-install" }

// Provision implements Phase.
func (p *ClusterPhase) Provision(ctx *Context) error {
	names := p.Names
	if len(names) == 0 {
		names = ctx.Environment.ClusterNames()
	}

	for _, cluster := range names {
		if err := p.install(ctx, cluster); err != nil {
			return fmt.Errorf("cluster %s: %w", cluster, err)
		}
	}
	return nil
}

func (p *ClusterPhase) install(ctx *Context, cluster string) error {
	dir := naming.ClusterDir(ctx.Environment.ArtifactsDir, cluster)

	if installer.Installed(dir) {
		if !p.SkipInstalled {
			return fmt.Errorf("%s already holds cluster credentials, remove the directory to reinstall", dir)
		}
		ctx.Log.Info("cluster already installed, skipping", "cluster", cluster, "dir", dir)
		ctx.State.InstalledClusters = append(ctx.State.InstalledClusters, cluster)
		return nil
	}

	rendered, err := installer.RenderInstallConfig(ctx.Environment, cluster, ctx.State.PullSecret, ctx.State.SSHPublicKey)
	if err != nil {
		return err
	}
	if err := installer.PrepareAssets(dir, rendered); err != nil {
		return err
	}

	ctx.Log.Info("running installer", "cluster", cluster, "dir", dir)
	if err := ctx.Clients.Installer.CreateCluster(ctx, dir); err != nil {
		return err
	}

	ctx.State.InstalledClusters = append(ctx.State.InstalledClusters, cluster)
	ctx.Log.Info("cluster installed", "cluster", cluster, "kubeconfig", naming.KubeconfigPath(dir))
	return nil
}
