package handlers

import (
	"context"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/provisioning"
	"github.com/demoplatform/democtl/internal/util/naming"
)

// Cluster installs the named cluster, or every configured cluster when
// name is empty, by rendering install-config.yaml and driving the
// external installer.
//
// An unknown cluster name fails before anything is rendered or invoked.
func Cluster(ctx context.Context, configPath, name string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}

	if name != "" {
		if _, err := env.ClusterPreset(name); err != nil {
			return err
		}
	}

	if err := checkPrerequisites(); err != nil {
		return err
	}
	values, err := requireEnv(config.EnvPullSecret, config.EnvSSHPublicKey)
	if err != nil {
		return err
	}

	pctx := provisioning.NewContext(ctx, env, provisioning.Clients{Installer: newInstallerRunner()}, log.Logger())
	pctx.State.PullSecret = values[config.EnvPullSecret]
	pctx.State.SSHPublicKey = values[config.EnvSSHPublicKey]

	var names []string
	if name != "" {
		names = []string{name}
	}
	if err := provisioning.NewPipeline(&provisioning.ClusterPhase{Names: names}).Run(pctx); err != nil {
		return err
	}

	printClusterSuccess(env, pctx.State)
	return nil
}

// printClusterSuccess reports where the installer artifacts landed.
func printClusterSuccess(env *config.Environment, state *provisioning.State) {
	fmt.Printf("\nInstall complete!\n")
	for _, cluster := range state.InstalledClusters {
		dir := naming.ClusterDir(env.ArtifactsDir, cluster)
		fmt.Printf("\n%s:\n", cluster)
		fmt.Printf("  kubeconfig:     %s\n", naming.KubeconfigPath(dir))
		fmt.Printf("  admin password: %s\n", naming.KubeadminPasswordPath(dir))
		fmt.Printf("  metadata:       %s\n", naming.MetadataPath(dir))
	}
	fmt.Printf("\nAccess a cluster with:\n")
	fmt.Printf("  export KUBECONFIG=%s\n", naming.KubeconfigPath(naming.ClusterDir(env.ArtifactsDir, "<cluster>")))
	fmt.Printf("  oc get nodes\n")
}
