package provisioning

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/util/naming"
)

// Clients bundles the external service clients the phases draw on.
// Handlers wire the real implementations; tests substitute fakes.
type Clients struct {
	DNS       DNSClient
	Registry  RegistryClient
	Git       GitClient
	Secrets   SecretsClient
	IAM       IAMClient
	Installer InstallerRunner

	// ClusterDial connects to the cluster API behind the given kubeconfig.
	// It is a constructor rather than a ready client because the target
	// cluster may not exist until the cluster phase has run.
	ClusterDial func(kubeconfigPath string) (ClusterClient, error)
}

// Context carries everything a phase needs: cancellation, the environment
// configuration, the shared mutable state and the service clients.
type Context struct {
	context.Context

	Environment *config.Environment
	State       *State
	Clients     Clients
	Log         logr.Logger
}

// NewContext assembles a provisioning context around the given environment
// with a fresh state.
func NewContext(ctx context.Context, env *config.Environment, clients Clients, log logr.Logger) *Context {
	return &Context{
		Context:     ctx,
		Environment: env,
		State:       NewState(),
		Clients:     clients,
		Log:         log,
	}
}

// ClusterClient dials the API of the cluster consuming the provisioned
// secrets, preferring an operator-supplied kubeconfig over the installer
// artifact bundle.
func (c *Context) ClusterClient() (ClusterClient, error) {
	path := c.State.KubeconfigPath
	if path == "" {
		dir := naming.ClusterDir(c.Environment.ArtifactsDir, c.Environment.Secrets.Cluster)
		path = naming.KubeconfigPath(dir)
	}
	return c.Clients.ClusterDial(path)
}
