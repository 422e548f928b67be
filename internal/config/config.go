// Package config defines the environment description for a demo platform
// sandbox and the static cluster sizing presets rendered into installer
// configuration.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Environment variable names consumed by democtl. Secrets are never read
// from the configuration file.
const (
	// EnvSandboxID overrides the sandbox_id config field.
	EnvSandboxID = "SANDBOX_ID"
	// EnvConfig overrides the default config file location.
	EnvConfig = "DEMOCTL_CONFIG"
	// EnvPullSecret holds the image pull secret embedded into installer config.
	EnvPullSecret = "PULL_SECRET"
	// EnvSSHPublicKey holds the SSH public key embedded into installer config.
	EnvSSHPublicKey = "SSH_PUBLIC_KEY"
	// EnvQuayToken holds the registry API bearer token.
	EnvQuayToken = "QUAY_TOKEN"
	// EnvGitHubToken holds the source-control API token.
	EnvGitHubToken = "GITHUB_TOKEN"
	// EnvKubeconfig overrides the kubeconfig used for in-cluster steps.
	EnvKubeconfig = "KUBECONFIG"
)

// domainRegex is compiled once at package init for domain validation.
var domainRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// Environment describes one demo platform sandbox: the DNS naming inputs,
// the clusters to install, and the registry, source-control, and secret
// targets. Loaded once per run; never mutated afterwards.
type Environment struct {
	// SandboxID is the opaque token parameterizing all generated names.
	// Supplied via config file or the SANDBOX_ID environment variable.
	// Only presence is validated.
	SandboxID string `yaml:"sandbox_id"`

	// TopDomain is the apex under which sandbox zones live.
	TopDomain string `yaml:"top_domain,omitempty"`

	// Region is the AWS region for all cloud resources.
	Region string `yaml:"region,omitempty"`

	// Clusters maps cluster names to their sizing preset.
	Clusters map[string]Preset `yaml:"clusters,omitempty"`

	// Registry configures the container registry organization.
	Registry RegistrySpec `yaml:"registry,omitempty"`

	// Git configures the source-control organization and repositories.
	Git GitSpec `yaml:"git,omitempty"`

	// Secrets configures secret names and the in-cluster CI binding.
	Secrets SecretsSpec `yaml:"secrets,omitempty"`

	// ArtifactsDir is the directory holding per-cluster installer artifacts.
	ArtifactsDir string `yaml:"artifacts_dir,omitempty"`
}

// RegistrySpec configures the container registry organization setup.
type RegistrySpec struct {
	// APIURL is the registry API base URL.
	APIURL string `yaml:"api_url,omitempty"`

	// Organization is the registry organization to create.
	Organization string `yaml:"organization"`

	// Email is the contact address attached to the organization.
	Email string `yaml:"email,omitempty"`

	// Robot is the short name of the automation robot account.
	Robot string `yaml:"robot,omitempty"`
}

// GitSpec configures the source-control organization and repository set.
type GitSpec struct {
	// APIURL is the source-control API base URL.
	APIURL string `yaml:"api_url,omitempty"`

	// Organization is the source-control organization owning the repositories.
	Organization string `yaml:"organization"`

	// Repositories is the list of repositories to create and hook up.
	Repositories []string `yaml:"repositories,omitempty"`
}

// SecretsSpec configures secret manager names and the cluster-side binding.
type SecretsSpec struct {
	// Prefix namespaces all secret names in the secret manager.
	Prefix string `yaml:"prefix,omitempty"`

	// Cluster names the cluster whose CI namespace consumes the secrets.
	Cluster string `yaml:"cluster,omitempty"`

	// Namespace is the in-cluster namespace of the CI service account.
	Namespace string `yaml:"namespace,omitempty"`

	// ServiceAccount is the service account that assumes the IAM role.
	ServiceAccount string `yaml:"service_account,omitempty"`

	// WebhookRoute is the name of the route exposing the CI event listener.
	WebhookRoute string `yaml:"webhook_route,omitempty"`
}

// Defaults for every optional Environment field.
const (
	DefaultTopDomain      = "opentlc.com"
	DefaultRegion         = "us-east-2"
	DefaultRegistryAPIURL = "https://quay.io"
	DefaultRobot          = "automation"
	DefaultGitAPIURL      = "https://api.github.com"
	DefaultSecretsPrefix  = "demo"
	DefaultSecretsCluster = "hub"
	DefaultNamespace      = "demo-ci"
	DefaultServiceAccount = "pipeline"
	DefaultWebhookRoute   = "webhook-listener"
	DefaultArtifactsDir   = "clusters"
)

// DefaultClusters returns the default cluster set: a single-node hub and dev,
// and a highly available prod.
func DefaultClusters() map[string]Preset {
	return map[string]Preset{
		"hub":  PresetSNO,
		"dev":  PresetSNO,
		"prod": PresetHA,
	}
}

// DefaultRepositories returns the default repository list.
func DefaultRepositories() []string {
	return []string{"portal-backend", "portal-frontend", "portal-gitops"}
}

// ApplyDefaults fills every unset optional field. Called by Load; exposed for
// tests and for building environments programmatically.
func (e *Environment) ApplyDefaults() {
	if e.TopDomain == "" {
		e.TopDomain = DefaultTopDomain
	}
	if e.Region == "" {
		e.Region = DefaultRegion
	}
	if len(e.Clusters) == 0 {
		e.Clusters = DefaultClusters()
	}
	if e.Registry.APIURL == "" {
		e.Registry.APIURL = DefaultRegistryAPIURL
	}
	if e.Registry.Robot == "" {
		e.Registry.Robot = DefaultRobot
	}
	if e.Git.APIURL == "" {
		e.Git.APIURL = DefaultGitAPIURL
	}
	if len(e.Git.Repositories) == 0 {
		e.Git.Repositories = DefaultRepositories()
	}
	if e.Secrets.Prefix == "" {
		e.Secrets.Prefix = DefaultSecretsPrefix
	}
	if e.Secrets.Cluster == "" {
		e.Secrets.Cluster = DefaultSecretsCluster
	}
	if e.Secrets.Namespace == "" {
		e.Secrets.Namespace = DefaultNamespace
	}
	if e.Secrets.ServiceAccount == "" {
		e.Secrets.ServiceAccount = DefaultServiceAccount
	}
	if e.Secrets.WebhookRoute == "" {
		e.Secrets.WebhookRoute = DefaultWebhookRoute
	}
	if e.ArtifactsDir == "" {
		e.ArtifactsDir = DefaultArtifactsDir
	}
}

// Validate validates the environment and returns an error if invalid.
func (e *Environment) Validate() error {
	var errs []error

	if e.SandboxID == "" {
		errs = append(errs, fmt.Errorf("sandbox_id is required (or set %s)", EnvSandboxID))
	}

	if e.TopDomain != "" && !isValidDomain(e.TopDomain) {
		errs = append(errs, errors.New("top_domain must be a valid domain name"))
	}

	if len(e.Clusters) == 0 {
		errs = append(errs, errors.New("at least one cluster must be configured"))
	}
	for name, preset := range e.Clusters {
		if name == "" {
			errs = append(errs, errors.New("cluster names must not be empty"))
			continue
		}
		if !preset.IsValid() {
			errs = append(errs, fmt.Errorf("cluster %q: preset must be one of: %v", name, ValidPresets()))
		}
	}

	if e.Secrets.Cluster != "" {
		if _, ok := e.Clusters[e.Secrets.Cluster]; !ok {
			errs = append(errs, fmt.Errorf("secrets.cluster %q is not a configured cluster", e.Secrets.Cluster))
		}
	}

	if e.Registry.Organization == "" {
		errs = append(errs, errors.New("registry.organization is required"))
	}
	if e.Git.Organization == "" {
		errs = append(errs, errors.New("git.organization is required"))
	}

	return errors.Join(errs...)
}

// ParentZone returns the pre-existing sandbox zone name, e.g.
// "sandbox1234.opentlc.com".
func (e *Environment) ParentZone() string {
	return "sandbox" + e.SandboxID + "." + e.TopDomain
}

// ChildZone returns the delegated cluster zone name, e.g.
// "ocp.sandbox1234.opentlc.com".
func (e *Environment) ChildZone() string {
	return "ocp." + e.ParentZone()
}

// ClusterDomain returns the full domain of a named cluster, e.g.
// "hub.ocp.sandbox1234.opentlc.com".
func (e *Environment) ClusterDomain(cluster string) string {
	return cluster + "." + e.ChildZone()
}

// ClusterPreset returns the sizing preset for a named cluster.
// Unknown names fail before any remote call is made.
func (e *Environment) ClusterPreset(name string) (Preset, error) {
	preset, ok := e.Clusters[name]
	if !ok {
		return "", fmt.Errorf("unknown cluster %q: configured clusters are %v", name, e.ClusterNames())
	}
	return preset, nil
}

// ClusterNames returns the configured cluster names in sorted order.
func (e *Environment) ClusterNames() []string {
	names := make([]string, 0, len(e.Clusters))
	for name := range e.Clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isValidDomain checks if a string is a valid domain name.
func isValidDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	return domainRegex.MatchString(domain)
}
