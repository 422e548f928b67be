package naming

import (
	"fmt"
	"path/filepath"
)

// Naming functions for sandbox resources.
// All remote resources and local artifact files follow consistent naming
// patterns so re-runs find what earlier runs created.

// RobotFullName returns the registry-issued robot account name, e.g.
// "demo-sandbox1234+automation".
func RobotFullName(org, shortname string) string {
	return fmt.Sprintf("%s+%s", org, shortname)
}

// PortalSecret returns the secret manager name for the portal bundle.
func PortalSecret(prefix string) string {
	return prefix + "/portal-secrets"
}

// CISecret returns the secret manager name for the CI bundle.
func CISecret(prefix string) string {
	return prefix + "/ci-secrets"
}

// PipelineRole returns the IAM role name assumed by the CI service account.
func PipelineRole(prefix string) string {
	return prefix + "-pipeline"
}

// SecretsPolicy returns the IAM policy name granting secret read access.
func SecretsPolicy(prefix string) string {
	return prefix + "-secrets-read"
}

// RegistryCredentialsFile is the env file holding issued robot credentials.
const RegistryCredentialsFile = "quay-credentials.env"

// SecretsFile is the env file recording provisioned secret ARNs.
const SecretsFile = "secrets.env"

// InstallConfigFile is the installer configuration consumed by the installer.
const InstallConfigFile = "install-config.yaml"

// InstallConfigBackupFile survives the installer, which consumes the original.
const InstallConfigBackupFile = "install-config.backup.yaml"

// ClusterDir returns the artifact directory for a named cluster.
func ClusterDir(artifactsDir, cluster string) string {
	return filepath.Join(artifactsDir, cluster)
}

// KubeconfigPath returns the path of a cluster's kubeconfig inside its
// artifact directory.
func KubeconfigPath(clusterDir string) string {
	return filepath.Join(clusterDir, "auth", "kubeconfig")
}

// KubeadminPasswordPath returns the path of a cluster's admin password file.
func KubeadminPasswordPath(clusterDir string) string {
	return filepath.Join(clusterDir, "auth", "kubeadmin-password")
}

// MetadataPath returns the path of a cluster's installer metadata file.
func MetadataPath(clusterDir string) string {
	return filepath.Join(clusterDir, "metadata.json")
}

// InstallConfigPath returns the path of the rendered installer config.
func InstallConfigPath(clusterDir string) string {
	return filepath.Join(clusterDir, InstallConfigFile)
}

// InstallConfigBackupPath returns the path of the installer config backup.
func InstallConfigBackupPath(clusterDir string) string {
	return filepath.Join(clusterDir, InstallConfigBackupFile)
}
