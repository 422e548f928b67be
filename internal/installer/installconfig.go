// Package installer renders the installer configuration for a cluster and
// drives the installer binary.
package installer

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/ssh"
	"sigs.k8s.io/yaml"

	"github.com/demoplatform/democtl/internal/config"
)

// InstallConfig is the subset of the installer's install-config.yaml schema
// this tool renders.
type InstallConfig struct {
	APIVersion   string        `json:"apiVersion"`
	BaseDomain   string        `json:"baseDomain"`
	Metadata     Metadata      `json:"metadata"`
	ControlPlane MachinePool   `json:"controlPlane"`
	Compute      []MachinePool `json:"compute"`
	Networking   Networking    `json:"networking"`
	Platform     Platform      `json:"platform"`
	PullSecret   string        `json:"pullSecret"`
	SSHKey       string        `json:"sshKey"`
}

// Metadata names the cluster.
type Metadata struct {
	Name string `json:"name"`
}

// MachinePool sizes a control-plane or compute pool.
type MachinePool struct {
	Name     string       `json:"name"`
	Replicas int          `json:"replicas"`
	Platform PoolPlatform `json:"platform"`
}

// PoolPlatform carries the per-pool platform settings.
type PoolPlatform struct {
	AWS AWSMachinePool `json:"aws"`
}

// AWSMachinePool selects the EC2 instance type for a pool.
type AWSMachinePool struct {
	Type string `json:"type"`
}

// Networking carries the cluster network layout.
type Networking struct {
	NetworkType    string           `json:"networkType"`
	ClusterNetwork []ClusterNetwork `json:"clusterNetwork"`
	MachineNetwork []MachineNetwork `json:"machineNetwork"`
	ServiceNetwork []string         `json:"serviceNetwork"`
}

// ClusterNetwork is a pod network block.
type ClusterNetwork struct {
	CIDR       string `json:"cidr"`
	HostPrefix int    `json:"hostPrefix"`
}

// MachineNetwork is a node network block.
type MachineNetwork struct {
	CIDR string `json:"cidr"`
}

// Platform carries the cluster-wide platform settings.
type Platform struct {
	AWS AWSPlatform `json:"aws"`
}

// AWSPlatform selects the region the cluster installs into.
type AWSPlatform struct {
	Region string `json:"region"`
}

// RenderInstallConfig builds the installer configuration for a named
// cluster: sizing from its preset, base domain from the delegated child
// zone, pull secret and SSH key embedded verbatim.
func RenderInstallConfig(env *config.Environment, cluster, pullSecret, sshKey string) ([]byte, error) {
	preset, err := env.ClusterPreset(cluster)
	if err != nil {
		return nil, err
	}
	topology := preset.Topology()

	if err := validatePullSecret(pullSecret); err != nil {
		return nil, err
	}
	if err := validateSSHKey(sshKey); err != nil {
		return nil, err
	}

	cfg := InstallConfig{
		APIVersion: "v1",
		BaseDomain: env.ChildZone(),
		Metadata:   Metadata{Name: cluster},
		ControlPlane: MachinePool{
			Name:     "master",
			Replicas: topology.ControlPlaneReplicas,
			Platform: PoolPlatform{AWS: AWSMachinePool{Type: topology.ControlPlaneInstanceType}},
		},
		Compute: []MachinePool{
			{
				Name:     "worker",
				Replicas: topology.WorkerReplicas,
				Platform: PoolPlatform{AWS: AWSMachinePool{Type: topology.WorkerInstanceType}},
			},
		},
		Networking: Networking{
			NetworkType:    "OVNKubernetes",
			ClusterNetwork: []ClusterNetwork{{CIDR: "10.128.0.0/14", HostPrefix: 23}},
			MachineNetwork: []MachineNetwork{{CIDR: "10.0.0.0/16"}},
			ServiceNetwork: []string{"172.30.0.0/16"},
		},
		Platform:   Platform{AWS: AWSPlatform{Region: env.Region}},
		PullSecret: pullSecret,
		SSHKey:     sshKey,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal install config: %w", err)
	}
	return data, nil
}

// validatePullSecret checks the pull secret is the JSON auth document the
// installer expects, without touching its contents.
func validatePullSecret(pullSecret string) error {
	var parsed struct {
		Auths map[string]json.RawMessage `json:"auths"`
	}
	if err := json.Unmarshal([]byte(pullSecret), &parsed); err != nil {
		return fmt.Errorf("pull secret is not valid JSON: %w", err)
	}
	if len(parsed.Auths) == 0 {
		return fmt.Errorf("pull secret has no registry auths")
	}
	return nil
}

// validateSSHKey checks the key parses in authorized_keys format.
func validateSSHKey(sshKey string) error {
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(sshKey)); err != nil {
		return fmt.Errorf("invalid SSH public key: %w", err)
	}
	return nil
}
