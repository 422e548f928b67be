package config

import "fmt"

// Preset is a cluster sizing preset.
type Preset string

const (
	// PresetSNO is a single-node cluster: one control plane, no workers.
	// Best for: demo hubs, development sandboxes.
	PresetSNO Preset = "sno"

	// PresetHA is a highly available cluster: three control planes and
	// three workers.
	PresetHA Preset = "ha"
)

// ValidPresets returns all valid presets.
func ValidPresets() []Preset {
	return []Preset{PresetSNO, PresetHA}
}

// IsValid returns true if the preset is valid.
func (p Preset) IsValid() bool {
	switch p {
	case PresetSNO, PresetHA:
		return true
	default:
		return false
	}
}

// String returns a human-readable description of the preset.
func (p Preset) String() string {
	switch p {
	case PresetSNO:
		return "sno (1 control plane, 0 workers)"
	case PresetHA:
		return "ha (3 control planes, 3 workers)"
	default:
		return string(p)
	}
}

// Topology holds the node counts and instance types for a preset.
type Topology struct {
	ControlPlaneReplicas     int
	ControlPlaneInstanceType string
	WorkerReplicas           int
	WorkerInstanceType       string
}

// Topology returns the sizing data for this preset. The table is fixed at
// compile time and never mutated at runtime.
func (p Preset) Topology() Topology {
	switch p {
	case PresetSNO:
		// A single node carries the control plane and all workloads,
		// so it gets the largest instance type.
		return Topology{
			ControlPlaneReplicas:     1,
			ControlPlaneInstanceType: "m5.2xlarge",
			WorkerReplicas:           0,
			WorkerInstanceType:       "m5.large",
		}
	case PresetHA:
		return Topology{
			ControlPlaneReplicas:     3,
			ControlPlaneInstanceType: "m5.xlarge",
			WorkerReplicas:           3,
			WorkerInstanceType:       "m5.large",
		}
	default:
		return Topology{}
	}
}

// ControlPlaneCount returns the number of control plane nodes.
func (p Preset) ControlPlaneCount() int {
	return p.Topology().ControlPlaneReplicas
}

// WorkerCount returns the number of worker nodes.
func (p Preset) WorkerCount() int {
	return p.Topology().WorkerReplicas
}

// Describe returns a one-line sizing summary, e.g. "1 x m5.2xlarge control
// plane, 0 workers".
func (p Preset) Describe() string {
	t := p.Topology()
	if t.WorkerReplicas == 0 {
		return fmt.Sprintf("%d x %s control plane, 0 workers", t.ControlPlaneReplicas, t.ControlPlaneInstanceType)
	}
	return fmt.Sprintf("%d x %s control plane, %d x %s workers",
		t.ControlPlaneReplicas, t.ControlPlaneInstanceType, t.WorkerReplicas, t.WorkerInstanceType)
}
