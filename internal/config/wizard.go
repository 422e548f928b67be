package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	SandboxID    string
	TopDomain    string
	Region       string
	RegistryOrg  string
	GitOrg       string
	ProdClusters bool
}

// RunWizard runs the interactive environment configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		// Defaults
		TopDomain:    DefaultTopDomain,
		Region:       DefaultRegion,
		ProdClusters: true,
	}

	form := huh.NewForm(
		// Sandbox identity
		huh.NewGroup(
			huh.NewInput().
				Title("Sandbox ID").
				Description("The sandbox identifier, e.g. 1234 for sandbox1234."+DefaultTopDomain).
				Placeholder("1234").
				Value(&result.SandboxID).
				Validate(validateSandboxID),

			huh.NewInput().
				Title("Top-level domain").
				Description("The apex domain under which sandbox zones live").
				Value(&result.TopDomain).
				Validate(validateTopDomain),
		),

		// Region selection
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("AWS region").
				Description("Region for hosted zones, clusters, secrets, and IAM").
				Options(
					huh.NewOption("us-east-2 (Ohio)", "us-east-2"),
					huh.NewOption("us-east-1 (N. Virginia)", "us-east-1"),
					huh.NewOption("us-west-2 (Oregon)", "us-west-2"),
					huh.NewOption("eu-central-1 (Frankfurt)", "eu-central-1"),
					huh.NewOption("eu-west-1 (Ireland)", "eu-west-1"),
					huh.NewOption("ap-southeast-2 (Sydney)", "ap-southeast-2"),
				).
				Value(&result.Region),
		),

		// External organizations
		huh.NewGroup(
			huh.NewInput().
				Title("Registry organization").
				Description("Quay organization for platform images").
				Placeholder("demo-sandbox1234").
				Value(&result.RegistryOrg).
				Validate(validateOrgName),

			huh.NewInput().
				Title("Git organization").
				Description("GitHub organization owning the portal repositories").
				Placeholder("demo-platform").
				Value(&result.GitOrg).
				Validate(validateOrgName),
		),

		// Cluster set
		huh.NewGroup(
			huh.NewConfirm().
				Title("Include a prod cluster?").
				Description("hub and dev are single-node; prod adds a 3+3 HA cluster").
				Value(&result.ProdClusters),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToEnvironment converts the wizard result to a fully defaulted Environment.
func (r *WizardResult) ToEnvironment() *Environment {
	env := &Environment{
		SandboxID: r.SandboxID,
		TopDomain: r.TopDomain,
		Region:    r.Region,
		Clusters: map[string]Preset{
			"hub": PresetSNO,
			"dev": PresetSNO,
		},
		Registry: RegistrySpec{
			Organization: r.RegistryOrg,
			Email:        "admin@" + r.TopDomain,
		},
		Git: GitSpec{
			Organization: r.GitOrg,
		},
	}

	if r.ProdClusters {
		env.Clusters["prod"] = PresetHA
	}

	env.ApplyDefaults()
	return env
}

// DefaultEnvironment returns the non-interactive environment used by
// `democtl init --defaults`. The caller still supplies the sandbox id and
// organizations.
func DefaultEnvironment(sandboxID, registryOrg, gitOrg string) *Environment {
	env := &Environment{
		SandboxID: sandboxID,
		Registry:  RegistrySpec{Organization: registryOrg},
		Git:       GitSpec{Organization: gitOrg},
	}
	env.ApplyDefaults()
	env.Registry.Email = "admin@" + env.TopDomain
	return env
}

func validateSandboxID(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("sandbox id is required")
	}
	return nil
}

func validateTopDomain(s string) error {
	if !isValidDomain(s) {
		return fmt.Errorf("must be a valid domain name")
	}
	return nil
}

func validateOrgName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("organization name is required")
	}
	if strings.ContainsAny(s, " /") {
		return fmt.Errorf("organization name must not contain spaces or slashes")
	}
	return nil
}
