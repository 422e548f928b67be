package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/demoplatform/democtl/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// isInteractiveTTY reports whether stdout is attached to a terminal.
	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	// runWizard runs the interactive environment wizard.
	runWizard = config.RunWizard

	// saveEnvironment writes the environment to a file.
	saveEnvironment = config.Save
)

// Init creates the environment configuration file, interactively through
// the wizard or non-interactively with --defaults.
func Init(ctx context.Context, outputPath string, useDefaults bool, sandboxID, registryOrg, gitOrg string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	var env *config.Environment
	if useDefaults {
		if sandboxID == "" || registryOrg == "" || gitOrg == "" {
			return errors.New("--defaults requires --sandbox-id, --registry-org and --git-org")
		}
		env = config.DefaultEnvironment(sandboxID, registryOrg, gitOrg)
	} else {
		if !isInteractiveTTY() {
			return errors.New("interactive wizard requires a terminal, use --defaults with --sandbox-id, --registry-org and --git-org")
		}
		printWelcome()

		result, err := runWizard(ctx)
		if err != nil {
			return err
		}
		env = result.ToEnvironment()
	}

	if err := env.Validate(); err != nil {
		return err
	}
	if err := saveEnvironment(env, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, env)
	return nil
}

// printWelcome prints the wizard welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("democtl - demo platform sandbox provisioner")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("This wizard describes your demo environment in a few questions.")
	fmt.Println("The generated file carries sensible defaults for everything else.")
	fmt.Println()
}

// printInitSuccess prints the summary and next steps.
func printInitSuccess(outputPath string, env *config.Environment) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Environment Summary")
	fmt.Println("-------------------")
	fmt.Printf("  Sandbox:        %s\n", env.ParentZone())
	fmt.Printf("  Cluster domain: %s\n", env.ChildZone())
	fmt.Printf("  Region:         %s\n", env.Region)
	fmt.Printf("  Clusters:       %s\n", strings.Join(env.ClusterNames(), ", "))
	fmt.Printf("  Registry org:   %s\n", env.Registry.Organization)
	fmt.Printf("  Git org:        %s\n", env.Git.Organization)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Export the required credentials:")
	fmt.Printf("     export %s=<installer pull secret>\n", config.EnvPullSecret)
	fmt.Printf("     export %s=<ssh public key>\n", config.EnvSSHPublicKey)
	fmt.Printf("     export %s=<quay bearer token>\n", config.EnvQuayToken)
	fmt.Printf("     export %s=<github token>\n", config.EnvGitHubToken)
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Provision the environment:")
	fmt.Println("     democtl up")
	fmt.Println()
}
