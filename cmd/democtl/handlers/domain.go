package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/log"
	"github.com/demoplatform/democtl/internal/provisioning"
)

// delegationSummary is the JSON shape written by --output-file.
type delegationSummary struct {
	ParentZoneID string   `json:"parentZoneID"`
	ChildZoneID  string   `json:"childZoneID"`
	ChildZone    string   `json:"childZone"`
	NameServers  []string `json:"nameServers"`
}

// Domain delegates the cluster DNS zone from the sandbox parent zone.
//
// The parent zone must already exist; the child zone is created when
// absent and the NS delegation record in the parent is upserted with the
// child's authoritative name servers.
func Domain(ctx context.Context, configPath, outputFile string) error {
	env, err := resolveEnvironment(configPath)
	if err != nil {
		return err
	}

	awsCfg, _, err := awsClients(ctx, env)
	if err != nil {
		return err
	}

	pctx := provisioning.NewContext(ctx, env, provisioning.Clients{DNS: newDNSClient(awsCfg)}, log.Logger())
	if err := provisioning.NewPipeline(&provisioning.DelegationPhase{}).Run(pctx); err != nil {
		return err
	}

	if outputFile != "" {
		if err := writeDelegationSummary(outputFile, env, pctx.State); err != nil {
			return err
		}
	}

	printDomainSuccess(env, pctx.State)
	return nil
}

// writeDelegationSummary records the delegation result as JSON.
func writeDelegationSummary(path string, env *config.Environment, state *provisioning.State) error {
	summary := delegationSummary{
		ParentZoneID: state.ParentZoneID,
		ChildZoneID:  state.ChildZoneID,
		ChildZone:    env.ChildZone(),
		NameServers:  state.NameServers,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode delegation summary: %w", err)
	}
	if err := writeFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// printDomainSuccess outputs the delegation result for the operator.
func printDomainSuccess(env *config.Environment, state *provisioning.State) {
	fmt.Printf("\nDelegation complete!\n\n")
	fmt.Printf("  Parent zone: %s (%s)\n", env.ParentZone(), state.ParentZoneID)
	fmt.Printf("  Child zone:  %s (%s)\n", env.ChildZone(), state.ChildZoneID)
	fmt.Printf("  Name servers:\n")
	for _, ns := range state.NameServers {
		fmt.Printf("    %s\n", ns)
	}
}
