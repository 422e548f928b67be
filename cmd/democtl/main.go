// Package main is the entry point for the democtl CLI.
//
// democtl provisions the cloud infrastructure and SaaS configuration for a
// demo platform sandbox: Route 53 DNS delegation, OpenShift clusters
// installed through openshift-install, a Quay container-registry
// organization, GitHub source repositories, AWS Secrets Manager bundles
// bound to the cluster's workload identity, and CI webhook registrations.
//
// Commands: init, domain, cluster, registry, repos, secrets, webhooks, up.
//
// For detailed usage information, run:
//
//	democtl --help
package main

import (
	"fmt"
	"os"

	"github.com/demoplatform/democtl/cmd/democtl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
