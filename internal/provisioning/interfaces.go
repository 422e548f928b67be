package provisioning

import (
	"context"

	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/demoplatform/democtl/internal/platform/quay"
	"github.com/demoplatform/democtl/internal/platform/route53"
)

// Phase is a single provisioning step. Phases read and extend the shared
// State through the Context and must be safe to run repeatedly.
type Phase interface {
	// Name identifies the phase in logs and error messages.
	Name() string

	// Provision performs the phase's work.
	Provision(ctx *Context) error
}

// DNSClient manages hosted zones and delegation records. Satisfied by the
// route53 client.
type DNSClient interface {
	LookupZone(ctx context.Context, name string) (*route53.Zone, error)
	EnsureZone(ctx context.Context, name string) (*route53.Zone, error)
	UpsertRecord(ctx context.Context, zoneID, name string, rtype route53types.RRType, values []string, ttl int64) error
}

// RegistryClient manages the container registry organization, robot
// account and repositories. Satisfied by the quay client.
type RegistryClient interface {
	EnsureOrganization(ctx context.Context, name, email string) error
	EnsureRobot(ctx context.Context, org, shortname string) (*quay.Robot, error)
	EnsureRepository(ctx context.Context, org, name, description string) error
	SetRepositoryWritePermission(ctx context.Context, org, repo, robotName string) error
}

// GitClient manages source repositories and their webhooks. Satisfied by
// the github client.
type GitClient interface {
	EnsureRepository(ctx context.Context, org, name string) error
	EnsureWebhook(ctx context.Context, org, repo, url, secret string) error
}

// SecretsClient stores and retrieves secret bundles. Satisfied by the
// secretsmanager client.
type SecretsClient interface {
	UpsertSecret(ctx context.Context, name string, values map[string]string) (string, error)
	SecretValues(ctx context.Context, name string) (map[string]string, error)
}

// IAMClient manages the workload identity policy and role. Satisfied by
// the iam client.
type IAMClient interface {
	OIDCProviderARN(ctx context.Context, issuer string) (string, error)
	EnsurePolicy(ctx context.Context, name string, secretARNs []string) (string, error)
	EnsureRole(ctx context.Context, name, providerARN, issuer, namespace, serviceAccount string) (string, error)
	AttachRolePolicy(ctx context.Context, roleName, policyARN string) error
}

// ClusterClient talks to a provisioned cluster's API. Satisfied by the
// k8s client.
type ClusterClient interface {
	EnsureNamespace(ctx context.Context, name string) error
	EnsureServiceAccount(ctx context.Context, namespace, name string) error
	AnnotateServiceAccount(ctx context.Context, namespace, name, key, value string) error
	RouteHost(ctx context.Context, namespace, name string) (string, error)
	ServiceAccountIssuer(ctx context.Context) (string, error)
}

// InstallerRunner drives the external cluster installer. Satisfied by the
// installer runner.
type InstallerRunner interface {
	CreateCluster(ctx context.Context, dir string) error
}
