package handlers

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/platform/awsutil"
	"github.com/demoplatform/democtl/internal/platform/quay"
	"github.com/demoplatform/democtl/internal/platform/route53"
	"github.com/demoplatform/democtl/internal/platform/secretsmanager"
	"github.com/demoplatform/democtl/internal/provisioning"
	"github.com/demoplatform/democtl/internal/util/prerequisites"
)

const testPullSecret = `{"auths":{"quay.io":{"auth":"dGVzdDp0ZXN0","email":"demo@example.com"}}}`

func testSSHKey(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
}

// testEnvironment returns a valid environment with artifacts rooted in a
// temp directory.
func testEnvironment(t *testing.T) *config.Environment {
	t.Helper()
	env := &config.Environment{
		SandboxID: "1234",
		Registry:  config.RegistrySpec{Organization: "demo", Email: "demo@example.com"},
		Git:       config.GitSpec{Organization: "demo"},
	}
	env.ApplyDefaults()
	env.ArtifactsDir = t.TempDir()
	require.NoError(t, env.Validate())
	return env
}

// saveAndRestoreFactories saves the current factory functions and registers
// a cleanup function to restore them.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadEnvironment := loadEnvironment
	origFindConfigFile := findConfigFile
	origGetenv := getenv
	origNewAWSConfig := newAWSConfig
	origVerifyIdentity := verifyIdentity
	origNewDNSClient := newDNSClient
	origNewSecretsClient := newSecretsClient
	origNewIAMClient := newIAMClient
	origNewRegistryClient := newRegistryClient
	origNewGitClient := newGitClient
	origNewInstallerRunner := newInstallerRunner
	origDialCluster := dialCluster
	origCheckInstallerPrereqs := checkInstallerPrereqs
	origWriteFile := writeFile

	t.Cleanup(func() {
		loadEnvironment = origLoadEnvironment
		findConfigFile = origFindConfigFile
		getenv = origGetenv
		newAWSConfig = origNewAWSConfig
		verifyIdentity = origVerifyIdentity
		newDNSClient = origNewDNSClient
		newSecretsClient = origNewSecretsClient
		newIAMClient = origNewIAMClient
		newRegistryClient = origNewRegistryClient
		newGitClient = origNewGitClient
		newInstallerRunner = origNewInstallerRunner
		dialCluster = origDialCluster
		checkInstallerPrereqs = origCheckInstallerPrereqs
		writeFile = origWriteFile
	})
}

// mapGetenv returns a getenv replacement backed by the given map.
func mapGetenv(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

// mockDNS serves the zones it was seeded with and creates missing ones on
// EnsureZone.
type mockDNS struct {
	zones map[string]*route53.Zone
}

func (m *mockDNS) LookupZone(_ context.Context, name string) (*route53.Zone, error) {
	if z, ok := m.zones[name]; ok {
		return z, nil
	}
	return nil, fmt.Errorf("%w: %s", route53.ErrZoneNotFound, name)
}

func (m *mockDNS) EnsureZone(_ context.Context, name string) (*route53.Zone, error) {
	if z, ok := m.zones[name]; ok {
		return z, nil
	}
	z := &route53.Zone{
		ID:          "Z-" + strings.ToUpper(strings.SplitN(name, ".", 2)[0]),
		Name:        name,
		NameServers: []string{"ns-101.awsdns-12.com", "ns-202.awsdns-25.net"},
	}
	m.zones[name] = z
	return z, nil
}

func (m *mockDNS) UpsertRecord(context.Context, string, string, route53types.RRType, []string, int64) error {
	return nil
}

type mockRegistry struct {
	repos []string
}

func (m *mockRegistry) EnsureOrganization(context.Context, string, string) error { return nil }

func (m *mockRegistry) EnsureRobot(_ context.Context, org, shortname string) (*quay.Robot, error) {
	return &quay.Robot{Name: org + "+" + shortname, Token: "robot-secret"}, nil
}

func (m *mockRegistry) EnsureRepository(_ context.Context, org, name, _ string) error {
	m.repos = append(m.repos, org+"/"+name)
	return nil
}

func (m *mockRegistry) SetRepositoryWritePermission(context.Context, string, string, string) error {
	return nil
}

type mockGit struct {
	repos    []string
	webhooks map[string]string
}

func (m *mockGit) EnsureRepository(_ context.Context, org, name string) error {
	m.repos = append(m.repos, org+"/"+name)
	return nil
}

func (m *mockGit) EnsureWebhook(_ context.Context, org, repo, url, _ string) error {
	if m.webhooks == nil {
		m.webhooks = map[string]string{}
	}
	m.webhooks[org+"/"+repo] = url
	return nil
}

type mockSecrets struct {
	stored map[string]map[string]string
}

func (m *mockSecrets) UpsertSecret(_ context.Context, name string, values map[string]string) (string, error) {
	if m.stored == nil {
		m.stored = map[string]map[string]string{}
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	m.stored[name] = copied
	return "arn:aws:secretsmanager:us-east-2:123456789012:secret:" + name, nil
}

func (m *mockSecrets) SecretValues(_ context.Context, name string) (map[string]string, error) {
	values, ok := m.stored[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", secretsmanager.ErrSecretNotFound, name)
	}
	return values, nil
}

type mockIAM struct{}

func (m *mockIAM) OIDCProviderARN(_ context.Context, issuer string) (string, error) {
	return "arn:aws:iam::123456789012:oidc-provider/" + strings.TrimPrefix(issuer, "https://"), nil
}

func (m *mockIAM) EnsurePolicy(_ context.Context, name string, _ []string) (string, error) {
	return "arn:aws:iam::123456789012:policy/" + name, nil
}

func (m *mockIAM) EnsureRole(_ context.Context, name, _, _, _, _ string) (string, error) {
	return "arn:aws:iam::123456789012:role/" + name, nil
}

func (m *mockIAM) AttachRolePolicy(context.Context, string, string) error { return nil }

type mockCluster struct{}

func (m *mockCluster) EnsureNamespace(context.Context, string) error { return nil }

func (m *mockCluster) EnsureServiceAccount(context.Context, string, string) error { return nil }

func (m *mockCluster) AnnotateServiceAccount(context.Context, string, string, string, string) error {
	return nil
}

func (m *mockCluster) RouteHost(_ context.Context, namespace, name string) (string, error) {
	return name + "-" + namespace + ".apps.hub.ocp.sandbox1234.opentlc.com", nil
}

func (m *mockCluster) ServiceAccountIssuer(context.Context) (string, error) {
	return "https://oidc.example.com/hub-abc", nil
}

type mockInstaller struct {
	created []string
	err     error
}

func (m *mockInstaller) CreateCluster(_ context.Context, dir string) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, dir)
	return nil
}

// mocks bundles the stub clients behind the client factories, plus a
// recorder for files the handlers write.
type mocks struct {
	dns       *mockDNS
	registry  *mockRegistry
	git       *mockGit
	secrets   *mockSecrets
	iam       *mockIAM
	cluster   *mockCluster
	installer *mockInstaller

	written map[string][]byte
}

// installMocks points every factory at stub implementations wired for a
// successful run against env. Call saveAndRestoreFactories first.
func installMocks(t *testing.T, env *config.Environment) *mocks {
	t.Helper()

	m := &mocks{
		dns: &mockDNS{zones: map[string]*route53.Zone{
			env.ParentZone(): {ID: "Z-PARENT", Name: env.ParentZone(), NameServers: []string{"ns-1.awsdns-01.org"}},
		}},
		registry:  &mockRegistry{},
		git:       &mockGit{},
		secrets:   &mockSecrets{},
		iam:       &mockIAM{},
		cluster:   &mockCluster{},
		installer: &mockInstaller{},
		written:   map[string][]byte{},
	}

	loadEnvironment = func(string) (*config.Environment, error) { return env, nil }
	newAWSConfig = func(context.Context, string) (aws.Config, error) { return aws.Config{}, nil }
	verifyIdentity = func(context.Context, aws.Config) (awsutil.Identity, error) {
		return awsutil.Identity{Account: "123456789012", ARN: "arn:aws:iam::123456789012:user/demo"}, nil
	}
	newDNSClient = func(aws.Config) provisioning.DNSClient { return m.dns }
	newSecretsClient = func(aws.Config) provisioning.SecretsClient { return m.secrets }
	newIAMClient = func(aws.Config, string) provisioning.IAMClient { return m.iam }
	newRegistryClient = func(string, string) provisioning.RegistryClient { return m.registry }
	newGitClient = func(string, string) provisioning.GitClient { return m.git }
	newInstallerRunner = func() provisioning.InstallerRunner { return m.installer }
	dialCluster = func(string) (provisioning.ClusterClient, error) { return m.cluster, nil }
	checkInstallerPrereqs = func() *prerequisites.CheckResults {
		return &prerequisites.CheckResults{
			Results: []prerequisites.CheckResult{
				{Tool: prerequisites.Tool{Name: prerequisites.InstallerBinary, Required: true}, Found: true, Version: "4.17.0"},
			},
		}
	}
	writeFile = func(name string, data []byte, _ os.FileMode) error {
		m.written[name] = data
		return nil
	}

	return m
}
