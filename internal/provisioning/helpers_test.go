package provisioning

import (
	"context"
	"fmt"
	"testing"

	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/platform/quay"
	"github.com/demoplatform/democtl/internal/platform/route53"
	"github.com/demoplatform/democtl/internal/platform/secretsmanager"
)

type recordUpsert struct {
	zoneID string
	name   string
	rtype  route53types.RRType
	values []string
	ttl    int64
}

type fakeDNS struct {
	zones     map[string]*route53.Zone
	ensured   []string
	records   []recordUpsert
	ensureErr error
	upsertErr error
}

func (f *fakeDNS) LookupZone(_ context.Context, name string) (*route53.Zone, error) {
	zone, ok := f.zones[name]
	if !ok {
		return nil, fmt.Errorf("hosted zone %s: %w", name, route53.ErrZoneNotFound)
	}
	return zone, nil
}

func (f *fakeDNS) EnsureZone(_ context.Context, name string) (*route53.Zone, error) {
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	f.ensured = append(f.ensured, name)
	if zone, ok := f.zones[name]; ok {
		return zone, nil
	}
	zone := &route53.Zone{
		ID:          "Z-" + name,
		Name:        name,
		NameServers: []string{"ns-101.awsdns-12.com", "ns-202.awsdns-25.net"},
	}
	if f.zones == nil {
		f.zones = map[string]*route53.Zone{}
	}
	f.zones[name] = zone
	return zone, nil
}

func (f *fakeDNS) UpsertRecord(_ context.Context, zoneID, name string, rtype route53types.RRType, values []string, ttl int64) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records = append(f.records, recordUpsert{zoneID: zoneID, name: name, rtype: rtype, values: values, ttl: ttl})
	return nil
}

type fakeRegistry struct {
	robot quay.Robot

	orgs  []string
	repos []string
	perms []string

	orgErr   error
	robotErr error
	repoErr  error
	permErr  error
}

func (f *fakeRegistry) EnsureOrganization(_ context.Context, name, email string) error {
	if f.orgErr != nil {
		return f.orgErr
	}
	f.orgs = append(f.orgs, name+":"+email)
	return nil
}

func (f *fakeRegistry) EnsureRobot(_ context.Context, org, shortname string) (*quay.Robot, error) {
	if f.robotErr != nil {
		return nil, f.robotErr
	}
	if f.robot.Name == "" {
		f.robot = quay.Robot{Name: org + "+" + shortname, Token: "robot-token-1"}
	}
	return &f.robot, nil
}

func (f *fakeRegistry) EnsureRepository(_ context.Context, org, name, description string) error {
	if f.repoErr != nil {
		return f.repoErr
	}
	f.repos = append(f.repos, org+"/"+name+":"+description)
	return nil
}

func (f *fakeRegistry) SetRepositoryWritePermission(_ context.Context, org, repo, robotName string) error {
	if f.permErr != nil {
		return f.permErr
	}
	f.perms = append(f.perms, org+"/"+repo+":"+robotName)
	return nil
}

type webhookCall struct {
	url    string
	secret string
}

type fakeGit struct {
	repos    []string
	webhooks map[string]webhookCall

	repoErr error
	hookErr error
}

func (f *fakeGit) EnsureRepository(_ context.Context, org, name string) error {
	if f.repoErr != nil {
		return f.repoErr
	}
	f.repos = append(f.repos, org+"/"+name)
	return nil
}

func (f *fakeGit) EnsureWebhook(_ context.Context, org, repo, url, secret string) error {
	if f.hookErr != nil {
		return f.hookErr
	}
	if f.webhooks == nil {
		f.webhooks = map[string]webhookCall{}
	}
	f.webhooks[org+"/"+repo] = webhookCall{url: url, secret: secret}
	return nil
}

type fakeSecrets struct {
	stored map[string]map[string]string

	upsertErr error
	getErr    error
}

func (f *fakeSecrets) UpsertSecret(_ context.Context, name string, values map[string]string) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	if f.stored == nil {
		f.stored = map[string]map[string]string{}
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	f.stored[name] = copied
	return "arn:aws:secretsmanager:us-east-2:123456789012:secret:" + name + "-AbCdEf", nil
}

func (f *fakeSecrets) SecretValues(_ context.Context, name string) (map[string]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	values, ok := f.stored[name]
	if !ok {
		return nil, fmt.Errorf("secret %s: %w", name, secretsmanager.ErrSecretNotFound)
	}
	return values, nil
}

type roleSpec struct {
	providerARN    string
	issuer         string
	namespace      string
	serviceAccount string
}

type fakeIAM struct {
	providerARN string
	providerErr error

	policies map[string][]string
	roles    map[string]roleSpec
	attached []string

	policyErr error
	roleErr   error
	attachErr error
}

func (f *fakeIAM) OIDCProviderARN(_ context.Context, _ string) (string, error) {
	if f.providerErr != nil {
		return "", f.providerErr
	}
	return f.providerARN, nil
}

func (f *fakeIAM) EnsurePolicy(_ context.Context, name string, secretARNs []string) (string, error) {
	if f.policyErr != nil {
		return "", f.policyErr
	}
	if f.policies == nil {
		f.policies = map[string][]string{}
	}
	f.policies[name] = secretARNs
	return "arn:aws:iam::123456789012:policy/" + name, nil
}

func (f *fakeIAM) EnsureRole(_ context.Context, name, providerARN, issuer, namespace, serviceAccount string) (string, error) {
	if f.roleErr != nil {
		return "", f.roleErr
	}
	if f.roles == nil {
		f.roles = map[string]roleSpec{}
	}
	f.roles[name] = roleSpec{providerARN: providerARN, issuer: issuer, namespace: namespace, serviceAccount: serviceAccount}
	return "arn:aws:iam::123456789012:role/" + name, nil
}

func (f *fakeIAM) AttachRolePolicy(_ context.Context, roleName, policyARN string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached = append(f.attached, roleName+":"+policyARN)
	return nil
}

type fakeCluster struct {
	issuer     string
	issuerErr  error
	routeHosts map[string]string
	routeErr   error

	namespaces      []string
	serviceAccounts []string
	annotations     map[string]string
}

func (f *fakeCluster) EnsureNamespace(_ context.Context, name string) error {
	f.namespaces = append(f.namespaces, name)
	return nil
}

func (f *fakeCluster) EnsureServiceAccount(_ context.Context, namespace, name string) error {
	f.serviceAccounts = append(f.serviceAccounts, namespace+"/"+name)
	return nil
}

func (f *fakeCluster) AnnotateServiceAccount(_ context.Context, namespace, name, key, value string) error {
	if f.annotations == nil {
		f.annotations = map[string]string{}
	}
	f.annotations[namespace+"/"+name+"/"+key] = value
	return nil
}

func (f *fakeCluster) RouteHost(_ context.Context, namespace, name string) (string, error) {
	if f.routeErr != nil {
		return "", f.routeErr
	}
	host, ok := f.routeHosts[namespace+"/"+name]
	if !ok {
		return "", fmt.Errorf("route %s/%s not found", namespace, name)
	}
	return host, nil
}

func (f *fakeCluster) ServiceAccountIssuer(_ context.Context) (string, error) {
	if f.issuerErr != nil {
		return "", f.issuerErr
	}
	return f.issuer, nil
}

type fakeInstaller struct {
	created  []string
	err      error
	onCreate func(dir string)
}

func (f *fakeInstaller) CreateCluster(_ context.Context, dir string) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, dir)
	if f.onCreate != nil {
		f.onCreate(dir)
	}
	return nil
}

type fakes struct {
	dns       *fakeDNS
	registry  *fakeRegistry
	git       *fakeGit
	secrets   *fakeSecrets
	iam       *fakeIAM
	cluster   *fakeCluster
	installer *fakeInstaller

	dialedKubeconfigs []string
}

func newTestContext(t *testing.T) (*Context, *fakes) {
	t.Helper()

	env := &config.Environment{
		SandboxID: "1234",
		Registry:  config.RegistrySpec{Organization: "demo", Email: "demo@example.com"},
		Git:       config.GitSpec{Organization: "demo"},
	}
	env.ApplyDefaults()
	env.ArtifactsDir = t.TempDir()
	require.NoError(t, env.Validate())

	f := &fakes{
		dns:       &fakeDNS{},
		registry:  &fakeRegistry{},
		git:       &fakeGit{},
		secrets:   &fakeSecrets{},
		iam:       &fakeIAM{providerARN: "arn:aws:iam::123456789012:oidc-provider/oidc.example.com/hub-abc"},
		cluster:   &fakeCluster{issuer: "https://oidc.example.com/hub-abc"},
		installer: &fakeInstaller{},
	}

	clients := Clients{
		DNS:       f.dns,
		Registry:  f.registry,
		Git:       f.git,
		Secrets:   f.secrets,
		IAM:       f.iam,
		Installer: f.installer,
		ClusterDial: func(kubeconfigPath string) (ClusterClient, error) {
			f.dialedKubeconfigs = append(f.dialedKubeconfigs, kubeconfigPath)
			return f.cluster, nil
		},
	}

	return NewContext(context.Background(), env, clients, logr.Discard()), f
}
