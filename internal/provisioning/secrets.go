package provisioning

import (
	"errors"
	"fmt"

	"github.com/demoplatform/democtl/internal/config"
	"github.com/demoplatform/democtl/internal/k8s"
	"github.com/demoplatform/democtl/internal/platform/secretsmanager"
	"github.com/demoplatform/democtl/internal/util/naming"
	"github.com/demoplatform/democtl/internal/util/secretgen"
)

// Secret bundle keys. The portal bundle feeds the demo portal deployment,
// the CI bundle feeds the in-cluster pipelines.
const (
	keyBackendSecret     = "backend_secret"
	keyOAuthClientSecret = "oauth_client_secret"
	keyWebhookSecret     = "webhook_secret"
	keyQuayUsername      = "quay_username"
	keyQuayPassword      = "quay_password"
	keyGitToken          = "git_token"
)

// SecretsPhase stores the portal and CI secret bundles, binds them to the
// cluster's CI service account through an OIDC-federated IAM role, and
// annotates the service account with the role so workloads pick it up.
type SecretsPhase struct{}

// Name implements Phase.
func (p *SecretsPhase) Name() string { return "secret-provisioning" }

// Provision implements Phase. Previously stored generated values are kept
// on re-runs so secrets do not rotate behind the running platform's back;
// operator-supplied overrides and passthrough credentials always win.
func (p *SecretsPhase) Provision(ctx *Context) error {
	env := ctx.Environment
	sec := env.Secrets

	if ctx.State.RobotUser == "" || ctx.State.RobotToken == "" {
		return errors.New("registry robot credentials missing, run the registry step first")
	}
	if ctx.State.GitToken == "" {
		return fmt.Errorf("git token missing, set %s", config.EnvGitHubToken)
	}

	portalName := naming.PortalSecret(sec.Prefix)
	existing, err := p.existingValues(ctx, portalName)
	if err != nil {
		return err
	}
	backendSecret, err := resolveValue(ctx.State.BackendSecret, existing[keyBackendSecret])
	if err != nil {
		return err
	}
	oauthSecret, err := resolveValue(ctx.State.OAuthClientSecret, existing[keyOAuthClientSecret])
	if err != nil {
		return err
	}
	portalARN, err := ctx.Clients.Secrets.UpsertSecret(ctx, portalName, map[string]string{
		keyBackendSecret:     backendSecret,
		keyOAuthClientSecret: oauthSecret,
	})
	if err != nil {
		return fmt.Errorf("secret %s: %w", portalName, err)
	}

	ciName := naming.CISecret(sec.Prefix)
	existing, err = p.existingValues(ctx, ciName)
	if err != nil {
		return err
	}
	webhookSecret, err := resolveValue("", existing[keyWebhookSecret])
	if err != nil {
		return err
	}
	ciARN, err := ctx.Clients.Secrets.UpsertSecret(ctx, ciName, map[string]string{
		keyWebhookSecret: webhookSecret,
		keyQuayUsername:  ctx.State.RobotUser,
		keyQuayPassword:  ctx.State.RobotToken,
		keyGitToken:      ctx.State.GitToken,
	})
	if err != nil {
		return fmt.Errorf("secret %s: %w", ciName, err)
	}

	cluster, err := ctx.ClusterClient()
	if err != nil {
		return err
	}
	issuer, err := cluster.ServiceAccountIssuer(ctx)
	if err != nil {
		return err
	}
	providerARN, err := ctx.Clients.IAM.OIDCProviderARN(ctx, issuer)
	if err != nil {
		return err
	}

	policyARN, err := ctx.Clients.IAM.EnsurePolicy(ctx, naming.SecretsPolicy(sec.Prefix), []string{portalARN, ciARN})
	if err != nil {
		return err
	}
	roleARN, err := ctx.Clients.IAM.EnsureRole(ctx, naming.PipelineRole(sec.Prefix), providerARN, issuer, sec.Namespace, sec.ServiceAccount)
	if err != nil {
		return err
	}
	if err := ctx.Clients.IAM.AttachRolePolicy(ctx, naming.PipelineRole(sec.Prefix), policyARN); err != nil {
		return err
	}

	if err := cluster.EnsureNamespace(ctx, sec.Namespace); err != nil {
		return err
	}
	if err := cluster.EnsureServiceAccount(ctx, sec.Namespace, sec.ServiceAccount); err != nil {
		return err
	}
	if err := cluster.AnnotateServiceAccount(ctx, sec.Namespace, sec.ServiceAccount, k8s.RoleARNAnnotation, roleARN); err != nil {
		return err
	}

	ctx.State.PortalSecretARN = portalARN
	ctx.State.CISecretARN = ciARN
	ctx.State.WebhookSecret = webhookSecret
	ctx.State.RoleARN = roleARN

	ctx.Log.Info("secrets provisioned", "portalSecret", portalName, "ciSecret", ciName, "role", roleARN,
		"serviceAccount", sec.Namespace+"/"+sec.ServiceAccount)
	return nil
}

// existingValues fetches a stored bundle, treating absence as empty.
func (p *SecretsPhase) existingValues(ctx *Context, name string) (map[string]string, error) {
	values, err := ctx.Clients.Secrets.SecretValues(ctx, name)
	if err != nil {
		if errors.Is(err, secretsmanager.ErrSecretNotFound) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("secret %s: %w", name, err)
	}
	return values, nil
}

// resolveValue picks the operator override, then the previously stored
// value, then a freshly generated token.
func resolveValue(override, existing string) (string, error) {
	if override != "" {
		return override, nil
	}
	if existing != "" {
		return existing, nil
	}
	return secretgen.DefaultToken()
}
