package provisioning

import (
	"errors"
	"fmt"

	"github.com/demoplatform/democtl/internal/util/naming"
)

// WebhooksPhase registers the CI webhook on every source repository,
// pointing at the cluster's event listener route. Hooks are keyed by URL,
// so re-runs update the existing hook instead of stacking duplicates.
type WebhooksPhase struct{}

// Name implements Phase.
func (p *WebhooksPhase) Name() string { return "webhook-registration" }

// Provision implements Phase.
func (p *WebhooksPhase) Provision(ctx *Context) error {
	env := ctx.Environment

	secret, err := p.webhookSecret(ctx)
	if err != nil {
		return err
	}

	url := ctx.State.WebhookURL
	if url == "" {
		url, err = p.listenerURL(ctx)
		if err != nil {
			return err
		}
	}

	for _, repo := range env.Git.Repositories {
		if err := ctx.Clients.Git.EnsureWebhook(ctx, env.Git.Organization, repo, url, secret); err != nil {
			return fmt.Errorf("repository %s: %w", repo, err)
		}
	}

	ctx.State.WebhookURL = url
	ctx.Log.Info("webhooks registered", "url", url, "repositories", len(env.Git.Repositories))
	return nil
}

// webhookSecret returns the shared HMAC secret, falling back to the stored
// CI bundle when the secrets phase did not run in this process.
func (p *WebhooksPhase) webhookSecret(ctx *Context) (string, error) {
	if ctx.State.WebhookSecret != "" {
		return ctx.State.WebhookSecret, nil
	}

	name := naming.CISecret(ctx.Environment.Secrets.Prefix)
	values, err := ctx.Clients.Secrets.SecretValues(ctx, name)
	if err != nil {
		return "", fmt.Errorf("webhook secret unavailable, run the secrets step first: %w", err)
	}
	if values[keyWebhookSecret] == "" {
		return "", fmt.Errorf("secret %s has no %s value", name, keyWebhookSecret)
	}
	return values[keyWebhookSecret], nil
}

// listenerURL resolves the event listener endpoint from the cluster route.
func (p *WebhooksPhase) listenerURL(ctx *Context) (string, error) {
	sec := ctx.Environment.Secrets

	cluster, err := ctx.ClusterClient()
	if err != nil {
		return "", err
	}
	host, err := cluster.RouteHost(ctx, sec.Namespace, sec.WebhookRoute)
	if err != nil {
		return "", err
	}
	if host == "" {
		return "", errors.New("webhook route has no host")
	}
	return "https://" + host, nil
}
