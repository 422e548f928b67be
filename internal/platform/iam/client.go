// Package iam manages the workload identity role and policy that let the
// in-cluster pipeline read the demo platform secrets without long-lived keys.
package iam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
)

// requires provider ARN, issuer host (twice) and the service account subject
const oidcTrustPolicyTemplate = `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Effect": "Allow",
			"Principal": {
				"Federated": "%s"
			},
			"Action": "sts:AssumeRoleWithWebIdentity",
			"Condition": {
				"StringEquals": {
					"%s:sub": "system:serviceaccount:%s:%s",
					"%s:aud": "openshift"
				}
			}
		}
	]
}`

// maxPolicyVersions is the IAM limit on versions per managed policy.
const maxPolicyVersions = 5

// ErrOIDCProviderNotFound is returned when no IAM OIDC identity provider is
// registered for the cluster's service account issuer.
var ErrOIDCProviderNotFound = errors.New("IAM OIDC provider not found")

type iamAPI interface {
	ListOpenIDConnectProviders(ctx context.Context, params *iam.ListOpenIDConnectProvidersInput, optFns ...func(*iam.Options)) (*iam.ListOpenIDConnectProvidersOutput, error)
	CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	ListPolicyVersions(ctx context.Context, params *iam.ListPolicyVersionsInput, optFns ...func(*iam.Options)) (*iam.ListPolicyVersionsOutput, error)
	DeletePolicyVersion(ctx context.Context, params *iam.DeletePolicyVersionInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyVersionOutput, error)
	CreatePolicyVersion(ctx context.Context, params *iam.CreatePolicyVersionInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyVersionOutput, error)
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	UpdateAssumeRolePolicy(ctx context.Context, params *iam.UpdateAssumeRolePolicyInput, optFns ...func(*iam.Options)) (*iam.UpdateAssumeRolePolicyOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
}

// Client wraps the IAM API for workload identity provisioning.
type Client struct {
	api     iamAPI
	account string
}

// NewClient creates an IAM client from the given AWS configuration. The
// account ID is needed to address existing managed policies by ARN.
func NewClient(cfg aws.Config, accountID string) *Client {
	return &Client{api: iam.NewFromConfig(cfg), account: accountID}
}

// OIDCProviderARN finds the IAM OIDC identity provider registered for the
// given issuer URL. The provider is created alongside the cluster, so a
// missing provider is a prerequisite failure rather than something to
// create here.
func (c *Client) OIDCProviderARN(ctx context.Context, issuer string) (string, error) {
	out, err := c.api.ListOpenIDConnectProviders(ctx, &iam.ListOpenIDConnectProvidersInput{})
	if err != nil {
		return "", fmt.Errorf("failed to list OIDC providers: %w", err)
	}

	host := issuerHost(issuer)
	for _, provider := range out.OpenIDConnectProviderList {
		if strings.HasSuffix(aws.ToString(provider.Arn), host) {
			return aws.ToString(provider.Arn), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrOIDCProviderNotFound, issuer)
}

// EnsurePolicy creates or updates the customer managed policy granting read
// access to exactly the given secret ARNs. IAM caps managed policies at
// five versions, so the oldest non-default version is pruned before an
// update.
func (c *Client) EnsurePolicy(ctx context.Context, name string, secretARNs []string) (string, error) {
	document, err := secretsReadPolicy(secretARNs)
	if err != nil {
		return "", err
	}

	out, err := c.api.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(document),
		Description:    aws.String("Read access to the demo platform secrets"),
	})
	if err == nil {
		return aws.ToString(out.Policy.Arn), nil
	}
	if !isEntityAlreadyExists(err) {
		return "", fmt.Errorf("failed to create policy %s: %w", name, err)
	}

	arn := c.policyARN(name)
	if err := c.prunePolicyVersions(ctx, arn); err != nil {
		return "", err
	}
	_, err = c.api.CreatePolicyVersion(ctx, &iam.CreatePolicyVersionInput{
		PolicyArn:      aws.String(arn),
		PolicyDocument: aws.String(document),
		SetAsDefault:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to update policy %s: %w", name, err)
	}
	return arn, nil
}

// EnsureRole creates or updates the IAM role assumed by the given service
// account through the cluster's workload identity provider. The trust
// policy is refreshed on existing roles because a reinstalled cluster gets
// a new issuer.
func (c *Client) EnsureRole(ctx context.Context, name, providerARN, issuer, namespace, serviceAccount string) (string, error) {
	trust := trustPolicy(providerARN, issuer, namespace, serviceAccount)

	out, err := c.api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err == nil {
		_, err = c.api.UpdateAssumeRolePolicy(ctx, &iam.UpdateAssumeRolePolicyInput{
			RoleName:       aws.String(name),
			PolicyDocument: aws.String(trust),
		})
		if err != nil {
			return "", fmt.Errorf("failed to update trust policy on role %s: %w", name, err)
		}
		return aws.ToString(out.Role.Arn), nil
	}
	if !isNoSuchEntity(err) {
		return "", fmt.Errorf("failed to get role %s: %w", name, err)
	}

	created, err := c.api.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(trust),
		Description:              aws.String("Workload identity role for the demo platform pipeline"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create role %s: %w", name, err)
	}
	return aws.ToString(created.Role.Arn), nil
}

// AttachRolePolicy attaches the managed policy to the role. Attaching an
// already attached policy succeeds, so this is safe to repeat.
func (c *Client) AttachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := c.api.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		return fmt.Errorf("failed to attach policy %s to role %s: %w", policyARN, roleName, err)
	}
	return nil
}

func (c *Client) policyARN(name string) string {
	return fmt.Sprintf("arn:aws:iam::%s:policy/%s", c.account, name)
}

func (c *Client) prunePolicyVersions(ctx context.Context, arn string) error {
	out, err := c.api.ListPolicyVersions(ctx, &iam.ListPolicyVersionsInput{
		PolicyArn: aws.String(arn),
	})
	if err != nil {
		return fmt.Errorf("failed to list versions of policy %s: %w", arn, err)
	}
	if len(out.Versions) < maxPolicyVersions {
		return nil
	}

	var oldest *types.PolicyVersion
	for i := range out.Versions {
		v := &out.Versions[i]
		if v.IsDefaultVersion {
			continue
		}
		if oldest == nil || aws.ToTime(v.CreateDate).Before(aws.ToTime(oldest.CreateDate)) {
			oldest = v
		}
	}
	if oldest == nil {
		return nil
	}

	_, err = c.api.DeletePolicyVersion(ctx, &iam.DeletePolicyVersionInput{
		PolicyArn: aws.String(arn),
		VersionId: oldest.VersionId,
	})
	if err != nil {
		return fmt.Errorf("failed to prune versions of policy %s: %w", arn, err)
	}
	return nil
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

func secretsReadPolicy(secretARNs []string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Effect: "Allow",
				Action: []string{
					"secretsmanager:GetSecretValue",
					"secretsmanager:DescribeSecret",
				},
				Resource: secretARNs,
			},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return string(raw), nil
}

func trustPolicy(providerARN, issuer, namespace, serviceAccount string) string {
	host := issuerHost(issuer)
	return fmt.Sprintf(oidcTrustPolicyTemplate, providerARN, host, namespace, serviceAccount, host)
}

// issuerHost strips the scheme from the issuer URL: provider ARNs and trust
// policy condition keys carry the issuer without it.
func issuerHost(issuer string) string {
	issuer = strings.TrimPrefix(issuer, "https://")
	return strings.TrimSuffix(issuer, "/")
}

// isNoSuchEntity checks if the error indicates a missing IAM entity.
func isNoSuchEntity(err error) bool {
	if err == nil {
		return false
	}

	var nse *types.NoSuchEntityException
	if errors.As(err, &nse) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchEntity"
	}

	return false
}

// isEntityAlreadyExists checks if the error indicates the IAM entity exists.
func isEntityAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var exists *types.EntityAlreadyExistsException
	if errors.As(err, &exists) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "EntityAlreadyExists"
	}

	return false
}
