// Package secretsmanager stores the demo platform's key/value secret
// bundles in AWS Secrets Manager.
package secretsmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// ErrSecretNotFound is returned when the named secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

type secretsAPI interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Client wraps Secrets Manager for key/value secret bundles.
type Client struct {
	api secretsAPI
}

// NewClient creates a Secrets Manager client from the given AWS configuration.
func NewClient(cfg aws.Config) *Client {
	return &Client{api: secretsmanager.NewFromConfig(cfg)}
}

// UpsertSecret creates the named secret with the given key/value payload,
// or stores a new version when the secret already exists. Returns the
// secret's ARN, which carries the random suffix assigned at creation.
func (c *Client) UpsertSecret(ctx context.Context, name string, values map[string]string) (string, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal secret %s: %w", name, err)
	}

	out, err := c.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(string(payload)),
	})
	if err == nil {
		return aws.ToString(out.ARN), nil
	}
	if !isResourceExists(err) {
		return "", fmt.Errorf("failed to create secret %s: %w", name, err)
	}

	put, err := c.api.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(string(payload)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to update secret %s: %w", name, err)
	}
	return aws.ToString(put.ARN), nil
}

// SecretValues reads the named secret and decodes its key/value payload.
// Returns ErrSecretNotFound when the secret does not exist.
func (c *Client) SecretValues(ctx context.Context, name string) (map[string]string, error) {
	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return nil, fmt.Errorf("failed to read secret %s: %w", name, err)
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &values); err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", name, err)
	}
	return values, nil
}

// isResourceExists checks if the error indicates the secret already exists.
func isResourceExists(err error) bool {
	if err == nil {
		return false
	}

	var exists *types.ResourceExistsException
	if errors.As(err, &exists) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceExistsException"
	}

	return false
}

// isResourceNotFound checks if the error indicates a missing secret.
func isResourceNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}

	return false
}
