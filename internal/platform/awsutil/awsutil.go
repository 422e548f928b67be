// Package awsutil loads shared AWS SDK configuration and verifies that
// usable credentials are present before any provisioning call is made.
package awsutil

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// LoadConfig loads the default AWS configuration for the given region.
// Credentials are resolved from the environment and the shared config files.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// Identity describes the AWS principal the SDK resolved credentials for.
type Identity struct {
	Account string
	ARN     string
}

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CallerIdentity verifies that the resolved credentials are usable and
// returns the account they belong to. A failure here means the environment
// carries missing or expired credentials, so callers should surface it
// before attempting any mutation.
func CallerIdentity(ctx context.Context, cfg aws.Config) (Identity, error) {
	return callerIdentity(ctx, sts.NewFromConfig(cfg))
}

func callerIdentity(ctx context.Context, api stsAPI) (Identity, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to verify AWS credentials: %w", err)
	}
	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
	}, nil
}
