// Package route53 manages hosted zones and delegation records in AWS Route 53.
package route53

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// DelegationTTL is the TTL in seconds for NS delegation records.
const DelegationTTL = 300

// ErrZoneNotFound is returned when no hosted zone matches the requested name.
var ErrZoneNotFound = errors.New("hosted zone not found")

// Zone describes a hosted zone and its authoritative name servers.
type Zone struct {
	ID          string
	Name        string
	NameServers []string
}

type route53API interface {
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	GetHostedZone(ctx context.Context, params *route53.GetHostedZoneInput, optFns ...func(*route53.Options)) (*route53.GetHostedZoneOutput, error)
	CreateHostedZone(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// Client wraps the Route 53 API for zone lookup, zone creation and record upserts.
type Client struct {
	api route53API
}

// NewClient creates a Route 53 client from the given AWS configuration.
func NewClient(cfg aws.Config) *Client {
	return &Client{api: route53.NewFromConfig(cfg)}
}

// LookupZone finds the hosted zone whose name matches exactly, ignoring the
// trailing dot Route 53 stores on zone names. Returns ErrZoneNotFound when
// no zone has that name.
func (c *Client) LookupZone(ctx context.Context, name string) (*Zone, error) {
	want := strings.TrimSuffix(name, ".")

	paginator := route53.NewListHostedZonesPaginator(c.api, &route53.ListHostedZonesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list hosted zones: %w", err)
		}
		for _, zone := range page.HostedZones {
			if strings.TrimSuffix(aws.ToString(zone.Name), ".") == want {
				return c.describeZone(ctx, aws.ToString(zone.Id))
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, want)
}

// EnsureZone returns the hosted zone with the given name, creating it when
// absent. The lookup must run first: Route 53 happily creates duplicate
// zones for the same name under distinct caller references.
func (c *Client) EnsureZone(ctx context.Context, name string) (*Zone, error) {
	zone, err := c.LookupZone(ctx, name)
	if err == nil {
		return zone, nil
	}
	if !errors.Is(err, ErrZoneNotFound) {
		return nil, err
	}

	out, err := c.api.CreateHostedZone(ctx, &route53.CreateHostedZoneInput{
		CallerReference: aws.String(uuid.NewString()),
		Name:            aws.String(fqdn(name)),
		HostedZoneConfig: &types.HostedZoneConfig{
			Comment: aws.String("managed by democtl"),
		},
	})
	if err != nil {
		if isZoneAlreadyExists(err) {
			return c.LookupZone(ctx, name)
		}
		return nil, fmt.Errorf("failed to create hosted zone %s: %w", name, err)
	}

	z := &Zone{
		ID:   cleanZoneID(aws.ToString(out.HostedZone.Id)),
		Name: strings.TrimSuffix(aws.ToString(out.HostedZone.Name), "."),
	}
	if out.DelegationSet != nil {
		z.NameServers = out.DelegationSet.NameServers
	}
	return z, nil
}

// UpsertRecord creates or replaces a record set in the given hosted zone.
func (c *Client) UpsertRecord(ctx context.Context, zoneID, name string, rtype types.RRType, values []string, ttl int64) error {
	records := make([]types.ResourceRecord, 0, len(values))
	for _, v := range values {
		records = append(records, types.ResourceRecord{Value: aws.String(v)})
	}

	_, err := c.api.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(cleanZoneID(zoneID)),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            aws.String(fqdn(name)),
						Type:            rtype,
						TTL:             aws.Int64(ttl),
						ResourceRecords: records,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %s record %s: %w", rtype, name, err)
	}
	return nil
}

func (c *Client) describeZone(ctx context.Context, id string) (*Zone, error) {
	out, err := c.api.GetHostedZone(ctx, &route53.GetHostedZoneInput{Id: aws.String(id)})
	if err != nil {
		return nil, fmt.Errorf("failed to get hosted zone %s: %w", cleanZoneID(id), err)
	}

	z := &Zone{
		ID:   cleanZoneID(aws.ToString(out.HostedZone.Id)),
		Name: strings.TrimSuffix(aws.ToString(out.HostedZone.Name), "."),
	}
	if out.DelegationSet != nil {
		z.NameServers = out.DelegationSet.NameServers
	}
	return z, nil
}

// cleanZoneID strips the /hostedzone/ prefix Route 53 returns on zone IDs.
func cleanZoneID(id string) string {
	return strings.TrimPrefix(id, "/hostedzone/")
}

// fqdn appends the trailing dot Route 53 expects on zone and record names.
func fqdn(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// isZoneAlreadyExists checks if the error indicates the zone was already
// created under the same caller reference.
func isZoneAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var exists *types.HostedZoneAlreadyExists
	if errors.As(err, &exists) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "HostedZoneAlreadyExists"
	}

	return false
}
