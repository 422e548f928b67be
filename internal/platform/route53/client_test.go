package route53

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

var testNameServers = []string{
	"ns-1.awsdns-01.org",
	"ns-2.awsdns-02.co.uk",
	"ns-3.awsdns-03.com",
	"ns-4.awsdns-04.net",
}

type fakeRoute53 struct {
	zones   []types.HostedZone
	created []string
	changes []*route53.ChangeResourceRecordSetsInput
}

func (f *fakeRoute53) ListHostedZones(_ context.Context, _ *route53.ListHostedZonesInput, _ ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	return &route53.ListHostedZonesOutput{
		HostedZones: f.zones,
		IsTruncated: false,
	}, nil
}

func (f *fakeRoute53) GetHostedZone(_ context.Context, params *route53.GetHostedZoneInput, _ ...func(*route53.Options)) (*route53.GetHostedZoneOutput, error) {
	want := cleanZoneID(aws.ToString(params.Id))
	for _, zone := range f.zones {
		if cleanZoneID(aws.ToString(zone.Id)) == want {
			return &route53.GetHostedZoneOutput{
				HostedZone:    &zone,
				DelegationSet: &types.DelegationSet{NameServers: testNameServers},
			}, nil
		}
	}
	return nil, &types.NoSuchHostedZone{}
}

func (f *fakeRoute53) CreateHostedZone(_ context.Context, params *route53.CreateHostedZoneInput, _ ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error) {
	if aws.ToString(params.CallerReference) == "" {
		return nil, errors.New("missing caller reference")
	}
	name := aws.ToString(params.Name)
	f.created = append(f.created, name)
	zone := types.HostedZone{
		Id:   aws.String("/hostedzone/ZNEW00000001"),
		Name: aws.String(name),
	}
	f.zones = append(f.zones, zone)
	return &route53.CreateHostedZoneOutput{
		HostedZone:    &zone,
		DelegationSet: &types.DelegationSet{NameServers: testNameServers},
	}, nil
}

func (f *fakeRoute53) ChangeResourceRecordSets(_ context.Context, params *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.changes = append(f.changes, params)
	return &route53.ChangeResourceRecordSetsOutput{}, nil
}

func TestLookupZone(t *testing.T) {
	fake := &fakeRoute53{
		zones: []types.HostedZone{
			{Id: aws.String("/hostedzone/ZPARENT00001"), Name: aws.String("sandbox1234.opentlc.com.")},
			{Id: aws.String("/hostedzone/ZOTHER000001"), Name: aws.String("other.example.com.")},
		},
	}
	c := &Client{api: fake}

	zone, err := c.LookupZone(context.Background(), "sandbox1234.opentlc.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.ID != "ZPARENT00001" {
		t.Errorf("expected clean zone ID ZPARENT00001, got %s", zone.ID)
	}
	if zone.Name != "sandbox1234.opentlc.com" {
		t.Errorf("expected zone name without trailing dot, got %s", zone.Name)
	}
	if len(zone.NameServers) != 4 {
		t.Errorf("expected 4 name servers, got %d", len(zone.NameServers))
	}
}

func TestLookupZoneTrailingDot(t *testing.T) {
	fake := &fakeRoute53{
		zones: []types.HostedZone{
			{Id: aws.String("/hostedzone/ZPARENT00001"), Name: aws.String("sandbox1234.opentlc.com.")},
		},
	}
	c := &Client{api: fake}

	zone, err := c.LookupZone(context.Background(), "sandbox1234.opentlc.com.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.ID != "ZPARENT00001" {
		t.Errorf("expected ZPARENT00001, got %s", zone.ID)
	}
}

func TestLookupZoneNotFound(t *testing.T) {
	c := &Client{api: &fakeRoute53{}}

	_, err := c.LookupZone(context.Background(), "missing.opentlc.com")
	if !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("expected ErrZoneNotFound, got %v", err)
	}
}

func TestEnsureZoneCreates(t *testing.T) {
	fake := &fakeRoute53{}
	c := &Client{api: fake}

	zone, err := c.EnsureZone(context.Background(), "ocp.sandbox1234.opentlc.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.created) != 1 || fake.created[0] != "ocp.sandbox1234.opentlc.com." {
		t.Errorf("expected one zone created with trailing dot, got %v", fake.created)
	}
	if zone.ID != "ZNEW00000001" {
		t.Errorf("expected ZNEW00000001, got %s", zone.ID)
	}
	if len(zone.NameServers) != 4 {
		t.Errorf("expected delegation set name servers, got %v", zone.NameServers)
	}
}

func TestEnsureZoneExisting(t *testing.T) {
	fake := &fakeRoute53{
		zones: []types.HostedZone{
			{Id: aws.String("/hostedzone/ZCHILD000001"), Name: aws.String("ocp.sandbox1234.opentlc.com.")},
		},
	}
	c := &Client{api: fake}

	zone, err := c.EnsureZone(context.Background(), "ocp.sandbox1234.opentlc.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.created) != 0 {
		t.Errorf("expected no zone created, got %v", fake.created)
	}
	if zone.ID != "ZCHILD000001" {
		t.Errorf("expected existing zone ID, got %s", zone.ID)
	}
	if len(zone.NameServers) != 4 {
		t.Errorf("expected name servers resolved for existing zone, got %v", zone.NameServers)
	}
}

func TestUpsertRecord(t *testing.T) {
	fake := &fakeRoute53{}
	c := &Client{api: fake}

	err := c.UpsertRecord(context.Background(), "/hostedzone/ZPARENT00001", "ocp.sandbox1234.opentlc.com", types.RRTypeNs, testNameServers, DelegationTTL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.changes) != 1 {
		t.Fatalf("expected 1 change batch, got %d", len(fake.changes))
	}
	change := fake.changes[0]
	if aws.ToString(change.HostedZoneId) != "ZPARENT00001" {
		t.Errorf("expected clean zone ID, got %s", aws.ToString(change.HostedZoneId))
	}

	if len(change.ChangeBatch.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(change.ChangeBatch.Changes))
	}
	rec := change.ChangeBatch.Changes[0]
	if rec.Action != types.ChangeActionUpsert {
		t.Errorf("expected UPSERT action, got %s", rec.Action)
	}
	if aws.ToString(rec.ResourceRecordSet.Name) != "ocp.sandbox1234.opentlc.com." {
		t.Errorf("expected fqdn record name, got %s", aws.ToString(rec.ResourceRecordSet.Name))
	}
	if rec.ResourceRecordSet.Type != types.RRTypeNs {
		t.Errorf("expected NS record, got %s", rec.ResourceRecordSet.Type)
	}
	if aws.ToInt64(rec.ResourceRecordSet.TTL) != 300 {
		t.Errorf("expected TTL 300, got %d", aws.ToInt64(rec.ResourceRecordSet.TTL))
	}
	if len(rec.ResourceRecordSet.ResourceRecords) != 4 {
		t.Errorf("expected 4 resource records, got %d", len(rec.ResourceRecordSet.ResourceRecords))
	}
}
