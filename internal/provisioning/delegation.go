package provisioning

import (
	"errors"
	"fmt"

	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/demoplatform/democtl/internal/platform/route53"
)

// DelegationPhase creates the cluster hosted zone and delegates it from
// the pre-existing sandbox parent zone via an NS record.
type DelegationPhase struct{}

// Name implements Phase.
func (p *DelegationPhase) Name() string { return "domain-delegation" }

// Provision implements Phase. The parent zone is never created here: its
// absence almost always means a mistyped sandbox id, and silently creating
// an undelegated parent would hide that.
func (p *DelegationPhase) Provision(ctx *Context) error {
	parentName := ctx.Environment.ParentZone()
	parent, err := ctx.Clients.DNS.LookupZone(ctx, parentName)
	if err != nil {
		if errors.Is(err, route53.ErrZoneNotFound) {
			return fmt.Errorf("parent zone %s must already exist, check the sandbox id: %w", parentName, err)
		}
		return err
	}

	childName := ctx.Environment.ChildZone()
	child, err := ctx.Clients.DNS.EnsureZone(ctx, childName)
	if err != nil {
		return err
	}
	if len(child.NameServers) == 0 {
		return fmt.Errorf("child zone %s has no name servers", childName)
	}

	if err := ctx.Clients.DNS.UpsertRecord(ctx, parent.ID, childName, route53types.RRTypeNs, child.NameServers, route53.DelegationTTL); err != nil {
		return fmt.Errorf("failed to delegate %s from %s: %w", childName, parentName, err)
	}

	ctx.State.ParentZoneID = parent.ID
	ctx.State.ChildZoneID = child.ID
	ctx.State.NameServers = child.NameServers

	ctx.Log.Info("delegated child zone", "zone", childName, "id", child.ID, "nameServers", len(child.NameServers))
	return nil
}
