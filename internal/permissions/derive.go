package permissions

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Deriver computes permission snapshots. It holds no per-request state; the
// same inputs always yield the same snapshot.
type Deriver struct {
	store Store
}

// NewDeriver creates a deriver over the given store.
func NewDeriver(store Store) *Deriver {
	return &Deriver{store: store}
}

// ResolveUser maps a verified external identity to the internal principal.
// An identity with no matching user cannot proceed.
func (d *Deriver) ResolveUser(ctx context.Context, identifier string) (*models.User, error) {
	user, err := d.store.UserByIdentifier(ctx, identifier)
	if errors.Is(err, ErrNoPrincipal) {
		return nil, NewUnauthorized(MsgUnknownUser)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Derive assembles the permission snapshot for one request. It fails fast:
// the first unresolvable step aborts the pipeline and no partial snapshot is
// ever returned.
func (d *Deriver) Derive(ctx context.Context, user *models.User, rc ReqContext) (*Snapshot, error) {
	snap := &Snapshot{SuperAdmin: user.SuperAdmin}

	switch rc.Kind {
	case KindUser:
		// User-scoped requests carry no org context; gates are
		// self-or-superadmin only.
		return snap, nil

	case KindOrg:
		if err := d.resolveOrgContext(ctx, snap, rc); err != nil {
			return nil, err
		}

	case KindInvoice:
		if err := d.resolveInvoiceContext(ctx, snap, user, rc); err != nil {
			return nil, err
		}

	case KindReport:
		if err := d.resolveReportContext(ctx, snap, user, rc); err != nil {
			return nil, err
		}
	}

	// Membership resolution happens last so org context established through
	// a resource link is covered by the same lookup.
	if snap.Org.ID != uuid.Nil {
		role, err := d.store.MembershipRole(ctx, snap.Org.ID, user.ID)
		if err != nil {
			return nil, err
		}
		snap.Org.Role = role
	}

	return snap, nil
}

func (d *Deriver) resolveOrgContext(ctx context.Context, snap *Snapshot, rc ReqContext) error {
	if rc.OrgID == uuid.Nil {
		if rc.Create {
			// A new org without a caller-chosen id has no context to
			// resolve; the creator becomes owner on insert.
			return nil
		}
		return NewBadRequest(MsgMissingIdentifier)
	}
	if !rc.Create {
		exists, err := d.store.OrgExists(ctx, rc.OrgID)
		if err != nil {
			return err
		}
		if !exists {
			return NewConflict(MsgNoAssociatedOrg)
		}
	}
	snap.Org.ID = rc.OrgID
	return nil
}

func (d *Deriver) resolveInvoiceContext(ctx context.Context, snap *Snapshot, user *models.User, rc ReqContext) error {
	orgID, err := d.resolveResourceOrg(ctx, rc, d.store.InvoiceOrg)
	if err != nil {
		return err
	}
	snap.Org.ID = orgID

	if err := d.checkClientMembership(ctx, orgID, rc.ClientID); err != nil {
		return err
	}

	if !rc.Create {
		linked, err := d.store.UserLinkedToInvoice(ctx, rc.ResourceID, user.ID)
		if err != nil {
			return err
		}
		snap.Invoice = &ResourceAccess{ID: rc.ResourceID, Creator: linked}
	}
	return nil
}

func (d *Deriver) resolveReportContext(ctx context.Context, snap *Snapshot, user *models.User, rc ReqContext) error {
	orgID, err := d.resolveResourceOrg(ctx, rc, d.store.ReportOrg)
	if err != nil {
		return err
	}
	snap.Org.ID = orgID

	if err := d.checkClientMembership(ctx, orgID, rc.ClientID); err != nil {
		return err
	}

	if !rc.Create {
		linked, err := d.store.UserLinkedToReport(ctx, rc.ResourceID, user.ID)
		if err != nil {
			return err
		}
		snap.Report = &ResourceAccess{ID: rc.ResourceID, Creator: linked}
	}
	return nil
}

// resolveResourceOrg determines the owning org of an invoice/report request.
// Create requests name the org in the body; everything else resolves it from
// the resource's org link row. Failure to resolve is a hard stop, never an
// empty-permission fallthrough.
func (d *Deriver) resolveResourceOrg(
	ctx context.Context,
	rc ReqContext,
	lookup func(context.Context, uuid.UUID) (uuid.UUID, error),
) (uuid.UUID, error) {
	if rc.Create {
		if rc.OrgID == uuid.Nil {
			return uuid.Nil, NewConflict(MsgNoAssociatedOrg)
		}
		return rc.OrgID, nil
	}
	if rc.ResourceID == uuid.Nil {
		return uuid.Nil, NewBadRequest(MsgMissingIdentifier)
	}
	orgID, err := lookup(ctx, rc.ResourceID)
	if err != nil {
		return uuid.Nil, err
	}
	if orgID == uuid.Nil {
		return uuid.Nil, NewConflict(MsgNoAssociatedOrg)
	}
	return orgID, nil
}

// checkClientMembership verifies a client party named on a create body is a
// member of the target org, preventing resources from being assigned to
// outsiders.
func (d *Deriver) checkClientMembership(ctx context.Context, orgID, clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return nil
	}
	role, err := d.store.MembershipRole(ctx, orgID, clientID)
	if err != nil {
		return err
	}
	if role == nil {
		return NewConflict(MsgClientNotInOrg)
	}
	return nil
}
