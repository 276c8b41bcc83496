// Package permissions derives the request-scoped authorization snapshot every
// protected handler consumes. Derivation is a single linear pass: verified
// identity -> user record -> resource context -> membership role -> creator
// links -> assembled snapshot. It runs exactly once per request and the
// snapshot is never mutated afterwards.
package permissions

import (
	"github.com/google/uuid"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Kind identifies which resource family a request concerns.
type Kind int

const (
	KindUser Kind = iota
	KindOrg
	KindInvoice
	KindReport
)

// ReqContext is the resolved resource context of one request: what the
// request concerns, extracted from path parameters and body before any
// authorization decision is made.
type ReqContext struct {
	Kind       Kind
	Create     bool      // create requests name their org in the body; the resource does not exist yet
	OrgID      uuid.UUID // org named by path or body; zero when it must be resolved from the resource
	ResourceID uuid.UUID // invoice or report id, when Kind is KindInvoice/KindReport
	ClientID   uuid.UUID // client party named on create bodies; zero when absent
}

// OrgAccess is the caller's standing within the resolved organization.
// Role is nil when the caller holds no membership there; absence is never
// defaulted to the client tier.
type OrgAccess struct {
	ID   uuid.UUID
	Role *models.Role
}

// ResourceAccess describes the caller's direct link to a specific invoice or
// report. Creator is true when a user-resource link row exists, independent
// of any organizational role.
type ResourceAccess struct {
	ID      uuid.UUID
	Creator bool
}

// Snapshot is the immutable authorization state handed to handlers.
type Snapshot struct {
	SuperAdmin bool
	Org        OrgAccess
	Invoice    *ResourceAccess
	Report     *ResourceAccess
}

// RoleAbove reports whether the caller holds an org role strictly above the
// threshold. A missing membership never satisfies any threshold.
func (s *Snapshot) RoleAbove(min models.Role) bool {
	return s.Org.Role != nil && s.Org.Role.Above(min)
}

// RoleAtLeast reports whether the caller holds an org role at or above the
// threshold.
func (s *Snapshot) RoleAtLeast(min models.Role) bool {
	return s.Org.Role != nil && s.Org.Role.AtLeast(min)
}

// HasRole reports whether the caller holds any membership in the resolved org.
func (s *Snapshot) HasRole() bool {
	return s.Org.Role != nil
}

// InvoiceCreator reports whether the caller is a direct party to the invoice.
func (s *Snapshot) InvoiceCreator() bool {
	return s.Invoice != nil && s.Invoice.Creator
}

// ReportCreator reports whether the caller is a direct party to the report.
func (s *Snapshot) ReportCreator() bool {
	return s.Report != nil && s.Report.Creator
}
