package permissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Store is the read surface derivation needs: the principal, membership rows
// and resource-to-org link rows. All lookups are single-row reads.
type Store interface {
	UserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	OrgExists(ctx context.Context, orgID uuid.UUID) (bool, error)
	MembershipRole(ctx context.Context, orgID, userID uuid.UUID) (*models.Role, error)
	InvoiceOrg(ctx context.Context, invoiceID uuid.UUID) (uuid.UUID, error)
	ReportOrg(ctx context.Context, reportID uuid.UUID) (uuid.UUID, error)
	UserLinkedToInvoice(ctx context.Context, invoiceID, userID uuid.UUID) (bool, error)
	UserLinkedToReport(ctx context.Context, reportID, userID uuid.UUID) (bool, error)
}

// ErrNoPrincipal is returned when no user matches the verified identity.
var ErrNoPrincipal = errors.New("no user for identity")

// PgStore implements Store over a pgx pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Postgres-backed derivation store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// UserByIdentifier returns the user holding the external identity reference.
func (s *PgStore) UserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	const q = `SELECT id, identifier, email, password_hash,
		COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''), COALESCE(picture,''),
		super_admin, created_at, updated_at
		FROM users WHERE identifier = $1`
	var u models.User
	err := s.pool.QueryRow(ctx, q, identifier).Scan(&u.ID, &u.Identifier, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.Phone, &u.Picture, &u.SuperAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPrincipal
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// OrgExists reports whether the organization row exists.
func (s *PgStore) OrgExists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orgs WHERE id = $1)`, orgID).Scan(&exists)
	return exists, err
}

// MembershipRole returns the caller's role in the org, or nil when no
// membership row exists.
func (s *PgStore) MembershipRole(ctx context.Context, orgID, userID uuid.UUID) (*models.Role, error) {
	var rank int
	err := s.pool.QueryRow(ctx,
		`SELECT role FROM org_users WHERE org_id = $1 AND user_id = $2`, orgID, userID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	role, err := models.ParseRole(rank)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// InvoiceOrg returns the org owning the invoice, or uuid.Nil when the invoice
// has no org link.
func (s *PgStore) InvoiceOrg(ctx context.Context, invoiceID uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT org_id FROM org_invoices WHERE invoice_id = $1`, invoiceID).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	return orgID, err
}

// ReportOrg returns the org owning the report, or uuid.Nil when the report
// has no org link.
func (s *PgStore) ReportOrg(ctx context.Context, reportID uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT org_id FROM org_reports WHERE report_id = $1`, reportID).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	return orgID, err
}

// UserLinkedToInvoice reports whether the user is a party to the invoice.
func (s *PgStore) UserLinkedToInvoice(ctx context.Context, invoiceID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_invoices WHERE invoice_id = $1 AND user_id = $2)`,
		invoiceID, userID).Scan(&exists)
	return exists, err
}

// UserLinkedToReport reports whether the user is a party to the report.
func (s *PgStore) UserLinkedToReport(ctx context.Context, reportID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_reports WHERE report_id = $1 AND user_id = $2)`,
		reportID, userID).Scan(&exists)
	return exists, err
}
