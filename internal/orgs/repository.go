package orgs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Repository handles organization and membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an orgs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Exists reports whether an organization with the id exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orgs WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts an organization and makes the creating user its owner.
func (r *Repository) Create(ctx context.Context, org *models.Organization, ownerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO orgs (id, name, contact)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, org.ID, org.Name, org.Contact).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO org_users (org_id, user_id, role) VALUES ($1, $2, $3)`,
		org.ID, ownerID, int(models.RoleOwner)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID returns an organization by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, contact, created_at, updated_at FROM orgs WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.Contact, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Update writes the organization's mutable fields.
func (r *Repository) Update(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	const q = `UPDATE orgs SET name = $2, contact = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, contact, created_at, updated_at`
	var out models.Organization
	err := r.pool.QueryRow(ctx, q, org.ID, org.Name, org.Contact).
		Scan(&out.ID, &out.Name, &out.Contact, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// HasResources reports whether any invoices or reports still belong to the org.
func (r *Repository) HasResources(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM org_invoices WHERE org_id = $1)
			OR EXISTS (SELECT 1 FROM org_reports WHERE org_id = $1)`, id).Scan(&exists)
	return exists, err
}

// Delete removes the organization and its memberships.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM org_users WHERE org_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orgs WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListUsers returns the users holding a membership in the org.
func (r *Repository) ListUsers(ctx context.Context, orgID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT u.id, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,''),
		COALESCE(u.phone,''), COALESCE(u.picture,''), u.created_at
		FROM users u
		INNER JOIN org_users ou ON ou.user_id = u.id
		WHERE ou.org_id = $1
		ORDER BY u.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Picture, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// ListInvoices returns the invoices linked to the org.
func (r *Repository) ListInvoices(ctx context.Context, orgID uuid.UUID) ([]models.Invoice, error) {
	const q = `SELECT i.id, i.paid, i.value, i.start_at, i.end_at, i.due_at, i.created_at, i.updated_at
		FROM invoices i
		INNER JOIN org_invoices oi ON oi.invoice_id = i.id
		WHERE oi.org_id = $1
		ORDER BY i.created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.Paid, &inv.Value, &inv.Start, &inv.End, &inv.Due, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// ListReports returns the reports linked to the org.
func (r *Repository) ListReports(ctx context.Context, orgID uuid.UUID) ([]models.Report, error) {
	const q = `SELECT rp.id, rp.rating, COALESCE(rp.notes,''), rp.created_at
		FROM reports rp
		INNER JOIN org_reports orp ON orp.report_id = rp.id
		WHERE orp.org_id = $1
		ORDER BY rp.created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.Rating, &rep.Notes, &rep.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}
