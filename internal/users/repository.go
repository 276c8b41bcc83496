package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Resources bundles everything a user is party to.
type Resources struct {
	Invoices []models.Invoice      `json:"invoices"`
	Reports  []models.Report       `json:"reports"`
	Orgs     []models.Organization `json:"orgs"`
}

// Repository handles user persistence for the user module.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a user by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, identifier, email, password_hash,
		COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''), COALESCE(picture,''),
		super_admin, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Identifier, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.Phone, &u.Picture, &u.SuperAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update writes the user's mutable profile fields.
func (r *Repository) Update(ctx context.Context, u *models.User) (*models.User, error) {
	const q = `UPDATE users
		SET email = $2, first_name = $3, last_name = $4, phone = $5, picture = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id, identifier, email, password_hash,
		COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''), COALESCE(picture,''),
		super_admin, created_at, updated_at`
	var out models.User
	err := r.pool.QueryRow(ctx, q, u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.Picture).
		Scan(&out.ID, &out.Identifier, &out.Email, &out.Password,
			&out.FirstName, &out.LastName, &out.Phone, &out.Picture, &out.SuperAdmin, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// HasUnpaidInvoices reports whether the user is party to any unpaid invoice.
func (r *Repository) HasUnpaidInvoices(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM invoices i
			INNER JOIN user_invoices ui ON ui.invoice_id = i.id
			WHERE ui.user_id = $1 AND i.paid = FALSE
		)`, userID).Scan(&exists)
	return exists, err
}

// OwnsOrg reports whether the user holds an owner membership anywhere.
func (r *Repository) OwnsOrg(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM org_users WHERE user_id = $1 AND role = $2)`,
		userID, int(models.RoleOwner)).Scan(&exists)
	return exists, err
}

// Delete removes the user together with its link rows and memberships.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM user_invoices WHERE user_id = $1`,
		`DELETE FROM user_reports WHERE user_id = $1`,
		`DELETE FROM org_users WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListResources returns the invoices, reports and orgs a user is party to.
// The flags select which sets to load; all three are loaded when none is set.
func (r *Repository) ListResources(ctx context.Context, userID uuid.UUID, invoices, reports, orgs bool) (*Resources, error) {
	all := !invoices && !reports && !orgs
	out := &Resources{}

	if all || invoices {
		rows, err := r.pool.Query(ctx,
			`SELECT i.id, i.paid, i.value, i.start_at, i.end_at, i.due_at, i.created_at, i.updated_at
			FROM invoices i
			INNER JOIN user_invoices ui ON ui.invoice_id = i.id
			WHERE ui.user_id = $1
			ORDER BY i.created_at DESC`, userID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var inv models.Invoice
			if err := rows.Scan(&inv.ID, &inv.Paid, &inv.Value, &inv.Start, &inv.End, &inv.Due, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			out.Invoices = append(out.Invoices, inv)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	if all || reports {
		rows, err := r.pool.Query(ctx,
			`SELECT rp.id, rp.rating, COALESCE(rp.notes,''), rp.created_at
			FROM reports rp
			INNER JOIN user_reports ur ON ur.report_id = rp.id
			WHERE ur.user_id = $1
			ORDER BY rp.created_at DESC`, userID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var rep models.Report
			if err := rows.Scan(&rep.ID, &rep.Rating, &rep.Notes, &rep.CreatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			out.Reports = append(out.Reports, rep)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	if all || orgs {
		rows, err := r.pool.Query(ctx,
			`SELECT o.id, o.name, o.contact, o.created_at, o.updated_at
			FROM orgs o
			INNER JOIN org_users ou ON ou.org_id = o.id
			WHERE ou.user_id = $1
			ORDER BY o.name`, userID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var org models.Organization
			if err := rows.Scan(&org.ID, &org.Name, &org.Contact, &org.CreatedAt, &org.UpdatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			out.Orgs = append(out.Orgs, org)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return out, nil
}
