package invoices

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Repository handles invoice persistence and its org/user link rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invoices repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Exists reports whether an invoice with the id exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts the invoice and links it to its org, creator and client in
// one transaction.
func (r *Repository) Create(ctx context.Context, inv *models.Invoice, orgID, creatorID, clientID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO invoices (id, paid, value, start_at, end_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, inv.ID, inv.Paid, inv.Value, inv.Start, inv.End, inv.Due).
		Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return err
	}

	for _, userID := range []uuid.UUID{creatorID, clientID} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_invoices (user_id, invoice_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, inv.ID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO org_invoices (org_id, invoice_id) VALUES ($1, $2)`, orgID, inv.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID returns an invoice by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	const q = `SELECT id, paid, value, start_at, end_at, due_at, created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv models.Invoice
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&inv.ID, &inv.Paid, &inv.Value, &inv.Start, &inv.End, &inv.Due, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update writes the invoice's mutable fields.
func (r *Repository) Update(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	const q = `UPDATE invoices
		SET paid = $2, value = $3, start_at = $4, end_at = $5, due_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id, paid, value, start_at, end_at, due_at, created_at, updated_at`
	var out models.Invoice
	err := r.pool.QueryRow(ctx, q, inv.ID, inv.Paid, inv.Value, inv.Start, inv.End, inv.Due).
		Scan(&out.ID, &out.Paid, &out.Value, &out.Start, &out.End, &out.Due, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the invoice and its link rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_invoices WHERE invoice_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM org_invoices WHERE invoice_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
