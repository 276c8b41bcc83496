package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/illustrious-cloud/backend/internal/models"
)

// Repository handles report persistence and its org/user link rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Exists reports whether a report with the id exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Create inserts the report and links it to its org, creator and client in
// one transaction.
func (r *Repository) Create(ctx context.Context, rep *models.Report, orgID, creatorID, clientID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO reports (id, rating, notes)
		VALUES ($1, $2, NULLIF($3,''))
		RETURNING id, created_at`
	if err := tx.QueryRow(ctx, q, rep.ID, rep.Rating, rep.Notes).
		Scan(&rep.ID, &rep.CreatedAt); err != nil {
		return err
	}

	for _, userID := range []uuid.UUID{creatorID, clientID} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_reports (user_id, report_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, rep.ID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO org_reports (org_id, report_id) VALUES ($1, $2)`, orgID, rep.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID returns a report by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	const q = `SELECT id, rating, COALESCE(notes,''), created_at FROM reports WHERE id = $1`
	var rep models.Report
	err := r.pool.QueryRow(ctx, q, id).Scan(&rep.ID, &rep.Rating, &rep.Notes, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Update writes the report's mutable fields.
func (r *Repository) Update(ctx context.Context, rep *models.Report) (*models.Report, error) {
	const q = `UPDATE reports SET rating = $2, notes = NULLIF($3,'')
		WHERE id = $1
		RETURNING id, rating, COALESCE(notes,''), created_at`
	var out models.Report
	err := r.pool.QueryRow(ctx, q, rep.ID, rep.Rating, rep.Notes).
		Scan(&out.ID, &out.Rating, &out.Notes, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the report and its link rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_reports WHERE report_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM org_reports WHERE report_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
