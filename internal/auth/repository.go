package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/illustrious-cloud/backend/internal/models"
)

const userColumns = `id, identifier, email, password_hash,
	COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''), COALESCE(picture,''),
	super_admin, created_at, updated_at`

// Repository handles user persistence for the auth flow.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Identifier, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.Phone, &u.Picture, &u.SuperAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIdentifier returns a user by external identity reference.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE identifier = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, identifier).Scan(&u.ID, &u.Identifier, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.Phone, &u.Picture, &u.SuperAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, identifier, email, passwordHash, firstName, lastName string) (*models.User, error) {
	const q = `INSERT INTO users (identifier, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	var u models.User
	err := r.pool.QueryRow(ctx, q, identifier, email, passwordHash, firstName, lastName).
		Scan(&u.ID, &u.Identifier, &u.Email, &u.Password,
			&u.FirstName, &u.LastName, &u.Phone, &u.Picture, &u.SuperAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
