// Package repository implements the database access layer for ProgramHub.
// This file handles user account management and authentication queries.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db database.Querier
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db database.Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, role, password_hash, is_active, created_at`

// FindByEmail retrieves a user by their email address.
// Used during login to validate credentials.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - email: User's email address (unique identifier)
//
// Returns:
//   - *models.User: User with full details including password hash
//   - error: "user not found" if the email doesn't exist, database error otherwise
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`

	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&user.PasswordHash, &user.IsActive, &user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID retrieves a user by their unique ID.
// Used for session validation and the applicant identity snapshot taken
// at submission time.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = true`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role,
		&user.PasswordHash, &user.IsActive, &user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Create inserts a new user account.
//
// Side Effects: Populates user.ID and user.CreatedAt with database values
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		user.Email, user.Name, user.Role, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

// List retrieves all active user accounts ordered alphabetically by name.
// Password hashes are included in the struct but must be stripped before
// serialization (the model's json tag handles this).
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = true ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Role,
			&u.PasswordHash, &u.IsActive, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Deactivate soft-deletes a user account. Accounts are never hard-deleted
// so historical applications keep a valid applicant reference.
func (r *UserRepository) Deactivate(ctx context.Context, userID int) error {
	query := `UPDATE users SET is_active = false WHERE id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
