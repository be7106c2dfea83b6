package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLUserRepository stores accounts keyed by their OIDC subject.
type SQLUserRepository struct {
	db *sqlx.DB
}

// NewSQLUserRepository creates a new SQLUserRepository.
func NewSQLUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// GetUserByID retrieves a user by ID.
func (r *SQLUserRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	query := r.db.Rebind(`SELECT id, name, email, role, created_at FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// GetAllUsers returns every user ordered by name.
func (r *SQLUserRepository) GetAllUsers(ctx context.Context) ([]*User, error) {
	users := []*User{}
	query := `SELECT id, name, email, role, created_at FROM users ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// UpsertUser creates the user on first login and refreshes name and email
// afterwards. The stored role is never overwritten; the returned user
// carries it.
func (r *SQLUserRepository) UpsertUser(ctx context.Context, u *User) (*User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing User
	err = tx.GetContext(ctx, &existing, tx.Rebind(`SELECT id, name, email, role, created_at FROM users WHERE id = ?`), u.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if u.Role == "" {
			u.Role = RoleUser
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		query := `INSERT INTO users (id, name, email, role, created_at) VALUES (:id, :name, :email, :role, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, u); err != nil {
			return nil, fmt.Errorf("failed to insert user: %w", err)
		}
		existing = *u
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	default:
		query := tx.Rebind(`UPDATE users SET name = ?, email = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, query, u.Name, u.Email, u.ID); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		existing.Name = u.Name
		existing.Email = u.Email
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user upsert: %w", err)
	}
	return &existing, nil
}

// UpdateUserRole sets the role of an existing user.
func (r *SQLUserRepository) UpdateUserRole(ctx context.Context, id string, role Role) error {
	query := r.db.Rebind(`UPDATE users SET role = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, role, id); err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return nil
}

// DeleteUser removes the account. Authored comments and posts stay and lose
// their author reference; the user's notifications are removed with them.
func (r *SQLUserRepository) DeleteUser(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`UPDATE comments SET author_id = NULL WHERE author_id = ?`,
		`UPDATE posts SET author_id = NULL WHERE author_id = ?`,
		`DELETE FROM notifications WHERE user_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return fmt.Errorf("failed to detach user %s: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
