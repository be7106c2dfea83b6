package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const projectColumns = `id, title, slug, description, github_url, image_url, product_url, readme, rendered_readme,
	readme_updated_at, author_id, status, created_at, updated_at`

// SQLProjectRepository stores projects using sqlx.
type SQLProjectRepository struct {
	db *sqlx.DB
}

// NewSQLProjectRepository creates a new SQLProjectRepository.
func NewSQLProjectRepository(db *sqlx.DB) *SQLProjectRepository {
	return &SQLProjectRepository{db: db}
}

// CreateProject inserts a new project. ID and timestamps are assigned when empty.
func (r *SQLProjectRepository) CreateProject(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (:id, :title, :slug, :description, :github_url, :image_url, :product_url, :readme, :rendered_readme,
		:readme_updated_at, :author_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to execute create project query: %w", err)
	}
	return nil
}

func (r *SQLProjectRepository) getOne(ctx context.Context, column, value string) (*Project, error) {
	var p Project
	query := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE ` + column + ` = ?`)
	if err := r.db.GetContext(ctx, &p, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project with %s '%s': %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project by %s: %w", column, err)
	}
	return &p, nil
}

// GetProjectByID retrieves a single project by its ID.
func (r *SQLProjectRepository) GetProjectByID(ctx context.Context, id string) (*Project, error) {
	return r.getOne(ctx, "id", id)
}

// GetProjectBySlug retrieves a single project by its slug.
func (r *SQLProjectRepository) GetProjectBySlug(ctx context.Context, slug string) (*Project, error) {
	return r.getOne(ctx, "slug", slug)
}

// UpdateProject rewrites every editable column, README included.
func (r *SQLProjectRepository) UpdateProject(ctx context.Context, p *Project) error {
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE projects SET title = :title, slug = :slug, description = :description, github_url = :github_url,
		image_url = :image_url, product_url = :product_url, readme = :readme, rendered_readme = :rendered_readme,
		readme_updated_at = :readme_updated_at, status = :status, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no project found to update with id %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// ListProjects returns projects newest first. An empty status lists all of them.
func (r *SQLProjectRepository) ListProjects(ctx context.Context, status ProjectStatus) ([]*Project, error) {
	projects := []*Project{}
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &projects, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
	} else {
		query := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE status = ? ORDER BY created_at DESC`)
		err = r.db.SelectContext(ctx, &projects, query, status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project.
func (r *SQLProjectRepository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no project found to delete with id %s: %w", id, ErrNotFound)
	}
	return nil
}
