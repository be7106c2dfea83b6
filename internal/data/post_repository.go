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

const postColumns = `id, title, slug, content, rendered_content, excerpt, author_id, status, created_at, updated_at`

// SQLPostRepository is a concrete implementation of the PostRepository interface using sqlx.
type SQLPostRepository struct {
	db *sqlx.DB
}

// NewSQLPostRepository creates a new SQLPostRepository.
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

// CreatePost inserts a new post. ID and timestamps are assigned when empty.
func (r *SQLPostRepository) CreatePost(ctx context.Context, post *Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	query := `INSERT INTO posts (` + postColumns + `)
		VALUES (:id, :title, :slug, :content, :rendered_content, :excerpt, :author_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to execute create post query: %w", err)
	}
	return nil
}

func (r *SQLPostRepository) getOne(ctx context.Context, column, value string) (*Post, error) {
	var post Post
	query := r.db.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE ` + column + ` = ?`)
	if err := r.db.GetContext(ctx, &post, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post with %s '%s': %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by %s: %w", column, err)
	}
	return &post, nil
}

// GetPostByID retrieves a single post by its ID.
func (r *SQLPostRepository) GetPostByID(ctx context.Context, id string) (*Post, error) {
	return r.getOne(ctx, "id", id)
}

// GetPostBySlug retrieves a single post by its slug.
func (r *SQLPostRepository) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	return r.getOne(ctx, "slug", slug)
}

// UpdatePost rewrites a post's source, rendered HTML and metadata together.
func (r *SQLPostRepository) UpdatePost(ctx context.Context, post *Post) error {
	post.UpdatedAt = time.Now().UTC()
	query := `UPDATE posts SET title = :title, slug = :slug, content = :content, rendered_content = :rendered_content,
		excerpt = :excerpt, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// GetPublishedPosts returns published posts, newest first.
func (r *SQLPostRepository) GetPublishedPosts(ctx context.Context) ([]*Post, error) {
	posts := []*Post{}
	query := r.db.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE status = ? ORDER BY created_at DESC`)
	if err := r.db.SelectContext(ctx, &posts, query, PostPublished); err != nil {
		return nil, fmt.Errorf("failed to get published posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes a post together with all of its comments.
func (r *SQLPostRepository) DeletePost(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE post_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete post comments: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no post found to delete with id %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
