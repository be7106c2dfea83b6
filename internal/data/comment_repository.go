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

// SQLCommentRepository stores comments as a flat table keyed by ID with a
// nullable parent_id.
type SQLCommentRepository struct {
	db *sqlx.DB
}

// NewSQLCommentRepository creates a new SQLCommentRepository.
func NewSQLCommentRepository(db *sqlx.DB) *SQLCommentRepository {
	return &SQLCommentRepository{db: db}
}

// CreateComment inserts a comment. ID and CreatedAt are assigned when empty.
func (r *SQLCommentRepository) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO comments (id, content, rendered_content, post_id, author_id, parent_id, hidden, created_at)
		VALUES (:id, :content, :rendered_content, :post_id, :author_id, :parent_id, :hidden, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("failed to execute create comment query: %w", err)
	}
	return nil
}

// GetCommentByID retrieves a single comment without its author name.
func (r *SQLCommentRepository) GetCommentByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	query := r.db.Rebind(`SELECT id, content, rendered_content, post_id, author_id, parent_id, hidden, created_at
		FROM comments WHERE id = ?`)
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment by id: %w", err)
	}
	return &c, nil
}

// GetCommentsByPost returns every comment of a post, top-level and replies,
// oldest first. AuthorName is nil when the author account no longer exists.
func (r *SQLCommentRepository) GetCommentsByPost(ctx context.Context, postID string) ([]*Comment, error) {
	comments := []*Comment{}
	query := r.db.Rebind(`SELECT c.id, c.content, c.rendered_content, c.post_id, c.author_id, c.parent_id,
			c.hidden, c.created_at, u.name AS author_name
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.id ASC`)
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("failed to get comments by post: %w", err)
	}
	return comments, nil
}

// GetAllComments lists comments across posts for moderation, newest first.
func (r *SQLCommentRepository) GetAllComments(ctx context.Context, limit, offset int) ([]*AdminComment, error) {
	comments := []*AdminComment{}
	query := r.db.Rebind(`SELECT c.id, c.content, c.rendered_content, c.post_id, c.author_id, c.parent_id,
			c.hidden, c.created_at, u.name AS author_name,
			COALESCE(p.title, '') AS post_title, COALESCE(p.slug, '') AS post_slug
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		LEFT JOIN posts p ON p.id = c.post_id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &comments, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get all comments: %w", err)
	}
	return comments, nil
}

// SetCommentHidden flips the hidden flag only; content is never touched.
func (r *SQLCommentRepository) SetCommentHidden(ctx context.Context, id string, hidden bool) error {
	query := r.db.Rebind(`UPDATE comments SET hidden = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, hidden, id); err != nil {
		return fmt.Errorf("failed to set comment hidden: %w", err)
	}
	return nil
}

// DeleteCommentCascade removes the comment and every reply to it in one
// transaction and returns the number of rows removed.
func (r *SQLCommentRepository) DeleteCommentCascade(ctx context.Context, id string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE parent_id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete replies: %w", err)
	}
	replies, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	self, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if self == 0 {
		return 0, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit comment delete: %w", err)
	}
	return replies + self, nil
}
