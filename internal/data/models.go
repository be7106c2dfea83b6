package data

import (
	"time"
)

// Role is a user's capability level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account created on first OIDC login.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PostStatus controls post visibility.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// Post is a blog article. Content is the Markdown source and RenderedContent
// the HTML derived from it; the two are always written together.
type Post struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Slug            string     `db:"slug" json:"slug"`
	Content         string     `db:"content" json:"content"`
	RenderedContent string     `db:"rendered_content" json:"renderedContent"`
	Excerpt         string     `db:"excerpt" json:"excerpt"`
	AuthorID        *string    `db:"author_id" json:"authorId"`
	Status          PostStatus `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// ProjectStatus controls project visibility. Archived projects stay
// reachable by URL but drop out of listings.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPublished ProjectStatus = "published"
	ProjectArchived  ProjectStatus = "archived"
)

// Project is a showcased piece of work. Readme holds Markdown, either typed
// in or fetched from the GitHub repository, and RenderedReadme is derived
// from it on every write.
type Project struct {
	ID              string        `db:"id" json:"id"`
	Title           string        `db:"title" json:"title"`
	Slug            string        `db:"slug" json:"slug"`
	Description     string        `db:"description" json:"description"`
	GithubURL       string        `db:"github_url" json:"githubUrl"`
	ImageURL        string        `db:"image_url" json:"imageUrl"`
	ProductURL      string        `db:"product_url" json:"productUrl"`
	Readme          string        `db:"readme" json:"readme"`
	RenderedReadme  string        `db:"rendered_readme" json:"renderedReadme"`
	ReadmeUpdatedAt *time.Time    `db:"readme_updated_at" json:"readmeUpdatedAt"`
	AuthorID        *string       `db:"author_id" json:"authorId"`
	Status          ProjectStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

// Comment is stored flat; Replies is only populated when a thread is
// assembled for display.
type Comment struct {
	ID              string     `db:"id" json:"id"`
	Content         string     `db:"content" json:"content"`
	RenderedContent string     `db:"rendered_content" json:"renderedContent"`
	PostID          string     `db:"post_id" json:"postId"`
	AuthorID        *string    `db:"author_id" json:"authorId"`
	ParentID        *string    `db:"parent_id" json:"parentId"`
	Hidden          bool       `db:"hidden" json:"hidden"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	AuthorName      *string    `db:"author_name" json:"authorName"`
	Replies         []*Comment `db:"-" json:"replies,omitempty"`
}

// IsReply reports whether c has a parent.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// AdminComment is a comment joined with the post it belongs to.
type AdminComment struct {
	Comment
	PostTitle string `db:"post_title" json:"postTitle"`
	PostSlug  string `db:"post_slug" json:"postSlug"`
}

// NotificationType names the lifecycle event behind a notification.
type NotificationType string

const (
	NotificationReply          NotificationType = "reply"
	NotificationCommentHidden  NotificationType = "comment_hidden"
	NotificationCommentDeleted NotificationType = "comment_deleted"
	NotificationRoleChanged    NotificationType = "role_changed"
)

// Notification belongs to exactly one user. ReferenceID may point at an
// entity that no longer exists.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"userId"`
	Type        NotificationType `db:"type" json:"type"`
	Message     string           `db:"message" json:"message"`
	ReferenceID *string          `db:"reference_id" json:"referenceId"`
	Read        bool             `db:"is_read" json:"read"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`

	// ReferencePostID is filled when listing and is nil when the referenced
	// comment no longer exists.
	ReferencePostID *string `db:"reference_post_id" json:"referencePostId,omitempty"`
}

// Dangling reports whether the notification points at a comment that is gone.
func (n *Notification) Dangling() bool {
	return n.ReferenceID != nil && n.ReferencePostID == nil
}
