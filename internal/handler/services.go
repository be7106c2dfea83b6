package handler

import (
	"context"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
)

// CommentServicer is the comment lifecycle used by the handlers.
type CommentServicer interface {
	CreateComment(ctx context.Context, actor service.Actor, postID, content string) (*data.Comment, error)
	CreateReply(ctx context.Context, actor service.Actor, parentID, content string) (*data.Comment, error)
	HideComment(ctx context.Context, actor service.Actor, id string) (*data.Comment, error)
	UnhideComment(ctx context.Context, actor service.Actor, id string) (*data.Comment, error)
	DeleteComment(ctx context.Context, actor service.Actor, id string) (int64, error)
	GetCommentsForPost(ctx context.Context, viewer service.Actor, postID string) ([]*data.Comment, error)
	GetAdminComments(ctx context.Context, actor service.Actor, limit, offset int) ([]*data.AdminComment, error)
}

// NotificationServicer is the signed-in user's inbox.
type NotificationServicer interface {
	GetNotifications(ctx context.Context, actor service.Actor, limit int) ([]*data.Notification, error)
	GetUnreadCount(ctx context.Context, actor service.Actor) (int, error)
	MarkRead(ctx context.Context, actor service.Actor, id string) error
	MarkAllRead(ctx context.Context, actor service.Actor) (int64, error)
}

// PostServicer manages posts and editor previews.
type PostServicer interface {
	CreatePost(ctx context.Context, actor service.Actor, in service.PostInput) (*data.Post, error)
	UpdatePost(ctx context.Context, actor service.Actor, id string, in service.PostInput) (*data.Post, error)
	DeletePost(ctx context.Context, actor service.Actor, id string) error
	GetPost(ctx context.Context, viewer service.Actor, slug string) (*data.Post, error)
	GetPostByID(ctx context.Context, viewer service.Actor, id string) (*data.Post, error)
	ListPublished(ctx context.Context) ([]*data.Post, error)
	PreviewMarkdown(ctx context.Context, actor service.Actor, content string) (string, error)
}

// ProjectServicer manages portfolio projects.
type ProjectServicer interface {
	CreateProject(ctx context.Context, actor service.Actor, in service.ProjectInput) (*data.Project, error)
	UpdateProject(ctx context.Context, actor service.Actor, id string, in service.ProjectInput) (*data.Project, error)
	RefreshReadme(ctx context.Context, actor service.Actor, id string) (*data.Project, error)
	DeleteProject(ctx context.Context, actor service.Actor, id string) error
	GetProject(ctx context.Context, viewer service.Actor, slug string) (*data.Project, error)
	ListProjects(ctx context.Context, viewer service.Actor) ([]*data.Project, error)
}

// UserServicer manages accounts.
type UserServicer interface {
	SyncUser(ctx context.Context, id, name, email string) (*data.User, error)
	ListUsers(ctx context.Context, actor service.Actor) ([]*data.User, error)
	SetUserRole(ctx context.Context, actor service.Actor, userID string, role data.Role) (*data.User, error)
	DeleteUser(ctx context.Context, actor service.Actor, userID string) error
}

var (
	_ CommentServicer      = (*service.CommentService)(nil)
	_ NotificationServicer = (*service.NotificationService)(nil)
	_ PostServicer         = (*service.PostService)(nil)
	_ ProjectServicer      = (*service.ProjectService)(nil)
	_ UserServicer         = (*service.UserService)(nil)
)
