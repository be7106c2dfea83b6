package service

import (
	"context"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/markdown"
	"html"
	"strings"
)

const (
	deletedAuthorName = "Deleted User"

	msgReply          = "Someone replied to your comment"
	msgCommentHidden  = "Your comment was hidden"
	msgCommentDeleted = "Your comment was deleted"
)

// CommentRepository defines the storage operations for comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, c *data.Comment) error
	GetCommentByID(ctx context.Context, id string) (*data.Comment, error)
	GetCommentsByPost(ctx context.Context, postID string) ([]*data.Comment, error)
	GetAllComments(ctx context.Context, limit, offset int) ([]*data.AdminComment, error)
	SetCommentHidden(ctx context.Context, id string, hidden bool) error
	DeleteCommentCascade(ctx context.Context, id string) (int64, error)
}

// PostLookup resolves the post a comment is written against.
type PostLookup interface {
	GetPostByID(ctx context.Context, id string) (*data.Post, error)
}

// ContentRenderer renders Markdown for a trust tier.
type ContentRenderer interface {
	Render(ctx context.Context, raw string, tier markdown.Tier) (string, error)
}

// CommentService implements the comment lifecycle: creation, one level of
// replies, moderation and the notifications those actions trigger.
type CommentService struct {
	comments    CommentRepository
	posts       PostLookup
	renderer    ContentRenderer
	notifier    Notifier
	log         logger.Logger
	maxLength   int
	placeholder string
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments CommentRepository, posts PostLookup, renderer ContentRenderer, notifier Notifier, cfg config.ContentConfig, log logger.Logger) *CommentService {
	maxLength := cfg.MaxCommentLength
	if maxLength <= 0 {
		maxLength = 5000
	}
	placeholder := cfg.HiddenPlaceholder
	if placeholder == "" {
		placeholder = "[removed]"
	}
	return &CommentService{
		comments:    comments,
		posts:       posts,
		renderer:    renderer,
		notifier:    notifier,
		log:         log,
		maxLength:   maxLength,
		placeholder: placeholder,
	}
}

func (s *CommentService) render(ctx context.Context, content string) (string, error) {
	out, err := s.renderer.Render(ctx, content, markdown.Public)
	if err != nil {
		s.log.Error(err, "Failed to render comment")
		return "", RenderFailure(err)
	}
	return out, nil
}

func (s *CommentService) getComment(ctx context.Context, id, notFoundMsg string) (*data.Comment, error) {
	c, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError(notFoundMsg)
		}
		return nil, InternalError("failed to load comment", err)
	}
	return c, nil
}

// notifyAuthor notifies the author of c unless the author is gone or is the
// actor who triggered the event.
func (s *CommentService) notifyAuthor(ctx context.Context, actor Actor, c *data.Comment, typ data.NotificationType, message string, referenceID *string) {
	if c.AuthorID == nil || *c.AuthorID == actor.ID {
		return
	}
	s.notifier.Notify(ctx, *c.AuthorID, typ, message, referenceID)
}

// CreateComment adds a top-level comment to a post.
func (s *CommentService) CreateComment(ctx context.Context, actor Actor, postID, content string) (*data.Comment, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	if err := checkText("Comment", content, s.maxLength); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("Post not found")
		}
		return nil, InternalError("failed to load post", err)
	}

	content = strings.TrimSpace(content)
	rendered, err := s.render(ctx, content)
	if err != nil {
		return nil, err
	}

	authorID := actor.ID
	c := &data.Comment{
		Content:         content,
		RenderedContent: rendered,
		PostID:          postID,
		AuthorID:        &authorID,
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, InternalError("failed to create comment", err)
	}
	return c, nil
}

// CreateReply answers a top-level comment. Replies to replies are rejected
// before anything is written. The parent's author is notified unless they
// are replying to themselves.
func (s *CommentService) CreateReply(ctx context.Context, actor Actor, parentID, content string) (*data.Comment, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	if err := checkText("Reply", content, s.maxLength); err != nil {
		return nil, err
	}

	parent, err := s.getComment(ctx, parentID, "Parent comment not found")
	if err != nil {
		return nil, err
	}
	if parent.IsReply() {
		return nil, PolicyViolation("Cannot reply to a reply")
	}

	content = strings.TrimSpace(content)
	rendered, err := s.render(ctx, content)
	if err != nil {
		return nil, err
	}

	authorID := actor.ID
	reply := &data.Comment{
		Content:         content,
		RenderedContent: rendered,
		PostID:          parent.PostID,
		AuthorID:        &authorID,
		ParentID:        &parent.ID,
	}
	if err := s.comments.CreateComment(ctx, reply); err != nil {
		return nil, InternalError("failed to create reply", err)
	}

	replyID := reply.ID
	s.notifyAuthor(ctx, actor, parent, data.NotificationReply, msgReply, &replyID)
	return reply, nil
}

// HideComment hides a comment from public display and tells its author.
func (s *CommentService) HideComment(ctx context.Context, actor Actor, id string) (*data.Comment, error) {
	return s.setHidden(ctx, actor, id, true)
}

// UnhideComment reverses HideComment. No notification is sent.
func (s *CommentService) UnhideComment(ctx context.Context, actor Actor, id string) (*data.Comment, error) {
	return s.setHidden(ctx, actor, id, false)
}

func (s *CommentService) setHidden(ctx context.Context, actor Actor, id string, hidden bool) (*data.Comment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c, err := s.getComment(ctx, id, "Comment not found")
	if err != nil {
		return nil, err
	}
	if err := s.comments.SetCommentHidden(ctx, id, hidden); err != nil {
		return nil, InternalError("failed to update comment", err)
	}
	c.Hidden = hidden

	if hidden {
		commentID := c.ID
		s.notifyAuthor(ctx, actor, c, data.NotificationCommentHidden, msgCommentHidden, &commentID)
	}
	return c, nil
}

// DeleteComment removes a comment and, for a top-level comment, all of its
// replies. Only the author of the deleted comment is notified. It returns
// the number of comments removed.
func (s *CommentService) DeleteComment(ctx context.Context, actor Actor, id string) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	c, err := s.getComment(ctx, id, "Comment not found")
	if err != nil {
		return 0, err
	}

	removed, err := s.comments.DeleteCommentCascade(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return 0, NotFoundError("Comment not found")
		}
		return 0, InternalError("failed to delete comment", err)
	}

	s.notifyAuthor(ctx, actor, c, data.NotificationCommentDeleted, msgCommentDeleted, nil)
	return removed, nil
}

// GetCommentsForPost returns the post's thread. Hidden comments keep their
// content for admins; everyone else sees the placeholder instead.
func (s *CommentService) GetCommentsForPost(ctx context.Context, viewer Actor, postID string) ([]*data.Comment, error) {
	comments, err := s.comments.GetCommentsByPost(ctx, postID)
	if err != nil {
		return nil, InternalError("failed to load comments", err)
	}

	display := make([]*data.Comment, 0, len(comments))
	for _, c := range comments {
		display = append(display, s.forDisplay(viewer, c))
	}
	return AttachReplies(display, s.log), nil
}

// GetAdminComments lists comments across posts for moderation.
func (s *CommentService) GetAdminComments(ctx context.Context, actor Actor, limit, offset int) ([]*data.AdminComment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	comments, err := s.comments.GetAllComments(ctx, limit, offset)
	if err != nil {
		return nil, InternalError("failed to load comments", err)
	}
	for _, c := range comments {
		if c.AuthorName == nil {
			name := deletedAuthorName
			c.AuthorName = &name
		}
	}
	return comments, nil
}

// forDisplay returns a copy of c prepared for viewer. The stored comment is
// never modified.
func (s *CommentService) forDisplay(viewer Actor, c *data.Comment) *data.Comment {
	cp := *c
	if cp.AuthorID == nil || cp.AuthorName == nil {
		name := deletedAuthorName
		cp.AuthorName = &name
	}
	if cp.Hidden && !viewer.IsAdmin() {
		cp.Content = s.placeholder
		cp.RenderedContent = "<p>" + html.EscapeString(s.placeholder) + "</p>"
	}
	return &cp
}
