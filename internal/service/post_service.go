package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/cache"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/markdown"
	"regexp"
	"strings"
	"time"
)

// PostRepository defines the interface for database operations on posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post *data.Post) error
	GetPostByID(ctx context.Context, id string) (*data.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*data.Post, error)
	UpdatePost(ctx context.Context, post *data.Post) error
	DeletePost(ctx context.Context, id string) error
	GetPublishedPosts(ctx context.Context) ([]*data.Post, error)
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title   string          `json:"title" validate:"required,max=255"`
	Slug    string          `json:"slug" validate:"omitempty,max=255"`
	Content string          `json:"content" validate:"required"`
	Excerpt string          `json:"excerpt" validate:"omitempty,max=500"`
	Status  data.PostStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

// PostService manages posts. Post bodies are written by admins and are
// rendered at the trusted tier.
type PostService struct {
	repo          PostRepository
	renderer      ContentRenderer
	cache         cache.Store
	ttl           time.Duration
	maxLength     int
	excerptLength int
	log           logger.Logger
}

// NewPostService creates a new PostService. store may be nil.
func NewPostService(repo PostRepository, renderer ContentRenderer, store cache.Store, ttl time.Duration, cfg config.ContentConfig, log logger.Logger) *PostService {
	return &PostService{
		repo:          repo,
		renderer:      renderer,
		cache:         store,
		ttl:           ttl,
		maxLength:     cfg.MaxPostLength,
		excerptLength: cfg.ExcerptLength,
		log:           log,
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL path segment.
func Slugify(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

func postCacheKey(slug string) string {
	return "post:" + slug
}

func (s *PostService) prepare(ctx context.Context, in PostInput) (*data.Post, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if s.maxLength > 0 {
		if err := checkText("Post", in.Content, s.maxLength); err != nil {
			return nil, err
		}
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if slug == "" {
		return nil, ValidationError("Slug cannot be empty")
	}
	status := in.Status
	if status == "" {
		status = data.PostDraft
	}

	rendered, err := s.renderer.Render(ctx, in.Content, markdown.Trusted)
	if err != nil {
		s.log.Error(err, "Failed to render post")
		return nil, RenderFailure(err)
	}
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = markdown.PlainText(rendered, s.excerptLength)
	}

	return &data.Post{
		Title:           strings.TrimSpace(in.Title),
		Slug:            slug,
		Content:         in.Content,
		RenderedContent: rendered,
		Excerpt:         excerpt,
		Status:          status,
	}, nil
}

// CreatePost renders and stores a new post.
func (s *PostService) CreatePost(ctx context.Context, actor Actor, in PostInput) (*data.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	post, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPostBySlug(ctx, post.Slug); err == nil {
		return nil, ValidationError(fmt.Sprintf("A post with slug %q already exists", post.Slug))
	}
	authorID := actor.ID
	post.AuthorID = &authorID

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, InternalError("failed to create post", err)
	}
	return post, nil
}

// UpdatePost re-renders and stores an existing post.
func (s *PostService) UpdatePost(ctx context.Context, actor Actor, id string, in PostInput) (*data.Post, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	existing, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	if post.Slug != existing.Slug {
		if _, err := s.repo.GetPostBySlug(ctx, post.Slug); err == nil {
			return nil, ValidationError(fmt.Sprintf("A post with slug %q already exists", post.Slug))
		}
	}
	post.ID = existing.ID
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, InternalError("failed to update post", err)
	}
	s.evict(ctx, existing.Slug, post.Slug)
	return post, nil
}

// DeletePost removes a post and its comments.
func (s *PostService) DeletePost(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	existing, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return InternalError("failed to delete post", err)
	}
	s.evict(ctx, existing.Slug)
	return nil
}

// GetPost returns a post by slug. Drafts are only visible to admins.
func (s *PostService) GetPost(ctx context.Context, viewer Actor, slug string) (*data.Post, error) {
	post, err := s.cachedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.Status != data.PostPublished && !viewer.IsAdmin() {
		return nil, NotFoundError("Post not found")
	}
	return post, nil
}

// GetPostByID is GetPost for callers that only hold the post ID.
func (s *PostService) GetPostByID(ctx context.Context, viewer Actor, id string) (*data.Post, error) {
	post, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != data.PostPublished && !viewer.IsAdmin() {
		return nil, NotFoundError("Post not found")
	}
	return post, nil
}

// ListPublished returns all published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context) ([]*data.Post, error) {
	posts, err := s.repo.GetPublishedPosts(ctx)
	if err != nil {
		return nil, InternalError("failed to load posts", err)
	}
	return posts, nil
}

// PreviewMarkdown renders editor input without storing it. Admins preview at
// the trusted tier, everyone else sees exactly what a comment would render to.
func (s *PostService) PreviewMarkdown(ctx context.Context, actor Actor, content string) (string, error) {
	if err := requireSignedIn(actor); err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	if s.maxLength > 0 {
		if err := checkText("Content", content, s.maxLength); err != nil {
			return "", err
		}
	}
	tier := markdown.Public
	if actor.IsAdmin() {
		tier = markdown.Trusted
	}
	out, err := s.renderer.Render(ctx, content, tier)
	if err != nil {
		s.log.Error(err, "Failed to render preview")
		return "", RenderFailure(err)
	}
	return out, nil
}

func (s *PostService) getByID(ctx context.Context, id string) (*data.Post, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("Post not found")
		}
		return nil, InternalError("failed to load post", err)
	}
	return post, nil
}

func (s *PostService) cachedBySlug(ctx context.Context, slug string) (*data.Post, error) {
	key := postCacheKey(slug)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err != nil {
			s.log.Error(err, "Failed to read post from cache")
		} else if raw != nil {
			var post data.Post
			if err := json.Unmarshal(raw, &post); err == nil {
				return &post, nil
			}
		}
	}

	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, NotFoundError("Post not found")
		}
		return nil, InternalError("failed to load post", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(post); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
				s.log.Error(err, "Failed to cache post")
			}
		}
	}
	return post, nil
}

func (s *PostService) evict(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	for _, slug := range slugs {
		if err := s.cache.Delete(ctx, postCacheKey(slug)); err != nil {
			s.log.Error(err, "Failed to evict post from cache")
		}
	}
}
