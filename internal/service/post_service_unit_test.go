//go:build unit

package service

import (
	"context"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/markdown"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"  Go 1.24 released  ": "go-1-24-released",
		"---":                  "",
		"already-a-slug":       "already-a-slug",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()
	cfg := config.ContentConfig{MaxPostLength: 100, ExcerptLength: 200}

	t.Run("renders at trusted tier with excerpt", func(t *testing.T) {
		repo := newMockPostRepository()
		renderer := &mockRenderer{}
		svc := NewPostService(repo, renderer, nil, time.Minute, cfg, logger.Nop())

		p, err := svc.CreatePost(ctx, admin, PostInput{Title: "Hello World", Content: "Some **text**"})
		require.NoError(t, err)
		assert.Equal(t, "hello-world", p.Slug)
		assert.Equal(t, data.PostDraft, p.Status)
		assert.Equal(t, "<p>Some **text**</p>", p.RenderedContent)
		assert.Equal(t, "Some **text**", p.Excerpt)
		assert.Equal(t, "root", *p.AuthorID)
		assert.Equal(t, []markdown.Tier{markdown.Trusted}, renderer.tiers)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		repo := newMockPostRepository(&data.Post{ID: "p0", Slug: "hello-world"})
		svc := NewPostService(repo, &mockRenderer{}, nil, time.Minute, cfg, logger.Nop())
		_, err := svc.CreatePost(ctx, admin, PostInput{Title: "Hello World", Content: "x"})
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Zero(t, repo.createCalls)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewPostService(newMockPostRepository(), &mockRenderer{}, nil, time.Minute, cfg, logger.Nop())
		_, err := svc.CreatePost(ctx, admin, PostInput{Content: "x"})
		assert.Equal(t, "Title cannot be empty", PublicMessage(err))

		_, err = svc.CreatePost(ctx, admin, PostInput{Title: "T", Content: strings.Repeat("a", 101)})
		assert.Equal(t, "Post must be 100 characters or less", PublicMessage(err))

		_, err = svc.CreatePost(ctx, admin, PostInput{Title: "T", Content: "x", Status: "archived"})
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("non admin rejected", func(t *testing.T) {
		svc := NewPostService(newMockPostRepository(), &mockRenderer{}, nil, time.Minute, cfg, logger.Nop())
		_, err := svc.CreatePost(ctx, alice, PostInput{Title: "T", Content: "x"})
		assert.Equal(t, KindPolicy, KindOf(err))
	})
}

func TestPostService_GetPost(t *testing.T) {
	ctx := context.Background()
	cfg := config.ContentConfig{}

	t.Run("drafts hidden from non admins", func(t *testing.T) {
		repo := newMockPostRepository(&data.Post{ID: "p1", Slug: "draft", Status: data.PostDraft})
		svc := NewPostService(repo, &mockRenderer{}, nil, time.Minute, cfg, logger.Nop())

		_, err := svc.GetPost(ctx, alice, "draft")
		assert.Equal(t, KindNotFound, KindOf(err))
		p, err := svc.GetPost(ctx, admin, "draft")
		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)
	})

	t.Run("served from cache until updated", func(t *testing.T) {
		store := newTestCache(t)
		repo := newMockPostRepository(&data.Post{ID: "p1", Title: "Old", Slug: "post", Status: data.PostPublished})
		svc := NewPostService(repo, &mockRenderer{}, store, time.Minute, cfg, logger.Nop())

		_, err := svc.GetPost(ctx, Anonymous, "post")
		require.NoError(t, err)
		p, err := svc.GetPost(ctx, Anonymous, "post")
		require.NoError(t, err)
		assert.Equal(t, "Old", p.Title)
		assert.Equal(t, 1, repo.getBySlug)

		_, err = svc.UpdatePost(ctx, admin, "p1", PostInput{Title: "New", Slug: "post", Content: "body", Status: data.PostPublished})
		require.NoError(t, err)
		p, err = svc.GetPost(ctx, Anonymous, "post")
		require.NoError(t, err)
		assert.Equal(t, "New", p.Title)
	})

	t.Run("missing", func(t *testing.T) {
		svc := NewPostService(newMockPostRepository(), &mockRenderer{}, nil, time.Minute, cfg, logger.Nop())
		_, err := svc.GetPost(ctx, admin, "nope")
		assert.Equal(t, "Post not found", PublicMessage(err))
	})
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()
	repo := newMockPostRepository(&data.Post{ID: "p1", Slug: "post"})
	svc := NewPostService(repo, &mockRenderer{}, nil, time.Minute, config.ContentConfig{}, logger.Nop())

	assert.Equal(t, KindPolicy, KindOf(svc.DeletePost(ctx, alice, "p1")))
	require.NoError(t, svc.DeletePost(ctx, admin, "p1"))
	assert.Equal(t, []string{"p1"}, repo.deleted)
	assert.Equal(t, KindNotFound, KindOf(svc.DeletePost(ctx, admin, "p1")))
}

func TestPostService_PreviewMarkdown(t *testing.T) {
	ctx := context.Background()
	renderer := &mockRenderer{}
	svc := NewPostService(newMockPostRepository(), renderer, nil, time.Minute, config.ContentConfig{}, logger.Nop())

	_, err := svc.PreviewMarkdown(ctx, Anonymous, "hi")
	assert.Equal(t, KindPolicy, KindOf(err))

	out, err := svc.PreviewMarkdown(ctx, alice, "   ")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, renderer.tiers)

	_, err = svc.PreviewMarkdown(ctx, alice, "hi")
	require.NoError(t, err)
	_, err = svc.PreviewMarkdown(ctx, admin, "hi")
	require.NoError(t, err)
	assert.Equal(t, []markdown.Tier{markdown.Public, markdown.Trusted}, renderer.tiers)
}
