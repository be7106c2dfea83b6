package handler

import (
	"bytes"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// StylesheetWriter writes the syntax highlighting stylesheet.
type StylesheetWriter interface {
	WriteCSS(w io.Writer) error
}

// PostHandler serves posts, the markdown preview and the highlight stylesheet.
type PostHandler struct {
	posts            PostServicer
	comments         CommentServicer
	pages            *Pages
	css              StylesheetWriter
	maxCommentLength int
	log              logger.Logger

	cssOnce  sync.Once
	cssBytes []byte
	cssErr   error
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(ps PostServicer, cs CommentServicer, p *Pages, css StylesheetWriter, maxCommentLength int, log logger.Logger) *PostHandler {
	return &PostHandler{
		posts:            ps,
		comments:         cs,
		pages:            p,
		css:              css,
		maxCommentLength: maxCommentLength,
		log:              log,
	}
}

// home lists published posts.
func (h *PostHandler) home(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		return middleware.FromService(err)
	}
	return h.pages.render(w, r, "home.html", map[string]interface{}{"Posts": posts})
}

// show renders a post with its comment thread.
func (h *PostHandler) show(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	viewer := middleware.ActorFromContext(r.Context())
	post, err := h.posts.GetPost(r.Context(), viewer, chi.URLParam(r, "slug"))
	if err != nil {
		return middleware.FromService(err)
	}
	thread, err := h.comments.GetCommentsForPost(r.Context(), viewer, post.ID)
	if err != nil {
		return middleware.FromService(err)
	}
	return h.pages.render(w, r, "post.html", map[string]interface{}{
		"Post":             post,
		"Comments":         thread,
		"MaxCommentLength": h.maxCommentLength,
	})
}

// byID redirects to the canonical slug URL.
func (h *PostHandler) byID(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	post, err := h.posts.GetPostByID(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		return middleware.FromService(err)
	}
	http.Redirect(w, r, "/posts/"+post.Slug, http.StatusFound)
	return nil
}

// preview renders editor input without saving it.
func (h *PostHandler) preview(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	out, err := h.posts.PreviewMarkdown(r.Context(), middleware.ActorFromContext(r.Context()), req.Content)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"html": out})
}

// highlightCSS serves the stylesheet for both code themes. It is generated
// once per process.
func (h *PostHandler) highlightCSS(w http.ResponseWriter, r *http.Request) {
	h.cssOnce.Do(func() {
		var buf bytes.Buffer
		h.cssErr = h.css.WriteCSS(&buf)
		h.cssBytes = buf.Bytes()
	})
	if h.cssErr != nil {
		h.log.Error(h.cssErr, "Failed to generate highlight stylesheet")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(h.cssBytes)
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	post, err := h.posts.CreatePost(r.Context(), middleware.ActorFromContext(r.Context()), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.log, err)
		return
	}
	post, err := h.posts.UpdatePost(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, post)
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeletePost(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, nil)
}
