package handler

import (
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CommentHandler serves the comment JSON API.
type CommentHandler struct {
	comments CommentServicer
	log      logger.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(cs CommentServicer, log logger.Logger) *CommentHandler {
	return &CommentHandler{comments: cs, log: log}
}

// listComments returns the assembled thread for a post.
func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request) {
	thread, err := h.comments.GetCommentsForPost(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, thread)
}

func (h *CommentHandler) createComment(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	c, err := h.comments.CreateComment(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "postID"), req.Content)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, c)
}

func (h *CommentHandler) createReply(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	c, err := h.comments.CreateReply(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, c)
}

func (h *CommentHandler) hideComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.HideComment(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) unhideComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.UnhideComment(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, c)
}

func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	removed, err := h.comments.DeleteComment(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// adminComments lists comments across all posts, newest first.
func (h *CommentHandler) adminComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.GetAdminComments(r.Context(), middleware.ActorFromContext(r.Context()),
		queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}
