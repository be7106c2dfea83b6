package handler

import (
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UserHandler serves account administration.
type UserHandler struct {
	users UserServicer
	log   logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us UserServicer, log logger.Logger) *UserHandler {
	return &UserHandler{users: us, log: log}
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) setRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	u, err := h.users.SetUserRole(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), data.Role(req.Role))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, nil)
}
