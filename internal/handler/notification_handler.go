package handler

import (
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the notification inbox.
type NotificationHandler struct {
	notifications NotificationServicer
	pages         *Pages
	log           logger.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(ns NotificationServicer, p *Pages, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: ns, pages: p, log: log}
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.GetNotifications(r.Context(), middleware.ActorFromContext(r.Context()), queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.GetUnreadCount(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, nil)
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkAllRead(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// page renders the inbox. Notifications whose comment is gone are marked as
// no longer available by the template.
func (h *NotificationHandler) page(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	list, err := h.notifications.GetNotifications(r.Context(), middleware.ActorFromContext(r.Context()), 0)
	if err != nil {
		return middleware.FromService(err)
	}
	return h.pages.render(w, r, "notifications.html", map[string]interface{}{
		"Notifications": list,
	})
}
