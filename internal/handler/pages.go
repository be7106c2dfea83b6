package handler

import (
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/view"
	"net/http"
)

// Pages renders HTML templates with the data every layout needs.
type Pages struct {
	view          *view.View
	notifications NotificationServicer
	log           logger.Logger
}

// NewPages creates the shared HTML renderer. notifications may be nil.
func NewPages(v *view.View, ns NotificationServicer, log logger.Logger) *Pages {
	return &Pages{view: v, notifications: ns, log: log}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) *middleware.AppError {
	if data == nil {
		data = map[string]interface{}{}
	}
	userInfo := middleware.GetUserInfo(r.Context())
	actor := userInfo.Actor()
	data["UserInfo"] = userInfo
	data["Actor"] = actor

	if actor.SignedIn() && p.notifications != nil {
		n, err := p.notifications.GetUnreadCount(r.Context(), actor)
		if err != nil {
			p.log.Error(err, "Failed to load unread count")
		} else if n > 0 {
			data["UnreadCount"] = n
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.view.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}
